// ABOUTME: SQLite-backed persistent cache tier keyed by source URL
// ABOUTME: Survives restarts; expired rows are hidden on read and purged periodically

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"newswire-api/core/interfaces"
)

// Client implements the Cache interface using SQLite
type Client struct {
	db       *sql.DB
	filePath string
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSQLiteCache opens (or creates) the database at filePath and starts a
// purge loop running every cleanupInterval. A zero interval disables purging.
func NewSQLiteCache(filePath string, cleanupInterval time.Duration) (*Client, error) {
	if filePath == "" {
		filePath = "newswire-cache.db"
	}

	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// go-sqlite3 connections do not share :memory: databases
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	client := &Client{
		db:       db,
		filePath: filePath,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	if err := client.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if cleanupInterval > 0 {
		go client.cleanupRoutine(cleanupInterval)
	}

	return client, nil
}

// initSchema creates the results table if it doesn't exist.
// expiry is a unix timestamp; 0 means the row never expires.
func (c *Client) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS results (
			url TEXT PRIMARY KEY,
			payload BLOB NOT NULL,
			expiry INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_results_expiry ON results(expiry);
	`
	_, err := c.db.Exec(query)
	return err
}

// Get retrieves the payload stored for url
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("key cannot be empty")
	}

	var payload []byte
	query := "SELECT payload FROM results WHERE url = ? AND (expiry = 0 OR expiry > ?)"
	err := c.db.QueryRowContext(ctx, query, url, c.now().Unix()).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, interfaces.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get value: %w", err)
	}

	return payload, nil
}

// Set upserts the payload for url
func (c *Client) Set(ctx context.Context, url string, value []byte, ttl time.Duration) error {
	if url == "" {
		return errors.New("key cannot be empty")
	}
	if len(value) == 0 {
		return errors.New("value cannot be empty")
	}

	var expiry int64
	if ttl > 0 {
		expiry = c.now().Add(ttl).Unix()
	}

	query := `
		INSERT INTO results (url, payload, expiry) VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET payload = excluded.payload, expiry = excluded.expiry
	`
	if _, err := c.db.ExecContext(ctx, query, url, value, expiry); err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}
	return nil
}

// Delete removes the row for url
func (c *Client) Delete(ctx context.Context, url string) error {
	if url == "" {
		return errors.New("key cannot be empty")
	}

	if _, err := c.db.ExecContext(ctx, "DELETE FROM results WHERE url = ?", url); err != nil {
		return fmt.Errorf("failed to delete value: %w", err)
	}
	return nil
}

// Count returns the number of stored rows, expired or not
func (c *Client) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM results").Scan(&n)
	return n, err
}

func (c *Client) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *Client) cleanup() {
	_, _ = c.db.Exec("DELETE FROM results WHERE expiry <> 0 AND expiry <= ?", c.now().Unix())
}

// Close stops the purge loop and closes the database connection
func (c *Client) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return c.db.Close()
}
