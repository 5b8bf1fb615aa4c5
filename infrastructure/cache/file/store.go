// ABOUTME: File-backed persistent cache tier storing one JSON document per key
// ABOUTME: File names are a filesystem-safe transform of host, path and query; writes are atomic

package file

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"newswire-api/core/interfaces"
)

const maxNameBytes = 180

// record is the on-disk layout. Key guards against two URLs sharing a file name.
type record struct {
	Key       string          `json:"key"`
	ExpiresAt *time.Time      `json:"expiresAt,omitempty"`
	JSON      json.RawMessage `json:"json,omitempty"`
	Bytes     []byte          `json:"bytes,omitempty"`
}

// Store implements the Cache interface on a directory of JSON files
type Store struct {
	dir string
	now func() time.Time
}

// NewStore creates the directory if needed
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Dir returns the cache directory
func (s *Store) Dir() string {
	return s.dir
}

// FileName maps a key to a safe file name: host+path+query with every rune
// outside [A-Za-z0-9._-] replaced by '_'. Long names are cut and suffixed with
// a SHA-256 prefix so distinct keys stay distinct.
func FileName(key string) string {
	base := key
	if u, err := url.Parse(key); err == nil && u.Host != "" {
		base = u.Host + u.EscapedPath()
		if u.RawQuery != "" {
			base += "?" + u.RawQuery
		}
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := b.String()
	if strings.Trim(name, ".") == "" {
		name = ""
	}

	if name == "" || len(name) > maxNameBytes {
		sum := sha256.Sum256([]byte(key))
		suffix := hex.EncodeToString(sum[:8])
		if len(name) > maxNameBytes-len(suffix)-1 {
			name = name[:maxNameBytes-len(suffix)-1]
		}
		name = name + "_" + suffix
	}
	return name + ".json"
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, FileName(key))
}

// Get reads the file for key
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, interfaces.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode cache file: %w", err)
	}
	if rec.Key != key {
		return nil, interfaces.ErrCacheMiss
	}
	if rec.ExpiresAt != nil && !s.now().Before(*rec.ExpiresAt) {
		return nil, interfaces.ErrCacheMiss
	}
	if rec.JSON != nil {
		return []byte(rec.JSON), nil
	}
	return rec.Bytes, nil
}

// Set writes value atomically via a temp file and rename
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rec := record{Key: key}
	if ttl > 0 {
		exp := s.now().Add(ttl)
		rec.ExpiresAt = &exp
	}
	if json.Valid(value) {
		rec.JSON = json.RawMessage(value)
	} else {
		rec.Bytes = value
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close cache file: %w", err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move cache file into place: %w", err)
	}
	return nil
}

// Delete removes the file for key
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}
