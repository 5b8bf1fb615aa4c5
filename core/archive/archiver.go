// ABOUTME: Archiver snapshots successful results into one markdown file per day
// ABOUTME: Files are named news-YYYY-MM-DD.md and can be listed and read back

package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"newswire-api/core/domain"
	coreerrors "newswire-api/core/errors"
	"newswire-api/core/interfaces"
	"newswire-api/pkg/utils/dates"
)

var fileNamePattern = regexp.MustCompile(`^news-\d{4}-\d{2}-\d{2}\.md$`)

// NewsSource produces results synchronously
type NewsSource interface {
	FetchAll(ctx context.Context, sources []string) []domain.FetchResult
}

// Entry describes one archive file
type Entry struct {
	Name    string    `json:"name"`
	Date    string    `json:"date"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// Archiver writes daily markdown snapshots
type Archiver struct {
	news   NewsSource
	dir    string
	logger interfaces.Logger
	now    func() time.Time
}

// NewArchiver creates the archive directory if needed
func NewArchiver(news NewsSource, dir string, logger interfaces.Logger) (*Archiver, error) {
	if dir == "" {
		return nil, &coreerrors.ValidationError{Field: "dir", Message: "archive directory cannot be empty"}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, coreerrors.WrapError(err, "create archive dir")
	}
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &Archiver{news: news, dir: dir, logger: logger, now: time.Now}, nil
}

// Dir returns the archive directory
func (a *Archiver) Dir() string {
	return a.dir
}

// FileName is the archive file name for day
func FileName(day time.Time) string {
	return "news-" + day.Format("2006-01-02") + ".md"
}

// Archive fetches sources (all registered when empty) and writes today's
// file, replacing an earlier snapshot from the same day.
func (a *Archiver) Archive(ctx context.Context, sources []string) (string, error) {
	results := a.news.FetchAll(ctx, sources)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	day := a.now()
	path := filepath.Join(a.dir, FileName(day))
	if err := os.WriteFile(path, []byte(Render(day, results)), 0o644); err != nil {
		return "", coreerrors.WrapError(err, "write archive")
	}

	a.logger.Info("Archived news", map[string]interface{}{
		"path":    path,
		"sources": len(results),
	})
	return path, nil
}

// Render builds the markdown document for day. Only successful results are included.
func Render(day time.Time, results []domain.FetchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# News (%s)\n\n", day.Format("2006-01-02"))

	written := 0
	for _, r := range results {
		if !r.IsSuccess() || (len(r.Articles) == 0 && len(r.Links) == 0) {
			continue
		}
		written++

		heading := r.Owner
		if heading == "" {
			heading = r.Title
		}
		if heading == "" {
			heading = r.URL
		}
		fmt.Fprintf(&b, "## %s\n\n<%s>\n\n", heading, r.URL)

		if len(r.Articles) > 0 {
			for i, art := range r.Articles {
				b.WriteString(item(i+1, art.Title, art.URL, art.Summary, art.Date))
			}
		} else {
			for i, l := range r.Links {
				b.WriteString(item(i+1, l.Title, l.URL, "", ""))
			}
		}
		b.WriteString("\n")
	}

	if written == 0 {
		b.WriteString("*No news available*\n")
	}
	return b.String()
}

func item(n int, title, link, summary, date string) string {
	if title == "" {
		title = "Untitled"
	}
	if link == "" {
		link = "#"
	}
	line := fmt.Sprintf("%d. [%s](%s)", n, escape(title), link)
	if date != "" {
		line += " _" + dates.Day(date) + "_"
	}
	if summary != "" {
		line += " - " + summary
	}
	return line + "\n"
}

// escape keeps titles from closing the link text early
func escape(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}

// List returns archive files newest first
func (a *Archiver) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, coreerrors.WrapError(err, "read archive dir")
	}

	entries := []Entry{}
	for _, de := range dirEntries {
		if de.IsDir() || !fileNamePattern.MatchString(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:    de.Name(),
			Date:    strings.TrimSuffix(strings.TrimPrefix(de.Name(), "news-"), ".md"),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name > entries[j].Name })
	return entries, nil
}

// Read returns the content of one archive file
func (a *Archiver) Read(name string) ([]byte, error) {
	if !fileNamePattern.MatchString(name) {
		return nil, &coreerrors.ValidationError{Field: "name", Message: "not an archive file name"}
	}

	data, err := os.ReadFile(filepath.Join(a.dir, name))
	if os.IsNotExist(err) {
		return nil, &coreerrors.NotFoundError{Resource: "archive", ID: name}
	}
	if err != nil {
		return nil, coreerrors.WrapError(err, "read archive")
	}
	return data, nil
}
