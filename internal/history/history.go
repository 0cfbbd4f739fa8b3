// Package history records visited pages in a SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/HFT/cream-browser/internal/migrations"
	"github.com/HFT/cream-browser/internal/view"
)

const timestampLayout = "2006-01-02 15:04:05"

// Visit is one remembered page.
type Visit struct {
	ID        int64
	URI       string
	Title     string
	Count     int
	VisitedAt time.Time
}

// Label returns the title, or the URI for untitled pages.
func (v Visit) Label() string {
	if v.Title != "" {
		return v.Title
	}
	return v.URI
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Record stores a visit to uri. Visiting a known URI bumps its count and
// keeps the previous title unless a new one is given. Blank pages are
// not recorded.
func (s *Store) Record(uri, title string) error {
	uri = strings.TrimSpace(uri)
	if uri == "" || uri == view.BlankURI {
		return nil
	}

	ts := s.now().UTC().Format(timestampLayout)
	_, err := s.db.Exec(`
		INSERT INTO visits (uri, title, visited_at, last_visited_at, visit_count)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(uri) DO UPDATE SET
			visit_count = visit_count + 1,
			last_visited_at = excluded.last_visited_at,
			title = CASE WHEN excluded.title != '' THEN excluded.title ELSE visits.title END
	`, uri, title, ts, ts)
	if err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}
	return nil
}

// UpdateTitle sets the title of an already recorded URI.
func (s *Store) UpdateTitle(uri, title string) error {
	if title == "" {
		return nil
	}
	_, err := s.db.Exec("UPDATE visits SET title = ? WHERE uri = ?", title, uri)
	if err != nil {
		return fmt.Errorf("failed to update visit title: %w", err)
	}
	return nil
}

// Recent returns the most recently visited pages first.
func (s *Store) Recent(limit int) ([]Visit, error) {
	return s.Search("", limit)
}

// Search returns visits whose URI or title contains query, most recent
// first. An empty query matches everything.
func (s *Store) Search(query string, limit int) ([]Visit, error) {
	if limit <= 0 {
		limit = -1
	}

	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	rows, err := s.db.Query(`
		SELECT id, uri, title, visit_count, last_visited_at
		FROM visits
		WHERE uri LIKE ? ESCAPE '\' OR title LIKE ? ESCAPE '\'
		ORDER BY last_visited_at DESC, id DESC
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search history: %w", err)
	}
	defer rows.Close()

	return scanVisits(rows)
}

func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM visits").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}

func (s *Store) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM visits WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete visit: %w", err)
	}
	return nil
}

func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM visits")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func scanVisits(rows *sql.Rows) ([]Visit, error) {
	var visits []Visit

	for rows.Next() {
		var v Visit
		var visitedAt sql.NullString

		if err := rows.Scan(&v.ID, &v.URI, &v.Title, &v.Count, &visitedAt); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}

		v.VisitedAt = parseTimestamp(visitedAt.String)
		visits = append(visits, v)
	}

	return visits, rows.Err()
}

func parseTimestamp(s string) time.Time {
	// timestamps are stored in UTC; go-sqlite3 hands DATETIME columns
	// back as time values, which database/sql formats as RFC3339
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.ParseInLocation(timestampLayout, s, time.UTC)
	}
	if err == nil {
		return t.Local()
	}
	return time.Time{}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
