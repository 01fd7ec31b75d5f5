// Package store keeps a SQLite journal of the launchers Ice has created
// and removed. The applications directory remains authoritative; the
// journal only adds history the launcher files cannot carry.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("ssb not found in history")

// Event kinds.
const (
	EventCreated         = "created"
	EventRemoved         = "removed"
	EventProfileRestored = "profile-restored"
	EventOrphanRemoved   = "orphan-removed"
)

// Record is the journal row for one launcher.
type Record struct {
	Slug      string
	Name      string
	URL       string
	Browser   string
	Category  string
	Isolated  bool
	Icon      string
	Launcher  string
	Profile   string
	CreatedAt time.Time
	RemovedAt *time.Time
}

// Removed reports whether the launcher has been deleted.
func (r *Record) Removed() bool { return r.RemovedAt != nil }

// Event is one entry in a launcher's history.
type Event struct {
	ID        int64
	Slug      string
	Timestamp time.Time
	Kind      string
	Message   string
}

// Store persists launcher history to SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the SQLite database at the given path.
func Open(dbPath string) (*Store, error) {
	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(4)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS ssbs (
			slug       TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			url        TEXT NOT NULL DEFAULT '',
			browser    TEXT NOT NULL DEFAULT '',
			category   TEXT NOT NULL DEFAULT '',
			isolated   INTEGER NOT NULL DEFAULT 0,
			icon       TEXT NOT NULL DEFAULT '',
			launcher   TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			removed_at TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			slug      TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			kind      TEXT NOT NULL,
			message   TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_events_slug ON events(slug);
	`)
	if err != nil {
		return err
	}

	alterStmts := []string{
		"ALTER TABLE ssbs ADD COLUMN profile TEXT NOT NULL DEFAULT ''",
	}
	for _, stmt := range alterStmts {
		s.db.Exec(stmt) // ignore "duplicate column" errors
	}
	return nil
}

// RecordCreate stores a newly created launcher and logs a created event.
// Re-creating a removed slug revives its row.
func (s *Store) RecordCreate(r *Record) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	r.RemovedAt = nil

	_, err := s.db.Exec(`
		INSERT INTO ssbs (slug, name, url, browser, category, isolated, icon, launcher, profile, created_at, removed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '')
		ON CONFLICT(slug) DO UPDATE SET
			name=excluded.name, url=excluded.url, browser=excluded.browser,
			category=excluded.category, isolated=excluded.isolated, icon=excluded.icon,
			launcher=excluded.launcher, profile=excluded.profile,
			created_at=excluded.created_at, removed_at=''`,
		r.Slug, r.Name, r.URL, r.Browser, r.Category, boolToInt(r.Isolated),
		r.Icon, r.Launcher, r.Profile, r.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", r.Slug, err)
	}
	return s.AppendEvent(r.Slug, EventCreated, fmt.Sprintf("%s -> %s (%s)", r.Name, r.URL, r.Browser))
}

// RecordRemove marks a launcher removed. Launchers created before the
// journal existed get a minimal row so their removal is still visible.
func (s *Store) RecordRemove(slug, name, message string) error {
	at := s.now().Format(time.RFC3339)
	res, err := s.db.Exec(`UPDATE ssbs SET removed_at=? WHERE slug=?`, at, slug)
	if err != nil {
		return fmt.Errorf("recording removal of %s: %w", slug, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if name == "" {
			name = slug
		}
		_, err := s.db.Exec(`INSERT INTO ssbs (slug, name, created_at, removed_at) VALUES (?, ?, ?, ?)`,
			slug, name, at, at)
		if err != nil {
			return fmt.Errorf("recording removal of %s: %w", slug, err)
		}
	}
	return s.AppendEvent(slug, EventRemoved, message)
}

// AppendEvent adds a history entry for slug.
func (s *Store) AppendEvent(slug, kind, message string) error {
	_, err := s.db.Exec(`INSERT INTO events (slug, timestamp, kind, message) VALUES (?, ?, ?, ?)`,
		slug, s.now().Format(time.RFC3339Nano), kind, message)
	if err != nil {
		return fmt.Errorf("appending %s event: %w", kind, err)
	}
	return nil
}

const selectSSB = `SELECT slug, name, url, browser, category, isolated, icon, launcher, profile, created_at, removed_at FROM ssbs`

// GetSSB retrieves a launcher's record by slug.
func (s *Store) GetSSB(slug string) (*Record, error) {
	row := s.db.QueryRow(selectSSB+` WHERE slug=?`, slug)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return r, err
}

// ListSSBs returns recorded launchers by name. Removed ones are included
// only when includeRemoved is set.
func (s *Store) ListSSBs(includeRemoved bool) ([]*Record, error) {
	query := selectSSB
	if !includeRemoved {
		query += ` WHERE removed_at=''`
	}
	query += ` ORDER BY name COLLATE NOCASE ASC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListEvents returns history oldest first. An empty slug returns every event.
func (s *Store) ListEvents(slug string) ([]*Event, error) {
	query := `SELECT id, slug, timestamp, kind, message FROM events`
	var args []any
	if slug != "" {
		query += ` WHERE slug=?`
		args = append(args, slug)
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		var e Event
		var ts string
		if err := rows.Scan(&e.ID, &e.Slug, &ts, &e.Kind, &e.Message); err != nil {
			return nil, err
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, &e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var r Record
	var isolated int
	var created, removed string
	if err := row.Scan(&r.Slug, &r.Name, &r.URL, &r.Browser, &r.Category, &isolated,
		&r.Icon, &r.Launcher, &r.Profile, &created, &removed); err != nil {
		return nil, err
	}
	r.Isolated = isolated != 0
	r.CreatedAt, _ = time.Parse(time.RFC3339, created)
	if removed != "" {
		if t, err := time.Parse(time.RFC3339, removed); err == nil {
			r.RemovedAt = &t
		}
	}
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
