// Package ledger is the SQLite-backed store of categories and expenses.
//
// A Ledger holds a single database connection for its whole lifetime and
// serializes every operation. Writes that touch both relations (resolving a
// category and linking an expense to it) run in one SQL transaction.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

const pragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)"

// DefaultFileName is the database file name used when only a directory is known.
const DefaultFileName = "finances.db"

// fileDSN turns path into a file: URI so that '?', '#' and '%' in the path
// reach SQLite as part of the file name instead of the query string.
func fileDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving db path: %w", err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}
	return u.String() + pragmas, nil
}

// Ledger provides durable CRUD and aggregation over categories and expenses.
type Ledger struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	dsn    string
	now    func() time.Time
	log    *slog.Logger
	closed bool
}

type options struct {
	defaults []string
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures Open.
type Option func(*options)

// WithDefaultCategories sets the categories seeded by Initialize at construction.
func WithDefaultCategories(names []string) Option {
	return func(o *options) {
		o.defaults = append([]string(nil), names...)
	}
}

// WithClock overrides the source of "today" for expenses added without a date.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger used for ledger diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Open opens or creates the ledger database at path, applies the schema and
// seeds the configured default categories.
func Open(path string, opts ...Option) (*Ledger, error) {
	o := options{now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if strings.TrimSpace(path) == "" {
		return nil, &StorageError{Op: "open", Err: errors.New("empty database path")}
	}
	// Migrations run on their own connection, so the database must be a file.
	if path == ":memory:" || strings.HasPrefix(path, "file::memory:") {
		return nil, &StorageError{Op: "open", Err: errors.New("in-memory databases are not supported")}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("creating db dir: %w", err)}
	}

	dsn, err := fileDSN(path)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("opening db: %w", err)}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("connecting to db: %w", err)}
	}

	l := &Ledger{
		db:   db,
		path: path,
		dsn:  dsn,
		now:  o.now,
		log:  o.logger.With("component", "ledger"),
	}

	if err := l.Initialize(o.defaults); err != nil {
		_ = db.Close()
		return nil, err
	}

	l.log.Info("ledger opened", "path", path)
	return l, nil
}

// Initialize ensures the schema exists and that every name in defaults is
// present as a category. Existing categories are left untouched, so it is
// safe to call on every start.
func (l *Ledger) Initialize(defaults []string) error {
	const op = "initialize"

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.usable(op); err != nil {
		return err
	}

	if err := migrateSchema(l.dsn); err != nil {
		return &StorageError{Op: op, Err: err}
	}

	tx, err := l.db.Begin()
	if err != nil {
		return storageErr(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	added := 0
	for _, name := range defaults {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		res, err := tx.Exec("INSERT OR IGNORE INTO categories (name) VALUES (?)", name)
		if err != nil {
			return storageErr(op, fmt.Errorf("seeding category %q: %w", name, err))
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr(op, err)
	}
	if added > 0 {
		l.log.Debug("seeded default categories", "added", added)
	}
	return nil
}

// Close releases the database connection. Further calls fail with ErrClosed.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if err := l.db.Close(); err != nil {
		return &StorageError{Op: "close", Err: err}
	}
	l.log.Debug("ledger closed", "path", l.path)
	return nil
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.path
}

// usable must be called with mu held.
func (l *Ledger) usable(op string) error {
	if l.closed {
		return &StorageError{Op: op, Err: ErrClosed}
	}
	return nil
}

func (l *Ledger) today() string {
	return l.now().Format(DateLayout)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
