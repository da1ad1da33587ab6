// Package sqlite opens a SQLite database file read-only and extracts the
// contents of its tables.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/sqlite-export/pkg/types"
)

// driverName is the database/sql name registered by modernc.org/sqlite.
const driverName = "sqlite"

// DB is an open read-only connection to one database file. It is owned by a
// single export run and passed explicitly from stage to stage.
type DB struct {
	path string
	sql  *sql.DB
	log  logrus.FieldLogger
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger for diagnostic events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(d *DB) { d.log = log }
}

// Open checks that path exists and opens it read-only. A missing file returns
// an error wrapping types.ErrNotFound without touching the driver. The
// connection is pinged so an unreadable file fails here rather than later.
func Open(ctx context.Context, path string, opts ...Option) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	sqldb, err := sql.Open(driverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// One run, one connection.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxLifetime(0)

	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("connecting to %s: %w", path, err)
	}

	d := NewFromSQL(path, sqldb, opts...)
	d.log.WithField("path", path).Debug("opened database read-only")
	return d, nil
}

// NewFromSQL wraps an already opened *sql.DB. The DB takes ownership and
// closes it on Close.
func NewFromSQL(path string, sqldb *sql.DB, opts ...Option) *DB {
	d := &DB{
		path: path,
		sql:  sqldb,
		log:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Path returns the path the database was opened from.
func (d *DB) Path() string { return d.path }

// Close releases the connection. It is safe to call more than once.
func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	err := d.sql.Close()
	d.sql = nil
	if err != nil {
		return fmt.Errorf("closing %s: %w", d.path, err)
	}
	return nil
}

// uriEscaper escapes the characters that end the path part of a file: URI.
var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// dsn builds a read-only modernc connection string. mode=ro is passed through
// to SQLite as a URI parameter; query_only rejects writes on the connection.
func dsn(path string) string {
	return fmt.Sprintf("file:%s?mode=ro&_pragma=query_only(1)", uriEscaper.Replace(path))
}
