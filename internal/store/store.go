// Package store handles all database operations. Queries are written with
// `?` placeholders and rebound to `$N` for PostgreSQL; filter predicates
// are always parameterized, never concatenated into SQL.
package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/TripShare-io/tripshare/internal/models"
)

// Store handles all database operations
type Store struct {
	db      *sql.DB
	dialect string
}

// New creates a new store instance. dialect is "sqlite" or "postgres".
func New(db *sql.DB, dialect string) *Store {
	return &Store{db: db, dialect: dialect}
}

// rebind converts ? placeholders to $N for the postgres driver.
func (s *Store) rebind(query string) string {
	if s.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isUniqueViolation reports whether err is a uniqueness-constraint failure
// from either driver.
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// dateText scans DATE columns into the wire format regardless of whether
// the driver yields time.Time (postgres) or text (sqlite).
type dateText string

func (d *dateText) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = dateText(v.Format(models.DateLayout))
	case string:
		*d = dateText(v)
	case []byte:
		*d = dateText(string(v))
	case nil:
		*d = ""
	default:
		return fmt.Errorf("unsupported date column type %T", src)
	}
	return nil
}
