// Package cache implements a compile cache keyed by source hash, backed
// by modernc.org/sqlite. A successful compile records the source's SHA-256
// alongside the C translation unit C7 emitted for it; the driver consults
// it to skip re-running C4-C7 (the constructor audit, hierarchy builder,
// type checker, and emitter) on unchanged input, re-emitting the cached
// text to the generated-C path and then always re-running the external
// toolchain against the invocation's own configuration -- the cache only
// ever memoizes emitted C text, never a finished binary, so a request
// naming a different output path or `cc` driver still gets a fresh link.
//
// Grounded on funvibe/funxy's internal/ext package for the pattern of a
// small struct wrapping a *sql.DB opened against a project-local file,
// generalized here from a Go-type-inspection cache to a compile-result
// cache, and wired specifically to exercise modernc.org/sqlite -- a pure-
// Go sqlite driver needing no cgo, in keeping with the rest of this
// module's dependency-light runtime footprint.
package cache

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// Cache wraps a sqlite database recording emitted C translation units by
// source hash.
type Cache struct {
	db *sql.DB
}

// Open creates (or reuses) the sqlite database at path and ensures its
// schema exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	const schema = `
CREATE TABLE IF NOT EXISTS emits (
	source_sha256 TEXT PRIMARY KEY,
	c_source TEXT NOT NULL,
	created_unix INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Lookup returns the emitted C translation unit text cached for
// sourceHash, if any.
func (c *Cache) Lookup(sourceHash string) (string, bool, error) {
	var cSource string
	row := c.db.QueryRow(
		`SELECT c_source FROM emits WHERE source_sha256 = ?`,
		sourceHash,
	)
	if err := row.Scan(&cSource); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return cSource, true, nil
}

// Record upserts the emitted C text for sourceHash.
func (c *Cache) Record(sourceHash, cSource string, createdAt time.Time) error {
	_, err := c.db.Exec(
		`INSERT INTO emits (source_sha256, c_source, created_unix)
		 VALUES (?, ?, ?)
		 ON CONFLICT(source_sha256) DO UPDATE SET
		   c_source = excluded.c_source,
		   created_unix = excluded.created_unix`,
		sourceHash, cSource, createdAt.Unix(),
	)
	return err
}
