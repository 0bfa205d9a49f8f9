// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

const cacheDBFile = "oracle_cache.db"

// Cache stores oracle responses keyed by (operation, identifier). Entries
// never expire within a run; citation data is assumed stable for the run's
// lifetime. An in-memory map fronts an optional SQLite database so cached
// results survive across processes, matching the persistent HTTP cache the
// benchmark relies on to keep repeated ground-truth computations cheap.
// Safe for concurrent use.
type Cache struct {
	mu  sync.Mutex
	mem map[string][]byte
	db  *sql.DB // nil when the on-disk layer is disabled
}

// NewCache opens or creates the cache database under dir. An empty dir
// disables the on-disk layer; the in-memory layer is always active.
func NewCache(dir string) (*Cache, error) {
	c := &Cache{mem: make(map[string][]byte)}
	if dir == "" {
		return c, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, cacheDBFile)+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS responses (
		key  TEXT PRIMARY KEY,
		body BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	c.db = db
	return c, nil
}

// Get returns the cached body for key, if present in either layer. A disk
// hit is promoted into the in-memory layer.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if body, ok := c.mem[key]; ok {
		return body, true
	}
	if c.db == nil {
		return nil, false
	}

	var body []byte
	err := c.db.QueryRow(`SELECT body FROM responses WHERE key = ?`, key).Scan(&body)
	if err != nil {
		return nil, false
	}
	c.mem[key] = body
	return body, true
}

// Put stores body under key in both layers. Disk write failures are ignored;
// the in-memory layer still serves the entry for the rest of the process.
func (c *Cache) Put(key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mem[key] = body
	if c.db != nil {
		c.db.Exec(`INSERT OR REPLACE INTO responses (key, body) VALUES (?, ?)`, key, body)
	}
}

// Close releases the on-disk layer, if any.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
