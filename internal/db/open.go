// Package db owns the tracker's local SQLite database: opening it with the
// right pragmas, creating the buffer schema, and serializing writes.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Open prepares the buffer database at path, creating the parent directory
// and schema when absent. The returned handle is capped at one connection:
// SQLite allows a single writer, and the tracker never needs more.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		path = "./data/locations.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL keeps buffered fixes durable across a crash mid-cycle; the busy
	// timeout covers the brief overlap between drain-pass reads and the
	// write goroutine.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		path,
	)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Initialize(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}
