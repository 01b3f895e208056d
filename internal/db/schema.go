package db

import (
	"context"
	"database/sql"
	"fmt"
)

// The buffer is one table: an append-only log of fixes awaiting remote
// confirmation, with a partial index so drain passes scan only unsynced
// rows. id order is sync order, oldest first.
const schema = `
CREATE TABLE IF NOT EXISTS location_log (
  id           INTEGER PRIMARY KEY AUTOINCREMENT,
  ip           TEXT NOT NULL,
  city         TEXT NOT NULL,
  region       TEXT NOT NULL,
  country      TEXT NOT NULL,
  latitude     REAL,
  longitude    REAL,
  timestamp_ms INTEGER NOT NULL,
  synced       INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_location_log_pending
  ON location_log (id) WHERE synced = 0;
`

// Initialize creates the buffer schema when absent. Idempotent, safe on
// every startup; there is no versioned migration history to replay beyond
// this.
func Initialize(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}
