package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/kavineksith/location-tracker/internal/db"
	"github.com/kavineksith/location-tracker/internal/tracker/store"
	"github.com/kavineksith/location-tracker/internal/tracker/types"
)

type BufferStore struct {
	db     *sql.DB
	writer *dbpkg.Writer
}

func NewBufferStore(db *sql.DB, writer *dbpkg.Writer) *BufferStore {
	return &BufferStore{db: db, writer: writer}
}

func (s *BufferStore) Store(ctx context.Context, fix types.LocationFix) (store.BufferedRecord, error) {
	if fix.Timestamp.IsZero() {
		fix.Timestamp = time.Now().UTC()
	}
	tsMs := fix.Timestamp.UTC().UnixMilli()

	var lat, lon any
	if fix.Latitude != nil {
		lat = *fix.Latitude
	}
	if fix.Longitude != nil {
		lon = *fix.Longitude
	}

	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO location_log(
  ip, city, region, country, latitude, longitude, timestamp_ms, synced
) VALUES (?, ?, ?, ?, ?, ?, ?, 0);
`, fix.IP, fix.City, fix.Region, fix.Country, lat, lon, tsMs)
		if err != nil {
			return fmt.Errorf("Store insert: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("Store last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return store.BufferedRecord{}, fmt.Errorf("%w: %w", store.ErrLocalStorage, err)
	}

	return store.BufferedRecord{ID: id, Synced: false, Fix: fix}, nil
}

func (s *BufferStore) Pending(ctx context.Context) ([]store.BufferedRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, ip, city, region, country, latitude, longitude, timestamp_ms
FROM location_log
WHERE synced = 0
ORDER BY id ASC;
`)
	if err != nil {
		return nil, fmt.Errorf("%w: Pending query: %w", store.ErrLocalStorage, err)
	}
	defer rows.Close()

	var recs []store.BufferedRecord
	for rows.Next() {
		var (
			rec      store.BufferedRecord
			lat, lon sql.NullFloat64
			tsMs     int64
		)
		if err := rows.Scan(
			&rec.ID, &rec.Fix.IP, &rec.Fix.City, &rec.Fix.Region, &rec.Fix.Country,
			&lat, &lon, &tsMs,
		); err != nil {
			return nil, fmt.Errorf("%w: Pending scan: %w", store.ErrLocalStorage, err)
		}
		if lat.Valid {
			v := lat.Float64
			rec.Fix.Latitude = &v
		}
		if lon.Valid {
			v := lon.Float64
			rec.Fix.Longitude = &v
		}
		rec.Fix.Timestamp = time.UnixMilli(tsMs).UTC()
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: Pending rows: %w", store.ErrLocalStorage, err)
	}
	return recs, nil
}

// MarkSynced deletes the row. Deleting a missing or already-synced id affects
// zero rows, which keeps the operation idempotent.
func (s *BufferStore) MarkSynced(ctx context.Context, id int64) error {
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
DELETE FROM location_log WHERE id = ?;
`, id); err != nil {
			return fmt.Errorf("MarkSynced delete: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrLocalStorage, err)
	}
	return nil
}
