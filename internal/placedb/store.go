// Package placedb mirrors the saved-place set into Postgres so the data can
// be queried, pruned and exported outside the GeoJSON file. Places carry
// their prefecture both as a column and as a row in the regions table, which
// keeps the per-region aggregates a plain join.
package placedb

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"tabimap/models"
	"tabimap/pkg/geo"
	"tabimap/pkg/prefecture"
)

// Store runs all place queries against a shared connection pool.
type Store struct {
	log  zerolog.Logger
	pool *pgxpool.Pool
}

// Connect opens a connection pool and verifies the database is reachable.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// NewStore wraps an existing pool.
func NewStore(log zerolog.Logger, pool *pgxpool.Pool) *Store {
	return &Store{log: log, pool: pool}
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS regions (
		id   UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS places (
		id              UUID PRIMARY KEY,
		name            TEXT NOT NULL,
		type            TEXT NOT NULL DEFAULT 'place',
		description     TEXT NOT NULL DEFAULT '',
		address         TEXT NOT NULL DEFAULT '',
		longitude       DOUBLE PRECISION,
		latitude        DOUBLE PRECISION,
		prefecture      TEXT NOT NULL DEFAULT '',
		category        TEXT NOT NULL DEFAULT 'place',
		saved_list      TEXT NOT NULL DEFAULT '',
		visited         BOOLEAN NOT NULL DEFAULT FALSE,
		visited_date    TEXT NOT NULL DEFAULT '',
		google_maps_url TEXT NOT NULL DEFAULT '',
		date_saved      TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS place_regions (
		place_id  UUID NOT NULL REFERENCES places(id) ON DELETE CASCADE,
		region_id UUID NOT NULL REFERENCES regions(id) ON DELETE CASCADE,
		PRIMARY KEY (place_id, region_id)
	)`,
}

// Init creates the tables when they do not exist yet.
func (s *Store) Init(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	s.log.Debug().Msg("schema ready")
	return nil
}

// Clear removes every place, region and link. Links go first so the wipe
// works even on schemas without cascading deletes.
func (s *Store) Clear(ctx context.Context) error {
	for _, stmt := range []string{
		`DELETE FROM place_regions`,
		`DELETE FROM places`,
		`DELETE FROM regions`,
	} {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("clear data: %w", err)
		}
	}
	return nil
}

// Record is one importable place row.
type Record struct {
	Name          string
	Type          string
	Description   string
	Address       string
	Longitude     float64
	Latitude      float64
	Prefecture    string
	Category      string
	SavedList     string
	Visited       bool
	GoogleMapsURL string
	DateSaved     string
}

// ImportStats counts the outcome of one import run.
type ImportStats struct {
	Imported int
	Skipped  int
}

// Collect converts features into importable records. Features without a place
// name or a usable coordinate pair are skipped. Records sharing a name are
// deduplicated keeping the most complete version; the loser counts as
// skipped. First-seen order is preserved.
func Collect(fc *models.FeatureCollection) ([]Record, int) {
	records := make([]Record, 0, len(fc.Features))
	index := make(map[string]int)
	skipped := 0

	for _, f := range fc.Features {
		loc := f.Location()
		name, _ := loc["name"].(string)
		lon, lat, ok := f.Coordinates()
		if name == "" || !ok || geo.IsSentinel(lon, lat) {
			skipped++
			continue
		}

		address, _ := loc["address"].(string)
		pref, _ := f.Property("prefecture")
		if pref == "" {
			pref, _ = prefecture.FromAddress(address)
		}

		rec := Record{
			Name:          name,
			Type:          propOr(f, "type", "place"),
			Description:   propOr(f, "description", ""),
			Address:       address,
			Longitude:     lon,
			Latitude:      lat,
			Prefecture:    pref,
			Category:      propOr(f, "category", "place"),
			SavedList:     propOr(f, "saved_list", ""),
			Visited:       boolProp(f, "visited"),
			GoogleMapsURL: propOr(f, "google_maps_url", ""),
			DateSaved:     propOr(f, "date", ""),
		}

		i, seen := index[name]
		if !seen {
			index[name] = len(records)
			records = append(records, rec)
			continue
		}
		if completenessScore(rec) > completenessScore(records[i]) {
			records[i] = rec
		}
		skipped++
	}
	return records, skipped
}

// completenessScore ranks duplicate records; coordinates weigh double.
func completenessScore(r Record) int {
	score := 0
	if r.Address != "" {
		score++
	}
	if r.Prefecture != "" {
		score++
	}
	if r.Description != "" {
		score++
	}
	if r.GoogleMapsURL != "" {
		score++
	}
	if r.Latitude != 0 && r.Longitude != 0 {
		score += 2
	}
	return score
}

// Import loads the collection into the database. Each place with a known
// prefecture is also linked to its region row. The whole batch commits as one
// transaction.
func (s *Store) Import(ctx context.Context, fc *models.FeatureCollection) (ImportStats, error) {
	records, skipped := Collect(fc)
	stats := ImportStats{Skipped: skipped}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return stats, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, rec := range records {
		placeID := uuid.New()
		_, err := tx.Exec(ctx, `
			INSERT INTO places (
				id, name, type, description, address, longitude, latitude,
				prefecture, category, saved_list, visited, google_maps_url, date_saved
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			placeID, rec.Name, rec.Type, rec.Description, rec.Address,
			rec.Longitude, rec.Latitude, rec.Prefecture, rec.Category,
			rec.SavedList, rec.Visited, rec.GoogleMapsURL, rec.DateSaved,
		)
		if err != nil {
			return stats, fmt.Errorf("insert place %q: %w", rec.Name, err)
		}

		if rec.Prefecture != "" {
			var regionID uuid.UUID
			err := tx.QueryRow(ctx, `
				INSERT INTO regions (id, name) VALUES ($1, $2)
				ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
				RETURNING id`,
				uuid.New(), rec.Prefecture,
			).Scan(&regionID)
			if err != nil {
				return stats, fmt.Errorf("upsert region %q: %w", rec.Prefecture, err)
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO place_regions (place_id, region_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING`,
				placeID, regionID,
			)
			if err != nil {
				return stats, fmt.Errorf("link place %q to region: %w", rec.Name, err)
			}
		}
		stats.Imported++
	}

	if err := tx.Commit(ctx); err != nil {
		return stats, fmt.Errorf("commit import: %w", err)
	}
	s.log.Info().Int("imported", stats.Imported).Int("skipped", stats.Skipped).Msg("import finished")
	return stats, nil
}

// InvalidPlace is a row whose stored coordinates are unusable.
type InvalidPlace struct {
	Name      string
	Longitude *float64
	Latitude  *float64
}

// PruneInvalidCoordinates deletes places whose longitude or latitude is null
// or zero and returns the rows that were removed.
func (s *Store) PruneInvalidCoordinates(ctx context.Context) ([]InvalidPlace, error) {
	const where = `longitude IS NULL OR latitude IS NULL OR longitude = 0 OR latitude = 0`

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin prune: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `SELECT name, longitude, latitude FROM places WHERE `+where+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list invalid places: %w", err)
	}
	var invalid []InvalidPlace
	for rows.Next() {
		var p InvalidPlace
		if err := rows.Scan(&p.Name, &p.Longitude, &p.Latitude); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan invalid place: %w", err)
		}
		invalid = append(invalid, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invalid places: %w", err)
	}

	if len(invalid) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM places WHERE `+where); err != nil {
			return nil, fmt.Errorf("delete invalid places: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit prune: %w", err)
	}
	return invalid, nil
}

// RecordVisit flags matching places as visited. The key matches either the
// stored Google Maps URL or the place name. The visit date fills in only
// when the row has none yet. Returns the number of rows updated.
func (s *Store) RecordVisit(ctx context.Context, key, visitedDate string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE places
		SET visited = TRUE,
		    visited_date = CASE WHEN visited_date = '' THEN $2 ELSE visited_date END
		WHERE google_maps_url = $1 OR name = $1`,
		key, visitedDate,
	)
	if err != nil {
		return 0, fmt.Errorf("record visit for %q: %w", key, err)
	}
	return tag.RowsAffected(), nil
}

// SummaryRow is one metric in the database summary.
type SummaryRow struct {
	Metric string
	Count  int64
}

// Summary returns the headline counts in a fixed display order.
func (s *Store) Summary(ctx context.Context) ([]SummaryRow, error) {
	metrics := []struct {
		name  string
		query string
	}{
		{"total_places", `SELECT count(*) FROM places`},
		{"total_regions", `SELECT count(*) FROM regions`},
		{"has_place_rels", `SELECT count(*) FROM place_regions`},
		{"places_with_coordinates", `SELECT count(*) FROM places WHERE latitude IS NOT NULL AND longitude IS NOT NULL`},
		{"visited_places", `SELECT count(*) FROM places WHERE visited = TRUE`},
	}

	summary := make([]SummaryRow, 0, len(metrics))
	for _, m := range metrics {
		var count int64
		if err := s.pool.QueryRow(ctx, m.query).Scan(&count); err != nil {
			return nil, fmt.Errorf("count %s: %w", m.name, err)
		}
		summary = append(summary, SummaryRow{Metric: m.name, Count: count})
	}
	return summary, nil
}

func propOr(f *models.Feature, name, fallback string) string {
	if s, ok := f.Property(name); ok {
		return s
	}
	return fallback
}

func boolProp(f *models.Feature, name string) bool {
	if f.Properties == nil {
		return false
	}
	b, _ := f.Properties[name].(bool)
	return b
}

// TitleMetric renders a summary metric name for console output, mirroring
// "total_places" -> "Total Places".
func TitleMetric(metric string) string {
	words := strings.Split(metric, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
