package placedb

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ExportStats counts what one CSV export wrote.
type ExportStats struct {
	Places  int
	Regions int
}

// ExportCSV writes places.csv, regions.csv and database_summary.csv into dir,
// creating it first. Places come out ordered by name with their regions
// joined into one column; regions come out busiest first.
func (s *Store) ExportCSV(ctx context.Context, dir string) (ExportStats, error) {
	var stats ExportStats
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return stats, fmt.Errorf("create export directory: %w", err)
	}

	n, err := s.exportPlaces(ctx, filepath.Join(dir, "places.csv"))
	if err != nil {
		return stats, err
	}
	stats.Places = n

	n, err = s.exportRegions(ctx, filepath.Join(dir, "regions.csv"))
	if err != nil {
		return stats, err
	}
	stats.Regions = n

	if err := s.exportSummary(ctx, filepath.Join(dir, "database_summary.csv")); err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *Store) exportPlaces(ctx context.Context, path string) (int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.name, p.address, p.prefecture, p.latitude, p.longitude,
		       p.description, p.type, p.saved_list, p.visited, p.date_saved,
		       p.google_maps_url,
		       COALESCE(string_agg(DISTINCT r.name, ', ' ORDER BY r.name), '')
		FROM places p
		LEFT JOIN place_regions pr ON pr.place_id = p.id
		LEFT JOIN regions r ON r.id = pr.region_id
		GROUP BY p.id
		ORDER BY p.name`)
	if err != nil {
		return 0, fmt.Errorf("query places: %w", err)
	}
	defer rows.Close()

	w, closeFile, err := newCSVFile(path, []string{
		"name", "address", "prefecture", "latitude", "longitude",
		"description", "type", "savedList", "visited", "dateSaved",
		"googleMapsUrl", "regions",
	})
	if err != nil {
		return 0, err
	}
	defer closeFile()

	count := 0
	for rows.Next() {
		var (
			name, address, pref, description, typ  string
			savedList, dateSaved, mapsURL, regions string
			lat, lon                               *float64
			visited                                bool
		)
		if err := rows.Scan(&name, &address, &pref, &lat, &lon, &description,
			&typ, &savedList, &visited, &dateSaved, &mapsURL, &regions); err != nil {
			return 0, fmt.Errorf("scan place row: %w", err)
		}
		record := []string{
			name, address, pref, floatField(lat), floatField(lon),
			description, typ, savedList, strconv.FormatBool(visited),
			dateSaved, mapsURL, regions,
		}
		if err := w.Write(record); err != nil {
			return 0, fmt.Errorf("write place row: %w", err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("query places: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return count, nil
}

func (s *Store) exportRegions(ctx context.Context, path string) (int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.name, count(pr.place_id)
		FROM regions r
		LEFT JOIN place_regions pr ON pr.region_id = r.id
		GROUP BY r.id
		ORDER BY count(pr.place_id) DESC, r.name`)
	if err != nil {
		return 0, fmt.Errorf("query regions: %w", err)
	}
	defer rows.Close()

	w, closeFile, err := newCSVFile(path, []string{"name", "place_count"})
	if err != nil {
		return 0, err
	}
	defer closeFile()

	count := 0
	for rows.Next() {
		var name string
		var placeCount int64
		if err := rows.Scan(&name, &placeCount); err != nil {
			return 0, fmt.Errorf("scan region row: %w", err)
		}
		if err := w.Write([]string{name, strconv.FormatInt(placeCount, 10)}); err != nil {
			return 0, fmt.Errorf("write region row: %w", err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("query regions: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return count, nil
}

func (s *Store) exportSummary(ctx context.Context, path string) error {
	summary, err := s.Summary(ctx)
	if err != nil {
		return err
	}

	w, closeFile, err := newCSVFile(path, []string{"metric", "count"})
	if err != nil {
		return err
	}
	defer closeFile()

	for _, row := range summary {
		if err := w.Write([]string{row.Metric, strconv.FormatInt(row.Count, 10)}); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func newCSVFile(path string, header []string) (*csv.Writer, func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("write %s header: %w", path, err)
	}
	return w, func() { f.Close() }, nil
}

func floatField(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
