package match

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabimap/models"
)

func TestBuildReportOrderingAndShape(t *testing.T) {
	url := "https://maps.google.com/?cid=42&hl=en"
	places := []models.Place{
		place("Quiet", "urlQ", 40.0, 150.0),
		{Name: "Busy", Lat: 35.0, Lon: 139.0, GoogleMapsURL: &url},
	}
	photos := []models.Photo{
		photo("a.jpg", "2023-05-01T10:15:00", 35.0001, 139.0),
		photo("b.jpg", "", 35.0002, 139.0),
		photo("lost.jpg", "2023-06-01T12:00:00", 10.0, 10.0),
	}

	report := BuildReport(Run(places, photos, Options{RadiusMeters: 100, MaxPerPhoto: 1}))

	require.Len(t, report.Matches, 2)
	assert.Equal(t, "Busy", report.Matches[0].Place.Name, "busier place sorts first")
	assert.Len(t, report.Matches[0].Photos, 2)
	assert.Equal(t, [2]float64{139.0, 35.0}, report.Matches[0].Place.Coordinates)

	empty := report.Matches[1]
	assert.Equal(t, "Quiet", empty.Place.Name)
	assert.NotNil(t, empty.Photos, "zero-match places keep an empty list, not null")
	assert.Empty(t, empty.Photos)

	require.Len(t, report.UnmatchedPhotos, 1)
	u := report.UnmatchedPhotos[0]
	assert.Equal(t, "lost.jpg", u.Filename)
	assert.Equal(t, [2]float64{10.0, 10.0}, u.Coordinates)

	assert.Equal(t, 2, report.Summary.TotalPlaces)
	assert.Equal(t, 1, report.Summary.PlacesWithMatches)
	assert.Equal(t, 2, report.Summary.TotalMatches)
}

func TestReportWriteReadRoundTrip(t *testing.T) {
	url := "https://maps.google.com/?cid=42&hl=en"
	addr := "東京都港区"
	places := []models.Place{{Name: "東京タワー", Address: &addr, Lat: 35.6762, Lon: 139.6503, GoogleMapsURL: &url}}
	photos := []models.Photo{
		photo("near.jpg", "2023-05-01T10:15:00", 35.6763, 139.6504),
		photo("far.jpg", "", 35.9, 140.9),
	}
	report := BuildReport(Run(places, photos, DefaultOptions()))

	path := filepath.Join(t.TempDir(), "out", "report.json")
	require.NoError(t, report.WriteFile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, "東京タワー", "multibyte text stays unescaped")
	assert.Contains(t, text, "?cid=42&hl=en", "URL separators stay unescaped")
	assert.Contains(t, text, `"unmatched_photos"`)
	assert.Contains(t, text, `"distance_m"`)
	assert.False(t, strings.Contains(text, `&`))

	loaded, err := ReadReport(path)
	require.NoError(t, err)
	assert.Equal(t, report, loaded)
}

func TestReportEmptyListsMarshalAsArrays(t *testing.T) {
	report := BuildReport(Run([]models.Place{place("Alone", "urlA", 35.0, 139.0)}, nil, DefaultOptions()))

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, report.WriteFile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, `"photos": []`)
	assert.Contains(t, text, `"unmatched_photos": []`)
	assert.Contains(t, text, `"place_summaries": []`)
}

func TestReadReportMissingFile(t *testing.T) {
	_, err := ReadReport(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestReadReportMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := ReadReport(path)
	assert.Error(t, err)
}
