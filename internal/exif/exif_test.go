package exif

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabimap/pkg/geo"
)

func TestPhotos(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		kept  bool
	}{
		{
			name: "numeric coordinates",
			entry: Entry{
				"FileName": "IMG_0001.JPG", "Directory": "/photos/tokyo",
				"GPSLatitude": 35.6586, "GPSLongitude": 139.7454,
			},
			kept: true,
		},
		{
			name: "string coordinates",
			entry: Entry{
				"FileName": "IMG_0002.JPG", "Directory": "/photos/tokyo",
				"GPSLatitude": "35.6586", "GPSLongitude": " 139.7454 ",
			},
			kept: true,
		},
		{
			name:  "missing latitude",
			entry: Entry{"FileName": "IMG_0003.JPG", "GPSLongitude": 139.7454},
			kept:  false,
		},
		{
			name:  "missing both",
			entry: Entry{"FileName": "IMG_0004.JPG", "Directory": "/photos"},
			kept:  false,
		},
		{
			name: "non-numeric strings",
			entry: Entry{
				"FileName": "IMG_0005.JPG",
				"GPSLatitude": "north", "GPSLongitude": "east",
			},
			kept: false,
		},
		{
			name: "null coordinates",
			entry: Entry{
				"FileName": "IMG_0006.JPG",
				"GPSLatitude": nil, "GPSLongitude": nil,
			},
			kept: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			photos := Photos([]Entry{tt.entry})
			if !tt.kept {
				assert.Empty(t, photos)
				return
			}
			require.Len(t, photos, 1)
			assert.Equal(t, tt.entry.Filename(), photos[0].Filename)
			assert.Equal(t, tt.entry.Directory(), photos[0].Directory)
			assert.InDelta(t, 35.6586, photos[0].Lat, 1e-9)
			assert.InDelta(t, 139.7454, photos[0].Lon, 1e-9)
		})
	}
}

func TestPhotosKeepsDuplicatesAndOrder(t *testing.T) {
	entries := []Entry{
		{"FileName": "a.jpg", "GPSLatitude": 35.0, "GPSLongitude": 139.0},
		{"FileName": "b.jpg", "GPSLatitude": "bad", "GPSLongitude": 139.0},
		{"FileName": "a.jpg", "GPSLatitude": 35.0, "GPSLongitude": 139.0},
	}
	photos := Photos(entries)
	require.Len(t, photos, 2)
	assert.Equal(t, "a.jpg", photos[0].Filename)
	assert.Equal(t, "a.jpg", photos[1].Filename)
}

func TestEntryTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  *string
	}{
		{name: "exif layout", value: "2023:11:05 14:30:22", want: strPtr("2023-11-05T14:30:22")},
		{name: "missing", value: nil, want: nil},
		{name: "empty string", value: "", want: nil},
		{name: "already iso", value: "2023-11-05T14:30:22", want: nil},
		{name: "garbage", value: "yesterday", want: nil},
		{name: "numeric value", value: 20231105.0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Entry{"FileName": "x.jpg"}
			if tt.value != nil {
				e["DateTimeOriginal"] = tt.value
			}
			got := e.Timestamp()
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exif.json")
	payload := `[
	  {"SourceFile": "/p/IMG_1.JPG", "FileName": "IMG_1.JPG", "Directory": "/p",
	   "GPSLatitude": 35.6586, "GPSLongitude": 139.7454,
	   "DateTimeOriginal": "2023:11:05 14:30:22", "Model": "NIKON Z 6"},
	  {"FileName": "IMG_2.JPG", "Directory": "/p"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	entries, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Unknown fields must survive for filtered rewrites.
	assert.Equal(t, "NIKON Z 6", entries[0]["Model"])

	photos := Photos(entries)
	require.Len(t, photos, 1)
	assert.Equal(t, "IMG_1.JPG", photos[0].Filename)
	require.NotNil(t, photos[0].Timestamp)
	assert.Equal(t, "2023-11-05T14:30:22", *photos[0].Timestamp)
}

func TestReadFileErrors(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not": "a list"}`), 0o644))
	_, err = ReadFile(bad)
	assert.Error(t, err)
}

func TestFilterBounds(t *testing.T) {
	entries := []Entry{
		{"FileName": "tokyo.jpg", "GPSLatitude": 35.6586, "GPSLongitude": 139.7454},
		{"FileName": "paris.jpg", "GPSLatitude": 48.8584, "GPSLongitude": 2.2945},
		{"FileName": "strings.jpg", "GPSLatitude": "35.0", "GPSLongitude": "139.0"},
		{"FileName": "nogps.jpg"},
	}

	kept := FilterBounds(entries, geo.Japan)
	require.Len(t, kept, 2)
	assert.Equal(t, "tokyo.jpg", kept[0].Filename())
	assert.Equal(t, "strings.jpg", kept[1].Filename())
}

func TestFilterBoundsEmpty(t *testing.T) {
	kept := FilterBounds(nil, geo.Japan)
	assert.NotNil(t, kept)
	assert.Empty(t, kept)
}

func TestWriteFileRoundTrip(t *testing.T) {
	entries := []Entry{
		{"FileName": "夜景.jpg", "Directory": "/p", "GPSLatitude": 35.6586, "GPSLongitude": 139.7454,
			"Notes": "shot at <night> & dawn"},
	}

	path := filepath.Join(t.TempDir(), "out", "japan_exif.json")
	require.NoError(t, WriteFile(path, entries))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	// Non-ASCII and HTML-significant characters stay literal.
	assert.Contains(t, string(raw), "夜景.jpg")
	assert.Contains(t, string(raw), "<night> &")

	again, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, entries[0]["Notes"], again[0]["Notes"])
}

func strPtr(s string) *string { return &s }
