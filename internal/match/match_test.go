package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabimap/models"
	"tabimap/pkg/geo"
)

func place(name, url string, lat, lon float64) models.Place {
	p := models.Place{Name: name, Lat: lat, Lon: lon}
	if url != "" {
		p.GoogleMapsURL = &url
	}
	return p
}

func photo(filename, ts string, lat, lon float64) models.Photo {
	p := models.Photo{Filename: filename, Directory: "/photos", Lat: lat, Lon: lon}
	if ts != "" {
		p.Timestamp = &ts
	}
	return p
}

func TestRunNearbyPhotoMatches(t *testing.T) {
	places := []models.Place{place("Tokyo Tower", "urlA", 35.6762, 139.6503)}
	photos := []models.Photo{photo("IMG_1.JPG", "2023-05-01T10:15:00", 35.6763, 139.6504)}

	result := Run(places, photos, DefaultOptions())

	require.Len(t, result.Groups, 1)
	require.Len(t, result.Groups[0].Matches, 1)
	assert.Empty(t, result.Unmatched)

	m := result.Groups[0].Matches[0]
	assert.Equal(t, "IMG_1.JPG", m.Filename)
	assert.Equal(t, "/photos", m.Directory)
	require.NotNil(t, m.Timestamp)
	assert.Equal(t, "2023-05-01T10:15:00", *m.Timestamp)
	assert.InDelta(t, 14.33, m.DistanceM, 1e-9)
}

func TestRunFarPhotoUnmatched(t *testing.T) {
	places := []models.Place{place("Tokyo Tower", "urlA", 35.6762, 139.6503)}
	photos := []models.Photo{photo("IMG_2.JPG", "", 35.9, 140.9)}

	result := Run(places, photos, DefaultOptions())

	require.Len(t, result.Groups, 1)
	assert.Empty(t, result.Groups[0].Matches)
	require.Len(t, result.Unmatched, 1)
	assert.Equal(t, "IMG_2.JPG", result.Unmatched[0].Filename)
}

func TestRunCapKeepsClosestOnly(t *testing.T) {
	near := place("Near", "urlA", 35.0002, 139.0)
	far := place("Far", "urlB", 35.0004, 139.0)
	photos := []models.Photo{photo("IMG_3.JPG", "", 35.0, 139.0)}

	result := Run([]models.Place{far, near}, photos, Options{RadiusMeters: 100, MaxPerPhoto: 1})

	byName := map[string]*Group{}
	for _, g := range result.Groups {
		byName[g.Place.Name] = g
	}
	require.Len(t, byName["Near"].Matches, 1)
	assert.InDelta(t, 22.24, byName["Near"].Matches[0].DistanceM, 1e-9)
	assert.Empty(t, byName["Far"].Matches)
	assert.Empty(t, result.Unmatched)
}

func TestRunCapZeroKeepsAll(t *testing.T) {
	near := place("Near", "urlA", 35.0002, 139.0)
	far := place("Far", "urlB", 35.0004, 139.0)
	photos := []models.Photo{photo("IMG_4.JPG", "", 35.0, 139.0)}

	result := Run([]models.Place{far, near}, photos, Options{RadiusMeters: 100, MaxPerPhoto: 0})

	total := 0
	for _, g := range result.Groups {
		total += len(g.Matches)
		for _, m := range g.Matches {
			assert.LessOrEqual(t, m.DistanceM, 100.0)
		}
	}
	assert.Equal(t, 2, total)
	assert.Empty(t, result.Unmatched)
}

func TestRunRadiusBoundaryInclusive(t *testing.T) {
	p := place("Boundary", "urlA", 35.0005, 139.0)
	ph := photo("IMG_5.JPG", "", 35.0, 139.0)
	radius := geo.Haversine(ph.Lat, ph.Lon, p.Lat, p.Lon)

	result := Run([]models.Place{p}, []models.Photo{ph}, Options{RadiusMeters: radius, MaxPerPhoto: 1})

	require.Len(t, result.Groups[0].Matches, 1)
	assert.Empty(t, result.Unmatched)
}

func TestRunEquidistantTieKeepsInputOrder(t *testing.T) {
	north := place("North", "urlN", 35.0001, 139.0)
	south := place("South", "urlS", 34.9999, 139.0)
	photos := []models.Photo{photo("IMG_6.JPG", "", 35.0, 139.0)}
	opts := Options{RadiusMeters: 100, MaxPerPhoto: 1}

	first := Run([]models.Place{north, south}, photos, opts)
	require.Len(t, first.Groups[0].Matches, 1, "first-listed place wins the tie")
	assert.Empty(t, first.Groups[1].Matches)

	swapped := Run([]models.Place{south, north}, photos, opts)
	require.Len(t, swapped.Groups[0].Matches, 1)
	assert.Equal(t, "South", swapped.Groups[0].Place.Name)
}

func TestRunGroupsPreSeededInFirstSeenOrder(t *testing.T) {
	places := []models.Place{
		place("A", "urlA", 35.0, 139.0),
		place("B", "urlB", 36.0, 140.0),
		place("C", "urlC", 37.0, 141.0),
	}

	result := Run(places, nil, DefaultOptions())

	require.Len(t, result.Groups, 3)
	assert.Equal(t, "A", result.Groups[0].Place.Name)
	assert.Equal(t, "B", result.Groups[1].Place.Name)
	assert.Equal(t, "C", result.Groups[2].Place.Name)
	for _, g := range result.Groups {
		assert.NotNil(t, g.Matches)
		assert.Empty(t, g.Matches)
	}
	assert.NotNil(t, result.Unmatched)
	assert.Empty(t, result.Unmatched)
}

func TestRunSharedKeyMergesIntoOneGroup(t *testing.T) {
	// Same URL listed twice: one group, last-seen place record, first-seen
	// position, and matches from both locations accumulate nearest first.
	a := place("Listed First", "urlX", 35.0002, 139.0)
	b := place("Listed Second", "urlX", 35.0004, 139.0)
	other := place("Other", "urlY", 40.0, 150.0)
	photos := []models.Photo{photo("IMG_7.JPG", "", 35.0, 139.0)}

	result := Run([]models.Place{a, other, b}, photos, Options{RadiusMeters: 100, MaxPerPhoto: 0})

	require.Len(t, result.Groups, 2)
	merged := result.Groups[0]
	assert.Equal(t, "Listed Second", merged.Place.Name)
	require.Len(t, merged.Matches, 2)
	assert.InDelta(t, 22.24, merged.Matches[0].DistanceM, 1e-9)
	assert.InDelta(t, 44.48, merged.Matches[1].DistanceM, 1e-9)
}

func TestRunNameCollisionWithoutURLs(t *testing.T) {
	first := place("Ramen Shop", "", 35.0002, 139.0)
	second := place("Ramen Shop", "", 43.0, 141.0)
	photos := []models.Photo{photo("IMG_8.JPG", "", 35.0, 139.0)}

	result := Run([]models.Place{first, second}, photos, DefaultOptions())

	require.Len(t, result.Groups, 1, "same name and no URL collapse to one key")
	g := result.Groups[0]
	// Later record wins the place slot even though the match came from the
	// earlier location.
	assert.Equal(t, 43.0, g.Place.Lat)
	require.Len(t, g.Matches, 1)
	assert.InDelta(t, 22.24, g.Matches[0].DistanceM, 1e-9)
}

func TestRunEveryPhotoLandsExactlyOnce(t *testing.T) {
	places := []models.Place{
		place("A", "urlA", 35.0, 139.0),
		place("B", "urlB", 35.001, 139.0),
		place("C", "urlC", 38.0, 142.0),
	}
	photos := []models.Photo{
		photo("near-a.jpg", "", 35.0001, 139.0),
		photo("between.jpg", "", 35.0005, 139.0),
		photo("nowhere.jpg", "", 20.5, 125.0),
		photo("near-c.jpg", "", 38.0001, 142.0),
	}

	result := Run(places, photos, Options{RadiusMeters: 200, MaxPerPhoto: 1})

	matched := map[string]int{}
	for _, g := range result.Groups {
		for _, m := range g.Matches {
			matched[m.Filename]++
		}
	}
	for _, u := range result.Unmatched {
		_, wasMatched := matched[u.Filename]
		assert.False(t, wasMatched, "photo %s both matched and unmatched", u.Filename)
	}
	assert.Len(t, matched, 3)
	for name, count := range matched {
		assert.Equal(t, 1, count, "photo %s matched %d times with cap 1", name, count)
	}
	require.Len(t, result.Unmatched, 1)
	assert.Equal(t, "nowhere.jpg", result.Unmatched[0].Filename)
}

func TestRunDuplicatePhotosBothCount(t *testing.T) {
	places := []models.Place{place("A", "urlA", 35.0, 139.0)}
	dup := photo("twice.jpg", "2023-05-01T10:15:00", 35.0001, 139.0)
	result := Run(places, []models.Photo{dup, dup}, DefaultOptions())

	require.Len(t, result.Groups[0].Matches, 2)
	assert.Equal(t, result.Groups[0].Matches[0], result.Groups[0].Matches[1])
}

func TestRunNoPlaces(t *testing.T) {
	photos := []models.Photo{photo("only.jpg", "", 35.0, 139.0)}
	result := Run(nil, photos, DefaultOptions())

	assert.Empty(t, result.Groups)
	require.Len(t, result.Unmatched, 1)
}

func TestRunDeterministic(t *testing.T) {
	places := []models.Place{
		place("A", "urlA", 35.0, 139.0),
		place("B", "urlB", 35.0001, 139.0),
		place("C", "", 35.0002, 139.0),
	}
	photos := []models.Photo{
		photo("x.jpg", "2023-05-01T10:15:00", 35.00005, 139.0),
		photo("y.jpg", "", 35.00015, 139.0),
		photo("z.jpg", "", 10.0, 10.0),
	}
	opts := Options{RadiusMeters: 150, MaxPerPhoto: 2}

	first := Run(places, photos, opts)
	second := Run(places, photos, opts)
	assert.Equal(t, first, second)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", DefaultOptions(), false},
		{"unlimited cap", Options{RadiusMeters: 50, MaxPerPhoto: 0}, false},
		{"zero radius", Options{RadiusMeters: 0, MaxPerPhoto: 1}, true},
		{"negative radius", Options{RadiusMeters: -10, MaxPerPhoto: 1}, true},
		{"negative cap", Options{RadiusMeters: 100, MaxPerPhoto: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
