package match

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Options controls one matching run.
type Options struct {
	// RadiusMeters is the inclusive distance within which a photo counts as
	// taken at a place. Must be positive.
	RadiusMeters float64 `validate:"gt=0"`
	// MaxPerPhoto caps how many places a single photo may match, closest
	// first. Zero lifts the cap.
	MaxPerPhoto int `validate:"gte=0"`
}

// DefaultOptions matches within 100 meters and keeps only the closest place
// per photo.
func DefaultOptions() Options {
	return Options{RadiusMeters: 100, MaxPerPhoto: 1}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	return validate.Struct(o)
}
