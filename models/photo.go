package models

// Photo is one EXIF record that carried usable GPS coordinates. A photo is
// identified by filename plus directory; duplicate records are kept exactly as
// the dump lists them. Timestamp is ISO-8601 local time, nil when the capture
// time was missing or unparseable.
type Photo struct {
	Filename  string  `json:"filename"`
	Directory string  `json:"directory"`
	Lon       float64 `json:"lon"`
	Lat       float64 `json:"lat"`
	Timestamp *string `json:"timestamp"`
}
