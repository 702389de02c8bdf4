package models

// Place is a saved map location whose coordinates resolved to a real point.
// Optional descriptive fields are pointers so that absent values survive a
// round trip as JSON null rather than turning into empty strings.
type Place struct {
	Name          string  `json:"name"`
	Address       *string `json:"address"`
	Lon           float64 `json:"lon"`
	Lat           float64 `json:"lat"`
	Category      *string `json:"category"`
	SavedList     *string `json:"saved_list"`
	Prefecture    *string `json:"prefecture"`
	GoogleMapsURL *string `json:"google_maps_url"`
}
