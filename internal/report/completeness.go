// Package report builds data-quality summaries over saved-place collections.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"tabimap/models"
	"tabimap/pkg/geo"
)

// Fields lists every metadata field the completeness report covers, in report
// order.
var Fields = []string{
	"name",
	"address",
	"coordinates",
	"date",
	"google_maps_url",
	"prefecture",
	"notes",
	"visited",
	"visited_date",
	"tabelog_rating",
	"category",
	"saved_list",
}

// Distribution is one value of a categorical field with its occurrence count.
type Distribution struct {
	Value string
	Count int
}

// Completeness summarizes how many features are missing each metadata field,
// plus the value distributions of category and saved_list.
type Completeness struct {
	Total      int
	Missing    map[string]int
	Categories []Distribution
	SavedLists []Distribution
}

// Analyze inspects every feature in the collection. A field counts as missing
// when it is absent, null, or blank after trimming; coordinates additionally
// count as missing when they are the (0,0) placeholder. The visited flag is
// missing only when null, so an explicit false still counts as present. Notes
// and tabelog_rating accept non-string values, which always count as present.
func Analyze(fc *models.FeatureCollection) Completeness {
	c := Completeness{Missing: make(map[string]int)}
	if fc == nil {
		return c
	}
	c.Total = len(fc.Features)

	categories := newCounter()
	savedLists := newCounter()

	for _, f := range fc.Features {
		loc := f.Location()

		if blankString(loc, "name") {
			c.Missing["name"]++
		}
		if blankString(loc, "address") {
			c.Missing["address"]++
		}
		if lon, lat, ok := f.Coordinates(); !ok || geo.IsSentinel(lon, lat) {
			c.Missing["coordinates"]++
		}
		if blankString(f.Properties, "date") {
			c.Missing["date"]++
		}
		if blankString(f.Properties, "google_maps_url") {
			c.Missing["google_maps_url"]++
		}
		if blankString(f.Properties, "prefecture") {
			c.Missing["prefecture"]++
		}
		if nilOrEmpty(f.Properties, "notes") {
			c.Missing["notes"]++
		}
		if isNil(f.Properties, "visited") {
			c.Missing["visited"]++
		}
		if blankString(f.Properties, "visited_date") {
			c.Missing["visited_date"]++
		}
		if nilOrEmpty(f.Properties, "tabelog_rating") {
			c.Missing["tabelog_rating"]++
		}

		if category, ok := nonBlank(f.Properties, "category"); ok {
			categories.add(category)
		} else {
			c.Missing["category"]++
		}
		if list, ok := nonBlank(f.Properties, "saved_list"); ok {
			savedLists.add(list)
		} else {
			c.Missing["saved_list"]++
		}
	}

	c.Categories = categories.sorted()
	c.SavedLists = savedLists.sorted()
	return c
}

// Render writes the report as a plain-text table.
func (c Completeness) Render(w io.Writer) {
	fmt.Fprintf(w, "SavedPlaces completeness report (total features: %d)\n", c.Total)
	fmt.Fprintln(w, strings.Repeat("-", 60))

	for _, field := range Fields {
		missing := c.Missing[field]
		fmt.Fprintf(w, "Field '%-15s': missing %4d (%5.2f%%)\n", field, missing, c.percent(missing))
	}

	fmt.Fprintf(w, "\nCategory distribution:\n")
	if len(c.Categories) == 0 {
		fmt.Fprintln(w, "  <no categories set>")
	}
	for _, d := range c.Categories {
		fmt.Fprintf(w, "  %-15s %4d (%5.2f%%)\n", d.Value, d.Count, c.percent(d.Count))
	}

	fmt.Fprintf(w, "\nSaved list distribution:\n")
	if len(c.SavedLists) == 0 {
		fmt.Fprintln(w, "  <no saved_list values set>")
	}
	for _, d := range c.SavedLists {
		fmt.Fprintf(w, "  %-15s %4d (%5.2f%%)\n", d.Value, d.Count, c.percent(d.Count))
	}
}

func (c Completeness) percent(count int) float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(count) / float64(c.Total) * 100
}

func blankString(m map[string]any, key string) bool {
	if m == nil {
		return true
	}
	v, _ := m[key].(string)
	return strings.TrimSpace(v) == ""
}

func nonBlank(m map[string]any, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, _ := m[key].(string)
	if strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func nilOrEmpty(m map[string]any, key string) bool {
	if m == nil {
		return true
	}
	v, ok := m[key]
	return !ok || v == nil || v == ""
}

func isNil(m map[string]any, key string) bool {
	if m == nil {
		return true
	}
	v, ok := m[key]
	return !ok || v == nil
}

// counter tallies values preserving first-seen order for stable ties.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(value string) {
	if _, seen := c.counts[value]; !seen {
		c.order = append(c.order, value)
	}
	c.counts[value]++
}

func (c *counter) sorted() []Distribution {
	out := make([]Distribution, 0, len(c.order))
	for _, value := range c.order {
		out = append(out, Distribution{Value: value, Count: c.counts[value]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
