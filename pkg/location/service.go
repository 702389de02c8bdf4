// Package location is a small Nominatim client used to resolve place names to
// coordinates. Lookups are rate limited to one request per second per the
// Nominatim usage policy, and can be backed by a local cache so repeated runs
// do not hit the API again.
package location

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// ErrNoResults is returned when the API answers with an empty result list.
var ErrNoResults = errors.New("no geocoding results")

// Result holds the resolved info about a place.
type Result struct {
	Name        string
	DisplayName string
	Lat         float64
	Lon         float64
	Category    string
	City        string
	Prefecture  string
	Country     string
	CountryCode string
	OsmType     string
	OsmID       int64
}

// nominatimResult is shaped for the API response.
type nominatimResult struct {
	OsmType     string `json:"osm_type"`
	OsmID       int64  `json:"osm_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Address     struct {
		Road        string `json:"road"`
		Suburb      string `json:"suburb"`
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		Province    string `json:"province"`
		Region      string `json:"region"`
		Postcode    string `json:"postcode"`
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

// Client queries the Nominatim search endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *Cache
	log        zerolog.Logger
}

func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		userAgent:  "tabimap/1.0",
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		log:        log,
	}
}

// WithCache attaches a cache consulted before and written after each lookup.
func (c *Client) WithCache(cache *Cache) *Client {
	c.cache = cache
	return c
}

// WithBaseURL points the client at a different Nominatim instance, such as a
// self-hosted one.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// Geocode looks up a place by free-form query and returns the best match.
// A cached answer bypasses both the rate limiter and the network.
func (c *Client) Geocode(ctx context.Context, query string) (*Result, error) {
	if c.cache != nil {
		if result, ok := c.cache.Get(query); ok {
			c.log.Debug().Str("query", query).Msg("geocode cache hit")
			return result, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")
	params.Set("accept-language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode %q: unexpected status %s", query, resp.Status)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("geocode %q: decode response: %w", query, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("geocode %q: %w", query, ErrNoResults)
	}

	result, err := toResult(results[0])
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}

	if c.cache != nil {
		if err := c.cache.Put(query, *result); err != nil {
			c.log.Warn().Err(err).Str("query", query).Msg("failed to cache geocode result")
		}
	}
	return result, nil
}

func toResult(r nominatimResult) (*Result, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse latitude %q: %w", r.Lat, err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse longitude %q: %w", r.Lon, err)
	}

	city := r.Address.City
	if city == "" {
		city = r.Address.Town
	}
	if city == "" {
		city = r.Address.Village
	}
	pref := r.Address.Province
	if pref == "" {
		pref = r.Address.Region
	}

	return &Result{
		Name:        r.Name,
		DisplayName: r.DisplayName,
		Lat:         lat,
		Lon:         lon,
		Category:    r.Type,
		City:        city,
		Prefecture:  pref,
		Country:     r.Address.Country,
		CountryCode: r.Address.CountryCode,
		OsmType:     r.OsmType,
		OsmID:       r.OsmID,
	}, nil
}
