package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hospital-finder/internal/cache"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	// FallbackLabel is the locality used when reverse geocoding fails.
	FallbackLabel = "this area"
	unknownLabel  = "Unknown location"
	userAgentName = "hospital-price-finder/1.0"
)

// Nominatim resolves places against an OpenStreetMap Nominatim server.
// Lookups are memoized in the injected cache by exact input.
type Nominatim struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	timeout    time.Duration
	cache      cache.Cache
	group      singleflight.Group
}

// NewNominatim creates a geocoder. contactEmail is embedded in the
// User-Agent as the Nominatim usage policy asks; c may be nil to disable
// memoization.
func NewNominatim(baseURL, contactEmail string, timeout time.Duration, c cache.Cache) *Nominatim {
	if contactEmail == "" {
		contactEmail = "no-email-provided"
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Nominatim{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  fmt.Sprintf("%s (%s)", userAgentName, contactEmail),
		timeout:    timeout,
		cache:      c,
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City          string `json:"city"`
		Town          string `json:"town"`
		Village       string `json:"village"`
		Suburb        string `json:"suburb"`
		County        string `json:"county"`
		State         string `json:"state"`
		Region        string `json:"region"`
		StateDistrict string `json:"state_district"`
		Country       string `json:"country"`
	} `json:"address"`
}

type searchResponse []struct {
	Lat         interface{} `json:"lat"`
	Lon         interface{} `json:"lon"`
	DisplayName string      `json:"display_name"`
}

// forwardResult is the cached form of a forward lookup; Found=false records
// a definitive miss.
type forwardResult struct {
	Found bool    `json:"found"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

// Reverse resolves a coordinate to a place. It never fails: any error
// degrades to a Place labelled FallbackLabel.
func (n *Nominatim) Reverse(ctx context.Context, coord Coordinate) Place {
	key := cache.ReverseGeocodeKey(coord.Lat, coord.Lon)

	var cached Place
	if n.lookup(ctx, key, &cached) {
		return cached
	}

	v, ok := n.shared(ctx, key, func(ctx context.Context) interface{} {
		place, err := n.reverse(ctx, coord)
		if err != nil {
			log.Warn().Err(err).Str("coord", coord.String()).Msg("Reverse geocoding failed")
			return Place{Label: FallbackLabel}
		}
		n.store(ctx, key, place)
		return place
	})
	if !ok {
		return Place{Label: FallbackLabel}
	}
	return v.(Place)
}

// Forward resolves a free-form address or place name to a coordinate.
// The boolean is false when nothing was found or the lookup failed.
func (n *Nominatim) Forward(ctx context.Context, query string) (Coordinate, bool) {
	if strings.TrimSpace(query) == "" {
		return Coordinate{}, false
	}
	key := cache.ForwardGeocodeKey(query)

	var cached forwardResult
	if n.lookup(ctx, key, &cached) {
		return Coordinate{Lat: cached.Lat, Lon: cached.Lon}, cached.Found
	}

	v, ok := n.shared(ctx, key, func(ctx context.Context) interface{} {
		result, err := n.forward(ctx, query)
		if err != nil {
			log.Warn().Err(err).Str("query", query).Msg("Forward geocoding failed")
			return forwardResult{}
		}
		n.store(ctx, key, result)
		return result
	})
	if !ok {
		return Coordinate{}, false
	}
	result := v.(forwardResult)
	return Coordinate{Lat: result.Lat, Lon: result.Lon}, result.Found
}

// shared runs one lookup per key for all concurrent callers. The lookup is
// detached from any single caller's cancellation and bounded by the client
// timeout instead; a caller whose ctx ends first gets ok=false while the
// others still receive the result.
func (n *Nominatim) shared(ctx context.Context, key string, fn func(ctx context.Context) interface{}) (interface{}, bool) {
	ch := n.group.DoChan(key, func() (interface{}, error) {
		return fn(context.WithoutCancel(ctx)), nil
	})
	select {
	case res := <-ch:
		return res.Val, true
	case <-ctx.Done():
		return nil, false
	}
}

func (n *Nominatim) reverse(ctx context.Context, coord Coordinate) (Place, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	params.Set("zoom", "10")
	params.Set("addressdetails", "1")

	var resp reverseResponse
	if err := n.get(ctx, "/reverse", params, &resp); err != nil {
		return Place{}, err
	}

	addr := resp.Address
	place := Place{
		City:    firstNonEmpty(addr.City, addr.Town, addr.Village, addr.Suburb, addr.County),
		Region:  firstNonEmpty(addr.State, addr.Region, addr.StateDistrict),
		Country: firstNonEmpty(addr.Country),
	}

	var parts []string
	for _, p := range []*string{place.City, place.Region, place.Country} {
		if p != nil {
			parts = append(parts, *p)
		}
	}
	switch {
	case len(parts) > 0:
		place.Label = strings.Join(parts, ", ")
	case resp.DisplayName != "":
		place.Label = resp.DisplayName
	default:
		place.Label = unknownLabel
	}
	return place, nil
}

func (n *Nominatim) forward(ctx context.Context, query string) (forwardResult, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("q", query)
	params.Set("limit", "1")

	var results searchResponse
	if err := n.get(ctx, "/search", params, &results); err != nil {
		return forwardResult{}, err
	}
	if len(results) == 0 {
		return forwardResult{}, nil
	}

	lat, okLat := parseDegrees(results[0].Lat)
	lon, okLon := parseDegrees(results[0].Lon)
	if !okLat || !okLon {
		return forwardResult{}, nil
	}
	return forwardResult{Found: true, Lat: lat, Lon: lon}, nil
}

func (n *Nominatim) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s%s?%s", n.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (n *Nominatim) lookup(ctx context.Context, key string, out interface{}) bool {
	if n.cache == nil {
		return false
	}
	data, err := n.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrKeyNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("Geocode cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Discarding undecodable geocode cache entry")
		return false
	}
	return true
}

func (n *Nominatim) store(ctx context.Context, key string, value interface{}) {
	if n.cache == nil {
		return
	}
	if err := n.cache.Set(ctx, key, value, cache.GeocodeTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Geocode cache write failed")
	}
}

func firstNonEmpty(values ...string) *string {
	for _, v := range values {
		if v != "" {
			return &v
		}
	}
	return nil
}

// parseDegrees accepts the string coordinates Nominatim returns as well as
// plain JSON numbers.
func parseDegrees(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	case float64:
		return t, true
	default:
		return 0, false
	}
}
