package hospitals

import (
	"context"
	"encoding/json"
	"math"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-finder/internal/services/geo"
)

type fakeProber struct {
	mu   sync.Mutex
	dead map[string]bool
	seen []string
}

func (p *fakeProber) Alive(_ context.Context, rawURL string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, rawURL)
	return !p.dead[rawURL]
}

type fakeLocator struct {
	places map[string]geo.Coordinate
}

func (l *fakeLocator) Forward(_ context.Context, query string) (geo.Coordinate, bool) {
	c, ok := l.places[query]
	return c, ok
}

func decodeRaw(t *testing.T, src string) interface{} {
	t.Helper()
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(src), &v))
	return v
}

func names(results []HospitalResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Name
	}
	return out
}

// latForMiles returns the latitude due north of the equator/prime meridian
// origin at the given great-circle distance.
func latForMiles(miles float64) float64 {
	return miles / (6371 * 0.621371) * 180 / math.Pi
}

var origin = geo.Coordinate{Lat: 0, Lon: 0}

func TestNormalize_SortsByPriceThenAbsent(t *testing.T) {
	n := NewNormalizer(&fakeProber{}, nil, 4)
	raw := decodeRaw(t, `[{"name":"A","price_usd":"200"}, {"name":"B","price_usd":100}, {"name":"C"}]`)

	results, err := n.Normalize(context.Background(), raw, origin, "Seattle, Washington, United States")
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A", "C"}, names(results))
	require.NotNil(t, results[1].PriceUSD)
	assert.Equal(t, 200.0, *results[1].PriceUSD)
	assert.Nil(t, results[2].PriceUSD)
	for _, r := range results {
		assert.Equal(t, "Seattle, Washington, United States", r.SourceLocality)
	}
}

func TestNormalize_TieBreaksByDistanceThenInputOrder(t *testing.T) {
	n := NewNormalizer(&fakeProber{}, nil, 4)
	near, far := latForMiles(5), latForMiles(20)
	raw := []interface{}{
		map[string]interface{}{"name": "Far", "price_usd": 100.0, "latitude": far, "longitude": 0.0},
		map[string]interface{}{"name": "NoCoords1", "price_usd": 100.0},
		map[string]interface{}{"name": "Near", "price_usd": 100.0, "latitude": near, "longitude": 0.0},
		map[string]interface{}{"name": "NoCoords2", "price_usd": 100.0},
	}

	results, err := n.Normalize(context.Background(), raw, origin, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"Near", "Far", "NoCoords1", "NoCoords2"}, names(results))
}

func TestNormalize_DropsDeadURL(t *testing.T) {
	prober := &fakeProber{dead: map[string]bool{"https://dead.example.org": true}}
	n := NewNormalizer(prober, nil, 4)
	raw := decodeRaw(t, `[
		{"name":"Mercy","url":"https://dead.example.org","price_usd":10},
		{"name":"Mercy","price_usd":10},
		{"name":"Grace","url":"https://alive.example.org"}
	]`)

	results, err := n.Normalize(context.Background(), raw, origin, "x")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "Mercy", results[0].Name)
	assert.Nil(t, results[0].URL)
	assert.Equal(t, "Grace", results[1].Name)
	assert.ElementsMatch(t, []string{"https://dead.example.org", "https://alive.example.org"}, prober.seen)
}

func TestNormalize_RadiusFilter(t *testing.T) {
	tests := []struct {
		name  string
		miles float64
		kept  bool
	}{
		{"ten miles", 10, true},
		{"boundary is inclusive", MaxDistanceMiles, true},
		{"just outside", 37.36, false},
		{"fifty miles", 50, false},
	}

	n := NewNormalizer(&fakeProber{}, nil, 1)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []interface{}{map[string]interface{}{
				"name":      "H",
				"latitude":  latForMiles(tt.miles),
				"longitude": 0.0,
			}}

			results, err := n.Normalize(context.Background(), raw, origin, "x")
			require.NoError(t, err)

			if !tt.kept {
				assert.Empty(t, results)
				return
			}
			require.Len(t, results, 1)
			require.NotNil(t, results[0].DistanceMiles)
			assert.InDelta(t, tt.miles, *results[0].DistanceMiles, 0.005)
		})
	}
}

func TestNormalize_DropsInvalidShapes(t *testing.T) {
	n := NewNormalizer(&fakeProber{}, nil, 4)
	raw := decodeRaw(t, `[
		"just a string",
		42,
		null,
		{"address":"no name"},
		{"name":""},
		{"name":"   "},
		{"name":7},
		{"name":"Kept"}
	]`)

	results, err := n.Normalize(context.Background(), raw, origin, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kept"}, names(results))
}

func TestNormalize_NotArray(t *testing.T) {
	n := NewNormalizer(&fakeProber{}, nil, 4)

	for _, raw := range []interface{}{nil, map[string]interface{}{"name": "A"}, "text", 1.0} {
		_, err := n.Normalize(context.Background(), raw, origin, "x")
		assert.ErrorIs(t, err, ErrNotArray)
	}
}

func TestNormalize_EmptyArray(t *testing.T) {
	n := NewNormalizer(&fakeProber{}, nil, 4)

	results, err := n.Normalize(context.Background(), []interface{}{}, origin, "x")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestNormalize_GeocodesAddressWhenCoordinatesMissing(t *testing.T) {
	locator := &fakeLocator{places: map[string]geo.Coordinate{
		"1 Near St": {Lat: latForMiles(3), Lon: 0},
		"9 Far Rd":  {Lat: latForMiles(80), Lon: 0},
	}}
	n := NewNormalizer(&fakeProber{}, locator, 4)
	raw := decodeRaw(t, `[
		{"name":"Near","address":"1 Near St"},
		{"name":"Far","address":"9 Far Rd"},
		{"name":"Unknown","address":"nowhere"},
		{"name":"HalfCoords","address":"1 Near St","latitude":"12.5","longitude":1.0}
	]`)

	results, err := n.Normalize(context.Background(), raw, origin, "x")
	require.NoError(t, err)
	require.Equal(t, []string{"Near", "HalfCoords", "Unknown"}, names(results))

	near := results[0]
	require.NotNil(t, near.Latitude)
	assert.InDelta(t, latForMiles(3), *near.Latitude, 1e-9)
	require.NotNil(t, near.DistanceMiles)
	assert.InDelta(t, 3, *near.DistanceMiles, 0.005)

	unknown := results[2]
	assert.Nil(t, unknown.Latitude)
	assert.Nil(t, unknown.DistanceMiles)
}

func TestNormalize_MapsURL(t *testing.T) {
	n := NewNormalizer(&fakeProber{}, nil, 4)
	origin := geo.Coordinate{Lat: 47.6062, Lon: -122.3321}
	raw := decodeRaw(t, `[
		{"name":"ByAddress","address":"1959 NE Pacific St, Seattle, WA","price_usd":1},
		{"name":"ByCoords","latitude":47.65,"longitude":-122.31,"price_usd":2},
		{"name":"Neither","price_usd":3}
	]`)

	results, err := n.Normalize(context.Background(), raw, origin, "x")
	require.NoError(t, err)
	require.Len(t, results, 3)

	parse := func(r HospitalResult) url.Values {
		require.NotNil(t, r.MapsURL)
		u, err := url.Parse(*r.MapsURL)
		require.NoError(t, err)
		assert.Equal(t, "www.google.com", u.Host)
		assert.Equal(t, "/maps/dir/", u.Path)
		return u.Query()
	}

	q := parse(results[0])
	assert.Equal(t, "1", q.Get("api"))
	assert.Equal(t, "47.6062,-122.3321", q.Get("origin"))
	assert.Equal(t, "1959 NE Pacific St, Seattle, WA", q.Get("destination"))
	assert.Equal(t, "driving", q.Get("travelmode"))

	q = parse(results[1])
	assert.Equal(t, "47.65,-122.31", q.Get("destination"))

	assert.Nil(t, results[2].MapsURL)
}

func TestNormalize_CanceledContext(t *testing.T) {
	n := NewNormalizer(&fakeProber{}, nil, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := n.Normalize(ctx, []interface{}{map[string]interface{}{"name": "A"}}, origin, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeCandidate_Coercion(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		price     *float64
		estimate  bool
		hasCoords bool
	}{
		{"numeric price", `{"name":"A","price_usd":120.5}`, ptr(120.5), true, false},
		{"string price", `{"name":"A","price_usd":" 99 "}`, ptr(99), true, false},
		{"junk price", `{"name":"A","price_usd":"call for quote"}`, nil, true, false},
		{"bool price", `{"name":"A","price_usd":true}`, nil, true, false},
		{"nan price", `{"name":"A","price_usd":"NaN"}`, nil, true, false},
		{"estimate false", `{"name":"A","price_is_estimate":false}`, nil, false, false},
		{"estimate string no", `{"name":"A","price_is_estimate":"no"}`, nil, false, false},
		{"estimate zero", `{"name":"A","price_is_estimate":0}`, nil, false, false},
		{"estimate garbage", `{"name":"A","price_is_estimate":"maybe"}`, nil, true, false},
		{"estimate null", `{"name":"A","price_is_estimate":null}`, nil, true, false},
		{"coords", `{"name":"A","latitude":10,"longitude":20}`, nil, true, true},
		{"coords as strings", `{"name":"A","latitude":"10","longitude":"20"}`, nil, true, false},
		{"coords out of range", `{"name":"A","latitude":100,"longitude":20}`, nil, true, false},
		{"one coord", `{"name":"A","latitude":10}`, nil, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v interface{}
			require.NoError(t, json.Unmarshal([]byte(tt.src), &v))

			c, err := decodeCandidate(v)
			require.NoError(t, err)

			assert.Equal(t, tt.price, c.PriceUSD)
			assert.Equal(t, tt.estimate, c.PriceIsEstimate)
			assert.Equal(t, tt.hasCoords, c.Latitude != nil && c.Longitude != nil)
		})
	}
}

func TestDecodeCandidate_OptionalStrings(t *testing.T) {
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"name":" St. Luke ","address":"  ","phone":"555-0100","url":12,"notes":"cash price"}`), &v))

	c, err := decodeCandidate(v)
	require.NoError(t, err)

	assert.Equal(t, "St. Luke", c.Name)
	assert.Nil(t, c.Address)
	require.NotNil(t, c.Phone)
	assert.Equal(t, "555-0100", *c.Phone)
	assert.Nil(t, c.URL)
	require.NotNil(t, c.Notes)
	assert.Equal(t, "cash price", *c.Notes)
}

func ptr(f float64) *float64 { return &f }
