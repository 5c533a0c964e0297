package hospitals

import (
	"context"
	"errors"
	"math"
	"net/url"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hospital-finder/internal/services/geo"
)

// MaxDistanceMiles is the hard radius filter. A candidate whose rounded
// distance equals the limit is kept.
const MaxDistanceMiles = 37.3

// ErrNotArray is returned when the model output is not a JSON array.
var ErrNotArray = errors.New("model did not return a JSON array")

var (
	errDeadURL = errors.New("url failed liveness probe")
	errTooFar  = errors.New("outside search radius")
)

// Locator resolves a free-form address to coordinates.
type Locator interface {
	Forward(ctx context.Context, query string) (geo.Coordinate, bool)
}

// item is the per-candidate state threaded through the steps.
type item struct {
	raw    RawCandidate
	origin geo.Coordinate
	result HospitalResult
}

// step enriches one item in place. A non-nil error is the reason the item is
// dropped; it never aborts the batch.
type step func(ctx context.Context, it *item) error

// Normalizer turns extracted model output into filtered, ranked hospital
// results.
type Normalizer struct {
	prober      Prober
	locator     Locator
	concurrency int
	steps       []step
}

// NewNormalizer creates a Normalizer. concurrency bounds how many candidates
// are probed and geocoded at once.
func NewNormalizer(prober Prober, locator Locator, concurrency int) *Normalizer {
	if concurrency <= 0 {
		concurrency = 1
	}
	n := &Normalizer{
		prober:      prober,
		locator:     locator,
		concurrency: concurrency,
	}
	n.steps = []step{
		n.checkURL,
		n.locate,
		measure,
		buildMapsURL,
	}
	return n
}

// Normalize validates every candidate, drops the ones that fail a step and
// sorts the rest by (price, distance). Candidates are processed concurrently
// but collected by input index, so ordering never depends on completion order.
func (n *Normalizer) Normalize(ctx context.Context, raw interface{}, origin geo.Coordinate, locality string) ([]HospitalResult, error) {
	candidates, ok := raw.([]interface{})
	if !ok {
		return nil, ErrNotArray
	}

	accepted := make([]*HospitalResult, len(candidates))

	var g errgroup.Group
	g.SetLimit(n.concurrency)
	for i, v := range candidates {
		g.Go(func() error {
			res, err := n.process(ctx, v, origin, locality)
			if err != nil {
				log.Debug().Err(err).Int("index", i).Msg("Dropped hospital candidate")
				return nil
			}
			accepted[i] = res
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]HospitalResult, 0, len(candidates))
	for _, res := range accepted {
		if res != nil {
			results = append(results, *res)
		}
	}

	sortResults(results)

	log.Debug().
		Int("candidates", len(candidates)).
		Int("accepted", len(results)).
		Str("locality", locality).
		Msg("Normalized hospital candidates")

	return results, nil
}

func (n *Normalizer) process(ctx context.Context, v interface{}, origin geo.Coordinate, locality string) (*HospitalResult, error) {
	raw, err := decodeCandidate(v)
	if err != nil {
		return nil, err
	}

	it := &item{
		raw:    raw,
		origin: origin,
		result: HospitalResult{
			Name:            raw.Name,
			Address:         raw.Address,
			Phone:           raw.Phone,
			URL:             raw.URL,
			Latitude:        raw.Latitude,
			Longitude:       raw.Longitude,
			PriceUSD:        raw.PriceUSD,
			PriceIsEstimate: raw.PriceIsEstimate,
			Notes:           raw.Notes,
			SourceLocality:  locality,
		},
	}

	for _, s := range n.steps {
		if err := s(ctx, it); err != nil {
			return nil, err
		}
	}
	return &it.result, nil
}

func (n *Normalizer) checkURL(ctx context.Context, it *item) error {
	if it.raw.URL == nil {
		return nil
	}
	if !n.prober.Alive(ctx, *it.raw.URL) {
		return errDeadURL
	}
	return nil
}

// locate fills missing coordinates from the address.
func (n *Normalizer) locate(ctx context.Context, it *item) error {
	if it.result.Latitude != nil || it.raw.Address == nil || n.locator == nil {
		return nil
	}
	coord, ok := n.locator.Forward(ctx, *it.raw.Address)
	if !ok {
		return nil
	}
	it.result.Latitude = &coord.Lat
	it.result.Longitude = &coord.Lon
	return nil
}

func measure(_ context.Context, it *item) error {
	if it.result.Latitude == nil || it.result.Longitude == nil {
		return nil
	}
	dest := geo.Coordinate{Lat: *it.result.Latitude, Lon: *it.result.Longitude}
	d := math.Round(geo.DistanceMiles(it.origin, dest)*100) / 100
	if d > MaxDistanceMiles {
		return errTooFar
	}
	it.result.DistanceMiles = &d
	return nil
}

func buildMapsURL(_ context.Context, it *item) error {
	var destination string
	switch {
	case it.result.Address != nil:
		destination = *it.result.Address
	case it.result.Latitude != nil && it.result.Longitude != nil:
		destination = geo.Coordinate{Lat: *it.result.Latitude, Lon: *it.result.Longitude}.String()
	default:
		return nil
	}
	link := mapsDirectionsURL(it.origin, destination)
	it.result.MapsURL = &link
	return nil
}

func mapsDirectionsURL(origin geo.Coordinate, destination string) string {
	params := url.Values{}
	params.Set("api", "1")
	params.Set("origin", origin.String())
	params.Set("destination", destination)
	params.Set("travelmode", "driving")
	return "https://www.google.com/maps/dir/?" + params.Encode()
}

func sortResults(results []HospitalResult) {
	sort.SliceStable(results, func(i, j int) bool {
		pi, pj := orInf(results[i].PriceUSD), orInf(results[j].PriceUSD)
		if pi != pj {
			return pi < pj
		}
		return orInf(results[i].DistanceMiles) < orInf(results[j].DistanceMiles)
	})
}

func orInf(v *float64) float64 {
	if v == nil {
		return math.Inf(1)
	}
	return *v
}
