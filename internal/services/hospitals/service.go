package hospitals

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hospital-finder/internal/apperr"
	"hospital-finder/internal/services/geo"
	"hospital-finder/internal/services/llm"
)

// Geocoder resolves coordinates to a locality and addresses to coordinates.
type Geocoder interface {
	Locator
	Reverse(ctx context.Context, c geo.Coordinate) geo.Place
}

// Service answers hospital price searches.
type Service struct {
	gateway    llm.Gateway
	geocoder   Geocoder
	normalizer *Normalizer
	options    llm.Options
}

// NewService creates a Service. opts carries the model temperature and token
// limit; web search is always requested.
func NewService(gateway llm.Gateway, geocoder Geocoder, normalizer *Normalizer, opts llm.Options) *Service {
	opts.WebSearch = true
	return &Service{
		gateway:    gateway,
		geocoder:   geocoder,
		normalizer: normalizer,
		options:    opts,
	}
}

// Search resolves the request origin, asks the model for nearby hospitals
// and returns the normalized results.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	if !s.gateway.Configured() {
		return nil, apperr.Config("Missing OPENROUTER_API_KEY")
	}

	condition := strings.TrimSpace(req.Condition)
	if condition == "" {
		return nil, apperr.InvalidInput("condition required")
	}

	origin, err := s.resolveOrigin(ctx, req)
	if err != nil {
		return nil, err
	}

	place := s.geocoder.Reverse(ctx, origin)
	locality := place.Label
	if locality == "" {
		locality = geo.FallbackLabel
	}

	start := time.Now()
	content, err := s.gateway.Complete(ctx, llm.Request{
		System:  systemPrompt,
		User:    userPrompt(locality, condition),
		Options: s.options,
	})
	if err != nil {
		return nil, gatewayError(err)
	}

	extracted, _ := llm.ExtractJSON(content)
	results, err := s.normalizer.Normalize(ctx, extracted, origin, locality)
	if err != nil {
		if errors.Is(err, ErrNotArray) {
			return nil, apperr.Upstream("Model did not return a JSON array", nil)
		}
		return nil, fmt.Errorf("normalize results: %w", err)
	}

	log.Info().
		Str("locality", locality).
		Str("condition", condition).
		Int("results", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("Hospital search completed")

	return &Response{Results: results}, nil
}

// resolveOrigin prefers explicit coordinates and falls back to geocoding the
// free-text location.
func (s *Service) resolveOrigin(ctx context.Context, req Request) (geo.Coordinate, error) {
	lat, lon := req.Lat, req.Lon

	if location := strings.TrimSpace(req.Location); location != "" && (lat == nil || lon == nil) {
		coord, ok := s.geocoder.Forward(ctx, location)
		if !ok {
			return geo.Coordinate{}, apperr.InvalidInput("Could not find location: '%s'", location)
		}
		return coord, nil
	}

	if lat == nil || lon == nil {
		return geo.Coordinate{}, apperr.InvalidInput("Location required (enable GPS or enter city/zip)")
	}

	latF, latOK := toFloat(lat)
	lonF, lonOK := toFloat(lon)
	if !latOK || !lonOK {
		return geo.Coordinate{}, apperr.InvalidInput("lat/lon must be numbers")
	}

	origin := geo.Coordinate{Lat: latF, Lon: lonF}
	if !origin.Valid() {
		return geo.Coordinate{}, apperr.InvalidInput("lat/lon out of range")
	}
	return origin, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func gatewayError(err error) error {
	var statusErr *llm.StatusError
	switch {
	case errors.Is(err, llm.ErrMissingCredentials):
		return apperr.Config("Missing OPENROUTER_API_KEY")
	case errors.As(err, &statusErr):
		return apperr.Upstream(fmt.Sprintf("OpenRouter error %d", statusErr.StatusCode), errors.New(statusErr.Body))
	case errors.Is(err, llm.ErrMalformedResponse):
		return apperr.Upstream("Malformed response from model", nil)
	default:
		return apperr.Upstream("OpenRouter request failed", err)
	}
}
