package hospitals

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"hospital-finder/internal/services/geo"
)

const candidateSchemaJSON = `{
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1, "pattern": "\\S"}
  }
}`

var candidateSchema = mustCompileSchema("candidate.json", candidateSchemaJSON)

var errInvalidShape = errors.New("not an object with a non-empty name")

func mustCompileSchema(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return schema
}

// decodeCandidate validates one element of the model's array and coerces it
// into a RawCandidate. Only the name is required; every other field falls
// back to absent (or true, for price_is_estimate) when it has the wrong type.
func decodeCandidate(v interface{}) (RawCandidate, error) {
	if err := candidateSchema.Validate(v); err != nil {
		return RawCandidate{}, fmt.Errorf("%w: %v", errInvalidShape, err)
	}
	m := v.(map[string]interface{})

	c := RawCandidate{
		Name:            strings.TrimSpace(m["name"].(string)),
		Address:         optString(m["address"]),
		Phone:           optString(m["phone"]),
		URL:             optString(m["url"]),
		Notes:           optString(m["notes"]),
		PriceUSD:        optPrice(m["price_usd"]),
		PriceIsEstimate: estimateFlag(m["price_is_estimate"]),
	}

	// coordinates only count as a pair of in-range JSON numbers
	lat, latOK := m["latitude"].(float64)
	lon, lonOK := m["longitude"].(float64)
	if latOK && lonOK && (geo.Coordinate{Lat: lat, Lon: lon}).Valid() {
		c.Latitude = &lat
		c.Longitude = &lon
	}

	return c, nil
}

func optString(v interface{}) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optPrice(v interface{}) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func estimateFlag(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1":
			return true
		case "false", "no", "0":
			return false
		}
	}
	return true
}
