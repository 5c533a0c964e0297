package hospitals

// Request is the body of a hospital price search. Lat and Lon accept JSON
// numbers or numeric strings.
type Request struct {
	Lat       interface{} `json:"lat,omitempty"`
	Lon       interface{} `json:"lon,omitempty"`
	Location  string      `json:"location,omitempty"`
	Condition string      `json:"condition"`
}

// Response carries the ranked results.
type Response struct {
	Results []HospitalResult `json:"results"`
}

// HospitalResult is one accepted hospital. Absent optional fields encode as
// null.
type HospitalResult struct {
	Name            string   `json:"name"`
	Address         *string  `json:"address"`
	Phone           *string  `json:"phone"`
	URL             *string  `json:"url"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	DistanceMiles   *float64 `json:"distance_miles"`
	PriceUSD        *float64 `json:"price_usd"`
	PriceIsEstimate bool     `json:"price_is_estimate"`
	Notes           *string  `json:"notes"`
	MapsURL         *string  `json:"maps_url"`
	SourceLocality  string   `json:"source_locality"`
}

// RawCandidate is a model-emitted hospital after per-field coercion.
type RawCandidate struct {
	Name            string
	Address         *string
	Phone           *string
	URL             *string
	Latitude        *float64
	Longitude       *float64
	PriceUSD        *float64
	PriceIsEstimate bool
	Notes           *string
}
