package cache

import (
	"crypto/sha1"
	"fmt"
	"strconv"
	"time"
)

// GeocodeTTL bounds how long shared (Redis) geocode entries live. The
// in-process LRU ignores it and evicts by capacity instead.
const GeocodeTTL = 7 * 24 * time.Hour

// ReverseGeocodeKey generates the cache key for a reverse lookup. Coordinates
// are formatted at full precision so the key matches the exact input pair.
func ReverseGeocodeKey(lat, lon float64) string {
	return fmt.Sprintf("geo:reverse:%s:%s",
		strconv.FormatFloat(lat, 'g', -1, 64),
		strconv.FormatFloat(lon, 'g', -1, 64))
}

// ForwardGeocodeKey generates the cache key for a forward lookup
func ForwardGeocodeKey(query string) string {
	hash := sha1.Sum([]byte(query))
	return fmt.Sprintf("geo:forward:%x", hash)
}
