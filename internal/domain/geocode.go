package domain

import (
	"strconv"
	"strings"
)

// ValidateForward rejects lookups that cannot produce a useful API call.
// It returns a failed result and false when the address is blank.
func ValidateForward(address string) (GeocodeResult, bool) {
	if strings.TrimSpace(address) == "" {
		return Failed(ForwardRequest(address), ErrInvalidRequest, "address is required"), false
	}
	return GeocodeResult{}, true
}

// ValidateReverse rejects coordinates outside the WGS-84 range.
func ValidateReverse(lat, lon float64) (GeocodeResult, bool) {
	q := ReverseRequest(lat, lon)
	switch {
	case !isFinite(lat) || !isFinite(lon):
		return Failed(q, ErrInvalidRequest, "coordinates must be finite"), false
	case lat < -90 || lat > 90:
		return Failed(q, ErrInvalidRequest, "latitude must be within [-90, 90]"), false
	case lon < -180 || lon > 180:
		return Failed(q, ErrInvalidRequest, "longitude must be within [-180, 180]"), false
	}
	return GeocodeResult{}, true
}

// FormatLatLng renders coordinates as the "lat,lon" query value using the
// shortest decimal form that round-trips.
func FormatLatLng(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
}
