// Package domain models geocoding requests and results exchanged between the
// Google Maps Geocoding API and the agent tool layer.
//
// # Geocoding API Conventions
//
// Forward lookups send the free-text address as the "address" query parameter.
// Reverse lookups send a single "latlng" parameter formatted as "<lat>,<lon>".
// Both carry the API key in "key".
//
// Every response body has a top-level "status" string. "OK" is the only success
// sentinel; anything else ("ZERO_RESULTS", "REQUEST_DENIED", "OVER_QUERY_LIMIT",
// "INVALID_REQUEST", ...) is reported verbatim in the failure text. A response
// can also be "OK" with an empty result list, which is treated the same as a
// status failure.
//
// # Single Result Policy
//
// The API may return several candidate matches. Only the first one is used;
// the vendor orders candidates by relevance and the agent layer has no way to
// disambiguate further without asking the user.
//
// # Failures Are Data
//
// Geocoder implementations never return a Go error. Every failure becomes a
// [GeocodeResult] with OK=false, an [ErrorKind] and a "<kind>: <detail>" text,
// plus the original query echoed back. The only constructors are [Matched]
// and [Failed], so a result cannot carry both a match and an error.
//
// # API Keys
//
// Keys resolve in order: explicit argument, GOOGLE_MAPS_API_KEY, then any
// configured [KeySource]. There is no built-in default key; when nothing
// resolves the call fails with [ErrMissingAPIKey] before touching the network.
package domain
