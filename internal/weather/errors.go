package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned when the search input is blank.
	ErrEmptyQuery = errors.New("empty location query")

	// ErrNotFound is returned when no geocoding provider matched the query.
	ErrNotFound = errors.New("location not found")

	// ErrServiceUnavailable is returned when a required provider call failed
	// or answered with a non-success status.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrGeocodingUnavailable marks an ErrServiceUnavailable raised while
	// resolving the location, before any weather call was made.
	ErrGeocodingUnavailable = fmt.Errorf("geocoding: %w", ErrServiceUnavailable)

	// ErrMalformedResponse is returned when a required provider answered with
	// a payload missing mandatory fields.
	ErrMalformedResponse = errors.New("malformed provider response")
)

// UserMessage turns a search error into the message shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyQuery):
		return "Please enter a city name or pincode."
	case errors.Is(err, ErrNotFound):
		return "City lookup failed. Please check the spelling or try a different city name/pincode."
	case errors.Is(err, ErrMalformedResponse):
		return "Received incomplete weather data. Please try again."
	case errors.Is(err, ErrGeocodingUnavailable):
		return "Failed to fetch location data. Please try again."
	default:
		return "Failed to fetch weather data. Please try again."
	}
}
