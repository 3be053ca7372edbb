package weather

import (
	"regexp"
	"strings"
)

var postalCodePattern = regexp.MustCompile(`^\d{4,10}$`)

// ParseQuery classifies raw user input. After trimming surrounding whitespace,
// four to ten digits is a postal code; anything else non-blank is a city name.
func ParseQuery(raw string) (LocationQuery, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return LocationQuery{}, ErrEmptyQuery
	}
	if postalCodePattern.MatchString(text) {
		return LocationQuery{Kind: QueryByPostalCode, Text: text}, nil
	}
	return LocationQuery{Kind: QueryByCityName, Text: text}, nil
}
