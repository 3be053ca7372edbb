package weather

import (
	"context"
)

// Geocoder is the primary structured geocoder, queried by place name.
// A miss is reported as ErrNotFound.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (PartialGeoResult, error)
}

// FallbackGeocoder resolves free text when the primary geocoder has no match.
type FallbackGeocoder interface {
	Search(ctx context.Context, text string) (PartialGeoResult, error)
}

// PostalCodeSearcher resolves a postal code to a place.
type PostalCodeSearcher interface {
	SearchPostalCode(ctx context.Context, code string) (PartialGeoResult, error)
}

// ReverseGeocoder resolves coordinates to the nearest locality and postal code.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (PartialGeoResult, error)
}

// WeatherProvider abstracts a forecast source (e.g. Open-Meteo).
type WeatherProvider interface {
	Name() string
	Forecast(ctx context.Context, lat, lon float64) (ForecastReading, error)
}

// AirQualityProvider abstracts an air quality source.
type AirQualityProvider interface {
	Name() string
	AirQuality(ctx context.Context, lat, lon float64) (AirQualityReading, error)
}

// Recorder receives search and backfill outcomes for metrics. Nil is allowed.
type Recorder interface {
	SearchCompleted(outcome string)
	BackfillCompleted(outcome string)
}
