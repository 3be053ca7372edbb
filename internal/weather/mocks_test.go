package weather

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/i474232898/weather-lookup/internal/logging"
)

var discardLogger = logging.Discard

type mockGeocoder struct {
	result PartialGeoResult
	err    error
	calls  atomic.Int32
}

func (m *mockGeocoder) Geocode(_ context.Context, _ string) (PartialGeoResult, error) {
	m.calls.Add(1)
	return m.result, m.err
}

type mockFallback struct {
	result PartialGeoResult
	err    error
	calls  atomic.Int32
}

func (m *mockFallback) Search(_ context.Context, _ string) (PartialGeoResult, error) {
	m.calls.Add(1)
	return m.result, m.err
}

type mockPostal struct {
	result   PartialGeoResult
	err      error
	calls    atomic.Int32
	lastCode string
}

func (m *mockPostal) SearchPostalCode(_ context.Context, code string) (PartialGeoResult, error) {
	m.calls.Add(1)
	m.lastCode = code
	return m.result, m.err
}

type mockReverse struct {
	result PartialGeoResult
	err    error
	calls  atomic.Int32
}

func (m *mockReverse) ReverseGeocode(_ context.Context, _, _ float64) (PartialGeoResult, error) {
	m.calls.Add(1)
	return m.result, m.err
}

type mockWeather struct {
	reading ForecastReading
	err     error
	calls   atomic.Int32
	// started is closed when Forecast is entered, if set.
	started chan struct{}
	// release blocks Forecast until closed, if set.
	release chan struct{}
}

func (m *mockWeather) Name() string { return "mock-weather" }

func (m *mockWeather) Forecast(_ context.Context, _, _ float64) (ForecastReading, error) {
	m.calls.Add(1)
	if m.started != nil {
		close(m.started)
	}
	if m.release != nil {
		<-m.release
	}
	return m.reading, m.err
}

type mockAirQuality struct {
	reading AirQualityReading
	err     error
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (m *mockAirQuality) Name() string { return "mock-air-quality" }

func (m *mockAirQuality) AirQuality(_ context.Context, _, _ float64) (AirQualityReading, error) {
	m.calls.Add(1)
	if m.started != nil {
		close(m.started)
	}
	if m.release != nil {
		<-m.release
	}
	return m.reading, m.err
}

type mockRecorder struct {
	mu        sync.Mutex
	searches  []string
	backfills []string
}

func (m *mockRecorder) SearchCompleted(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = append(m.searches, outcome)
}

func (m *mockRecorder) BackfillCompleted(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backfills = append(m.backfills, outcome)
}

func ptr[T any](v T) *T { return &v }

// sampleForecast is a complete reading observed at 14:30 local time.
func sampleForecast() ForecastReading {
	return ForecastReading{
		Timezone:         "CEST",
		UTCOffsetSeconds: 7200,
		Current: CurrentReading{
			Time:                "2024-06-01T14:30",
			Temperature:         ptr(22.6),
			ApparentTemperature: ptr(21.94),
			DewPoint:            ptr(12.26),
			Humidity:            ptr(55.0),
			WindSpeed:           ptr(11.34),
			WindDirection:       ptr(250.0),
			WindGusts:           ptr(24.1),
			Pressure:            ptr(1013.24),
			CloudCover:          ptr(40.0),
			Precipitation:       ptr(0.0),
			IsDay:               ptr(1),
			WeatherCode:         ptr(0),
		},
		Hourly: HourlySeries{
			Time:       []string{"2024-06-01T13:00", "2024-06-01T14:00", "2024-06-01T15:00"},
			Visibility: []*float64{ptr(24000.0), ptr(18540.0), ptr(30000.0)},
			UVIndex:    []*float64{ptr(6.0), ptr(4.86), ptr(3.0)},
		},
		Daily: DailySeries{
			Time:           []string{"2024-06-01", "2024-06-02", "2024-06-03"},
			WeatherCode:    []*int{ptr(0), ptr(61), ptr(95)},
			MaxTemperature: []*float64{ptr(24.5), ptr(19.4), ptr(17.0)},
			MinTemperature: []*float64{ptr(12.2), ptr(11.6), ptr(10.0)},
			Sunrise:        []string{"2024-06-01T04:47", "2024-06-02T04:46"},
			Sunset:         []string{"2024-06-01T21:21", "2024-06-02T21:22"},
		},
	}
}

func berlin() PartialGeoResult {
	return PartialGeoResult{
		Name:        "Berlin, Land Berlin, Germany",
		Locality:    "Berlin",
		Region:      "Land Berlin",
		Country:     "Germany",
		CountryCode: "DE",
		Latitude:    52.52,
		Longitude:   13.405,
		PostalCodes: []string{"10117"},
	}
}
