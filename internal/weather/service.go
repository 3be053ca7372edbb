package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Search outcomes reported to the Recorder.
const (
	OutcomeSuccess     = "success"
	OutcomeEmptyQuery  = "empty_query"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
	OutcomeMalformed   = "malformed"
)

// Service runs one search end to end: classify, resolve, fetch, normalize.
type Service struct {
	resolver   *Resolver
	weather    WeatherProvider
	airQuality AirQualityProvider
	timeout    time.Duration
	logger     *slog.Logger
	recorder   Recorder
}

// NewService creates a new Service. A zero timeout leaves the caller's
// context as the only bound on a search.
func NewService(resolver *Resolver, weather WeatherProvider, airQuality AirQualityProvider, timeout time.Duration, logger *slog.Logger, recorder Recorder) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		resolver:   resolver,
		weather:    weather,
		airQuality: airQuality,
		timeout:    timeout,
		logger:     logger,
		recorder:   recorder,
	}
}

// Search resolves rawInput to a location and returns its normalized weather
// and air quality. Either the whole result is returned or an error.
func (s *Service) Search(ctx context.Context, rawInput string) (SearchResult, error) {
	res, err := s.search(ctx, rawInput)
	s.record(err)
	return res, err
}

func (s *Service) search(ctx context.Context, rawInput string) (SearchResult, error) {
	q, err := ParseQuery(rawInput)
	if err != nil {
		return SearchResult{}, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Debug("search started", "query", q.Text, "kind", q.Kind.String())

	loc, err := s.resolver.Resolve(ctx, q)
	if err != nil {
		s.logger.Info("location resolution failed", "query", q.Text, "error", err)
		return SearchResult{}, err
	}
	if loc.PostalCodes == nil {
		loc.PostalCodes = []string{}
	}

	snapshot, airQuality, err := s.fetch(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return SearchResult{}, err
	}

	return SearchResult{
		Query:      q,
		Location:   loc,
		Weather:    snapshot,
		AirQuality: airQuality,
	}, nil
}

// fetch requests weather and air quality concurrently and joins both before
// normalizing. Only the weather call is fatal.
func (s *Service) fetch(ctx context.Context, lat, lon float64) (WeatherSnapshot, AirQualitySnapshot, error) {
	if s.weather == nil {
		return WeatherSnapshot{}, AirQualitySnapshot{}, fmt.Errorf("no weather provider configured: %w", ErrServiceUnavailable)
	}

	var (
		wg         sync.WaitGroup
		forecast   ForecastReading
		weatherErr error
		aq         AirQualityReading
		aqErr      error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		forecast, weatherErr = s.weather.Forecast(ctx, lat, lon)
	}()

	if s.airQuality != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			aq, aqErr = s.airQuality.AirQuality(ctx, lat, lon)
		}()
	}

	wg.Wait()

	if weatherErr != nil {
		s.logger.Error("weather fetch failed", "provider", s.weather.Name(), "lat", lat, "lon", lon, "error", weatherErr)
		if errors.Is(weatherErr, ErrMalformedResponse) || errors.Is(weatherErr, ErrServiceUnavailable) {
			return WeatherSnapshot{}, AirQualitySnapshot{}, weatherErr
		}
		return WeatherSnapshot{}, AirQualitySnapshot{}, fmt.Errorf("weather fetch: %w: %v", ErrServiceUnavailable, weatherErr)
	}

	snapshot, err := NormalizeWeather(forecast)
	if err != nil {
		s.logger.Error("weather payload rejected", "provider", s.weather.Name(), "error", err)
		return WeatherSnapshot{}, AirQualitySnapshot{}, err
	}

	var airQuality AirQualitySnapshot
	if aqErr != nil {
		// Air quality is not critical; the view shows it as unavailable.
		s.logger.Warn("air quality fetch failed", "provider", s.airQuality.Name(), "error", aqErr)
	} else {
		airQuality = NormalizeAirQuality(aq)
	}

	return snapshot, airQuality, nil
}

func (s *Service) record(err error) {
	if s.recorder == nil {
		return
	}
	s.recorder.SearchCompleted(Outcome(err))
}

// Outcome classifies a search error into a metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrEmptyQuery):
		return OutcomeEmptyQuery
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrMalformedResponse):
		return OutcomeMalformed
	default:
		return OutcomeUnavailable
	}
}
