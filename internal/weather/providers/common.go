package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/i474232898/weather-lookup/internal/observability"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// HTTPClientConfig bundles the HTTP client and instrumentation shared by all providers.
type HTTPClientConfig struct {
	Client  *resty.Client
	Metrics *observability.Metrics
}

// NewHTTPClientConfig wraps client in a resty client that identifies itself
// with userAgent on every request.
func NewHTTPClientConfig(client *http.Client, userAgent string, metrics *observability.Metrics) HTTPClientConfig {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	rc := resty.NewWithClient(client).
		SetHeader("Accept", "application/json")
	if userAgent != "" {
		rc.SetHeader("User-Agent", userAgent)
	}
	return HTTPClientConfig{Client: rc, Metrics: metrics}
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// Provider call outcomes used as metric labels.
const (
	outcomeSuccess     = "success"
	outcomeUnavailable = "unavailable"
	outcomeMalformed   = "malformed"
)

var tracer = otel.Tracer("github.com/i474232898/weather-lookup/internal/weather/providers")

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// getJSON issues a single GET through the circuit breaker and decodes the
// body into out. There are no retries. Transport failures and non-2xx
// statuses wrap weather.ErrServiceUnavailable; undecodable bodies wrap
// weather.ErrMalformedResponse.
func getJSON(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	provider string,
	endpoint string,
	params url.Values,
	out any,
) error {
	ctx, span := tracer.Start(ctx, provider+" GET", trace.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("http.url", endpoint),
	))
	defer span.End()

	start := time.Now()
	err := doGet(ctx, cfg, cb, provider, endpoint, params, out)

	outcome := outcomeSuccess
	switch {
	case errors.Is(err, weather.ErrMalformedResponse):
		outcome = outcomeMalformed
	case err != nil:
		outcome = outcomeUnavailable
	}
	cfg.Metrics.ObserveProvider(provider, outcome, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	return err
}

func doGet(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	provider string,
	endpoint string,
	params url.Values,
	out any,
) error {
	if cfg.Client == nil {
		return fmt.Errorf("%s: %w: %w", provider, weather.ErrServiceUnavailable, errNoHTTPClient)
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.R().
			SetContext(ctx).
			SetQueryParamsFromValues(params).
			Get(endpoint)
		if execErr != nil {
			return nil, execErr
		}

		// Handle rate limiting and server errors explicitly.
		if resp.StatusCode() == http.StatusTooManyRequests {
			return nil, errRateLimited
		}
		if resp.StatusCode() >= 500 {
			return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode())
		}
		if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode())
		}

		return resp.Body(), nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%s: %w: %w: %v", provider, weather.ErrServiceUnavailable, errCircuitOpen, err)
		}
		return fmt.Errorf("%s request: %w: %w", provider, weather.ErrServiceUnavailable, err)
	}

	body, ok := result.([]byte)
	if !ok {
		return fmt.Errorf("%s: %w: unexpected result type from circuit breaker", provider, weather.ErrServiceUnavailable)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s decode: %w: %w", provider, weather.ErrMalformedResponse, err)
	}
	return nil
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
