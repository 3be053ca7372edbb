package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/observability"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// geocoder keeps its API key in a package variable.
var googleKeyMu sync.Mutex

type reverseFunc func(geocoder.Location) ([]geocoder.Address, error)

// GoogleReverseGeocoder implements weather.ReverseGeocoder with the Google
// Maps Geocoding API. It is used instead of Nominatim for backfill when an
// API key is configured.
type GoogleReverseGeocoder struct {
	name    string
	metrics *observability.Metrics
	reverse reverseFunc
}

func NewGoogleReverseGeocoder(apiKey string, metrics *observability.Metrics) *GoogleReverseGeocoder {
	googleKeyMu.Lock()
	geocoder.ApiKey = apiKey
	googleKeyMu.Unlock()

	return &GoogleReverseGeocoder{
		name:    "google_geocoder",
		metrics: metrics,
		reverse: geocoder.GeocodingReverse,
	}
}

func (g *GoogleReverseGeocoder) Name() string {
	return g.name
}

// ReverseGeocode returns the first address Google reports for lat/lon. The
// underlying client takes no context, so the call runs in its own goroutine
// and is abandoned when ctx ends.
func (g *GoogleReverseGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (weather.PartialGeoResult, error) {
	type reply struct {
		addrs []geocoder.Address
		err   error
	}

	start := time.Now()
	ch := make(chan reply, 1)
	go func() {
		addrs, err := g.reverse(geocoder.Location{Latitude: lat, Longitude: lon})
		ch <- reply{addrs: addrs, err: err}
	}()

	var r reply
	select {
	case <-ctx.Done():
		g.metrics.ObserveProvider(g.name, outcomeUnavailable, time.Since(start))
		return weather.PartialGeoResult{}, fmt.Errorf("%s: %w: %w", g.name, weather.ErrServiceUnavailable, ctx.Err())
	case r = <-ch:
	}

	if r.err != nil {
		g.metrics.ObserveProvider(g.name, outcomeUnavailable, time.Since(start))
		return weather.PartialGeoResult{}, fmt.Errorf("%s: %w: %w", g.name, weather.ErrServiceUnavailable, r.err)
	}
	g.metrics.ObserveProvider(g.name, outcomeSuccess, time.Since(start))
	if len(r.addrs) == 0 {
		return weather.PartialGeoResult{}, fmt.Errorf("%s: no address at %s,%s: %w", g.name, formatCoord(lat), formatCoord(lon), weather.ErrNotFound)
	}

	a := r.addrs[0]
	locality := common.FirstNonEmpty(a.City, a.District, a.County)
	var postcodes []string
	if pc := strings.TrimSpace(a.PostalCode); pc != "" {
		postcodes = []string{pc}
	}

	return weather.PartialGeoResult{
		Name:        common.FirstNonEmpty(common.JoinNonEmpty(", ", locality, a.State, a.Country), a.FormattedAddress),
		Locality:    locality,
		Region:      a.State,
		Country:     a.Country,
		Latitude:    lat,
		Longitude:   lon,
		PostalCodes: postcodes,
	}, nil
}
