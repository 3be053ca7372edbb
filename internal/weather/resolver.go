package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/i474232898/weather-lookup/internal/common"
)

// Sources of a resolved location.
const (
	SourcePrimary    = "open-meteo"
	SourceFallback   = "nominatim"
	SourcePostalCode = "postal"
)

// Backfill outcomes reported to the Recorder.
const (
	BackfillAdopted   = "adopted"
	BackfillUnchanged = "unchanged"
	BackfillFailed    = "failed"
)

// Geocoders bundles the providers the resolver chains together. Fallback and
// Reverse may be nil; the corresponding steps are then skipped.
type Geocoders struct {
	Primary  Geocoder
	Fallback FallbackGeocoder
	Postal   PostalCodeSearcher
	Reverse  ReverseGeocoder
}

// Resolver turns a LocationQuery into a ResolvedLocation by walking the
// geocoders in a fixed order. Every step is sequential.
type Resolver struct {
	geocoders Geocoders
	logger    *slog.Logger
	recorder  Recorder
}

// NewResolver creates a Resolver. recorder may be nil.
func NewResolver(geocoders Geocoders, logger *slog.Logger, recorder Recorder) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		geocoders: geocoders,
		logger:    logger,
		recorder:  recorder,
	}
}

// Resolve returns a fully populated location or one of ErrNotFound and
// ErrGeocodingUnavailable. Nothing partial is returned on failure.
func (r *Resolver) Resolve(ctx context.Context, q LocationQuery) (ResolvedLocation, error) {
	var (
		loc ResolvedLocation
		err error
	)
	switch q.Kind {
	case QueryByPostalCode:
		loc, err = r.resolvePostalCode(ctx, q.Text)
	default:
		loc, err = r.resolveCityName(ctx, q.Text)
	}
	if err != nil {
		return ResolvedLocation{}, err
	}

	if len(loc.PostalCodes) == 0 {
		loc = r.backfill(ctx, loc)
	}
	return loc, nil
}

func (r *Resolver) resolvePostalCode(ctx context.Context, code string) (ResolvedLocation, error) {
	if r.geocoders.Postal == nil {
		return ResolvedLocation{}, fmt.Errorf("postal code %q: no postal code search configured: %w", code, ErrGeocodingUnavailable)
	}

	res, err := r.geocoders.Postal.SearchPostalCode(ctx, code)
	if err == nil {
		err = validateResult(res)
	}
	if err != nil {
		if errors.Is(err, ErrServiceUnavailable) {
			return ResolvedLocation{}, fmt.Errorf("postal code %q: %w: %w", code, ErrGeocodingUnavailable, err)
		}
		r.logger.Debug("postal code search found no match", "postal_code", code, "error", err)
		return ResolvedLocation{}, fmt.Errorf("postal code %q: %w", code, ErrNotFound)
	}

	// Postal search providers do not reliably echo the code back.
	res.PostalCodes = []string{code}
	return ResolvedLocation{PartialGeoResult: res, Source: SourcePostalCode}, nil
}

func (r *Resolver) resolveCityName(ctx context.Context, name string) (ResolvedLocation, error) {
	var primaryErr error
	if r.geocoders.Primary == nil {
		primaryErr = fmt.Errorf("no primary geocoder configured: %w", ErrGeocodingUnavailable)
	} else {
		res, err := r.geocoders.Primary.Geocode(ctx, name)
		if err == nil {
			err = validateResult(res)
		}
		if err == nil {
			return ResolvedLocation{PartialGeoResult: res, Source: SourcePrimary}, nil
		}
		primaryErr = err
	}
	r.logger.Info("primary geocoder failed, trying fallback", "query", name, "error", primaryErr)

	if r.geocoders.Fallback != nil {
		res, err := r.geocoders.Fallback.Search(ctx, name)
		if err == nil {
			err = validateResult(res)
		}
		if err == nil {
			return ResolvedLocation{PartialGeoResult: res, Source: SourceFallback}, nil
		}
		r.logger.Info("fallback geocoder failed", "query", name, "error", err)
	}

	// Only the primary path is required; a fallback outage degrades to not found.
	if errors.Is(primaryErr, ErrServiceUnavailable) {
		return ResolvedLocation{}, fmt.Errorf("resolve %q: %w: %w", name, ErrGeocodingUnavailable, primaryErr)
	}
	return ResolvedLocation{}, fmt.Errorf("resolve %q: %w", name, ErrNotFound)
}

// backfill asks the reverse geocoder once for a postal code and the nearest
// locality. Failure leaves the location untouched.
func (r *Resolver) backfill(ctx context.Context, loc ResolvedLocation) ResolvedLocation {
	if r.geocoders.Reverse == nil {
		return loc
	}

	rev, err := r.geocoders.Reverse.ReverseGeocode(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		r.logger.Warn("reverse geocoding failed",
			"lat", loc.Latitude,
			"lon", loc.Longitude,
			"error", err,
		)
		r.recordBackfill(BackfillFailed)
		return loc
	}

	changed := false
	for _, pc := range rev.PostalCodes {
		if pc = strings.TrimSpace(pc); pc != "" {
			loc.PostalCodes = append(loc.PostalCodes, pc)
			changed = true
		}
	}

	locality := common.FirstNonEmpty(rev.Locality, rev.Name)
	if locality != "" && !common.SameName(locality, loc.Locality) && !common.HasNamePart(loc.Name, locality) {
		loc.Name = fmt.Sprintf("%s (%s)", loc.Name, locality)
		changed = true
	}

	if changed {
		r.recordBackfill(BackfillAdopted)
	} else {
		r.recordBackfill(BackfillUnchanged)
	}
	return loc
}

func (r *Resolver) recordBackfill(outcome string) {
	if r.recorder != nil {
		r.recorder.BackfillCompleted(outcome)
	}
}

func validateResult(res PartialGeoResult) error {
	if strings.TrimSpace(res.Name) == "" {
		return fmt.Errorf("%w: empty location name", ErrMalformedResponse)
	}
	if !validCoordinate(res.Latitude, 90) || !validCoordinate(res.Longitude, 180) {
		return fmt.Errorf("%w: invalid coordinates %v,%v", ErrMalformedResponse, res.Latitude, res.Longitude)
	}
	return nil
}

func validCoordinate(v, limit float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -limit && v <= limit
}
