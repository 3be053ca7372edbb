package weather

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolverFixture struct {
	primary  *mockGeocoder
	fallback *mockFallback
	postal   *mockPostal
	reverse  *mockReverse
	recorder *mockRecorder
}

func newResolverFixture() *resolverFixture {
	return &resolverFixture{
		primary:  &mockGeocoder{},
		fallback: &mockFallback{},
		postal:   &mockPostal{},
		reverse:  &mockReverse{err: errors.New("reverse not expected")},
		recorder: &mockRecorder{},
	}
}

func (f *resolverFixture) resolver() *Resolver {
	return NewResolver(Geocoders{
		Primary:  f.primary,
		Fallback: f.fallback,
		Postal:   f.postal,
		Reverse:  f.reverse,
	}, discardLogger(), f.recorder)
}

func TestResolve_PrimaryHitSkipsFallback(t *testing.T) {
	f := newResolverFixture()
	f.primary.result = berlin()

	loc, err := f.resolver().Resolve(context.Background(), LocationQuery{Kind: QueryByCityName, Text: "Berlin"})
	require.NoError(t, err)

	assert.Equal(t, "Berlin, Land Berlin, Germany", loc.Name)
	assert.Equal(t, SourcePrimary, loc.Source)
	assert.Equal(t, []string{"10117"}, loc.PostalCodes)
	assert.EqualValues(t, 1, f.primary.calls.Load())
	assert.EqualValues(t, 0, f.fallback.calls.Load())
	assert.EqualValues(t, 0, f.reverse.calls.Load(), "postal codes already known")
	assert.Empty(t, f.recorder.backfills)
}

func TestResolve_FallbackOnPrimaryMiss(t *testing.T) {
	f := newResolverFixture()
	f.primary.err = ErrNotFound
	f.fallback.result = PartialGeoResult{
		Name:        "Kyiv, Ukraine",
		Locality:    "Kyiv",
		Latitude:    50.45,
		Longitude:   30.52,
		PostalCodes: []string{"01001"},
	}

	loc, err := f.resolver().Resolve(context.Background(), LocationQuery{Kind: QueryByCityName, Text: "Kiev"})
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, loc.Source)
	assert.Equal(t, "Kyiv, Ukraine", loc.Name)
	assert.EqualValues(t, 1, f.fallback.calls.Load())
}

func TestResolve_PrimaryMalformedTriesFallback(t *testing.T) {
	f := newResolverFixture()
	f.primary.result = PartialGeoResult{Name: "Broken", Latitude: math.NaN(), Longitude: 0, PostalCodes: []string{"1"}}
	f.fallback.result = berlin()

	loc, err := f.resolver().Resolve(context.Background(), LocationQuery{Kind: QueryByCityName, Text: "Berlin"})
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, loc.Source)
}

func TestResolve_BothMissIsNotFound(t *testing.T) {
	f := newResolverFixture()
	f.primary.err = ErrNotFound
	f.fallback.err = ErrNotFound

	_, err := f.resolver().Resolve(context.Background(), LocationQuery{Kind: QueryByCityName, Text: "Xyzzyville"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualValues(t, 0, f.reverse.calls.Load())
}

func TestResolve_PrimaryOutageWithoutFallbackHit(t *testing.T) {
	f := newResolverFixture()
	f.primary.err = ErrServiceUnavailable
	f.fallback.err = ErrNotFound

	_, err := f.resolver().Resolve(context.Background(), LocationQuery{Kind: QueryByCityName, Text: "Berlin"})
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestResolve_FallbackOutageDegradesToNotFound(t *testing.T) {
	f := newResolverFixture()
	f.primary.err = ErrNotFound
	f.fallback.err = ErrServiceUnavailable

	_, err := f.resolver().Resolve(context.Background(), LocationQuery{Kind: QueryByCityName, Text: "Berlin"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_PrimaryOutageRescuedByFallback(t *testing.T) {
	f := newResolverFixture()
	f.primary.err = ErrServiceUnavailable
	f.fallback.result = berlin()

	loc, err := f.resolver().Resolve(context.Background(), LocationQuery{Kind: QueryByCityName, Text: "Berlin"})
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, loc.Source)
}

func TestResolve_PostalCode(t *testing.T) {
	f := newResolverFixture()
	f.postal.result = PartialGeoResult{
		Name:      "New Delhi, Delhi, India",
		Locality:  "New Delhi",
		Latitude:  28.63,
		Longitude: 77.22,
	}

	loc, err := f.resolver().Resolve(context.Background(), LocationQuery{Kind: QueryByPostalCode, Text: "110001"})
	require.NoError(t, err)

	assert.Equal(t, SourcePostalCode, loc.Source)
	assert.Equal(t, []string{"110001"}, loc.PostalCodes)
	assert.Equal(t, "110001", f.postal.lastCode)
	assert.EqualValues(t, 0, f.primary.calls.Load())
	assert.EqualValues(t, 0, f.fallback.calls.Load())
	assert.EqualValues(t, 0, f.reverse.calls.Load())
}

func TestResolve_PostalCodeMiss(t *testing.T) {
	f := newResolverFixture()
	f.postal.err = ErrNotFound

	_, err := f.resolver().Resolve(context.Background(), LocationQuery{Kind: QueryByPostalCode, Text: "000000"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualValues(t, 0, f.primary.calls.Load())
}

func TestResolve_PostalCodeOutage(t *testing.T) {
	f := newResolverFixture()
	f.postal.err = ErrServiceUnavailable

	_, err := f.resolver().Resolve(context.Background(), LocationQuery{Kind: QueryByPostalCode, Text: "110001"})
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.ErrorIs(t, err, ErrGeocodingUnavailable)
}

func TestResolve_BackfillAdoptsPostalCodeAndLocality(t *testing.T) {
	f := newResolverFixture()
	f.primary.result = PartialGeoResult{
		Name:      "Brooklyn, New York, United States",
		Locality:  "Brooklyn",
		Latitude:  40.65,
		Longitude: -73.95,
	}
	f.reverse.err = nil
	f.reverse.result = PartialGeoResult{
		Name:        "Flatbush, New York, United States",
		Locality:    "Flatbush",
		Latitude:    40.65,
		Longitude:   -73.95,
		PostalCodes: []string{"11226"},
	}

	loc, err := f.resolver().Resolve(context.Background(), LocationQuery{Kind: QueryByCityName, Text: "Brooklyn"})
	require.NoError(t, err)

	assert.Equal(t, "Brooklyn, New York, United States (Flatbush)", loc.Name)
	assert.Equal(t, []string{"11226"}, loc.PostalCodes)
	assert.InDelta(t, 40.65, loc.Latitude, 1e-9, "coordinates are not replaced")
	assert.EqualValues(t, 1, f.reverse.calls.Load())
	assert.Equal(t, []string{BackfillAdopted}, f.recorder.backfills)
}

func TestResolve_BackfillSameLocalityKeepsName(t *testing.T) {
	f := newResolverFixture()
	f.primary.result = PartialGeoResult{
		Name:      "Zürich, Zurich, Switzerland",
		Locality:  "Zürich",
		Latitude:  47.37,
		Longitude: 8.54,
	}
	f.reverse.err = nil
	f.reverse.result = PartialGeoResult{Name: "Zurich", Locality: "Zurich", PostalCodes: []string{"8001"}}

	loc, err := f.resolver().Resolve(context.Background(), LocationQuery{Kind: QueryByCityName, Text: "Zurich"})
	require.NoError(t, err)
	assert.Equal(t, "Zürich, Zurich, Switzerland", loc.Name)
	assert.Equal(t, []string{"8001"}, loc.PostalCodes)
}

func TestResolve_BackfillAppendsLocalityContainedInName(t *testing.T) {
	f := newResolverFixture()
	f.primary.result = PartialGeoResult{
		Name:      "Bathurst, New South Wales, Australia",
		Locality:  "Bathurst",
		Latitude:  -33.42,
		Longitude: 149.58,
	}
	f.reverse.err = nil
	f.reverse.result = PartialGeoResult{Name: "Bath", Locality: "Bath"}

	loc, err := f.resolver().Resolve(context.Background(), LocationQuery{Kind: QueryByCityName, Text: "Bathurst"})
	require.NoError(t, err)
	assert.Equal(t, "Bathurst, New South Wales, Australia (Bath)", loc.Name)
	assert.Equal(t, []string{BackfillAdopted}, f.recorder.backfills)
}

func TestResolve_BackfillNothingNew(t *testing.T) {
	f := newResolverFixture()
	f.primary.result = PartialGeoResult{Name: "Tiny, Nowhere", Locality: "Tiny", Latitude: 1, Longitude: 1}
	f.reverse.err = nil
	f.reverse.result = PartialGeoResult{Name: "Tiny", Locality: "Tiny"}

	loc, err := f.resolver().Resolve(context.Background(), LocationQuery{Kind: QueryByCityName, Text: "Tiny"})
	require.NoError(t, err)
	assert.Equal(t, "Tiny, Nowhere", loc.Name)
	assert.Empty(t, loc.PostalCodes)
	assert.Equal(t, []string{BackfillUnchanged}, f.recorder.backfills)
}

func TestResolve_BackfillFailureIsNotFatal(t *testing.T) {
	f := newResolverFixture()
	f.primary.err = ErrNotFound
	f.fallback.result = PartialGeoResult{Name: "Hallstatt, Upper Austria, Austria", Locality: "Hallstatt", Latitude: 47.56, Longitude: 13.65}
	f.reverse.err = ErrServiceUnavailable

	loc, err := f.resolver().Resolve(context.Background(), LocationQuery{Kind: QueryByCityName, Text: "Hallstatt"})
	require.NoError(t, err)
	assert.Equal(t, "Hallstatt, Upper Austria, Austria", loc.Name)
	assert.Empty(t, loc.PostalCodes)
	assert.EqualValues(t, 1, f.reverse.calls.Load(), "backfill runs exactly once")
	assert.Equal(t, []string{BackfillFailed}, f.recorder.backfills)
}

func TestResolve_NoReverseGeocoder(t *testing.T) {
	primary := &mockGeocoder{result: PartialGeoResult{Name: "Tiny", Latitude: 1, Longitude: 1}}
	r := NewResolver(Geocoders{Primary: primary}, discardLogger(), nil)

	loc, err := r.Resolve(context.Background(), LocationQuery{Kind: QueryByCityName, Text: "Tiny"})
	require.NoError(t, err)
	assert.Equal(t, "Tiny", loc.Name)
}

func TestValidateResult(t *testing.T) {
	assert.NoError(t, validateResult(PartialGeoResult{Name: "Null Island", Latitude: 0, Longitude: 0}))
	assert.ErrorIs(t, validateResult(PartialGeoResult{Name: "  ", Latitude: 1, Longitude: 1}), ErrMalformedResponse)
	assert.ErrorIs(t, validateResult(PartialGeoResult{Name: "x", Latitude: 91, Longitude: 1}), ErrMalformedResponse)
	assert.ErrorIs(t, validateResult(PartialGeoResult{Name: "x", Latitude: 1, Longitude: math.Inf(1)}), ErrMalformedResponse)
}
