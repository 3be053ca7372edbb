package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/sony/gobreaker"
)

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// Nominatim talks to an OpenStreetMap Nominatim instance. It serves as the
// free-text fallback geocoder, the postal-code searcher and the reverse
// geocoder. Nominatim's usage policy requires a descriptive User-Agent, which
// the shared HTTP client sets.
type Nominatim struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewNominatim(httpCfg HTTPClientConfig, baseURL string) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	return &Nominatim{
		name:    "nominatim",
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: httpCfg,
		circuit: newCircuitBreaker("nominatim"),
	}
}

func (n *Nominatim) Name() string {
	return n.name
}

type nominatimAddress struct {
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	Hamlet      string `json:"hamlet"`
	Suburb      string `json:"suburb"`
	State       string `json:"state"`
	Region      string `json:"region"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	Postcode    string `json:"postcode"`
}

type nominatimPlace struct {
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	Name        string           `json:"name"`
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
	Error       string           `json:"error"`
}

// Search runs a free-text query and returns the top hit.
func (n *Nominatim) Search(ctx context.Context, text string) (weather.PartialGeoResult, error) {
	values := url.Values{}
	values.Set("q", text)
	return n.search(ctx, values, text)
}

// SearchPostalCode runs a structured postal-code query and returns the top hit.
func (n *Nominatim) SearchPostalCode(ctx context.Context, code string) (weather.PartialGeoResult, error) {
	values := url.Values{}
	values.Set("postalcode", code)
	return n.search(ctx, values, code)
}

func (n *Nominatim) search(ctx context.Context, values url.Values, query string) (weather.PartialGeoResult, error) {
	values.Set("format", "json")
	values.Set("addressdetails", "1")
	values.Set("limit", "1")

	var places []nominatimPlace
	if err := getJSON(ctx, n.httpCfg, n.circuit, n.name, n.baseURL+"/search", values, &places); err != nil {
		return weather.PartialGeoResult{}, err
	}
	if len(places) == 0 {
		return weather.PartialGeoResult{}, fmt.Errorf("%s: %q: %w", n.name, query, weather.ErrNotFound)
	}
	return n.toResult(places[0])
}

// ReverseGeocode describes the place at lat/lon.
func (n *Nominatim) ReverseGeocode(ctx context.Context, lat, lon float64) (weather.PartialGeoResult, error) {
	values := url.Values{}
	values.Set("lat", formatCoord(lat))
	values.Set("lon", formatCoord(lon))
	values.Set("format", "json")
	values.Set("addressdetails", "1")

	var place nominatimPlace
	if err := getJSON(ctx, n.httpCfg, n.circuit, n.name, n.baseURL+"/reverse", values, &place); err != nil {
		return weather.PartialGeoResult{}, err
	}
	if place.Error != "" {
		return weather.PartialGeoResult{}, fmt.Errorf("%s reverse: %s: %w", n.name, place.Error, weather.ErrNotFound)
	}
	return n.toResult(place)
}

func (n *Nominatim) toResult(p nominatimPlace) (weather.PartialGeoResult, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(p.Lat), 64)
	if err != nil {
		return weather.PartialGeoResult{}, fmt.Errorf("%s: %w: bad latitude %q", n.name, weather.ErrMalformedResponse, p.Lat)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(p.Lon), 64)
	if err != nil {
		return weather.PartialGeoResult{}, fmt.Errorf("%s: %w: bad longitude %q", n.name, weather.ErrMalformedResponse, p.Lon)
	}

	a := p.Address
	locality := common.FirstNonEmpty(a.City, a.Town, a.Village, a.Hamlet, a.Suburb, p.Name, firstSegment(p.DisplayName))
	region := common.FirstNonEmpty(a.State, a.Region)

	var postcodes []string
	if pc := strings.TrimSpace(a.Postcode); pc != "" {
		postcodes = []string{pc}
	}

	return weather.PartialGeoResult{
		Name:        common.JoinNonEmpty(", ", locality, region, a.Country),
		Locality:    locality,
		Region:      region,
		Country:     a.Country,
		CountryCode: strings.ToUpper(a.CountryCode),
		Latitude:    lat,
		Longitude:   lon,
		PostalCodes: postcodes,
	}, nil
}

func firstSegment(displayName string) string {
	head, _, _ := strings.Cut(displayName, ",")
	return strings.TrimSpace(head)
}
