package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/sony/gobreaker"
)

const (
	DefaultOpenMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultOpenMeteoForecastURL  = "https://api.open-meteo.com/v1/forecast"
)

const openMeteoCurrentFields = "temperature_2m,relative_humidity_2m,apparent_temperature,is_day," +
	"precipitation,weather_code,cloud_cover,pressure_msl,wind_speed_10m,wind_direction_10m," +
	"wind_gusts_10m,dew_point_2m"

// OpenMeteoGeocoder implements weather.Geocoder with the Open-Meteo geocoding API.
type OpenMeteoGeocoder struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoGeocoder(httpCfg HTTPClientConfig, baseURL string) *OpenMeteoGeocoder {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoGeocodingURL
	}
	return &OpenMeteoGeocoder{
		name:    "openmeteo_geocoding",
		baseURL: baseURL,
		httpCfg: httpCfg,
		circuit: newCircuitBreaker("openmeteo_geocoding"),
	}
}

func (g *OpenMeteoGeocoder) Name() string {
	return g.name
}

// Geocode returns the first match for name.
func (g *OpenMeteoGeocoder) Geocode(ctx context.Context, name string) (weather.PartialGeoResult, error) {
	values := url.Values{}
	values.Set("name", name)
	values.Set("count", "1")
	values.Set("language", "en")
	values.Set("format", "json")

	var payload struct {
		Results []struct {
			Name        string   `json:"name"`
			Latitude    *float64 `json:"latitude"`
			Longitude   *float64 `json:"longitude"`
			Country     string   `json:"country"`
			CountryCode string   `json:"country_code"`
			Admin1      string   `json:"admin1"`
			Postcodes   []string `json:"postcodes"`
		} `json:"results"`
	}
	if err := getJSON(ctx, g.httpCfg, g.circuit, g.name, g.baseURL, values, &payload); err != nil {
		return weather.PartialGeoResult{}, err
	}

	if len(payload.Results) == 0 {
		return weather.PartialGeoResult{}, fmt.Errorf("%s: %q: %w", g.name, name, weather.ErrNotFound)
	}

	r := payload.Results[0]
	if r.Latitude == nil || r.Longitude == nil {
		return weather.PartialGeoResult{}, fmt.Errorf("%s: %w: result without coordinates", g.name, weather.ErrMalformedResponse)
	}

	return weather.PartialGeoResult{
		Name:        common.JoinNonEmpty(", ", r.Name, r.Admin1, r.Country),
		Locality:    r.Name,
		Region:      r.Admin1,
		Country:     r.Country,
		CountryCode: r.CountryCode,
		Latitude:    *r.Latitude,
		Longitude:   *r.Longitude,
		PostalCodes: r.Postcodes,
	}, nil
}

// OpenMeteoProvider implements weather.WeatherProvider for the Open-Meteo forecast API.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(httpCfg HTTPClientConfig, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoForecastURL
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		httpCfg: httpCfg,
		circuit: newCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Forecast(ctx context.Context, lat, lon float64) (weather.ForecastReading, error) {
	values := url.Values{}
	values.Set("latitude", formatCoord(lat))
	values.Set("longitude", formatCoord(lon))
	values.Set("current", openMeteoCurrentFields)
	values.Set("hourly", "visibility,uv_index")
	values.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,sunrise,sunset")
	values.Set("timezone", "auto")

	var payload struct {
		Timezone             string `json:"timezone"`
		TimezoneAbbreviation string `json:"timezone_abbreviation"`
		UTCOffsetSeconds     int    `json:"utc_offset_seconds"`
		Current              *struct {
			Time                string   `json:"time"`
			Temperature         *float64 `json:"temperature_2m"`
			RelativeHumidity    *float64 `json:"relative_humidity_2m"`
			ApparentTemperature *float64 `json:"apparent_temperature"`
			IsDay               *int     `json:"is_day"`
			Precipitation       *float64 `json:"precipitation"`
			WeatherCode         *int     `json:"weather_code"`
			CloudCover          *float64 `json:"cloud_cover"`
			PressureMSL         *float64 `json:"pressure_msl"`
			WindSpeed           *float64 `json:"wind_speed_10m"`
			WindDirection       *float64 `json:"wind_direction_10m"`
			WindGusts           *float64 `json:"wind_gusts_10m"`
			DewPoint            *float64 `json:"dew_point_2m"`
		} `json:"current"`
		Hourly struct {
			Time       []string   `json:"time"`
			Visibility []*float64 `json:"visibility"`
			UVIndex    []*float64 `json:"uv_index"`
		} `json:"hourly"`
		Daily struct {
			Time           []string   `json:"time"`
			WeatherCode    []*int     `json:"weather_code"`
			MaxTemperature []*float64 `json:"temperature_2m_max"`
			MinTemperature []*float64 `json:"temperature_2m_min"`
			Sunrise        []string   `json:"sunrise"`
			Sunset         []string   `json:"sunset"`
		} `json:"daily"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.name, p.baseURL, values, &payload); err != nil {
		return weather.ForecastReading{}, err
	}
	if payload.Current == nil {
		return weather.ForecastReading{}, fmt.Errorf("%s: %w: current block missing", p.name, weather.ErrMalformedResponse)
	}

	c := payload.Current
	return weather.ForecastReading{
		Timezone:         common.FirstNonEmpty(payload.TimezoneAbbreviation, payload.Timezone, "UTC"),
		UTCOffsetSeconds: payload.UTCOffsetSeconds,
		Current: weather.CurrentReading{
			Time:                c.Time,
			Temperature:         c.Temperature,
			ApparentTemperature: c.ApparentTemperature,
			DewPoint:            c.DewPoint,
			Humidity:            c.RelativeHumidity,
			WindSpeed:           c.WindSpeed,
			WindDirection:       c.WindDirection,
			WindGusts:           c.WindGusts,
			Pressure:            c.PressureMSL,
			CloudCover:          c.CloudCover,
			Precipitation:       c.Precipitation,
			IsDay:               c.IsDay,
			WeatherCode:         c.WeatherCode,
		},
		Hourly: weather.HourlySeries{
			Time:       payload.Hourly.Time,
			Visibility: payload.Hourly.Visibility,
			UVIndex:    payload.Hourly.UVIndex,
		},
		Daily: weather.DailySeries{
			Time:           payload.Daily.Time,
			WeatherCode:    payload.Daily.WeatherCode,
			MaxTemperature: payload.Daily.MaxTemperature,
			MinTemperature: payload.Daily.MinTemperature,
			Sunrise:        payload.Daily.Sunrise,
			Sunset:         payload.Daily.Sunset,
		},
	}, nil
}
