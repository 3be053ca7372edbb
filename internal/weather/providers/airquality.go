package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/sony/gobreaker"
)

const DefaultOpenMeteoAirQualityURL = "https://air-quality-api.open-meteo.com/v1/air-quality"

const airQualityCurrentFields = "us_aqi,pm10,pm2_5,nitrogen_dioxide,ozone,sulphur_dioxide," +
	"carbon_monoxide,uv_index,aerosol_optical_depth"

// OpenMeteoAirQuality implements weather.AirQualityProvider.
type OpenMeteoAirQuality struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoAirQuality(httpCfg HTTPClientConfig, baseURL string) *OpenMeteoAirQuality {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoAirQualityURL
	}
	return &OpenMeteoAirQuality{
		name:    "openmeteo_air_quality",
		baseURL: baseURL,
		httpCfg: httpCfg,
		circuit: newCircuitBreaker("openmeteo_air_quality"),
	}
}

func (a *OpenMeteoAirQuality) Name() string {
	return a.name
}

func (a *OpenMeteoAirQuality) AirQuality(ctx context.Context, lat, lon float64) (weather.AirQualityReading, error) {
	values := url.Values{}
	values.Set("latitude", formatCoord(lat))
	values.Set("longitude", formatCoord(lon))
	values.Set("current", airQualityCurrentFields)
	values.Set("timezone", "auto")

	var payload struct {
		Current *struct {
			USAQI               *float64 `json:"us_aqi"`
			PM10                *float64 `json:"pm10"`
			PM25                *float64 `json:"pm2_5"`
			NitrogenDioxide     *float64 `json:"nitrogen_dioxide"`
			Ozone               *float64 `json:"ozone"`
			SulphurDioxide      *float64 `json:"sulphur_dioxide"`
			CarbonMonoxide      *float64 `json:"carbon_monoxide"`
			UVIndex             *float64 `json:"uv_index"`
			AerosolOpticalDepth *float64 `json:"aerosol_optical_depth"`
		} `json:"current"`
	}
	if err := getJSON(ctx, a.httpCfg, a.circuit, a.name, a.baseURL, values, &payload); err != nil {
		return weather.AirQualityReading{}, err
	}
	if payload.Current == nil {
		return weather.AirQualityReading{}, fmt.Errorf("%s: %w: current block missing", a.name, weather.ErrMalformedResponse)
	}

	c := payload.Current
	return weather.AirQualityReading{
		USAQI:               c.USAQI,
		Ozone:               c.Ozone,
		PM25:                c.PM25,
		PM10:                c.PM10,
		NitrogenDioxide:     c.NitrogenDioxide,
		SulphurDioxide:      c.SulphurDioxide,
		CarbonMonoxide:      c.CarbonMonoxide,
		UVIndex:             c.UVIndex,
		AerosolOpticalDepth: c.AerosolOpticalDepth,
	}, nil
}
