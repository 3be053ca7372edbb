package weather

import (
	"time"
)

// Unavailable is shown in place of a value a provider did not report.
const Unavailable = "N/A"

// QueryKind tells the resolver which geocoding path a query takes.
type QueryKind int

const (
	QueryByCityName QueryKind = iota
	QueryByPostalCode
)

func (k QueryKind) String() string {
	if k == QueryByPostalCode {
		return "postal_code"
	}
	return "city_name"
}

func (k QueryKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// LocationQuery is the classified user input for one search.
type LocationQuery struct {
	Kind QueryKind `json:"kind"`
	Text string    `json:"text"`
}

// PartialGeoResult is what a single geocoding provider knows about a place.
type PartialGeoResult struct {
	Name        string   `json:"name"`
	Locality    string   `json:"locality,omitempty"`
	Region      string   `json:"region,omitempty"`
	Country     string   `json:"country,omitempty"`
	CountryCode string   `json:"countryCode,omitempty"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	PostalCodes []string `json:"postalCodes"`
}

// ResolvedLocation is the canonical location produced by the resolver.
// Name is never empty and the coordinates are finite and in range.
type ResolvedLocation struct {
	PartialGeoResult
	Source string `json:"source"`
}

// WeatherCondition is the display label and icon for a WMO weather code.
type WeatherCondition struct {
	Label   string `json:"label"`
	IconKey string `json:"iconKey"`
}

// WeatherSnapshot is the normalized weather view for a location at search time.
type WeatherSnapshot struct {
	ObservedAt time.Time `json:"observedAt"`
	Timezone   string    `json:"timezone"`

	// Temperature is rounded for the headline; the secondary figures keep one decimal.
	Temperature         int      `json:"temperatureC"`
	ApparentTemperature *float64 `json:"apparentTemperatureC,omitempty"`
	DewPoint            *float64 `json:"dewPointC,omitempty"`
	Humidity            *float64 `json:"humidityPercent,omitempty"`
	WindSpeed           *float64 `json:"windSpeedKmh,omitempty"`
	WindDirection       *float64 `json:"windDirectionDeg,omitempty"`
	WindGusts           *float64 `json:"windGustsKmh,omitempty"`
	Pressure            *float64 `json:"pressureHpa,omitempty"`
	CloudCover          *float64 `json:"cloudCoverPercent,omitempty"`
	Precipitation       *float64 `json:"precipitationMm,omitempty"`
	IsDay               bool     `json:"isDay"`

	WeatherCode int              `json:"weatherCode"`
	Condition   WeatherCondition `json:"condition"`

	// Hour-aligned readings.
	VisibilityKm *float64 `json:"visibilityKm,omitempty"`
	UVIndex      *float64 `json:"uvIndex,omitempty"`

	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`

	Daily []DailyForecast `json:"daily"`
}

// DailyForecast is one card of the multi-day outlook.
type DailyForecast struct {
	Date           string           `json:"date"`
	Weekday        string           `json:"weekday"`
	MaxTemperature int              `json:"maxTemperatureC"`
	MinTemperature int              `json:"minTemperatureC"`
	Condition      WeatherCondition `json:"condition"`
}

// AQIBand is a U.S. AQI severity band.
type AQIBand struct {
	Label         string `json:"label"`
	SeverityClass string `json:"severityClass"`
}

// AirQualitySnapshot holds the optional air quality figures. A nil field means the
// provider did not report it; an all-nil snapshot means air quality is unavailable.
type AirQualitySnapshot struct {
	USAQI               *int     `json:"usAqi,omitempty"`
	Band                *AQIBand `json:"band,omitempty"`
	Ozone               *float64 `json:"ozone,omitempty"`
	PM25                *float64 `json:"pm2_5,omitempty"`
	PM10                *float64 `json:"pm10,omitempty"`
	NitrogenDioxide     *float64 `json:"nitrogenDioxide,omitempty"`
	SulphurDioxide      *float64 `json:"sulphurDioxide,omitempty"`
	CarbonMonoxide      *float64 `json:"carbonMonoxide,omitempty"`
	UVIndex             *float64 `json:"uvIndex,omitempty"`
	AerosolOpticalDepth *float64 `json:"aerosolOpticalDepth,omitempty"`
}

// Available reports whether the provider returned anything usable.
func (a AirQualitySnapshot) Available() bool {
	return a.USAQI != nil || a.Ozone != nil || a.PM25 != nil || a.PM10 != nil ||
		a.NitrogenDioxide != nil || a.SulphurDioxide != nil || a.CarbonMonoxide != nil ||
		a.UVIndex != nil || a.AerosolOpticalDepth != nil
}

// SearchResult is everything one successful search produces.
type SearchResult struct {
	Query      LocationQuery      `json:"query"`
	Location   ResolvedLocation   `json:"location"`
	Weather    WeatherSnapshot    `json:"weather"`
	AirQuality AirQualitySnapshot `json:"airQuality"`
}
