// Package present turns a search result into the strings the weather page displays.
package present

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	longDateLayout = "Monday, January 2, 2006"
	mapSpan        = 0.05
)

// View is a fully formatted page. Every field is ready to render as-is.
type View struct {
	LocationName string         `json:"locationName"`
	PostalCodes  string         `json:"postalCodes"`
	Date         string         `json:"date"`
	Temperature  string         `json:"temperature"`
	FeelsLike    string         `json:"feelsLike"`
	Condition    string         `json:"condition"`
	IconClass    string         `json:"iconClass"`
	WindSpeed    string         `json:"windSpeed"`
	Humidity     string         `json:"humidity"`
	Visibility   string         `json:"visibility"`
	UVIndex      string         `json:"uvIndex"`
	Pressure     string         `json:"pressure"`
	Sunrise      string         `json:"sunrise"`
	Sunset       string         `json:"sunset"`
	AirQuality   AirQualityView `json:"airQuality"`
	Forecast     []ForecastCard `json:"forecast"`
	MapURL       string         `json:"mapUrl"`
}

type AirQualityView struct {
	Value       string `json:"value"`
	Status      string `json:"status"`
	StatusClass string `json:"statusClass"`
	PM25        string `json:"pm25"`
	PM10        string `json:"pm10"`
	NO2         string `json:"no2"`
	O3          string `json:"o3"`
	SO2         string `json:"so2"`
	CO          string `json:"co"`
	UV          string `json:"uv"`
	Aerosol     string `json:"aerosol"`
}

type ForecastCard struct {
	Day       string `json:"day"`
	IconClass string `json:"iconClass"`
	Temp      string `json:"temp"`
}

// Builder stamps views with the current date from its clock.
type Builder struct {
	clock clockwork.Clock
}

func NewBuilder(clock clockwork.Clock) *Builder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Builder{clock: clock}
}

func (b *Builder) Build(res weather.SearchResult) View {
	return BuildView(res, b.clock.Now())
}

// BuildView formats res. The date is now, shown in the location's time zone.
func BuildView(res weather.SearchResult, now time.Time) View {
	w := res.Weather
	if !w.ObservedAt.IsZero() {
		now = now.In(w.ObservedAt.Location())
	}

	v := View{
		LocationName: res.Location.Name,
		PostalCodes:  orUnavailable(strings.Join(res.Location.PostalCodes, ", ")),
		Date:         now.Format(longDateLayout),
		Temperature:  fmt.Sprintf("%d°C", w.Temperature),
		FeelsLike:    withUnit(w.ApparentTemperature, "°C"),
		Condition:    w.Condition.Label,
		IconClass:    iconClass(w.Condition.IconKey) + " weather-icon",
		WindSpeed:    withUnit(w.WindSpeed, " km/h"),
		Humidity:     withUnit(w.Humidity, "%"),
		Visibility:   weather.Unavailable,
		UVIndex:      number(w.UVIndex),
		Pressure:     withUnit(w.Pressure, " hPa"),
		Sunrise:      orUnavailable(w.Sunrise),
		Sunset:       orUnavailable(w.Sunset),
		AirQuality:   airQualityView(res.AirQuality),
		Forecast:     make([]ForecastCard, 0, len(w.Daily)),
		MapURL:       MapEmbedURL(res.Location.Latitude, res.Location.Longitude),
	}
	if w.VisibilityKm != nil {
		v.Visibility = weather.FormatVisibility(*w.VisibilityKm * 1000)
	}

	for _, d := range w.Daily {
		v.Forecast = append(v.Forecast, ForecastCard{
			Day:       d.Weekday,
			IconClass: iconClass(d.Condition.IconKey),
			Temp:      fmt.Sprintf("%d° / %d°", d.MaxTemperature, d.MinTemperature),
		})
	}
	return v
}

func airQualityView(a weather.AirQualitySnapshot) AirQualityView {
	v := AirQualityView{
		Value:       weather.Unavailable,
		Status:      weather.Unavailable,
		StatusClass: "aqi-unavailable",
		PM25:        number(a.PM25),
		PM10:        number(a.PM10),
		NO2:         number(a.NitrogenDioxide),
		O3:          number(a.Ozone),
		SO2:         number(a.SulphurDioxide),
		CO:          number(a.CarbonMonoxide),
		UV:          number(a.UVIndex),
		Aerosol:     number(a.AerosolOpticalDepth),
	}
	if a.USAQI != nil {
		v.Value = strconv.Itoa(*a.USAQI)
	}
	if a.Band != nil {
		v.Status = a.Band.Label
		v.StatusClass = a.Band.SeverityClass
	}
	return v
}

// MapEmbedURL returns an OpenStreetMap embed URL with a marker at lat/lon.
func MapEmbedURL(lat, lon float64) string {
	return fmt.Sprintf(
		"https://www.openstreetmap.org/export/embed.html?bbox=%.4f%%2C%.4f%%2C%.4f%%2C%.4f&layer=mapnik&marker=%.4f%%2C%.4f",
		lon-mapSpan, lat-mapSpan, lon+mapSpan, lat+mapSpan, lat, lon,
	)
}

func iconClass(key string) string {
	return "fa-solid " + key
}

func number(v *float64) string {
	if v == nil {
		return weather.Unavailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func withUnit(v *float64, unit string) string {
	if v == nil {
		return weather.Unavailable
	}
	return number(v) + unit
}

func orUnavailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return weather.Unavailable
	}
	return s
}
