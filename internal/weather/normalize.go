package weather

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Layouts used by the forecast provider for local timestamps and dates.
const (
	localTimeLayout = "2006-01-02T15:04"
	dateLayout      = "2006-01-02"
	hourPrefixLen   = len("2006-01-02T15")
)

// ForecastReading is the provider-neutral forecast payload handed to NormalizeWeather.
type ForecastReading struct {
	Timezone         string
	UTCOffsetSeconds int
	Current          CurrentReading
	Hourly           HourlySeries
	Daily            DailySeries
}

// CurrentReading is the instantaneous block. Time, Temperature, WeatherCode and
// IsDay are mandatory.
type CurrentReading struct {
	Time                string
	Temperature         *float64
	ApparentTemperature *float64
	DewPoint            *float64
	Humidity            *float64
	WindSpeed           *float64
	WindDirection       *float64
	WindGusts           *float64
	Pressure            *float64
	CloudCover          *float64
	Precipitation       *float64
	IsDay               *int
	WeatherCode         *int
}

// HourlySeries holds hour-indexed readings keyed by Time.
type HourlySeries struct {
	Time       []string
	Visibility []*float64
	UVIndex    []*float64
}

// DailySeries holds day-indexed readings keyed by Time; index 0 is today.
type DailySeries struct {
	Time           []string
	WeatherCode    []*int
	MaxTemperature []*float64
	MinTemperature []*float64
	Sunrise        []string
	Sunset         []string
}

// NormalizeWeather flattens a forecast reading into a WeatherSnapshot.
func NormalizeWeather(r ForecastReading) (WeatherSnapshot, error) {
	cur := r.Current
	switch {
	case cur.Time == "":
		return WeatherSnapshot{}, fmt.Errorf("%w: current time missing", ErrMalformedResponse)
	case cur.Temperature == nil:
		return WeatherSnapshot{}, fmt.Errorf("%w: current temperature missing", ErrMalformedResponse)
	case cur.WeatherCode == nil:
		return WeatherSnapshot{}, fmt.Errorf("%w: current weather code missing", ErrMalformedResponse)
	case cur.IsDay == nil:
		return WeatherSnapshot{}, fmt.Errorf("%w: current day/night flag missing", ErrMalformedResponse)
	}

	loc := time.FixedZone(r.Timezone, r.UTCOffsetSeconds)
	observedAt, err := time.ParseInLocation(localTimeLayout, cur.Time, loc)
	if err != nil {
		return WeatherSnapshot{}, fmt.Errorf("%w: current time %q: %v", ErrMalformedResponse, cur.Time, err)
	}

	isDay := *cur.IsDay == 1
	snap := WeatherSnapshot{
		ObservedAt:          observedAt,
		Timezone:            r.Timezone,
		Temperature:         int(math.Round(*cur.Temperature)),
		ApparentTemperature: rounded(cur.ApparentTemperature, 1),
		DewPoint:            rounded(cur.DewPoint, 1),
		Humidity:            rounded(cur.Humidity, 0),
		WindSpeed:           rounded(cur.WindSpeed, 1),
		WindDirection:       rounded(cur.WindDirection, 0),
		WindGusts:           rounded(cur.WindGusts, 1),
		Pressure:            rounded(cur.Pressure, 1),
		CloudCover:          rounded(cur.CloudCover, 0),
		Precipitation:       rounded(cur.Precipitation, 1),
		IsDay:               isDay,
		WeatherCode:         *cur.WeatherCode,
		Condition:           ClassifyCondition(*cur.WeatherCode, isDay),
		Sunrise:             FormatTimeOfDay(firstString(r.Daily.Sunrise)),
		Sunset:              FormatTimeOfDay(firstString(r.Daily.Sunset)),
		Daily:               normalizeDaily(r.Daily),
	}

	idx := HourIndex(cur.Time, r.Hourly.Time)
	if v := valueAt(r.Hourly.Visibility, idx); v != nil {
		km := Round(*v/1000, 1)
		snap.VisibilityKm = &km
	}
	snap.UVIndex = rounded(valueAt(r.Hourly.UVIndex, idx), 1)

	return snap, nil
}

// HourIndex finds the hourly slot matching the instantaneous timestamp. The
// timestamp is truncated to the hour and the first hourly entry with that
// prefix wins; without a match the first hour (index 0) is used.
func HourIndex(current string, hourly []string) int {
	if len(current) < hourPrefixLen {
		return 0
	}
	key := current[:hourPrefixLen]
	for i, ts := range hourly {
		if strings.HasPrefix(ts, key) {
			return i
		}
	}
	return 0
}

// FormatVisibility renders a visibility in meters as kilometers with one decimal.
func FormatVisibility(meters float64) string {
	return fmt.Sprintf("%.1f km", meters/1000)
}

// FormatTimeOfDay renders a provider local timestamp as "6:41 AM".
func FormatTimeOfDay(ts string) string {
	if ts == "" {
		return Unavailable
	}
	t, err := time.Parse(localTimeLayout, ts)
	if err != nil {
		return Unavailable
	}
	return t.Format("3:04 PM")
}

// Round rounds val to the given number of decimal places.
func Round(val float64, precision int) float64 {
	p := math.Pow10(precision)
	return math.Round(val*p) / p
}

func normalizeDaily(d DailySeries) []DailyForecast {
	days := make([]DailyForecast, 0, len(d.Time))
	for i, date := range d.Time {
		maxT := valueAt(d.MaxTemperature, i)
		minT := valueAt(d.MinTemperature, i)
		if maxT == nil || minT == nil {
			continue
		}
		day, err := time.Parse(dateLayout, date)
		if err != nil {
			continue
		}
		code := -1
		if i < len(d.WeatherCode) && d.WeatherCode[i] != nil {
			code = *d.WeatherCode[i]
		}
		days = append(days, DailyForecast{
			Date:           date,
			Weekday:        day.Format("Mon"),
			MaxTemperature: int(math.Round(*maxT)),
			MinTemperature: int(math.Round(*minT)),
			Condition:      ClassifyCondition(code, true),
		})
	}
	return days
}

func valueAt(series []*float64, i int) *float64 {
	if i < 0 || i >= len(series) {
		return nil
	}
	return finiteOrNil(series[i])
}

func rounded(v *float64, precision int) *float64 {
	v = finiteOrNil(v)
	if v == nil {
		return nil
	}
	out := Round(*v, precision)
	return &out
}

func firstString(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
