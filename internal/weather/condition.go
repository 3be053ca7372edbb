package weather

// ClassifyCondition maps a WMO weather code to a label and icon. It is total:
// codes outside the table map to "Unknown". isDay only picks between the sun
// and moon icons for clear and mainly clear skies.
func ClassifyCondition(code int, isDay bool) WeatherCondition {
	switch {
	case code == 0:
		if isDay {
			return WeatherCondition{Label: "Clear Sky", IconKey: "fa-sun"}
		}
		return WeatherCondition{Label: "Clear Sky", IconKey: "fa-moon"}
	case code == 1:
		if isDay {
			return WeatherCondition{Label: "Mainly Clear", IconKey: "fa-cloud-sun"}
		}
		return WeatherCondition{Label: "Mainly Clear", IconKey: "fa-cloud-moon"}
	case code == 2:
		return WeatherCondition{Label: "Partly Cloudy", IconKey: "fa-cloud-sun"}
	case code == 3:
		return WeatherCondition{Label: "Overcast", IconKey: "fa-cloud"}
	case code == 45 || code == 48:
		return WeatherCondition{Label: "Foggy", IconKey: "fa-smog"}
	case code >= 51 && code <= 57:
		return WeatherCondition{Label: "Drizzle", IconKey: "fa-cloud-rain"}
	case code >= 61 && code <= 67:
		return WeatherCondition{Label: "Rainy", IconKey: "fa-cloud-showers-heavy"}
	case code >= 71 && code <= 77:
		return WeatherCondition{Label: "Snow", IconKey: "fa-snowflake"}
	case code >= 80 && code <= 82:
		return WeatherCondition{Label: "Showers", IconKey: "fa-cloud-showers-water"}
	case code == 85 || code == 86:
		return WeatherCondition{Label: "Snow Showers", IconKey: "fa-snowflake"}
	case code >= 95:
		return WeatherCondition{Label: "Thunderstorm", IconKey: "fa-bolt"}
	default:
		return WeatherCondition{Label: "Unknown", IconKey: "fa-cloud"}
	}
}
