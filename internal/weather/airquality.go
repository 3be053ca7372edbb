package weather

import "math"

// AirQualityReading is the provider-neutral air quality payload.
type AirQualityReading struct {
	USAQI               *float64
	Ozone               *float64
	PM25                *float64
	PM10                *float64
	NitrogenDioxide     *float64
	SulphurDioxide      *float64
	CarbonMonoxide      *float64
	UVIndex             *float64
	AerosolOpticalDepth *float64
}

// ClassifyAQI returns the U.S. AQI band. Upper bounds are inclusive: 50 is
// Good, 51 is Moderate.
func ClassifyAQI(aqi int) AQIBand {
	switch {
	case aqi <= 50:
		return AQIBand{Label: "Good", SeverityClass: "aqi-good"}
	case aqi <= 100:
		return AQIBand{Label: "Moderate", SeverityClass: "aqi-moderate"}
	case aqi <= 150:
		return AQIBand{Label: "Unhealthy for Sensitive Groups", SeverityClass: "aqi-poor"}
	case aqi <= 200:
		return AQIBand{Label: "Unhealthy", SeverityClass: "aqi-poor"}
	case aqi <= 300:
		return AQIBand{Label: "Very Unhealthy", SeverityClass: "aqi-very-poor"}
	default:
		return AQIBand{Label: "Hazardous", SeverityClass: "aqi-hazardous"}
	}
}

// NormalizeAirQuality rounds the AQI to an integer and attaches its band.
func NormalizeAirQuality(r AirQualityReading) AirQualitySnapshot {
	snap := AirQualitySnapshot{
		Ozone:               finiteOrNil(r.Ozone),
		PM25:                finiteOrNil(r.PM25),
		PM10:                finiteOrNil(r.PM10),
		NitrogenDioxide:     finiteOrNil(r.NitrogenDioxide),
		SulphurDioxide:      finiteOrNil(r.SulphurDioxide),
		CarbonMonoxide:      finiteOrNil(r.CarbonMonoxide),
		UVIndex:             finiteOrNil(r.UVIndex),
		AerosolOpticalDepth: finiteOrNil(r.AerosolOpticalDepth),
	}
	if v := finiteOrNil(r.USAQI); v != nil {
		aqi := int(math.Round(*v))
		band := ClassifyAQI(aqi)
		snap.USAQI = &aqi
		snap.Band = &band
	}
	return snap
}

func finiteOrNil(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	out := *v
	return &out
}
