package weather

import "strings"

// Source tells where in the forecast response a field lives.
type Source int

const (
	// SourceMeta fields are top-level keys of the response.
	SourceMeta Source = iota
	// SourceCurrent fields are keys of the nested "current" object and are
	// requested explicitly through the current= query parameter.
	SourceCurrent
)

// Kind is the JSON type a field is expected to have.
type Kind int

const (
	// KindFloat is any JSON number.
	KindFloat Kind = iota
	// KindUint8 is a JSON integer in 0..255 (day/night flag, WMO weather code).
	KindUint8
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindUint8:
		return "uint8"
	default:
		return "unknown"
	}
}

// Field maps one Open-Meteo variable to the gauge that publishes it.
type Field struct {
	Variable string
	Metric   string
	Help     string
	Source   Source
	Kind     Kind
}

func meta(variable, metric, unit string) Field {
	return Field{Variable: variable, Metric: metric, Help: help(variable, unit), Source: SourceMeta, Kind: KindFloat}
}

func current(variable, unit string, kind Kind) Field {
	return Field{
		Variable: variable,
		Metric:   strings.ToUpper(variable),
		Help:     help(variable, unit),
		Source:   SourceCurrent,
		Kind:     kind,
	}
}

func help(variable, unit string) string {
	if unit == "" {
		return variable
	}
	return variable + " (" + unit + ")"
}

// Fields is the complete set of published values. The order of the current
// entries is the order of the current= list sent to the API.
var Fields = []Field{
	meta("latitude", "LATITUDE", "°N"),
	meta("longitude", "LONGITUDE", "°E"),
	meta("elevation", "ELEVATION", "m"),
	meta("generationtime_ms", "GENERATION_TIME", "ms"),

	current("temperature_2m", "°C", KindFloat),
	current("relativehumidity_2m", "%", KindFloat),
	current("apparent_temperature", "°C", KindFloat),
	current("is_day", "", KindUint8),
	current("precipitation", "mm", KindFloat),
	current("rain", "mm", KindFloat),
	current("showers", "mm", KindFloat),
	current("snowfall", "cm", KindFloat),
	current("weathercode", "wmo code", KindUint8),
	current("cloudcover", "%", KindFloat),
	current("pressure_msl", "hPa", KindFloat),
	current("surface_pressure", "hPa", KindFloat),
	current("windspeed_10m", "km/h", KindFloat),
	current("winddirection_10m", "°", KindFloat),
	current("windgusts_10m", "km/h", KindFloat),
	current("uv_index", "", KindFloat),
	current("uv_index_clear_sky", "", KindFloat),
	current("cape", "J/kg", KindFloat),
	current("freezinglevel_height", "m", KindFloat),
	current("shortwave_radiation", "W/m²", KindFloat),
	current("direct_radiation", "W/m²", KindFloat),
	current("diffuse_radiation", "W/m²", KindFloat),
	current("direct_normal_irradiance", "W/m²", KindFloat),
	current("terrestrial_radiation", "W/m²", KindFloat),
	current("shortwave_radiation_instant", "W/m²", KindFloat),
	current("direct_radiation_instant", "W/m²", KindFloat),
	current("diffuse_radiation_instant", "W/m²", KindFloat),
	current("direct_normal_irradiance_instant", "W/m²", KindFloat),
	current("terrestrial_radiation_instant", "W/m²", KindFloat),
}

// CurrentVariables returns the variables to request in the current= parameter.
func CurrentVariables() []string {
	vars := make([]string, 0, len(Fields))
	for _, f := range Fields {
		if f.Source == SourceCurrent {
			vars = append(vars, f.Variable)
		}
	}
	return vars
}
