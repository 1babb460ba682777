package readings

// Comfort limits for the temperature and humidity sensor.
const (
	TooHot   = 28.0
	TooCold  = 18.0
	TooHumid = 65.0
	TooDry   = 35.0
)

// TemperatureAdvice tells what to do about a temperature in °C.
func TemperatureAdvice(celsius float64) string {
	switch {
	case celsius > TooHot:
		return "Too hot! Start AC."
	case celsius < TooCold:
		return "Too cold! Close windows."
	default:
		return "Ideal temperature."
	}
}

// HumidityAdvice tells what to do about a relative humidity in percent.
func HumidityAdvice(percent float64) string {
	switch {
	case percent > TooHumid:
		return "High humidity! Turn on ventilation."
	case percent < TooDry:
		return "Air too dry!"
	default:
		return "Humidity is ideal."
	}
}
