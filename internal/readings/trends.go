package readings

// Trend series lengths: one point per minute of the last hour, per hour of
// the last day and per day of the last week.
const (
	HourPoints = 60
	DayPoints  = 24
	WeekPoints = 7
)

// Point is one AQI sample of a trend series; Index is the minute, hour or
// day it belongs to.
type Point struct {
	Index int `json:"index"`
	AQI   int `json:"aqi"`
}

// Trends holds the AQI history shown on the trend charts.
type Trends struct {
	Hour []Point `json:"hour"`
	Day  []Point `json:"day"`
	Week []Point `json:"week"`
}

// Trends draws a fresh set of trend series.
func (s *Simulator) Trends() Trends {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Trends{
		Hour: s.series(HourPoints),
		Day:  s.series(DayPoints),
		Week: s.series(WeekPoints),
	}
}

func (s *Simulator) series(n int) []Point {
	points := make([]Point, n)
	for i := range points {
		points[i] = Point{Index: i, AQI: s.rng.IntN(300)}
	}
	return points
}

// Summary is the minimum, maximum and mean AQI of a series.
type Summary struct {
	Min, Max int
	Mean     float64
}

// Summarize reduces points to a Summary. An empty series yields the zero value.
func Summarize(points []Point) Summary {
	if len(points) == 0 {
		return Summary{}
	}
	sum := Summary{Min: points[0].AQI, Max: points[0].AQI}
	total := 0
	for _, p := range points {
		sum.Min = min(sum.Min, p.AQI)
		sum.Max = max(sum.Max, p.AQI)
		total += p.AQI
	}
	sum.Mean = round(float64(total)/float64(len(points)), 1)
	return sum
}
