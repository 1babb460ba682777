// Package readings produces simulated purifier sensor readings, trend series
// and climate advice, and keeps the purifier controls. There is no real
// sensor.
package readings

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// Reading is one sensor sample.
type Reading struct {
	PM25        int       `json:"pm25"`
	CO2         int       `json:"co2"`
	NH3         int       `json:"nh3"`
	Benzene     float64   `json:"benzene"`
	Smoke       int       `json:"smoke"`
	VOCs        int       `json:"vocs"`
	AQI         int       `json:"aqi"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Status      string    `json:"status"`
	Category    string    `json:"category"`
	TakenAt     time.Time `json:"takenAt"`
}

// AlertAQI is the index from which the purifier should be switched on.
const AlertAQI = 150

// Dashboard status names. The dashboard reports every reading on this
// four-step scale.
const (
	StatusExcellent = "Excellent"
	StatusModerate  = "Moderate"
	StatusUnhealthy = "Unhealthy"
	StatusHazardous = "Hazardous"
)

// Classify names the dashboard status of aqi.
func Classify(aqi int) string {
	switch {
	case aqi < 50:
		return StatusExcellent
	case aqi < 100:
		return StatusModerate
	case aqi < AlertAQI:
		return StatusUnhealthy
	default:
		return StatusHazardous
	}
}

type band struct {
	max      int
	category string
	color    string
}

// bands is the finer six-step scale used by the detailed air quality view.
var bands = []band{
	{50, "Excellent", "#4CAF50"},
	{100, "Good", "#8BC34A"},
	{150, "Moderate", "#FFC107"},
	{200, "Poor", "#FF9800"},
	{300, "Very Poor", "#F44336"},
}

var hazardous = band{math.MaxInt, "Hazardous", "#9C27B0"}

func lookup(aqi int) band {
	for _, b := range bands {
		if aqi <= b.max {
			return b
		}
	}
	return hazardous
}

// Category names the detailed AQI band.
func Category(aqi int) string { return lookup(aqi).category }

// Color is the display color of the detailed AQI band.
func Color(aqi int) string { return lookup(aqi).color }

// NeedsPurifier reports whether aqi calls for an alert.
func NeedsPurifier(aqi int) bool { return aqi >= AlertAQI }

// Simulator generates pseudo-random readings. It is safe for concurrent use.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewSimulator returns a simulator whose sequence is fixed by seed.
func NewSimulator(seed uint64) *Simulator {
	return &Simulator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), now: time.Now}
}

// Next draws a new reading.
func (s *Simulator) Next() Reading {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := Reading{
		PM25:        s.rng.IntN(300),
		CO2:         s.rng.IntN(2000),
		NH3:         s.rng.IntN(50),
		Benzene:     round(s.rng.Float64(), 2),
		Smoke:       s.rng.IntN(100),
		VOCs:        s.rng.IntN(500),
		AQI:         s.rng.IntN(300),
		Temperature: round(20+s.rng.Float64()*10, 1),
		Humidity:    round(40+s.rng.Float64()*30, 1),
		TakenAt:     s.now(),
	}
	r.Status = Classify(r.AQI)
	r.Category = Category(r.AQI)
	return r
}

// Run sends a reading to out right away and then every interval. It closes
// out when ctx is done.
func (s *Simulator) Run(ctx context.Context, interval time.Duration, out chan<- Reading) {
	defer close(out)

	if !send(ctx, out, s.Next()) {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !send(ctx, out, s.Next()) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func send(ctx context.Context, out chan<- Reading, r Reading) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
