package readings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		aqi    int
		status string
	}{
		{0, StatusExcellent},
		{49, StatusExcellent},
		{50, StatusModerate},
		{99, StatusModerate},
		{100, StatusUnhealthy},
		{149, StatusUnhealthy},
		{150, StatusHazardous},
		{400, StatusHazardous},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, Classify(tt.aqi), "aqi %d", tt.aqi)
	}
}

func TestCategoryAndColor(t *testing.T) {
	tests := []struct {
		aqi      int
		category string
		color    string
	}{
		{0, "Excellent", "#4CAF50"},
		{50, "Excellent", "#4CAF50"},
		{51, "Good", "#8BC34A"},
		{100, "Good", "#8BC34A"},
		{150, "Moderate", "#FFC107"},
		{151, "Poor", "#FF9800"},
		{200, "Poor", "#FF9800"},
		{300, "Very Poor", "#F44336"},
		{301, "Hazardous", "#9C27B0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.category, Category(tt.aqi), "aqi %d", tt.aqi)
		assert.Equal(t, tt.color, Color(tt.aqi), "aqi %d", tt.aqi)
	}
}

func TestAdvice(t *testing.T) {
	assert.Equal(t, "Too hot! Start AC.", TemperatureAdvice(28.1))
	assert.Equal(t, "Ideal temperature.", TemperatureAdvice(28))
	assert.Equal(t, "Ideal temperature.", TemperatureAdvice(18))
	assert.Equal(t, "Too cold! Close windows.", TemperatureAdvice(17.9))

	assert.Equal(t, "High humidity! Turn on ventilation.", HumidityAdvice(65.1))
	assert.Equal(t, "Humidity is ideal.", HumidityAdvice(65))
	assert.Equal(t, "Humidity is ideal.", HumidityAdvice(35))
	assert.Equal(t, "Air too dry!", HumidityAdvice(34.9))
}

func TestNeedsPurifier(t *testing.T) {
	assert.False(t, NeedsPurifier(149))
	assert.True(t, NeedsPurifier(150))
}

func TestSimulator_RangesAndDeterminism(t *testing.T) {
	a := NewSimulator(7)
	b := NewSimulator(7)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }
	b.now = func() time.Time { return fixed }

	for i := 0; i < 200; i++ {
		r := a.Next()
		assert.Equal(t, r, b.Next())

		assert.True(t, r.PM25 >= 0 && r.PM25 < 300)
		assert.True(t, r.CO2 >= 0 && r.CO2 < 2000)
		assert.True(t, r.NH3 >= 0 && r.NH3 < 50)
		assert.True(t, r.Benzene >= 0 && r.Benzene <= 1)
		assert.True(t, r.Smoke >= 0 && r.Smoke < 100)
		assert.True(t, r.VOCs >= 0 && r.VOCs < 500)
		assert.True(t, r.AQI >= 0 && r.AQI < 300)
		assert.True(t, r.Temperature >= 20 && r.Temperature <= 30)
		assert.True(t, r.Humidity >= 40 && r.Humidity <= 70)
		assert.Equal(t, Classify(r.AQI), r.Status)
		assert.Equal(t, Category(r.AQI), r.Category)
	}
}

func TestSimulator_Run(t *testing.T) {
	s := NewSimulator(1)
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan Reading)

	go s.Run(ctx, time.Millisecond, out)

	for i := 0; i < 3; i++ {
		select {
		case <-out:
		case <-time.After(time.Second):
			t.Fatal("no reading")
		}
	}
	cancel()

	// drain until closed
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-out:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("Run did not close its channel")
		}
	}
}

func TestControls_Fan(t *testing.T) {
	c := NewControls()
	require.Equal(t, DefaultFanSpeed, c.FanSpeed())

	assert.Equal(t, 0.8, c.FanUp())
	assert.Equal(t, 1.0, c.FanUp())
	assert.Equal(t, 1.0, c.FanUp(), "clamped at 1")
	assert.Equal(t, 100, Percent(c.FanSpeed()))

	for i := 0; i < 10; i++ {
		c.FanDown()
	}
	assert.Equal(t, 0.0, c.FanSpeed(), "clamped at 0")
}

func TestControls_FilterWear(t *testing.T) {
	c := NewControls()
	assert.Equal(t, 0.79, c.Wear())
	for i := 0; i < 100; i++ {
		c.Wear()
	}
	assert.Equal(t, 0.0, c.FilterHealth())
	assert.Equal(t, 0, Percent(c.FilterHealth()))
}

func TestControls_FilterDoesNotWearWhenOff(t *testing.T) {
	c := NewControls()
	require.False(t, c.TogglePower())
	assert.Equal(t, DefaultFilterHealth, c.Wear())

	require.True(t, c.TogglePower())
	assert.Equal(t, 0.79, c.Wear())
}

func TestControls_PowerAndAuto(t *testing.T) {
	c := NewControls()
	require.True(t, c.IsOn())
	require.True(t, c.AutoMode())

	assert.False(t, c.TogglePower())
	assert.False(t, c.IsOn())
	assert.False(t, c.ToggleAuto())
	assert.False(t, c.AutoMode())
	assert.True(t, c.ToggleAuto())
}

func TestControls_ObserveInAutoMode(t *testing.T) {
	c := NewControls()
	c.TogglePower()

	assert.False(t, c.Observe(Reading{AQI: 149}))
	assert.False(t, c.IsOn())

	assert.True(t, c.Observe(Reading{AQI: 150}))
	assert.True(t, c.IsOn())
	assert.False(t, c.Observe(Reading{AQI: 250}), "already on")

	c.TogglePower()
	c.ToggleAuto()
	assert.False(t, c.Observe(Reading{AQI: 250}), "manual mode")
	assert.False(t, c.IsOn())
}

func TestSimulator_Trends(t *testing.T) {
	tr := NewSimulator(3).Trends()

	require.Len(t, tr.Hour, HourPoints)
	require.Len(t, tr.Day, DayPoints)
	require.Len(t, tr.Week, WeekPoints)
	for i, p := range tr.Hour {
		assert.Equal(t, i, p.Index)
		assert.True(t, p.AQI >= 0 && p.AQI < 300)
	}
	assert.Equal(t, tr, NewSimulator(3).Trends())
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
	assert.Equal(t, Summary{Min: 10, Max: 40, Mean: 23.3},
		Summarize([]Point{{0, 20}, {1, 10}, {2, 40}}))
}
