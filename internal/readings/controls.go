package readings

import (
	"sync"
	"time"
)

const (
	// FanStep is the change applied by one fan button press.
	FanStep = 0.2
	// FilterWear is the filter health lost per wear tick.
	FilterWear = 0.01
	// FilterWearInterval is how often the filter wears while the purifier runs.
	FilterWearInterval = 10 * time.Second

	DefaultFanSpeed     = 0.6
	DefaultFilterHealth = 0.8
)

// Controls holds the purifier's power and auto-mode switches along with fan
// speed and filter health, both in [0, 1]. The purifier starts powered on in
// auto mode.
type Controls struct {
	mu     sync.Mutex
	on     bool
	auto   bool
	fan    float64
	filter float64
}

func NewControls() *Controls {
	return &Controls{on: true, auto: true, fan: DefaultFanSpeed, filter: DefaultFilterHealth}
}

// TogglePower switches the purifier on or off and returns the new state.
func (c *Controls) TogglePower() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.on = !c.on
	return c.on
}

func (c *Controls) IsOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.on
}

// ToggleAuto switches between auto and manual mode and returns true when
// auto mode is now on.
func (c *Controls) ToggleAuto() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auto = !c.auto
	return c.auto
}

func (c *Controls) AutoMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auto
}

// Observe lets auto mode react to a reading: a switched-off purifier in auto
// mode is powered on when the reading needs it. It reports whether the
// power was switched on.
func (c *Controls) Observe(r Reading) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.auto || c.on || !NeedsPurifier(r.AQI) {
		return false
	}
	c.on = true
	return true
}

// FanUp raises the fan speed by one step and returns the new value.
func (c *Controls) FanUp() float64 { return c.adjustFan(FanStep) }

// FanDown lowers the fan speed by one step and returns the new value.
func (c *Controls) FanDown() float64 { return c.adjustFan(-FanStep) }

func (c *Controls) adjustFan(delta float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fan = clamp(round(c.fan+delta, 2))
	return c.fan
}

func (c *Controls) FanSpeed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fan
}

// Wear lowers filter health by FilterWear, never below zero. A switched-off
// purifier does not wear its filter.
func (c *Controls) Wear() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.on {
		return c.filter
	}
	c.filter = clamp(round(c.filter-FilterWear, 2))
	return c.filter
}

func (c *Controls) FilterHealth() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Percent renders a [0, 1] value as a whole percentage.
func Percent(v float64) int { return int(round(v*100, 0)) }

func clamp(v float64) float64 {
	return max(0, min(1, v))
}
