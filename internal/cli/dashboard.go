package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/breathepure/internal/readings"
)

// Readings prints a fresh simulated reading with the purifier state.
func (a *App) Readings(ctx context.Context) error {
	a.showReading(ctx, a.sim.Next())
	return nil
}

// Trends prints a summary of the hour, day and week AQI series.
func (a *App) Trends(ctx context.Context) error {
	writeTrends(a.out, a.sim.Trends())
	return nil
}

// FanUp raises the fan speed one step.
func (a *App) FanUp(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Fan speed %d%%\n", readings.Percent(a.controls.FanUp()))
	return nil
}

// FanDown lowers the fan speed one step.
func (a *App) FanDown(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Fan speed %d%%\n", readings.Percent(a.controls.FanDown()))
	return nil
}

// Power switches the purifier on or off.
func (a *App) Power(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Purifier %s\n", onOff(a.controls.TogglePower()))
	return nil
}

// Auto switches between auto and manual mode.
func (a *App) Auto(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	mode := "manual"
	if a.controls.ToggleAuto() {
		mode = "auto"
	}
	fmt.Fprintf(a.out, "Mode %s\n", mode)
	return nil
}

// showReading lets auto mode react to r and prints it.
func (a *App) showReading(ctx context.Context, r readings.Reading) {
	if a.controls.Observe(r) {
		a.log.Info(ctx, "purifier switched on by auto mode", "aqi", r.AQI)
		fmt.Fprintln(a.out, "Auto mode switched the purifier on")
	}
	writeReading(a.out, r, a.controls)
}

func writeReading(w io.Writer, r readings.Reading, c *readings.Controls) {
	fmt.Fprintf(w, "AQI %d  %s  [%s %s]\n", r.AQI, r.Status, r.Category, readings.Color(r.AQI))
	fmt.Fprintf(w, "PM2.5 %d  CO2 %d  NH3 %d  Benzene %.2f  Smoke %d  VOCs %d\n",
		r.PM25, r.CO2, r.NH3, r.Benzene, r.Smoke, r.VOCs)
	fmt.Fprintf(w, "Temperature %.1f°C  %s\n", r.Temperature, readings.TemperatureAdvice(r.Temperature))
	fmt.Fprintf(w, "Humidity %.1f%%  %s\n", r.Humidity, readings.HumidityAdvice(r.Humidity))
	if c != nil {
		mode := "manual"
		if c.AutoMode() {
			mode = "auto"
		}
		fmt.Fprintf(w, "Purifier %s (%s)  Fan %d%%  Filter %d%% remaining\n",
			onOff(c.IsOn()), mode, readings.Percent(c.FanSpeed()), readings.Percent(c.FilterHealth()))
	}
	if readings.NeedsPurifier(r.AQI) {
		fmt.Fprintln(w, "Warning: air quality is hazardous, please turn on the purifier!")
	}
}

func writeTrends(w io.Writer, t readings.Trends) {
	for _, s := range []struct {
		name   string
		points []readings.Point
	}{
		{"Last hour", t.Hour},
		{"Last day", t.Day},
		{"Last week", t.Week},
	} {
		sum := readings.Summarize(s.points)
		fmt.Fprintf(w, "%-10s %3d points  min %3d  max %3d  mean %5.1f\n",
			s.name, len(s.points), sum.Min, sum.Max, sum.Mean)
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
