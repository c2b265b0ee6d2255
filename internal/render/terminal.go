package render

import (
	"fmt"
	"io"
	"sync"
)

// Terminal renders the presentation as an ANSI dashboard. All writes are
// serialized so Apply and Notify can be called from different goroutines.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Apply(p Presentation) {
	t.mu.Lock()
	defer t.mu.Unlock()

	theme := ansi(p.ThemeColor)
	fmt.Fprintf(t.w, "\n%s┌─ Aquaponics Monitor ─────────────────────────┐%s\n", theme, ansiReset)
	fmt.Fprintf(t.w, "%s│ %-44s │%s\n", theme, p.Diagnosis, ansiReset)
	fmt.Fprintf(t.w, "%s└──────────────────────────────────────────────┘%s\n", theme, ansiReset)

	fmt.Fprintf(t.w, "  Water temp   %-12s Air temp   %s\n", p.WaterTemp, p.AirTemp)
	fmt.Fprintf(t.w, "  pH           %-12s Diss. O2   %s\n", p.PH, p.DissolvedOxygen)
	fmt.Fprintf(t.w, "  Ammonia      %-12s Level      %s\n", p.Ammonia, p.WaterLevel)
	fmt.Fprintf(t.w, "  Conductivity %-12s Humidity   %s\n", p.Conductivity, p.Humidity)
	fmt.Fprintf(t.w, "  Light        %s\n", p.Light)
	fmt.Fprintf(t.w, "  %s%s%s   %s%s%s\n",
		ansi(p.PumpColor), p.PumpLabel, ansiReset,
		ansi(p.LightColor), p.LightLabel, ansiReset)
	fmt.Fprintf(t.w, "  %s\n", p.LastUpdate)
}

func (t *Terminal) Notify(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "%s>> %s%s\n", ansi(ColorPumpOff), message, ansiReset)
}

const ansiReset = "\x1b[0m"

// ansi maps the dashboard palette to the nearest ANSI color.
func ansi(hex string) string {
	switch hex {
	case ColorOK:
		return "\x1b[32m"
	case ColorAlert:
		return "\x1b[31m"
	case ColorPumpOff:
		return "\x1b[33m"
	case ColorLightOn:
		return "\x1b[93m"
	case ColorLightOff:
		return "\x1b[90m"
	case ColorDisconnected:
		return "\x1b[37m"
	default:
		return ""
	}
}
