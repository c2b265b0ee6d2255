package render

import (
	"fmt"

	"github.com/aquaponics-lab/aquamon/internal/model"
)

// Theme is the overall status tone of the display.
type Theme string

const (
	ThemeOK           Theme = "ok"
	ThemeAlert        Theme = "alert"
	ThemeDisconnected Theme = "disconnected"
)

// Status colors, matching the dashboard palette.
const (
	ColorOK           = "#4ecca3"
	ColorAlert        = "#e94560"
	ColorPumpOff      = "#ff9800"
	ColorLightOn      = "#ffd700"
	ColorLightOff     = "#555555"
	ColorDisconnected = "#666666"
)

// NormalDiagnosis is the exact server diagnosis string that selects the OK
// theme. The comparison is case-sensitive; the client performs no diagnosis of
// its own.
const NormalDiagnosis = "Normal operation"

const unset = "--"

// Presentation is the fully formatted display state. It is a value snapshot:
// computing the next presentation never mutates the previous one.
type Presentation struct {
	WaterTemp       string `json:"water_temp"`
	AirTemp         string `json:"air_temp"`
	PH              string `json:"ph"`
	DissolvedOxygen string `json:"dissolved_oxygen"`
	Ammonia         string `json:"ammonia"`
	WaterLevel      string `json:"water_level"`
	Conductivity    string `json:"conductivity"`
	Humidity        string `json:"humidity"`
	Light           string `json:"light"`

	Diagnosis  string `json:"diagnosis"`
	PumpLabel  string `json:"pump_label"`
	PumpColor  string `json:"pump_color"`
	LightLabel string `json:"light_label"`
	LightColor string `json:"light_color"`

	Theme      Theme  `json:"theme"`
	ThemeColor string `json:"theme_color"`
	LastUpdate string `json:"last_update"`
}

// Initial is the presentation shown before the first fetch completes.
func Initial() Presentation {
	return Presentation{
		WaterTemp:       unset,
		AirTemp:         unset,
		PH:              unset,
		DissolvedOxygen: unset,
		Ammonia:         unset,
		WaterLevel:      unset,
		Conductivity:    unset,
		Humidity:        unset,
		Light:           unset,
		Diagnosis:       "Waiting for data",
		PumpLabel:       "Pump: FAILURE",
		PumpColor:       ColorAlert,
		LightLabel:      "Light: OFF",
		LightColor:      ColorLightOff,
		Theme:           ThemeDisconnected,
		ThemeColor:      ColorDisconnected,
		LastUpdate:      "Last update: N/A",
	}
}

// FromReading computes the presentation for a successfully fetched reading.
// Placeholder readings only replace the diagnosis text; every other field keeps
// its previously rendered value.
func FromReading(prev Presentation, r *model.Reading) Presentation {
	if r.Placeholder() {
		next := prev
		next.Diagnosis = r.Message
		return next
	}

	pumpLabel, pumpColor := PumpStatus(r.PumpStatus)
	lightLabel, lightColor := LightStatus(r.LightStatus)
	theme, themeColor := DiagnosisTheme(r.Diagnosis)

	return Presentation{
		WaterTemp:       fmt.Sprintf("%.1f°C", r.WaterTempC),
		AirTemp:         fmt.Sprintf("%.1f°C", r.AirTempC),
		PH:              fmt.Sprintf("%.2f", r.PH),
		DissolvedOxygen: fmt.Sprintf("%.2f mg/L", r.DissolvedOxygenMgL),
		Ammonia:         fmt.Sprintf("%.3f mg/L", r.AmmoniaMgL),
		WaterLevel:      fmt.Sprintf("%.1f%%", r.WaterLevelPercent),
		Conductivity:    fmt.Sprintf("%.1f µS/cm", r.ECuScm),
		Humidity:        fmt.Sprintf("%.1f%%", r.HumidityPercent),
		Light:           fmt.Sprintf("%.0f lux", r.LightLux),
		Diagnosis:       r.Diagnosis,
		PumpLabel:       pumpLabel,
		PumpColor:       pumpColor,
		LightLabel:      lightLabel,
		LightColor:      lightColor,
		Theme:           theme,
		ThemeColor:      themeColor,
		LastUpdate:      "Last update: " + r.Timestamp,
	}
}

// FromError computes the presentation for a failed fetch: the diagnosis text is
// replaced with the error message and the disconnected theme applies, but the
// last good numeric values stay on screen.
func FromError(prev Presentation, err error) Presentation {
	next := prev
	next.Diagnosis = err.Error()
	next.Theme = ThemeDisconnected
	next.ThemeColor = ColorDisconnected
	return next
}

// PumpStatus maps the server's pump_status string to a label and color. Any
// value other than the literal ON/OFF strings reads as a failure.
func PumpStatus(status string) (label, color string) {
	switch status {
	case "ON":
		return "Pump: ON", ColorOK
	case "OFF":
		return "Pump: OFF", ColorPumpOff
	default:
		return "Pump: FAILURE", ColorAlert
	}
}

// LightStatus maps the server's light_status string to a label and color.
func LightStatus(status string) (label, color string) {
	if status == "ON" {
		return "Light: ON", ColorLightOn
	}
	return "Light: " + status, ColorLightOff
}

// DiagnosisTheme selects the display theme from the server's diagnosis string.
func DiagnosisTheme(diagnosis string) (Theme, string) {
	if diagnosis == NormalDiagnosis {
		return ThemeOK, ColorOK
	}
	return ThemeAlert, ColorAlert
}

// Surface is a display the presentation can be applied to. Apply replaces the
// whole display state; Notify shows a transient message without touching it.
type Surface interface {
	Apply(p Presentation)
	Notify(message string)
}
