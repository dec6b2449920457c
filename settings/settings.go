/*
Package settings holds the user preference contract.

The engine never reads settings; callers resolve them once through the
store and pass plain values down (default basis/percent/wage into the
add form, start-of-week into weekly bucketing). Keeping resolution
explicit here replaces the old ambient multi-source fallback probing.
*/
package settings

// Settings are the user preferences that seed new-shift forms and
// control weekly bucketing.
type Settings struct {
	StartOfWeek          string   `json:"startOfWeek"` // "sun" | "mon"
	DefaultTipOutBasis   string   `json:"defaultTipOutBasis"`
	DefaultTipOutPercent float64  `json:"defaultTipOutPercent"`
	RememberLastWage     bool     `json:"rememberLastWage"`
	LastWage             *float64 `json:"lastWage"`
	DefaultHourlyWage    float64  `json:"defaultHourlyWage"`
}

// Defaults are applied when nothing has been saved yet and to fill
// holes in partially saved settings.
func Defaults() Settings {
	return Settings{
		StartOfWeek:          "sun",
		DefaultTipOutBasis:   "tips",
		DefaultTipOutPercent: 3,
		RememberLastWage:     false,
		LastWage:             nil,
		DefaultHourlyWage:    15.00,
	}
}

// Normalized returns s with out-of-domain values snapped back to the
// defaults, so a corrupt or hand-edited blob cannot poison callers.
func (s Settings) Normalized() Settings {
	d := Defaults()
	if s.StartOfWeek != "sun" && s.StartOfWeek != "mon" {
		s.StartOfWeek = d.StartOfWeek
	}
	if s.DefaultTipOutBasis != "tips" && s.DefaultTipOutBasis != "sales" {
		s.DefaultTipOutBasis = d.DefaultTipOutBasis
	}
	if s.DefaultTipOutPercent < 0 || s.DefaultTipOutPercent > 100 {
		s.DefaultTipOutPercent = d.DefaultTipOutPercent
	}
	if s.DefaultHourlyWage < 0 {
		s.DefaultHourlyWage = d.DefaultHourlyWage
	}
	if !s.RememberLastWage {
		s.LastWage = nil
	}
	return s
}

// WageForNewShift is the wage a new-shift form should prefill:
// the remembered last wage when enabled, otherwise the default.
func (s Settings) WageForNewShift() float64 {
	if s.RememberLastWage && s.LastWage != nil {
		return *s.LastWage
	}
	return s.DefaultHourlyWage
}
