// Package viz assembles renderer styles that are not tied to a single layer.
package viz

// SkyConfig is the shared sky and fog state
type SkyConfig struct {
	SkyColor              string  `json:"skyColor"`
	SkyHorizonBlend       float64 `json:"skyHorizonBlend"`
	HorizonColor          string  `json:"horizonColor"`
	HorizonFogBlend       float64 `json:"horizonFogBlend"`
	FogColor              string  `json:"fogColor"`
	FogGroundBlend        float64 `json:"fogGroundBlend"`
	MatchThemeColors      bool    `json:"matchThemeColors"`
	BackgroundLayerActive bool    `json:"backgroundLayerActive"`
}

// DefaultSky returns the initial sky settings
func DefaultSky() SkyConfig {
	return SkyConfig{
		SkyColor:         "#80ccff",
		SkyHorizonBlend:  0.5,
		HorizonColor:     "#ccddff",
		HorizonFogBlend:  0.5,
		FogColor:         "#fcf0dd",
		FogGroundBlend:   0.2,
		MatchThemeColors: false,
	}
}

type themeColors struct {
	sky, horizon, fog string
}

var themes = map[string]themeColors{
	"light": {sky: "#dbe9f6", horizon: "#f4f6f8", fog: "#ffffff"},
	"dark":  {sky: "#0b1220", horizon: "#1b2433", fog: "#111827"},
}

// Spec returns the renderer sky specification. With MatchThemeColors set, the
// colors follow the UI theme ("light" or "dark"); other themes keep the
// configured colors.
func (s SkyConfig) Spec(theme string) map[string]any {
	sky, horizon, fog := s.SkyColor, s.HorizonColor, s.FogColor
	if tc, ok := themes[theme]; ok && s.MatchThemeColors {
		sky, horizon, fog = tc.sky, tc.horizon, tc.fog
	}

	spec := map[string]any{
		"sky-color":         sky,
		"sky-horizon-blend": s.SkyHorizonBlend,
		"horizon-color":     horizon,
		"horizon-fog-blend": s.HorizonFogBlend,
		"fog-color":         fog,
		"fog-ground-blend":  s.FogGroundBlend,
	}
	// An opaque background layer hides the sky; only the fog remains meaningful
	if s.BackgroundLayerActive {
		spec["atmosphere-blend"] = 0.0
	}
	return spec
}
