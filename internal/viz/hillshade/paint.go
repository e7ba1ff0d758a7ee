package hillshade

// Paint is a MapLibre hillshade paint object
type Paint map[string]any

// MapLibre paint property names
const (
	PropMethod       = "hillshade-method"
	PropDirection    = "hillshade-illumination-direction"
	PropAltitude     = "hillshade-illumination-altitude"
	PropShadow       = "hillshade-shadow-color"
	PropHighlight    = "hillshade-highlight-color"
	PropAccent       = "hillshade-accent-color"
	PropExaggeration = "hillshade-exaggeration"
)

// Lights is the number of light sources in the multi-light paint
const Lights = 4

// Params holds the current hillshade settings
type Params struct {
	IlluminationDirection float64 `json:"illuminationDirection"`
	IlluminationAltitude  float64 `json:"illuminationAltitude"`
	ShadowColor           string  `json:"shadowColor"`
	HighlightColor        string  `json:"highlightColor"`
	AccentColor           string  `json:"accentColor"`
	Exaggeration          float64 `json:"exaggeration"`

	// Multi-light settings, matched index-wise
	MultiDirections [Lights]float64 `json:"multiDirections"`
	MultiAltitudes  [Lights]float64 `json:"multiAltitudes"`
	MultiHighlights [Lights]string  `json:"multiHighlights"`
	MultiShadows    [Lights]string  `json:"multiShadows"`
}

// DefaultParams returns the renderer defaults
func DefaultParams() Params {
	return Params{
		IlluminationDirection: 335,
		IlluminationAltitude:  45,
		ShadowColor:           "#000000",
		HighlightColor:        "#FFFFFF",
		AccentColor:           "#000000",
		Exaggeration:          0.5,
		MultiDirections:       [Lights]float64{270, 315, 0, 45},
		MultiAltitudes:        [Lights]float64{30, 30, 30, 30},
		MultiHighlights:       [Lights]string{"#FF4000", "#FFFF00", "#40ff00", "#00FF80"},
		MultiShadows:          [Lights]string{"#00bfff", "#0000ff", "#bf00ff", "#FF0080"},
	}
}

// BuildPaint assembles the paint for m from p. Only parameters supported by
// m are emitted; the standard method is the renderer default and carries no
// method tag. Out-of-range methods get the standard paint.
func BuildPaint(m Method, p Params) Paint {
	if !m.known() {
		m = Standard
	}
	flags := Support(m)

	switch m {
	case Multidirectional:
		paint := Paint{PropMethod: "multidirectional"}
		if flags.Exaggeration {
			paint[PropExaggeration] = p.Exaggeration
		}
		return paint

	case MultidirColors, AspectMultidir:
		return Paint{
			PropMethod:    "multidirectional",
			PropHighlight: p.MultiHighlights[:],
			PropShadow:    p.MultiShadows[:],
			PropDirection: p.MultiDirections[:],
			PropAltitude:  p.MultiAltitudes[:],
		}
	}

	paint := Paint{}
	if m != Standard {
		paint[PropMethod] = m.String()
	}
	if flags.Direction {
		paint[PropDirection] = p.IlluminationDirection
	}
	if flags.Altitude {
		paint[PropAltitude] = p.IlluminationAltitude
	}
	if flags.ShadowColor {
		paint[PropShadow] = p.ShadowColor
	}
	if flags.HighlightColor {
		paint[PropHighlight] = p.HighlightColor
	}
	if flags.AccentColor {
		paint[PropAccent] = p.AccentColor
	}
	if flags.Exaggeration {
		paint[PropExaggeration] = p.Exaggeration
	}
	return paint
}
