// Package hillshade decides which hillshade parameters apply to each shading
// method and assembles the layer paint for the map renderer.
package hillshade

import "fmt"

// Method is a hillshade shading algorithm
type Method int

const (
	Standard Method = iota
	Combined
	Igor
	Basic
	Multidirectional
	MultidirColors
	// AspectMultidir is listed separately in the UI but renders with the same
	// multi-light paint as MultidirColors
	AspectMultidir
)

var methodNames = [...]string{
	Standard:         "standard",
	Combined:         "combined",
	Igor:             "igor",
	Basic:            "basic",
	Multidirectional: "multidirectional",
	MultidirColors:   "multidir-colors",
	AspectMultidir:   "aspect-multidir",
}

// Methods lists every method in UI order
func Methods() []Method {
	return []Method{Standard, Combined, Igor, Basic, Multidirectional, MultidirColors, AspectMultidir}
}

func (m Method) String() string {
	if !m.known() {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

// ParseMethod maps a method name to a Method
func ParseMethod(s string) (Method, error) {
	for i, name := range methodNames {
		if name == s {
			return Method(i), nil
		}
	}
	return Standard, fmt.Errorf("unknown hillshade method: %s", s)
}

// MarshalText implements encoding.TextMarshaler
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Method) UnmarshalText(b []byte) error {
	parsed, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Flags reports which parameters a method uses
type Flags struct {
	Direction      bool `json:"direction"`
	Altitude       bool `json:"altitude"`
	ShadowColor    bool `json:"shadowColor"`
	HighlightColor bool `json:"highlightColor"`
	AccentColor    bool `json:"accentColor"`
	Exaggeration   bool `json:"exaggeration"`
}

// Support returns the parameters that apply to m
func Support(m Method) Flags {
	switch m {
	case Standard:
		return Flags{Direction: true, ShadowColor: true, HighlightColor: true, AccentColor: true, Exaggeration: true}
	case Combined:
		return Flags{Direction: true, Altitude: true, ShadowColor: true, HighlightColor: true, Exaggeration: true}
	case Igor:
		return Flags{Direction: true, ShadowColor: true, HighlightColor: true}
	case Basic:
		return Flags{Direction: true, Altitude: true, ShadowColor: true, HighlightColor: true}
	case Multidirectional:
		return Flags{Exaggeration: true}
	case MultidirColors, AspectMultidir:
		return Flags{}
	default:
		return Flags{}
	}
}

func (m Method) known() bool {
	return m >= 0 && int(m) < len(methodNames)
}
