// Package viewstate holds the shareable view configuration as flat string
// keys and encodes it as a URL query. Keys at their default value are left
// out of the query; keys this version does not know are carried through as is.
package viewstate

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// Known keys
const (
	KeyViewMode = "mode"  // "2d", "3d" or "globe"
	KeySplit    = "split" // dual view on/off
	KeySource   = "src"   // primary terrain source key
	KeySource2  = "src2"  // secondary terrain source key

	KeyTerrain      = "terrain"  // 3D terrain mesh visible
	KeyExaggeration = "exag"     // terrain exaggeration
	KeyHillshade    = "hs"       // hillshade layer visible
	KeyHillshadeAlg = "hsMethod" // hillshade method name
	KeyHillshadeOp  = "hsOp"     // hillshade layer opacity
	KeyHillshadeDir = "hsDir"    // illumination direction, degrees
	KeyHillshadeAlt = "hsAlt"    // illumination altitude, degrees
	KeyHillshadeEx  = "hsEx"     // hillshade exaggeration

	KeyColorRelief   = "relief"   // color relief layer visible
	KeyColorReliefOp = "reliefOp" // color relief opacity
	KeyRamp          = "ramp"     // color ramp name
	KeyCustomRange   = "range"    // use RampMin/RampMax instead of the ramp's own stops
	KeyRampMin       = "rampMin"  // meters
	KeyRampMax       = "rampMax"  // meters

	KeyContours     = "contours" // contour lines visible
	KeyContourMinor = "cMinor"   // minor interval, meters
	KeyContourMajor = "cMajor"   // major interval, meters

	KeyLon     = "lon"
	KeyLat     = "lat"
	KeyZoom    = "z"
	KeyBearing = "b"
	KeyPitch   = "p"

	KeyExportMax = "exportMax" // longest side of a DTM export, pixels
	KeySky       = "sky"       // sky/atmosphere visible
)

// Defaults holds the value every known key takes when it is absent
var Defaults = map[string]string{
	KeyViewMode: "3d",
	KeySplit:    "false",
	KeySource:   "mapterhorn",
	KeySource2:  "mapterhorn",

	KeyTerrain:      "true",
	KeyExaggeration: "1",
	KeyHillshade:    "true",
	KeyHillshadeAlg: "standard",
	KeyHillshadeOp:  "1",
	KeyHillshadeDir: "335",
	KeyHillshadeAlt: "45",
	KeyHillshadeEx:  "0.5",

	KeyColorRelief:   "false",
	KeyColorReliefOp: "0.7",
	KeyRamp:          "hypsometric",
	KeyCustomRange:   "false",
	KeyRampMin:       "0",
	KeyRampMax:       "4000",

	KeyContours:     "false",
	KeyContourMinor: "50",
	KeyContourMajor: "200",

	KeyLon:     "7.6586",
	KeyLat:     "45.9763",
	KeyZoom:    "12",
	KeyBearing: "0",
	KeyPitch:   "60",

	KeyExportMax: "4096",
	KeySky:       "true",
}

// Known reports whether key has a documented default
func Known(key string) bool {
	_, ok := Defaults[key]
	return ok
}

// State is a flat view configuration
type State struct {
	values map[string]string
}

// New returns a state with every key at its default
func New() *State {
	return &State{values: map[string]string{}}
}

// Get returns the value of key, falling back to its default
func (s *State) Get(key string) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	return Defaults[key]
}

// Set assigns key. Setting a known key to its default removes it.
func (s *State) Set(key, value string) {
	if d, ok := Defaults[key]; ok && d == value {
		delete(s.values, key)
		return
	}
	s.values[key] = value
}

// Reset puts key back to its default
func (s *State) Reset(key string) {
	delete(s.values, key)
}

// SetBool assigns a boolean key
func (s *State) SetBool(key string, v bool) {
	s.Set(key, strconv.FormatBool(v))
}

// SetFloat assigns a numeric key using the shortest exact representation
func (s *State) SetFloat(key string, v float64) {
	s.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
}

// Bool returns a boolean key. Unparseable values read as the default.
func (s *State) Bool(key string) bool {
	if v, err := strconv.ParseBool(s.Get(key)); err == nil {
		return v
	}
	v, _ := strconv.ParseBool(Defaults[key])
	return v
}

// Float returns a numeric key. Unparseable values read as the default.
func (s *State) Float(key string) float64 {
	if v, err := strconv.ParseFloat(s.Get(key), 64); err == nil {
		return v
	}
	v, _ := strconv.ParseFloat(Defaults[key], 64)
	return v
}

// Int returns an integer key. Unparseable values read as the default.
func (s *State) Int(key string) int {
	if v, err := strconv.Atoi(s.Get(key)); err == nil {
		return v
	}
	v, _ := strconv.Atoi(Defaults[key])
	return v
}

// Unknown returns the keys without a documented default, sorted
func (s *State) Unknown() []string {
	var keys []string
	for k := range s.values {
		if !Known(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Values returns every explicitly set key
func (s *State) Values() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Encode returns the URL query form, without keys at their default
func (s *State) Encode() string {
	q := url.Values{}
	for k, v := range s.values {
		q.Set(k, v)
	}
	return q.Encode()
}

// Decode parses a URL query (with or without a leading '?'). For repeated
// keys the first value wins.
func Decode(query string) (*State, error) {
	if len(query) > 0 && query[0] == '?' {
		query = query[1:]
	}
	q, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("failed to parse view state: %w", err)
	}

	s := New()
	for k, vs := range q {
		if len(vs) == 0 {
			continue
		}
		s.Set(k, vs[0])
	}
	return s, nil
}
