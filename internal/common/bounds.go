package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Bounds represents a geographic bounding box in degrees (EPSG:4326)
type Bounds struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Width returns the east-west extent in degrees
func (b Bounds) Width() float64 {
	return b.East - b.West
}

// Height returns the north-south extent in degrees
func (b Bounds) Height() float64 {
	return b.North - b.South
}

// Valid reports whether the bounds enclose a non-empty area
func (b Bounds) Valid() bool {
	return b.East > b.West && b.North > b.South
}

// Bound converts to an orb.Bound (Min = south-west, Max = north-east)
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

// BoundsFromOrb converts an orb.Bound to Bounds
func BoundsFromOrb(ob orb.Bound) Bounds {
	return Bounds{
		West:  ob.Left(),
		South: ob.Bottom(),
		East:  ob.Right(),
		North: ob.Top(),
	}
}

// String renders the bounds as "west,south,east,north"
func (b Bounds) String() string {
	return fmt.Sprintf("%v,%v,%v,%v", b.West, b.South, b.East, b.North)
}

// Geotransform maps raster pixel positions to geographic coordinates.
// The tie point is the top-left corner of the top-left pixel.
type Geotransform struct {
	OriginX    float64 `json:"originX"`
	OriginY    float64 `json:"originY"`
	PixelSizeX float64 `json:"pixelSizeX"`
	PixelSizeY float64 `json:"pixelSizeY"` // positive magnitude, rows grow southwards
}

// NewGeotransform computes the geotransform of a width x height raster covering b
func NewGeotransform(b Bounds, width, height int) Geotransform {
	return Geotransform{
		OriginX:    b.West,
		OriginY:    b.North,
		PixelSizeX: b.Width() / float64(width),
		PixelSizeY: b.Height() / float64(height),
	}
}

// GDAL returns the six-coefficient affine transform in GDAL order
func (g Geotransform) GDAL() [6]float64 {
	return [6]float64{g.OriginX, g.PixelSizeX, 0, g.OriginY, 0, -g.PixelSizeY}
}

// ParseBounds parses "west,south,east,north" and rejects empty or inverted boxes
func ParseBounds(s string) (Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Bounds{}, fmt.Errorf("bbox must be west,south,east,north")
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Bounds{}, fmt.Errorf("invalid bbox value %q", p)
		}
		v[i] = f
	}

	b := Bounds{West: v[0], South: v[1], East: v[2], North: v[3]}
	if !b.Valid() {
		return Bounds{}, fmt.Errorf("bbox is empty or inverted")
	}
	return b, nil
}
