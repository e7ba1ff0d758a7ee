// Package elevation decodes RGB-packed terrain tiles into heights in meters.
package elevation

import (
	"fmt"
	"image"
	"image/color"
)

// Encoding identifies how a height is packed into the R, G and B channels of a tile
type Encoding string

const (
	// TerrainRGB is the Mapbox convention: 0.1 m steps offset by -10000 m
	TerrainRGB Encoding = "terrainrgb"

	// Terrarium is the Mapzen/AWS convention: 1/256 m steps offset by -32768 m
	Terrarium Encoding = "terrarium"
)

// ParseEncoding validates an encoding string
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case TerrainRGB, Terrarium:
		return Encoding(s), nil
	default:
		return "", fmt.Errorf("unknown elevation encoding: %s", s)
	}
}

// Decode returns the height in meters encoded by a pixel. Unknown encodings
// decode as terrarium.
func Decode(enc Encoding, r, g, b uint8) float64 {
	if enc == TerrainRGB {
		return -10000 + (float64(r)*65536+float64(g)*256+float64(b))*0.1
	}
	return float64(r)*256 + float64(g) + float64(b)/256 - 32768
}

// NoData marks samples decoded from fully transparent pixels
const NoData float32 = -9999

// Grid is a row-major grid of height samples
type Grid struct {
	Width     int
	Height    int
	Values    []float32
	HasNoData bool
}

// NewGrid allocates a zeroed width x height grid
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Values: make([]float32, width*height),
	}
}

// At returns the sample at column x, row y
func (g *Grid) At(x, y int) float32 {
	return g.Values[y*g.Width+x]
}

// MinMax returns the smallest and largest sample
func (g *Grid) MinMax() (float32, float32) {
	if len(g.Values) == 0 {
		return 0, 0
	}
	first := true
	var lo, hi float32
	for _, v := range g.Values {
		if g.HasNoData && v == NoData {
			continue
		}
		if first {
			lo, hi, first = v, v, false
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func (g *Grid) set(i int, enc Encoding, r, gr, b, a uint8) {
	if a == 0 {
		g.Values[i] = NoData
		g.HasNoData = true
		return
	}
	g.Values[i] = float32(Decode(enc, r, gr, b))
}

// DecodeImage reads the first three bands of img and decodes every pixel with
// enc. Fully transparent pixels become NoData.
func DecodeImage(img image.Image, enc Encoding) *Grid {
	bounds := img.Bounds()
	grid := NewGrid(bounds.Dx(), bounds.Dy())

	i := 0
	switch src := img.(type) {
	case *image.NRGBA:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			row := src.Pix[src.PixOffset(bounds.Min.X, y):]
			for x := 0; x < grid.Width; x++ {
				p := row[x*4 : x*4+4]
				grid.set(i, enc, p[0], p[1], p[2], p[3])
				i++
			}
		}
	case *image.RGBA:
		// Stored samples carry the encoding even under associated alpha; never un-premultiply
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			row := src.Pix[src.PixOffset(bounds.Min.X, y):]
			for x := 0; x < grid.Width; x++ {
				p := row[x*4 : x*4+4]
				grid.set(i, enc, p[0], p[1], p[2], p[3])
				i++
			}
		}
	default:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				grid.set(i, enc, c.R, c.G, c.B, c.A)
				i++
			}
		}
	}

	return grid
}
