package elevation

import (
	"image"
	"image/color"
	"testing"
)

func TestDecodeExhaustive(t *testing.T) {
	for r := 0; r < 256; r++ {
		for g := 0; g < 256; g++ {
			for b := 0; b < 256; b += 17 {
				rf, gf, bf := float64(r), float64(g), float64(b)

				wantRGB := -10000 + (rf*65536+gf*256+bf)*0.1
				if got := Decode(TerrainRGB, uint8(r), uint8(g), uint8(b)); got != wantRGB {
					t.Fatalf("terrainrgb(%d,%d,%d) = %v, want %v", r, g, b, got, wantRGB)
				}

				wantTerrarium := rf*256 + gf + bf/256 - 32768
				if got := Decode(Terrarium, uint8(r), uint8(g), uint8(b)); got != wantTerrarium {
					t.Fatalf("terrarium(%d,%d,%d) = %v, want %v", r, g, b, got, wantTerrarium)
				}
			}
		}
	}
}

func TestDecodeKnownValues(t *testing.T) {
	tests := []struct {
		name    string
		enc     Encoding
		r, g, b uint8
		want    float64
	}{
		{"terrarium sea level", Terrarium, 128, 0, 0, 0},
		{"terrarium 1000m", Terrarium, 131, 232, 0, 1000},
		{"terrarium half meter", Terrarium, 128, 0, 128, 0.5},
		{"terrainrgb zero", TerrainRGB, 1, 134, 160, 0},
		{"terrainrgb floor", TerrainRGB, 0, 0, 0, -10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.enc, tt.r, tt.g, tt.b)
			if diff := got - tt.want; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("Decode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseEncoding(t *testing.T) {
	if _, err := ParseEncoding("terrainrgb"); err != nil {
		t.Errorf("terrainrgb: %v", err)
	}
	if _, err := ParseEncoding("terrarium"); err != nil {
		t.Errorf("terrarium: %v", err)
	}
	if _, err := ParseEncoding("lerc"); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestDecodeImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(0, 0, color.NRGBA{128, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{0, 0, 0, 255})
	img.SetNRGBA(2, 1, color.NRGBA{131, 232, 0, 255})

	grid := DecodeImage(img, Terrarium)
	if grid.Width != 3 || grid.Height != 2 || len(grid.Values) != 6 {
		t.Fatalf("unexpected grid shape %dx%d (%d values)", grid.Width, grid.Height, len(grid.Values))
	}
	if got := grid.At(0, 0); got != 0 {
		t.Errorf("At(0,0) = %v, want 0", got)
	}
	if got := grid.At(2, 1); got != 1000 {
		t.Errorf("At(2,1) = %v, want 1000", got)
	}
	if got := grid.At(1, 0); got != -32768 {
		t.Errorf("At(1,0) = %v, want -32768", got)
	}

	// Untouched pixels are fully transparent
	if !grid.HasNoData || grid.At(0, 1) != NoData {
		t.Errorf("transparent pixel = %v (HasNoData %v), want NoData", grid.At(0, 1), grid.HasNoData)
	}

	lo, hi := grid.MinMax()
	if lo != -32768 || hi != 1000 {
		t.Errorf("MinMax() = %v, %v", lo, hi)
	}
}

func TestDecodeImageGenericPath(t *testing.T) {
	img := image.NewRGBA64(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.NRGBA{1, 134, 160, 255})

	grid := DecodeImage(img, TerrainRGB)
	if got := grid.At(0, 0); got > 0.001 || got < -0.001 {
		t.Errorf("At(0,0) = %v, want 0", got)
	}
}

func TestDecodeImageRGBAReadsStoredSamples(t *testing.T) {
	// x/image/tiff yields *image.RGBA for associated-alpha rasters
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Pix[0], img.Pix[1], img.Pix[2], img.Pix[3] = 131, 232, 0, 128

	grid := DecodeImage(img, Terrarium)
	if got := grid.At(0, 0); got != 1000 {
		t.Errorf("At(0,0) = %v, want 1000", got)
	}
}
