package naming

import (
	"testing"
	"time"

	"terrain-desktop/internal/common"
)

func TestTimestampedNames(t *testing.T) {
	ts := time.Date(2026, 10, 17, 9, 5, 3, 0, time.UTC)
	if got := DTMFilename(ts); got != "dtm_20261017_090503.tif" {
		t.Errorf("DTMFilename = %s", got)
	}
	if got := ScreenshotFilename(ts); got != "terrain_20261017_090503.png" {
		t.Errorf("ScreenshotFilename = %s", got)
	}
}

func TestWorldFilename(t *testing.T) {
	tests := map[string]string{
		"terrain_1.png": "terrain_1.pgw",
		"dtm.tif":       "dtm.tfw",
		"photo.jpg":     "photo.jgw",
		"raw":           "raw.wld",
	}
	for in, want := range tests {
		if got := WorldFilename(in); got != want {
			t.Errorf("WorldFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDTMAreaFilename(t *testing.T) {
	got := DTMAreaFilename("mapterhorn", common.Bounds{West: -7.5, South: 45.9, East: 7.1, North: 46})
	want := "dtm_mapterhorn_45p9000N-46p0000N_7p5000W-7p1000E.tif"
	if got != want {
		t.Errorf("DTMAreaFilename = %s, want %s", got, want)
	}
}
