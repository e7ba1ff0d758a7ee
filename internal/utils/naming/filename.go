package naming

import (
	"fmt"
	"strings"
	"time"

	"terrain-desktop/internal/common"
)

// DTMFilename creates a timestamped name for an exported elevation model
// Format: dtm_{yyyymmdd_hhmmss}.tif
func DTMFilename(t time.Time) string {
	return fmt.Sprintf("dtm_%s.tif", common.FormatFileTimestamp(t))
}

// ScreenshotFilename creates a timestamped name for a map screenshot
// Format: terrain_{yyyymmdd_hhmmss}.png
func ScreenshotFilename(t time.Time) string {
	return fmt.Sprintf("terrain_%s.png", common.FormatFileTimestamp(t))
}

// WorldFilename returns the world-file name for an image (.png -> .pgw, .tif -> .tfw)
func WorldFilename(imageName string) string {
	for _, ext := range []struct{ image, world string }{
		{".png", ".pgw"},
		{".tif", ".tfw"},
		{".jpg", ".jgw"},
	} {
		if base, ok := strings.CutSuffix(imageName, ext.image); ok && base != "" {
			return base + ext.world
		}
	}
	return imageName + ".wld"
}

// DTMAreaFilename names an export by area instead of time
// Format: dtm_{source}_{bbox}.tif
func DTMAreaFilename(source string, b common.Bounds) string {
	bboxStr := fmt.Sprintf("%s-%s_%s-%s",
		SanitizeCoordinate(b.South, true),
		SanitizeCoordinate(b.North, true),
		SanitizeCoordinate(b.West, false),
		SanitizeCoordinate(b.East, false))

	return fmt.Sprintf("dtm_%s_%s.tif", source, bboxStr)
}
