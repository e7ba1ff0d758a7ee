package gdal

import (
	"fmt"
	"strings"

	"terrain-desktop/internal/common"
)

// OutputFile is the destination written by the generated gdal_translate call
const OutputFile = "output.tif"

// OutputSize returns the -outsize pair for b: the longer geographic side gets
// maxOutputPixels and the other side 0 so GDAL keeps the aspect ratio.
func OutputSize(b common.Bounds, maxOutputPixels int) (int, int) {
	if b.Width() >= b.Height() {
		return maxOutputPixels, 0
	}
	return 0, maxOutputPixels
}

// BuildTranslateCommand returns a single-line gdal_translate invocation that
// cuts b out of the virtual raster described by descriptor.
func BuildTranslateCommand(descriptor string, b common.Bounds, maxOutputPixels int) string {
	w, h := OutputSize(b, maxOutputPixels)

	return fmt.Sprintf("gdal_translate -outsize %d %d -projwin %s %s %s %s -projwin_srs EPSG:4326 %s %s",
		w, h,
		formatCoord(b.West), formatCoord(b.North), formatCoord(b.East), formatCoord(b.South),
		shellQuote(CollapseWhitespace(descriptor)),
		OutputFile)
}

// CollapseWhitespace folds an indented XML document onto one line
func CollapseWhitespace(s string) string {
	return strings.ReplaceAll(strings.Join(strings.Fields(s), " "), "> <", "><")
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
