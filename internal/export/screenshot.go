package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"log"
	"strings"

	"terrain-desktop/internal/common"
	"terrain-desktop/internal/utils/naming"
)

// Projection is the map projection the screenshot was rendered in
type Projection string

const (
	ProjectionMercator Projection = "mercator" // flat 2D map
	ProjectionGlobe    Projection = "globe"
)

// ScreenshotResult lists the written files
type ScreenshotResult struct {
	ImagePath     string `json:"imagePath"`
	WorldFilePath string `json:"worldFilePath,omitempty"`
}

// WorldFile returns the six-line world file for a width x height image covering b
func WorldFile(b common.Bounds, width, height int) string {
	gt := common.NewGeotransform(b, width, height)
	return fmt.Sprintf("%.10f\n%.10f\n%.10f\n%.10f\n%.10f\n%.10f\n",
		gt.PixelSizeX, 0.0, 0.0, -gt.PixelSizeY, b.West, b.North)
}

// DecodeDataURL extracts the PNG bytes of a "data:image/png;base64,..." URL
func DecodeDataURL(dataURL string) ([]byte, error) {
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(dataURL, prefix) {
		return nil, fmt.Errorf("not a PNG data URL")
	}
	data, err := base64.StdEncoding.DecodeString(dataURL[len(prefix):])
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URL: %w", err)
	}
	return data, nil
}

// SaveScreenshot stores a captured PNG. In the 2D projection a world file is
// written next to it; on the globe the image is not georeferenced.
func (e *Exporter) SaveScreenshot(pngData []byte, b common.Bounds, projection Projection) (ScreenshotResult, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(pngData))
	if err != nil {
		return ScreenshotResult{}, fmt.Errorf("failed to read PNG: %w", err)
	}

	name := naming.ScreenshotFilename(e.now())
	imagePath, err := e.saver.Save(name, pngData)
	if err != nil {
		return ScreenshotResult{}, err
	}
	result := ScreenshotResult{ImagePath: imagePath}

	if projection != ProjectionMercator {
		return result, nil
	}

	worldPath, err := e.saver.Save(naming.WorldFilename(name), []byte(WorldFile(b, cfg.Width, cfg.Height)))
	if err != nil {
		log.Printf("[Export] Failed to write world file: %v", err)
		return result, nil
	}
	result.WorldFilePath = worldPath

	log.Printf("[Export] Saved screenshot %dx%d to %s", cfg.Width, cfg.Height, imagePath)
	return result, nil
}
