// Package export writes georeferenced artifacts: float32 DTM GeoTIFFs fetched
// through the tiling service, and map screenshots with world files.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	_ "golang.org/x/image/tiff" // Register TIFF decoder for bbox rasters

	"terrain-desktop/internal/common"
	"terrain-desktop/internal/config"
	"terrain-desktop/internal/elevation"
	"terrain-desktop/internal/gdal"
	"terrain-desktop/internal/ratelimit"
	"terrain-desktop/internal/sources"
	"terrain-desktop/internal/utils/naming"
	"terrain-desktop/pkg/geotiff"
)

// DefaultTimeout bounds the bbox raster fetch
const DefaultTimeout = 10 * time.Second

// ErrSourceNotFound is returned when the export source key resolves to nothing
var ErrSourceNotFound = errors.New("terrain source not found")

// ErrInvalidRequest is returned for empty bounds or a non-positive output size
var ErrInvalidRequest = errors.New("invalid export request")

// ErrRateLimited means the tiling service asked us to back off
var ErrRateLimited = errors.New("tiling service is rate limited")

// Opener hands a URL to the system (browser navigation)
type Opener interface {
	OpenURL(url string) error
}

// Limiter keeps requests away from a rate-limited tiling service
type Limiter interface {
	IsRateLimited(service string) bool
	CheckStatus(service string, statusCode int) bool
}

// Saver persists a named artifact and returns where it ended up
type Saver interface {
	Save(name string, data []byte) (string, error)
}

// Status is the outcome of an export
type Status string

const (
	StatusSaved      Status = "saved"
	StatusRedirected Status = "redirected"
)

// Request describes one DTM export
type Request struct {
	SourceKey     string                `json:"sourceKey"`
	Bounds        common.Bounds         `json:"bounds"`
	MaxResolution int                   `json:"maxResolution"`
	Credentials   config.Credentials    `json:"-"`
	CustomSources []config.CustomSource `json:"-"`
	Endpoint      string                `json:"endpoint"`
}

// Result reports what the export did
type Result struct {
	Status       Status              `json:"status"`
	Path         string              `json:"path,omitempty"`
	URL          string              `json:"url"`
	Width        int                 `json:"width,omitempty"`
	Height       int                 `json:"height,omitempty"`
	Geotransform common.Geotransform `json:"geotransform"`
	Error        string              `json:"error,omitempty"` // cause of a redirect
}

// Exporter runs the DTM export pipeline
type Exporter struct {
	client   *http.Client
	opener   Opener
	saver    Saver
	limiter  Limiter
	now      func() time.Time
	inFlight atomic.Int32
}

// NewExporter creates an exporter. A non-positive timeout uses DefaultTimeout.
func NewExporter(opener Opener, saver Saver, timeout time.Duration) *Exporter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Exporter{
		client: &http.Client{Timeout: timeout},
		opener: opener,
		saver:  saver,
		now:    time.Now,
	}
}

// SetLimiter installs a rate limit gate for raster fetches
func (e *Exporter) SetLimiter(l Limiter) {
	e.limiter = l
}

// Exporting reports whether an export is in flight
func (e *Exporter) Exporting() bool {
	return e.inFlight.Load() > 0
}

// BBoxURL builds the tiling-service request for a width x height GeoTIFF of b
// read through the given virtual raster descriptor
func BBoxURL(endpoint string, b common.Bounds, width, height int, descriptor string) string {
	return fmt.Sprintf("%s/cog/bbox/%s/%dx%d.tif?url=%s",
		strings.TrimRight(endpoint, "/"), b.String(), width, height, url.QueryEscape(descriptor))
}

// ExportDTM fetches the rendered elevation raster for req, converts it to a
// float32 GeoTIFF and saves it. Fetch or conversion failures open the bbox URL
// directly instead and are reported as StatusRedirected, not as errors.
// Only an invalid request or an unknown source key returns an error.
func (e *Exporter) ExportDTM(ctx context.Context, req Request) (Result, error) {
	e.inFlight.Add(1)
	defer e.inFlight.Add(-1)

	if !req.Bounds.Valid() {
		return Result{}, fmt.Errorf("%w: bounds %s", ErrInvalidRequest, req.Bounds)
	}
	if req.MaxResolution <= 0 {
		return Result{}, fmt.Errorf("%w: max resolution %d", ErrInvalidRequest, req.MaxResolution)
	}

	cfg, ok := sources.Resolve(req.SourceKey, req.Credentials, req.CustomSources, req.Endpoint)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrSourceNotFound, req.SourceKey)
	}

	descriptor := gdal.CollapseWhitespace(gdal.BuildVirtualRasterXML(cfg.TileURL, cfg.TileSize))
	downloadURL := BBoxURL(req.Endpoint, req.Bounds, req.MaxResolution, req.MaxResolution, descriptor)

	result, err := e.fetchAndSave(ctx, downloadURL, cfg.Encoding, req.Bounds)
	if err != nil {
		log.Printf("[Export] DTM export failed, opening direct download: %v", err)
		return e.redirect(downloadURL, err), nil
	}

	log.Printf("[Export] Saved DTM %dx%d to %s", result.Width, result.Height, result.Path)
	return result, nil
}

func (e *Exporter) redirect(downloadURL string, cause error) Result {
	if e.opener != nil {
		if err := e.opener.OpenURL(downloadURL); err != nil {
			log.Printf("[Export] Failed to open download URL: %v", err)
		}
	}
	return Result{
		Status: StatusRedirected,
		URL:    downloadURL,
		Error:  cause.Error(),
	}
}

func (e *Exporter) fetchAndSave(ctx context.Context, downloadURL string, enc elevation.Encoding, b common.Bounds) (result Result, err error) {
	// Malformed rasters can panic inside third-party decoders
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while exporting: %v", r)
		}
	}()

	data, err := e.fetch(ctx, downloadURL)
	if err != nil {
		return Result{}, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("failed to decode raster: %w", err)
	}

	grid := elevation.DecodeImage(img, enc)
	if grid.Width == 0 || grid.Height == 0 {
		return Result{}, fmt.Errorf("empty %s raster", format)
	}

	gt := common.NewGeotransform(b, grid.Width, grid.Height)

	var buf bytes.Buffer
	tags := geotiff.WGS84Tags(gt.OriginX, gt.OriginY, gt.PixelSizeX, gt.PixelSizeY)
	if grid.HasNoData {
		tags[geotiff.TagType_GDALNoData] = geotiff.NoDataTag(float64(elevation.NoData))
	}
	if err := geotiff.EncodeFloat32(&buf, grid.Width, grid.Height, grid.Values, tags); err != nil {
		return Result{}, fmt.Errorf("failed to encode GeoTIFF: %w", err)
	}

	path, err := e.saver.Save(naming.DTMFilename(e.now()), buf.Bytes())
	if err != nil {
		return Result{}, fmt.Errorf("failed to save GeoTIFF: %w", err)
	}

	return Result{
		Status:       StatusSaved,
		Path:         path,
		URL:          downloadURL,
		Width:        grid.Width,
		Height:       grid.Height,
		Geotransform: gt,
	}, nil
}

func (e *Exporter) fetch(ctx context.Context, downloadURL string) ([]byte, error) {
	service := ratelimit.ServiceKey(downloadURL)
	if e.limiter != nil && e.limiter.IsRateLimited(service) {
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, service)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch raster: %w", err)
	}
	defer resp.Body.Close()

	if e.limiter != nil && e.limiter.CheckStatus(service, resp.StatusCode) {
		return nil, fmt.Errorf("%w: HTTP %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch raster: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return data, nil
}

