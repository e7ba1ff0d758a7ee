package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	goruntime "runtime"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/posthog/posthog-go"
	"github.com/samber/lo"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
	"golang.org/x/sync/semaphore"

	"terrain-desktop/internal/cache"
	"terrain-desktop/internal/common"
	"terrain-desktop/internal/config"
	"terrain-desktop/internal/cog"
	"terrain-desktop/internal/export"
	"terrain-desktop/internal/gdal"
	"terrain-desktop/internal/handlers/tileserver"
	"terrain-desktop/internal/ratelimit"
	"terrain-desktop/internal/sources"
	"terrain-desktop/internal/viewstate"
	"terrain-desktop/internal/viewsync"
)

// Linker flags
var (
	PostHogKey  string
	PostHogHost string
	AppVersion  string = "0.0.0-dev"
)

// Frontend events
const (
	EventExportState   = "dtm-export-state"
	EventSecondaryJump = "secondary-jump"
	EventPrimaryJump   = "primary-jump"
	EventRateLimit     = "rate-limit"
	EventRateRecovered = "rate-limit-recovered"
	EventLog           = "log"
)

// cameraSaveDelay coalesces camera persistence while the user pans
const cameraSaveDelay = 750 * time.Millisecond

// SourceInfo is a terrain source as listed in the source pickers
type SourceInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
	Encoding    string `json:"encoding,omitempty"`
	Custom      bool   `json:"custom"`
	NeedsKey    bool   `json:"needsKey"`
	HasKey      bool   `json:"hasKey"`
}

// ExportState is emitted around a DTM export
type ExportState struct {
	Exporting bool           `json:"exporting"`
	Result    *export.Result `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// App struct
type App struct {
	ctx          context.Context
	mu           sync.Mutex
	settings     *config.UserSettings
	settingsPath string
	devMode      bool
	phClient     posthog.Client

	exporter    *export.Exporter
	exportSem   *semaphore.Weighted
	rateLimit   *ratelimit.Handler
	boundsCache *cache.BoundsCache

	viewSync   *viewsync.Synchronizer
	viewState  *viewstate.State
	saveCamera func(f func())

	interop *tileserver.Server
}

// frontendViewport forwards camera jumps to a map in the frontend
type frontendViewport struct {
	app   *App
	event string
}

func (v frontendViewport) JumpTo(cam viewsync.Camera) {
	v.app.emit(v.event, cam)
}

// downloadSaver writes into the download path current at save time
type downloadSaver struct {
	app *App
}

func (s downloadSaver) Save(name string, data []byte) (string, error) {
	return export.DirSaver{Dir: s.app.GetDownloadPath()}.Save(name, data)
}

// NewApp creates a new App application struct
func NewApp() *App {
	settingsPath := config.GetSettingsPath()
	settings, err := config.LoadSettingsFrom(settingsPath)
	if err != nil {
		log.Printf("Failed to load settings, using defaults: %v", err)
		settings = config.DefaultSettings()
	}
	log.Printf("Settings loaded from: %s", settingsPath)

	var phClient posthog.Client
	if PostHogKey != "" {
		phConfig := posthog.Config{
			Endpoint: PostHogHost,
		}
		client, err := posthog.NewWithConfig(PostHogKey, phConfig)
		if err != nil {
			log.Printf("Failed to initialize PostHog: %v", err)
		} else {
			phClient = client
		}
	}

	return newApp(settings, settingsPath, cache.GetCacheDir(), phClient)
}

// newApp wires the app around loaded settings. An empty cacheDir keeps the
// COG bounds cache in memory.
func newApp(settings *config.UserSettings, settingsPath, cacheDir string, phClient posthog.Client) *App {
	a := &App{
		settings:     settings,
		settingsPath: settingsPath,
		phClient:     phClient,
		exportSem:    semaphore.NewWeighted(1),
		rateLimit:    ratelimit.NewHandler(nil),
		saveCamera:   debounce.New(cameraSaveDelay),
	}

	boundsCache, err := cache.NewBoundsCache(cacheDir, &cache.Config{MaxEntries: settings.InfoCacheEntries})
	if err != nil {
		log.Printf("Failed to initialize COG bounds cache, using memory only: %v", err)
		boundsCache, _ = cache.NewBoundsCache("", &cache.Config{MaxEntries: settings.InfoCacheEntries})
	}
	a.boundsCache = boundsCache

	a.exporter = export.NewExporter(
		export.OpenerFunc(a.openURL),
		downloadSaver{app: a},
		time.Duration(settings.ExportTimeoutSec)*time.Second,
	)
	a.exporter.SetLimiter(a.rateLimit)

	a.viewState, err = viewstate.Decode(settings.ViewState)
	if err != nil {
		log.Printf("Stored view state is invalid, starting from defaults: %v", err)
		a.viewState = viewstate.New()
	}

	a.viewSync = viewsync.New(a.commitCamera, viewsync.DefaultReleaseDelay)
	a.viewSync.Attach(
		frontendViewport{app: a, event: EventPrimaryJump},
		frontendViewport{app: a, event: EventSecondaryJump},
	)
	a.viewSync.SetDualView(a.viewState.Bool(viewstate.KeySplit))

	a.interop = tileserver.NewServer(a.resolve)

	return a
}

// startup is called when the app starts
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	os.MkdirAll(a.GetDownloadPath(), 0755)

	if err := a.interop.Start(); err != nil {
		wailsRuntime.LogError(ctx, fmt.Sprintf("Failed to start interop server: %v", err))
	} else {
		wailsRuntime.LogInfo(ctx, "Interop server listening on "+a.interop.GetServerURL())
	}

	a.rateLimit.SetOnRateLimit(func(event ratelimit.RateLimitEvent) {
		a.emit(EventRateLimit, event)
	})
	a.rateLimit.SetOnRecovered(func(service string) {
		a.emit(EventRateRecovered, service)
	})

	a.TrackEvent("app_started", map[string]interface{}{
		"version": a.GetAppVersion(),
		"os":      goruntime.GOOS,
		"arch":    goruntime.GOARCH,
	})
}

// shutdown flushes pending state and cleans up resources
func (a *App) shutdown(ctx context.Context) {
	a.mu.Lock()
	if err := config.SaveSettingsTo(a.settingsPath, a.settings); err != nil {
		log.Printf("Failed to save settings on shutdown: %v", err)
	}
	a.mu.Unlock()

	if err := a.interop.Shutdown(ctx); err != nil {
		log.Printf("Failed to stop interop server: %v", err)
	}
	if a.phClient != nil {
		a.phClient.Close()
	}
}

// TrackEvent sends an event to PostHog
func (a *App) TrackEvent(event string, props map[string]interface{}) {
	if a.phClient != nil {
		a.phClient.Enqueue(posthog.Capture{
			DistinctId: "backend_user",
			Event:      event,
			Properties: props,
		})
	}
}

// GetAppVersion returns the current application version
func (a *App) GetAppVersion() string {
	return AppVersion
}

// emit sends an event to the frontend once the runtime is up
func (a *App) emit(event string, data ...interface{}) {
	if a.ctx == nil {
		return
	}
	wailsRuntime.EventsEmit(a.ctx, event, data...)
}

// emitLog sends a log message to the frontend (only in dev mode)
func (a *App) emitLog(message string) {
	if a.devMode {
		a.emit(EventLog, message)
	}
}

// openURL navigates the system browser to url
func (a *App) openURL(url string) error {
	if a.ctx == nil {
		return fmt.Errorf("runtime not started")
	}
	wailsRuntime.BrowserOpenURL(a.ctx, url)
	return nil
}

// ===================
// Terrain Sources
// ===================

// GetSources lists the built-in sources followed by the custom ones
func (a *App) GetSources() []SourceInfo {
	a.mu.Lock()
	defer a.mu.Unlock()

	builtin := lo.Map(sources.Catalog(), func(d sources.Descriptor, _ int) SourceInfo {
		return SourceInfo{
			Key:         d.Key,
			Name:        d.Name,
			Description: d.Description,
			Link:        d.Link,
			Encoding:    string(d.Encoding),
			NeedsKey:    d.RequiresKey(),
			HasKey:      a.settings.Credentials[d.Provider] != "",
		}
	})

	custom := lo.Map(a.settings.CustomSources, func(s config.CustomSource, _ int) SourceInfo {
		return SourceInfo{
			Key:         s.ID,
			Name:        s.Name,
			Description: s.Description,
			Custom:      true,
		}
	})

	return append(builtin, custom...)
}

// resolve looks a source key up against the current credentials and custom sources
func (a *App) resolve(key string) (sources.Config, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return sources.Resolve(key, a.settings.Credentials, a.settings.CustomSources, a.settings.TerrainEndpoint)
}

// ResolveSource returns the tile access for a source key
func (a *App) ResolveSource(key string) (sources.Config, error) {
	cfg, ok := a.resolve(key)
	if !ok {
		return sources.Config{}, fmt.Errorf("%w: %s", export.ErrSourceNotFound, key)
	}
	return cfg, nil
}

// GetVirtualRasterXML returns the GDAL_WMS descriptor of a source
func (a *App) GetVirtualRasterXML(key string) (string, error) {
	cfg, err := a.ResolveSource(key)
	if err != nil {
		return "", err
	}
	return gdal.BuildVirtualRasterXML(cfg.TileURL, cfg.TileSize), nil
}

// GetVirtualRasterURL returns the local URL serving a source's descriptor
func (a *App) GetVirtualRasterURL(key string) string {
	return a.interop.VRTURL(key)
}

// GetTranslateCommand returns the gdal_translate call cutting bounds out of a source
func (a *App) GetTranslateCommand(key string, bounds common.Bounds) (string, error) {
	xml, err := a.GetVirtualRasterXML(key)
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	maxPixels := a.settings.MaxExportResolution
	a.mu.Unlock()

	return gdal.BuildTranslateCommand(xml, bounds, maxPixels), nil
}

// GetCOGBounds returns the extent of a COG through the tiling service.
// Failures are logged and returned; the caller keeps its current view.
func (a *App) GetCOGBounds(url string) (common.Bounds, error) {
	a.mu.Lock()
	endpoint := a.settings.TerrainEndpoint
	timeout := time.Duration(a.settings.ExportTimeoutSec) * time.Second
	a.mu.Unlock()

	client := cog.NewClient(endpoint, a.boundsCache, timeout)
	client.SetLimiter(a.rateLimit)

	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	b, err := client.Bounds(ctx, url)
	if err != nil {
		log.Printf("[COG] Failed to get bounds for %s: %v", url, err)
		return common.Bounds{}, err
	}
	a.emitLog(fmt.Sprintf("COG bounds for %s: %s", url, b))
	return b, nil
}

// ===================
// Export
// ===================

// ExportDTM exports the elevation of bounds from a source as a float32 GeoTIFF.
// Only one export runs at a time; a second call while busy is rejected.
func (a *App) ExportDTM(key string, bounds common.Bounds) (export.Result, error) {
	if !bounds.Valid() {
		return export.Result{}, fmt.Errorf("export area is empty")
	}
	if !a.exportSem.TryAcquire(1) {
		return export.Result{}, fmt.Errorf("an export is already running")
	}
	defer a.exportSem.Release(1)

	a.mu.Lock()
	req := export.Request{
		SourceKey:     key,
		Bounds:        bounds,
		MaxResolution: a.settings.MaxExportResolution,
		Credentials:   a.settings.Credentials,
		CustomSources: a.settings.CustomSources,
		Endpoint:      a.settings.TerrainEndpoint,
	}
	a.mu.Unlock()

	a.emit(EventExportState, ExportState{Exporting: true})

	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := a.exporter.ExportDTM(ctx, req)

	state := ExportState{Exporting: false}
	if err != nil {
		state.Error = err.Error()
	} else {
		state.Result = &result
		a.TrackEvent("dtm_exported", map[string]interface{}{
			"source": key,
			"status": string(result.Status),
			"width":  result.Width,
			"height": result.Height,
		})
	}
	a.emit(EventExportState, state)

	return result, err
}

// IsExporting reports whether a DTM export is in flight
func (a *App) IsExporting() bool {
	return a.exporter.Exporting()
}

// SaveScreenshot stores a canvas capture ("data:image/png;base64,...") of
// the visible bounds. projection is "mercator" or "globe".
func (a *App) SaveScreenshot(dataURL string, bounds common.Bounds, projection string) (export.ScreenshotResult, error) {
	pngData, err := export.DecodeDataURL(dataURL)
	if err != nil {
		return export.ScreenshotResult{}, err
	}

	res, err := a.exporter.SaveScreenshot(pngData, bounds, export.Projection(projection))
	if err != nil {
		log.Printf("[Export] Screenshot failed: %v", err)
		return export.ScreenshotResult{}, err
	}

	a.TrackEvent("screenshot_saved", map[string]interface{}{
		"projection":   projection,
		"georeference": res.WorldFilePath != "",
	})

	a.mu.Lock()
	autoOpen := a.settings.AutoOpenDownloadDir
	a.mu.Unlock()
	if autoOpen {
		a.OpenDownloadFolder()
	}

	return res, nil
}

// ===================
// Dual View
// ===================

// OnCameraChange is called by the primary map on every camera change
func (a *App) OnCameraChange(cam viewsync.Camera) {
	a.viewSync.OnCameraChange(cam)
}

// OnSecondaryCameraChange is called by the secondary map on every camera change
func (a *App) OnSecondaryCameraChange(cam viewsync.Camera) {
	a.viewSync.OnSecondaryCameraChange(cam)
}

// OnMoveEnd is called by the primary map when a move settles
func (a *App) OnMoveEnd(cam viewsync.Camera) {
	a.viewSync.OnMoveEnd(cam)
}

// SetDualView toggles split screen mirroring
func (a *App) SetDualView(active bool) {
	a.viewSync.SetDualView(active)
	a.mu.Lock()
	a.viewState.SetBool(viewstate.KeySplit, active)
	a.settings.ViewState = a.viewState.Encode()
	a.mu.Unlock()
}

// commitCamera records a settled camera and persists it once panning stops
func (a *App) commitCamera(cam viewsync.Camera) {
	a.mu.Lock()
	a.viewState.SetFloat(viewstate.KeyLon, cam.Lon)
	a.viewState.SetFloat(viewstate.KeyLat, cam.Lat)
	a.viewState.SetFloat(viewstate.KeyZoom, cam.Zoom)
	a.viewState.SetFloat(viewstate.KeyBearing, cam.Bearing)
	a.viewState.SetFloat(viewstate.KeyPitch, cam.Pitch)
	a.settings.LastCamera = config.Camera(cam)
	a.settings.ViewState = a.viewState.Encode()
	a.mu.Unlock()

	a.saveCamera(a.persistSettings)
}

func (a *App) persistSettings() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := config.SaveSettingsTo(a.settingsPath, a.settings); err != nil {
		log.Printf("[Sync] Failed to persist camera: %v", err)
	}
}

// ===================
// Folders
// ===================

// GetDownloadPath returns the export directory
func (a *App) GetDownloadPath() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings.DownloadPath
}

// SelectDownloadFolder opens a folder picker dialog
func (a *App) SelectDownloadFolder() (string, error) {
	path, err := wailsRuntime.OpenDirectoryDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title:            "Select Download Folder",
		DefaultDirectory: a.GetDownloadPath(),
	})
	if err != nil {
		return "", err
	}

	if path != "" {
		if err := a.SetDownloadPath(path); err != nil {
			return "", err
		}
	}

	return path, nil
}

// OpenDownloadFolder opens the export directory in the file manager
func (a *App) OpenDownloadFolder() error {
	path := a.GetDownloadPath()
	os.MkdirAll(path, 0755)
	return a.OpenFolder(path)
}

// OpenFolder opens a folder in the system file manager
func (a *App) OpenFolder(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("folder does not exist: %s", path)
	}

	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", path)
	default: // Linux and others
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
