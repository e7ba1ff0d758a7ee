package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// SettingsVersion is bumped whenever the on-disk layout changes
const SettingsVersion = 2

// SourceType is the kind of a user-added terrain source
type SourceType string

const (
	SourceTypeCOG        SourceType = "cog"
	SourceTypeTerrainRGB SourceType = "terrainrgb"
	SourceTypeTerrarium  SourceType = "terrarium"
	SourceTypeVRT        SourceType = "vrt"
	SourceTypeSTAC       SourceType = "stac"
	SourceTypeMosaicJSON SourceType = "mosaicjson"
)

// SourceTypes lists every accepted custom source type
var SourceTypes = []SourceType{
	SourceTypeCOG,
	SourceTypeTerrainRGB,
	SourceTypeTerrarium,
	SourceTypeVRT,
	SourceTypeSTAC,
	SourceTypeMosaicJSON,
}

// ParseSourceType validates a source type string
func ParseSourceType(s string) (SourceType, error) {
	for _, t := range SourceTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid source type: %s (must be cog, terrainrgb, terrarium, vrt, stac, or mosaicjson)", s)
}

// CustomSource represents a user-added terrain source
type CustomSource struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	Type        SourceType `json:"type"`
	Description string     `json:"description,omitempty"`
}

// Credentials maps a provider name ("mapbox", "maptiler", "linz") to its API key
type Credentials map[string]string

// Camera is a persisted camera pose
type Camera struct {
	Lon     float64 `json:"lon"`
	Lat     float64 `json:"lat"`
	Zoom    float64 `json:"zoom"`
	Bearing float64 `json:"bearing"`
	Pitch   float64 `json:"pitch"`
}

// UserSettings represents persistent user preferences
type UserSettings struct {
	Version int `json:"version"`

	// Download settings
	DownloadPath string `json:"downloadPath"`

	// Remote tiling service (titiler-compatible) used for COG tiles and DTM export
	TerrainEndpoint string `json:"terrainEndpoint"`

	// Export settings
	MaxExportResolution int `json:"maxExportResolution"`
	ExportTimeoutSec    int `json:"exportTimeoutSec"`

	// Provider credentials
	Credentials Credentials `json:"credentials"`

	// Custom terrain sources
	CustomSources []CustomSource `json:"customSources"`

	// Default map settings
	DefaultSource string `json:"defaultSource"`
	LastCamera    Camera `json:"lastCamera"`

	// Encoded view state restored on startup (URL query form)
	ViewState string `json:"viewState,omitempty"`

	// UI preferences
	Theme               string `json:"theme"` // "light", "dark", "system"
	AutoOpenDownloadDir bool   `json:"autoOpenDownloadDir"`

	// COG info cache size (entries)
	InfoCacheEntries int `json:"infoCacheEntries"`
}

// DefaultSettings returns default user settings
func DefaultSettings() *UserSettings {
	homeDir, _ := os.UserHomeDir()
	downloadPath := filepath.Join(homeDir, "Downloads", "terrain")

	return &UserSettings{
		Version:             SettingsVersion,
		DownloadPath:        downloadPath,
		TerrainEndpoint:     "https://titiler.xyz",
		MaxExportResolution: 4096,
		ExportTimeoutSec:    10,
		Credentials:         Credentials{},
		CustomSources:       []CustomSource{},
		DefaultSource:       "mapterhorn",
		LastCamera: Camera{
			Lon:  7.6586, // Matterhorn
			Lat:  45.9763,
			Zoom: 12,
		},
		Theme:               "system",
		AutoOpenDownloadDir: false,
		InfoCacheEntries:    128,
	}
}

// GetSettingsPath returns the OS-specific settings file path
func GetSettingsPath() string {
	homeDir, _ := os.UserHomeDir()

	// Use unified directory structure: ~/.walkthru-earth/terrain-desktop/settings/
	baseDir := filepath.Join(homeDir, ".walkthru-earth", "terrain-desktop", "settings")

	return filepath.Join(baseDir, "settings.json")
}

// LoadSettings loads user settings from disk
func LoadSettings() (*UserSettings, error) {
	return LoadSettingsFrom(GetSettingsPath())
}

// LoadSettingsFrom loads settings from an explicit path, merging defaults for missing fields
func LoadSettingsFrom(settingsPath string) (*UserSettings, error) {
	// If file doesn't exist, return defaults
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		return DefaultSettings(), nil
	}

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings UserSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	// Merge with defaults for any missing fields
	defaults := DefaultSettings()
	if settings.DownloadPath == "" {
		settings.DownloadPath = defaults.DownloadPath
	}
	if settings.TerrainEndpoint == "" {
		settings.TerrainEndpoint = defaults.TerrainEndpoint
	}
	if settings.MaxExportResolution <= 0 {
		settings.MaxExportResolution = defaults.MaxExportResolution
	}
	if settings.ExportTimeoutSec <= 0 {
		settings.ExportTimeoutSec = defaults.ExportTimeoutSec
	}
	if settings.Credentials == nil {
		settings.Credentials = Credentials{}
	}
	if settings.CustomSources == nil {
		settings.CustomSources = []CustomSource{}
	}
	if settings.DefaultSource == "" {
		settings.DefaultSource = defaults.DefaultSource
	}
	if settings.Theme == "" {
		settings.Theme = defaults.Theme
	}
	if settings.InfoCacheEntries <= 0 {
		settings.InfoCacheEntries = defaults.InfoCacheEntries
	}
	settings.Version = SettingsVersion

	return &settings, nil
}

// SaveSettings saves user settings to disk
func SaveSettings(settings *UserSettings) error {
	return SaveSettingsTo(GetSettingsPath(), settings)
}

// SaveSettingsTo saves settings to an explicit path
func SaveSettingsTo(settingsPath string, settings *UserSettings) error {
	// Ensure directory exists
	dir := filepath.Dir(settingsPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(settingsPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// ValidateCustomSource validates a custom source configuration
func ValidateCustomSource(source *CustomSource) error {
	if source.Name == "" {
		return fmt.Errorf("source name is required")
	}
	if source.URL == "" {
		return fmt.Errorf("source URL is required")
	}
	if source.Type == "" {
		return fmt.Errorf("source type is required")
	}
	if _, err := ParseSourceType(string(source.Type)); err != nil {
		return err
	}
	return nil
}

// ParseCustomSources parses a bulk-edited JSON array of custom sources.
// Every entry must validate and IDs must be unique; on any error nothing is returned.
func ParseCustomSources(data []byte) ([]CustomSource, error) {
	var sources []CustomSource
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	seen := make(map[string]bool, len(sources))
	for i := range sources {
		if sources[i].ID == "" {
			return nil, fmt.Errorf("source %d: id is required", i)
		}
		if seen[sources[i].ID] {
			return nil, fmt.Errorf("source %d: duplicate id '%s'", i, sources[i].ID)
		}
		seen[sources[i].ID] = true
		if err := ValidateCustomSource(&sources[i]); err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
	}
	if sources == nil {
		sources = []CustomSource{}
	}
	return sources, nil
}
