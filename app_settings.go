package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"terrain-desktop/internal/common"
	"terrain-desktop/internal/config"
)

// ===================
// Settings Management
// ===================

// GetSettings returns current user settings
func (a *App) GetSettings() (*config.UserSettings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Return a copy to prevent external modifications
	settingsCopy := *a.settings
	settingsCopy.Credentials = make(config.Credentials, len(a.settings.Credentials))
	for k, v := range a.settings.Credentials {
		settingsCopy.Credentials[k] = v
	}
	settingsCopy.CustomSources = append([]config.CustomSource(nil), a.settings.CustomSources...)
	return &settingsCopy, nil
}

// SaveSettings saves user settings to disk and updates app state
func (a *App) SaveSettings(settings *config.UserSettings) error {
	if settings.DownloadPath == "" {
		return fmt.Errorf("download path cannot be empty")
	}
	if settings.TerrainEndpoint == "" {
		return fmt.Errorf("terrain endpoint cannot be empty")
	}
	if settings.MaxExportResolution <= 0 {
		return fmt.Errorf("max export resolution must be positive")
	}
	if settings.ExportTimeoutSec <= 0 {
		return fmt.Errorf("export timeout must be positive")
	}
	for i := range settings.CustomSources {
		if err := config.ValidateCustomSource(&settings.CustomSources[i]); err != nil {
			return fmt.Errorf("custom source %d: %w", i, err)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := config.SaveSettingsTo(a.settingsPath, settings); err != nil {
		return err
	}
	a.settings = settings

	// Export timeout and cache size apply on next restart
	log.Printf("Settings saved to %s", a.settingsPath)
	return nil
}

// GetSettingsPath returns the settings file path
func (a *App) GetSettingsPath() string {
	return a.settingsPath
}

// SetDownloadPath sets the export directory
func (a *App) SetDownloadPath(path string) error {
	if path == "" {
		return fmt.Errorf("download path cannot be empty")
	}
	return a.updateSettings(func(s *config.UserSettings) error {
		s.DownloadPath = path
		return nil
	})
}

// updateSettings applies fn and persists. When fn or the save fails the
// in-memory settings stay as they were.
func (a *App) updateSettings(fn func(s *config.UserSettings) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := *a.settings
	next.Credentials = make(config.Credentials, len(a.settings.Credentials))
	for k, v := range a.settings.Credentials {
		next.Credentials[k] = v
	}
	next.CustomSources = append([]config.CustomSource(nil), a.settings.CustomSources...)

	if err := fn(&next); err != nil {
		return err
	}
	if err := config.SaveSettingsTo(a.settingsPath, &next); err != nil {
		return err
	}
	a.settings = &next
	return nil
}

// ===================
// Credentials and Endpoint
// ===================

// SetCredential stores the API key of a keyed provider ("mapbox", "maptiler", "linz")
func (a *App) SetCredential(provider, key string) error {
	if !lo.Contains(common.KeyedProviders, provider) {
		return fmt.Errorf("provider '%s' does not take an API key", provider)
	}
	return a.updateSettings(func(s *config.UserSettings) error {
		key = strings.TrimSpace(key)
		if key == "" {
			delete(s.Credentials, provider)
		} else {
			s.Credentials[provider] = key
		}
		log.Printf("Updated credential for %s", provider)
		return nil
	})
}

// SetTerrainEndpoint sets the tiling service base URL
func (a *App) SetTerrainEndpoint(endpoint string) error {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return fmt.Errorf("endpoint must be an http(s) URL")
	}
	return a.updateSettings(func(s *config.UserSettings) error {
		s.TerrainEndpoint = endpoint
		return nil
	})
}

// ===================
// Custom Sources
// ===================

// GetCustomSources returns the user-defined sources
func (a *App) GetCustomSources() []config.CustomSource {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]config.CustomSource(nil), a.settings.CustomSources...)
}

// AddCustomSource adds a new custom terrain source and returns it with its new ID
func (a *App) AddCustomSource(source config.CustomSource) (config.CustomSource, error) {
	if err := config.ValidateCustomSource(&source); err != nil {
		return config.CustomSource{}, err
	}
	source.ID = uuid.NewString()

	err := a.updateSettings(func(s *config.UserSettings) error {
		s.CustomSources = append(s.CustomSources, source)
		return nil
	})
	if err != nil {
		return config.CustomSource{}, err
	}

	log.Printf("Added custom source: %s (%s)", source.Name, source.Type)
	return source, nil
}

// UpdateCustomSource replaces the custom source with the given ID
func (a *App) UpdateCustomSource(id string, source config.CustomSource) error {
	if err := config.ValidateCustomSource(&source); err != nil {
		return err
	}
	source.ID = id

	return a.updateSettings(func(s *config.UserSettings) error {
		_, idx, found := lo.FindIndexOf(s.CustomSources, func(c config.CustomSource) bool {
			return c.ID == id
		})
		if !found {
			return fmt.Errorf("source '%s' not found", id)
		}
		s.CustomSources[idx] = source
		log.Printf("Updated custom source: %s", id)
		return nil
	})
}

// RemoveCustomSource removes a custom terrain source by ID
func (a *App) RemoveCustomSource(id string) error {
	return a.updateSettings(func(s *config.UserSettings) error {
		kept := lo.Reject(s.CustomSources, func(c config.CustomSource, _ int) bool {
			return c.ID == id
		})
		if len(kept) == len(s.CustomSources) {
			return fmt.Errorf("source '%s' not found", id)
		}
		s.CustomSources = kept
		log.Printf("Removed custom source: %s", id)
		return nil
	})
}

// GetCustomSourcesJSON returns the custom sources as an editable JSON array
func (a *App) GetCustomSourcesJSON() (string, error) {
	data, err := json.MarshalIndent(a.GetCustomSources(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal custom sources: %w", err)
	}
	return string(data), nil
}

// ReplaceCustomSourcesJSON replaces every custom source with a bulk-edited
// JSON array. Invalid input returns an error and changes nothing.
func (a *App) ReplaceCustomSourcesJSON(data string) error {
	parsed, err := config.ParseCustomSources([]byte(data))
	if err != nil {
		return err
	}
	return a.updateSettings(func(s *config.UserSettings) error {
		s.CustomSources = parsed
		log.Printf("Replaced custom sources (%d entries)", len(parsed))
		return nil
	})
}
