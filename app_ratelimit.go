package main

import (
	"terrain-desktop/internal/cache"
	"terrain-desktop/internal/ratelimit"
)

// Rate Limit Management Functions (Wails-exported)

// tilingService returns the rate limit key of the configured tiling service
func (a *App) tilingService() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return ratelimit.ServiceKey(a.settings.TerrainEndpoint)
}

// ManualRetryRateLimit lets the next request to the tiling service through
func (a *App) ManualRetryRateLimit() {
	a.rateLimit.ManualRetry(a.tilingService())
}

// GetRateLimitStatus returns the current rate limit state of the tiling service
func (a *App) GetRateLimitStatus() *ratelimit.RateLimitEvent {
	return a.rateLimit.GetCurrentState(a.tilingService())
}

// IsRateLimited checks if the tiling service is currently backing off
func (a *App) IsRateLimited() bool {
	return a.rateLimit.IsRateLimited(a.tilingService())
}

// Cache Management Functions (Wails-exported)

// CacheStats represents cache statistics for frontend
type CacheStats struct {
	Entries    int    `json:"entries"`
	MaxEntries int    `json:"maxEntries"`
	CachePath  string `json:"cachePath"`
}

// GetCacheStats returns COG bounds cache statistics
func (a *App) GetCacheStats() CacheStats {
	a.mu.Lock()
	maxEntries := a.settings.InfoCacheEntries
	a.mu.Unlock()

	return CacheStats{
		Entries:    a.boundsCache.Len(),
		MaxEntries: maxEntries,
		CachePath:  cache.GetCacheDir(),
	}
}

// ClearCache removes all cached COG bounds
func (a *App) ClearCache() error {
	return a.boundsCache.Clear()
}
