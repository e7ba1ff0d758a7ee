package main

import (
	"fmt"

	"terrain-desktop/internal/viewstate"
	"terrain-desktop/internal/viz"
	"terrain-desktop/internal/viz/hillshade"
	"terrain-desktop/internal/viz/ramps"
)

// ===================
// View State
// ===================

// GetViewState returns the shareable query form of the current view
func (a *App) GetViewState() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.viewState.Encode()
}

// GetViewStateValues returns every key with its current value, defaults included
func (a *App) GetViewStateValues() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]string, len(viewstate.Defaults))
	for k := range viewstate.Defaults {
		out[k] = a.viewState.Get(k)
	}
	for k, v := range a.viewState.Values() {
		out[k] = v
	}
	return out
}

// SetViewState replaces the view with a shared query. An invalid query
// leaves the current view untouched.
func (a *App) SetViewState(query string) error {
	state, err := viewstate.Decode(query)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.viewState = state
	a.settings.ViewState = state.Encode()
	a.mu.Unlock()

	a.viewSync.SetDualView(state.Bool(viewstate.KeySplit))
	return nil
}

// SetViewStateValue updates a single key
func (a *App) SetViewStateValue(key, value string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.viewState.Set(key, value)
	a.settings.ViewState = a.viewState.Encode()
}

// ===================
// Styling
// ===================

// GetHillshadeMethods returns the method names in display order
func (a *App) GetHillshadeMethods() []string {
	methods := hillshade.Methods()
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = m.String()
	}
	return names
}

// GetHillshadeSupport returns which controls apply to a method
func (a *App) GetHillshadeSupport(method string) (hillshade.Flags, error) {
	m, err := hillshade.ParseMethod(method)
	if err != nil {
		return hillshade.Flags{}, err
	}
	return hillshade.Support(m), nil
}

// GetDefaultHillshadeParams returns the renderer defaults
func (a *App) GetDefaultHillshadeParams() hillshade.Params {
	return hillshade.DefaultParams()
}

// BuildHillshadePaint returns the paint properties for a method
func (a *App) BuildHillshadePaint(method string, params hillshade.Params) (hillshade.Paint, error) {
	m, err := hillshade.ParseMethod(method)
	if err != nil {
		return nil, err
	}
	return hillshade.BuildPaint(m, params), nil
}

// GetColorRamps returns the ramps matching selector ("all", "open", "distributable")
func (a *App) GetColorRamps(selector string) []ramps.ColorRamp {
	return ramps.Filter(ramps.Selector(selector))
}

// BuildColorReliefPaint returns the color relief paint for a ramp stretched
// over [minElev, maxElev]
func (a *App) BuildColorReliefPaint(name string, minElev, maxElev, opacity float64) (map[string]any, error) {
	r, ok := ramps.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown color ramp: %s", name)
	}
	return ramps.ColorReliefPaint(r, minElev, maxElev, opacity)
}

// GetDefaultSky returns the initial sky settings
func (a *App) GetDefaultSky() viz.SkyConfig {
	return viz.DefaultSky()
}

// BuildSkySpec returns the renderer sky object for a theme ("light" or "dark")
func (a *App) BuildSkySpec(sky viz.SkyConfig, theme string) map[string]any {
	return sky.Spec(theme)
}
