package main

import (
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"terrain-desktop/internal/common"
	"terrain-desktop/internal/config"
	"terrain-desktop/internal/viewstate"
	"terrain-desktop/internal/viewsync"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	settings := config.DefaultSettings()
	settings.DownloadPath = filepath.Join(dir, "downloads")
	a := newApp(settings, filepath.Join(dir, "settings.json"), "", nil)
	a.saveCamera = func(f func()) { f() }
	return a
}

func TestCustomSourceLifecycle(t *testing.T) {
	a := newTestApp(t)

	added, err := a.AddCustomSource(config.CustomSource{
		Name: "Swiss DEM",
		URL:  "https://example.com/swiss.tif",
		Type: config.SourceTypeCOG,
	})
	if err != nil {
		t.Fatalf("AddCustomSource: %v", err)
	}
	if added.ID == "" {
		t.Fatal("no ID assigned")
	}

	cfg, err := a.ResolveSource(added.ID)
	if err != nil {
		t.Fatalf("ResolveSource: %v", err)
	}
	if !strings.Contains(cfg.TileURL, url.QueryEscape("https://example.com/swiss.tif")) {
		t.Errorf("TileURL = %s", cfg.TileURL)
	}

	updated := added
	updated.Name = "Swiss DEM 2m"
	if err := a.UpdateCustomSource(added.ID, updated); err != nil {
		t.Fatalf("UpdateCustomSource: %v", err)
	}
	if got := a.GetCustomSources()[0].Name; got != "Swiss DEM 2m" {
		t.Errorf("name after update = %q", got)
	}

	reloaded, err := config.LoadSettingsFrom(a.GetSettingsPath())
	if err != nil {
		t.Fatal(err)
	}
	if len(reloaded.CustomSources) != 1 || reloaded.CustomSources[0].ID != added.ID {
		t.Errorf("persisted sources = %+v", reloaded.CustomSources)
	}

	if err := a.RemoveCustomSource(added.ID); err != nil {
		t.Fatalf("RemoveCustomSource: %v", err)
	}
	if err := a.RemoveCustomSource(added.ID); err == nil {
		t.Error("second remove should fail")
	}
}

func TestAddCustomSourceRejectsInvalidType(t *testing.T) {
	a := newTestApp(t)
	_, err := a.AddCustomSource(config.CustomSource{Name: "x", URL: "u", Type: "wmts"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(a.GetCustomSources()) != 0 {
		t.Error("invalid source was stored")
	}
}

func TestReplaceCustomSourcesJSON(t *testing.T) {
	a := newTestApp(t)
	if _, err := a.AddCustomSource(config.CustomSource{Name: "keep", URL: "u", Type: config.SourceTypeTerrarium}); err != nil {
		t.Fatal(err)
	}

	bad := []string{
		`not json`,
		`[{"id":"a","name":"n","url":"u","type":"bogus"}]`,
		`[{"id":"a","name":"n","url":"u","type":"cog"},{"id":"a","name":"m","url":"v","type":"cog"}]`,
	}
	for _, in := range bad {
		if err := a.ReplaceCustomSourcesJSON(in); err == nil {
			t.Errorf("ReplaceCustomSourcesJSON(%q) accepted", in)
		}
		if n := len(a.GetCustomSources()); n != 1 || a.GetCustomSources()[0].Name != "keep" {
			t.Fatalf("collection changed after invalid input: %+v", a.GetCustomSources())
		}
	}

	good := `[{"id":"dem-1","name":"One","url":"https://a/1.tif","type":"cog"},
	          {"id":"dem-2","name":"Two","url":"https://b/{z}/{x}/{y}.png","type":"terrainrgb"}]`
	if err := a.ReplaceCustomSourcesJSON(good); err != nil {
		t.Fatalf("ReplaceCustomSourcesJSON: %v", err)
	}
	out, err := a.GetCustomSourcesJSON()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"dem-2"`) || strings.Contains(out, `"keep"`) {
		t.Errorf("GetCustomSourcesJSON = %s", out)
	}
}

func TestSetCredentialAffectsResolve(t *testing.T) {
	a := newTestApp(t)

	if err := a.SetCredential("aws", "x"); err == nil {
		t.Error("unkeyed provider accepted a credential")
	}
	if err := a.SetCredential("maptiler", " secret "); err != nil {
		t.Fatal(err)
	}

	cfg, err := a.ResolveSource("maptiler")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(cfg.TileURL, "key=secret") {
		t.Errorf("TileURL = %s", cfg.TileURL)
	}

	info := a.GetSources()
	for _, s := range info {
		if s.Key == "maptiler" && (!s.NeedsKey || !s.HasKey) {
			t.Errorf("maptiler info = %+v", s)
		}
	}
}

func TestSetTerrainEndpoint(t *testing.T) {
	a := newTestApp(t)
	if err := a.SetTerrainEndpoint("ftp://nope"); err == nil {
		t.Error("non-http endpoint accepted")
	}
	if err := a.SetTerrainEndpoint("https://tiles.example.com/ "); err != nil {
		t.Fatal(err)
	}
	s, _ := a.GetSettings()
	if s.TerrainEndpoint != "https://tiles.example.com" {
		t.Errorf("endpoint = %q", s.TerrainEndpoint)
	}
}

func TestExportDTMRejectsConcurrentExport(t *testing.T) {
	a := newTestApp(t)
	b := common.Bounds{West: 7, South: 45.9, East: 7.1, North: 46}

	if !a.exportSem.TryAcquire(1) {
		t.Fatal("semaphore unexpectedly busy")
	}
	_, err := a.ExportDTM("mapterhorn", b)
	a.exportSem.Release(1)
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Errorf("err = %v, want busy error", err)
	}

	if _, err := a.ExportDTM("mapterhorn", common.Bounds{}); err == nil {
		t.Error("empty bounds accepted")
	}
}

func TestTranslateCommandUsesMaxResolution(t *testing.T) {
	a := newTestApp(t)
	cmd, err := a.GetTranslateCommand("mapterhorn", common.Bounds{West: 7, South: 45.9, East: 7.2, North: 46})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(cmd, "gdal_translate -outsize 4096 0 ") {
		t.Errorf("command = %s", cmd)
	}
	if _, err := a.GetTranslateCommand("nope", common.Bounds{}); err == nil {
		t.Error("unknown source accepted")
	}
}

func TestMoveEndCommitsViewState(t *testing.T) {
	a := newTestApp(t)

	a.OnMoveEnd(viewsync.Camera{Lon: 10.5, Lat: 47.25, Zoom: 9, Bearing: 0, Pitch: 60})

	q, err := url.ParseQuery(a.GetViewState())
	if err != nil {
		t.Fatal(err)
	}
	if q.Get(viewstate.KeyLon) != "10.5" || q.Get(viewstate.KeyZoom) != "9" {
		t.Errorf("view state = %v", q)
	}
	if q.Has(viewstate.KeyPitch) {
		t.Error("default pitch should be omitted")
	}

	s, _ := a.GetSettings()
	if s.LastCamera.Lat != 47.25 {
		t.Errorf("LastCamera = %+v", s.LastCamera)
	}
}

func TestSetViewState(t *testing.T) {
	a := newTestApp(t)
	if err := a.SetViewState("?split=true&src2=aws-terrarium&extra=1"); err != nil {
		t.Fatal(err)
	}
	if !a.viewSync.DualView() {
		t.Error("dual view not enabled from view state")
	}
	values := a.GetViewStateValues()
	if values[viewstate.KeySource2] != "aws-terrarium" || values["extra"] != "1" {
		t.Errorf("values = %v", values)
	}
	if values[viewstate.KeyRamp] != "hypsometric" {
		t.Errorf("default missing: %v", values[viewstate.KeyRamp])
	}

	before := a.GetViewState()
	if err := a.SetViewState("a=%zz"); err == nil {
		t.Error("malformed query accepted")
	}
	if a.GetViewState() != before {
		t.Error("view changed after invalid query")
	}
}

func TestStylingBindings(t *testing.T) {
	a := newTestApp(t)

	if got := a.GetHillshadeMethods(); len(got) != 7 || got[0] != "standard" {
		t.Errorf("methods = %v", got)
	}
	if _, err := a.BuildHillshadePaint("nope", a.GetDefaultHillshadeParams()); err == nil {
		t.Error("unknown method accepted")
	}
	flags, err := a.GetHillshadeSupport("igor")
	if err != nil || flags.Altitude {
		t.Errorf("igor flags = %+v, %v", flags, err)
	}
	if _, err := a.BuildColorReliefPaint("missing", 0, 1000, 1); err == nil {
		t.Error("unknown ramp accepted")
	}
}
