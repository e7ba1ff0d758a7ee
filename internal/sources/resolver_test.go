package sources

import (
	"net/url"
	"strings"
	"testing"

	"terrain-desktop/internal/config"
	"terrain-desktop/internal/elevation"
)

var customSources = []config.CustomSource{
	{ID: "c-cog", Name: "Swiss COG", URL: "https://data.example.com/dem/swiss alti3d.tif?v=2&x=1", Type: config.SourceTypeCOG},
	{ID: "c-rgb", Name: "RGB tiles", URL: "https://tiles.example.com/rgb/{z}/{x}/{y}.png", Type: config.SourceTypeTerrainRGB},
	{ID: "c-terrarium", Name: "Terrarium tiles", URL: "https://tiles.example.com/t/{z}/{x}/{y}.png", Type: config.SourceTypeTerrarium},
	{ID: "c-stac", Name: "STAC", URL: "https://stac.example.com/item.json", Type: config.SourceTypeSTAC},
	{ID: "c-vrt", Name: "VRT", URL: "https://data.example.com/mosaic.vrt", Type: config.SourceTypeVRT},
}

func TestResolveBuiltinCredentials(t *testing.T) {
	creds := config.Credentials{"mapbox": "pk.abc", "maptiler": "mt-key", "linz": "linz-key"}

	tests := []struct {
		key      string
		contains string
		encoding elevation.Encoding
	}{
		{"mapbox", "access_token=pk.abc", elevation.TerrainRGB},
		{"maptiler", "key=mt-key", elevation.TerrainRGB},
		{"linz", "api=linz-key&pipeline=terrain-rgb", elevation.TerrainRGB},
		{"aws-terrarium", "elevation-tiles-prod/terrarium/{z}/{x}/{y}.png", elevation.Terrarium},
		{"mapterhorn", "tiles.mapterhorn.com/{z}/{x}/{y}.webp", elevation.Terrarium},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg, ok := Resolve(tt.key, creds, nil, "https://titiler.example.com")
			if !ok {
				t.Fatalf("Resolve(%q) not found", tt.key)
			}
			if !strings.Contains(cfg.TileURL, tt.contains) {
				t.Errorf("TileURL = %q, want it to contain %q", cfg.TileURL, tt.contains)
			}
			if strings.Contains(cfg.TileURL, APIKeyPlaceholder) {
				t.Errorf("TileURL still has placeholder: %q", cfg.TileURL)
			}
			if cfg.Encoding != tt.encoding {
				t.Errorf("Encoding = %q, want %q", cfg.Encoding, tt.encoding)
			}
		})
	}
}

func TestResolveMissingCredentialLeavesEmptyKey(t *testing.T) {
	cfg, ok := Resolve("mapbox", nil, nil, "")
	if !ok {
		t.Fatal("mapbox not found")
	}
	if !strings.HasSuffix(cfg.TileURL, "access_token=") {
		t.Errorf("TileURL = %q", cfg.TileURL)
	}
}

func TestResolveCustomCOG(t *testing.T) {
	cfg, ok := Resolve("c-cog", nil, customSources, "https://titiler.example.com/")
	if !ok {
		t.Fatal("c-cog not found")
	}
	if cfg.Encoding != elevation.Terrarium {
		t.Errorf("Encoding = %q, want terrarium", cfg.Encoding)
	}
	if !strings.HasPrefix(cfg.TileURL, "https://titiler.example.com/cog/tiles/WebMercatorQuad/{z}/{x}/{y}.png?") {
		t.Errorf("TileURL = %q", cfg.TileURL)
	}
	if !strings.Contains(cfg.TileURL, "algorithm=terrarium") {
		t.Errorf("TileURL missing algorithm: %q", cfg.TileURL)
	}
	if !strings.Contains(cfg.TileURL, "url="+url.QueryEscape(customSources[0].URL)) {
		t.Errorf("TileURL missing encoded source url: %q", cfg.TileURL)
	}
}

func TestResolveCustomTypes(t *testing.T) {
	tests := []struct {
		id       string
		encoding elevation.Encoding
	}{
		{"c-rgb", elevation.TerrainRGB},
		{"c-terrarium", elevation.Terrarium},
		{"c-stac", elevation.Terrarium},
		{"c-vrt", elevation.Terrarium},
	}
	for _, tt := range tests {
		cfg, ok := Resolve(tt.id, nil, customSources, "")
		if !ok {
			t.Fatalf("%s not found", tt.id)
		}
		if cfg.Encoding != tt.encoding {
			t.Errorf("%s: Encoding = %q, want %q", tt.id, cfg.Encoding, tt.encoding)
		}
	}
}

func TestResolveNotFound(t *testing.T) {
	for _, key := range []string{"", "nope", "C-COG", "mapbox "} {
		cfg, ok := Resolve(key, nil, customSources, "https://titiler.example.com")
		if ok {
			t.Errorf("Resolve(%q) = %+v, want not found", key, cfg)
		}
		if cfg != (Config{}) {
			t.Errorf("Resolve(%q) returned non-zero config %+v", key, cfg)
		}
	}
}

func TestResolveDoesNotMutateInputs(t *testing.T) {
	creds := config.Credentials{"mapbox": "pk.abc"}
	custom := []config.CustomSource{{ID: "x", Name: "x", URL: "https://a/b.tif", Type: config.SourceTypeCOG}}

	Resolve("mapbox", creds, custom, "https://e")
	Resolve("x", creds, custom, "https://e")

	if len(creds) != 1 || creds["mapbox"] != "pk.abc" {
		t.Errorf("credentials mutated: %v", creds)
	}
	if custom[0].URL != "https://a/b.tif" || custom[0].Type != config.SourceTypeCOG {
		t.Errorf("custom source mutated: %+v", custom[0])
	}
}

func TestCatalogIsCopy(t *testing.T) {
	c := Catalog()
	c[0].TileURL = "changed"
	if d, _ := Lookup(c[0].Key); d.TileURL == "changed" {
		t.Error("Catalog() exposed internal slice")
	}
	keyed := 0
	for _, d := range Catalog() {
		if d.RequiresKey() {
			keyed++
			if !strings.Contains(d.TileURL, APIKeyPlaceholder) {
				t.Errorf("%s requires key but has no placeholder", d.Key)
			}
		}
	}
	if keyed != 3 {
		t.Errorf("keyed providers = %d, want 3", keyed)
	}
}
