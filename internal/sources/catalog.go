// Package sources turns built-in and user-defined terrain source keys into
// concrete tile access descriptors.
package sources

import (
	"github.com/samber/lo"

	"terrain-desktop/internal/common"
	"terrain-desktop/internal/elevation"
)

// APIKeyPlaceholder is replaced with the provider credential in keyed templates
const APIKeyPlaceholder = "{API_KEY}"

// Descriptor is an immutable built-in terrain source
type Descriptor struct {
	Key         string             `json:"key"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Link        string             `json:"link"`
	Provider    string             `json:"provider"`
	Encoding    elevation.Encoding `json:"encoding"`
	TileURL     string             `json:"tileUrl"`
	TileSize    int                `json:"tileSize"`
	MaxZoom     int                `json:"maxZoom"`
}

var catalog = []Descriptor{
	{
		Key:         "mapterhorn",
		Name:        "Mapterhorn",
		Description: "Open global terrain assembled from public DEMs, high resolution in the Alps",
		Link:        "https://mapterhorn.com",
		Provider:    common.ProviderMapterhorn,
		Encoding:    elevation.Terrarium,
		TileURL:     "https://tiles.mapterhorn.com/{z}/{x}/{y}.webp",
		TileSize:    512,
		MaxZoom:     17,
	},
	{
		Key:         "aws-terrarium",
		Name:        "AWS Terrain Tiles",
		Description: "Mapzen terrain tiles hosted on the AWS open data registry",
		Link:        "https://registry.opendata.aws/terrain-tiles/",
		Provider:    common.ProviderAWS,
		Encoding:    elevation.Terrarium,
		TileURL:     "https://s3.amazonaws.com/elevation-tiles-prod/terrarium/{z}/{x}/{y}.png",
		TileSize:    256,
		MaxZoom:     15,
	},
	{
		Key:         "mapbox",
		Name:        "Mapbox Terrain-RGB",
		Description: "Mapbox global terrain, requires an access token",
		Link:        "https://docs.mapbox.com/data/tilesets/reference/mapbox-terrain-rgb-v1/",
		Provider:    common.ProviderMapbox,
		Encoding:    elevation.TerrainRGB,
		TileURL:     "https://api.mapbox.com/v4/mapbox.terrain-rgb/{z}/{x}/{y}.pngraw?access_token=" + APIKeyPlaceholder,
		TileSize:    256,
		MaxZoom:     15,
	},
	{
		Key:         "maptiler",
		Name:        "MapTiler Terrain",
		Description: "MapTiler terrain-rgb v2, requires an API key",
		Link:        "https://docs.maptiler.com/guides/map-tiling-hosting/data-hosting/rgb-terrain-by-maptiler/",
		Provider:    common.ProviderMapTiler,
		Encoding:    elevation.TerrainRGB,
		TileURL:     "https://api.maptiler.com/tiles/terrain-rgb-v2/{z}/{x}/{y}.webp?key=" + APIKeyPlaceholder,
		TileSize:    512,
		MaxZoom:     14,
	},
	{
		Key:         "linz",
		Name:        "LINZ Elevation",
		Description: "New Zealand 1m DEM from LINZ basemaps, requires an API key",
		Link:        "https://basemaps.linz.govt.nz",
		Provider:    common.ProviderLINZ,
		Encoding:    elevation.TerrainRGB,
		TileURL:     "https://basemaps.linz.govt.nz/v1/tiles/elevation/WebMercatorQuad/{z}/{x}/{y}.png?api=" + APIKeyPlaceholder + "&pipeline=terrain-rgb",
		TileSize:    256,
		MaxZoom:     18,
	},
}

// Catalog returns a copy of the built-in sources in display order
func Catalog() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a built-in source by key
func Lookup(key string) (Descriptor, bool) {
	return lo.Find(catalog, func(d Descriptor) bool {
		return d.Key == key
	})
}

// RequiresKey reports whether the descriptor's template needs a credential
func (d Descriptor) RequiresKey() bool {
	return lo.Contains(common.KeyedProviders, d.Provider)
}
