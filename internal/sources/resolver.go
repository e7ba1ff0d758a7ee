package sources

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"

	"terrain-desktop/internal/common"
	"terrain-desktop/internal/config"
	"terrain-desktop/internal/elevation"
)

// COGTileMatrixSet is the tiling scheme requested from the tiling service
const COGTileMatrixSet = "WebMercatorQuad"

// Config is the concrete tile access for a resolved source
type Config struct {
	Encoding elevation.Encoding `json:"encoding"`
	TileURL  string             `json:"tileUrl"`
	TileSize int                `json:"tileSize"`
}

// Resolve maps a source key to its tile access. Built-in sources win over custom
// sources with the same id. The second return value is false when the key is unknown.
// Inputs are never modified.
func Resolve(key string, creds config.Credentials, custom []config.CustomSource, endpoint string) (Config, bool) {
	if d, ok := Lookup(key); ok {
		return Config{
			Encoding: d.Encoding,
			TileURL:  applyCredential(d, creds),
			TileSize: d.TileSize,
		}, true
	}

	src, ok := lo.Find(custom, func(s config.CustomSource) bool {
		return s.ID == key
	})
	if !ok {
		return Config{}, false
	}

	switch src.Type {
	case config.SourceTypeCOG:
		return Config{
			Encoding: elevation.Terrarium,
			TileURL:  COGTileURL(endpoint, src.URL),
			TileSize: 256,
		}, true
	case config.SourceTypeTerrainRGB:
		return Config{Encoding: elevation.TerrainRGB, TileURL: src.URL, TileSize: 256}, true
	default:
		return Config{Encoding: elevation.Terrarium, TileURL: src.URL, TileSize: 256}, true
	}
}

// COGTileURL builds the tiling-service template that renders a COG as terrarium tiles
func COGTileURL(endpoint, sourceURL string) string {
	return fmt.Sprintf("%s/cog/tiles/%s/{z}/{x}/{y}.png?url=%s&algorithm=terrarium",
		strings.TrimRight(endpoint, "/"), COGTileMatrixSet, url.QueryEscape(sourceURL))
}

func applyCredential(d Descriptor, creds config.Credentials) string {
	switch d.Provider {
	case common.ProviderMapbox, common.ProviderMapTiler, common.ProviderLINZ:
		return strings.ReplaceAll(d.TileURL, APIKeyPlaceholder, creds[d.Provider])
	default:
		return d.TileURL
	}
}
