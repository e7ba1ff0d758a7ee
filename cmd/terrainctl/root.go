package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"terrain-desktop/internal/config"
	"terrain-desktop/internal/sources"
)

var rootCmd = &cobra.Command{
	Use:   "terrainctl",
	Short: "Terrain source and DTM export tooling",
	Long: `terrainctl resolves terrain sources, builds GDAL descriptors and exports
DTM GeoTIFFs using the same settings file as Terrain Desktop.

Examples:
  terrainctl sources
  terrainctl vrt mapterhorn > mapterhorn.xml
  terrainctl translate mapterhorn --bbox 7.6,45.9,7.7,46.0
  terrainctl export mapterhorn --bbox 7.6,45.9,7.7,46.0 --out ./dtm`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("settings", "", "Settings file (default: the desktop app settings)")
	rootCmd.PersistentFlags().String("endpoint", "", "Tiling service endpoint (overrides settings)")
	rootCmd.PersistentFlags().Bool("json", false, "Print JSON output")
}

// loadSettings reads the settings file named by --settings and applies overrides
func loadSettings(cmd *cobra.Command) (*config.UserSettings, error) {
	path, _ := cmd.Flags().GetString("settings")
	if path == "" {
		path = config.GetSettingsPath()
	}

	settings, err := config.LoadSettingsFrom(path)
	if err != nil {
		return nil, err
	}

	if endpoint, _ := cmd.Flags().GetString("endpoint"); endpoint != "" {
		settings.TerrainEndpoint = endpoint
	}
	return settings, nil
}

// resolveArg resolves the source key given as the first argument
func resolveArg(settings *config.UserSettings, key string) (sources.Config, error) {
	cfg, ok := sources.Resolve(key, settings.Credentials, settings.CustomSources, settings.TerrainEndpoint)
	if !ok {
		return sources.Config{}, fmt.Errorf("unknown source: %s", key)
	}
	return cfg, nil
}

// maxPixelsFlag returns --max when given, else the settings export resolution
func maxPixelsFlag(cmd *cobra.Command, settings *config.UserSettings) (int, error) {
	maxPixels := settings.MaxExportResolution
	if cmd.Flags().Changed("max") {
		maxPixels, _ = cmd.Flags().GetInt("max")
	}
	if maxPixels <= 0 {
		return 0, fmt.Errorf("--max must be positive, got %d", maxPixels)
	}
	return maxPixels, nil
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
