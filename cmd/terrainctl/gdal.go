package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"terrain-desktop/internal/common"
	"terrain-desktop/internal/gdal"
)

// vrtCmd prints the GDAL_WMS descriptor of a source
var vrtCmd = &cobra.Command{
	Use:   "vrt <source>",
	Short: "Print the GDAL virtual raster descriptor of a source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		cfg, err := resolveArg(settings, args[0])
		if err != nil {
			return err
		}

		level, _ := cmd.Flags().GetInt("level")
		xml := gdal.VirtualRaster{TileURL: cfg.TileURL, TileSize: cfg.TileSize, TileLevel: level}.XML()
		fmt.Fprintln(cmd.OutOrStdout(), xml)
		return nil
	},
}

// translateCmd prints a gdal_translate call for an area
var translateCmd = &cobra.Command{
	Use:   "translate <source>",
	Short: "Print a gdal_translate command cutting an area out of a source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		cfg, err := resolveArg(settings, args[0])
		if err != nil {
			return err
		}

		bbox, _ := cmd.Flags().GetString("bbox")
		b, err := common.ParseBounds(bbox)
		if err != nil {
			return err
		}

		maxPixels, err := maxPixelsFlag(cmd, settings)
		if err != nil {
			return err
		}

		descriptor := gdal.BuildVirtualRasterXML(cfg.TileURL, cfg.TileSize)
		fmt.Fprintln(cmd.OutOrStdout(), gdal.BuildTranslateCommand(descriptor, b, maxPixels))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vrtCmd)
	rootCmd.AddCommand(translateCmd)

	vrtCmd.Flags().Int("level", gdal.DefaultTileLevel, "Tile level GDAL reads")

	translateCmd.Flags().String("bbox", "", "Area as west,south,east,north (required)")
	translateCmd.Flags().Int("max", 0, "Longest output side in pixels (default from settings)")
	translateCmd.MarkFlagRequired("bbox")
}
