package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"terrain-desktop/internal/common"
	"terrain-desktop/internal/export"
	"terrain-desktop/internal/ratelimit"
	"terrain-desktop/internal/utils/naming"
)

// exportCmd runs the DTM export pipeline
var exportCmd = &cobra.Command{
	Use:   "export <source>",
	Short: "Export a float32 DTM GeoTIFF of an area",
	Long: `Export fetches the area from the tiling service, decodes elevation and
writes a single-band float32 GeoTIFF in EPSG:4326.

When the direct fetch fails the tiling service URL is printed and, unless
--no-browser is given, opened in the system browser instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		bbox, _ := cmd.Flags().GetString("bbox")
		b, err := common.ParseBounds(bbox)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = settings.DownloadPath
		}
		maxPixels, err := maxPixelsFlag(cmd, settings)
		if err != nil {
			return err
		}
		noBrowser, _ := cmd.Flags().GetBool("no-browser")
		areaName, _ := cmd.Flags().GetBool("area-name")

		opener := export.OpenerFunc(browser.OpenURL)
		if noBrowser {
			opener = func(string) error { return nil }
		}

		timeout := time.Duration(settings.ExportTimeoutSec) * time.Second
		exporter := export.NewExporter(opener, export.DirSaver{Dir: out}, timeout)
		exporter.SetLimiter(ratelimit.NewHandler(nil))

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout+5*time.Second)
		defer cancel()

		result, err := exporter.ExportDTM(ctx, export.Request{
			SourceKey:     args[0],
			Bounds:        b,
			MaxResolution: maxPixels,
			Credentials:   settings.Credentials,
			CustomSources: settings.CustomSources,
			Endpoint:      settings.TerrainEndpoint,
		})
		if err != nil {
			return err
		}

		if result.Status == export.StatusSaved && areaName {
			target := filepath.Join(out, naming.DTMAreaFilename(args[0], b))
			if err := os.Rename(result.Path, target); err != nil {
				return fmt.Errorf("failed to rename export: %w", err)
			}
			result.Path = target
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), result)
		}

		w := cmd.OutOrStdout()
		switch result.Status {
		case export.StatusSaved:
			fmt.Fprintf(w, "Saved %dx%d DTM to %s\n", result.Width, result.Height, result.Path)
			fmt.Fprintf(w, "Pixel size: %.10f x %.10f deg\n", result.Geotransform.PixelSizeX, result.Geotransform.PixelSizeY)
		case export.StatusRedirected:
			fmt.Fprintf(w, "Direct export failed (%s)\n", result.Error)
			fmt.Fprintf(w, "Download from: %s\n", result.URL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("bbox", "", "Area as west,south,east,north (required)")
	exportCmd.Flags().StringP("out", "o", "", "Output directory (default from settings)")
	exportCmd.Flags().Int("max", 0, "Longest output side in pixels (default from settings)")
	exportCmd.Flags().Bool("no-browser", false, "Do not open the fallback URL in a browser")
	exportCmd.Flags().Bool("area-name", false, "Name the file after the source and area instead of the time")
	exportCmd.MarkFlagRequired("bbox")
}
