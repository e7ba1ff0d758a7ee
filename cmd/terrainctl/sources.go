package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"terrain-desktop/internal/sources"
)

// sourcesCmd lists built-in and custom sources
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List terrain sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		builtin := sources.Catalog()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"builtin": builtin,
				"custom":  settings.CustomSources,
			})
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tNAME\tENCODING\tKEY REQUIRED")
		for _, d := range builtin {
			required := "-"
			if d.RequiresKey() {
				required = "yes"
				if settings.Credentials[d.Provider] != "" {
					required = "yes (set)"
				}
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Key, d.Name, d.Encoding, required)
		}
		for _, s := range settings.CustomSources {
			fmt.Fprintf(tw, "%s\t%s\t%s\t-\n", s.ID, s.Name, s.Type)
		}
		return tw.Flush()
	},
}

// resolveCmd prints the tile access of a source
var resolveCmd = &cobra.Command{
	Use:   "resolve <source>",
	Short: "Print the tile template of a source",
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

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), cfg)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Encoding: %s\nTile size: %d\nTile URL: %s\n", cfg.Encoding, cfg.TileSize, cfg.TileURL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(resolveCmd)
}
