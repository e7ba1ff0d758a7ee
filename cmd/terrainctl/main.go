// Command terrainctl runs the terrain source, GDAL and export tooling of the
// desktop app headless.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
