// Command hazardmap serves the hazard map overlay: layer toggles, filters and
// weather point queries over HTTP, with the drawn map exposed as GeoJSON.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
