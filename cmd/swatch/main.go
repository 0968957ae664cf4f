// Swatch extracts garment attributes from photos: dominant and centre
// average colours, their names, and the surface pattern predicted by a
// pre-trained classifier. It runs as a CLI or an HTTP service.
package main

import (
	"os"

	"github.com/jmylchreest/swatch/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
