// Command triangulate keeps a cellular companion device supplied with nearby
// Wi-Fi access points so it can ask the cloud for a position fix.
package main

import (
	"context"
	"os"

	"github.com/banshee-data/triangulate/internal/triangulation"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps coordinator failures to their numeric code so scripts can
// tell them apart. Anything else exits 1.
func exitCode(err error) int {
	code := triangulation.CodeOf(err)
	if code == triangulation.CodeOK || code == triangulation.CodeUnknown {
		return 1
	}
	return int(code)
}
