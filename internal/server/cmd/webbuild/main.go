package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
)

// Bundles web/src/main.ts into the embedded web/client.js. Run from the
// internal/server directory via go:generate; pass -minify for a release
// bundle.
func main() {
	minify := flag.Bool("minify", false, "minify the bundle")
	flag.Parse()

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("getwd: %v", err)
	}

	result := api.Build(api.BuildOptions{
		EntryPoints:       []string{filepath.Join(wd, "web", "src", "main.ts")},
		Outfile:           filepath.Join(wd, "web", "client.js"),
		AbsWorkingDir:     wd,
		Bundle:            true,
		Format:            api.FormatIIFE,
		Target:            api.ES2018,
		Platform:          api.PlatformBrowser,
		LogLevel:          api.LogLevelInfo,
		Write:             true,
		MinifyWhitespace:  *minify,
		MinifyIdentifiers: *minify,
		MinifySyntax:      *minify,
		Loader: map[string]api.Loader{
			".ts": api.LoaderTS,
		},
	})
	if len(result.Errors) > 0 {
		for _, message := range result.Errors {
			log.Printf("esbuild error: %s", message.Text)
		}
		log.Fatalf("esbuild failed with %d error(s)", len(result.Errors))
	}
}
