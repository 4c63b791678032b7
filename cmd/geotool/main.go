package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "geotool",
	Short: "Google Maps geocoding tools for the Emergency Resource Finder agent",
	Long: `
geotool exposes forward and reverse geocoding as agent tools. It can run a
single lookup, list or serve the tools over HTTP, and host the Emergency
Resource Finder agent that uses them.

The Google Maps key is read from GOOGLE_MAPS_API_KEY on every call, or from
the API key resource named by GOOGLE_MAPS_API_KEY_RESOURCE.
`,
	SilenceUsage: true,
}

func main() {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
