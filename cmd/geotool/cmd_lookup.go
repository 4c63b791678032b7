package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/resource-finder-geocode/internal/domain"
	"github.com/couchcryptid/resource-finder-geocode/internal/selftest"
	"github.com/spf13/cobra"
)

var lookupAPIKey string

var forwardCmd = &cobra.Command{
	Use:     "forward ADDRESS...",
	Short:   "Geocode a street address to latitude/longitude",
	Example: `  geotool forward 1600 Amphitheatre Pkwy, Mountain View, CA`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		result := a.geocoder.Forward(cmd.Context(), strings.Join(args, " "), lookupAPIKey)
		return printResult(result)
	},
}

var reverseCmd = &cobra.Command{
	Use:     "reverse LAT LON",
	Short:   "Reverse geocode coordinates to a street address",
	Example: `  geotool reverse 37.4224764 -122.0842499`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q: %w", args[0], err)
		}
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q: %w", args[1], err)
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		result := a.geocoder.Reverse(cmd.Context(), lat, lon, lookupAPIKey)
		return printResult(result)
	},
}

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Geocode a known address and reverse geocode the result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		_, err = selftest.Run(cmd.Context(), a.tools, os.Stdout)
		return err
	},
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered geocoding tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		for _, t := range a.tools {
			fmt.Printf("%s\t[%s]\t%s\n", t.Name(), t.Convention(), t.Description())
		}
		return nil
	},
}

// printResult writes result as indented JSON. A failed lookup is printed and
// then reported as the command's error.
func printResult(result domain.GeocodeResult) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("lookup failed: %s", result.Error)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{forwardCmd, reverseCmd} {
		c.Flags().StringVar(&lookupAPIKey, "api-key", "", "Google Maps API key (overrides GOOGLE_MAPS_API_KEY)")
	}
	rootCmd.AddCommand(forwardCmd, reverseCmd, selftestCmd, toolsCmd)
}
