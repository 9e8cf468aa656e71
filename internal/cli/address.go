package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fundops/dealfill/internal/cache"
	"github.com/fundops/dealfill/internal/geocode"
	"github.com/fundops/dealfill/internal/model"
	"github.com/fundops/dealfill/internal/worker"
	"github.com/spf13/cobra"
)

var addressJSON bool

// addressCmd represents the address command
var addressCmd = &cobra.Command{
	Use:   "address <text>",
	Short: "Normalize an address string",
	Long: `Address runs one string through the normalization chain used for
memo headquarters blocks: geocoding when DEALFILL_MAPBOX_TOKEN is set,
structural parsing otherwise, raw passthrough as the last resort. The
winning method is reported alongside the result.

Example:
  dealfill address "1401 21st Street, Sacramento, CA 95811"
  DEALFILL_MAPBOX_TOKEN=pk.xxx dealfill address "651 Brannan St, San Francisco"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAddress,
}

func init() {
	rootCmd.AddCommand(addressCmd)

	addressCmd.Flags().BoolVar(&addressJSON, "json", false, "render the address as JSON")
}

func runAddress(cmd *cobra.Command, args []string) error {
	raw := strings.Join(args, " ")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := model.DefaultConfig()
	cfg.Geocode.Token = os.Getenv("DEALFILL_MAPBOX_TOKEN")
	cfg.Output.Verbose = verbose

	var store cache.Cache
	if cfg.Cache.Enabled {
		store = cache.New(cfg.Cache)
	}

	normalizer := geocode.NewDefault(cfg, store,
		worker.NewLimiter(cfg.Geocode.RatePerSec, 1), newLogger())

	addr := normalizer.Normalize(ctx, raw)
	if addr == nil {
		return fmt.Errorf("no address could be derived from %q", raw)
	}

	if addressJSON {
		data, err := json.MarshalIndent(addr, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Method:     %s\n", addr.Method)
	if addr.Line1 != "" {
		fmt.Printf("Line 1:     %s\n", addr.Line1)
	}
	if addr.Line2 != "" {
		fmt.Printf("Line 2:     %s\n", addr.Line2)
	}
	if addr.City != "" {
		fmt.Printf("City:       %s\n", addr.City)
	}
	if addr.State != "" {
		fmt.Printf("State:      %s\n", addr.State)
	}
	if addr.PostalCode != "" {
		fmt.Printf("Zip:        %s\n", addr.PostalCode)
	}
	if addr.Country != "" {
		fmt.Printf("Country:    %s\n", addr.Country)
	}
	if addr.Lat != 0 || addr.Lon != 0 {
		fmt.Printf("Coords:     %.6f, %.6f\n", addr.Lat, addr.Lon)
	}
	fmt.Printf("Relevance:  %.2f\n", addr.Relevance)
	if addr.NeedsReview {
		fmt.Println("Review:     needs manual review")
	}

	return nil
}
