package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fundops/dealfill/internal/model"
	"github.com/fundops/dealfill/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outputPath   string
	asJSON       bool
	timeout      time.Duration
	userAgent    string
	maxBytes     int64
	noCache      bool
	noGeocode    bool
	noScrape     bool
	suggestWith  string
	suggestModel string
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <memo>",
	Short: "Parse a single memo and propose deal-entry values",
	Long: `Parse reads one investment memo (a file path, or "-" for stdin) to:
- Extract deal terms against the investment-details vocabulary
- Propose a founder roster and a headquarters address
- Normalize the address and check URL reachability
- Score auto-fill confidence with transparent signals

Example:
  dealfill parse memo.txt
  cat memo.txt | dealfill parse -
  dealfill parse memo.txt --json --output report.json
  dealfill parse memo.txt --suggest openai --suggest-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	// Output flags
	parseCmd.Flags().BoolVar(&asJSON, "json", false, "render the report as JSON")
	parseCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the report to a file instead of stdout")

	// HTTP flags
	parseCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall parse timeout (increase for memos with many links)")
	parseCmd.Flags().StringVar(&userAgent, "ua", "Dealfill/0.1 (+https://github.com/fundops/dealfill)", "HTTP User-Agent")
	parseCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read")

	// Enrichment flags
	parseCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh lookups)")
	parseCmd.Flags().BoolVar(&noGeocode, "no-geocode", false, "skip geocoding even when DEALFILL_MAPBOX_TOKEN is set")
	parseCmd.Flags().BoolVar(&noScrape, "no-scrape", false, "skip company homepage scraping")

	// Suggestion flags
	parseCmd.Flags().StringVar(&suggestWith, "suggest", "", "enable tagline/keyword suggestions (openai, anthropic, ollama)")
	parseCmd.Flags().StringVar(&suggestModel, "suggest-model", "", "suggestion model name (provider default when empty)")
}

func runParse(cmd *cobra.Command, args []string) error {
	memo := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Parsing: %s\n", memo)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", !noCache)
		fmt.Fprintln(os.Stderr)
	}

	// Build configuration from flags
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = timeout
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.Cache.Enabled = !noCache
	cfg.Scrape.Enabled = !noScrape
	cfg.Output.Verbose = verbose

	if !noGeocode {
		cfg.Geocode.Token = os.Getenv("DEALFILL_MAPBOX_TOKEN")
	}

	// Configure suggestions if enabled
	if suggestWith != "" {
		if err := resolveSuggestEnv(&cfg, suggestWith, suggestModel); err != nil {
			return err
		}
	}

	// Create pipeline
	p := pipeline.NewPipeline(cfg, newLogger())

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Parsing memo...\n")
	}

	var report *model.Report
	var err error
	if memo == "-" {
		data, readErr := io.ReadAll(os.Stdin)
		if readErr != nil {
			return fmt.Errorf("read stdin: %w", readErr)
		}
		report, err = p.ParseText(ctx, "stdin", string(data))
	} else {
		report, err = p.ParseFile(ctx, memo)
	}
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d fields\n", len(report.Combined.Data))
		fmt.Fprintf(os.Stderr, "✓ Proposed %d founders\n", len(report.Founders.Founders))
		fmt.Fprintf(os.Stderr, "✓ Checked %d URLs\n", len(report.URLChecks))
		fmt.Fprintf(os.Stderr, "✓ Calculated fill score: %d/100\n", report.Score.Index)
		if report.Suggestions != nil {
			fmt.Fprintf(os.Stderr, "✓ Generated suggestions using %s/%s\n", report.Suggestions.Provider, report.Suggestions.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	// Render output
	format := cfg.Output.Format
	if asJSON {
		format = "json"
	}

	renderer := pipeline.NewRenderer()
	if outputPath != "" {
		if err := renderer.WriteFile(report, format, outputPath); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Report written: %s\n", outputPath)
		}
		return nil
	}

	out, err := renderer.Render(report, format)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}

// resolveSuggestEnv wires the suggestion provider from flags and the
// provider's environment variables. Shared with the batch command.
func resolveSuggestEnv(cfg *model.Config, provider, modelName string) error {
	cfg.Suggest.Provider = provider
	if modelName != "" {
		cfg.Suggest.Model = modelName
	} else if provider != "openai" {
		cfg.Suggest.Model = "" // let the provider pick its default
	}

	// Get API key from environment
	switch provider {
	case "openai":
		cfg.Suggest.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Suggest.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.Suggest.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.Suggest.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		if cfg.Suggest.Model == "" {
			return fmt.Errorf("ollama requires --suggest-model (e.g. llama3.1:8b)")
		}
		// Ollama doesn't need an API key
		baseURL := os.Getenv("OLLAMA_BASE_URL")
		if baseURL != "" {
			cfg.Suggest.BaseURL = baseURL
		}
	default:
		return fmt.Errorf("unknown suggestion provider: %s (supported: openai, anthropic, ollama)", provider)
	}

	return nil
}
