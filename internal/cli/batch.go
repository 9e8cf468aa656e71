package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fundops/dealfill/internal/model"
	"github.com/fundops/dealfill/internal/pipeline"
	"github.com/fundops/dealfill/internal/worker"
	"github.com/spf13/cobra"
)

var (
	workers      int
	outputDir    string
	batchTimeout time.Duration
	parseTimeout time.Duration
	batchJSON    bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <manifest>",
	Short: "Parse multiple memos from a manifest in parallel",
	Long: `Batch processes multiple memos concurrently:
- Read memo paths from a manifest file (one per line, # comments allowed)
- Parse memos in parallel with a configurable worker count
- Each parse runs its own concurrent enrichment
- Write a JSON and a text report per memo

Example:
  dealfill batch memos.txt
  dealfill batch memos.txt --workers 10 --output-dir ./reports
  dealfill batch memos.txt --suggest ollama --suggest-model llama3.1:8b`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./dealfill-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().DurationVar(&parseTimeout, "parse-timeout", 30*time.Second, "HTTP timeout for individual enrichment requests")

	// Output flags
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "write JSON reports only (skip the text rendering)")

	// Shared enrichment flags
	batchCmd.Flags().StringVar(&userAgent, "ua", "Dealfill/0.1 (+https://github.com/fundops/dealfill)", "HTTP User-Agent")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh lookups)")
	batchCmd.Flags().BoolVar(&noGeocode, "no-geocode", false, "skip geocoding even when DEALFILL_MAPBOX_TOKEN is set")
	batchCmd.Flags().BoolVar(&noScrape, "no-scrape", false, "skip company homepage scraping")

	// Suggestion flags
	batchCmd.Flags().StringVar(&suggestWith, "suggest", "", "enable tagline/keyword suggestions (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&suggestModel, "suggest-model", "", "suggestion model name (provider default when empty)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	manifest := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Dealfill Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Manifest:     %s\n", manifest)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	// Build configuration
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = parseTimeout
	cfg.HTTP.UserAgent = userAgent
	cfg.Cache.Enabled = !noCache
	cfg.Scrape.Enabled = !noScrape
	cfg.Workers = workers
	cfg.Output.Verbose = verbose

	if !noGeocode {
		cfg.Geocode.Token = os.Getenv("DEALFILL_MAPBOX_TOKEN")
	}

	// Configure suggestions if enabled
	if suggestWith != "" {
		if err := resolveSuggestEnv(&cfg, suggestWith, suggestModel); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "  Suggestions:  %s/%s\n", cfg.Suggest.Provider, cfg.Suggest.Model)
	}

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// Create pipeline
	p := pipeline.NewPipeline(cfg, newLogger())

	// Create batch processor
	processor := worker.NewBatchProcessor(p, workers)

	// Process memos
	fmt.Fprintf(os.Stderr, "⚙️  Reading memo paths from manifest...\n")
	results, err := processor.ProcessManifest(ctx, manifest)
	if err != nil {
		return fmt.Errorf("process manifest: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Loaded %d memos\n", len(results))
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "⚙️  Processing memos with %d workers...\n", workers)
	fmt.Fprintf(os.Stderr, "\n")

	renderer := pipeline.NewRenderer()

	// Process results
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		successCount++

		// Generate output file names
		slug := sanitizeFilename(result.Path)
		jsonPath := filepath.Join(outputDir, slug+".json")

		// Render report
		if err := renderer.WriteFile(result.Report, "json", jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Path, err)
			continue
		}
		if !batchJSON {
			textPath := filepath.Join(outputDir, slug+".txt")
			if err := renderer.WriteFile(result.Report, "text", textPath); err != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: failed to write text: %v\n", result.Path, err)
				continue
			}
		}

		fmt.Fprintf(os.Stderr, "✓ %s (fill score: %d/100)\n", result.Path, result.Report.Score.Index)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d memos\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// sanitizeFilename derives a safe report filename from a memo path.
func sanitizeFilename(path string) string {
	s := filepath.Base(path)
	s = strings.TrimSuffix(s, filepath.Ext(s))

	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(s)

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" || s == "." {
		s = "memo"
	}

	return s
}
