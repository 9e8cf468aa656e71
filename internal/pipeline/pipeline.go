// Package pipeline composes the full memo parse: blob preparation,
// extraction, aggregation, concurrent enrichment and scoring. Enrichment
// stages are failure-soft: a dead geocoder or an unreachable homepage
// degrades the report, never fails it.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fundops/dealfill/internal/cache"
	"github.com/fundops/dealfill/internal/extract"
	"github.com/fundops/dealfill/internal/geocode"
	"github.com/fundops/dealfill/internal/model"
	"github.com/fundops/dealfill/internal/score"
	"github.com/fundops/dealfill/internal/scrape"
	"github.com/fundops/dealfill/internal/suggest"
	"github.com/fundops/dealfill/internal/validate"
	"github.com/fundops/dealfill/internal/worker"
)

// Pipeline orchestrates the complete parse of one memo.
type Pipeline struct {
	deal       *extract.DealExtractor
	founders   *extract.FounderExtractor
	normalizer *geocode.Normalizer
	checker    *validate.URLChecker
	scraper    *scrape.Scraper  // nil when scraping is disabled
	provider   suggest.Provider // nil when suggestions are disabled
	scorer     *score.Scorer
	config     model.Config
	logger     *zap.Logger
}

// NewPipeline creates a pipeline from cfg. A suggestion provider that
// fails to initialize disables suggestions with a warning instead of
// failing the whole pipeline.
func NewPipeline(cfg model.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	var store cache.Cache
	if cfg.Cache.Enabled {
		store = cache.New(cfg.Cache)
	}

	var scraper *scrape.Scraper
	if cfg.Scrape.Enabled {
		scraper = scrape.New(cfg, worker.NewLimiter(cfg.Scrape.RatePerSec, 1), logger)
	}

	provider, err := suggest.NewProvider(suggest.ConfigFromModel(cfg))
	if err != nil {
		logger.Warn("pipeline: suggestion provider init failed", zap.Error(err))
		provider = nil
	}

	return &Pipeline{
		deal:     extract.NewDealExtractor(logger),
		founders: extract.NewFounderExtractor(logger),
		normalizer: geocode.NewDefault(cfg, store,
			worker.NewLimiter(cfg.Geocode.RatePerSec, 1), logger),
		checker: validate.NewURLChecker(cfg.Validate.Timeout, cfg.Validate.MaxWorkers,
			cfg.HTTP.UserAgent, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
		scraper:  scraper,
		provider: provider,
		scorer:   score.NewScorer(),
		config:   cfg,
		logger:   logger,
	}
}

// ParseText parses one memo blob into a complete report. source labels
// the report only; it is never fetched.
func (p *Pipeline) ParseText(ctx context.Context, source, text string) (*model.Report, error) {
	blob := extract.PrepareBlob(text)
	if strings.TrimSpace(blob) == "" {
		return nil, fmt.Errorf("empty memo")
	}

	dealResult := p.deal.Extract(blob)
	founderParse, founderResult, err := p.founders.Extract(blob)
	if err != nil {
		return nil, fmt.Errorf("extract founders: %w", err)
	}

	report := &model.Report{
		RunID:       uuid.NewString(),
		Source:      source,
		GeneratedAt: time.Now().UTC(),
		Deal:        dealResult,
		FounderStep: founderResult,
		Founders:    founderParse,
		Combined:    extract.Aggregate(dealResult, founderResult),
	}

	p.enrich(ctx, report, blob)

	// Score last; suggestions never participate
	report.Score = p.scorer.Score(report)

	return report, nil
}

// ParseFile reads a memo file and parses it. Implements worker.Parser.
func (p *Pipeline) ParseFile(ctx context.Context, path string) (*model.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read memo: %w", err)
	}
	return p.ParseText(ctx, path, string(data))
}

// enrich fans the network stages out concurrently. Each stage writes a
// distinct report field and swallows its own failure: enrichment can
// only ever add to the report.
func (p *Pipeline) enrich(ctx context.Context, report *model.Report, blob string) {
	g, gctx := errgroup.WithContext(ctx)

	if hq := report.Founders.HQRaw; hq != "" {
		g.Go(func() error {
			report.Address = p.normalizer.Normalize(gctx, hq)
			return nil
		})
	}

	if targets := urlTargets(report); len(targets) > 0 {
		g.Go(func() error {
			report.URLChecks = p.checker.Check(gctx, targets)
			return nil
		})
	}

	companyURL := stringField(report.Combined.Data, model.FieldCompanyURL)
	if p.scraper != nil && companyURL != "" {
		g.Go(func() error {
			meta, err := p.scraper.FetchPage(gctx, companyURL)
			if err != nil {
				p.logger.Warn("pipeline: page scrape failed",
					zap.String("url", companyURL), zap.Error(err))
				return nil
			}
			report.PageMeta = meta
			return nil
		})
	}

	if p.provider != nil {
		g.Go(func() error {
			p.suggestCopy(gctx, report, blob)
			return nil
		})
	}

	_ = g.Wait()
}

// suggestCopy asks the configured provider for tagline/keyword copy and
// attaches it to the report. Failures are logged and dropped.
func (p *Pipeline) suggestCopy(ctx context.Context, report *model.Report, blob string) {
	companyName := stringField(report.Combined.Data, model.FieldName)
	if companyName == "" {
		companyName = report.Founders.LegalName
	}

	description := stringField(report.Combined.Data, model.FieldDescriptionRaw)
	if description == "" {
		description = stringField(report.Combined.Data, model.FieldReasonForInvesting)
	}

	resp, err := p.provider.Suggest(ctx, suggest.Request{
		CompanyName: companyName,
		Description: description,
		Memo:        blob,
	})
	if err != nil {
		p.logger.Warn("pipeline: suggestion failed",
			zap.String("provider", p.provider.Name()), zap.Error(err))
		return
	}

	report.Suggestions = &model.Suggestions{
		Tagline:  resp.Tagline,
		Keywords: resp.Keywords,
		Provider: resp.Provider,
		Model:    resp.Model,
	}
	p.logger.Debug("pipeline: suggestions generated",
		zap.String("provider", resp.Provider),
		zap.String("model", resp.Model),
		zap.Int("tokens", resp.TokensUsed))
}

// urlTargets collects every URL-bearing value in the report: the company
// URL plus each founder's LinkedIn, under synthetic per-founder keys.
func urlTargets(report *model.Report) []validate.Target {
	var targets []validate.Target

	if u := stringField(report.Combined.Data, model.FieldCompanyURL); u != "" {
		targets = append(targets, validate.Target{Field: model.FieldCompanyURL, URL: u})
	}

	for i, f := range report.Founders.Founders {
		if f.LinkedInURL != "" {
			targets = append(targets, validate.Target{
				Field: model.FieldKey(fmt.Sprintf("founder_%d_linkedin", i+1)),
				URL:   f.LinkedInURL,
			})
		}
	}

	return targets
}

func stringField(data map[model.FieldKey]interface{}, key model.FieldKey) string {
	s, _ := data[key].(string)
	return s
}
