// Package geocode normalizes freeform addresses through an ordered
// strategy chain: provider lookup, structural parsing, raw passthrough.
// Non-empty input always yields some address; only its trust varies.
package geocode

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/fundops/dealfill/internal/cache"
	"github.com/fundops/dealfill/internal/model"
	"github.com/fundops/dealfill/internal/worker"
)

// Strategy attempts one normalization method. A nil Address with a nil
// error means the strategy has no answer for this input; an error means
// the strategy itself failed. Both fall through to the next strategy.
type Strategy interface {
	Name() string
	Normalize(ctx context.Context, raw string) (*model.Address, error)
}

// Normalizer runs strategies in order and returns the first answer.
type Normalizer struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewNormalizer composes a chain from the given strategies. A nil logger
// disables diagnostics.
func NewNormalizer(logger *zap.Logger, strategies ...Strategy) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{strategies: strategies, logger: logger}
}

// NewDefault builds the standard chain for cfg: the geocoding provider
// (inert without a token), the structural parser, the raw fallback.
func NewDefault(cfg model.Config, store cache.Cache, limiter *worker.Limiter, logger *zap.Logger) *Normalizer {
	client := NewClient(cfg.Geocode.Token, logger,
		WithEndpoint(cfg.Geocode.Endpoint),
		WithCountryBias(cfg.Geocode.CountryBias),
		WithMinRelevance(cfg.Geocode.MinRelevance),
		WithUserAgent(cfg.HTTP.UserAgent),
		WithHTTPClient(&http.Client{Timeout: cfg.HTTP.Timeout}),
		WithCache(store, cfg.Geocode.CacheTTL),
		WithLimiter(limiter),
	)
	return NewNormalizer(logger, client, NewRegexStrategy(), NewRawFallback())
}

// Normalize returns the first strategy's answer for raw, or nil for
// blank input. Strategy errors are logged and treated as fallthrough,
// never propagated: the caller must always get some address back.
func (n *Normalizer) Normalize(ctx context.Context, raw string) *model.Address {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	for _, s := range n.strategies {
		addr, err := s.Normalize(ctx, raw)
		if err != nil {
			n.logger.Warn("geocode: strategy failed",
				zap.String("strategy", s.Name()),
				zap.Error(err))
			continue
		}
		if addr != nil {
			n.logger.Debug("geocode: normalized",
				zap.String("strategy", s.Name()),
				zap.Float64("relevance", addr.Relevance),
				zap.Bool("needs_review", addr.NeedsReview))
			return addr
		}
	}
	return nil
}
