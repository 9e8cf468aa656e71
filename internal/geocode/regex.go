package geocode

import (
	"context"
	"strings"

	"github.com/fundops/dealfill/internal/address"
	"github.com/fundops/dealfill/internal/model"
)

// Relevance bands for the offline strategies. The provider reports its
// own relevance; these sit below the review threshold so offline results
// always reach the user flagged.
const (
	relevanceStructured = 0.5
	relevancePartial    = 0.4
	relevanceRaw        = 0.2
)

// RegexStrategy parses the address structurally, no network involved.
type RegexStrategy struct{}

// NewRegexStrategy creates the structural parsing strategy.
func NewRegexStrategy() *RegexStrategy {
	return &RegexStrategy{}
}

// Name identifies the strategy.
func (s *RegexStrategy) Name() string {
	return "regex"
}

// Normalize maps the structural parse onto an address. Inputs the parser
// cannot shape yield (nil, nil) and fall through.
func (s *RegexStrategy) Normalize(_ context.Context, raw string) (*model.Address, error) {
	parts, ok := address.Parse(raw)
	if !ok {
		return nil, nil
	}

	relevance := relevanceStructured
	if parts.Street == "" || parts.City == "" {
		relevance = relevancePartial
	}

	return &model.Address{
		Line1:       parts.Street,
		City:        parts.City,
		State:       parts.State,
		PostalCode:  parts.Zip,
		Country:     parts.Country,
		Relevance:   relevance,
		Method:      model.MethodRegex,
		NeedsReview: true,
	}, nil
}

// RawFallback is the terminal strategy: the input comes back as line 1
// at minimum trust rather than being dropped.
type RawFallback struct{}

// NewRawFallback creates the passthrough strategy.
func NewRawFallback() *RawFallback {
	return &RawFallback{}
}

// Name identifies the strategy.
func (s *RawFallback) Name() string {
	return "fallback"
}

// Normalize returns the whitespace-collapsed input as line 1.
func (s *RawFallback) Normalize(_ context.Context, raw string) (*model.Address, error) {
	line1 := address.CollapseWhitespace(strings.TrimSpace(raw))
	if line1 == "" {
		return nil, nil
	}

	return &model.Address{
		Line1:       line1,
		Relevance:   relevanceRaw,
		Method:      model.MethodFallback,
		NeedsReview: true,
	}, nil
}
