// Package suggest generates optional tagline and keyword copy for a
// parsed deal through an external model provider. Output is advisory: it
// rides the report clearly separated and never enters extracted data or
// the fill score.
package suggest

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fundops/dealfill/internal/extract"
	"github.com/fundops/dealfill/internal/model"
)

// Provider defines the interface for suggestion providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Suggest generates a tagline and keywords for the request
	Suggest(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Request carries what the provider may see about the deal.
type Request struct {
	// CompanyName as extracted from the memo
	CompanyName string

	// Description is the reason-for-investing text, if any
	Description string

	// Memo is the prepared memo text (truncated before sending)
	Memo string

	// Model overrides the configured model for this call
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// Response contains the provider's copy suggestions.
type Response struct {
	Tagline    string
	Keywords   []string
	Provider   string
	Model      string
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for response generation
	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// ConfigFromModel merges the suggest and HTTP sections of cfg.
func ConfigFromModel(cfg model.Config) Config {
	return Config{
		Provider:    cfg.Suggest.Provider,
		Model:       cfg.Suggest.Model,
		APIKey:      cfg.Suggest.APIKey,
		BaseURL:     cfg.Suggest.BaseURL,
		Timeout:     int(cfg.HTTP.Timeout / time.Second),
		MaxTokens:   cfg.Suggest.MaxTokens,
		Temperature: cfg.Suggest.Temperature,
		HTTPProxy:   cfg.HTTP.HTTPProxy,
		HTTPSProxy:  cfg.HTTP.HTTPSProxy,
		NoProxy:     cfg.HTTP.NoProxy,
	}
}

func (c Config) temperature() float32 {
	if c.Temperature > 0 {
		return c.Temperature
	}
	return 0.3
}

// systemPrompt pins the response format all providers must follow.
const systemPrompt = "You write terse marketing copy for a venture fund's internal deal records. Follow the response format exactly."

// memoExcerptLimit caps how much memo text rides in the prompt.
const memoExcerptLimit = 2000

// BuildPrompt constructs the provider prompt. The response contract is
// the two lines ParseResponse understands.
func BuildPrompt(req Request) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Company: %s\n", req.CompanyName)
	if req.Description != "" {
		fmt.Fprintf(&sb, "What they do: %s\n", req.Description)
	}
	if req.Memo != "" {
		fmt.Fprintf(&sb, "\nMemo excerpt:\n%s\n", truncate(req.Memo, memoExcerptLimit))
	}

	sb.WriteString(`
Respond with exactly two lines:
TAGLINE: one sentence, at most twelve words, no trailing period
KEYWORDS: three to six comma-separated lowercase keywords`)

	return sb.String()
}

// ParseResponse reads the two-line contract out of a raw completion.
// Lines prefixed TAGLINE: and KEYWORDS: are authoritative; without the
// markers the first non-empty line is taken as the tagline. Keywords are
// reduced to the slug alphabet and deduplicated.
func ParseResponse(raw string) (string, []string) {
	var tagline string
	var keywords []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "TAGLINE:"):
			tagline = cleanTagline(line[len("TAGLINE:"):])
		case strings.HasPrefix(upper, "KEYWORDS:"):
			keywords = filterKeywords(strings.Split(line[len("KEYWORDS:"):], ","))
		default:
			if tagline == "" {
				tagline = cleanTagline(line)
			}
		}
	}

	return tagline, keywords
}

func cleanTagline(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSuffix(s, ".")
}

func filterKeywords(parts []string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, p := range parts {
		slug := extract.Slugify(p)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		keywords = append(keywords, slug)
	}
	return keywords
}

// truncate cuts s at a rune boundary at or before limit bytes.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n[truncated]"
}
