package model

import "time"

// Report is the complete output of one memo parse run: extraction results,
// the aggregated contract, enrichment lookups and the fill-confidence
// breakdown.
type Report struct {
	RunID       string    `json:"run_id"`       // Unique per invocation
	Source      string    `json:"source"`       // File path or "stdin"
	GeneratedAt time.Time `json:"generated_at"` // When the parse occurred

	Deal        ParseResult  `json:"deal"`         // Deal-vocabulary extraction
	FounderStep ParseResult  `json:"founder_step"` // Company-details extraction
	Founders    FounderParse `json:"founders"`     // Proposed founder array + HQ raw

	Combined CombinedResult `json:"combined"` // The boundary the form consumes

	Address     *Address     `json:"address,omitempty"`     // Normalized HQ, when an HQ string was found
	URLChecks   []URLCheck   `json:"url_checks,omitempty"`  // Reachability results for URL fields
	PageMeta    *PageMeta    `json:"page_meta,omitempty"`   // Company homepage metadata
	Suggestions *Suggestions `json:"suggestions,omitempty"` // Optional provider output (never affects extraction)

	Score FillScore `json:"score"` // Auto-fill confidence breakdown
}

// URLCheck contains the result of one URL reachability check.
type URLCheck struct {
	Field       FieldKey `json:"field"`
	URL         string   `json:"url"`
	StatusCode  int      `json:"status_code,omitempty"`
	Accessible  bool     `json:"accessible"`
	RedirectURL string   `json:"redirect_url,omitempty"` // If redirected
	HostTier    HostTier `json:"host_tier"`
	Error       string   `json:"error,omitempty"`
}

// HostTier classifies the host a URL field points at.
type HostTier int

const (
	HostUnknown   HostTier = 0 // Not classified
	HostCorporate HostTier = 1 // The company's own domain
	HostRegistry  HostTier = 2 // Startup registries (crunchbase, angellist, pitchbook)
	HostSocial    HostTier = 3 // Social profiles (linkedin, x, github)
	HostShortener HostTier = 4 // Link shorteners, lowest trust for a company URL
)

func (t HostTier) String() string {
	switch t {
	case HostCorporate:
		return "corporate"
	case HostRegistry:
		return "registry"
	case HostSocial:
		return "social"
	case HostShortener:
		return "shortener"
	default:
		return "unknown"
	}
}

// PageMeta holds metadata scraped from the company homepage. Advisory
// only: it rides the report for the UI to offer, never enters
// ExtractedData.
type PageMeta struct {
	Title         string `json:"title,omitempty"`
	Description   string `json:"description,omitempty"`
	OGTitle       string `json:"og_title,omitempty"`
	OGDescription string `json:"og_description,omitempty"`
	OGSiteName    string `json:"og_site_name,omitempty"`
	CanonicalURL  string `json:"canonical_url,omitempty"`
}

// Suggestions contains optional provider-generated marketing copy.
// CRITICAL: this never affects extraction or scoring and is clearly
// separated in the report.
type Suggestions struct {
	Tagline  string   `json:"tagline,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Provider string   `json:"provider,omitempty"` // openai, anthropic, ollama
	Model    string   `json:"model,omitempty"`
}

// FillScore is the transparent auto-fill confidence breakdown.
type FillScore struct {
	Index      int      `json:"index"`      // Overall confidence (0-100)
	Confidence string   `json:"confidence"` // "low", "medium", "high"
	Signals    []Signal `json:"signals"`    // Diagnostic signals with transparent data
}

// Signal represents a diagnostic signal with transparent scoring data.
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"` // Formulas and inputs
}

// SignalType classifies the type of diagnostic signal.
type SignalType string

const (
	SignalFieldCoverage       SignalType = "field_coverage"       // Extracted keys vs vocabulary size
	SignalFounderCompleteness SignalType = "founder_completeness" // Name/contact presence per founder
	SignalAddressConfidence   SignalType = "address_confidence"   // Normalization method and relevance
	SignalLinkHealth          SignalType = "link_health"          // URL check outcomes
	SignalManualBacklog       SignalType = "manual_backlog"       // Size of the needs-manual-input set
)

// SignalSeverity indicates the importance of the signal.
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
