// Package score turns a finished report into the fill-confidence index:
// a transparent 0-100 breakdown of how much of the wizard the parse can
// populate and how much trust each enrichment earned. Every component
// carries a signal with the formula and inputs behind its number.
package score

import (
	"fmt"
	"math"

	"github.com/fundops/dealfill/internal/model"
)

// Scorer calculates the fill-confidence index and generates signals
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score calculates the fill-confidence index over a completed report.
// Suggestions never participate: the index reflects extraction and
// enrichment only.
func (s *Scorer) Score(report *model.Report) model.FillScore {
	var signals []model.Signal

	// 1. Field Coverage (0-40 points)
	coverageScore, coverageSignal := s.scoreFieldCoverage(report.Deal, report.FounderStep)
	signals = append(signals, coverageSignal)

	// 2. Founder Completeness (0-30 points)
	founderScore, founderSignal := s.scoreFounders(report.Founders.Founders)
	signals = append(signals, founderSignal)

	// 3. Address Confidence (0-20 points)
	addressScore, addressSignal := s.scoreAddress(report.Address)
	signals = append(signals, addressSignal)

	// 4. Link Health (0-10 points)
	linkScore, linkSignal := s.scoreLinks(report.URLChecks)
	signals = append(signals, linkSignal)

	// 5. Manual Backlog (informational, explains the coverage deduction)
	if backlogSignal := s.backlogSignal(report.Combined); backlogSignal.Type != "" {
		signals = append(signals, backlogSignal)
	}

	totalScore := coverageScore + founderScore + addressScore + linkScore

	return model.FillScore{
		Index:      totalScore,
		Confidence: confidenceBand(totalScore),
		Signals:    signals,
	}
}

// scoreFieldCoverage calculates field coverage score (0-40 points)
func (s *Scorer) scoreFieldCoverage(deal, founderStep model.ParseResult) (int, model.Signal) {
	parsed := len(deal.SuccessfullyParsed) + len(founderStep.SuccessfullyParsed)
	vocab := len(model.DealVocabulary()) + len(model.FounderVocabulary())

	ratio := float64(parsed) / float64(vocab)
	score := int(math.Min(ratio*40, 40))

	severity := model.SeverityInfo
	if ratio < 0.4 {
		severity = model.SeverityCritical
	} else if ratio < 0.7 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalFieldCoverage,
		Severity:    severity,
		Description: fmt.Sprintf("Field coverage: %d/%d parsed", parsed, vocab),
		Data: map[string]interface{}{
			"parsed":     parsed,
			"vocabulary": vocab,
			"ratio":      ratio,
			"score":      score,
			"formula":    "min(parsed_fields / vocabulary_size * 40, 40)",
		},
	}
}

// scoreFounders calculates founder completeness score (0-30 points)
func (s *Scorer) scoreFounders(founders []model.Founder) (int, model.Signal) {
	if len(founders) == 0 {
		return 0, model.Signal{
			Type:        model.SignalFounderCompleteness,
			Severity:    model.SeverityCritical,
			Description: "No founders proposed",
			Data:        map[string]interface{}{"founders": 0, "score": 0},
		}
	}

	present := 0
	withEmail := 0
	withLinkedIn := 0
	for _, f := range founders {
		if f.FirstName != "" && f.LastName != "" {
			present++
		}
		if f.Email != "" {
			present++
			withEmail++
		}
		if f.LinkedInURL != "" {
			present++
			withLinkedIn++
		}
	}

	maxPossible := len(founders) * 3
	score := present * 30 / maxPossible

	severity := model.SeverityInfo
	if withEmail == 0 && withLinkedIn == 0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:     model.SignalFounderCompleteness,
		Severity: severity,
		Description: fmt.Sprintf("Founder completeness: %d founders, %d with email, %d with LinkedIn",
			len(founders), withEmail, withLinkedIn),
		Data: map[string]interface{}{
			"founders":      len(founders),
			"with_email":    withEmail,
			"with_linkedin": withLinkedIn,
			"present":       present,
			"max":           maxPossible,
			"score":         score,
			"formula":       "(name + email + linkedin presence) / (founders * 3) * 30",
		},
	}
}

// scoreAddress calculates address confidence score (0-20 points)
func (s *Scorer) scoreAddress(addr *model.Address) (int, model.Signal) {
	if addr == nil {
		return 0, model.Signal{
			Type:        model.SignalAddressConfidence,
			Severity:    model.SeverityWarning,
			Description: "No headquarters address found",
			Data:        map[string]interface{}{"score": 0},
		}
	}

	var score int
	switch {
	case addr.Method == model.MethodMapbox && !addr.NeedsReview:
		score = 20
	case addr.Method == model.MethodMapbox:
		score = 14
	case addr.Method == model.MethodRegex:
		score = 10
	default:
		score = 4
	}

	severity := model.SeverityInfo
	if score < 10 {
		severity = model.SeverityWarning
	}

	description := fmt.Sprintf("Address via %s (relevance %.2f)", addr.Method, addr.Relevance)
	if addr.NeedsReview {
		description += ", needs review"
	}

	return score, model.Signal{
		Type:        model.SignalAddressConfidence,
		Severity:    severity,
		Description: description,
		Data: map[string]interface{}{
			"method":       string(addr.Method),
			"relevance":    addr.Relevance,
			"needs_review": addr.NeedsReview,
			"score":        score,
			"formula":      "band(method, needs_review): mapbox 20, mapbox+review 14, regex 10, fallback 4",
		},
	}
}

// scoreLinks calculates link health score (0-10 points)
func (s *Scorer) scoreLinks(checks []model.URLCheck) (int, model.Signal) {
	if len(checks) == 0 {
		return 5, model.Signal{
			Type:        model.SignalLinkHealth,
			Severity:    model.SeverityInfo,
			Description: "No URL fields to check (assuming moderate)",
			Data:        map[string]interface{}{"checked": 0, "score": 5},
		}
	}

	accessibleCount := 0
	shortenerCount := 0
	for _, c := range checks {
		if c.Accessible {
			accessibleCount++
		}
		if c.HostTier == model.HostShortener {
			shortenerCount++
		}
	}

	ratio := float64(accessibleCount) / float64(len(checks))
	score := accessibleCount * 10 / len(checks)
	if shortenerCount > 0 {
		// A company URL behind a shortener hides the real destination
		score -= 2
		if score < 0 {
			score = 0
		}
	}

	severity := model.SeverityInfo
	if ratio <= 0.5 {
		severity = model.SeverityCritical
	} else if ratio < 0.8 || shortenerCount > 0 {
		severity = model.SeverityWarning
	}

	description := fmt.Sprintf("Link health: %d/%d accessible", accessibleCount, len(checks))
	if shortenerCount > 0 {
		description += fmt.Sprintf(", %d behind shorteners", shortenerCount)
	}

	return score, model.Signal{
		Type:        model.SignalLinkHealth,
		Severity:    severity,
		Description: description,
		Data: map[string]interface{}{
			"accessible": accessibleCount,
			"total":      len(checks),
			"shorteners": shortenerCount,
			"ratio":      ratio,
			"score":      score,
			"formula":    "(accessible_count / total) * 10, -2 when a shortener is present",
		},
	}
}

// backlogSignal reports the fields the user still has to type in. It
// deducts nothing itself: coverage already paid for these, the signal
// names them.
func (s *Scorer) backlogSignal(combined model.CombinedResult) model.Signal {
	backlog := len(combined.NeedsManualInput)
	if backlog == 0 {
		return model.Signal{}
	}

	vocab := len(model.DealVocabulary()) + len(model.FounderVocabulary())
	severity := model.SeverityInfo
	if backlog > vocab/2 {
		severity = model.SeverityCritical
	} else if backlog > vocab/4 {
		severity = model.SeverityWarning
	}

	fields := make([]string, 0, backlog)
	for _, k := range combined.NeedsManualInput {
		fields = append(fields, string(k))
	}

	return model.Signal{
		Type:        model.SignalManualBacklog,
		Severity:    severity,
		Description: fmt.Sprintf("%d fields need manual input", backlog),
		Data: map[string]interface{}{
			"count":  backlog,
			"fields": fields,
		},
	}
}

// confidenceBand maps the index to its confidence level
func confidenceBand(score int) string {
	switch {
	case score >= 80:
		return "high"
	case score >= 50:
		return "medium"
	default:
		return "low"
	}
}
