package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fundops/dealfill/internal/model"
)

const banner = "═══════════════════════════════════════════════════════════"

// Renderer formats reports for the terminal or for files.
type Renderer struct{}

// NewRenderer creates a renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render dispatches on format: "text" (default) or "json".
func (r *Renderer) Render(report *model.Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		return r.RenderJSON(report)
	case "", "text":
		return []byte(r.RenderText(report)), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

// RenderJSON marshals the complete report with stable indentation.
func (r *Renderer) RenderJSON(report *model.Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFile renders the report and writes it to path.
func (r *Renderer) WriteFile(report *model.Report, format, path string) error {
	data, err := r.Render(report, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderText renders the human-readable report.
func (r *Renderer) RenderText(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", banner)
	fmt.Fprintf(&b, "  Dealfill Report: %s\n", report.Source)
	fmt.Fprintf(&b, "%s\n\n", banner)

	fmt.Fprintf(&b, "  Run:        %s\n", report.RunID)
	fmt.Fprintf(&b, "  Generated:  %s\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "  Fill score: %d/100 (%s)\n\n", report.Score.Index, report.Score.Confidence)

	r.writeFields(&b, report.Combined)
	r.writeFounders(&b, report.Founders)
	r.writeAddress(&b, report.Address)
	r.writeURLChecks(&b, report.URLChecks)
	r.writePageMeta(&b, report.PageMeta)
	r.writeSuggestions(&b, report.Suggestions)
	r.writeSignals(&b, report.Score.Signals)

	return b.String()
}

func (r *Renderer) writeFields(b *strings.Builder, combined model.CombinedResult) {
	total := len(combined.Data) + len(combined.NeedsManualInput)
	fmt.Fprintf(b, "  Extracted Fields (%d/%d)\n", len(combined.Data), total)

	keys := make([]string, 0, len(combined.Data))
	width := 0
	for k := range combined.Data {
		keys = append(keys, string(k))
		if len(k) > width {
			width = len(k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "    %-*s  %v\n", width, k, combined.Data[model.FieldKey(k)])
	}
	b.WriteString("\n")

	if len(combined.NeedsManualInput) > 0 {
		needs := make([]string, 0, len(combined.NeedsManualInput))
		for _, k := range combined.NeedsManualInput {
			needs = append(needs, string(k))
		}
		sort.Strings(needs)

		fmt.Fprintf(b, "  Needs Manual Input (%d)\n", len(needs))
		for _, k := range needs {
			fmt.Fprintf(b, "    %s\n", k)
		}
		b.WriteString("\n")
	}
}

func (r *Renderer) writeFounders(b *strings.Builder, parse model.FounderParse) {
	if len(parse.Founders) == 0 {
		return
	}

	fmt.Fprintf(b, "  Founders (%d)\n", len(parse.Founders))
	for i, f := range parse.Founders {
		fmt.Fprintf(b, "    %d. %s %s (%s)\n", i+1, f.FirstName, f.LastName, f.Role)
		if f.Title != "" {
			fmt.Fprintf(b, "       title:    %s\n", f.Title)
		}
		if f.Email != "" {
			fmt.Fprintf(b, "       email:    %s\n", f.Email)
		}
		if f.LinkedInURL != "" {
			fmt.Fprintf(b, "       linkedin: %s\n", f.LinkedInURL)
		}
	}
	b.WriteString("\n")
}

func (r *Renderer) writeAddress(b *strings.Builder, addr *model.Address) {
	if addr == nil {
		return
	}

	fmt.Fprintf(b, "  Headquarters (%s, relevance %.2f", addr.Method, addr.Relevance)
	if addr.NeedsReview {
		b.WriteString(", needs review")
	}
	b.WriteString(")\n")

	if addr.Line1 != "" {
		fmt.Fprintf(b, "    %s\n", addr.Line1)
	}
	if addr.Line2 != "" {
		fmt.Fprintf(b, "    %s\n", addr.Line2)
	}
	if locality := joinNonEmpty(", ", addr.City, addr.State, addr.PostalCode, addr.Country); locality != "" {
		fmt.Fprintf(b, "    %s\n", locality)
	}
	if addr.Lat != 0 || addr.Lon != 0 {
		fmt.Fprintf(b, "    %.4f, %.4f\n", addr.Lat, addr.Lon)
	}
	b.WriteString("\n")
}

func (r *Renderer) writeURLChecks(b *strings.Builder, checks []model.URLCheck) {
	if len(checks) == 0 {
		return
	}

	fmt.Fprintf(b, "  URL Checks (%d)\n", len(checks))
	for _, c := range checks {
		mark := "✓"
		if !c.Accessible {
			mark = "✗"
		}
		fmt.Fprintf(b, "    %s %s: %s", mark, c.Field, c.URL)
		switch {
		case c.StatusCode != 0:
			fmt.Fprintf(b, " (%d, %s)", c.StatusCode, c.HostTier)
		case c.Error != "":
			fmt.Fprintf(b, " (%s)", c.Error)
		}
		b.WriteString("\n")
		if c.RedirectURL != "" {
			fmt.Fprintf(b, "      -> %s\n", c.RedirectURL)
		}
	}
	b.WriteString("\n")
}

func (r *Renderer) writePageMeta(b *strings.Builder, meta *model.PageMeta) {
	if meta == nil {
		return
	}

	title := meta.Title
	if title == "" {
		title = meta.OGTitle
	}
	description := meta.Description
	if description == "" {
		description = meta.OGDescription
	}

	b.WriteString("  Company Page\n")
	if title != "" {
		fmt.Fprintf(b, "    Title:       %s\n", title)
	}
	if description != "" {
		fmt.Fprintf(b, "    Description: %s\n", description)
	}
	if meta.OGSiteName != "" {
		fmt.Fprintf(b, "    Site:        %s\n", meta.OGSiteName)
	}
	if meta.CanonicalURL != "" {
		fmt.Fprintf(b, "    Canonical:   %s\n", meta.CanonicalURL)
	}
	b.WriteString("\n")
}

func (r *Renderer) writeSuggestions(b *strings.Builder, s *model.Suggestions) {
	if s == nil {
		return
	}

	fmt.Fprintf(b, "  Suggestions (%s/%s, advisory)\n", s.Provider, s.Model)
	if s.Tagline != "" {
		fmt.Fprintf(b, "    Tagline:  %s\n", s.Tagline)
	}
	if len(s.Keywords) > 0 {
		fmt.Fprintf(b, "    Keywords: %s\n", strings.Join(s.Keywords, ", "))
	}
	b.WriteString("\n")
}

func (r *Renderer) writeSignals(b *strings.Builder, signals []model.Signal) {
	if len(signals) == 0 {
		return
	}

	b.WriteString("  Signals\n")
	for _, s := range signals {
		fmt.Fprintf(b, "    [%s] %s\n", s.Severity, s.Description)
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
