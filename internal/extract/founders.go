package extract

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/fundops/dealfill/internal/address"
	"github.com/fundops/dealfill/internal/model"
)

// ErrEmptyBlob reports a contract violation: the founder extractor was
// handed nothing to scan. Messy-but-present text is never an error.
var ErrEmptyBlob = errors.New("extract: empty blob")

var (
	founderMarkerRe = regexp.MustCompile(`(?i)current\s+founder\s+(\d+)\s*:`)

	// sentinelRe matches the section headers that terminate the founder
	// area in the source questionnaires.
	sentinelRe = regexp.MustCompile(`(?im)^[ \t]*(?:supporting\s+documents|additional\s+information)\b`)
)

// founderLabels maps normalized label lines to founder sub-fields.
var founderLabels = map[string]string{
	"first name":   "first",
	"last name":    "last",
	"title":        "title",
	"email":        "email",
	"linkedin":     "linkedin",
	"linkedin url": "linkedin",
	"sex":          "sex",
	"bio":          "bio",
}

var (
	legalNameLabels = []string{"legal entity name", "legal company name", "legal name"}
	hqLabels        = []string{"headquarters address", "hq address", "company address", "headquarters", "address"}
)

// FounderExtractor locates repeated founder blocks and the headquarters
// address inside a pasted questionnaire dump.
type FounderExtractor struct {
	logger *zap.Logger
}

// NewFounderExtractor creates a founder/address block extractor. A nil
// logger disables diagnostics.
func NewFounderExtractor(logger *zap.Logger) *FounderExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FounderExtractor{logger: logger}
}

// marker is one "Current Founder N:" occurrence.
type marker struct {
	n          int
	start, end int
}

// Extract scans the blob for founder blocks and headquarters fields. The
// returned ParseResult partitions the company-details vocabulary. An empty
// blob is a bug in the caller and returns ErrEmptyBlob.
func (e *FounderExtractor) Extract(blob string) (model.FounderParse, model.ParseResult, error) {
	if strings.TrimSpace(blob) == "" {
		return model.FounderParse{}, model.ParseResult{}, ErrEmptyBlob
	}

	parse := model.FounderParse{
		Founders:  e.extractFounderBlocks(blob),
		LegalName: labeledValue(blob, legalNameLabels),
	}

	hqRaw := extractHQ(blob)
	parse.HQRaw = hqRaw

	result := model.NewParseResult()
	parts, structured := address.Parse(hqRaw)

	for _, key := range model.FounderVocabulary() {
		switch key {
		case model.FieldLegalName:
			succeedNonEmpty(&result, key, parse.LegalName)
		case model.FieldHQAddressLine1:
			switch {
			case structured:
				succeedNonEmpty(&result, key, parts.Street)
			case hqRaw != "":
				// The structural match failed: the raw string passes
				// through unchanged rather than being dropped.
				result.Succeed(key, hqRaw)
			default:
				result.Fail(key)
			}
		case model.FieldHQCity:
			succeedWhen(&result, key, structured, parts.City)
		case model.FieldHQState:
			succeedWhen(&result, key, structured, parts.State)
		case model.FieldHQZipCode:
			succeedWhen(&result, key, structured, parts.Zip)
		case model.FieldHQCountry:
			succeedWhen(&result, key, structured, parts.Country)
		default:
			// Line 2 and coordinates never come from text; the address
			// normalizer owns them.
			result.Fail(key)
		}
	}

	e.logger.Debug("extract: founder scan complete",
		zap.Int("founders", len(parse.Founders)),
		zap.Bool("hq_structured", structured))

	return parse, result, nil
}

func succeedNonEmpty(r *model.ParseResult, key model.FieldKey, value string) {
	if value != "" {
		r.Succeed(key, value)
	} else {
		r.Fail(key)
	}
}

func succeedWhen(r *model.ParseResult, key model.FieldKey, cond bool, value string) {
	if cond && value != "" {
		r.Succeed(key, value)
	} else {
		r.Fail(key)
	}
}

// extractFounderBlocks finds every "Current Founder N:" marker, keeps the
// distinct set of N values (duplicated markers never inflate the count),
// slices each founder's block and scans it. Blocks that yield neither a
// first nor a last name are dropped: that marker did not correspond to a
// real founder. Roles are assigned from the final count, never from text.
func (e *FounderExtractor) extractFounderBlocks(blob string) []model.Founder {
	raw := founderMarkerRe.FindAllStringSubmatchIndex(blob, -1)
	if raw == nil {
		return nil
	}

	markers := make([]marker, 0, len(raw))
	for _, m := range raw {
		n, err := strconv.Atoi(blob[m[2]:m[3]])
		if err != nil {
			continue
		}
		markers = append(markers, marker{n: n, start: m[0], end: m[1]})
	}

	// First occurrence per distinct N, in positional order.
	seen := make(map[int]bool)
	var distinct []marker
	for _, m := range markers {
		if !seen[m.n] {
			seen[m.n] = true
			distinct = append(distinct, m)
		}
	}

	sentinels := sentinelRe.FindAllStringIndex(blob, -1)

	var founders []model.Founder
	for _, m := range distinct {
		end := len(blob)
		for _, other := range markers {
			if other.start > m.start && other.n != m.n && other.start < end {
				end = other.start
			}
		}
		for _, s := range sentinels {
			if s[0] > m.start && s[0] < end {
				end = s[0]
			}
		}

		fields := scanLabeledLines(blob[m.end:end])
		if fields["first"] == "" && fields["last"] == "" {
			continue
		}
		founders = append(founders, model.Founder{
			FirstName:   fields["first"],
			LastName:    fields["last"],
			Title:       fields["title"],
			Email:       fields["email"],
			LinkedInURL: fields["linkedin"],
			Sex:         fields["sex"],
			Bio:         fields["bio"],
		})
	}

	role := model.RoleCofounder
	if len(founders) == 1 {
		role = model.RoleFounder
	}
	for i := range founders {
		founders[i].Role = role
	}

	return founders
}

// scanLabeledLines walks a block line by line: when a line equals a known
// label (bullets and trailing colons stripped, case-insensitive), the
// following line is taken verbatim, trimmed, as the value. The first
// occurrence of each label wins.
func scanLabeledLines(block string) map[string]string {
	lines := strings.Split(block, "\n")
	fields := make(map[string]string)

	for i := 0; i+1 < len(lines); i++ {
		name, ok := founderLabels[normalizeLabelLine(lines[i])]
		if !ok {
			continue
		}
		if _, exists := fields[name]; exists {
			continue
		}
		if value := strings.TrimSpace(lines[i+1]); value != "" {
			fields[name] = value
		}
	}
	return fields
}

// normalizeLabelLine reduces a line to comparable label form: bullets and
// list dashes stripped, trailing colon stripped, whitespace collapsed,
// lowercased.
func normalizeLabelLine(line string) string {
	trimmed := strings.TrimSpace(line)
	for _, bullet := range []string{"•", "·", "-", "*", "–", "—"} {
		if strings.HasPrefix(trimmed, bullet) {
			trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, bullet))
			break
		}
	}
	trimmed = strings.TrimSuffix(trimmed, ":")
	return strings.ToLower(address.CollapseWhitespace(trimmed))
}

// labeledValue finds a labeled single-line value: the remainder of the
// label's own line when present, otherwise the line that follows it.
func labeledValue(blob string, labels []string) string {
	lines := strings.Split(blob, "\n")
	for i, line := range lines {
		normalized := normalizeLabelLine(line)
		for _, label := range labels {
			if normalized == label {
				if i+1 < len(lines) {
					if v := strings.TrimSpace(lines[i+1]); v != "" && !isLabelLine(v) {
						return v
					}
				}
				continue
			}
			if rest, ok := sameLineValue(line, label); ok {
				return rest
			}
		}
	}
	return ""
}

// sameLineValue matches "Label: value" or "Label value" on one line.
func sameLineValue(line, label string) (string, bool) {
	normalized := strings.ToLower(address.CollapseWhitespace(strings.TrimSpace(line)))
	if !strings.HasPrefix(normalized, label) {
		return "", false
	}

	// Cut the label off the original line, preserving the value's casing.
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < len(label) {
		return "", false
	}
	idx := labelEndIndex(trimmed, label)
	if idx < 0 {
		return "", false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(trimmed[idx:]), ":"))
	if rest == "" {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// labelEndIndex locates where label ends inside line, comparing
// case-insensitively and treating whitespace runs as equal. The label's
// last word must end at a word boundary so "Addressee" never matches
// "address".
func labelEndIndex(line, label string) int {
	lineLower := strings.ToLower(line)

	pos := 0
	for _, w := range strings.Fields(label) {
		for pos < len(lineLower) && (lineLower[pos] == ' ' || lineLower[pos] == '\t') {
			pos++
		}
		if !strings.HasPrefix(lineLower[pos:], w) {
			return -1
		}
		pos += len(w)
	}
	if pos < len(line) {
		switch line[pos] {
		case ' ', '\t', ':':
		default:
			return -1
		}
	}
	return pos
}

// isLabelLine reports whether a line normalizes to any known label.
func isLabelLine(line string) bool {
	normalized := normalizeLabelLine(line)
	if _, ok := founderLabels[normalized]; ok {
		return true
	}
	for _, l := range legalNameLabels {
		if normalized == l {
			return true
		}
	}
	for _, l := range hqLabels {
		if normalized == l {
			return true
		}
	}
	return false
}

// extractHQ captures the labeled multi-line headquarters value: the
// label's own remainder plus following lines until a blank line, another
// label, a founder marker or a sentinel. The result is
// whitespace-collapsed into a single line.
func extractHQ(blob string) string {
	lines := strings.Split(blob, "\n")

	for i, line := range lines {
		normalized := normalizeLabelLine(line)

		var parts []string
		matched := false
		for _, label := range hqLabels {
			if normalized == label {
				matched = true
				break
			}
			if rest, ok := sameLineValue(line, label); ok {
				parts = append(parts, rest)
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		for j := i + 1; j < len(lines); j++ {
			next := strings.TrimSpace(lines[j])
			if next == "" || isLabelLine(next) ||
				founderMarkerRe.MatchString(next) || sentinelRe.MatchString(next) {
				break
			}
			parts = append(parts, next)
		}

		if joined := address.CollapseWhitespace(strings.Join(parts, " ")); joined != "" {
			return joined
		}
	}
	return ""
}
