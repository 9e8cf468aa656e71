package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/fundops/dealfill/internal/address"
	"github.com/fundops/dealfill/internal/model"
)

// fieldPattern binds one field key to its label-anchored pattern and
// type-specific normalizer. The table is built once and never mutated.
type fieldPattern struct {
	key   model.FieldKey
	re    *regexp.Regexp
	parse func(string) (interface{}, bool)
}

// DealExtractor pulls individually-labeled deal fields out of a pasted
// blob. Pure: same blob in, same result out, safe for concurrent use.
type DealExtractor struct {
	patterns map[model.FieldKey]fieldPattern
	logger   *zap.Logger
}

// NewDealExtractor creates a deal-vocabulary extractor. A nil logger
// disables diagnostics.
func NewDealExtractor(logger *zap.Logger) *DealExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DealExtractor{
		patterns: dealPatterns,
		logger:   logger,
	}
}

// dealPatterns is built once at startup and never mutated afterwards.
var dealPatterns = initDealPatterns()

// labelPattern builds a line-anchored, case-insensitive pattern that
// matches any of the given labels followed by an optional colon and the
// value. Longer labels must come first: alternation is first-match.
func labelPattern(labels ...string) *regexp.Regexp {
	escaped := make([]string, len(labels))
	for i, l := range labels {
		escaped[i] = strings.ReplaceAll(regexp.QuoteMeta(l), " ", `[ \t]+`)
	}
	return regexp.MustCompile(`(?im)^[ \t]*(?:` + strings.Join(escaped, "|") + `)[ \t]*:?[ \t]*(\S[^\n]*?)[ \t]*$`)
}

func initDealPatterns() map[model.FieldKey]fieldPattern {
	parseString := func(s string) (interface{}, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	parseCurrency := func(s string) (interface{}, bool) {
		n, ok := ParseCurrency(s)
		return n, ok
	}

	table := []fieldPattern{
		{model.FieldName, labelPattern("company name", "startup name", "name"), parseString},
		{model.FieldCompanyURL, labelPattern("company url", "company website", "website", "url"), parseURL},
		{model.FieldInvestmentAmount, labelPattern("investment amount", "amount invested", "check size"), parseCurrency},
		{model.FieldRoundSize, labelPattern("total round size", "round size"), parseCurrency},
		{model.FieldInstrument, labelPattern("investing in", "instrument", "security type"), func(s string) (interface{}, bool) {
			in, ok := MatchInstrument(s)
			return string(in), ok
		}},
		{model.FieldConversionCap, labelPattern("valuation cap", "conversion cap"), parseCurrency},
		{model.FieldDiscountPercent, labelPattern("discount"), func(s string) (interface{}, bool) {
			f, ok := ParsePercent(s)
			return f, ok
		}},
		{model.FieldPostMoneyValuation, labelPattern("post-money valuation", "post money valuation"), parseCurrency},
		{model.FieldStageAtInvestment, labelPattern("stage at investment", "round stage", "stage"), func(s string) (interface{}, bool) {
			st, ok := MatchStage(s)
			return string(st), ok
		}},
		{model.FieldInvestmentDate, labelPattern("completed on", "investment date", "closed on", "date of investment"), func(s string) (interface{}, bool) {
			d, ok := ParseISODate(s)
			return d, ok
		}},
		{model.FieldHasProRataRights, labelPattern("pro rata rights", "pro-rata rights", "pro rata"), func(s string) (interface{}, bool) {
			b, ok := ParseYesNo(s)
			return b, ok
		}},
		{model.FieldCountryOfIncorp, labelPattern("country of incorporation", "incorporated in", "incorporation country"), func(s string) (interface{}, bool) {
			code, ok := address.CountryCode(s)
			return code, ok
		}},
		{model.FieldIncorporationType, labelPattern("incorporation type", "entity type", "legal structure"), func(s string) (interface{}, bool) {
			it, ok := MatchIncorporationType(s)
			return string(it), ok
		}},
		{model.FieldReasonForInvesting, labelPattern("why are we investing", "reason for investing", "investment thesis"), parseString},
		{model.FieldCoInvestors, labelPattern("co-investors", "co investors", "coinvestors", "other investors"), func(s string) (interface{}, bool) {
			list, ok := FilterCoInvestors(s)
			return list, ok
		}},
		{model.FieldFounderName, labelPattern("founded by", "founders", "founder"), parseString},
		{model.FieldDescriptionRaw, labelPattern("what does the company do", "description", "about"), parseString},
	}

	patterns := make(map[model.FieldKey]fieldPattern, len(table))
	for _, p := range table {
		patterns[p.key] = p
	}

	// The table must cover the vocabulary. The slug is the one exception:
	// it is derived from the name and carries no pattern of its own.
	for _, key := range model.DealVocabulary() {
		if key == model.FieldCompanySlug {
			continue
		}
		if _, ok := patterns[key]; !ok {
			panic(fmt.Sprintf("extract: no pattern registered for field %q", key))
		}
	}
	return patterns
}

// parseURL accepts http(s) URLs and bare host names, which get an https
// scheme attached. Anything without a dotted host fails.
func parseURL(s string) (interface{}, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.ContainsAny(trimmed, " \t") {
		return "", false
	}

	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if !strings.Contains(u.Host, ".") {
		return "", false
	}
	return u.String(), true
}

// Extract runs every pattern against the blob and returns a result that
// partitions the deal vocabulary: each key lands in exactly one of
// SuccessfullyParsed or FailedToParse, and values exist only for
// successful keys. Labels that match but fail normalization count as
// failures, never as guessed values.
func (e *DealExtractor) Extract(blob string) model.ParseResult {
	result := model.NewParseResult()

	for _, key := range model.DealVocabulary() {
		if key == model.FieldCompanySlug {
			// Derived from the extracted name below, after the name's
			// own success is known.
			continue
		}

		p := e.patterns[key]
		m := p.re.FindStringSubmatch(blob)
		if m == nil {
			result.Fail(key)
			continue
		}

		value, ok := p.parse(m[1])
		if !ok {
			e.logger.Debug("extract: value failed normalization",
				zap.String("field", string(key)),
				zap.String("captured", m[1]))
			result.Fail(key)
			continue
		}
		result.Succeed(key, value)
	}

	// The slug has no failure mode of its own: it succeeds exactly when
	// the name did and the name carries sluggable characters.
	if name, ok := result.ExtractedData[model.FieldName].(string); ok {
		if slug := Slugify(name); slug != "" {
			result.Succeed(model.FieldCompanySlug, slug)
		} else {
			result.Fail(model.FieldCompanySlug)
		}
	} else {
		result.Fail(model.FieldCompanySlug)
	}

	return result
}
