package extract

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/fundops/dealfill/internal/model"
)

// ParseCurrency converts a currency string to whole dollars. Dollar signs,
// commas and spaces are stripped; a decimal part is truncated. Suffixed
// forms ("$1.5M") and anything else non-numeric fail rather than guess.
func ParseCurrency(s string) (int64, bool) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "USD")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return 0, false
	}

	if dot := strings.Index(cleaned, "."); dot >= 0 {
		frac := cleaned[dot+1:]
		for _, r := range frac {
			if r < '0' || r > '9' {
				return 0, false
			}
		}
		cleaned = cleaned[:dot]
		if cleaned == "" {
			return 0, false
		}
	}

	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// enumRule is one (predicate, value) pair of an ordered containment mapping.
type enumRule[T ~string] struct {
	value T
	match func(string) bool
}

func matchEnum[T ~string](s string, rules []enumRule[T]) (T, bool) {
	lower := strings.ToLower(s)
	for _, r := range rules {
		if r.match(lower) {
			return r.value, true
		}
	}
	var zero T
	return zero, false
}

func containsAll(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if !strings.Contains(s, sub) {
				return false
			}
		}
		return true
	}
}

func containsAny(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

// instrumentRules maps free-text instrument phrases onto the closed enum.
// Order matters: "SAFE (Post-Money)" must resolve before the bare "safe"
// checks, and nothing ever defaults: an unmatched phrase fails the field.
var instrumentRules = []enumRule[model.Instrument]{
	{model.InstrumentSAFEPost, containsAll("safe", "post")},
	{model.InstrumentSAFEPre, containsAll("safe", "pre")},
	{model.InstrumentConvertibleNote, containsAny("convertible", "note")},
	{model.InstrumentEquity, containsAny("equity", "priced")},
}

// MatchInstrument maps a phrase to an Instrument, first match wins.
func MatchInstrument(s string) (model.Instrument, bool) {
	return matchEnum(s, instrumentRules)
}

// stageRules: pre-seed must be checked before seed, which would otherwise
// match it by containment.
var stageRules = []enumRule[model.Stage]{
	{model.StagePreSeed, containsAll("pre", "seed")},
	{model.StageSeriesA, containsAny("series a")},
	{model.StageSeriesB, containsAny("series b")},
	{model.StageSeriesC, containsAny("series c")},
	{model.StageBridge, containsAny("bridge")},
	{model.StageGrowth, containsAny("growth")},
	{model.StageSeed, containsAny("seed")},
}

// MatchStage maps a phrase to a Stage, first match wins.
func MatchStage(s string) (model.Stage, bool) {
	return matchEnum(s, stageRules)
}

// incorpRules: the specific forms come before the generic "corp"/"limited"
// containments that would shadow them.
var incorpRules = []enumRule[model.IncorporationType]{
	{model.IncorpSCorp, containsAny("s corp", "s-corp")},
	{model.IncorpPBC, containsAny("benefit", "pbc")},
	{model.IncorpLLC, containsAny("llc", "limited liability")},
	{model.IncorpLtd, containsAny("ltd", "limited")},
	{model.IncorpCCorp, containsAny("c corp", "c-corp", "corp", "inc")},
}

// MatchIncorporationType maps a phrase to an IncorporationType, first match
// wins.
func MatchIncorporationType(s string) (model.IncorporationType, bool) {
	return matchEnum(s, incorpRules)
}

// dateLayouts is the ordered list of calendar formats accepted for
// investment dates.
var dateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02",
	"01/02/2006",
	"2 Jan 2006",
	"2 January 2006",
}

// ParseISODate parses a free-text date and returns it as YYYY-MM-DD.
// Unparseable dates fail; two-digit years are not accepted.
func ParseISODate(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// ParsePercent parses "20%" or "20" into a float.
func ParsePercent(s string) (float64, bool) {
	cleaned := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}

// ParseYesNo maps an affirmation to a bool. Anything outside the accepted
// forms fails.
func ParseYesNo(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true":
		return true, true
	case "no", "n", "false":
		return false, true
	default:
		return false, false
	}
}

// Slugify derives a URL slug from a company name: lowercase, strip
// everything outside [a-z0-9\s-], collapse whitespace runs to single
// hyphens, collapse repeated hyphens, trim. Pure and idempotent.
func Slugify(name string) string {
	lower := strings.ToLower(name)

	var b strings.Builder
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	slug := strings.Join(strings.Fields(b.String()), "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}

// coInvestorKeywords are the entity-suffix words that let a short,
// space-free token survive the noise filter.
var coInvestorKeywords = []string{
	"capital", "ventures", "partners", "fund", "llc", "lp", "holdings", "labs",
}

// FilterCoInvestors cleans a free-text co-investor list: split on commas,
// semicolons and joining words, keep entries of at least 4 characters that
// contain a space or an entity-suffix keyword, and rejoin. Lossy by design.
func FilterCoInvestors(s string) (string, bool) {
	normalized := strings.NewReplacer(";", ",", " and ", ",", " & ", ",").Replace(s)

	var kept []string
	for _, entry := range strings.Split(normalized, ",") {
		entry = strings.TrimSpace(entry)
		if len(entry) < 4 {
			continue
		}
		if strings.Contains(entry, " ") {
			kept = append(kept, entry)
			continue
		}
		lower := strings.ToLower(entry)
		for _, kw := range coInvestorKeywords {
			if strings.Contains(lower, kw) {
				kept = append(kept, entry)
				break
			}
		}
	}

	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, ", "), true
}
