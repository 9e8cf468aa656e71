package address

import (
	"regexp"
	"strings"
	"unicode"
)

// Parts holds the structural components recovered from a raw US address string
type Parts struct {
	Street  string
	City    string
	State   string // 2-letter code, verbatim from the match
	Zip     string // 5 digits, optional -4 suffix
	Country string // ISO-3166 alpha-2 when the source supplied one
}

// stateZipRe matches the terminal "ST 12345[-6789][, COUNTRY]" portion of an
// address. The state is strictly a 2-letter uppercase code; full state names
// ("California 95811") do not match and fall through to the caller's raw
// passthrough. That is a known limitation of the source format, kept as-is.
var stateZipRe = regexp.MustCompile(`\b([A-Z]{2})\s+(\d{5}(?:-\d{4})?)(?:[\s,]+([A-Za-z][A-Za-z. ]*?))?\s*$`)

// Parse attempts the structural split used for headquarters addresses:
// collapse whitespace, split at the first comma, match the remainder against
// STATE ZIP[ COUNTRY], then derive street and city from the leading segment.
// City is the last trailing run of purely-uppercase words before the comma,
// converted to title case; if the remainder between the comma and the state
// code carries its own city text ("..., Sacramento, CA 95811") that text wins.
// Returns ok=false when the input has no comma or the STATE ZIP match fails;
// the caller decides what passthrough looks like.
func Parse(raw string) (Parts, bool) {
	collapsed := CollapseWhitespace(raw)
	if collapsed == "" {
		return Parts{}, false
	}

	idx := strings.Index(collapsed, ",")
	if idx < 0 {
		return Parts{}, false
	}
	pre := strings.TrimSpace(collapsed[:idx])
	post := strings.TrimSpace(collapsed[idx+1:])

	m := stateZipRe.FindStringSubmatchIndex(post)
	if m == nil {
		return Parts{}, false
	}

	var parts Parts
	parts.State = post[m[2]:m[3]]
	parts.Zip = post[m[4]:m[5]]
	if m[6] >= 0 {
		parts.Country = countryCodeFromToken(post[m[6]:m[7]])
	}

	// Text between the first comma and the state code is a city segment in
	// multi-comma inputs ("1401 21st Street, Sacramento, CA 95811").
	lead := strings.Trim(post[:m[0]], " ,")
	if lead != "" {
		parts.Street = pre
		parts.City = TitleCase(lead)
		return parts, true
	}

	street, city := SplitStreetCity(pre)
	parts.Street = street
	parts.City = city
	return parts, true
}

// SplitStreetCity splits a pre-comma segment on its trailing run of
// purely-uppercase words: everything before the run is the street line, the
// run itself is the city, title-cased. A segment with no trailing uppercase
// run is all street. The uppercase-city convention comes from the source
// documents this parser targets; a suite code or directional in caps right
// before the comma will be absorbed into the city.
func SplitStreetCity(segment string) (street, city string) {
	words := strings.Fields(segment)
	if len(words) == 0 {
		return "", ""
	}

	runStart := len(words)
	for i := len(words) - 1; i >= 0; i-- {
		if !isUpperWord(words[i]) {
			break
		}
		runStart = i
	}
	if runStart == len(words) {
		return segment, ""
	}

	street = strings.Join(words[:runStart], " ")
	city = TitleCase(strings.Join(words[runStart:], " "))
	return street, city
}

// isUpperWord reports whether w is a purely-uppercase word of at least two
// letters. Tokens with digits ("21ST") or single letters ("N") do not count.
func isUpperWord(w string) bool {
	if len(w) < 2 {
		return false
	}
	for _, r := range w {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// CollapseWhitespace replaces every run of whitespace (including newlines)
// with a single space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TitleCase lowercases s and capitalizes the first letter of each
// space-separated word
func TitleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// abbrToState maps lowercase state abbreviations to lowercase full names
var abbrToState = map[string]string{
	"al": "alabama", "ak": "alaska", "az": "arizona", "ar": "arkansas",
	"ca": "california", "co": "colorado", "ct": "connecticut", "de": "delaware",
	"fl": "florida", "ga": "georgia", "hi": "hawaii", "id": "idaho",
	"il": "illinois", "in": "indiana", "ia": "iowa", "ks": "kansas",
	"ky": "kentucky", "la": "louisiana", "me": "maine", "md": "maryland",
	"ma": "massachusetts", "mi": "michigan", "mn": "minnesota", "ms": "mississippi",
	"mo": "missouri", "mt": "montana", "ne": "nebraska", "nv": "nevada",
	"nh": "new hampshire", "nj": "new jersey", "nm": "new mexico", "ny": "new york",
	"nc": "north carolina", "nd": "north dakota", "oh": "ohio", "ok": "oklahoma",
	"or": "oregon", "pa": "pennsylvania", "ri": "rhode island", "sc": "south carolina",
	"sd": "south dakota", "tn": "tennessee", "tx": "texas", "ut": "utah",
	"vt": "vermont", "va": "virginia", "wa": "washington", "wv": "west virginia",
	"wi": "wisconsin", "wy": "wyoming", "dc": "district of columbia",
}

// stateToAbbr maps lowercase full names to lowercase abbreviations
var stateToAbbr = func() map[string]string {
	m := make(map[string]string, len(abbrToState))
	for abbr, full := range abbrToState {
		m[full] = abbr
	}
	return m
}()

// StateAbbr returns the uppercase 2-letter code for a full US state name.
// Accepts an already-abbreviated code too.
func StateAbbr(state string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(state))
	if lower == "" {
		return "", false
	}
	if _, ok := abbrToState[lower]; ok {
		return strings.ToUpper(lower), true
	}
	if abbr, ok := stateToAbbr[lower]; ok {
		return strings.ToUpper(abbr), true
	}
	return "", false
}

// countryNameToCode is the small static lookup used when a source supplies a
// country by name rather than code.
var countryNameToCode = map[string]string{
	"united states":            "US",
	"united states of america": "US",
	"usa":                      "US",
	"u.s.":                     "US",
	"u.s.a.":                   "US",
	"america":                  "US",
	"canada":                   "CA",
	"united kingdom":           "GB",
	"great britain":            "GB",
	"uk":                       "GB",
	"germany":                  "DE",
	"france":                   "FR",
	"netherlands":              "NL",
	"switzerland":              "CH",
	"ireland":                  "IE",
	"israel":                   "IL",
	"india":                    "IN",
	"singapore":                "SG",
	"australia":                "AU",
	"brazil":                   "BR",
	"mexico":                   "MX",
	"japan":                    "JP",
}

// CountryCode resolves a country name or code token to ISO-3166 alpha-2.
func CountryCode(token string) (string, bool) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", false
	}
	if code, ok := countryNameToCode[strings.ToLower(trimmed)]; ok {
		return code, true
	}
	if len(trimmed) == 2 && isAlpha(trimmed) {
		return strings.ToUpper(trimmed), true
	}
	return "", false
}

func countryCodeFromToken(token string) string {
	code, ok := CountryCode(token)
	if !ok {
		return ""
	}
	return code
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
