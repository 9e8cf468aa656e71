package validate

import (
	"net/url"
	"strings"

	"github.com/fundops/dealfill/internal/model"
)

// Host tier tables. A registry or social profile is a fine founder link
// but a weak company homepage; shorteners are the weakest signal
// wherever they appear.
var (
	registryHosts = map[string]bool{
		"crunchbase.com": true,
		"angellist.com":  true,
		"angel.co":       true,
		"wellfound.com":  true,
		"pitchbook.com":  true,
		"dealroom.co":    true,
		"tracxn.com":     true,
	}

	socialHosts = map[string]bool{
		"linkedin.com":  true,
		"x.com":         true,
		"twitter.com":   true,
		"github.com":    true,
		"facebook.com":  true,
		"instagram.com": true,
		"youtube.com":   true,
		"medium.com":    true,
	}

	shortenerHosts = map[string]bool{
		"bit.ly":      true,
		"tinyurl.com": true,
		"t.co":        true,
		"goo.gl":      true,
		"ow.ly":       true,
		"buff.ly":     true,
		"rebrand.ly":  true,
		"rb.gy":       true,
		"lnkd.in":     true,
	}
)

// ClassifyHost tiers the host a URL points at. Anything that is not a
// known registry, social network or shortener is presumed to be the
// company's own domain.
func ClassifyHost(rawURL string) model.HostTier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return model.HostUnknown
	}

	host := strings.ToLower(parsed.Host)

	// Remove port from host
	if idx := strings.Index(host, ":"); idx > 0 {
		host = host[:idx]
	}
	host = strings.TrimPrefix(host, "www.")

	// Shorteners first: lnkd.in must not classify as linkedin.com
	switch {
	case matchesDomain(host, shortenerHosts):
		return model.HostShortener
	case matchesDomain(host, registryHosts):
		return model.HostRegistry
	case matchesDomain(host, socialHosts):
		return model.HostSocial
	}

	return model.HostCorporate
}

// matchesDomain reports whether host equals, or is a subdomain of, an
// entry in the table.
func matchesDomain(host string, table map[string]bool) bool {
	if table[host] {
		return true
	}
	for domain := range table {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
