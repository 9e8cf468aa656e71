package util

import (
	"net/http"
	"net/url"
	"strings"
)

// NewProxyFunc builds the Proxy callback for outbound transports. With no
// explicit proxy configured it defers to the standard environment
// variables. Hosts listed in noProxy (comma-separated; subdomains match)
// bypass the proxy entirely.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	skip := parseNoProxy(noProxy)

	return func(req *http.Request) (*url.URL, error) {
		if hostBypassed(req.URL.Hostname(), skip) {
			return nil, nil
		}
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

func parseNoProxy(noProxy string) []string {
	var hosts []string
	for _, part := range strings.Split(noProxy, ",") {
		if h := strings.ToLower(strings.TrimSpace(part)); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func hostBypassed(host string, skip []string) bool {
	host = strings.ToLower(host)
	for _, s := range skip {
		if host == s || strings.HasSuffix(host, "."+s) {
			return true
		}
	}
	return false
}
