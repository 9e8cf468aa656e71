// Package validate probes the reachability of extracted URL fields and
// classifies their hosts. Checks are advisory: a dead link lowers the
// fill score but never removes the extracted value.
package validate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fundops/dealfill/internal/model"
	"github.com/fundops/dealfill/internal/util"
)

const checkMaxRetries = 3

// checkSleepFunc is the sleep function used between retries (injectable for tests)
var checkSleepFunc = time.Sleep

// Target is one URL to probe, tagged with the field it would fill.
type Target struct {
	Field model.FieldKey
	URL   string
}

// URLChecker probes URL fields concurrently
type URLChecker struct {
	httpClient *http.Client
	maxWorkers int
	userAgent  string
}

// NewURLChecker creates a new checker
func NewURLChecker(timeout time.Duration, maxWorkers int, userAgent, httpProxy, httpsProxy, noProxy string) *URLChecker {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	if userAgent == "" {
		userAgent = model.DefaultConfig().HTTP.UserAgent
	}

	proxyFunc := util.NewProxyFunc(httpProxy, httpsProxy, noProxy)

	return &URLChecker{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: proxyFunc,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		maxWorkers: maxWorkers,
		userAgent:  userAgent,
	}
}

// Check probes all targets concurrently. Results line up with targets by
// index; failures are recorded in the result, never returned, so the
// caller always gets one result per target.
func (c *URLChecker) Check(ctx context.Context, targets []Target) []model.URLCheck {
	if len(targets) == 0 {
		return []model.URLCheck{}
	}

	results := make([]model.URLCheck, len(targets))
	var wg sync.WaitGroup

	// Create semaphore to limit concurrent requests
	semaphore := make(chan struct{}, c.maxWorkers)

	for i, target := range targets {
		wg.Add(1)
		go func(idx int, tg Target) {
			defer wg.Done()

			// Acquire semaphore
			select {
			case <-ctx.Done():
				results[idx] = model.URLCheck{
					Field:    tg.Field,
					URL:      tg.URL,
					HostTier: ClassifyHost(tg.URL),
					Error:    "context cancelled",
				}
				return
			case semaphore <- struct{}{}:
			}

			// Release semaphore when done
			defer func() { <-semaphore }()

			results[idx] = c.checkWithRetry(ctx, tg)
		}(i, target)
	}

	// Wait for all probes to complete
	wg.Wait()

	return results
}

// checkOnce performs a single reachability probe: HEAD first, then GET
// when the server rejects the method outright (405/501).
func (c *URLChecker) checkOnce(ctx context.Context, tg Target) model.URLCheck {
	result := model.URLCheck{
		Field:    tg.Field,
		URL:      tg.URL,
		HostTier: ClassifyHost(tg.URL),
	}

	resp, err := c.probe(ctx, http.MethodHead, tg.URL)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented {
		_ = resp.Body.Close()
		resp, err = c.probe(ctx, http.MethodGet, tg.URL)
		if err != nil {
			result.Error = err.Error()
			return result
		}
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode

	// Check if accessible
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Accessible = true
	}

	// Check for redirects
	if resp.Request.URL.String() != tg.URL {
		result.RedirectURL = resp.Request.URL.String()
	}

	return result
}

func (c *URLChecker) probe(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %v", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}

	return resp, nil
}

// checkWithRetry retries transient failures with exponential backoff
func (c *URLChecker) checkWithRetry(ctx context.Context, tg Target) model.URLCheck {
	var result model.URLCheck
	for attempt := 0; attempt < checkMaxRetries; attempt++ {
		result = c.checkOnce(ctx, tg)
		if !isRetryableCheck(result) {
			return result
		}
		if attempt < checkMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			checkSleepFunc(backoff)
		}
	}
	return result
}

// isRetryableCheck returns true for results that indicate transient failures
func isRetryableCheck(result model.URLCheck) bool {
	// Retry on 5xx server errors
	if result.StatusCode >= 500 && result.StatusCode < 600 {
		return true
	}
	// Retry on 429 rate limit
	if result.StatusCode == 429 {
		return true
	}
	// Retry on network errors (timeout, connection refused)
	if result.Error != "" {
		if isRetryableNetworkError(result.Error) {
			return true
		}
	}
	return false
}

// isRetryableNetworkError checks error strings for transient network failures
func isRetryableNetworkError(errMsg string) bool {
	s := strings.ToLower(errMsg)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}

// CheckBatch is a convenience function for probing targets with default settings
func CheckBatch(ctx context.Context, targets []Target) []model.URLCheck {
	cfg := model.DefaultConfig()
	checker := NewURLChecker(cfg.Validate.Timeout, cfg.Validate.MaxWorkers, cfg.HTTP.UserAgent, "", "", "")
	return checker.Check(ctx, targets)
}
