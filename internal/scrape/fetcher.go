// Package scrape fetches the company homepage and lifts presentation
// metadata from it. Output is advisory: it rides the report for the UI
// to offer and never enters extracted data.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/fundops/dealfill/internal/model"
	"github.com/fundops/dealfill/internal/util"
	"github.com/fundops/dealfill/internal/worker"
)

// ErrRobotsDisallowed marks a fetch the host's robots.txt refuses.
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

// Scraper fetches pages politely: robots.txt consulted, per-host rate
// limit honored, body size capped, redirects capped at 3.
type Scraper struct {
	httpClient    *http.Client
	robots        *util.RobotsChecker
	limiter       *worker.Limiter
	userAgent     string
	maxBytes      int64
	respectRobots bool
	logger        *zap.Logger
}

// New creates a scraper from cfg. The limiter may be shared with other
// outbound clients; nil disables rate limiting.
func New(cfg model.Config, limiter *worker.Limiter, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}

	proxyFunc := util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)

	return &Scraper{
		httpClient: &http.Client{
			Timeout: cfg.HTTP.Timeout,
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
		robots:        util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout),
		limiter:       limiter,
		userAgent:     cfg.HTTP.UserAgent,
		maxBytes:      cfg.HTTP.MaxBodyBytes,
		respectRobots: cfg.Scrape.RespectRobots,
		logger:        logger,
	}
}

// FetchPage retrieves rawURL and returns its page metadata.
func (s *Scraper) FetchPage(ctx context.Context, rawURL string) (*model.PageMeta, error) {
	if s.respectRobots {
		allowed, crawlDelay, err := s.robots.CanFetch(ctx, rawURL)
		if err == nil && !allowed {
			return nil, ErrRobotsDisallowed
		}
		// Honor a requested crawl delay by slowing this host's limiter
		if crawlDelay > 0 && s.limiter != nil {
			if host := hostPart(rawURL); host != "" {
				s.limiter.SetHostRate(host, 1/crawlDelay.Seconds(), 1)
			}
		}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	src, err := s.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	meta := ParsePage(src)
	s.logger.Debug("scrape: page fetched",
		zap.String("url", rawURL),
		zap.String("title", meta.Title))

	return meta, nil
}

// fetch retrieves the raw HTML, capped at maxBytes.
func (s *Scraper) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	// Read body with size limit
	limited := io.LimitReader(resp.Body, s.maxBytes)
	body, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return string(body), nil
}

func hostPart(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}
