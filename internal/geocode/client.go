package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fundops/dealfill/internal/address"
	"github.com/fundops/dealfill/internal/cache"
	"github.com/fundops/dealfill/internal/model"
	"github.com/fundops/dealfill/internal/worker"
)

// DefaultEndpoint is the provider's forward-geocoding endpoint.
const DefaultEndpoint = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// Client is the provider-backed strategy. Without a token it reports
// "no answer" on every lookup and the chain carries the request.
type Client struct {
	endpoint     string
	token        string
	countryBias  string
	minRelevance float64
	userAgent    string
	httpClient   *http.Client
	store        cache.Cache
	cacheTTL     time.Duration
	limiter      *worker.Limiter
	logger       *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithEndpoint overrides the geocoding endpoint.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		if strings.TrimSpace(endpoint) != "" {
			c.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent sets the User-Agent header on lookups.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithCountryBias biases lookups toward one ISO-3166 alpha-2 country.
func WithCountryBias(code string) ClientOption {
	return func(c *Client) {
		c.countryBias = strings.ToLower(strings.TrimSpace(code))
	}
}

// WithMinRelevance sets the relevance below which results are flagged
// for review.
func WithMinRelevance(min float64) ClientOption {
	return func(c *Client) {
		if min > 0 {
			c.minRelevance = min
		}
	}
}

// WithCache stores successful lookups for ttl.
func WithCache(store cache.Cache, ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.store = store
		c.cacheTTL = ttl
	}
}

// WithLimiter rate-limits lookups through the shared per-host limiter.
func WithLimiter(limiter *worker.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// NewClient creates a provider client. An empty token is valid and
// leaves the client inert. A nil logger disables diagnostics.
func NewClient(token string, logger *zap.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		endpoint:     DefaultEndpoint,
		token:        token,
		minRelevance: 0.8,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		logger:       logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the strategy in logs and chain diagnostics.
func (c *Client) Name() string {
	return "mapbox"
}

// geocodeResponse is the provider's documented response shape.
type geocodeResponse struct {
	Features []feature `json:"features"`
}

type feature struct {
	PlaceName  string            `json:"place_name"`
	Center     []float64         `json:"center"` // [lon, lat]
	Relevance  float64           `json:"relevance"`
	Context    []contextEntry    `json:"context"`
	Properties featureProperties `json:"properties"`
}

type contextEntry struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	ShortCode string `json:"short_code,omitempty"`
}

type featureProperties struct {
	ShortCode string `json:"short_code,omitempty"`
	ISO31661  string `json:"iso_3166_1,omitempty"`
}

// Normalize looks the address up with the provider. No token, no match,
// and sub-2xx responses all yield (nil, nil) or an error so the chain
// falls through; they never fabricate an address.
func (c *Client) Normalize(ctx context.Context, raw string) (*model.Address, error) {
	if c.token == "" {
		return nil, nil
	}

	query := address.CollapseWhitespace(strings.TrimSpace(raw))
	if query == "" {
		return nil, nil
	}

	key := cache.Key("geocode:" + strings.ToLower(query))
	if c.store != nil {
		if data, found := c.store.Get(key); found {
			var addr model.Address
			if err := json.Unmarshal(data, &addr); err == nil {
				c.logger.Debug("geocode: cache hit", zap.String("query", query))
				return &addr, nil
			}
			_ = c.store.Delete(key)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.endpoint); err != nil {
			return nil, err
		}
	}

	addr, err := c.lookup(ctx, query)
	if err != nil || addr == nil {
		return nil, err
	}

	if c.store != nil {
		if data, err := json.Marshal(addr); err == nil {
			_ = c.store.Set(key, data, c.cacheTTL)
		}
	}

	return addr, nil
}

func (c *Client) lookup(ctx context.Context, query string) (*model.Address, error) {
	endpoint := fmt.Sprintf("%s/%s.json", c.endpoint, url.PathEscape(query))

	params := url.Values{}
	params.Set("access_token", c.token)
	params.Set("limit", "1")
	params.Set("types", "address")
	if c.countryBias != "" {
		params.Set("country", c.countryBias)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("geocode: status %d", resp.StatusCode)
	}

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("geocode: decode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		c.logger.Debug("geocode: no match", zap.String("query", query))
		return nil, nil
	}

	return c.toAddress(decoded.Features[0]), nil
}

// toAddress destructures one feature into a normalized address. The
// street line is the place name up to its first comma; the rest comes
// from the context hierarchy.
func (c *Client) toAddress(f feature) *model.Address {
	addr := &model.Address{
		Method:    model.MethodMapbox,
		Relevance: f.Relevance,
	}

	addr.Line1 = strings.TrimSpace(f.PlaceName)
	if i := strings.Index(f.PlaceName, ","); i >= 0 {
		addr.Line1 = strings.TrimSpace(f.PlaceName[:i])
	}

	if len(f.Center) >= 2 {
		addr.Lon = f.Center[0]
		addr.Lat = f.Center[1]
	}

	var country *contextEntry
	for i := range f.Context {
		entry := &f.Context[i]
		switch {
		case strings.HasPrefix(entry.ID, "place."):
			addr.City = entry.Text
		case strings.HasPrefix(entry.ID, "region."):
			addr.State = regionCode(entry)
		case strings.HasPrefix(entry.ID, "postcode."):
			addr.PostalCode = entry.Text
		case strings.HasPrefix(entry.ID, "country."):
			country = entry
		}
	}

	addr.Country = resolveCountry(f.Properties, country)
	addr.NeedsReview = f.Relevance < c.minRelevance
	return addr
}

// regionCode prefers the region's short code, keeping the part after the
// country prefix ("US-CA" -> "CA").
func regionCode(entry *contextEntry) string {
	if entry.ShortCode == "" {
		return entry.Text
	}
	code := entry.ShortCode
	if i := strings.Index(code, "-"); i >= 0 {
		code = code[i+1:]
	}
	return strings.ToUpper(code)
}

// resolveCountry walks the fallbacks in order: the feature's own short
// code properties, the country context entry's short code, the static
// name table. The deals this system sees are US-biased, so that is the
// final default.
func resolveCountry(props featureProperties, country *contextEntry) string {
	if props.ShortCode != "" {
		return strings.ToUpper(props.ShortCode)
	}
	if props.ISO31661 != "" {
		return strings.ToUpper(props.ISO31661)
	}
	if country != nil {
		if country.ShortCode != "" {
			return strings.ToUpper(country.ShortCode)
		}
		if code, ok := address.CountryCode(country.Text); ok {
			return code
		}
	}
	return "US"
}
