package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint is a public LibreTranslate instance
	DefaultEndpoint = "https://translate.argosopentech.com/translate"

	// DefaultTimeout bounds a whole translate call
	DefaultTimeout = 8 * time.Second
)

// Client calls a LibreTranslate-compatible endpoint
type Client struct {
	endpoint   string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *cache.Cache
}

// Option configures a Client
type Option func(*Client)

// WithEndpoint overrides the translate URL
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithAPIKey sends api_key with every request
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout overrides the per-call deadline
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRateLimit limits outbound requests to r per second with the given burst
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(r, burst)
	}
}

// WithCacheTTL keeps successful translations for ttl; zero disables caching
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl <= 0 {
			c.cache = nil
			return
		}
		c.cache = cache.New(ttl, 2*ttl)
	}
}

// NewClient creates a Client with defaults for the public endpoint
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(1, 3),
		cache:      cache.New(10*time.Minute, 20*time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate translates req.Text from req.Source to req.Target with a
// single request bounded by the client timeout.
func (c *Client) Translate(ctx context.Context, req Request) Result {
	if strings.TrimSpace(req.Text) == "" {
		slog.Warn("Empty text for translation")
		return fail(KindNoText, "")
	}

	slog.Info("Translating text", "source", req.Source, "target", req.Target)
	if req.Source == req.Target {
		slog.Info("Source and target languages match, returning input")
		return ok(req.Text)
	}

	key := cacheKey(req)
	if c.cache != nil {
		if v, found := c.cache.Get(key); found {
			slog.Info("Translation served from cache")
			return ok(v.(string))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.post(ctx, req)
	if err != nil {
		var tErr *Error
		if !errors.As(err, &tErr) {
			tErr = classify(err)
		}
		slog.Error("Translation failed", "kind", tErr.Kind, "error", err)
		return Result{Err: tErr}
	}

	if c.cache != nil {
		c.cache.SetDefault(key, text)
	}
	slog.Info("Translation succeeded")
	return ok(text)
}

func (c *Client) post(ctx context.Context, req Request) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", &Error{Kind: KindTimeout, Detail: err.Error()}
		}
	}

	body, err := json.Marshal(translateRequest{
		Q:      req.Text,
		Source: req.Source,
		Target: req.Target,
		Format: "text",
		APIKey: c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	slog.Info("Sending translation request", "url", c.endpoint)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.Error("Translation API error", "status", resp.StatusCode, "body", string(respBody))
		return "", &Error{Kind: KindStatus, Status: resp.StatusCode}
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if out.TranslatedText == "" {
		return "", &Error{Kind: KindUnavailable}
	}
	return out.TranslatedText, nil
}

// classify maps a transport error onto a failure kind
func classify(err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Detail: err.Error()}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: KindTimeout, Detail: err.Error()}
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindConnection, Detail: err.Error()}
	case isConnectionError(err):
		return &Error{Kind: KindConnection, Detail: err.Error()}
	default:
		return &Error{Kind: KindOther, Detail: err.Error()}
	}
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// cacheKey quotes each field so no combination of values can collide
func cacheKey(req Request) string {
	return fmt.Sprintf("%q %q %q", req.Source, req.Target, req.Text)
}
