package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonwraymond/mediaproxy/auth"
	"github.com/jonwraymond/mediaproxy/health"
)

// errorSnippetBytes bounds how much of an error body is quoted in errors.
const errorSnippetBytes = 512

// Client fetches compressed media from the backend over HTTP.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Context: every request honors ctx and the configured timeout.
//   - Errors: ErrNotFound, ErrUnexpectedStatus and ErrResponseTooLarge are
//     wrapped with request context.
type Client struct {
	cfg  Config
	base *url.URL
	http *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	transport http.RoundTripper
}

// WithTransport sets the round tripper under the credential layer.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(o *clientOptions) {
		o.transport = rt
	}
}

// NewClient validates cfg, wires credentials and runs the readiness probe
// when cfg.ProbePath is set.
func NewClient(ctx context.Context, cfg Config, opts ...ClientOption) (*Client, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	transport, err := credentialTransport(cfg, o.transport)
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	c := &Client{
		cfg:  cfg,
		base: base,
		http: &http.Client{Transport: transport, Timeout: cfg.Timeout},
	}

	if cfg.ProbePath != "" {
		if err := c.Ping(ctx); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func credentialTransport(cfg Config, base http.RoundTripper) (http.RoundTripper, error) {
	switch {
	case cfg.SigningKey != "":
		signer, err := auth.NewJWTSigner(auth.JWTSignerConfig{
			Key:      []byte(cfg.SigningKey),
			KeyID:    cfg.KeyID,
			Issuer:   cfg.Issuer,
			Audience: cfg.Audience,
			TTL:      cfg.TokenTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return auth.BearerTransport(signer, base), nil
	case cfg.APIKey != "":
		return auth.APIKeyTransport(cfg.APIKey, base), nil
	case base != nil:
		return base, nil
	default:
		return http.DefaultTransport, nil
	}
}

// DownloadCompressed fetches GET {base}/videos/{videoID}/compressed?quality={quality}.
// A 200 response body is returned as is; an empty body yields an empty,
// non-nil slice.
func (c *Client) DownloadCompressed(ctx context.Context, videoID, quality string) ([]byte, error) {
	u := c.base.JoinPath("videos", url.PathEscape(videoID), "compressed")
	q := u.Query()
	q.Set("quality", quality)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: fetch %s@%s: %w", videoID, quality, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s@%s", ErrNotFound, videoID, quality)
	case resp.StatusCode != http.StatusOK:
		return nil, statusError(resp)
	}

	if resp.ContentLength > c.cfg.MaxResponseBytes {
		return nil, fmt.Errorf("%w: %d bytes declared, limit %d",
			ErrResponseTooLarge, resp.ContentLength, c.cfg.MaxResponseBytes)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("remote: read %s@%s: %w", videoID, quality, err)
	}
	if int64(len(data)) > c.cfg.MaxResponseBytes {
		return nil, fmt.Errorf("%w: limit %d", ErrResponseTooLarge, c.cfg.MaxResponseBytes)
	}
	return data, nil
}

// Ping requests the probe path and expects a 2xx answer.
func (c *Client) Ping(ctx context.Context) error {
	path := c.cfg.ProbePath
	if path == "" {
		path = "/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.JoinPath(path).String(), nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProbeFailed, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProbeFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errorSnippetBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrProbeFailed, resp.StatusCode)
	}
	return nil
}

// Name returns the health checker name.
func (c *Client) Name() string {
	return "remote-video-service"
}

// Check pings the backend. Without a probe path the check is skipped and
// reported healthy.
func (c *Client) Check(ctx context.Context) health.Result {
	details := map[string]any{"base_url": c.base.String()}
	if c.cfg.ProbePath == "" {
		return health.Healthy("probe disabled").WithDetails(details)
	}
	if err := c.Ping(ctx); err != nil {
		return health.Unhealthy("backend probe failed", err).WithDetails(details)
	}
	return health.Healthy("backend reachable").WithDetails(details)
}

func statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorSnippetBytes))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, msg)
}

var _ health.Checker = (*Client)(nil)
