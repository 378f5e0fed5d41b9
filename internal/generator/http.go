package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/agentrun/agentrun/internal/config"
	"github.com/agentrun/agentrun/internal/logger"
)

// Errors raised by the HTTP generator.
var (
	ErrMissingSecretKey = errors.New("secret key environment variable is not set")
	ErrNoAccessToken    = errors.New("no access token in response")
)

// StatusError reports a non-2xx response from the generator endpoint.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from generator", e.Code)
}

const (
	defaultTimeout     = 30 * time.Second
	defaultRetryMax    = 3
	defaultTokenTTL    = 15 * time.Minute
	tokenRefreshMargin = 2 * time.Minute
)

// HTTP is a generator that POSTs the rendered prompt to a configured
// endpoint. Requests are retried with backoff on 429 and 5xx responses.
// When a token URL is configured, the access token and its expiry are
// held on the client and refreshed shortly before expiration.
type HTTP struct {
	client *resty.Client
	cfg    config.GeneratorConfig

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

var _ Generator = (*HTTP)(nil)

// NewHTTP builds an HTTP generator from the generator section of the
// run configuration.
func NewHTTP(cfg config.GeneratorConfig) *HTTP {
	timeout := defaultTimeout
	if cfg.TimeoutSec > 0 {
		timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}
	retryMax := defaultRetryMax
	if cfg.RetryMax > 0 {
		retryMax = cfg.RetryMax
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retryMax).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(20 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == 429 || r.StatusCode() >= 500
		})

	return &HTTP{client: client, cfg: cfg}
}

// Generate POSTs the prompt as JSON and returns the decoded response
// body. A non-JSON response body is returned as a string.
func (g *HTTP) Generate(ctx context.Context, prompt string) (any, error) {
	req := g.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetBody(map[string]string{"prompt": prompt})

	if g.cfg.TokenURL != "" {
		token, err := g.ensureValidToken(ctx)
		if err != nil {
			return nil, err
		}
		req.SetAuthToken(token)
	}

	resp, err := req.Post(g.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("generator request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{Code: resp.StatusCode()}
	}

	var result any
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return string(resp.Body()), nil
	}
	return result, nil
}

// ensureValidToken returns the cached token, refreshing it first when
// it is absent or expires within the refresh margin.
func (g *HTTP) ensureValidToken(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.token != "" && time.Now().Add(tokenRefreshMargin).Before(g.tokenExpiry) {
		return g.token, nil
	}

	secret := os.Getenv(g.cfg.SecretKeyEnv)
	if secret == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingSecretKey, g.cfg.SecretKeyEnv)
	}

	logger.FromContext(ctx).Info("Requesting new access token", "url", g.cfg.TokenURL)

	var tokenResp struct {
		Data struct {
			AccessToken   string `json:"access_token"`
			ExpirationUTC string `json:"expiration_utc"`
		} `json:"data"`
	}
	resp, err := g.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"secret_key": secret}).
		SetResult(&tokenResp).
		ForceContentType("application/json").
		Post(g.cfg.TokenURL)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return "", &StatusError{Code: resp.StatusCode()}
	}
	if tokenResp.Data.AccessToken == "" {
		return "", ErrNoAccessToken
	}

	expiry := time.Now().Add(defaultTokenTTL)
	if tokenResp.Data.ExpirationUTC != "" {
		if parsed, err := time.Parse(time.RFC3339, tokenResp.Data.ExpirationUTC); err == nil {
			expiry = parsed
		}
	}

	g.token = tokenResp.Data.AccessToken
	g.tokenExpiry = expiry
	return g.token, nil
}
