// Package psa is a typed wrapper around the PSA company, contact and ticket endpoints.
package psa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/checkin-service/internal/config"
)

const maxErrorBody = 4096

// Client talks to the PSA REST API.
type Client struct {
	cfg        config.PSAConfig
	baseURL    string
	authHeader string
	http       *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient builds a client from explicit configuration.
func NewClient(cfg config.PSAConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	burst := 1
	if cfg.RateLimitPerSecond > 0 {
		limit = rate.Limit(cfg.RateLimitPerSecond)
		if b := int(cfg.RateLimitPerSecond); b > burst {
			burst = b
		}
	}
	return &Client{
		cfg:        cfg,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		authHeader: basicAuth(cfg.CompanyID, cfg.PublicKey, cfg.PrivateKey),
		http:       &http.Client{Timeout: cfg.Timeout()},
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger,
	}
}

// basicAuth builds the composite "{company}+{public}:{private}" credential.
func basicAuth(companyID, publicKey, privateKey string) string {
	raw := fmt.Sprintf("%s+%s:%s", companyID, publicKey, privateKey)
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}

type response struct {
	status int
	body   []byte
}

func (c *Client) send(ctx context.Context, call, method, path string, query url.Values, payload any) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("psa %s: %w", call, err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("psa %s: encode payload: %w", call, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("psa %s: build request: %w", call, err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("clientId", c.cfg.ClientID)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIVersion != "" {
		req.Header.Set("Accept", "application/vnd.connectwise.com+json; version="+c.cfg.APIVersion)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("psa call failed", zap.String("call", call), zap.Error(err))
		return nil, fmt.Errorf("psa %s: %w", call, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("psa %s: read response: %w", call, err)
	}

	c.logger.Debug("psa call", zap.String("call", call), zap.String("method", method),
		zap.String("path", path), zap.Int("status", resp.StatusCode))
	return &response{status: resp.StatusCode, body: raw}, nil
}

// expect turns any status other than want into a RemoteError.
func (c *Client) expect(call string, resp *response, want int) error {
	if resp.status == want {
		return nil
	}
	remote := newRemoteError(call, resp.status, resp.body)
	c.logger.Warn("psa rejected call",
		zap.String("call", call),
		zap.Int("status", resp.status),
		zap.String("message", remote.Message),
		zap.Strings("details", remote.Details),
		zap.String("body", remote.Body),
	)
	return remote
}

func decode(call string, resp *response, out any) error {
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("psa %s: decode response: %w", call, err)
	}
	return nil
}
