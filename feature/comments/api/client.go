package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Client talks to the upstream comment API. It holds the session token
// obtained by Authenticate and applies the configured timeouts, rate-limit
// cooldown, and inter-page delay on every fetch.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger

	// session token returned by the authenticate handshake
	token string

	cooldown   time.Duration
	pageDelay  time.Duration
	retryDelay time.Duration
}

// NewClient creates a client from configuration. Authenticate must be called
// before any fetch.
func NewClient(cfg Config, log *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}
	return &Client{
		cfg:        cfg,
		http:       &http.Client{Timeout: time.Duration(timeout) * time.Second},
		log:        log,
		cooldown:   time.Duration(cfg.CooldownSeconds) * time.Second,
		pageDelay:  time.Duration(cfg.PageDelayMillis) * time.Millisecond,
		retryDelay: time.Second,
	}
}

// VerifyToken checks the identity-provider token by querying the viewer.
// A failed check is fatal for a run: nothing should be fetched with a token
// that is about to be rejected.
func (c *Client) VerifyToken(ctx context.Context) error {
	if c.cfg.AniListToken == "" {
		return fmt.Errorf("%w: no identity token configured", ErrAuthFailed)
	}

	body, err := json.Marshal(map[string]string{
		"query": "query { Viewer { id name } }",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AniListURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.AniListToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: identity provider returned %d", ErrAuthFailed, resp.StatusCode)
	}
	return nil
}

// Authenticate exchanges the identity token for a comment API session token.
func (c *Client) Authenticate(ctx context.Context) error {
	form := url.Values{"token": {c.cfg.AniListToken}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/authenticate", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("appauth", c.cfg.AppAuthKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("comment API unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: comment API returned %d", ErrAuthFailed, resp.StatusCode)
	}

	var payload struct {
		AuthToken string `json:"authToken"`
		User      struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("malformed authenticate response: %w", err)
	}
	if payload.AuthToken == "" {
		return fmt.Errorf("%w: empty session token", ErrAuthFailed)
	}

	c.token = payload.AuthToken
	c.log.Info("Authenticated with comment API", zap.String("username", payload.User.Username))
	return nil
}

// get performs one authenticated GET and returns the status code and body.
// Transport failures are returned as errors; HTTP status handling is left to
// the caller since 404 and 429 carry protocol meaning here.
func (c *Client) get(ctx context.Context, requestURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("appauth", c.cfg.AppAuthKey)
	req.Header.Set("Authorization", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// sleep waits for d unless the context is cancelled first.
func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
