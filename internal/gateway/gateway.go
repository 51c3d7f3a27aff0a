// Package gateway is the kiosk's client for the remote cafeteria
// backend. Read paths degrade to cached or sample data when the backend
// stays unreachable; write paths surface their errors to the caller.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"menukiosk/internal/store"
	"menukiosk/pkg/models"
)

// RetryPolicy is the explicit retry configuration for one logical
// request: each attempt gets AttemptTimeout, failed attempts are
// separated by linearly increasing pauses of (n+1)*BaseDelay.
type RetryPolicy struct {
	Attempts       int
	BaseDelay      time.Duration
	AttemptTimeout time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:       3,
		BaseDelay:      2 * time.Second,
		AttemptTimeout: 15 * time.Second,
	}
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Retry   RetryPolicy
	Cache   *store.Store // optional; nil disables write-through and cache fallback
	Logger  *log.Logger
}

func New(baseURL string, cache *store.Store) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{},
		Retry:   DefaultRetryPolicy(),
		Cache:   cache,
		Logger:  log.Default(),
	}
}

// do runs one request under the retry policy. Transport errors and 5xx
// responses are retried; anything else is returned to the caller as-is.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		payload = b
	}

	var lastErr error
	for i := 0; i < c.Retry.Attempts; i++ {
		if i > 0 {
			pause := time.Duration(i) * c.Retry.BaseDelay
			c.Logger.Printf("[gateway] %s %s failed, retrying in %s (%d/%d)", method, path, pause, i+1, c.Retry.Attempts)
			select {
			case <-time.After(pause):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.Retry.AttemptTimeout)
		resp, err := c.attempt(attemptCtx, method, u, payload)
		if err != nil {
			cancel()
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 && i < c.Retry.Attempts-1 {
			_ = resp.Body.Close()
			cancel()
			lastErr = fmt.Errorf("%s %s: server error %d", method, path, resp.StatusCode)
			continue
		}

		// The body must outlive the attempt context, so read it here.
		b, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		cancel()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}
		resp.Body = io.NopCloser(bytes.NewReader(b))
		return resp, nil
	}
	return nil, fmt.Errorf("%s %s: %w", method, path, lastErr)
}

func (c *Client) attempt(ctx context.Context, method, u string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.HTTP.Do(req)
}

func decodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// AllMenus lists the full menu history. If the backend stays down after
// all retries the cache is served instead, and as a last resort a
// built-in sample record so the kiosk always has something to render.
func (c *Client) AllMenus(ctx context.Context) ([]models.Menu, error) {
	resp, err := c.do(ctx, http.MethodGet, "/menus", nil, nil)
	if err == nil && resp.StatusCode == http.StatusOK {
		var menus []models.Menu
		if derr := decodeJSON(resp, &menus); derr == nil {
			c.writeThrough(ctx, menus)
			return menus, nil
		}
	} else if err == nil {
		_ = resp.Body.Close()
		c.Logger.Printf("[gateway] backend returned %d for /menus, using local data", resp.StatusCode)
	} else {
		c.Logger.Printf("[gateway] backend unavailable for /menus: %v", err)
	}

	if c.Cache != nil {
		cached, cerr := c.Cache.All(ctx)
		if cerr == nil && len(cached) > 0 {
			return cached, nil
		}
	}
	return SampleMenus(), nil
}

// MenuByDate looks up a single day. Not-found is a normal outcome and
// comes back as (nil, nil); on persistent backend failure the cache and
// sample data are consulted but nothing is ever fabricated.
func (c *Client) MenuByDate(ctx context.Context, fecha string) (*models.Menu, error) {
	q := url.Values{"fecha": {fecha}}
	resp, err := c.do(ctx, http.MethodGet, "/menus/by-date", q, nil)
	if err == nil {
		switch {
		case resp.StatusCode == http.StatusNotFound:
			_ = resp.Body.Close()
			return nil, nil
		case resp.StatusCode == http.StatusOK:
			var m models.Menu
			if derr := decodeJSON(resp, &m); derr == nil {
				c.writeThrough(ctx, []models.Menu{m})
				return &m, nil
			}
		default:
			_ = resp.Body.Close()
			c.Logger.Printf("[gateway] backend returned %d for /menus/by-date, using local data", resp.StatusCode)
		}
	} else {
		c.Logger.Printf("[gateway] backend unavailable for /menus/by-date: %v", err)
	}

	if c.Cache != nil {
		if m, cerr := c.Cache.ByDate(ctx, fecha); cerr == nil && m != nil {
			return m, nil
		}
	}
	for _, m := range SampleMenus() {
		if m.Fecha == fecha {
			return &m, nil
		}
	}
	return nil, nil
}

// CreateOrUpdateMenu is a write path: failures surface to the caller.
func (c *Client) CreateOrUpdateMenu(ctx context.Context, req models.CreateMenuRequest) (*models.Menu, error) {
	resp, err := c.do(ctx, http.MethodPost, "/menus", nil, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("create/update menu: backend returned %d", resp.StatusCode)
	}
	var m models.Menu
	if err := decodeJSON(resp, &m); err != nil {
		return nil, err
	}
	c.writeThrough(ctx, []models.Menu{m})
	return &m, nil
}

func (c *Client) UpdateMenuByID(ctx context.Context, id string, req models.UpdateMenuRequest) (*models.Menu, error) {
	resp, err := c.do(ctx, http.MethodPut, "/menus/"+id, nil, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("update menu %s: backend returned %d", id, resp.StatusCode)
	}
	var m models.Menu
	if err := decodeJSON(resp, &m); err != nil {
		return nil, err
	}
	c.writeThrough(ctx, []models.Menu{m})
	return &m, nil
}

// SubmitVote returns the menu with its post-vote authoritative counters.
func (c *Client) SubmitVote(ctx context.Context, req models.VoteRequest) (*models.Menu, error) {
	resp, err := c.do(ctx, http.MethodPost, "/vote", nil, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("submit vote: backend returned %d", resp.StatusCode)
	}
	var m models.Menu
	if err := decodeJSON(resp, &m); err != nil {
		return nil, err
	}
	c.writeThrough(ctx, []models.Menu{m})
	return &m, nil
}

type Ack struct {
	OK bool `json:"ok"`
}

func (c *Client) SubmitComment(ctx context.Context, req models.CommentRequest) (Ack, error) {
	resp, err := c.do(ctx, http.MethodPost, "/comment", nil, req)
	if err != nil {
		return Ack{}, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return Ack{}, fmt.Errorf("submit comment: backend returned %d", resp.StatusCode)
	}
	var ack Ack
	if err := decodeJSON(resp, &ack); err != nil {
		return Ack{}, err
	}
	return ack, nil
}

func (c *Client) NotifyTest(ctx context.Context, fecha string) (*models.NotifyResult, error) {
	q := url.Values{"fecha": {fecha}}
	return c.notify(ctx, "/notify/test", q)
}

func (c *Client) NotifyYesterday(ctx context.Context) (*models.NotifyResult, error) {
	return c.notify(ctx, "/notify/yesterday", nil)
}

func (c *Client) notify(ctx context.Context, path string, q url.Values) (*models.NotifyResult, error) {
	resp, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("notify: backend returned %d", resp.StatusCode)
	}
	var r models.NotifyResult
	if err := decodeJSON(resp, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) writeThrough(ctx context.Context, menus []models.Menu) {
	if c.Cache == nil {
		return
	}
	if err := c.Cache.UpsertAll(ctx, menus); err != nil {
		c.Logger.Printf("[gateway] cache write-through failed: %v", err)
	}
}
