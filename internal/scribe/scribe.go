// Package scribe talks to the external content-generation service used to
// draft campaigns. The service returns free text with labeled sections,
// which this package parses into a structured draft.
package scribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Draft is a generated campaign outline parsed out of the scribe's free-text
// response. Field names line up with the campaign create payload so the
// client can post a draft straight back.
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// Status reports whether the scribe is reachable.
type Status struct {
	Available bool `json:"available"`
}

var (
	titleRe     = regexp.MustCompile(`(?mi)^\s*Title:\s*(.+)$`)
	hookRe      = regexp.MustCompile(`(?mi)^\s*Hook:\s*(.+)$`)
	adventureRe = regexp.MustCompile(`(?si)\bAdventure:\s*(.+)\z`)
)

// Client is an HTTP client for the scribe service. The availability flag is
// a time-stamped cache guarded by a mutex; it is probed at most once per
// probeTTL so a down scribe does not add latency to every status request.
type Client struct {
	baseURL  string
	httpc    *http.Client
	probeTTL time.Duration

	mu        sync.Mutex
	available bool
	checkedAt time.Time
}

// NewClient creates a scribe client. An empty baseURL yields a client that
// always reports unavailable.
func NewClient(baseURL string, probeTTL time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		httpc:    &http.Client{Timeout: 30 * time.Second},
		probeTTL: probeTTL,
	}
}

// Available reports whether the scribe responded to a recent health probe.
// The cached result may be stale by up to probeTTL; that is acceptable, the
// flag is advisory only.
func (c *Client) Available(ctx context.Context) bool {
	if c.baseURL == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.checkedAt) < c.probeTTL {
		return c.available
	}

	c.available = c.probe(ctx)
	c.checkedAt = time.Now()
	return c.available
}

func (c *Client) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		slog.Debug("scribe probe failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

// Generate asks the scribe for a campaign draft based on the given prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (*Draft, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("scribe is not configured")
	}

	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.markUnavailable()
		return nil, fmt.Errorf("scribe request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.markUnavailable()
		return nil, fmt.Errorf("scribe returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading scribe response: %w", err)
	}

	draft := ParseDraft(string(raw))
	if draft.Title == "" && draft.Description == "" && draft.Content == "" {
		return nil, fmt.Errorf("scribe response had no recognizable sections")
	}
	return draft, nil
}

func (c *Client) markUnavailable() {
	c.mu.Lock()
	c.available = false
	c.checkedAt = time.Now()
	c.mu.Unlock()
}

// ParseDraft extracts the Title, Hook, and Adventure sections from the
// scribe's free-text output. The Adventure section runs to the end of the
// text; missing sections come back empty.
func ParseDraft(text string) *Draft {
	draft := &Draft{}

	if m := titleRe.FindStringSubmatch(text); m != nil {
		draft.Title = strings.TrimSpace(m[1])
	}
	if m := hookRe.FindStringSubmatch(text); m != nil {
		draft.Description = strings.TrimSpace(m[1])
	}
	if m := adventureRe.FindStringSubmatch(text); m != nil {
		draft.Content = strings.TrimSpace(m[1])
	}
	return draft
}
