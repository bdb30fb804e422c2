package esi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const baseURL = "https://esi.evetech.net/latest"

const userAgent = "eve-tradehub/1.0 (github.com)"

// Sentinel errors for upstream failure classes. Callers decide whether
// to retry, skip, or surface them; the client only classifies.
var (
	// ErrUnavailable marks transport failures and 5xx/429 responses.
	ErrUnavailable = errors.New("esi unavailable")
	// ErrAuth marks rejected or expired credentials (401/403).
	ErrAuth = errors.New("esi authentication rejected")
)

// Credentials identify the authenticated character.
type Credentials struct {
	CharacterID int64
	AccessToken string
}

// Client is a rate-limited ESI HTTP client.
// ESI allows up to 150 error-free requests/sec; 50 concurrent
// connections keeps us well inside that with headroom for retries.
type Client struct {
	http  *http.Client
	sem   chan struct{}
	creds Credentials

	orders *orderCache
}

// NewClient creates an ESI client with rate limiting.
func NewClient(creds Credentials) *Client {
	return &Client{
		http:   &http.Client{Timeout: 30 * time.Second},
		sem:    make(chan struct{}, 50),
		creds:  creds,
		orders: newOrderCache(),
	}
}

// HealthCheck pings ESI to verify connectivity.
func (c *Client) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"/status/?datasource=tranquility", nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == 200
}

// classifyStatus turns a non-200 ESI response into a typed error.
func classifyStatus(statusCode int, body []byte) error {
	switch {
	case statusCode == 401 || statusCode == 403:
		return fmt.Errorf("%w: ESI %d: %s", ErrAuth, statusCode, string(body))
	default:
		return fmt.Errorf("%w: ESI %d: %s", ErrUnavailable, statusCode, string(body))
	}
}

func (c *Client) newRequest(ctx context.Context, url string, authed bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.creds.AccessToken)
	}
	return req, nil
}

// getJSON fetches a URL and decodes JSON into dst.
func (c *Client) getJSON(ctx context.Context, url string, authed bool, dst interface{}) error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	req, err := c.newRequest(ctx, url, authed)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return classifyStatus(resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// getPaginated fetches page 1, reads X-Pages, then fetches the
// remaining pages concurrently. decode receives each page's body; any
// failed page fails the whole fetch so partial data never looks
// complete.
func (c *Client) getPaginated(ctx context.Context, url string, authed bool, decode func(page []byte) error) error {
	body, totalPages, err := c.getPage(ctx, url, 1, authed)
	if err != nil {
		return err
	}
	if err := decode(body); err != nil {
		return err
	}
	if totalPages <= 1 {
		return nil
	}

	type pageResult struct {
		body []byte
		err  error
	}
	results := make(chan pageResult, totalPages-1)
	for p := 2; p <= totalPages; p++ {
		go func(pageNum int) {
			b, _, err := c.getPage(ctx, url, pageNum, authed)
			results <- pageResult{body: b, err: err}
		}(p)
	}

	var firstErr error
	for i := 0; i < totalPages-1; i++ {
		r := <-results
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		if firstErr == nil {
			if err := decode(r.body); err != nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (c *Client) getPage(ctx context.Context, url string, page int, authed bool) ([]byte, int, error) {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	req, err := c.newRequest(ctx, fmt.Sprintf("%s&page=%d", url, page), authed)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != 200 {
		return nil, 0, classifyStatus(resp.StatusCode, body)
	}

	totalPages := 1
	if p := resp.Header.Get("X-Pages"); p != "" {
		totalPages, _ = strconv.Atoi(p)
	}
	return body, totalPages, nil
}

// parseExpires reads the Expires header from an ESI response.
// Falls back to 5-minute TTL if header is missing or unparseable.
func parseExpires(resp *http.Response) time.Time {
	if exp := resp.Header.Get("Expires"); exp != "" {
		if t, err := time.Parse(time.RFC1123, exp); err == nil {
			return t
		}
	}
	// ESI market orders typically refresh every 5 minutes.
	return time.Now().Add(5 * time.Minute)
}
