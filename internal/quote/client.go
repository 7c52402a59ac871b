package quote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DefaultSearchURL = "https://query2.finance.yahoo.com/v1/finance/search"

	defaultUserAgent = "Mozilla/5.0 (compatible; ecmgraph/1.0)"
)

var ErrNotFound = errors.New("quote: not found")

// Lookup resolves between company names and ticker symbols.
type Lookup interface {
	TickerForName(ctx context.Context, name string) (string, error)
	NameForTicker(ctx context.Context, ticker string) (string, error)
}

type Options struct {
	SearchURL  string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client queries the finance search endpoint. Answers and ErrNotFound misses
// are remembered for the life of the client; other failures are retried on
// the next lookup.
type Client struct {
	searchURL string
	userAgent string
	client    *http.Client

	mu      sync.Mutex
	tickers map[string]result
	names   map[string]result
}

type result struct {
	value string
	err   error
}

func NewClient(opts Options) *Client {
	searchURL := strings.TrimSpace(opts.SearchURL)
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		searchURL: searchURL,
		userAgent: userAgent,
		client:    client,
		tickers:   map[string]result{},
		names:     map[string]result{},
	}
}

// TickerForName returns the symbol of the first equity quote matching name.
func (c *Client) TickerForName(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNotFound
	}
	return c.memo(c.tickers, strings.ToLower(name), func() (string, error) {
		quotes, err := c.search(ctx, name)
		if err != nil {
			return "", err
		}
		var symbol string
		quotes.ForEach(func(_, q gjson.Result) bool {
			if s := strings.TrimSpace(q.Get("symbol").String()); s != "" && isEquity(q) {
				symbol = s
				return false
			}
			return true
		})
		if symbol == "" {
			return "", fmt.Errorf("%w: ticker for %q", ErrNotFound, name)
		}
		return symbol, nil
	})
}

// NameForTicker returns the long name (or short name) of the quote whose
// symbol equals ticker.
func (c *Client) NameForTicker(ctx context.Context, ticker string) (string, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return "", ErrNotFound
	}
	return c.memo(c.names, strings.ToUpper(ticker), func() (string, error) {
		quotes, err := c.search(ctx, ticker)
		if err != nil {
			return "", err
		}
		var name string
		quotes.ForEach(func(_, q gjson.Result) bool {
			if !strings.EqualFold(q.Get("symbol").String(), ticker) {
				return true
			}
			name = strings.TrimSpace(q.Get("longname").String())
			if name == "" {
				name = strings.TrimSpace(q.Get("shortname").String())
			}
			return false
		})
		if name == "" {
			return "", fmt.Errorf("%w: name for %q", ErrNotFound, ticker)
		}
		return name, nil
	})
}

// memo runs fetch once per key. Only values and ErrNotFound misses are
// remembered.
func (c *Client) memo(cache map[string]result, key string, fetch func() (string, error)) (string, error) {
	c.mu.Lock()
	if hit, ok := cache[key]; ok {
		c.mu.Unlock()
		return hit.value, hit.err
	}
	c.mu.Unlock()

	value, err := fetch()
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}

	c.mu.Lock()
	cache[key] = result{value: value, err: err}
	c.mu.Unlock()
	return value, err
}

func (c *Client) search(ctx context.Context, q string) (gjson.Result, error) {
	endpoint, err := url.Parse(c.searchURL)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("parse search url: %w", err)
	}
	query := endpoint.Query()
	query.Set("q", q)
	query.Set("quotesCount", "5")
	query.Set("newsCount", "0")
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("build quote request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("quote search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read quote response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, fmt.Errorf("quote search: status %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("quote search: invalid JSON")
	}

	quotes := gjson.GetBytes(body, "quotes")
	if !quotes.IsArray() {
		return gjson.Result{}, fmt.Errorf("%w: no quotes for %q", ErrNotFound, q)
	}
	return quotes, nil
}

func isEquity(q gjson.Result) bool {
	kind := q.Get("quoteType")
	return !kind.Exists() || strings.EqualFold(kind.String(), "EQUITY")
}
