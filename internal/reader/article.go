package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultBaseURL       = "https://en.wikipedia.org/wiki/"
	DefaultFetchTimeout  = 30 * time.Second
	DefaultBodyByteLimit = 4 * 1024 * 1024

	defaultUserAgent = "ecmgraph-reader/1.0 (+https://horse.fit/ecmgraph)"
)

// ErrNotFound means no article exists under the requested title.
var ErrNotFound = errors.New("article not found")

// Options controls HTTP behavior for article fetching.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	BodyByteLimit int64
	UserAgent     string
	HTTPClient    *http.Client
}

// ArticleSource returns the full text of the article about a company.
type ArticleSource interface {
	FetchArticle(ctx context.Context, title string) (string, error)
}

// Fetcher reads encyclopedia articles by title.
type Fetcher struct {
	baseURL   string
	timeout   time.Duration
	bodyLimit int64
	userAgent string
	client    *http.Client
}

func NewFetcher(opts Options) *Fetcher {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	bodyLimit := opts.BodyByteLimit
	if bodyLimit <= 0 {
		bodyLimit = DefaultBodyByteLimit
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{
		baseURL:   base,
		timeout:   timeout,
		bodyLimit: bodyLimit,
		userAgent: userAgent,
		client:    client,
	}
}

// FetchArticle returns "<heading> <paragraphs>" where paragraphs are the
// non-empty body paragraphs joined by blank lines. Pages without the usual
// article markup go through readability instead.
func (f *Fetcher) FetchArticle(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrNotFound
	}
	pageURL, err := url.Parse(f.baseURL + url.PathEscape(strings.ReplaceAll(title, " ", "_")))
	if err != nil {
		return "", fmt.Errorf("build article url: %w", err)
	}

	body, err := f.fetch(ctx, pageURL.String())
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse article: %w", err)
	}

	heading := strings.TrimSpace(doc.Find("h1#firstHeading").First().Text())
	paragraphs := make([]string, 0, 32)
	doc.Find("div#mw-content-text p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if heading != "" && len(paragraphs) > 0 {
		return heading + " " + strings.Join(paragraphs, "\n\n"), nil
	}

	text, err := readableText(body, pageURL)
	if err != nil {
		return "", err
	}
	if heading == "" {
		heading = title
	}
	return heading + " " + text, nil
}

func (f *Fetcher) fetch(ctx context.Context, page string) ([]byte, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, page, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.bodyLimit))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func readableText(body []byte, pageURL *url.URL) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", fmt.Errorf("readability parse: %w", err)
	}

	var rendered bytes.Buffer
	if err := article.RenderText(&rendered); err != nil {
		return "", fmt.Errorf("render readability text: %w", err)
	}

	text := CleanText(rendered.String())
	if text == "" {
		text = CleanText(article.Excerpt())
	}
	if text == "" {
		return "", ErrNotFound
	}
	return text, nil
}

// CleanText normalizes line endings and collapses extra in-line whitespace.
func CleanText(raw string) string {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	lines := strings.Split(normalized, "\n")
	paragraphs := make([]string, 0, len(lines))
	for _, line := range lines {
		clean := strings.Join(strings.Fields(strings.TrimSpace(line)), " ")
		if clean == "" {
			continue
		}
		paragraphs = append(paragraphs, clean)
	}

	return strings.TrimSpace(strings.Join(paragraphs, "\n\n"))
}
