package geo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/biter777/countries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultSearchURL = "https://www.geonames.org/search.html"

	defaultUserAgent = "ecmgraph-geo/1.0"
)

var ErrNotFound = errors.New("geo: not found")

type Options struct {
	SearchURL  string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Resolver answers city, country and continent questions. City lookups scrape
// the geonames search page; the other two are offline.
type Resolver struct {
	searchURL string
	userAgent string
	client    *http.Client
	title     cases.Caser
}

func NewResolver(opts Options) *Resolver {
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
	return &Resolver{
		searchURL: searchURL,
		userAgent: userAgent,
		client:    client,
		title:     cases.Title(language.English),
	}
}

// CityToCountry returns the country of the first result of a place search,
// derived from the "/countries/<slug>.html" link the result page carries.
func (r *Resolver) CityToCountry(ctx context.Context, city string) (string, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return "", ErrNotFound
	}

	endpoint, err := url.Parse(r.searchURL)
	if err != nil {
		return "", fmt.Errorf("parse search url: %w", err)
	}
	query := endpoint.Query()
	query.Set("q", city)
	query.Set("country", "")
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search city: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("search city: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse search page: %w", err)
	}

	var slug string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		slug = countrySlug(href)
		return slug == ""
	})
	if slug == "" {
		return "", ErrNotFound
	}

	return r.title.String(strings.ReplaceAll(slug, "-", " ")), nil
}

// CountryCodes maps a country name to its alpha-2 and alpha-3 codes.
func (r *Resolver) CountryCodes(name string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", ErrNotFound
	}
	code := countries.ByName(name)
	if code == countries.Unknown {
		return "", "", fmt.Errorf("%w: country %q", ErrNotFound, name)
	}
	return code.Alpha2(), code.Alpha3(), nil
}

// ContinentCode maps an alpha-2 code to one of AF, AN, AS, EU, NA, OC, SA.
func (r *Resolver) ContinentCode(iso2 string) (string, error) {
	code, ok := continentByAlpha2[strings.ToUpper(strings.TrimSpace(iso2))]
	if !ok {
		return "", fmt.Errorf("%w: continent for %q", ErrNotFound, iso2)
	}
	return code, nil
}

func countrySlug(href string) string {
	idx := strings.Index(href, "/countries/")
	if idx < 0 {
		return ""
	}
	rest := href[idx+len("/countries/"):]
	if !strings.HasSuffix(rest, ".html") {
		return ""
	}
	// Links look like /countries/FR/france.html.
	return strings.TrimSpace(strings.TrimSuffix(path.Base(rest), ".html"))
}
