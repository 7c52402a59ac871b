package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"horse.fit/ecmgraph/internal/language"
)

const (
	FormatPlainText          = "plain text"
	FormatPlainTextWithTitle = "plain text with title"

	DefaultHost   = "nl.diffbot.com"
	DefaultFields = "entities,facts"
	DefaultLang   = "en"

	maxErrorExcerpt = 512
)

// ErrMalformedResponse covers every response the extraction service returns
// that cannot be read as entities and facts. A quota-exhausted account is the
// usual cause.
var ErrMalformedResponse = errors.New("malformed extraction response")

// Extractor submits text to the entity/relationship extraction service.
type Extractor interface {
	Extract(ctx context.Context, req Request) (*Response, error)
}

type Request struct {
	Content string `json:"content"`
	Lang    string `json:"lang"`
	Format  string `json:"format"`
}

type TypeTag struct {
	Name string `json:"name"`
}

type Entity struct {
	Name     string    `json:"name"`
	Salience float64   `json:"salience"`
	AllTypes []TypeTag `json:"allTypes"`
}

type Ref struct {
	Name string `json:"name"`
}

type Evidence struct {
	Passage string `json:"passage"`
}

type Fact struct {
	Entity   Ref        `json:"entity"`
	Property Ref        `json:"property"`
	Value    Ref        `json:"value"`
	Evidence []Evidence `json:"evidence"`
}

type Response struct {
	Entities []Entity `json:"entities"`
	Facts    []Fact   `json:"facts"`
}

// ClientOptions configures the HTTP client for the extraction service.
type ClientOptions struct {
	Host       string
	Fields     string
	Token      string
	Scheme     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client calls the Diffbot natural language endpoint.
type Client struct {
	endpoint string
	client   *http.Client
}

func NewClient(opts ClientOptions) (*Client, error) {
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return nil, fmt.Errorf("extraction token is required")
	}
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = DefaultHost
	}
	fields := strings.TrimSpace(opts.Fields)
	if fields == "" {
		fields = DefaultFields
	}
	scheme := strings.TrimSpace(opts.Scheme)
	if scheme == "" {
		scheme = "https"
	}

	endpoint := url.URL{
		Scheme: scheme,
		Host:   host,
		Path:   "/v1/",
	}
	query := url.Values{}
	query.Set("fields", fields)
	query.Set("token", token)
	endpoint.RawQuery = query.Encode()

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Client{endpoint: endpoint.String(), client: client}, nil
}

func (c *Client) Extract(ctx context.Context, req Request) (*Response, error) {
	if c == nil {
		return nil, fmt.Errorf("extraction client is nil")
	}
	req.Lang = language.Code(req.Lang)
	if req.Lang == "" {
		req.Lang = DefaultLang
	}
	if strings.TrimSpace(req.Format) == "" {
		req.Format = FormatPlainText
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal extraction request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build extraction request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send extraction request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read extraction response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrMalformedResponse, resp.StatusCode, excerpt(respBody))
	}

	return DecodeResponse(respBody)
}

// DecodeResponse checks the shape of a raw service response before decoding
// it. Any missing or mistyped field the pipeline depends on is reported as
// ErrMalformedResponse.
func DecodeResponse(raw []byte) (*Response, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid JSON: %s", ErrMalformedResponse, excerpt(raw))
	}

	entities := gjson.GetBytes(raw, "entities")
	if !entities.IsArray() {
		return nil, fmt.Errorf("%w: entities missing: %s", ErrMalformedResponse, excerpt(raw))
	}
	facts := gjson.GetBytes(raw, "facts")
	if !facts.IsArray() {
		return nil, fmt.Errorf("%w: facts missing: %s", ErrMalformedResponse, excerpt(raw))
	}

	var shapeErr error
	entities.ForEach(func(key, entity gjson.Result) bool {
		if entity.Get("name").Type != gjson.String {
			shapeErr = fmt.Errorf("%w: entities[%d].name missing", ErrMalformedResponse, key.Int())
			return false
		}
		if entity.Get("salience").Type != gjson.Number {
			shapeErr = fmt.Errorf("%w: entities[%d].salience missing", ErrMalformedResponse, key.Int())
			return false
		}
		if types := entity.Get("allTypes"); types.Exists() && !types.IsArray() {
			shapeErr = fmt.Errorf("%w: entities[%d].allTypes is not an array", ErrMalformedResponse, key.Int())
			return false
		}
		return true
	})
	if shapeErr != nil {
		return nil, shapeErr
	}

	facts.ForEach(func(key, fact gjson.Result) bool {
		for _, field := range []string{"entity.name", "property.name", "value.name"} {
			if fact.Get(field).Type != gjson.String {
				shapeErr = fmt.Errorf("%w: facts[%d].%s missing", ErrMalformedResponse, key.Int(), field)
				return false
			}
		}
		if evidence := fact.Get("evidence"); evidence.Exists() && !evidence.IsArray() {
			shapeErr = fmt.Errorf("%w: facts[%d].evidence is not an array", ErrMalformedResponse, key.Int())
			return false
		}
		return true
	})
	if shapeErr != nil {
		return nil, shapeErr
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMalformedResponse, err)
	}
	return &out, nil
}

func excerpt(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > maxErrorExcerpt {
		return text[:maxErrorExcerpt] + "..."
	}
	return text
}
