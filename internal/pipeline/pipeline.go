package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"horse.fit/ecmgraph/internal/extract"
	"horse.fit/ecmgraph/internal/langdetect"
	"horse.fit/ecmgraph/internal/nlp"
)

// A source that produced nothing for a company reports one of these. The
// caller skips that source and moves on.
var (
	ErrNoFiling   = errors.New("no filing for ticker")
	ErrNoArticle  = errors.New("no article for company")
	ErrExtraction = errors.New("extraction failed")
)

const quotaHint = "extraction service rejected the request; the plan allows a fixed number of calls per month"

// Result is what one source contributed for a company, in extraction order.
type Result struct {
	Entities  []extract.ClassifiedEntity
	Relations []extract.Relation
}

func (r *Result) append(other *Result) {
	r.Entities = append(r.Entities, other.Entities...)
	r.Relations = append(r.Relations, other.Relations...)
}

// Source is implemented by both pipelines.
type Source interface {
	Name() string
	Run(ctx context.Context, ticker string) (*Result, error)
}

// IsSkippable reports whether err only means the source had nothing to give.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrNoFiling) || errors.Is(err, ErrNoArticle) || errors.Is(err, ErrExtraction)
}

type extractor struct {
	client nlp.Extractor
	logger zerolog.Logger
}

// run submits one text, then classifies and maps the response.
func (e extractor) run(ctx context.Context, content, format, ticker, section string) (*Result, error) {
	req := nlp.Request{
		Content: content,
		Lang:    langdetect.RequestLanguage(content, nlp.DefaultLang),
		Format:  format,
	}

	resp, err := e.client.Extract(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn().
			Err(err).
			Str("ticker", ticker).
			Str("section", section).
			Msg(quotaHint)
		return nil, fmt.Errorf("%w: %s %s: %v", ErrExtraction, ticker, section, err)
	}

	return &Result{
		Entities:  extract.Classify(resp.Entities),
		Relations: extract.MapFacts(resp.Facts),
	}, nil
}
