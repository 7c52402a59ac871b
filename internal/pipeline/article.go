package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"horse.fit/ecmgraph/internal/nlp"
	"horse.fit/ecmgraph/internal/quote"
	"horse.fit/ecmgraph/internal/reader"
)

type NameResolver interface {
	NameForTicker(ctx context.Context, ticker string) (string, error)
}

// ArticlePipeline extracts from the encyclopedia article about a company.
type ArticlePipeline struct {
	names    NameResolver
	articles reader.ArticleSource
	ex       extractor
}

func NewArticlePipeline(names NameResolver, articles reader.ArticleSource, client nlp.Extractor, logger zerolog.Logger) *ArticlePipeline {
	return &ArticlePipeline{
		names:    names,
		articles: articles,
		ex:       extractor{client: client, logger: logger.With().Str("source", "article").Logger()},
	}
}

func (p *ArticlePipeline) Name() string { return "article" }

func (p *ArticlePipeline) Run(ctx context.Context, ticker string) (*Result, error) {
	title := p.companyName(ctx, ticker)

	text, err := p.articles.FetchArticle(ctx, title)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.ex.logger.Info().Err(err).Str("ticker", ticker).Str("title", title).Msg("no article found")
		return nil, fmt.Errorf("%w: %s: %v", ErrNoArticle, title, err)
	}

	res, err := p.ex.run(ctx, text, nlp.FormatPlainTextWithTitle, ticker, "article")
	if err != nil {
		return nil, err
	}

	p.ex.logger.Debug().
		Str("ticker", ticker).
		Str("title", title).
		Int("entities", len(res.Entities)).
		Int("relations", len(res.Relations)).
		Msg("article extracted")
	return res, nil
}

// companyName falls back to the ticker when the name cannot be resolved.
func (p *ArticlePipeline) companyName(ctx context.Context, ticker string) string {
	if p.names == nil {
		return ticker
	}
	name, err := p.names.NameForTicker(ctx, ticker)
	if err != nil || name == "" {
		if err != nil && !errors.Is(err, quote.ErrNotFound) {
			p.ex.logger.Warn().Err(err).Str("ticker", ticker).Msg("company name lookup failed")
		}
		return ticker
	}
	return name
}
