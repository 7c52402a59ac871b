package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"horse.fit/ecmgraph/internal/nlp"
	"horse.fit/ecmgraph/internal/store"
)

type FilingStore interface {
	FilingByTicker(ctx context.Context, ticker string) (*store.Filing, error)
}

// FilingPipeline extracts from the business description (item 1) and the
// management discussion (item 7) of a company's annual filing.
type FilingPipeline struct {
	store FilingStore
	ex    extractor
}

func NewFilingPipeline(filings FilingStore, client nlp.Extractor, logger zerolog.Logger) *FilingPipeline {
	return &FilingPipeline{
		store: filings,
		ex:    extractor{client: client, logger: logger.With().Str("source", "filing").Logger()},
	}
}

func (p *FilingPipeline) Name() string { return "filing" }

// Run returns item 1 rows followed by item 7 rows. Both sections must
// extract for the filing to count.
func (p *FilingPipeline) Run(ctx context.Context, ticker string) (*Result, error) {
	filing, err := p.store.FilingByTicker(ctx, ticker)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			p.ex.logger.Info().Str("ticker", ticker).Msg("no filing found for ticker")
			return nil, fmt.Errorf("%w: %s", ErrNoFiling, ticker)
		}
		return nil, fmt.Errorf("load filing %s: %w", ticker, err)
	}

	sections := []struct {
		name string
		text string
	}{
		{name: "item1", text: filing.Item1},
		{name: "item7", text: filing.Item7},
	}

	out := &Result{}
	for _, section := range sections {
		res, err := p.ex.run(ctx, flatten(section.text), nlp.FormatPlainText, ticker, section.name)
		if err != nil {
			return nil, err
		}
		out.append(res)
	}

	p.ex.logger.Debug().
		Str("ticker", ticker).
		Int("entities", len(out.Entities)).
		Int("relations", len(out.Relations)).
		Msg("filing extracted")
	return out, nil
}

// flatten drops line breaks; filing sections are stored hard-wrapped.
func flatten(text string) string {
	return strings.ReplaceAll(text, "\n", "")
}
