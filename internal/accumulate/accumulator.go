package accumulate

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"horse.fit/ecmgraph/internal/extract"
	"horse.fit/ecmgraph/internal/globaltime"
	"horse.fit/ecmgraph/internal/kg"
	"horse.fit/ecmgraph/internal/metrics"
	"horse.fit/ecmgraph/internal/pipeline"
	"horse.fit/ecmgraph/internal/quote"
	"horse.fit/ecmgraph/internal/store"
)

// PageSize is the number of companies folded per run.
const PageSize = 10

// Relationship properties understood by the accumulator. Anything else is
// ignored.
const (
	PropHeadquarters          = "headquarters"
	PropOrganizationLocations = "organization locations"
	PropIndustry              = "industry"
	PropProductType           = "product type"
	PropCompetitors           = "competitors"
	PropSuppliers             = "suppliers"
	PropSubsidiary            = "subsidiary"
)

type CompanyLister interface {
	ListCompanies(ctx context.Context, offset, limit int) ([]store.Company, error)
}

type TickerResolver interface {
	TickerForName(ctx context.Context, name string) (string, error)
}

type Options struct {
	Companies CompanyLister
	Filing    pipeline.Source
	Article   pipeline.Source
	Factory   *kg.Factory
	Tickers   TickerResolver
	Metrics   *metrics.Run
	Logger    zerolog.Logger

	// RegionsIncremental derives regions only for countries appended since
	// the previous derivation instead of for every country in the document.
	RegionsIncremental bool
}

type Accumulator struct {
	companies   CompanyLister
	sources     []pipeline.Source
	factory     *kg.Factory
	tickers     TickerResolver
	metrics     *metrics.Run
	logger      zerolog.Logger
	incremental bool
}

func New(opts Options) (*Accumulator, error) {
	if opts.Companies == nil {
		return nil, fmt.Errorf("company lister is required")
	}
	if opts.Factory == nil {
		return nil, fmt.Errorf("node factory is required")
	}
	sources := make([]pipeline.Source, 0, 2)
	for _, src := range []pipeline.Source{opts.Filing, opts.Article} {
		if src != nil {
			sources = append(sources, src)
		}
	}
	return &Accumulator{
		companies:   opts.Companies,
		sources:     sources,
		factory:     opts.Factory,
		tickers:     opts.Tickers,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		incremental: opts.RegionsIncremental,
	}, nil
}

// Generate folds one page of companies, starting at offset, into b. On error
// b keeps everything appended before the failure.
func (a *Accumulator) Generate(ctx context.Context, b *kg.Builder, offset int) error {
	if b == nil {
		return fmt.Errorf("builder is nil")
	}
	companies, err := a.companies.ListCompanies(ctx, offset, PageSize)
	if err != nil {
		return fmt.Errorf("list companies: %w", err)
	}
	if len(companies) == 0 {
		a.logger.Info().Int("offset", offset).Msg("no companies on page")
		return nil
	}

	run := &foldState{Accumulator: a, b: b}
	for _, company := range companies {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := run.company(ctx, company); err != nil {
			return fmt.Errorf("company %s: %w", company.Ticker, err)
		}
		a.metrics.CompanyProcessed()
	}

	a.metrics.ObserveDocument(b.Document().NodeCounts(), b.Document().RelationshipCounts())
	return nil
}

// foldState carries the builder and the region cursor through one Generate
// call.
type foldState struct {
	*Accumulator
	b           *kg.Builder
	regionsFrom int
}

func (s *foldState) company(ctx context.Context, company store.Company) error {
	s.logger.Info().
		Str("company", company.Name).
		Str("ticker", company.Ticker).
		Msg("processing company")

	s.b.AddCompany(kg.NewCompany(company.Name, company.Ticker, nil))

	results := make([]*pipeline.Result, 0, len(s.sources))
	for _, src := range s.sources {
		res, err := s.runSource(ctx, src, company.Ticker)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	for _, res := range results {
		if res == nil {
			continue
		}
		if err := s.foldEntities(ctx, res.Entities, company.Name); err != nil {
			return err
		}
	}
	for _, res := range results {
		if res == nil {
			continue
		}
		if err := s.foldRelations(ctx, res.Relations); err != nil {
			return err
		}
	}
	return nil
}

// runSource returns a nil result for a source that had nothing to give.
func (s *foldState) runSource(ctx context.Context, src pipeline.Source, ticker string) (*pipeline.Result, error) {
	started := globaltime.Now()
	res, err := src.Run(ctx, ticker)
	elapsed := globaltime.Since(started)

	switch {
	case err == nil:
		s.metrics.SourceFinished(src.Name(), metrics.OutcomeOK, elapsed)
		return res, nil
	case pipeline.IsSkippable(err):
		s.metrics.SourceFinished(src.Name(), metrics.OutcomeSkipped, elapsed)
		s.logger.Info().Err(err).Str("source", src.Name()).Str("ticker", ticker).Msg("source skipped")
		return nil, nil
	default:
		s.metrics.SourceFinished(src.Name(), metrics.OutcomeFailed, elapsed)
		return nil, fmt.Errorf("%s source: %w", src.Name(), err)
	}
}

func (s *foldState) foldEntities(ctx context.Context, entities []extract.ClassifiedEntity, current string) error {
	for _, entity := range entities {
		s.metrics.EntityFolded(entity.Label)

		switch entity.Label {
		case extract.LabelCompany:
			if entity.Name == current {
				continue
			}
			s.b.AddCompany(kg.NewCompany(entity.Name, s.resolveTicker(ctx, entity.Name), nil))
		case extract.LabelIndustry:
			s.b.AddIndustry(kg.NewIndustry(entity.Name, kg.IndustryAttrs{}))
		case extract.LabelCountry:
			country, err := s.factory.Country(ctx, entity.Name, false)
			if err != nil {
				return err
			}
			s.b.AddCountry(country)
		case extract.LabelLocation:
			country, err := s.factory.Country(ctx, entity.Name, true)
			if err != nil {
				return err
			}
			s.b.AddCountry(country)
		case extract.LabelProduct:
			s.b.AddProduct(kg.NewProduct(entity.Name))
		}
	}

	s.deriveRegions()
	return nil
}

// deriveRegions appends a region and an IS_IN link for countries in the
// document. Without the incremental option every country is processed again
// on each call, so repeated calls repeat earlier regions.
func (s *foldState) deriveRegions() {
	from := 0
	if s.incremental {
		from = s.regionsFrom
	}
	for _, country := range s.b.Countries(from) {
		region := s.factory.Region(country)
		s.b.AddRegion(region)
		s.b.AddIsIn(kg.NewIsIn(country, region))
	}
	s.regionsFrom = s.b.CountryCount()
}

func (s *foldState) foldRelations(ctx context.Context, relations []extract.Relation) error {
	for _, rel := range relations {
		mapped, err := s.foldRelation(ctx, rel)
		if err != nil {
			return err
		}
		s.metrics.RelationFolded(rel.Property, mapped)
	}
	return nil
}

func (s *foldState) foldRelation(ctx context.Context, rel extract.Relation) (bool, error) {
	subject := kg.NewCompany(rel.Entity, "", nil)

	switch rel.Property {
	case PropHeadquarters:
		country, err := s.factory.Country(ctx, rel.Value, true)
		if err != nil {
			return false, err
		}
		s.b.AddHeadquartersIn(kg.NewHeadquartersIn(subject, country))
	case PropOrganizationLocations:
		country, err := s.factory.Country(ctx, rel.Value, true)
		if err != nil {
			return false, err
		}
		s.b.AddOperatesInCountry(kg.NewOperatesInCountry(subject, country, s.factory.CountryOperations()))
	case PropIndustry:
		s.b.AddIsInvolvedIn(kg.NewIsInvolvedIn(subject, kg.NewIndustry(rel.Value, kg.IndustryAttrs{})))
	case PropProductType:
		s.b.AddProduces(kg.NewProduces(subject, kg.NewProduct(rel.Value)))
	case PropCompetitors:
		s.b.AddCompetesWith(kg.NewCompanyPair(subject, kg.NewCompany(rel.Value, "", nil), ""))
	case PropSuppliers:
		s.b.AddPartnersWith(kg.NewCompanyPair(subject, kg.NewCompany(rel.Value, "", nil), kg.PairSuppliers))
	case PropSubsidiary:
		// The value names the parent, which goes first.
		parent := kg.NewCompany(rel.Value, "", nil)
		s.b.AddSubsidiaryOf(kg.NewCompanyPair(parent, subject, kg.PairSubsidiary))
	default:
		return false, nil
	}
	return true, nil
}

func (s *foldState) resolveTicker(ctx context.Context, name string) string {
	if s.tickers == nil {
		return ""
	}
	ticker, err := s.tickers.TickerForName(ctx, name)
	if err != nil {
		if !errors.Is(err, quote.ErrNotFound) {
			s.logger.Warn().Err(err).Str("company", name).Msg("ticker lookup failed")
		}
		return ""
	}
	return ticker
}
