package accumulate

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"horse.fit/ecmgraph/internal/extract"
	"horse.fit/ecmgraph/internal/kg"
	"horse.fit/ecmgraph/internal/metrics"
	"horse.fit/ecmgraph/internal/pipeline"
	"horse.fit/ecmgraph/internal/quote"
	"horse.fit/ecmgraph/internal/store"
)

type stubLister struct {
	companies []store.Company
	gotOffset int
	gotLimit  int
}

func (s *stubLister) ListCompanies(_ context.Context, offset, limit int) ([]store.Company, error) {
	s.gotOffset, s.gotLimit = offset, limit
	if offset >= len(s.companies) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.companies) {
		end = len(s.companies)
	}
	return s.companies[offset:end], nil
}

type stubSource struct {
	name    string
	results map[string]*pipeline.Result
	errs    map[string]error
	calls   []string
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Run(_ context.Context, ticker string) (*pipeline.Result, error) {
	s.calls = append(s.calls, ticker)
	if err, ok := s.errs[ticker]; ok {
		return nil, err
	}
	if res, ok := s.results[ticker]; ok {
		return res, nil
	}
	return nil, fmt.Errorf("%w: %s", pipeline.ErrNoFiling, ticker)
}

type stubGeo struct{}

func (stubGeo) CityToCountry(_ context.Context, city string) (string, error) {
	switch city {
	case "Paris":
		return "France", nil
	case "Cupertino":
		return "United States", nil
	}
	return "", errors.New("unknown city")
}

func (stubGeo) CountryCodes(name string) (string, string, error) {
	switch name {
	case "France":
		return "FR", "FRA", nil
	case "Japan":
		return "JP", "JPN", nil
	case "United States":
		return "US", "USA", nil
	}
	return "", "", errors.New("unknown country")
}

func (stubGeo) ContinentCode(iso2 string) (string, error) {
	switch iso2 {
	case "FR":
		return "EU", nil
	case "JP":
		return "AS", nil
	case "US":
		return "NA", nil
	}
	return "", errors.New("unknown")
}

type fixedEnricher struct{}

func (fixedEnricher) CountryFigures() kg.CountryFigures {
	return kg.CountryFigures{Population: 10, GDP: 20, CorporateTaxRate: 30}
}
func (fixedEnricher) CountryOperations() kg.OperatingFigures {
	return kg.OperatingFigures{NetSales: 100, Headcount: 5}
}
func (fixedEnricher) RegionOperations() kg.OperatingFigures {
	return kg.OperatingFigures{NetSales: 200, Headcount: 500}
}

type stubTickers map[string]string

func (s stubTickers) TickerForName(_ context.Context, name string) (string, error) {
	if ticker, ok := s[name]; ok {
		return ticker, nil
	}
	return "", quote.ErrNotFound
}

func newAccumulator(t *testing.T, lister CompanyLister, filing, article pipeline.Source, incremental bool) *Accumulator {
	t.Helper()
	acc, err := New(Options{
		Companies:          lister,
		Filing:             filing,
		Article:            article,
		Factory:            kg.NewFactory(stubGeo{}, fixedEnricher{}, zerolog.Nop()),
		Tickers:            stubTickers{"Globex": "GBX"},
		Metrics:            metrics.NewRun(),
		Logger:             zerolog.Nop(),
		RegionsIncremental: incremental,
	})
	require.NoError(t, err)
	return acc
}

func TestGenerateEmptyPageLeavesDocumentUnchanged(t *testing.T) {
	t.Parallel()

	filing := &stubSource{name: "filing"}
	acc := newAccumulator(t, &stubLister{}, filing, nil, false)

	b := kg.NewBuilder()
	require.NoError(t, acc.Generate(context.Background(), b, 40))

	require.True(t, reflect.DeepEqual(kg.NewDocument(), b.Document()))
	require.Empty(t, filing.calls)
}

func TestGeneratePagesByOffset(t *testing.T) {
	t.Parallel()

	companies := make([]store.Company, 0, 25)
	for i := 0; i < 25; i++ {
		companies = append(companies, store.Company{Name: fmt.Sprintf("Company %02d", i), Ticker: fmt.Sprintf("T%02d", i)})
	}
	lister := &stubLister{companies: companies}
	filing := &stubSource{name: "filing"}
	acc := newAccumulator(t, lister, filing, nil, false)

	b := kg.NewBuilder()
	require.NoError(t, acc.Generate(context.Background(), b, 20))

	require.Equal(t, 20, lister.gotOffset)
	require.Equal(t, PageSize, lister.gotLimit)
	require.Equal(t, []string{"T20", "T21", "T22", "T23", "T24"}, filing.calls)
	require.Len(t, b.Document().Nodes.Company, 5)
	require.Equal(t, "T20", *b.Document().Nodes.Company[0].TickerCode)
}

func TestGenerateFoldsEntitiesAndRelations(t *testing.T) {
	t.Parallel()

	lister := &stubLister{companies: []store.Company{{Name: "Acme", Ticker: "ACME"}}}
	filing := &stubSource{name: "filing", results: map[string]*pipeline.Result{
		"ACME": {
			Entities: []extract.ClassifiedEntity{
				{Name: "Acme", Salience: 0.9, Label: extract.LabelCompany},
				{Name: "Globex", Salience: 0.8, Label: extract.LabelCompany},
				{Name: "France", Salience: 0.7, Label: extract.LabelCountry},
				{Name: "semiconductor industry", Salience: 0.6, Label: extract.LabelIndustry},
				{Name: "Mystery", Salience: 0.6, Label: "person"},
			},
			Relations: []extract.Relation{
				{Entity: "Acme", Property: PropHeadquarters, Value: "Cupertino"},
				{Entity: "Acme", Property: PropSubsidiary, Value: "BigCo"},
				{Entity: "Acme", Property: "founded by", Value: "Someone"},
			},
		},
	}}
	article := &stubSource{name: "article", results: map[string]*pipeline.Result{
		"ACME": {
			Entities: []extract.ClassifiedEntity{
				{Name: "Paris", Salience: 0.7, Label: extract.LabelLocation},
				{Name: "Widget", Salience: 0.7, Label: extract.LabelProduct},
			},
			Relations: []extract.Relation{
				{Entity: "Acme", Property: PropOrganizationLocations, Value: "Paris"},
				{Entity: "Acme", Property: PropSuppliers, Value: "Initech"},
				{Entity: "Acme", Property: PropCompetitors, Value: "Globex"},
				{Entity: "Acme", Property: PropIndustry, Value: "semiconductors"},
				{Entity: "Acme", Property: PropProductType, Value: "Widget"},
			},
		},
	}}

	acc := newAccumulator(t, lister, filing, article, false)
	b := kg.NewBuilder()
	require.NoError(t, acc.Generate(context.Background(), b, 0))
	doc := b.Document()

	// Own node first, self-mention skipped, other company resolved.
	require.Len(t, doc.Nodes.Company, 2)
	require.Equal(t, "Acme", doc.Nodes.Company[0].Name)
	require.Equal(t, "Globex", doc.Nodes.Company[1].Name)
	require.Equal(t, "GBX", *doc.Nodes.Company[1].TickerCode)

	require.Len(t, doc.Nodes.Industry, 1)
	require.Len(t, doc.Nodes.Product, 1)

	require.Len(t, doc.Nodes.Country, 2)
	require.Equal(t, "France", doc.Nodes.Country[0].Name)
	require.Equal(t, "", doc.Nodes.Country[0].SourceCity)
	require.Equal(t, "France", doc.Nodes.Country[1].Name)
	require.Equal(t, "Paris", doc.Nodes.Country[1].SourceCity)

	// Filing fold derives one region, the article fold derives both again.
	require.Len(t, doc.Nodes.Region, 3)
	require.Len(t, doc.Relationships.IsIn, 3)
	for _, region := range doc.Nodes.Region {
		require.Equal(t, "EU", region.Name)
	}

	require.Equal(t, []kg.HeadquartersIn{{CompanyName: "Acme", CountryName: "United States"}}, doc.Relationships.HeadquartersIn)

	require.Len(t, doc.Relationships.SubsidiaryOf, 1)
	sub := doc.Relationships.SubsidiaryOf[0]
	require.Equal(t, "BigCo", sub.CompanyName1)
	require.Equal(t, "Acme", sub.CompanyName2)
	require.Equal(t, kg.PairSubsidiary, *sub.Type)

	require.Equal(t, []kg.OperatesInCountry{{CompanyName: "Acme", CountryName: "France", NetSales: 100, Headcount: 5}}, doc.Relationships.OperatesInCountry)

	require.Len(t, doc.Relationships.PartnersWith, 1)
	require.Equal(t, kg.PairSuppliers, *doc.Relationships.PartnersWith[0].Type)
	require.Len(t, doc.Relationships.CompetesWith, 1)
	require.Nil(t, doc.Relationships.CompetesWith[0].Type)

	require.Equal(t, []kg.IsInvolvedIn{{CompanyName: "Acme", IndustryName: "semiconductors"}}, doc.Relationships.IsInvolvedIn)
	require.Equal(t, []kg.Produces{{CompanyName: "Acme", ProductName: "Widget"}}, doc.Relationships.Produces)
	require.Empty(t, doc.Relationships.OperatesInRegion)
}

func TestGenerateIncrementalRegions(t *testing.T) {
	t.Parallel()

	lister := &stubLister{companies: []store.Company{{Name: "Acme", Ticker: "ACME"}, {Name: "Beta", Ticker: "BETA"}}}
	filing := &stubSource{name: "filing", results: map[string]*pipeline.Result{
		"ACME": {Entities: []extract.ClassifiedEntity{{Name: "France", Salience: 0.9, Label: extract.LabelCountry}}},
		"BETA": {Entities: []extract.ClassifiedEntity{{Name: "Japan", Salience: 0.9, Label: extract.LabelCountry}}},
	}}

	acc := newAccumulator(t, lister, filing, nil, true)
	b := kg.NewBuilder()
	require.NoError(t, acc.Generate(context.Background(), b, 0))

	doc := b.Document()
	require.Equal(t, []kg.RegionNode{{Name: "EU"}, {Name: "AS"}}, doc.Nodes.Region)
	require.Equal(t, []kg.IsIn{{CountryName: "France", RegionName: "EU"}, {CountryName: "Japan", RegionName: "AS"}}, doc.Relationships.IsIn)
}

func TestGenerateFullRegionRederivation(t *testing.T) {
	t.Parallel()

	lister := &stubLister{companies: []store.Company{{Name: "Acme", Ticker: "ACME"}, {Name: "Beta", Ticker: "BETA"}}}
	filing := &stubSource{name: "filing", results: map[string]*pipeline.Result{
		"ACME": {Entities: []extract.ClassifiedEntity{{Name: "France", Salience: 0.9, Label: extract.LabelCountry}}},
		"BETA": {Entities: []extract.ClassifiedEntity{{Name: "Atlantis", Salience: 0.9, Label: extract.LabelCountry}}},
	}}

	acc := newAccumulator(t, lister, filing, nil, false)
	b := kg.NewBuilder()
	require.NoError(t, acc.Generate(context.Background(), b, 0))

	doc := b.Document()
	require.Equal(t, []kg.RegionNode{{Name: "EU"}, {Name: "EU"}, {Name: kg.NotFound}}, doc.Nodes.Region)
	require.Len(t, doc.Relationships.IsIn, 3)
}

func TestGenerateSkipsFailedSourceAndContinues(t *testing.T) {
	t.Parallel()

	lister := &stubLister{companies: []store.Company{{Name: "Acme", Ticker: "ACME"}, {Name: "Beta", Ticker: "BETA"}}}
	filing := &stubSource{
		name: "filing",
		errs: map[string]error{"ACME": fmt.Errorf("%w: quota", pipeline.ErrExtraction)},
		results: map[string]*pipeline.Result{
			"BETA": {Entities: []extract.ClassifiedEntity{{Name: "Widget", Salience: 0.9, Label: extract.LabelProduct}}},
		},
	}

	acc := newAccumulator(t, lister, filing, nil, false)
	b := kg.NewBuilder()
	require.NoError(t, acc.Generate(context.Background(), b, 0))

	doc := b.Document()
	require.Len(t, doc.Nodes.Company, 2)
	require.Equal(t, []kg.ProductNode{{Name: "Widget"}}, doc.Nodes.Product)
}

func TestGenerateFatalErrorKeepsPartialDocument(t *testing.T) {
	t.Parallel()

	lister := &stubLister{companies: []store.Company{{Name: "Acme", Ticker: "ACME"}, {Name: "Beta", Ticker: "BETA"}}}
	boom := errors.New("database is locked")
	filing := &stubSource{
		name: "filing",
		errs: map[string]error{"BETA": boom},
		results: map[string]*pipeline.Result{
			"ACME": {Entities: []extract.ClassifiedEntity{{Name: "Widget", Salience: 0.9, Label: extract.LabelProduct}}},
		},
	}

	acc := newAccumulator(t, lister, filing, nil, false)
	b := kg.NewBuilder()
	err := acc.Generate(context.Background(), b, 0)
	require.ErrorIs(t, err, boom)

	doc := b.Document()
	require.Len(t, doc.Nodes.Company, 2)
	require.Len(t, doc.Nodes.Product, 1)
}

func TestGenerateCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lister := &stubLister{companies: []store.Company{{Name: "Acme", Ticker: "ACME"}}}
	acc := newAccumulator(t, lister, &stubSource{name: "filing"}, nil, false)

	err := acc.Generate(ctx, kg.NewBuilder(), 0)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewRequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Factory: kg.NewFactory(nil, nil, zerolog.Nop())})
	require.Error(t, err)

	_, err = New(Options{Companies: &stubLister{}})
	require.Error(t, err)
}
