package kg

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// GeoLookup resolves place names for country and region nodes.
type GeoLookup interface {
	CityToCountry(ctx context.Context, city string) (string, error)
	CountryCodes(name string) (iso2, iso3 string, err error)
	ContinentCode(iso2 string) (string, error)
}

// NewCompany builds a company node. A blank ticker is recorded as absent;
// resolving it is the caller's job.
func NewCompany(name, ticker string, foundedYear *int) CompanyNode {
	node := CompanyNode{Name: name, FoundedYear: foundedYear}
	if t := strings.TrimSpace(ticker); t != "" {
		node.TickerCode = &t
	}
	return node
}

// IndustryAttrs holds the optional industry classification fields.
type IndustryAttrs struct {
	SICCode         string
	IndustryGroup   string
	SubindustryDesc string
	PrimaryActivity string
}

func NewIndustry(name string, attrs IndustryAttrs) IndustryNode {
	return IndustryNode{
		Name:            name,
		SICCode:         optional(attrs.SICCode),
		IndustryGroup:   optional(attrs.IndustryGroup),
		SubindustryDesc: optional(attrs.SubindustryDesc),
		PrimaryActivity: optional(attrs.PrimaryActivity),
	}
}

func NewProduct(name string) ProductNode {
	return ProductNode{Name: name}
}

// Factory builds the nodes that depend on geographic lookups and placeholder
// figures.
type Factory struct {
	geo      GeoLookup
	enricher Enricher
	logger   zerolog.Logger
}

func NewFactory(geo GeoLookup, enricher Enricher, logger zerolog.Logger) *Factory {
	if enricher == nil {
		enricher = NewPlaceholderEnricher(nil)
	}
	return &Factory{geo: geo, enricher: enricher, logger: logger}
}

// Country builds a country node. With isCity the name is first resolved to
// its country, falling back to NotFound. Lookup misses never fail; the only
// error returned is the context's.
func (f *Factory) Country(ctx context.Context, name string, isCity bool) (CountryNode, error) {
	node := CountryNode{Name: name}

	if isCity {
		node.SourceCity = name
		node.Name = NotFound
		if f.geo != nil {
			country, err := f.geo.CityToCountry(ctx, name)
			switch {
			case err == nil:
				node.Name = country
			case ctx.Err() != nil:
				return CountryNode{}, ctx.Err()
			default:
				f.logger.Debug().Err(err).Str("city", name).Msg("city could not be resolved to a country")
			}
		}
	}

	if f.geo != nil {
		iso2, iso3, err := f.geo.CountryCodes(node.Name)
		if err != nil {
			f.logger.Warn().Str("country", node.Name).Msg("country could not be mapped to iso code")
		} else {
			node.ISO2 = iso2
			node.ISO3 = iso3
		}
	}

	figures := f.enricher.CountryFigures()
	node.Population = figures.Population
	node.GDP = figures.GDP
	node.CorporateTaxRate = figures.CorporateTaxRate

	return node, nil
}

// Region derives the region of a country from its continent code.
func (f *Factory) Region(country CountryNode) RegionNode {
	if country.ISO2 == "" || f.geo == nil {
		return RegionNode{Name: NotFound}
	}
	code, err := f.geo.ContinentCode(country.ISO2)
	if err != nil {
		f.logger.Warn().Str("iso2", country.ISO2).Msg("country has no continent code")
		return RegionNode{Name: NotFound}
	}
	return RegionNode{Name: code}
}

func (f *Factory) CountryOperations() OperatingFigures {
	return f.enricher.CountryOperations()
}

func (f *Factory) RegionOperations() OperatingFigures {
	return f.enricher.RegionOperations()
}

func NewHeadquartersIn(company CompanyNode, country CountryNode) HeadquartersIn {
	return HeadquartersIn{CompanyName: company.Name, CountryName: country.Name}
}

func NewOperatesInCountry(company CompanyNode, country CountryNode, figures OperatingFigures) OperatesInCountry {
	return OperatesInCountry{
		CompanyName: company.Name,
		CountryName: country.Name,
		NetSales:    figures.NetSales,
		Headcount:   figures.Headcount,
	}
}

func NewOperatesInRegion(company CompanyNode, region RegionNode, figures OperatingFigures) OperatesInRegion {
	return OperatesInRegion{
		CompanyName: company.Name,
		RegionName:  region.Name,
		NetSales:    figures.NetSales,
		Headcount:   figures.Headcount,
	}
}

func NewIsIn(country CountryNode, region RegionNode) IsIn {
	return IsIn{CountryName: country.Name, RegionName: region.Name}
}

func NewIsInvolvedIn(company CompanyNode, industry IndustryNode) IsInvolvedIn {
	return IsInvolvedIn{CompanyName: company.Name, IndustryName: industry.Name}
}

func NewProduces(company CompanyNode, product ProductNode) Produces {
	return Produces{CompanyName: company.Name, ProductName: product.Name}
}

// NewCompanyPair links two companies in the given order. An empty kind is
// recorded as a null type.
func NewCompanyPair(first, second CompanyNode, kind string) CompanyPair {
	return CompanyPair{
		CompanyName1: first.Name,
		CompanyName2: second.Name,
		Type:         optional(kind),
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
