package kg

import "math/rand/v2"

// CountryFigures are placeholder country attributes.
type CountryFigures struct {
	Population       int // millions
	GDP              int // billions
	CorporateTaxRate int // percent
}

// OperatingFigures are placeholder net sales and headcount for an
// OPERATES_IN_* relationship.
type OperatingFigures struct {
	NetSales  int
	Headcount int
}

// Enricher supplies the synthetic numeric attributes attached to countries
// and operating relationships. Nothing it returns is real data.
type Enricher interface {
	CountryFigures() CountryFigures
	CountryOperations() OperatingFigures
	RegionOperations() OperatingFigures
}

// Placeholder ranges, inclusive.
const (
	PopulationMin       = 5
	PopulationMax       = 1400
	GDPMin              = 1
	GDPMax              = 20000
	CorporateTaxRateMin = 10
	CorporateTaxRateMax = 50
	NetSalesMin         = -30000000
	NetSalesMax         = 30000000
	CountryHeadcountMin = 1
	CountryHeadcountMax = 10000
	RegionHeadcountMin  = 100
	RegionHeadcountMax  = 1000000
)

// PlaceholderEnricher draws every figure uniformly from the fixed ranges.
type PlaceholderEnricher struct {
	rng *rand.Rand
}

// NewPlaceholderEnricher uses rng when given, otherwise the global source.
func NewPlaceholderEnricher(rng *rand.Rand) *PlaceholderEnricher {
	return &PlaceholderEnricher{rng: rng}
}

func (e *PlaceholderEnricher) CountryFigures() CountryFigures {
	return CountryFigures{
		Population:       e.between(PopulationMin, PopulationMax),
		GDP:              e.between(GDPMin, GDPMax),
		CorporateTaxRate: e.between(CorporateTaxRateMin, CorporateTaxRateMax),
	}
}

func (e *PlaceholderEnricher) CountryOperations() OperatingFigures {
	return OperatingFigures{
		NetSales:  e.between(NetSalesMin, NetSalesMax),
		Headcount: e.between(CountryHeadcountMin, CountryHeadcountMax),
	}
}

func (e *PlaceholderEnricher) RegionOperations() OperatingFigures {
	return OperatingFigures{
		NetSales:  e.between(NetSalesMin, NetSalesMax),
		Headcount: e.between(RegionHeadcountMin, RegionHeadcountMax),
	}
}

func (e *PlaceholderEnricher) between(lo, hi int) int {
	span := hi - lo + 1
	if e == nil || e.rng == nil {
		return lo + rand.IntN(span)
	}
	return lo + e.rng.IntN(span)
}
