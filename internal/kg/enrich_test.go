package kg

import (
	"math/rand/v2"
	"testing"
)

func TestPlaceholderEnricherStaysInRange(t *testing.T) {
	t.Parallel()

	e := NewPlaceholderEnricher(rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 500; i++ {
		c := e.CountryFigures()
		if c.Population < PopulationMin || c.Population > PopulationMax {
			t.Fatalf("population out of range: %d", c.Population)
		}
		if c.GDP < GDPMin || c.GDP > GDPMax {
			t.Fatalf("gdp out of range: %d", c.GDP)
		}
		if c.CorporateTaxRate < CorporateTaxRateMin || c.CorporateTaxRate > CorporateTaxRateMax {
			t.Fatalf("tax rate out of range: %d", c.CorporateTaxRate)
		}

		co := e.CountryOperations()
		if co.NetSales < NetSalesMin || co.NetSales > NetSalesMax {
			t.Fatalf("net sales out of range: %d", co.NetSales)
		}
		if co.Headcount < CountryHeadcountMin || co.Headcount > CountryHeadcountMax {
			t.Fatalf("country headcount out of range: %d", co.Headcount)
		}

		ro := e.RegionOperations()
		if ro.Headcount < RegionHeadcountMin || ro.Headcount > RegionHeadcountMax {
			t.Fatalf("region headcount out of range: %d", ro.Headcount)
		}
	}
}

func TestPlaceholderEnricherNilSource(t *testing.T) {
	t.Parallel()

	var e *PlaceholderEnricher
	got := e.CountryFigures()
	if got.Population < PopulationMin || got.Population > PopulationMax {
		t.Fatalf("population out of range: %d", got.Population)
	}
}
