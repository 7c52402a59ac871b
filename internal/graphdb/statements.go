package graphdb

import (
	"fmt"

	"horse.fit/ecmgraph/internal/kg"
)

// Statement is one parameterised Cypher query. Rows are passed as $rows and
// unwound server-side.
type Statement struct {
	Cypher string
	Rows   []map[string]any
}

func (s Statement) Params() map[string]any {
	return map[string]any{"rows": s.Rows}
}

// Statements turns a document into MERGE statements: nodes first, then
// relationships. Nodes merge on (label {name}); relationships merge between
// name-matched endpoints, creating endpoints that were never emitted as nodes.
// Types with no records produce no statement.
func Statements(doc *kg.Document) []Statement {
	if doc == nil {
		return nil
	}
	var out []Statement
	add := func(s Statement) {
		if len(s.Rows) > 0 {
			out = append(out, s)
		}
	}

	n := doc.Nodes
	add(nodeStatement(kg.NodeCompany, rows(n.Company, func(c kg.CompanyNode) map[string]any {
		return map[string]any{"name": c.Name, "props": map[string]any{
			"ticker_code":  deref(c.TickerCode),
			"founded_year": derefInt(c.FoundedYear),
		}}
	})))
	add(nodeStatement(kg.NodeCountry, rows(n.Country, func(c kg.CountryNode) map[string]any {
		return map[string]any{"name": c.Name, "props": map[string]any{
			"source_city":        emptyAsNil(c.SourceCity),
			"iso2":               emptyAsNil(c.ISO2),
			"iso3":               emptyAsNil(c.ISO3),
			"population":         int64(c.Population),
			"gdp":                int64(c.GDP),
			"corporate_tax_rate": int64(c.CorporateTaxRate),
		}}
	})))
	add(nodeStatement(kg.NodeIndustry, rows(n.Industry, func(i kg.IndustryNode) map[string]any {
		return map[string]any{"name": i.Name, "props": map[string]any{
			"SIC_code":         deref(i.SICCode),
			"industry_group":   deref(i.IndustryGroup),
			"subindustry_desc": deref(i.SubindustryDesc),
			"primary_activity": deref(i.PrimaryActivity),
		}}
	})))
	add(nodeStatement(kg.NodeRegion, rows(n.Region, func(r kg.RegionNode) map[string]any {
		return map[string]any{"name": r.Name, "props": map[string]any{"m49": deref(r.M49)}}
	})))
	add(nodeStatement(kg.NodeProduct, rows(n.Product, func(p kg.ProductNode) map[string]any {
		return map[string]any{"name": p.Name, "props": map[string]any{}}
	})))

	r := doc.Relationships
	pair := func(p kg.CompanyPair) map[string]any {
		return edge(p.CompanyName1, p.CompanyName2, map[string]any{"type": deref(p.Type)})
	}
	add(edgeStatement(kg.RelPartnersWith, kg.NodeCompany, kg.NodeCompany, rows(r.PartnersWith, pair)))
	add(edgeStatement(kg.RelCompetesWith, kg.NodeCompany, kg.NodeCompany, rows(r.CompetesWith, pair)))
	add(edgeStatement(kg.RelSubsidiaryOf, kg.NodeCompany, kg.NodeCompany, rows(r.SubsidiaryOf, pair)))
	add(edgeStatement(kg.RelHeadquartersIn, kg.NodeCompany, kg.NodeCountry, rows(r.HeadquartersIn, func(h kg.HeadquartersIn) map[string]any {
		return edge(h.CompanyName, h.CountryName, nil)
	})))
	add(edgeStatement(kg.RelOperatesInCountry, kg.NodeCompany, kg.NodeCountry, rows(r.OperatesInCountry, func(o kg.OperatesInCountry) map[string]any {
		return edge(o.CompanyName, o.CountryName, map[string]any{"net_sales": int64(o.NetSales), "headcount": int64(o.Headcount)})
	})))
	add(edgeStatement(kg.RelIsInvolvedIn, kg.NodeCompany, kg.NodeIndustry, rows(r.IsInvolvedIn, func(i kg.IsInvolvedIn) map[string]any {
		return edge(i.CompanyName, i.IndustryName, nil)
	})))
	add(edgeStatement(kg.RelIsIn, kg.NodeCountry, kg.NodeRegion, rows(r.IsIn, func(i kg.IsIn) map[string]any {
		return edge(i.CountryName, i.RegionName, nil)
	})))
	add(edgeStatement(kg.RelOperatesInRegion, kg.NodeCompany, kg.NodeRegion, rows(r.OperatesInRegion, func(o kg.OperatesInRegion) map[string]any {
		return edge(o.CompanyName, o.RegionName, map[string]any{"net_sales": int64(o.NetSales), "headcount": int64(o.Headcount)})
	})))
	add(edgeStatement(kg.RelProduces, kg.NodeCompany, kg.NodeProduct, rows(r.Produces, func(p kg.Produces) map[string]any {
		return edge(p.CompanyName, p.ProductName, nil)
	})))

	return out
}

// Labels and relationship types come from the kg constants, never from
// document content, so interpolating them is safe.
func nodeStatement(label string, rows []map[string]any) Statement {
	return Statement{
		Cypher: fmt.Sprintf("UNWIND $rows AS row\nMERGE (n:%s {name: row.name})\nSET n += row.props", label),
		Rows:   rows,
	}
}

func edgeStatement(relType, fromLabel, toLabel string, rows []map[string]any) Statement {
	return Statement{
		Cypher: fmt.Sprintf(
			"UNWIND $rows AS row\nMERGE (a:%s {name: row.from})\nMERGE (b:%s {name: row.to})\nMERGE (a)-[r:%s]->(b)\nSET r += row.props",
			fromLabel, toLabel, relType,
		),
		Rows: rows,
	}
}

func rows[T any](records []T, fn func(T) map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		row := fn(rec)
		if props, ok := row["props"].(map[string]any); ok {
			row["props"] = compact(props)
		}
		out = append(out, row)
	}
	return out
}

// compact drops absent values so SET += never clears a property an earlier
// record with the same name already set.
func compact(props map[string]any) map[string]any {
	for key, value := range props {
		if value == nil {
			delete(props, key)
		}
	}
	return props
}

func edge(from, to string, props map[string]any) map[string]any {
	if props == nil {
		props = map[string]any{}
	}
	return map[string]any{"from": from, "to": to, "props": props}
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefInt(i *int) any {
	if i == nil {
		return nil
	}
	return int64(*i)
}

func emptyAsNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
