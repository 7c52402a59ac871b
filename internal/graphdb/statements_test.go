package graphdb

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v4/neo4j"
	"github.com/stretchr/testify/require"

	"horse.fit/ecmgraph/internal/kg"
)

func sampleDocument() *kg.Document {
	b := kg.NewBuilder()
	b.AddCompany(kg.NewCompany("Acme", "ACME", nil))
	b.AddCompany(kg.NewCompany("Acme", "ACME", nil))
	b.AddCountry(kg.CountryNode{Name: "France", ISO2: "FR", ISO3: "FRA", Population: 67})
	b.AddRegion(kg.RegionNode{Name: "EU"})
	b.AddIsIn(kg.IsIn{CountryName: "France", RegionName: "EU"})
	b.AddSubsidiaryOf(kg.NewCompanyPair(kg.NewCompany("BigCo", "", nil), kg.NewCompany("Acme", "", nil), kg.PairSubsidiary))
	b.AddOperatesInCountry(kg.OperatesInCountry{CompanyName: "Acme", CountryName: "France", NetSales: -12, Headcount: 4})
	return b.Document()
}

func TestStatementsSkipEmptyTypes(t *testing.T) {
	t.Parallel()

	require.Empty(t, Statements(kg.NewDocument()))
	require.Nil(t, Statements(nil))
}

func TestStatementsOrderAndShape(t *testing.T) {
	t.Parallel()

	stmts := Statements(sampleDocument())
	require.Len(t, stmts, 6)

	require.Contains(t, stmts[0].Cypher, "MERGE (n:Company {name: row.name})")
	require.Len(t, stmts[0].Rows, 2)
	require.Equal(t, "ACME", stmts[0].Rows[0]["props"].(map[string]any)["ticker_code"])
	require.Nil(t, stmts[0].Rows[0]["props"].(map[string]any)["founded_year"])

	require.Contains(t, stmts[1].Cypher, "MERGE (n:Country")
	require.Equal(t, int64(67), stmts[1].Rows[0]["props"].(map[string]any)["population"])
	require.Contains(t, stmts[2].Cypher, "MERGE (n:Region")

	sub := stmts[3]
	require.Contains(t, sub.Cypher, "MERGE (a)-[r:SUBSIDIARY_OF]->(b)")
	require.Equal(t, "BigCo", sub.Rows[0]["from"])
	require.Equal(t, "Acme", sub.Rows[0]["to"])
	require.Equal(t, "subsidiary", sub.Rows[0]["props"].(map[string]any)["type"])

	require.Contains(t, stmts[4].Cypher, "[r:OPERATES_IN_COUNTRY]")
	require.Contains(t, stmts[4].Cypher, "MERGE (b:Country {name: row.to})")
	require.Equal(t, int64(-12), stmts[4].Rows[0]["props"].(map[string]any)["net_sales"])

	require.Contains(t, stmts[5].Cypher, "MERGE (a:Country {name: row.from})")
	require.Contains(t, stmts[5].Cypher, "MERGE (b:Region {name: row.to})")

	for _, stmt := range stmts {
		require.True(t, strings.HasPrefix(stmt.Cypher, "UNWIND $rows AS row"), stmt.Cypher)
		require.Contains(t, stmt.Params(), "rows")
	}
}

func TestStatementsOmitAbsentProperties(t *testing.T) {
	t.Parallel()

	b := kg.NewBuilder()
	b.AddCompany(kg.NewCompany("Acme", "ACME", nil))
	b.AddCompany(kg.NewCompany("Acme", "", nil))
	b.AddIndustry(kg.NewIndustry("Software", kg.IndustryAttrs{SICCode: "7372"}))
	b.AddCompetesWith(kg.NewCompanyPair(kg.NewCompany("Acme", "", nil), kg.NewCompany("Globex", "", nil), ""))

	stmts := Statements(b.Document())
	require.Len(t, stmts, 3)

	companies := stmts[0].Rows
	require.Equal(t, map[string]any{"ticker_code": "ACME"}, companies[0]["props"])
	require.Empty(t, companies[1]["props"])

	require.Equal(t, map[string]any{"SIC_code": "7372"}, stmts[1].Rows[0]["props"])
	require.Empty(t, stmts[2].Rows[0]["props"])
}

type recordingTx struct {
	queries []string
	failAt  int
}

func (r *recordingTx) Run(cypher string, _ map[string]interface{}) (neo4j.Result, error) {
	r.queries = append(r.queries, cypher)
	if r.failAt > 0 && len(r.queries) == r.failAt {
		return nil, errors.New("constraint violation")
	}
	return nil, nil
}

func TestApplyRunsEveryStatement(t *testing.T) {
	t.Parallel()

	stmts := Statements(sampleDocument())
	tx := &recordingTx{}
	require.NoError(t, apply(context.Background(), tx, stmts))
	require.Len(t, tx.queries, len(stmts))
}

func TestApplyStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	stmts := Statements(sampleDocument())
	tx := &recordingTx{failAt: 2}
	err := apply(context.Background(), tx, stmts)
	require.ErrorContains(t, err, "statement 1")
	require.Len(t, tx.queries, 2)
}

func TestApplyHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tx := &recordingTx{}
	require.ErrorIs(t, apply(ctx, tx, Statements(sampleDocument())), context.Canceled)
	require.Empty(t, tx.queries)
}
