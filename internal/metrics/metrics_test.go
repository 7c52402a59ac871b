package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRunCounters(t *testing.T) {
	t.Parallel()

	run := NewRun()
	run.CompanyProcessed()
	run.CompanyProcessed()
	run.SourceFinished("filing", OutcomeOK, 2*time.Second)
	run.SourceFinished("article", OutcomeSkipped, time.Second)
	run.EntityFolded("company")
	run.EntityFolded("")
	run.RelationFolded("headquarters", true)
	run.RelationFolded("founded by", false)

	body := dump(t, run)
	for _, want := range []string{
		"ecmgraph_companies_processed_total 2",
		`ecmgraph_source_runs_total{outcome="skipped",source="article"} 1`,
		`ecmgraph_entities_total{label="none"} 1`,
		`ecmgraph_relations_total{property="ignored"} 1`,
		`ecmgraph_relations_total{property="headquarters"} 1`,
		`ecmgraph_source_duration_seconds_count{source="filing"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}

func dump(t *testing.T, run *Run) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.prom")
	if err := run.WriteFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(raw)
}

func TestNilRunIsNoop(t *testing.T) {
	t.Parallel()

	var run *Run
	run.CompanyProcessed()
	run.SourceFinished("filing", OutcomeFailed, time.Second)
	run.ObserveDocument(map[string]int{"Company": 1}, nil)
	if err := run.WriteFile(filepath.Join(t.TempDir(), "m.prom")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	run := NewRun()
	run.ObserveDocument(map[string]int{"Company": 3}, map[string]int{"IS_IN": 2})

	path := filepath.Join(t.TempDir(), "ecmgraph.prom")
	if err := run.WriteFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	body := string(raw)
	if !strings.Contains(body, `ecmgraph_document_nodes{node_type="Company"} 3`) {
		t.Fatalf("missing node gauge:\n%s", body)
	}
	if !strings.Contains(body, `ecmgraph_document_relationships{relationship_type="IS_IN"} 2`) {
		t.Fatalf("missing relationship gauge:\n%s", body)
	}
}
