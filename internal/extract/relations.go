package extract

import "horse.fit/ecmgraph/internal/nlp"

// Relation is a flattened (entity, property, value) fact. Evidence is the
// first evidence passage, or empty when the service gave none.
type Relation struct {
	Entity   string `json:"entity"`
	Property string `json:"property"`
	Value    string `json:"value"`
	Evidence string `json:"evidence,omitempty"`
}

func MapFacts(facts []nlp.Fact) []Relation {
	out := make([]Relation, 0, len(facts))
	for _, fact := range facts {
		rel := Relation{
			Entity:   fact.Entity.Name,
			Property: fact.Property.Name,
			Value:    fact.Value.Name,
		}
		if len(fact.Evidence) > 0 {
			rel.Evidence = fact.Evidence[0].Passage
		}
		out = append(out, rel)
	}
	return out
}
