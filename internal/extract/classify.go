package extract

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"horse.fit/ecmgraph/internal/nlp"
)

// SalienceThreshold is exclusive: entities must score strictly above it.
const SalienceThreshold = 0.5

const (
	LabelCompany  = "company"
	LabelIndustry = "industry"
	LabelCountry  = "country"
	LabelLocation = "location"
	LabelProduct  = "product"
)

const (
	typeOrganization = "organization"
	typeFieldOfWork  = "field of work"
	typeIndustry     = "industry"
	typeCountry      = "country"
	typeLocation     = "location"
	typeProduct      = "product"
)

// ClassifiedEntity is a salient entity with its coarse category. An empty
// Label means the entity carried no type tags and no name rule applied.
type ClassifiedEntity struct {
	Name     string  `json:"name"`
	Salience float64 `json:"salience"`
	Label    string  `json:"label,omitempty"`
}

// Classify drops entities at or below SalienceThreshold and labels the rest,
// preserving input order.
func Classify(entities []nlp.Entity) []ClassifiedEntity {
	out := make([]ClassifiedEntity, 0, len(entities))
	for _, entity := range entities {
		if entity.Salience <= SalienceThreshold {
			continue
		}
		out = append(out, ClassifiedEntity{
			Name:     entity.Name,
			Salience: entity.Salience,
			Label:    Label(entity),
		})
	}
	return out
}

// Label applies the first matching rule:
// organization, then industry (tag or name), country, location, product,
// and finally the first reported type tag.
func Label(entity nlp.Entity) string {
	tags := mapset.NewThreadUnsafeSet[string]()
	for _, tag := range entity.AllTypes {
		tags.Add(tag.Name)
	}
	nameMentionsIndustry := strings.Contains(strings.ToLower(entity.Name), typeIndustry)

	switch {
	case tags.Contains(typeOrganization):
		return LabelCompany
	case tags.Contains(typeFieldOfWork), tags.Contains(typeIndustry), nameMentionsIndustry:
		return LabelIndustry
	case tags.Contains(typeCountry):
		return LabelCountry
	case tags.Contains(typeLocation):
		return LabelLocation
	case tags.Contains(typeProduct):
		return LabelProduct
	case len(entity.AllTypes) > 0:
		return entity.AllTypes[0].Name
	default:
		return ""
	}
}
