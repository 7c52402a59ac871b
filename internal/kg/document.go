package kg

// Nodes groups node records by type. Field order matches the serialized order.
type Nodes struct {
	Company  []CompanyNode  `json:"Company"`
	Country  []CountryNode  `json:"Country"`
	Industry []IndustryNode `json:"Industry"`
	Region   []RegionNode   `json:"Region"`
	Product  []ProductNode  `json:"Product"`
}

type Relationships struct {
	PartnersWith      []CompanyPair       `json:"PARTNERS_WITH"`
	CompetesWith      []CompanyPair       `json:"COMPETES_WITH"`
	SubsidiaryOf      []CompanyPair       `json:"SUBSIDIARY_OF"`
	HeadquartersIn    []HeadquartersIn    `json:"HEADQUARTERS_IN"`
	OperatesInCountry []OperatesInCountry `json:"OPERATES_IN_COUNTRY"`
	IsInvolvedIn      []IsInvolvedIn      `json:"IS_INVOLVED_IN"`
	IsIn              []IsIn              `json:"IS_IN"`
	OperatesInRegion  []OperatesInRegion  `json:"OPERATES_IN_REGION"`
	Produces          []Produces          `json:"PRODUCES"`
}

// Document is the schema document: every node and relationship extracted in
// a run, in append order. Names are not deduplicated.
type Document struct {
	Nodes         Nodes         `json:"nodes"`
	Relationships Relationships `json:"relationships"`
}

// NewDocument returns a document whose collections serialize as empty arrays.
func NewDocument() *Document {
	return &Document{
		Nodes: Nodes{
			Company:  []CompanyNode{},
			Country:  []CountryNode{},
			Industry: []IndustryNode{},
			Region:   []RegionNode{},
			Product:  []ProductNode{},
		},
		Relationships: Relationships{
			PartnersWith:      []CompanyPair{},
			CompetesWith:      []CompanyPair{},
			SubsidiaryOf:      []CompanyPair{},
			HeadquartersIn:    []HeadquartersIn{},
			OperatesInCountry: []OperatesInCountry{},
			IsInvolvedIn:      []IsInvolvedIn{},
			IsIn:              []IsIn{},
			OperatesInRegion:  []OperatesInRegion{},
			Produces:          []Produces{},
		},
	}
}

func (d *Document) NodeCounts() map[string]int {
	if d == nil {
		return map[string]int{}
	}
	return map[string]int{
		NodeCompany:  len(d.Nodes.Company),
		NodeCountry:  len(d.Nodes.Country),
		NodeIndustry: len(d.Nodes.Industry),
		NodeRegion:   len(d.Nodes.Region),
		NodeProduct:  len(d.Nodes.Product),
	}
}

func (d *Document) RelationshipCounts() map[string]int {
	if d == nil {
		return map[string]int{}
	}
	r := d.Relationships
	return map[string]int{
		RelPartnersWith:      len(r.PartnersWith),
		RelCompetesWith:      len(r.CompetesWith),
		RelSubsidiaryOf:      len(r.SubsidiaryOf),
		RelHeadquartersIn:    len(r.HeadquartersIn),
		RelOperatesInCountry: len(r.OperatesInCountry),
		RelIsInvolvedIn:      len(r.IsInvolvedIn),
		RelIsIn:              len(r.IsIn),
		RelOperatesInRegion:  len(r.OperatesInRegion),
		RelProduces:          len(r.Produces),
	}
}

// normalize replaces nil collections, which appear after decoding a document
// with null arrays, with empty ones.
func (d *Document) normalize() {
	empty := NewDocument()
	n, r := &d.Nodes, &d.Relationships
	if n.Company == nil {
		n.Company = empty.Nodes.Company
	}
	if n.Country == nil {
		n.Country = empty.Nodes.Country
	}
	if n.Industry == nil {
		n.Industry = empty.Nodes.Industry
	}
	if n.Region == nil {
		n.Region = empty.Nodes.Region
	}
	if n.Product == nil {
		n.Product = empty.Nodes.Product
	}
	if r.PartnersWith == nil {
		r.PartnersWith = empty.Relationships.PartnersWith
	}
	if r.CompetesWith == nil {
		r.CompetesWith = empty.Relationships.CompetesWith
	}
	if r.SubsidiaryOf == nil {
		r.SubsidiaryOf = empty.Relationships.SubsidiaryOf
	}
	if r.HeadquartersIn == nil {
		r.HeadquartersIn = empty.Relationships.HeadquartersIn
	}
	if r.OperatesInCountry == nil {
		r.OperatesInCountry = empty.Relationships.OperatesInCountry
	}
	if r.IsInvolvedIn == nil {
		r.IsInvolvedIn = empty.Relationships.IsInvolvedIn
	}
	if r.IsIn == nil {
		r.IsIn = empty.Relationships.IsIn
	}
	if r.OperatesInRegion == nil {
		r.OperatesInRegion = empty.Relationships.OperatesInRegion
	}
	if r.Produces == nil {
		r.Produces = empty.Relationships.Produces
	}
}
