package kg

// Builder owns the document for a run. Everything below the driver appends
// through it; records are never updated or removed.
type Builder struct {
	doc *Document
}

func NewBuilder() *Builder {
	return &Builder{doc: NewDocument()}
}

func (b *Builder) AddCompany(n CompanyNode)   { b.doc.Nodes.Company = append(b.doc.Nodes.Company, n) }
func (b *Builder) AddCountry(n CountryNode)   { b.doc.Nodes.Country = append(b.doc.Nodes.Country, n) }
func (b *Builder) AddIndustry(n IndustryNode) { b.doc.Nodes.Industry = append(b.doc.Nodes.Industry, n) }
func (b *Builder) AddRegion(n RegionNode)     { b.doc.Nodes.Region = append(b.doc.Nodes.Region, n) }
func (b *Builder) AddProduct(n ProductNode)   { b.doc.Nodes.Product = append(b.doc.Nodes.Product, n) }

func (b *Builder) AddPartnersWith(r CompanyPair) {
	b.doc.Relationships.PartnersWith = append(b.doc.Relationships.PartnersWith, r)
}

func (b *Builder) AddCompetesWith(r CompanyPair) {
	b.doc.Relationships.CompetesWith = append(b.doc.Relationships.CompetesWith, r)
}

func (b *Builder) AddSubsidiaryOf(r CompanyPair) {
	b.doc.Relationships.SubsidiaryOf = append(b.doc.Relationships.SubsidiaryOf, r)
}

func (b *Builder) AddHeadquartersIn(r HeadquartersIn) {
	b.doc.Relationships.HeadquartersIn = append(b.doc.Relationships.HeadquartersIn, r)
}

func (b *Builder) AddOperatesInCountry(r OperatesInCountry) {
	b.doc.Relationships.OperatesInCountry = append(b.doc.Relationships.OperatesInCountry, r)
}

func (b *Builder) AddIsInvolvedIn(r IsInvolvedIn) {
	b.doc.Relationships.IsInvolvedIn = append(b.doc.Relationships.IsInvolvedIn, r)
}

func (b *Builder) AddIsIn(r IsIn) {
	b.doc.Relationships.IsIn = append(b.doc.Relationships.IsIn, r)
}

func (b *Builder) AddOperatesInRegion(r OperatesInRegion) {
	b.doc.Relationships.OperatesInRegion = append(b.doc.Relationships.OperatesInRegion, r)
}

func (b *Builder) AddProduces(r Produces) {
	b.doc.Relationships.Produces = append(b.doc.Relationships.Produces, r)
}

// CountryCount is the number of country nodes appended so far.
func (b *Builder) CountryCount() int {
	return len(b.doc.Nodes.Country)
}

// Countries returns a copy of the country nodes from index from onward.
func (b *Builder) Countries(from int) []CountryNode {
	all := b.doc.Nodes.Country
	if from < 0 {
		from = 0
	}
	if from >= len(all) {
		return nil
	}
	out := make([]CountryNode, len(all)-from)
	copy(out, all[from:])
	return out
}

// Document returns the accumulated document. The builder keeps ownership;
// callers should treat it as read-only.
func (b *Builder) Document() *Document {
	return b.doc
}
