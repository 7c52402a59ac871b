package kg

// Node type names as they appear under "nodes" in the document.
const (
	NodeCompany  = "Company"
	NodeCountry  = "Country"
	NodeIndustry = "Industry"
	NodeRegion   = "Region"
	NodeProduct  = "Product"
)

// Relationship type names as they appear under "relationships".
const (
	RelPartnersWith      = "PARTNERS_WITH"
	RelCompetesWith      = "COMPETES_WITH"
	RelSubsidiaryOf      = "SUBSIDIARY_OF"
	RelHeadquartersIn    = "HEADQUARTERS_IN"
	RelOperatesInCountry = "OPERATES_IN_COUNTRY"
	RelIsInvolvedIn      = "IS_INVOLVED_IN"
	RelIsIn              = "IS_IN"
	RelOperatesInRegion  = "OPERATES_IN_REGION"
	RelProduces          = "PRODUCES"
)

// NotFound stands in for a country or region name that could not be resolved.
const NotFound = "Not Found"

// Company-to-company relationship subtypes.
const (
	PairSuppliers  = "suppliers"
	PairSubsidiary = "subsidiary"
)

type CompanyNode struct {
	Name        string  `json:"name"`
	TickerCode  *string `json:"ticker_code"`
	FoundedYear *int    `json:"founded_year"`
}

// CountryNode carries placeholder Population, GDP and CorporateTaxRate values
// produced by an Enricher. They are not measurements.
type CountryNode struct {
	SourceCity       string `json:"source_city,omitempty"`
	Name             string `json:"name"`
	ISO2             string `json:"iso2,omitempty"`
	ISO3             string `json:"iso3,omitempty"`
	Population       int    `json:"population"`
	GDP              int    `json:"gdp"`
	CorporateTaxRate int    `json:"corporate_tax_rate"`
}

type IndustryNode struct {
	Name            string  `json:"name"`
	SICCode         *string `json:"SIC_code"`
	IndustryGroup   *string `json:"industry_group"`
	SubindustryDesc *string `json:"subindustry_desc"`
	PrimaryActivity *string `json:"primary_activity"`
}

type RegionNode struct {
	Name string  `json:"name"`
	M49  *string `json:"m49"`
}

type ProductNode struct {
	Name string `json:"name"`
}

// CompanyPair is the record shared by PARTNERS_WITH, COMPETES_WITH and
// SUBSIDIARY_OF. For SUBSIDIARY_OF, CompanyName1 is the parent.
type CompanyPair struct {
	CompanyName1 string  `json:"company_name_1"`
	CompanyName2 string  `json:"company_name_2"`
	Type         *string `json:"type"`
}

type HeadquartersIn struct {
	CompanyName string `json:"company_name"`
	CountryName string `json:"country_name"`
}

type OperatesInCountry struct {
	CompanyName string `json:"company_name"`
	CountryName string `json:"country_name"`
	NetSales    int    `json:"net sales"`
	Headcount   int    `json:"headcount"`
}

type OperatesInRegion struct {
	CompanyName string `json:"company_name"`
	RegionName  string `json:"region_name"`
	NetSales    int    `json:"net sales"`
	Headcount   int    `json:"headcount"`
}

type IsInvolvedIn struct {
	CompanyName  string `json:"company_name"`
	IndustryName string `json:"industry_name"`
}

type IsIn struct {
	CountryName string `json:"country_name"`
	RegionName  string `json:"region_name"`
}

type Produces struct {
	CompanyName string `json:"company_name"`
	ProductName string `json:"product_name"`
}
