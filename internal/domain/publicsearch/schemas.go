// Package publicsearch declares the schemas for documents returned by the
// USPTO public patent search service.  Its payloads store repeating groups
// (inventors, references, priority claims) as parallel arrays under separate
// keys, which the zip schemas fuse back into records.
package publicsearch

import (
	"github.com/turtacn/patent-normalizer/internal/domain/claims"
	"github.com/turtacn/patent-normalizer/internal/domain/schema"
	"github.com/turtacn/patent-normalizer/pkg/htmltext"
)

// Registered schema names.
const (
	Document           = "publicsearch.document"
	DocumentText       = "publicsearch.document_text"
	UsReference        = "publicsearch.us_reference"
	ForeignReference   = "publicsearch.foreign_reference"
	NplReference       = "publicsearch.npl_reference"
	RelatedApplication = "publicsearch.related_application"
	Inventor           = "publicsearch.inventor"
	Applicant          = "publicsearch.applicant"
	Assignee           = "publicsearch.assignee"
	CpcCode            = "publicsearch.cpc_code"
	IntlCode           = "publicsearch.intl_code"
	ForeignPriority    = "publicsearch.foreign_priority"
)

const (
	nplPattern  = `(?s)^(?P<citation>.*?)\s*(?P<cited_by_examiner>cited by (?:applicant|examiner)\.?)?$`
	cpcPattern  = `(?P<cpc_class>.{4})(?P<cpc_subclass>[^ ]+) (?P<version>\d{8})`
	intlPattern = `(?P<intl_class>.{4})(?P<intl_subclass>[^ ]+) (?P<version>\d{8})`
)

// CitedByExaminer is true when a reference group names the examiner.
func CitedByExaminer() schema.Converter { return schema.Contains("examiner") }

// HTMLText renders an HTML fragment as plain text.
func HTMLText() schema.Converter {
	return schema.Func("html_text", func(raw any) (any, error) {
		s, ok := raw.(string)
		if !ok {
			return schema.String().Convert(raw)
		}
		return htmltext.ToText(s), nil
	})
}

// Register declares every public-search schema in reg.  The document schema
// reaches its parts through registry references, so reg must be sealed
// before documents are parsed.
func Register(reg *schema.Registry, parser *claims.Parser) error {
	str := schema.String()
	iso := schema.Date(schema.ISODate)
	month := schema.Date(schema.YearMonth)
	strList := schema.ListOf(str)
	text := schema.MustValueSchema("publicsearch.token", str, "")

	usRef, err := schema.NewZipSchema(UsReference,
		schema.Scalar("publication_number", "urpn", str, ""),
		schema.Scalar("pub_month", "usRefIssueDate", month, nil),
		schema.Scalar("patentee_name", "usRefPatenteeName", str, ""),
		schema.Scalar("cited_by_examiner", "usRefGroup", CitedByExaminer(), false),
	)
	if err != nil {
		return err
	}

	foreignRef, err := schema.NewZipSchema(ForeignReference,
		schema.Scalar("citation_classification", "foreignRefCitationClassification", str, ""),
		schema.Scalar("citation_cpc", "foreignRefCitationCpc", str, ""),
		schema.Scalar("country_code", "foreignRefCountryCode", str, ""),
		schema.Scalar("patent_number", "foreignRefPatentNumber", str, ""),
		schema.Scalar("pub_month", "foreignRefPubDate", month, nil),
		schema.Scalar("cited_by_examiner", "foreignRefGroup", CitedByExaminer(), false),
	)
	if err != nil {
		return err
	}

	npl, err := schema.NewRegexSchema(NplReference, nplPattern, schema.RegexConfig{},
		schema.Value("citation", str, ""),
		schema.Value("cited_by_examiner", CitedByExaminer(), false),
	)
	if err != nil {
		return err
	}

	related, err := schema.NewZipSchema(RelatedApplication,
		schema.Scalar("child_patent_country", "relatedApplChildPatentCountry", str, ""),
		schema.Scalar("child_patent_number", "relatedApplChildPatentNumber", str, ""),
		schema.Scalar("country_code", "relatedApplCountryCode", str, ""),
		schema.Scalar("filing_date", "relatedApplFilingDate", iso, nil),
		schema.Scalar("number", "relatedApplNumber", str, ""),
		schema.Scalar("parent_status_code", "relatedApplParentStatusCode", str, ""),
		schema.Scalar("patent_issue_date", "relatedApplPatentIssueDate", iso, nil),
		schema.Scalar("patent_number", "relatedApplPatentNumber", str, ""),
	)
	if err != nil {
		return err
	}

	inventor, err := schema.NewZipSchema(Inventor,
		schema.Scalar("name", "inventorsName", str, ""),
		schema.Scalar("city", "inventorCity", str, ""),
		schema.Scalar("country", "inventorCountry", str, ""),
		schema.Scalar("postal_code", "inventorPostalCode", str, ""),
		schema.Scalar("state", "inventorState", str, ""),
	)
	if err != nil {
		return err
	}

	applicant, err := schema.NewZipSchema(Applicant,
		schema.Scalar("city", "applicantCity", str, ""),
		schema.Scalar("country", "applicantCountry", str, ""),
		schema.Scalar("name", "applicantName", str, ""),
		schema.Scalar("state", "applicantState", str, ""),
		schema.Scalar("zip_code", "applicantZipCode", str, ""),
		schema.Scalar("authority_type", "applicantAuthorityType", str, ""),
	)
	if err != nil {
		return err
	}

	assignee, err := schema.NewZipSchema(Assignee,
		schema.Scalar("city", "assigneeCity", str, ""),
		schema.Scalar("country", "assigneeCountry", str, ""),
		schema.Scalar("name", "assigneeName", str, ""),
		schema.Scalar("postal_code", "assigneePostalCode", str, ""),
		schema.Scalar("state", "assigneeState", str, ""),
		schema.Scalar("type_code", "assigneeTypeCode", str, ""),
	)
	if err != nil {
		return err
	}

	classCfg := schema.RegexConfig{Mode: schema.MatchFull, NoMatch: schema.NoMatchNull}
	cpc, err := schema.NewRegexSchema(CpcCode, cpcPattern, classCfg,
		schema.Value("cpc_class", str, ""),
		schema.Value("cpc_subclass", str, ""),
		schema.Value("version", iso, nil),
	)
	if err != nil {
		return err
	}

	intl, err := schema.NewRegexSchema(IntlCode, intlPattern, classCfg,
		schema.Value("intl_class", str, ""),
		schema.Value("intl_subclass", str, ""),
		schema.Value("version", iso, nil),
	)
	if err != nil {
		return err
	}

	priority, err := schema.NewZipSchema(ForeignPriority,
		schema.Scalar("country", "priorityClaimsCountry", str, ""),
		schema.Scalar("app_filing_date", "priorityClaimsDate", iso, nil),
		schema.Scalar("app_number", "priorityClaimsDocNumber", str, ""),
	)
	if err != nil {
		return err
	}

	docText, err := schema.NewComposite(DocumentText,
		schema.Scalar("abstract_html", "abstractHtml", str, ""),
		schema.Scalar("abstract", "abstractHtml", HTMLText(), ""),
		schema.Scalar("government_interest", "governmentInterest", str, ""),
		schema.Scalar("background_html", "backgroundTextHtml", str, ""),
		schema.Scalar("brief_html", "briefHtml", str, ""),
		schema.Scalar("description_html", "descriptionHtml", str, ""),
		schema.Scalar("claim_statement", "claimStatement", str, ""),
		schema.Scalar("claims_html", "claimsHtml", str, ""),
		schema.Scalar("claims", "claimsHtml", claims.Converter(parser), []any{}),
	)
	if err != nil {
		return err
	}

	cpcList := schema.MustListSchema("publicsearch.cpc_code_list", reg.Ref(CpcCode))
	intlList := schema.MustListSchema("publicsearch.intl_code_list", reg.Ref(IntlCode))
	nplList := schema.MustDelimitedSchema("publicsearch.npl_reference_list", "<br />", reg.Ref(NplReference))
	semicolonList := schema.MustDelimitedSchema("publicsearch.semicolon_list", ";", text)

	doc, err := schema.NewComposite(Document,
		schema.Scalar("guid", "guid", str, ""),
		schema.Scalar("publication_number", "pubRefDocNumber", str, ""),
		schema.Scalar("publication_date", "datePublished", iso, nil),

		schema.Scalar("appl_id", "applicationNumber", str, ""),
		schema.Scalar("patent_title", "inventionTitle", str, ""),
		schema.Scalar("app_filing_date", "applicationFilingDate.0", iso, nil),
		schema.Scalar("application_type", "applicationRefFilingType", str, ""),
		schema.Scalar("family_identifier_cur", "familyIdentifierCur", schema.Integer(), nil),
		schema.Sibling("related_apps", reg.Ref(RelatedApplication)),
		schema.Sibling("foreign_priority", reg.Ref(ForeignPriority)),
		schema.Scalar("type", "type", str, ""),

		schema.Sibling("inventors", reg.Ref(Inventor)),
		schema.Scalar("inventors_short", "inventorsShort", str, ""),
		schema.Sibling("applicants", reg.Ref(Applicant)),
		schema.Sibling("assignees", reg.Ref(Assignee)),

		schema.Scalar("group_art_unit", "examinerGroup", str, ""),
		schema.Scalar("primary_examiner", "primaryExaminer", str, ""),
		schema.Scalar("assistant_examiner", "assistantExaminer", strList, []any{}),
		schema.Scalar("legal_firm_name", "legalFirmName", strList, []any{}),
		schema.Scalar("attorney_name", "attorneyName", strList, []any{}),

		schema.Sibling("document", reg.Ref(DocumentText)),

		schema.Scalar("image_file_name", "imageFileName", str, ""),
		schema.Scalar("image_location", "imageLocation", str, ""),

		schema.Scalar("composite_id", "compositeId", str, ""),
		schema.Scalar("database_name", "databaseName", str, ""),
		schema.Scalar("derwent_week_int", "derwentWeekInt", schema.Integer(), nil),

		schema.Sibling("us_references", reg.Ref(UsReference)),
		schema.Sibling("foreign_references", reg.Ref(ForeignReference)),
		schema.Nested("npl_references", "otherRefPub.0", nplList),

		schema.Nested("cpc_inventive", "cpcInventive", cpcList),
		schema.Nested("cpc_additional", "cpcAdditional", cpcList),

		schema.Nested("intl_class_issued", "ipcCodeFlattened", semicolonList),
		schema.Nested("intl_class_current_primary", "curIntlPatentClassificationPrimary", intlList),
		schema.Nested("intl_class_current_secondary", "curIntlPatentClassificationSecondary", intlList),

		schema.Nested("us_class_current", "uspcFullClassificationFlattened", semicolonList),
		schema.Scalar("us_class_issued", "issuedUsClassificationFull", strList, []any{}),

		schema.Scalar("field_of_search_us", "fieldOfSearchClassSubclassHighlights", strList, []any{}),
		schema.Scalar("field_of_search_cpc", "fieldOfSearchCpcClassification", strList, []any{}),
	)
	if err != nil {
		return err
	}

	for _, s := range []schema.Schema{
		doc, docText, usRef, foreignRef, npl, related, inventor, applicant, assignee, cpc, intl, priority,
	} {
		if err := reg.Register(s); err != nil {
			return err
		}
	}
	return nil
}

//Personal.AI order the ending
