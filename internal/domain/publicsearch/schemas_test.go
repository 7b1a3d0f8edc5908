package publicsearch

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent-normalizer/internal/domain/claims"
	"github.com/turtacn/patent-normalizer/internal/domain/schema"
)

func newRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	require.NoError(t, Register(reg, claims.NewParser()))
	require.NoError(t, reg.Seal())
	return reg
}

func loadDocument(t *testing.T) map[string]any {
	t.Helper()
	f, err := os.Open("testdata/document.json")
	require.NoError(t, err)
	defer f.Close()
	dec := json.NewDecoder(f)
	dec.UseNumber()
	var raw map[string]any
	require.NoError(t, dec.Decode(&raw))
	return raw
}

func TestRegister_AllSchemas(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	assert.Equal(t, []string{
		Applicant, Assignee, CpcCode, Document, DocumentText, ForeignPriority,
		ForeignReference, IntlCode, Inventor, NplReference, RelatedApplication, UsReference,
	}, reg.Names())

	assert.Error(t, Register(reg, claims.NewParser()), "a sealed registry rejects a second registration")
}

func TestDocument_Parse(t *testing.T) {
	t.Parallel()

	doc, err := newRegistry(t).Composite(Document)
	require.NoError(t, err)

	res, err := doc.Parse(loadDocument(t))
	require.NoError(t, err)
	rec := res.Record

	assert.Equal(t, "US-10000000-B2", rec["guid"])
	assert.Equal(t, time.Date(2018, 6, 19, 0, 0, 0, 0, time.UTC), rec["publication_date"])
	assert.Equal(t, time.Date(2015, 3, 20, 0, 0, 0, 0, time.UTC), rec["app_filing_date"])
	assert.Equal(t, 54323876, rec["family_identifier_cur"])

	assert.Equal(t, []any{
		schema.Record{"name": "Halmos; Maurice J.", "city": "Encino", "country": "US", "postal_code": "", "state": "CA"},
		schema.Record{"name": "Smith; Jane", "city": "Tucson", "country": "US", "postal_code": "", "state": "AZ"},
	}, rec["inventors"])

	assert.Equal(t, []any{
		schema.Record{
			"publication_number": "5237331",
			"pub_month":          time.Date(1993, 8, 1, 0, 0, 0, 0, time.UTC),
			"patentee_name":      "Henderson et al.",
			"cited_by_examiner":  true,
		},
		schema.Record{
			"publication_number": "5877851",
			"pub_month":          time.Date(1999, 3, 1, 0, 0, 0, 0, time.UTC),
			"patentee_name":      "Stann et al.",
			"cited_by_examiner":  false,
		},
	}, rec["us_references"])

	assert.Equal(t, []any{
		schema.Record{"citation": "Smith, Lasers, 1999.", "cited_by_examiner": true},
		schema.Record{"citation": "Jones, Optics, 2001.", "cited_by_examiner": false},
	}, rec["npl_references"])

	cpc := rec["cpc_inventive"].([]any)
	require.Len(t, cpc, 1, "malformed CPC codes are dropped")
	assert.Equal(t, schema.Record{
		"cpc_class":    "G01S",
		"cpc_subclass": "17/89",
		"version":      time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC),
	}, cpc[0])

	assert.Equal(t, []any{"G01S17/89", "G01S7/481"}, rec["intl_class_issued"])
	assert.Equal(t, []any{"1/1"}, rec["us_class_current"])
	assert.Equal(t, []any{}, rec["intl_class_current_secondary"])

	priority := rec["foreign_priority"].([]any)
	assert.Len(t, priority, 1, "ragged priority columns truncate to the shortest")

	text := rec["document"].(schema.Record)
	assert.Equal(t, "A LADAR system & method.", text["abstract"])
	claimList := text["claims"].([]any)
	require.Len(t, claimList, 2)
	assert.Equal(t, 1, claimList[1].(schema.Record)["depends_on"])

	assert.Nil(t, rec["derwent_week_int"])
	kinds := res.IssueCounts()
	assert.Equal(t, 1, kinds[schema.IssueConversion])
	assert.Equal(t, 1, kinds[schema.IssueNoMatch])
}

func TestDocument_EmptyRecordKeepsShape(t *testing.T) {
	t.Parallel()

	doc, err := newRegistry(t).Composite(Document)
	require.NoError(t, err)

	full, err := doc.Parse(loadDocument(t))
	require.NoError(t, err)
	empty, err := doc.Parse(map[string]any{})
	require.NoError(t, err)

	assert.Empty(t, empty.Issues)
	assert.Len(t, empty.Record, len(full.Record))
	for k := range full.Record {
		assert.Contains(t, empty.Record, k)
	}
	text := empty.Record["document"].(schema.Record)
	assert.Equal(t, []any{}, text["claims"])
}

func TestHTMLText(t *testing.T) {
	t.Parallel()

	got, err := HTMLText().Convert("<b>x</b>&nbsp;y")
	require.NoError(t, err)
	assert.Equal(t, "x y", got)

	got, err = HTMLText().Convert(json.Number("3"))
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}
