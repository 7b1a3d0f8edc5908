package claims

import (
	"strings"

	"github.com/turtacn/patent-normalizer/internal/domain/schema"
	"github.com/turtacn/patent-normalizer/pkg/errors"
	"github.com/turtacn/patent-normalizer/pkg/htmltext"
)

// Converter returns a schema converter that renders claim HTML (or plain
// text) and parses it into a list of claim records.
//
// A parse failure never fails the record: the field takes its default and
// the failure is reported as a claims Issue.  Diagnostics are reported the
// same way next to the parsed claims.
func Converter(p *Parser) schema.Converter {
	return schema.Func("claims", func(raw any) (any, error) {
		s, ok := raw.(string)
		if !ok {
			return nil, schema.WithKind(schema.IssueClaims, errNotText)
		}
		if htmltext.LooksLikeHTML(s) {
			s = htmltext.ToText(s)
		}
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}

		res, err := p.Parse(s)
		if err != nil {
			return nil, schema.WithKind(schema.IssueClaims, err)
		}

		out := make([]any, len(res.Claims))
		for i, c := range res.Claims {
			out[i] = c.Record()
		}
		var diags []error
		for _, d := range res.Diagnostics {
			diags = append(diags, schema.WithKind(schema.IssueClaims, d))
		}
		return out, schema.Partial(out, diags)
	})
}

var errNotText = errors.New(errors.CodeInvalidParam, "claims input is not text")

//Personal.AI order the ending
