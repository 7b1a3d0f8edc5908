package claims

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/turtacn/patent-normalizer/pkg/matchguard"
)

var (
	// A claim candidate is "N." or "N)" at the start of the text or after
	// whitespace, followed by a letter or an opening parenthesis.  Which
	// candidates become claims is decided by selectSegments.
	reClaimStart = regexp.MustCompile(`(?:^|\s)(\d{1,4})\s*[.)]\s*([A-Za-z(])`)

	// rePrecedingClaim matches references that name no claim number, such as
	// "any one of the preceding claims".
	rePrecedingClaim = regexp.MustCompile(`(?i)\b(?:preceding|previous|foregoing)\s+claims?\b`)

	reDependency = regexp.MustCompile(
		`(?i)\b(?:of|in|to|by|with|from|under|according\s+to|as\s+(?:claimed|defined|recited|set\s+forth|described)\s+in)\s+` +
			`claims?\s+(\d+(?:\s*(?:,|and|or|to|through|-)\s*(?:claims?\s+)?\d+)*)`)

	reCitedBy = regexp.MustCompile(`(?i)\s*\(?\s*cited\s+by\s+(examiner|applicant)\s*\)?\.?\s*$`)

	quoteReplacer = strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", "\"", "”", "\"",
		"–", "-", "—", "-",
	)

	listReplacer = strings.NewReplacer(
		"claims", "", "claim", "",
		"and", ",", "or", ",",
		"through", "-", "to", "-",
	)
)

// maxRangeSpan bounds how many numbers a "1 to N" range may expand to.
const maxRangeSpan = 100

// Option configures a Parser.
type Option func(*Parser)

// WithGuard sets the match guard used for segmentation and dependency
// matching.
func WithGuard(g matchguard.Guard) Option {
	return func(p *Parser) { p.guard = g }
}

// Parser segments claim text.  It holds no per-call state and is safe for
// concurrent use.
type Parser struct {
	guard matchguard.Guard
}

// NewParser returns a Parser guarded by matchguard.Default unless overridden.
func NewParser(opts ...Option) *Parser {
	p := &Parser{guard: matchguard.Default}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse splits plain claim text into claims.  Preamble text before the first
// numbered claim ("What is claimed is:") is ignored.
func (p *Parser) Parse(text string) (*ParseResult, error) {
	text = Normalize(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	starts, err := p.guard.FindAllStringSubmatchIndex(reClaimStart, text, -1)
	if err != nil {
		return nil, ErrMatchTimeout.WithCause(err)
	}

	segs := selectSegments(text, starts)
	if len(segs) == 0 {
		return nil, ErrNoClaims
	}

	res := &ParseResult{Claims: make([]Claim, 0, len(segs))}
	seen := make(map[int]bool, len(segs))
	for i, s := range segs {
		end := len(text)
		if i+1 < len(segs) {
			end = segs[i+1].numStart
		}
		body := strings.TrimSpace(text[s.bodyStart:end])

		c := Claim{Number: s.number, Type: Independent}
		if loc := reCitedBy.FindStringSubmatchIndex(body); loc != nil {
			c.ExaminerCited = strings.EqualFold(body[loc[2]:loc[3]], "examiner")
			body = strings.TrimSpace(body[:loc[0]])
		}
		c.Text = body

		refs, order, err := p.dependencies(body)
		if err != nil {
			return nil, ErrMatchTimeout.WithCause(err)
		}
		if len(order) == 0 {
			loose, err := p.guard.FindStringSubmatchIndex(rePrecedingClaim, body)
			if err != nil {
				return nil, ErrMatchTimeout.WithCause(err)
			}
			if loose != nil && c.Number > 1 {
				c.Type = Dependent
				res.Diagnostics = append(res.Diagnostics, Diagnostic{
					Claim:   c.Number,
					Message: "refers to a preceding claim without naming it",
				})
			}
		}
		if len(order) > 0 {
			c.Type = Dependent
			c.References = refs
			first := order[0]
			switch {
			case first >= c.Number:
				res.Diagnostics = append(res.Diagnostics, Diagnostic{
					Claim:   c.Number,
					Message: "refers to claim " + strconv.Itoa(first) + " which does not precede it",
				})
			case !seen[first]:
				res.Diagnostics = append(res.Diagnostics, Diagnostic{
					Claim:   c.Number,
					Message: "refers to claim " + strconv.Itoa(first) + " which was not found",
				})
			default:
				dep := first
				c.DependsOn = &dep
			}
		}

		seen[c.Number] = true
		res.Claims = append(res.Claims, c)
	}
	return res, nil
}

type segment struct {
	number    int
	numStart  int
	bodyStart int
}

// selectSegments picks the claim markers among the candidates.  Claim
// numbers strictly increase and are expected to run 1, 2, 3...:
//
//   - a candidate followed by a capital letter or "(" is accepted when it is
//     the successor of the previous claim, or when it skips ahead and no
//     later candidate carries that successor number (a numbering gap);
//   - a candidate followed by a lower-case letter is accepted only as the
//     direct successor, and only when no later capitalised candidate
//     carries the same number.
//
// In-text numerals such as "heated to about 5. The" therefore do not split
// a claim when the real next claim follows.
func selectSegments(text string, starts [][]int) []segment {
	type candidate struct {
		number int
		upper  bool
		m      []int
	}
	cands := make([]candidate, 0, len(starts))
	lastAny := make(map[int]int)
	lastUpper := make(map[int]int)
	for i, m := range starts {
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil || n < 1 {
			continue
		}
		r := text[m[4]]
		upper := r == '(' || (r >= 'A' && r <= 'Z')
		idx := len(cands)
		cands = append(cands, candidate{number: n, upper: upper, m: starts[i]})
		lastAny[n] = idx
		if upper {
			lastUpper[n] = idx
		}
	}

	laterHas := func(last map[int]int, n, i int) bool {
		j, ok := last[n]
		return ok && j > i
	}

	var segs []segment
	prev := 0
	for i, c := range cands {
		if c.number <= prev {
			continue
		}
		successor := c.number == prev+1
		switch {
		case c.upper && !successor && laterHas(lastAny, prev+1, i):
			continue
		case !c.upper && (!successor || laterHas(lastUpper, c.number, i)):
			continue
		}
		segs = append(segs, segment{number: c.number, numStart: c.m[2], bodyStart: c.m[4]})
		prev = c.number
	}
	return segs
}

// dependencies returns the sorted, de-duplicated claim numbers referenced by
// body, and the same numbers in order of first appearance.
func (p *Parser) dependencies(body string) ([]int, []int, error) {
	matches, err := p.guard.FindAllStringSubmatch(reDependency, body, -1)
	if err != nil {
		return nil, nil, err
	}
	seen := make(map[int]bool)
	var order []int
	for _, m := range matches {
		for _, n := range parseClaimNumberList(m[1]) {
			if !seen[n] {
				seen[n] = true
				order = append(order, n)
			}
		}
	}
	if len(order) == 0 {
		return nil, nil, nil
	}
	sorted := append([]int(nil), order...)
	sort.Ints(sorted)
	return sorted, order, nil
}

// parseClaimNumberList expands "1, 2 and 5" or "1 to 3" into numbers in
// order of appearance.
func parseClaimNumberList(s string) []int {
	s = listReplacer.Replace(strings.ToLower(s))

	var result []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			l, errLo := strconv.Atoi(strings.TrimSpace(lo))
			h, errHi := strconv.Atoi(strings.TrimSpace(hi))
			if errLo == nil && errHi == nil && l > 0 && l <= h && h-l < maxRangeSpan {
				for n := l; n <= h; n++ {
					result = append(result, n)
				}
				continue
			}
		}
		if n, err := strconv.Atoi(part); err == nil && n > 0 {
			result = append(result, n)
		}
	}
	return result
}

// Normalize applies NFKC, folds typographic quotes and dashes to ASCII and
// collapses whitespace runs to single spaces.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = quoteReplacer.Replace(text)

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace {
				b.WriteRune(' ')
				prevSpace = true
			}
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

//Personal.AI order the ending
