// Package claims turns patent claim prose into an ordered, dependency-aware
// list of claims.
package claims

import (
	"fmt"

	"github.com/turtacn/patent-normalizer/internal/domain/schema"
	"github.com/turtacn/patent-normalizer/pkg/errors"
)

// ClaimType distinguishes claims that stand alone from claims that refer
// back to another claim.
type ClaimType string

const (
	Independent ClaimType = "independent"
	Dependent   ClaimType = "dependent"
)

// Claim is one numbered claim.
type Claim struct {
	// Number is the number the claim was declared with.  Gaps are kept.
	Number int `json:"number"`

	// Text is the claim body without its number marker or a trailing
	// citation note.
	Text string `json:"text"`

	Type ClaimType `json:"type"`

	// DependsOn is the first claim referenced, when that claim precedes this
	// one.  A dependent claim whose reference cannot be attached has a nil
	// DependsOn and a Diagnostic.
	DependsOn *int `json:"depends_on"`

	// References lists every claim number mentioned in a dependency phrase,
	// sorted and de-duplicated.
	References []int `json:"references,omitempty"`

	ExaminerCited bool `json:"examiner_cited"`
}

// IsDependent reports whether the claim refers to another claim.
func (c Claim) IsDependent() bool { return c.Type == Dependent }

// Record renders the claim as a normalized record.
func (c Claim) Record() schema.Record {
	var dependsOn any
	if c.DependsOn != nil {
		dependsOn = *c.DependsOn
	}
	return schema.Record{
		"number":         c.Number,
		"text":           c.Text,
		"type":           string(c.Type),
		"depends_on":     dependsOn,
		"examiner_cited": c.ExaminerCited,
	}
}

// Diagnostic is a non-fatal anomaly found while parsing.
type Diagnostic struct {
	Claim   int    `json:"claim"`
	Message string `json:"message"`
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("claim %d: %s", d.Claim, d.Message)
}

// ParseResult holds the parsed claims in declaration order.
type ParseResult struct {
	Claims      []Claim      `json:"claims"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Tree builds the dependency tree of the parsed claims.
func (r *ParseResult) Tree() *DependencyTree {
	return BuildDependencyTree(r.Claims)
}

var (
	// ErrEmptyText is returned for blank input.
	ErrEmptyText = errors.New(errors.CodeClaimTextEmpty, "claim text is empty")

	// ErrNoClaims is returned when no numbered claim can be segmented.
	ErrNoClaims = errors.New(errors.CodeClaimNoneFound, "no numbered claims found")

	// ErrMatchTimeout is returned when claim matching exceeds its guard.
	ErrMatchTimeout = errors.New(errors.CodeClaimMatchTimeout, "claim matching exceeded its time budget")
)

//Personal.AI order the ending
