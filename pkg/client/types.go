package client

// SchemaInfo describes one schema registered on the server.
type SchemaInfo struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Fields  []string `json:"fields,omitempty"`
	Default bool     `json:"default,omitempty"`
}

// Issue is a field-level failure the server recovered from by substituting
// the field default.
type Issue struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Raw   any    `json:"raw,omitempty"`
	Error string `json:"error,omitempty"`
}

// Result is one normalized record.
type Result struct {
	Schema string         `json:"schema"`
	Record map[string]any `json:"record"`
	Issues []Issue        `json:"issues,omitempty"`
}

// Claim is one numbered claim.  DependsOn is nil for independent claims.
type Claim struct {
	Number        int    `json:"number"`
	Text          string `json:"text"`
	Type          string `json:"type"`
	DependsOn     *int   `json:"depends_on"`
	References    []int  `json:"references,omitempty"`
	ExaminerCited bool   `json:"examiner_cited"`
}

type Diagnostic struct {
	Claim   int    `json:"claim"`
	Message string `json:"message"`
}

type DependencyTree struct {
	Roots       []int         `json:"roots"`
	Children    map[int][]int `json:"children"`
	Depth       int           `json:"depth"`
	Independent []int         `json:"independent_claims"`
}

// ClaimsResult is the body of a claims/parse response.
type ClaimsResult struct {
	Claims      []Claim         `json:"claims"`
	Diagnostics []Diagnostic    `json:"diagnostics,omitempty"`
	Tree        *DependencyTree `json:"tree"`
}

//Personal.AI order the ending
