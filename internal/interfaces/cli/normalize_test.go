package cli

import (
	"bufio"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent-normalizer/internal/domain/publicsearch"
	"github.com/turtacn/patent-normalizer/pkg/errors"
)

type outLine struct {
	Schema string         `json:"schema"`
	Record map[string]any `json:"record"`
	Issues []struct {
		Path string `json:"path"`
		Kind string `json:"kind"`
	} `json:"issues"`
}

func decodeLines(t *testing.T, out string) []outLine {
	t.Helper()
	var lines []outLine
	sc := bufio.NewScanner(strings.NewReader(out))
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	for sc.Scan() {
		var l outLine
		require.NoError(t, json.Unmarshal(sc.Bytes(), &l))
		lines = append(lines, l)
	}
	return lines
}

func TestNormalizeCmd_Inputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		guids []string
	}{
		{"single object", `{"guid":"A"}`, []string{"A"}},
		{"array", `[{"guid":"A"},{"guid":"B"}]`, []string{"A", "B"}},
		{"ndjson", "{\"guid\":\"A\"}\n{\"guid\":\"B\"}\n{\"guid\":\"C\"}\n", []string{"A", "B", "C"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, _, err := run(t, tt.input, "normalize", "--workers", "2")
			require.NoError(t, err)

			lines := decodeLines(t, out)
			require.Len(t, lines, len(tt.guids))
			for i, guid := range tt.guids {
				assert.Equal(t, publicsearch.Document, lines[i].Schema)
				assert.Equal(t, guid, lines[i].Record["guid"])
			}
		})
	}
}

func TestNormalizeCmd_IssuesFlag(t *testing.T) {
	t.Parallel()
	input := `{"guid":"A","derwentWeekInt":"soon"}`

	out, _, err := run(t, input, "normalize")
	require.NoError(t, err)
	lines := decodeLines(t, out)
	require.Len(t, lines, 1)
	require.Len(t, lines[0].Issues, 1)
	assert.Equal(t, "derwent_week_int", lines[0].Issues[0].Path)
	assert.Equal(t, "conversion", lines[0].Issues[0].Kind)

	out, _, err = run(t, input, "normalize", "--issues=false")
	require.NoError(t, err)
	lines = decodeLines(t, out)
	require.Len(t, lines, 1)
	assert.Empty(t, lines[0].Issues)
}

func TestNormalizeCmd_PartialFailure(t *testing.T) {
	t.Parallel()
	out, errOut, err := run(t, `[{"guid":"A"}, 7, {"guid":"C"}]`, "normalize")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeBatchFailed))
	assert.Contains(t, err.Error(), "1 of 3 records failed")
	assert.Contains(t, errOut, "record 1:")
	assert.Len(t, decodeLines(t, out), 2)
}

func TestNormalizeCmd_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		args []string
		code errors.ErrorCode
	}{
		{"unknown schema", `{}`, []string{"normalize", "--schema", "nope"}, errors.CodeSchemaNotFound},
		{"bad json", `{"guid":`, []string{"normalize"}, errors.CodeDecodeFailed},
		{"empty input", "  ", []string{"normalize"}, errors.CodeInvalidParam},
		{"negative workers", `{}`, []string{"normalize", "--workers", "-1"}, errors.CodeInvalidParam},
		{"fail fast", `[{}, 1]`, []string{"normalize", "--fail-fast"}, errors.CodeBatchFailed},
	}
	for _, tt := range tests {
		_, _, err := run(t, tt.in, tt.args...)
		require.Error(t, err, tt.name)
		assert.Equal(t, tt.code, errors.GetCode(err), tt.name)
	}
}

func TestClaimsCmd(t *testing.T) {
	t.Parallel()
	text := "<p>1. A system comprising a detector.</p><p>2. The system of claim 1, wherein the detector is cooled.</p>"

	out, _, err := run(t, text, "claims")
	require.NoError(t, err)
	var res struct {
		Claims []struct {
			Number    int  `json:"number"`
			DependsOn *int `json:"depends_on"`
		} `json:"claims"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Claims, 2)
	require.NotNil(t, res.Claims[1].DependsOn)
	assert.Equal(t, 1, *res.Claims[1].DependsOn)

	out, _, err = run(t, text, "claims", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "NO  TYPE")
	assert.Contains(t, out, "The system of claim 1")

	_, _, err = run(t, "   ", "claims")
	require.Error(t, err)
	assert.Equal(t, errors.CodeClaimTextEmpty, errors.GetCode(err))
}

//Personal.AI order the ending
