package normalization

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent-normalizer/pkg/errors"
	"github.com/turtacn/patent-normalizer/pkg/matchguard"
)

func matchguardWithMaxInput(n int) matchguard.Guard {
	return matchguard.Guard{Timeout: matchguard.DefaultTimeout, MaxInput: n}
}

func TestDecodeRecord_UsesNumber(t *testing.T) {
	t.Parallel()
	v, err := DecodeRecord([]byte(`{"n": 12345678901234567890}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678901234567890"), v.(map[string]any)["n"])
}

func TestDecodeRecords(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"empty", "   \n", 0, false},
		{"array", `[{"a":1},{"a":2},{"a":3}]`, 3, false},
		{"single object", `{"a":1}`, 1, false},
		{"ndjson", "{\"a\":1}\n{\"a\":2}\n", 2, false},
		{"array with trailing data", `[{}] {}`, 0, true},
		{"broken stream", "{\"a\":1}\n{\"a\":", 0, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := DecodeRecords(strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.CodeDecodeFailed))
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}
