package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	tests := []struct {
		name string
		text string
		want any
	}{
		{
			name: "bare object",
			text: `{"a": 1}`,
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "tagged fence",
			text: "```json\n{\"a\":1}\n```",
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "untagged fence",
			text: "```\n[1, 2, 3]\n```",
			want: []any{float64(1), float64(2), float64(3)},
		},
		{
			name: "surrounding whitespace",
			text: "\n\n  {\"ok\": true}  \n",
			want: map[string]any{"ok": true},
		},
		{
			name: "fence with multiline body",
			text: "```json\n{\n  \"name\": \"backend engineer\",\n  \"score\": 0.9\n}\n```",
			want: map[string]any{"name": "backend engineer", "score": 0.9},
		},
		{
			name: "scalar value",
			text: `"just a string"`,
			want: "just a string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Value(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValue_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"prose", "The answer is 42 because reasons."},
		{"empty", ""},
		{"truncated object", `{"a": 1`},
		{"two values", `{"a":1} {"b":2}`},
		{"fenced prose", "```\nnot json at all\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Value(tt.text)
			assert.Error(t, err)
		})
	}
}

func TestJSON_PreservesRawBytes(t *testing.T) {
	raw, err := JSON("```json\n{\"a\": 1}\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, string(raw))
}
