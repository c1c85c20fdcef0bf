package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `[{"name":"Kim"}]`, `[{"name":"Kim"}]`},
		{"fenced json", "```json\n[{\"name\":\"Kim\"}]\n```", `[{"name":"Kim"}]`},
		{"fenced bare", "```\n[1,2]\n```", "[1,2]"},
		{"surrounding whitespace", "  \n```json\n[]\n```  ", "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}

func TestParseExtractedRows(t *testing.T) {
	rows, err := ParseExtractedRows("```json\n[{\"name\": \"Kim\", \"scores\": [180, 210]}, {\"name\": \"손님\", \"scores\": [95]}]\n```")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Kim", rows[0].Name)
	assert.Equal(t, []int{180, 210}, rows[0].Scores)
	assert.Equal(t, "손님", rows[1].Name)

	_, err = ParseExtractedRows("I could not read the scoreboard, sorry!")
	assert.Error(t, err)
}
