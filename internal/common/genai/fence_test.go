package genai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "[0, 2]", "[0, 2]"},
		{"json fence", "```json\n[0, 2]\n```", "[0, 2]"},
		{"bare fence", "```\n{\"intent\":\"land\"}\n```", `{"intent":"land"}`},
		{"padded", "  \n```markdown\n# Title\n\nBody\n```  ", "# Title\n\nBody"},
		{"inner fence kept", "Use:\n```\ncode\n```", "Use:\n```\ncode\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}
