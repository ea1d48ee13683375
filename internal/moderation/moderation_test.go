package moderation_test

import (
	"testing"

	"modhub/backend/internal/moderation"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Clean(t *testing.T) {
	f := moderation.NewFilter()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain text untouched", input: "Great mod, thanks!", want: "Great mod, thanks!"},
		{name: "trims whitespace", input: "  hello  ", want: "hello"},
		{name: "strips tags", input: "<b>bold</b> move", want: "bold move"},
		{name: "drops scripts", input: "hi<script>alert(1)</script>", want: "hi"},
		{name: "keeps ampersands readable", input: "A & B", want: "A & B"},
		{name: "markup only becomes empty", input: "<img src=x>", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Clean(tt.input))
		})
	}
}

func TestFilter_CensorsProfanity(t *testing.T) {
	f := moderation.NewFilter()

	out := f.Clean("this mod is shit")
	assert.NotContains(t, out, "shit")
	assert.Contains(t, out, "this mod is")
	assert.True(t, f.IsProfane("shit"))
	assert.False(t, f.IsProfane("textures"))
}
