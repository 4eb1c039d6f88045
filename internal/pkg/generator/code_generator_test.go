package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSaleNumber(t *testing.T) {
	g := NewCodeGenerator()

	first := g.GenerateSaleNumber("downtown")
	second := g.GenerateSaleNumber("downtown")

	assert.True(t, strings.HasPrefix(first, "downtown-"))
	assert.Len(t, first, len("downtown-")+10)
	assert.NotEqual(t, first, second)
}
