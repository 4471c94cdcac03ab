package otp

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomCode_SixDigitRange(t *testing.T) {
	g := NewCodeGenerator()

	for i := 0; i < 1000; i++ {
		code, err := g.RandomCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestRandomCode_OtherLengths(t *testing.T) {
	g := NewCodeGenerator()

	for _, digits := range []int{1, 4, 8} {
		code, err := g.RandomCode(digits)
		require.NoError(t, err)
		assert.Len(t, code, digits)
	}
}

func TestRandomCode_InvalidLength(t *testing.T) {
	g := NewCodeGenerator()

	_, err := g.RandomCode(0)
	assert.Error(t, err)

	_, err = g.RandomCode(19)
	assert.Error(t, err)
}
