package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
)

// Generator produces short-lived numeric verification codes.
type Generator interface {
	RandomCode(digits int) (string, error)
}

type CodeGenerator struct{}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{}
}

// RandomCode returns a uniformly random code with exactly the given number
// of digits. The first digit is never zero, so a 6-digit code always falls
// in [100000, 999999].
func (g *CodeGenerator) RandomCode(digits int) (string, error) {
	if digits < 1 || digits > 18 {
		return "", fmt.Errorf("unsupported code length: %d", digits)
	}

	low := int64(1)
	for i := 1; i < digits; i++ {
		low *= 10
	}

	n, err := rand.Int(rand.Reader, big.NewInt(low*9))
	if err != nil {
		return "", fmt.Errorf("read random failed: %w", err)
	}

	return strconv.FormatInt(low+n.Int64(), 10), nil
}
