package usecase

import (
	"crypto/rand"
	"math/big"
)

// RandomCodeGenerator produces numeric one-time codes from crypto/rand.
type RandomCodeGenerator struct{}

// NewRandomCodeGenerator creates a new RandomCodeGenerator.
func NewRandomCodeGenerator() *RandomCodeGenerator {
	return &RandomCodeGenerator{}
}

// Generate returns a numeric code of the given length. The first digit is
// never zero so the code always has exactly length digits.
func (g *RandomCodeGenerator) Generate(length int) (string, error) {
	digits := make([]byte, length)

	for i := range digits {
		max := big.NewInt(10)
		min := int64(0)
		if i == 0 {
			max = big.NewInt(9)
			min = 1
		}

		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}

		digits[i] = byte('0' + min + n.Int64())
	}

	return string(digits), nil
}
