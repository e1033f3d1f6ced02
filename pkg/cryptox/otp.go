package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateNumericCode returns a code of exactly `digits` decimal digits drawn
// uniformly from [10^(digits-1), 10^digits - 1] using crypto/rand. With six
// digits that is 100000..999999, so the code never has a leading zero.
func GenerateNumericCode(digits int) (string, error) {
	if digits < 1 || digits > 18 {
		return "", fmt.Errorf("code length must be between 1 and 18, got %d", digits)
	}

	lower := int64(1)
	for range digits - 1 {
		lower *= 10
	}
	upper := lower * 10 // exclusive
	if digits == 1 {
		lower = 0
	}

	n, err := rand.Int(rand.Reader, big.NewInt(upper-lower))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	return fmt.Sprintf("%0*d", digits, n.Int64()+lower), nil
}
