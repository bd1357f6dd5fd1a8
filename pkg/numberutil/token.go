package numberutil

import "math"

// Pow10 returns 10^decimals as an integer. Decimals is always non-negative for
// on-chain tokens.
func Pow10(decimals int) int64 {
	result := int64(1)
	for i := 0; i < decimals; i++ {
		result *= 10
	}

	return result
}

// TokenFromChainToHuman converts an indivisible on-chain amount to its
// human-readable decimal amount.
func TokenFromChainToHuman(amount int64, decimals int) float64 {
	return float64(amount) / float64(Pow10(decimals))
}

// TokenFromHumanToChain converts a human-readable decimal amount to the
// indivisible on-chain amount, truncating toward zero so that repeated
// conversions are deterministic. Values within floating-point noise of a whole
// unit are snapped to it, otherwise a round trip through
// TokenFromChainToHuman could lose a unit (e.g. 29/100*100 = 28.999...).
func TokenFromHumanToChain(amount float64, decimals int) int64 {
	scaled := amount * float64(Pow10(decimals))
	if nearest := math.Round(scaled); math.Abs(scaled-nearest) < 1e-6 {
		return int64(nearest)
	}

	return int64(scaled)
}
