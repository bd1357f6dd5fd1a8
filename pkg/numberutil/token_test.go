package numberutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_TokenRoundTrip(t *testing.T) {
	for _, decimals := range []int{0, 1, 2, 6, 8} {
		for _, amount := range []int64{0, 1, 29, 42, 1_000_000, 45_000_000_000} {
			human := TokenFromChainToHuman(amount, decimals)
			require.Equal(t, amount, TokenFromHumanToChain(human, decimals),
				"round trip failed for amount=%d decimals=%d", amount, decimals)
		}
	}
}

func Test_TokenFromChainToHuman(t *testing.T) {
	require.Equal(t, 1.5, TokenFromChainToHuman(1_500_000, 6))
	require.Equal(t, float64(25), TokenFromChainToHuman(25, 0))
	require.Equal(t, 0.00000001, TokenFromChainToHuman(1, 8))
}

func Test_TokenFromHumanToChain_TruncatesTowardZero(t *testing.T) {
	require.Equal(t, int64(1_999_999), TokenFromHumanToChain(1.9999999, 6))
	require.Equal(t, int64(0), TokenFromHumanToChain(0.9, 0))
}
