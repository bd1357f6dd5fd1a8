package crypto

import (
	"crypto/rand"
	"math/big"
)

// RandInt64n returns a uniform random value in [0, n). It panics on a
// non-positive n. Draw fairness depends on this being a CSPRNG.
func RandInt64n(n int64) int64 {
	r, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		panic(err)
	}

	return r.Int64()
}
