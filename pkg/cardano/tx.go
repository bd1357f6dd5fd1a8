package cardano

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Asset struct {
	Unit     string `json:"unit"`
	Quantity int64  `json:"quantity"`
}

// Payment is one output of a payout transaction.
type Payment struct {
	Address  string  `json:"address"`
	Lovelace int64   `json:"lovelace,omitempty"`
	Assets   []Asset `json:"assets,omitempty"`
}

type UnsignedTx []byte

type SignedTx []byte

// TxBuilder builds, signs, and submits transactions from the operating wallet.
// Build fails with a size-exceeded error when the requested outputs do not fit
// into one transaction; the error message carries the protocol maximum and the
// actual size.
type TxBuilder interface {
	Build(ctx context.Context, payments []Payment) (UnsignedTx, error)
	Sign(ctx context.Context, tx UnsignedTx) (SignedTx, error)
	Submit(ctx context.Context, tx SignedTx) (string, error)
}

// TxSizeError is the build failure recovered by the payout batcher.
type TxSizeError struct {
	Max    int
	Actual int
}

func (e TxSizeError) Error() string {
	return fmt.Sprintf("Maximum transaction size of %d exceeded. Found: %d.", e.Max, e.Actual)
}

// ParseTxSizeError extracts the max/actual figures of a size-exceeded build
// failure. It recognizes both the typed TxSizeError and the raw message form
// emitted by the underlying serialization library.
func ParseTxSizeError(err error) (TxSizeError, bool) {
	var sizeErr TxSizeError
	if errors.As(err, &sizeErr) {
		return sizeErr, true
	}

	msg := err.Error()
	if !strings.Contains(msg, "Maximum transaction size") {
		return TxSizeError{}, false
	}

	var numbers []int
	for _, word := range strings.Fields(msg) {
		word = strings.TrimRight(word, ".,")
		if n, convErr := strconv.Atoi(word); convErr == nil {
			numbers = append(numbers, n)
		}
	}

	if len(numbers) < 2 {
		return TxSizeError{}, false
	}

	return TxSizeError{Max: numbers[0], Actual: numbers[1]}, true
}
