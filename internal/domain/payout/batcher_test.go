package payout

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tokenraffle/backend/pkg/cardano"
	"github.com/tokenraffle/backend/pkg/testutil"
)

func makePayments(n int) []cardano.Payment {
	payments := make([]cardano.Payment, n)
	for i := range payments {
		payments[i] = cardano.Payment{
			Address:  fmt.Sprintf("addr1winner%d", i),
			Lovelace: 2_000_000,
			Assets:   []cardano.Asset{{Unit: "token1", Quantity: 10}},
		}
	}

	return payments
}

func Test_Batcher_SingleTransaction(t *testing.T) {
	ctx := testutil.MockContext()

	var builtSizes []int
	builder := &testutil.MockTxBuilder{
		BuildFunc: func(_ context.Context, payments []cardano.Payment) (cardano.UnsignedTx, error) {
			builtSizes = append(builtSizes, len(payments))
			return cardano.UnsignedTx("tx"), nil
		},
		SubmitFunc: func(_ context.Context, _ cardano.SignedTx) (string, error) {
			return "hash0", nil
		},
	}

	txHashes, err := NewBatcher(builder).Distribute(ctx, makePayments(5), nil)
	require.NoError(t, err)
	require.Equal(t, []string{"hash0"}, txHashes)
	require.Equal(t, []int{5}, builtSizes)
}

func Test_Batcher_ShrinksOnSizeExceeded(t *testing.T) {
	ctx := testutil.MockContext()

	const total = 100
	submissions := 0
	var builtSizes []int
	builder := &testutil.MockTxBuilder{
		BuildFunc: func(_ context.Context, payments []cardano.Payment) (cardano.UnsignedTx, error) {
			builtSizes = append(builtSizes, len(payments))
			if len(payments) == total {
				return nil, cardano.TxSizeError{Max: 16384, Actual: 21861}
			}
			return cardano.UnsignedTx("tx"), nil
		},
		SubmitFunc: func(_ context.Context, _ cardano.SignedTx) (string, error) {
			submissions++
			return fmt.Sprintf("hash%d", submissions), nil
		},
	}

	var recorded []string
	submitted := func(_ context.Context, txHash string, position int) error {
		require.Equal(t, len(recorded), position)
		recorded = append(recorded, txHash)
		return nil
	}

	txHashes, err := NewBatcher(builder).Distribute(ctx, makePayments(total), submitted)
	require.NoError(t, err)
	require.Equal(t, recorded, txHashes)

	// batchSize after the first failure is floor(16384/21861 * 100) = 74.
	require.Equal(t, 74, builtSizes[1])

	// Every payout is covered exactly once across the final batches.
	covered := 0
	for _, size := range builtSizes[1:] {
		covered += size
	}
	require.Equal(t, total, covered)
}

func Test_Batcher_FatalFailureKeepsSubmitted(t *testing.T) {
	ctx := testutil.MockContext()

	builds := 0
	builder := &testutil.MockTxBuilder{
		BuildFunc: func(_ context.Context, payments []cardano.Payment) (cardano.UnsignedTx, error) {
			builds++
			if builds == 1 {
				return nil, cardano.TxSizeError{Max: 16384, Actual: 40000}
			}
			if builds > 2 {
				return nil, fmt.Errorf("utxo exhausted")
			}
			return cardano.UnsignedTx("tx"), nil
		},
		SubmitFunc: func(_ context.Context, _ cardano.SignedTx) (string, error) {
			return "hash1", nil
		},
	}

	var recorded []string
	submitted := func(_ context.Context, txHash string, _ int) error {
		recorded = append(recorded, txHash)
		return nil
	}

	txHashes, err := NewBatcher(builder).Distribute(ctx, makePayments(10), submitted)
	require.Error(t, err)
	require.Equal(t, []string{"hash1"}, txHashes)
	require.Equal(t, []string{"hash1"}, recorded)
}

func Test_Batcher_BoundedRetries(t *testing.T) {
	ctx := testutil.MockContext()

	builder := &testutil.MockTxBuilder{
		BuildFunc: func(_ context.Context, payments []cardano.Payment) (cardano.UnsignedTx, error) {
			// A report claiming the attempt barely fits would keep the batch
			// size unchanged; the batcher must detect the stall.
			return nil, cardano.TxSizeError{Max: 16384, Actual: 16385}
		},
	}

	_, err := NewBatcher(builder).Distribute(ctx, makePayments(10), nil)
	require.Error(t, err)
}
