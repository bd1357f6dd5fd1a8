package payout

import (
	"context"
	"sync"

	"github.com/tokenraffle/backend/pkg/cardano"
	"github.com/tokenraffle/backend/pkg/errorx"
	"github.com/tokenraffle/backend/pkg/xcontext"
)

// submitMutex serializes every payout submission in the process. The
// operating wallet is a single signer with one UTXO set; two concurrent
// sweeps would contend for the same inputs.
var submitMutex sync.Mutex

const maxShrinkRetries = 10

// Submitted is reported to the caller after every accepted transaction. Once
// a batch is on chain it stays on chain, so recording must happen before the
// next batch goes out.
type Submitted func(ctx context.Context, txHash string, position int) error

// Batcher splits a payout list into transactions that fit under the protocol
// size ceiling. It starts with everything in one transaction and shrinks the
// batch size proportionally whenever the builder reports how far over the
// limit the attempt was.
type Batcher struct {
	builder cardano.TxBuilder
}

func NewBatcher(builder cardano.TxBuilder) *Batcher {
	return &Batcher{builder: builder}
}

// Distribute submits the payments and returns the transaction hashes in
// submission order. A size-exceeded build failure restarts the batching with
// a smaller size factor; any other failure is fatal for the remaining
// batches, while already submitted ones stand.
func (b *Batcher) Distribute(
	ctx context.Context, payments []cardano.Payment, submitted Submitted,
) ([]string, error) {
	if len(payments) == 0 {
		return nil, nil
	}

	submitMutex.Lock()
	defer submitMutex.Unlock()

	sizeFactor := float64(0)
	for retry := 0; retry <= maxShrinkRetries; retry++ {
		batchSize := len(payments)
		if sizeFactor > 0 {
			batchSize = int(sizeFactor * float64(len(payments)))
		}

		if batchSize < 1 {
			batchSize = 1
		}

		txHashes, sizeErr, err := b.submitBatches(ctx, payments, batchSize, submitted)
		if err != nil {
			return txHashes, err
		}

		if sizeErr == nil {
			return txHashes, nil
		}

		if sizeErr.Actual <= 0 {
			xcontext.Logger(ctx).Errorf("Size error reports invalid actual size %d", sizeErr.Actual)
			return txHashes, errorx.Unknown
		}

		previous := sizeFactor
		if previous == 0 {
			previous = 1
		}
		sizeFactor = previous * float64(sizeErr.Max) / float64(sizeErr.Actual)

		// The factor must strictly shrink the batch, or a pathological size
		// report would loop forever.
		if batchSize == 1 || int(sizeFactor*float64(len(payments))) >= batchSize {
			xcontext.Logger(ctx).Errorf(
				"Batch of %d does not shrink under factor %f", batchSize, sizeFactor)
			return txHashes, errorx.Unknown
		}

		xcontext.Logger(ctx).Infof(
			"Transaction too large (%d > %d), retrying with size factor %f",
			sizeErr.Actual, sizeErr.Max, sizeFactor)
	}

	return nil, errorx.Unknown
}

func (b *Batcher) submitBatches(
	ctx context.Context, payments []cardano.Payment, batchSize int, submitted Submitted,
) ([]string, *cardano.TxSizeError, error) {
	txHashes := []string{}
	for start := 0; start < len(payments); start += batchSize {
		end := start + batchSize
		if end > len(payments) {
			end = len(payments)
		}

		unsigned, err := b.builder.Build(ctx, payments[start:end])
		if err != nil {
			if sizeErr, ok := cardano.ParseTxSizeError(err); ok {
				// Only an untouched run may restart: after a submitted batch
				// the remaining outputs no longer match the original
				// partitioning.
				if len(txHashes) > 0 {
					xcontext.Logger(ctx).Errorf("Batch overflows after partial submission: %v", err)
					return txHashes, nil, errorx.Unknown
				}

				return nil, &sizeErr, nil
			}

			xcontext.Logger(ctx).Errorf("Cannot build payout transaction: %v", err)
			return txHashes, nil, errorx.Unknown
		}

		signed, err := b.builder.Sign(ctx, unsigned)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot sign payout transaction: %v", err)
			return txHashes, nil, errorx.Unknown
		}

		txHash, err := b.builder.Submit(ctx, signed)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot submit payout transaction: %v", err)
			return txHashes, nil, errorx.Unknown
		}

		if submitted != nil {
			if err := submitted(ctx, txHash, len(txHashes)); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot record submitted payout %s: %v", txHash, err)
				return txHashes, nil, errorx.Unknown
			}
		}

		txHashes = append(txHashes, txHash)
	}

	return txHashes, nil, nil
}
