package cardano

import (
	"context"
	"errors"
	"time"

	"github.com/tokenraffle/backend/pkg/blockfrost"
)

// Confirmer waits for a submitted transaction to land on chain. Confirmation
// is bounded: after MaxAttempts polls the wait fails instead of spinning
// forever on a dropped transaction.
type Confirmer struct {
	endpoint     blockfrost.IEndpoint
	pollInterval time.Duration
	maxAttempts  int
}

func NewConfirmer(endpoint blockfrost.IEndpoint, pollInterval time.Duration, maxAttempts int) *Confirmer {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}

	if maxAttempts <= 0 {
		maxAttempts = 30
	}

	return &Confirmer{
		endpoint:     endpoint,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
	}
}

// Wait polls until the transaction appears in a block. A not-found response
// means the transaction has not propagated yet and is retried with a growing
// delay, capped at four times the base interval.
func (c *Confirmer) Wait(ctx context.Context, txHash string) error {
	interval := c.pollInterval
	maxInterval := 4 * c.pollInterval

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}

			interval = interval * 3 / 2
			if interval > maxInterval {
				interval = maxInterval
			}
		}

		data, err := c.endpoint.GetTransactionData(ctx, txHash)
		if err != nil {
			var notFound blockfrost.ErrNotFound
			if errors.As(err, &notFound) {
				continue
			}

			return err
		}

		if data.Block != "" {
			return nil
		}
	}

	return errors.New("transaction was not confirmed in time")
}
