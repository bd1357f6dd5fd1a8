package cron

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tokenraffle/backend/internal/domain/draw"
	"github.com/tokenraffle/backend/internal/domain/payout"
	"github.com/tokenraffle/backend/internal/entity"
	"github.com/tokenraffle/backend/internal/repository"
	"github.com/tokenraffle/backend/pkg/cardano"
	"github.com/tokenraffle/backend/pkg/pubsub"
	"github.com/tokenraffle/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const RaffleClosedTopic = "raffle.closed"

// RaffleCloseCronJob sweeps ended raffles: draws winners, pays token prizes
// out, and publishes the result. A failure on one raffle is logged and the
// sweep moves on to the next.
type RaffleCloseCronJob struct {
	raffleRepo    repository.RaffleRepository
	selector      *draw.Selector
	batcher       *payout.Batcher
	confirmer     *cardano.Confirmer
	publisher     pubsub.Publisher
	sweepInterval time.Duration
}

func NewRaffleCloseCronJob(
	ctx context.Context,
	raffleRepo repository.RaffleRepository,
	selector *draw.Selector,
	batcher *payout.Batcher,
	confirmer *cardano.Confirmer,
	publisher pubsub.Publisher,
) *RaffleCloseCronJob {
	sweepInterval := xcontext.Configs(ctx).Raffle.CloseSweepInterval
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	return &RaffleCloseCronJob{
		raffleRepo:    raffleRepo,
		selector:      selector,
		batcher:       batcher,
		confirmer:     confirmer,
		publisher:     publisher,
		sweepInterval: sweepInterval,
	}
}

func (job *RaffleCloseCronJob) Do(ctx context.Context) {
	raffles, err := job.raffleRepo.GetEndedUndrawn(ctx, time.Now().UnixMilli())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load ended raffles: %v", err)
		return
	}

	for i := range raffles {
		if err := job.closeRaffle(ctx, &raffles[i]); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot close raffle %s: %v", raffles[i].ID, err)
		}
	}
}

func (job *RaffleCloseCronJob) closeRaffle(ctx context.Context, raffle *entity.Raffle) error {
	// The sweep may be retried or run concurrently; whoever flips the flag
	// first processes the raffle, everyone else skips it.
	if err := job.raffleRepo.CheckAndMarkWinnersDrawn(ctx, raffle.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}

		return err
	}

	// A token raffle whose prize never arrived in custody cannot pay out.
	if raffle.IsToken && raffle.TxDeposit == "" {
		xcontext.Logger(ctx).Warnf("Deleting raffle %s without prize deposit", raffle.ID)
		return job.raffleRepo.DeleteByID(ctx, raffle.ID)
	}

	if raffle.IsToken {
		if err := job.confirmer.Wait(ctx, raffle.TxDeposit); err != nil {
			xcontext.Logger(ctx).Warnf(
				"Deleting raffle %s with unconfirmed deposit %s: %v", raffle.ID, raffle.TxDeposit, err)
			return job.raffleRepo.DeleteByID(ctx, raffle.ID)
		}
	}

	entries, err := job.raffleRepo.GetEntries(ctx, raffle.ID)
	if err != nil {
		return err
	}

	winners, err := job.selector.Draw(ctx, raffle, entries)
	if err != nil {
		return err
	}

	if err := job.raffleRepo.CreateWinners(ctx, winners); err != nil {
		return err
	}

	if raffle.IsToken {
		if err := job.payOut(ctx, raffle, winners); err != nil {
			return err
		}
	}

	job.publishClosed(ctx, raffle, winners)
	return nil
}

func (job *RaffleCloseCronJob) payOut(
	ctx context.Context, raffle *entity.Raffle, winners []entity.RaffleWinner,
) error {
	lovelace := xcontext.Configs(ctx).Raffle.DepositLovelacePerWinner

	payments := make([]cardano.Payment, 0, len(winners))
	for _, winner := range winners {
		payments = append(payments, cardano.Payment{
			Address:  winner.Address,
			Lovelace: lovelace,
			Assets:   []cardano.Asset{{Unit: raffle.TokenID, Quantity: winner.Amount}},
		})
	}

	recordSubmitted := func(ctx context.Context, txHash string, position int) error {
		return job.raffleRepo.CreateWithdrawal(ctx, &entity.RaffleWithdrawal{
			Base:     entity.Base{ID: uuid.NewString()},
			RaffleID: raffle.ID,
			TxHash:   txHash,
			Position: position,
		})
	}

	txHashes, err := job.batcher.Distribute(ctx, payments, recordSubmitted)
	if err != nil {
		// Submitted batches stand; their hashes are already recorded so the
		// operator can resume the remainder.
		return err
	}

	if len(txHashes) > 0 {
		if err := job.confirmer.Wait(ctx, txHashes[len(txHashes)-1]); err != nil {
			xcontext.Logger(ctx).Warnf("Payout of raffle %s not yet confirmed: %v", raffle.ID, err)
		}
	}

	return nil
}

type raffleClosedEvent struct {
	RaffleID string   `json:"raffle_id"`
	Winners  []string `json:"winners"`
}

func (job *RaffleCloseCronJob) publishClosed(
	ctx context.Context, raffle *entity.Raffle, winners []entity.RaffleWinner,
) {
	if job.publisher == nil {
		return
	}

	event := raffleClosedEvent{RaffleID: raffle.ID}
	for _, winner := range winners {
		event.Winners = append(event.Winners, winner.StakeKey)
	}

	msg, err := json.Marshal(event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal closed event of raffle %s: %v", raffle.ID, err)
		return
	}

	pack := &pubsub.Pack{Key: []byte(raffle.ID), Msg: msg}
	if err := job.publisher.Publish(ctx, RaffleClosedTopic, pack); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot publish closed event of raffle %s: %v", raffle.ID, err)
	}
}

func (job *RaffleCloseCronJob) RunNow() bool {
	return true
}

func (job *RaffleCloseCronJob) Next() time.Time {
	return time.Now().Add(job.sweepInterval)
}
