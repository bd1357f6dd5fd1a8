package draw

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/math"
	"github.com/tokenraffle/backend/internal/entity"
	"github.com/tokenraffle/backend/pkg/blockfrost"
	"github.com/tokenraffle/backend/pkg/crypto"
	"github.com/tokenraffle/backend/pkg/errorx"
	"github.com/tokenraffle/backend/pkg/xcontext"
)

// Selector draws the winners of a closed raffle and resolves their payout
// addresses.
type Selector struct {
	endpoint blockfrost.IEndpoint
}

func NewSelector(endpoint blockfrost.IEndpoint) *Selector {
	return &Selector{endpoint: endpoint}
}

// DrawStakeKeys samples winners without replacement, each draw proportional to
// the wallet's remaining points. Once a wallet wins, all its tickets are
// removed, so no wallet wins twice. The distribution matches drawing literal
// tickets, one per point, from a shuffled pool.
func DrawStakeKeys(entries []entity.RaffleEntry, numOfWinners int) []string {
	winnerCount := math.MinInt(numOfWinners, len(entries))
	if winnerCount <= 0 {
		return nil
	}

	weights := make([]int64, len(entries))
	total := int64(0)
	for i, entry := range entries {
		weights[i] = entry.Points
		total += entry.Points
	}

	tree := newFenwick(weights)
	winners := []string{}
	for len(winners) < winnerCount && total > 0 {
		index := tree.find(crypto.RandInt64n(total))
		winners = append(winners, entries[index].StakeKey)

		tree.add(index, -weights[index])
		total -= weights[index]
	}

	return winners
}

// Draw selects winners for a closed raffle and splits the prize evenly. With
// zero entrants, the creator is the sole winner and the prize returns to
// them. The flooring remainder of the division is not distributed.
func (s *Selector) Draw(
	ctx context.Context, raffle *entity.Raffle, entries []entity.RaffleEntry,
) ([]entity.RaffleWinner, error) {
	stakeKeys := DrawStakeKeys(entries, raffle.NumOfWinners)
	if len(stakeKeys) == 0 {
		stakeKeys = []string{raffle.CreatorStakeKey}
	}

	amountPerWinner := raffle.Amount / int64(len(stakeKeys))

	winners := []entity.RaffleWinner{}
	seen := map[string]int{}
	for _, stakeKey := range stakeKeys {
		address, err := s.payoutAddress(ctx, stakeKey)
		if err != nil {
			return nil, err
		}

		// Guard against two draws resolving to one wallet: merge into a
		// single payout line.
		if index, ok := seen[stakeKey]; ok {
			winners[index].Amount += amountPerWinner
			continue
		}

		seen[stakeKey] = len(winners)
		winners = append(winners, entity.RaffleWinner{
			Base:     entity.Base{ID: uuid.NewString()},
			RaffleID: raffle.ID,
			StakeKey: stakeKey,
			Address:  address,
			Amount:   amountPerWinner,
		})
	}

	return winners, nil
}

func (s *Selector) payoutAddress(ctx context.Context, stakeKey string) (string, error) {
	wallet, err := s.endpoint.GetWalletData(ctx, stakeKey, blockfrost.GetWalletDataOptions{})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot resolve payout address of %s: %v", stakeKey, err)
		return "", errorx.Unknown
	}

	for _, address := range wallet.Addresses {
		if !address.IsScript && strings.HasPrefix(address.Address, "addr1") {
			return address.Address, nil
		}
	}

	return "", errorx.New(errorx.NotFound, "No payable address found for winner")
}
