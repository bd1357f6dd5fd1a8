package draw

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tokenraffle/backend/internal/entity"
	"github.com/tokenraffle/backend/pkg/blockfrost"
	"github.com/tokenraffle/backend/pkg/testutil"
)

func walletWithAddress(address string) func(context.Context, string, blockfrost.GetWalletDataOptions) (*blockfrost.WalletData, error) {
	return func(_ context.Context, identifier string, _ blockfrost.GetWalletDataOptions) (*blockfrost.WalletData, error) {
		return &blockfrost.WalletData{
			StakeKey:  identifier,
			Addresses: []blockfrost.WalletAddress{{Address: address}},
		}, nil
	}
}

func Test_DrawStakeKeys_Proportional(t *testing.T) {
	entries := []entity.RaffleEntry{
		{StakeKey: "stake1aaa", Points: 90},
		{StakeKey: "stake1bbb", Points: 10},
	}

	const draws = 100_000
	winsA := 0
	for i := 0; i < draws; i++ {
		winners := DrawStakeKeys(entries, 1)
		require.Len(t, winners, 1)
		if winners[0] == "stake1aaa" {
			winsA++
		}
	}

	// 90% expected; allow a generous band around the binomial stddev (~0.1%).
	ratio := float64(winsA) / draws
	require.InDelta(t, 0.9, ratio, 0.01)
}

func Test_DrawStakeKeys_NoDoubleWin(t *testing.T) {
	entries := []entity.RaffleEntry{
		{StakeKey: "stake1aaa", Points: 1000},
		{StakeKey: "stake1bbb", Points: 1},
		{StakeKey: "stake1ccc", Points: 1},
	}

	for i := 0; i < 1000; i++ {
		winners := DrawStakeKeys(entries, 3)
		require.Len(t, winners, 3)

		seen := map[string]bool{}
		for _, w := range winners {
			require.False(t, seen[w])
			seen[w] = true
		}
	}
}

func Test_DrawStakeKeys_ClampsToEntrants(t *testing.T) {
	entries := []entity.RaffleEntry{
		{StakeKey: "stake1aaa", Points: 5},
	}

	winners := DrawStakeKeys(entries, 10)
	require.Equal(t, []string{"stake1aaa"}, winners)

	require.Empty(t, DrawStakeKeys(nil, 3))
}

func Test_Selector_Draw_ZeroEntrants(t *testing.T) {
	ctx := testutil.MockContext()
	selector := NewSelector(&testutil.MockBlockfrostEndpoint{
		GetWalletDataFunc: walletWithAddress("addr1creator"),
	})

	raffle := &entity.Raffle{
		Base:            entity.Base{ID: "raffle1"},
		CreatorStakeKey: "stake1creator",
		Amount:          1000,
		NumOfWinners:    3,
	}

	winners, err := selector.Draw(ctx, raffle, nil)
	require.NoError(t, err)
	require.Len(t, winners, 1)
	require.Equal(t, "stake1creator", winners[0].StakeKey)
	require.Equal(t, "addr1creator", winners[0].Address)
	require.Equal(t, int64(1000), winners[0].Amount)
}

func Test_Selector_Draw_FloorDivision(t *testing.T) {
	ctx := testutil.MockContext()
	selector := NewSelector(&testutil.MockBlockfrostEndpoint{
		GetWalletDataFunc: walletWithAddress("addr1winner"),
	})

	raffle := &entity.Raffle{
		Base:            entity.Base{ID: "raffle1"},
		CreatorStakeKey: "stake1creator",
		Amount:          1000,
		NumOfWinners:    3,
	}

	entries := []entity.RaffleEntry{
		{StakeKey: "stake1aaa", Points: 1},
		{StakeKey: "stake1bbb", Points: 1},
		{StakeKey: "stake1ccc", Points: 1},
	}

	winners, err := selector.Draw(ctx, raffle, entries)
	require.NoError(t, err)
	require.Len(t, winners, 3)

	total := int64(0)
	for _, w := range winners {
		require.Equal(t, int64(333), w.Amount)
		total += w.Amount
	}

	// The flooring remainder stays undistributed.
	require.LessOrEqual(t, total, raffle.Amount)
	require.Less(t, raffle.Amount-total, int64(len(winners)))
}
