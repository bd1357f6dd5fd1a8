package eligibility

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tokenraffle/backend/internal/entity"
	"github.com/tokenraffle/backend/pkg/blockfrost"
	"github.com/tokenraffle/backend/pkg/testutil"
)

func Test_SnapshotBuilder_PaginatesAndScores(t *testing.T) {
	ctx := testutil.MockContext()

	// 100 owners on the first page, 2 on the second; the short page stops the
	// enumeration.
	firstPage := make([]blockfrost.TokenOwner, 0, 100)
	for i := 0; i < 100; i++ {
		firstPage = append(firstPage, blockfrost.TokenOwner{
			Quantity: 1,
			StakeKey: "stake1small",
			Addresses: []blockfrost.WalletAddress{
				{Address: "addr1small"},
			},
		})
	}

	secondPage := []blockfrost.TokenOwner{
		{
			Quantity:  1000,
			StakeKey:  "stake1whale",
			Addresses: []blockfrost.WalletAddress{{Address: "addr1whale"}},
		},
		{
			Quantity:  50,
			StakeKey:  "stake1mid",
			Addresses: []blockfrost.WalletAddress{{Address: "addr1mid"}},
		},
	}

	var pagesAsked []int
	endpoint := &testutil.MockBlockfrostEndpoint{
		GetPolicyDataFunc: func(_ context.Context, policyID string, _ bool) (*blockfrost.PolicyData, error) {
			return &blockfrost.PolicyData{
				PolicyID: policyID,
				Tokens:   []blockfrost.PolicyToken{{TokenID: policyID + "coin", IsFungible: true}},
			}, nil
		},
		GetTokenOwnersFunc: func(_ context.Context, tokenID string, page int) (*blockfrost.TokenOwners, error) {
			pagesAsked = append(pagesAsked, page)
			if page == 1 {
				return &blockfrost.TokenOwners{Owners: firstPage}, nil
			}
			return &blockfrost.TokenOwners{Owners: secondPage}, nil
		},
	}

	builder := NewSnapshotBuilder(endpoint)
	holders, err := builder.Build(ctx, "raffle1", []entity.HolderRule{
		{PolicyID: "policyF", Weight: 2, HasFungibleTokens: true},
		{PolicyID: "policyNFT", Weight: 1},
	})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, pagesAsked)

	// stake1small accumulated across its 100 rows: 100×1×2=200; whale 2000;
	// mid 100. Sorted descending by points.
	require.Len(t, holders, 3)
	require.Equal(t, "stake1whale", holders[0].StakeKey)
	require.Equal(t, int64(2000), holders[0].Points)
	require.Equal(t, "stake1small", holders[1].StakeKey)
	require.Equal(t, int64(200), holders[1].Points)
	require.Equal(t, "stake1mid", holders[2].StakeKey)
	require.Equal(t, int64(100), holders[2].Points)

	for i, holder := range holders {
		require.Equal(t, i, holder.Position)
		require.Equal(t, "raffle1", holder.RaffleID)
		require.False(t, holder.HasEntered)
	}
}

func Test_SnapshotBuilder_ExcludesUnpayableHolders(t *testing.T) {
	ctx := testutil.MockContext()

	owners := []blockfrost.TokenOwner{
		{
			Quantity:  10,
			StakeKey:  "stake1good",
			Addresses: []blockfrost.WalletAddress{{Address: "addr1good"}},
		},
		{
			// Script addresses cannot receive a prize.
			Quantity:  10,
			StakeKey:  "stake1script",
			Addresses: []blockfrost.WalletAddress{{Address: "addr1script", IsScript: true}},
		},
		{
			// Wrong namespace.
			Quantity:  10,
			StakeKey:  "stake1foreign",
			Addresses: []blockfrost.WalletAddress{{Address: "DdzFFexchange"}},
		},
		{
			// No wallet-level key to attribute points to.
			Quantity:  10,
			Addresses: []blockfrost.WalletAddress{{Address: "addr1enterprise"}},
		},
	}

	endpoint := &testutil.MockBlockfrostEndpoint{
		GetPolicyDataFunc: func(_ context.Context, policyID string, _ bool) (*blockfrost.PolicyData, error) {
			return &blockfrost.PolicyData{
				PolicyID: policyID,
				Tokens:   []blockfrost.PolicyToken{{TokenID: policyID + "coin", IsFungible: true}},
			}, nil
		},
		GetTokenOwnersFunc: func(_ context.Context, _ string, _ int) (*blockfrost.TokenOwners, error) {
			return &blockfrost.TokenOwners{Owners: owners}, nil
		},
	}

	builder := NewSnapshotBuilder(endpoint)
	holders, err := builder.Build(ctx, "raffle1", []entity.HolderRule{
		{PolicyID: "policyF", Weight: 1, HasFungibleTokens: true},
	})
	require.NoError(t, err)
	require.Len(t, holders, 1)
	require.Equal(t, "stake1good", holders[0].StakeKey)
	require.Equal(t, int64(10), holders[0].Points)
}

func Test_SnapshotBuilder_ScoresHumanAmounts(t *testing.T) {
	ctx := testutil.MockContext()

	endpoint := &testutil.MockBlockfrostEndpoint{
		GetPolicyDataFunc: func(_ context.Context, policyID string, _ bool) (*blockfrost.PolicyData, error) {
			return &blockfrost.PolicyData{
				PolicyID: policyID,
				Tokens: []blockfrost.PolicyToken{{
					TokenID:     policyID + "coin",
					IsFungible:  true,
					TokenAmount: blockfrost.TokenAmount{Decimals: 6},
				}},
			}, nil
		},
		GetTokenOwnersFunc: func(_ context.Context, _ string, _ int) (*blockfrost.TokenOwners, error) {
			return &blockfrost.TokenOwners{Owners: []blockfrost.TokenOwner{
				{
					// 5_000_000 on-chain at 6 decimals holds 5 tokens.
					Quantity:  5_000_000,
					StakeKey:  "stake1xyz",
					Addresses: []blockfrost.WalletAddress{{Address: "addr1xyz"}},
				},
			}}, nil
		},
	}

	builder := NewSnapshotBuilder(endpoint)
	holders, err := builder.Build(ctx, "raffle1", []entity.HolderRule{
		{PolicyID: "policyF", Weight: 2, HasFungibleTokens: true},
	})
	require.NoError(t, err)
	require.Len(t, holders, 1)
	require.Equal(t, int64(10), holders[0].Points)
}

func Test_SnapshotBuilder_NoFungibleRules(t *testing.T) {
	ctx := testutil.MockContext()

	builder := NewSnapshotBuilder(&testutil.MockBlockfrostEndpoint{})
	holders, err := builder.Build(ctx, "raffle1", []entity.HolderRule{
		{PolicyID: "policyNFT", Weight: 1},
	})
	require.NoError(t, err)
	require.Empty(t, holders)
}
