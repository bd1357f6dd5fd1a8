package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tokenraffle/backend/internal/domain/eligibility"
	"github.com/tokenraffle/backend/internal/entity"
	"github.com/tokenraffle/backend/internal/model"
	"github.com/tokenraffle/backend/internal/repository"
	"github.com/tokenraffle/backend/pkg/blockfrost"
	"github.com/tokenraffle/backend/pkg/errorx"
	"github.com/tokenraffle/backend/pkg/testutil"
	"github.com/tokenraffle/backend/pkg/xcontext"
	"gorm.io/gorm"
)

func newTestDomain(endpoint blockfrost.IEndpoint) (*raffleDomain, repository.RaffleRepository) {
	raffleRepo := repository.NewRaffleRepository()
	evaluator := eligibility.NewEvaluator(raffleRepo, endpoint, nil)
	snapshotBuilder := eligibility.NewSnapshotBuilder(endpoint)
	return NewRaffleDomain(raffleRepo, endpoint, evaluator, snapshotBuilder), raffleRepo
}

func holdingsEndpoint(wallets map[string]*blockfrost.WalletData) *testutil.MockBlockfrostEndpoint {
	return &testutil.MockBlockfrostEndpoint{
		GetWalletDataFunc: func(_ context.Context, identifier string, _ blockfrost.GetWalletDataOptions) (*blockfrost.WalletData, error) {
			wallet, ok := wallets[identifier]
			if !ok {
				return nil, blockfrost.ErrNotFound{Component: "wallet"}
			}
			return wallet, nil
		},
	}
}

func Test_EnterRaffle_AdditiveReentry(t *testing.T) {
	ctx := testutil.MockContext()

	wallet := &blockfrost.WalletData{
		StakeKey: "stake1xyz",
		Tokens: []blockfrost.WalletToken{
			{TokenID: "policyA001", TokenAmount: blockfrost.TokenAmount{OnChain: 1}},
		},
	}
	endpoint := holdingsEndpoint(map[string]*blockfrost.WalletData{"stake1xyz": wallet})
	raffleDomain, _ := newTestDomain(endpoint)

	raffle, err := testutil.SampleRaffle(ctx, &entity.Raffle{
		HolderRules: entity.Array[entity.HolderRule]{{PolicyID: "policyA", Weight: 5}},
	})
	require.NoError(t, err)

	resp, err := raffleDomain.EnterRaffle(ctx, &model.EnterRaffleRequest{
		RaffleID: raffle.ID, Identifier: "stake1xyz",
	})
	require.NoError(t, err)
	require.Equal(t, int64(5), resp.Points)
	require.Equal(t, int64(5), resp.GainedPoints)

	// The same unit cannot be counted again; a changed holding set adds its
	// fresh score on top of the recorded total.
	wallet.Tokens = append(wallet.Tokens, blockfrost.WalletToken{
		TokenID: "policyA002", TokenAmount: blockfrost.TokenAmount{OnChain: 1},
	})

	resp, err = raffleDomain.EnterRaffle(ctx, &model.EnterRaffleRequest{
		RaffleID: raffle.ID, Identifier: "stake1xyz",
	})
	require.NoError(t, err)
	require.Equal(t, int64(5), resp.GainedPoints)
	require.Equal(t, int64(10), resp.Points)
}

func Test_EnterRaffle_Expired(t *testing.T) {
	ctx := testutil.MockContext()

	endpoint := holdingsEndpoint(nil)
	raffleDomain, _ := newTestDomain(endpoint)

	raffle, err := testutil.SampleRaffle(ctx, &entity.Raffle{
		EndAt: time.Now().Add(-time.Minute).UnixMilli(),
	})
	require.NoError(t, err)

	_, err = raffleDomain.EnterRaffle(ctx, &model.EnterRaffleRequest{
		RaffleID: raffle.ID, Identifier: "stake1xyz",
	})

	errx := errorx.Error{}
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.Expired, errx.Code)
}

func Test_EnterRaffle_ExpiresDuringEvaluation(t *testing.T) {
	ctx := testutil.MockContext()

	wallet := &blockfrost.WalletData{
		StakeKey: "stake1xyz",
		Tokens: []blockfrost.WalletToken{
			{TokenID: "policyA001", TokenAmount: blockfrost.TokenAmount{OnChain: 1}},
		},
	}
	endpoint := &testutil.MockBlockfrostEndpoint{
		GetWalletDataFunc: func(_ context.Context, _ string, _ blockfrost.GetWalletDataOptions) (*blockfrost.WalletData, error) {
			// Slow enough that the raffle ends while the wallet resolves.
			time.Sleep(150 * time.Millisecond)
			return wallet, nil
		},
	}
	raffleDomain, raffleRepo := newTestDomain(endpoint)

	raffle, err := testutil.SampleRaffle(ctx, &entity.Raffle{
		HolderRules: entity.Array[entity.HolderRule]{{PolicyID: "policyA", Weight: 5}},
		EndAt:       time.Now().Add(50 * time.Millisecond).UnixMilli(),
	})
	require.NoError(t, err)

	_, err = raffleDomain.EnterRaffle(ctx, &model.EnterRaffleRequest{
		RaffleID: raffle.ID, Identifier: "stake1xyz",
	})

	errx := errorx.Error{}
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.Expired, errx.Code)

	// Nothing was written for the late entry.
	_, err = raffleRepo.GetEntry(ctx, raffle.ID, "stake1xyz")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	units, err := raffleRepo.GetUsedUnits(ctx, raffle.ID)
	require.NoError(t, err)
	require.Empty(t, units)
}

func Test_EnterRaffle_CommitsUsedUnitsAndFungibleMark(t *testing.T) {
	ctx := testutil.MockContext()

	wallet := &blockfrost.WalletData{
		StakeKey: "stake1xyz",
		Tokens: []blockfrost.WalletToken{
			{TokenID: "policyA001", TokenAmount: blockfrost.TokenAmount{OnChain: 1}},
			{TokenID: "policyF000", TokenAmount: blockfrost.TokenAmount{OnChain: 30}},
		},
	}
	endpoint := holdingsEndpoint(map[string]*blockfrost.WalletData{"stake1xyz": wallet})
	raffleDomain, raffleRepo := newTestDomain(endpoint)

	raffle, err := testutil.SampleRaffle(ctx, &entity.Raffle{
		HolderRules: entity.Array[entity.HolderRule]{
			{PolicyID: "policyA", Weight: 1},
			{PolicyID: "policyF", Weight: 2, HasFungibleTokens: true},
		},
	})
	require.NoError(t, err)

	err = raffleRepo.CreateFungibleHolders(ctx, []entity.FungibleHolder{
		{Base: entity.Base{ID: "f1"}, RaffleID: raffle.ID, StakeKey: "stake1xyz", Points: 60},
	})
	require.NoError(t, err)

	resp, err := raffleDomain.EnterRaffle(ctx, &model.EnterRaffleRequest{
		RaffleID: raffle.ID, Identifier: "stake1xyz",
	})
	require.NoError(t, err)
	require.Equal(t, int64(61), resp.Points)

	units, err := raffleRepo.GetUsedUnits(ctx, raffle.ID)
	require.NoError(t, err)
	require.Len(t, units, 1)
	require.Equal(t, "policyA001", units[0].Unit)

	holder, err := raffleRepo.GetFungibleHolder(ctx, raffle.ID, "stake1xyz")
	require.NoError(t, err)
	require.True(t, holder.HasEntered)

	// Re-entering adds nothing: the unit is used and the snapshot consumed.
	_, err = raffleDomain.EnterRaffle(ctx, &model.EnterRaffleRequest{
		RaffleID: raffle.ID, Identifier: "stake1xyz",
	})
	errx := errorx.Error{}
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.Ineligible, errx.Code)
}

func Test_CreateRaffle_TokenPrize(t *testing.T) {
	ctx := testutil.MockContextWithStakeKey("stake1creator")

	endpoint := holdingsEndpoint(map[string]*blockfrost.WalletData{
		"stake1creator": {
			StakeKey: "stake1creator",
			Tokens: []blockfrost.WalletToken{
				{TokenID: "policyTcoin", TokenAmount: blockfrost.TokenAmount{OnChain: 5_000_000, Decimals: 6}},
			},
		},
	})
	raffleDomain, raffleRepo := newTestDomain(endpoint)

	resp, err := raffleDomain.CreateRaffle(ctx, &model.CreateRaffleRequest{
		IsToken:         true,
		Amount:          3,
		TokenID:         "policyTcoin",
		TokenName:       "TCOIN",
		NumOfWinners:    2,
		EndPeriod:       "Days",
		EndPeriodAmount: 7,
		HolderRules:     []model.HolderRule{{PolicyID: "policyA", Weight: 1}},
		TxDeposit:       "txdeposit1",
	})
	require.NoError(t, err)

	raffle, err := raffleRepo.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	require.Equal(t, "stake1creator", raffle.CreatorStakeKey)
	require.Equal(t, int64(3_000_000), raffle.Amount)
	require.Equal(t, 6, raffle.TokenDecimals)
	require.False(t, raffle.WinnersDrawn)
	require.True(t, raffle.Active(time.Now().UnixMilli()))
	require.InDelta(t,
		time.Now().Add(7*24*time.Hour).UnixMilli(), raffle.EndAt, float64(time.Minute.Milliseconds()))
}

func Test_CreateRaffle_Validation(t *testing.T) {
	ctx := testutil.MockContextWithStakeKey("stake1creator")

	endpoint := holdingsEndpoint(map[string]*blockfrost.WalletData{
		"stake1creator": {StakeKey: "stake1creator"},
	})
	raffleDomain, _ := newTestDomain(endpoint)

	// No wallet connected.
	_, err := raffleDomain.CreateRaffle(xcontext.WithRequestStakeKey(ctx, ""), &model.CreateRaffleRequest{})
	errx := errorx.Error{}
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.Unauthenticated, errx.Code)

	// Token prize the creator does not hold.
	_, err = raffleDomain.CreateRaffle(ctx, &model.CreateRaffleRequest{
		IsToken:         true,
		Amount:          1,
		TokenID:         "policyUnknown",
		NumOfWinners:    1,
		EndPeriod:       "Days",
		EndPeriodAmount: 1,
		HolderRules:     []model.HolderRule{{PolicyID: "policyA", Weight: 1}},
		TxDeposit:       "txdeposit1",
	})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)

	// Unknown end period.
	_, err = raffleDomain.CreateRaffle(ctx, &model.CreateRaffleRequest{
		NumOfWinners:    1,
		EndPeriod:       "Fortnights",
		EndPeriodAmount: 1,
		HolderRules:     []model.HolderRule{{PolicyID: "policyA", Weight: 1}},
		OtherTitle:      "A signed poster",
	})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)
}
