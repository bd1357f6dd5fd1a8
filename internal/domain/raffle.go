package domain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
	"github.com/tokenraffle/backend/internal/domain/eligibility"
	"github.com/tokenraffle/backend/internal/entity"
	"github.com/tokenraffle/backend/internal/model"
	"github.com/tokenraffle/backend/internal/repository"
	"github.com/tokenraffle/backend/pkg/blockfrost"
	"github.com/tokenraffle/backend/pkg/errorx"
	"github.com/tokenraffle/backend/pkg/numberutil"
	"github.com/tokenraffle/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type RaffleDomain interface {
	CreateRaffle(ctx context.Context, req *model.CreateRaffleRequest) (*model.CreateRaffleResponse, error)
	GetRaffle(ctx context.Context, req *model.GetRaffleRequest) (*model.GetRaffleResponse, error)
	GetMyRaffles(ctx context.Context, req *model.GetMyRafflesRequest) (*model.GetMyRafflesResponse, error)
	EnterRaffle(ctx context.Context, req *model.EnterRaffleRequest) (*model.EnterRaffleResponse, error)
}

type raffleDomain struct {
	raffleRepo      repository.RaffleRepository
	endpoint        blockfrost.IEndpoint
	evaluator       *eligibility.Evaluator
	snapshotBuilder *eligibility.SnapshotBuilder

	// entryLocks serializes concurrent entries of the same wallet into the
	// same raffle. Entries of different wallets only touch commutative rows
	// and need no lock.
	entryLocks *xsync.MapOf[string, *sync.Mutex]
}

func NewRaffleDomain(
	raffleRepo repository.RaffleRepository,
	endpoint blockfrost.IEndpoint,
	evaluator *eligibility.Evaluator,
	snapshotBuilder *eligibility.SnapshotBuilder,
) *raffleDomain {
	return &raffleDomain{
		raffleRepo:      raffleRepo,
		endpoint:        endpoint,
		evaluator:       evaluator,
		snapshotBuilder: snapshotBuilder,
		entryLocks:      xsync.NewMapOf[*sync.Mutex](),
	}
}

func (d *raffleDomain) CreateRaffle(
	ctx context.Context, req *model.CreateRaffleRequest,
) (*model.CreateRaffleResponse, error) {
	creatorStakeKey := xcontext.RequestStakeKey(ctx)
	if creatorStakeKey == "" {
		return nil, errorx.New(errorx.Unauthenticated, "No wallet connected")
	}

	if req.NumOfWinners <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Number of winners must be positive")
	}

	if len(req.HolderRules) == 0 {
		return nil, errorx.New(errorx.BadRequest, "At least one holder rule is required")
	}

	endAt, err := endAtFromPeriod(req.EndPeriod, req.EndPeriodAmount)
	if err != nil {
		return nil, err
	}

	if req.MustBeDelegatingToPool {
		if _, err := d.endpoint.GetStakePool(ctx, req.PoolID); err != nil {
			var notFound blockfrost.ErrNotFound
			if errors.As(err, &notFound) {
				return nil, errorx.New(errorx.NotFound, "Not found stake pool")
			}

			xcontext.Logger(ctx).Errorf("Cannot load stake pool %s: %v", req.PoolID, err)
			return nil, errorx.Unknown
		}
	}

	raffle := &entity.Raffle{
		Base:                   entity.Base{ID: uuid.NewString()},
		CreatorStakeKey:        creatorStakeKey,
		IsToken:                req.IsToken,
		OtherTitle:             req.OtherTitle,
		OtherDescription:       req.OtherDescription,
		OtherImage:             req.OtherImage,
		NumOfWinners:           req.NumOfWinners,
		EndAt:                  endAt,
		MustBeDelegatingToPool: req.MustBeDelegatingToPool,
		PoolID:                 req.PoolID,
		WithBlacklist:          req.WithBlacklist,
		HolderRules:            convertModelHolderRules(req.HolderRules),
		TxDeposit:              req.TxDeposit,
	}

	if req.IsToken {
		if err := d.fillTokenPrize(ctx, raffle, req); err != nil {
			return nil, err
		}
	} else if req.OtherTitle == "" {
		return nil, errorx.New(errorx.BadRequest, "Prize title is required")
	}

	if req.WithBlacklist {
		blacklist, err := d.resolveBlacklist(ctx, req.Blacklist)
		if err != nil {
			return nil, err
		}

		raffle.Blacklist = blacklist
	}

	snapshot, err := d.snapshotBuilder.Build(ctx, raffle.ID, raffle.HolderRules)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot build fungible snapshot: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.raffleRepo.Create(ctx, raffle); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create raffle: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.raffleRepo.CreateFungibleHolders(ctx, snapshot); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot save fungible snapshot: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.CreateRaffleResponse{ID: raffle.ID}, nil
}

// fillTokenPrize resolves the prize token from the creator's wallet, converts
// the requested human amount to its indivisible form, and requires the prize
// custody transaction hash.
func (d *raffleDomain) fillTokenPrize(
	ctx context.Context, raffle *entity.Raffle, req *model.CreateRaffleRequest,
) error {
	wallet, err := d.endpoint.GetWalletData(
		ctx, raffle.CreatorStakeKey, blockfrost.GetWalletDataOptions{WithTokens: true})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load creator wallet: %v", err)
		return errorx.Unknown
	}

	var prize *blockfrost.WalletToken
	for i := range wallet.Tokens {
		if wallet.Tokens[i].TokenID == req.TokenID {
			prize = &wallet.Tokens[i]
			break
		}
	}

	if prize == nil {
		return errorx.New(errorx.BadRequest, "You do not hold the prize token")
	}

	amount := numberutil.TokenFromHumanToChain(req.Amount, prize.TokenAmount.Decimals)
	if amount <= 0 {
		return errorx.New(errorx.BadRequest, "Prize amount must be positive")
	}

	if amount > prize.TokenAmount.OnChain {
		return errorx.New(errorx.BadRequest, "You do not hold enough of the prize token")
	}

	if req.TxDeposit == "" {
		return errorx.New(errorx.BadRequest, "Prize deposit transaction is required")
	}

	raffle.Amount = amount
	raffle.TokenID = req.TokenID
	raffle.TokenName = req.TokenName
	raffle.TokenImage = req.TokenImage
	raffle.TokenDecimals = prize.TokenAmount.Decimals
	return nil
}

// resolveBlacklist canonicalizes whatever identifier forms the creator
// supplied (handles, addresses, stake keys) to stake keys, once, at creation.
func (d *raffleDomain) resolveBlacklist(
	ctx context.Context, identifiers []string,
) (entity.Array[string], error) {
	result := entity.Array[string]{}
	for _, identifier := range identifiers {
		identifier = strings.TrimSpace(identifier)
		if identifier == "" {
			continue
		}

		wallet, err := d.endpoint.GetWalletData(ctx, identifier, blockfrost.GetWalletDataOptions{})
		if err != nil {
			var notFound blockfrost.ErrNotFound
			if errors.As(err, &notFound) {
				return nil, errorx.New(errorx.NotFound, "Unknown blacklisted wallet %s", identifier)
			}

			xcontext.Logger(ctx).Errorf("Cannot resolve blacklisted wallet %s: %v", identifier, err)
			return nil, errorx.Unknown
		}

		result = append(result, wallet.StakeKey)
	}

	return result, nil
}

func (d *raffleDomain) GetRaffle(
	ctx context.Context, req *model.GetRaffleRequest,
) (*model.GetRaffleResponse, error) {
	raffle, err := d.raffleRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot load raffle: %v", err)
		return nil, errorx.Unknown
	}

	entries, err := d.raffleRepo.GetEntries(ctx, raffle.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load raffle entries: %v", err)
		return nil, errorx.Unknown
	}

	winners := []entity.RaffleWinner{}
	withdrawals := []entity.RaffleWithdrawal{}
	if raffle.WinnersDrawn {
		winners, err = d.raffleRepo.GetWinners(ctx, raffle.ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot load raffle winners: %v", err)
			return nil, errorx.Unknown
		}

		withdrawals, err = d.raffleRepo.GetWithdrawals(ctx, raffle.ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot load raffle payouts: %v", err)
			return nil, errorx.Unknown
		}
	}

	return &model.GetRaffleResponse{
		Raffle: convertRaffle(raffle, len(entries), winners, withdrawals),
	}, nil
}

func (d *raffleDomain) GetMyRaffles(
	ctx context.Context, req *model.GetMyRafflesRequest,
) (*model.GetMyRafflesResponse, error) {
	stakeKey := xcontext.RequestStakeKey(ctx)
	if stakeKey == "" {
		return nil, errorx.New(errorx.Unauthenticated, "No wallet connected")
	}

	raffles, err := d.raffleRepo.GetByCreator(ctx, stakeKey)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load raffles of %s: %v", stakeKey, err)
		return nil, errorx.Unknown
	}

	result := []model.Raffle{}
	for i := range raffles {
		result = append(result, convertRaffle(&raffles[i], 0, nil, nil))
	}

	return &model.GetMyRafflesResponse{Raffles: result}, nil
}

func (d *raffleDomain) EnterRaffle(
	ctx context.Context, req *model.EnterRaffleRequest,
) (*model.EnterRaffleResponse, error) {
	raffle, err := d.raffleRepo.GetByID(ctx, req.RaffleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot load raffle: %v", err)
		return nil, errorx.Unknown
	}

	// Expiry is judged on server time only.
	if !raffle.Active(time.Now().UnixMilli()) {
		return nil, errorx.New(errorx.Expired, "This raffle has ended")
	}

	wallet, err := d.endpoint.GetWalletData(ctx, req.Identifier, blockfrost.GetWalletDataOptions{
		WithStakePool: raffle.MustBeDelegatingToPool,
		WithTokens:    true,
	})
	if err != nil {
		var notFound blockfrost.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, errorx.New(errorx.NotFound, "Unknown wallet %s", req.Identifier)
		}

		xcontext.Logger(ctx).Errorf("Cannot resolve wallet %s: %v", req.Identifier, err)
		return nil, errorx.Unknown
	}

	// Two concurrent entries of one wallet must not lose an update; entries of
	// different wallets proceed in parallel.
	lock, _ := d.entryLocks.LoadOrStore(raffle.ID+"/"+wallet.StakeKey, &sync.Mutex{})
	lock.Lock()
	defer lock.Unlock()

	result, err := d.evaluator.Evaluate(ctx, raffle, wallet)
	if err != nil {
		return nil, err
	}

	if result.Points <= 0 {
		return nil, errorx.New(errorx.Ineligible, "Your holdings yield no points for this raffle")
	}

	// Wallet resolution and evaluation take time; the raffle may have ended
	// underneath them. Nothing is written past this point for an ended raffle.
	if !raffle.Active(time.Now().UnixMilli()) {
		return nil, errorx.New(errorx.Expired, "This raffle has ended")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	entry := &entity.RaffleEntry{
		Base:     entity.Base{ID: uuid.NewString()},
		RaffleID: raffle.ID,
		StakeKey: wallet.StakeKey,
		Points:   result.Points,
	}
	if err := d.raffleRepo.UpsertEntry(ctx, entry); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record entry: %v", err)
		return nil, errorx.Unknown
	}

	usedUnits := make([]entity.UsedUnit, 0, len(result.Units))
	for _, unit := range result.Units {
		usedUnits = append(usedUnits, entity.UsedUnit{
			Base:     entity.Base{ID: uuid.NewString()},
			RaffleID: raffle.ID,
			Unit:     unit,
		})
	}
	if err := d.raffleRepo.AddUsedUnits(ctx, usedUnits); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record used units: %v", err)
		return nil, errorx.Unknown
	}

	if result.WithFungible {
		err := d.raffleRepo.CheckAndMarkFungibleEntered(ctx, raffle.ID, wallet.StakeKey)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot consume fungible snapshot points: %v", err)
			return nil, errorx.Unknown
		}
	}

	xcontext.WithCommitDBTransaction(ctx)

	merged, err := d.raffleRepo.GetEntry(ctx, raffle.ID, wallet.StakeKey)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reload entry: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.Logger(ctx).Debugf("Wallet %s entered raffle %s with %d points (total %d)",
		wallet.StakeKey, raffle.ID, result.Points, merged.Points)

	return &model.EnterRaffleResponse{
		Points:       merged.Points,
		GainedPoints: result.Points,
	}, nil
}

var endPeriods = map[string]time.Duration{
	"Minutes": time.Minute,
	"Hours":   time.Hour,
	"Days":    24 * time.Hour,
	"Weeks":   7 * 24 * time.Hour,
	// A month is four weeks here, matching what creators are shown.
	"Months": 28 * 24 * time.Hour,
}

func endAtFromPeriod(period string, amount int) (int64, error) {
	duration, ok := endPeriods[period]
	if !ok {
		return 0, errorx.New(errorx.BadRequest, "Invalid end period %s", period)
	}

	if amount <= 0 {
		return 0, errorx.New(errorx.BadRequest, "End period amount must be positive")
	}

	return time.Now().Add(time.Duration(amount) * duration).UnixMilli(), nil
}
