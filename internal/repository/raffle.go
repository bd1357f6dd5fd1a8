package repository

import (
	"context"

	"github.com/tokenraffle/backend/internal/entity"
	"github.com/tokenraffle/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RaffleRepository interface {
	// Raffle
	Create(ctx context.Context, raffle *entity.Raffle) error
	GetByID(ctx context.Context, id string) (*entity.Raffle, error)
	GetByCreator(ctx context.Context, creatorStakeKey string) ([]entity.Raffle, error)
	GetEndedUndrawn(ctx context.Context, nowMillis int64) ([]entity.Raffle, error)
	CheckAndMarkWinnersDrawn(ctx context.Context, raffleID string) error
	DeleteByID(ctx context.Context, id string) error

	// Entry
	UpsertEntry(ctx context.Context, entry *entity.RaffleEntry) error
	GetEntry(ctx context.Context, raffleID, stakeKey string) (*entity.RaffleEntry, error)
	GetEntries(ctx context.Context, raffleID string) ([]entity.RaffleEntry, error)

	// Used unit
	AddUsedUnits(ctx context.Context, units []entity.UsedUnit) error
	GetUsedUnits(ctx context.Context, raffleID string) ([]entity.UsedUnit, error)

	// Fungible snapshot
	CreateFungibleHolders(ctx context.Context, holders []entity.FungibleHolder) error
	GetFungibleHolder(ctx context.Context, raffleID, stakeKey string) (*entity.FungibleHolder, error)
	CheckAndMarkFungibleEntered(ctx context.Context, raffleID, stakeKey string) error

	// Winner
	CreateWinners(ctx context.Context, winners []entity.RaffleWinner) error
	GetWinners(ctx context.Context, raffleID string) ([]entity.RaffleWinner, error)

	// Withdrawal
	CreateWithdrawal(ctx context.Context, withdrawal *entity.RaffleWithdrawal) error
	GetWithdrawals(ctx context.Context, raffleID string) ([]entity.RaffleWithdrawal, error)
}

type raffleRepository struct{}

func NewRaffleRepository() *raffleRepository {
	return &raffleRepository{}
}

func (r *raffleRepository) Create(ctx context.Context, raffle *entity.Raffle) error {
	return xcontext.DB(ctx).Create(raffle).Error
}

func (r *raffleRepository) GetByID(ctx context.Context, id string) (*entity.Raffle, error) {
	var result entity.Raffle
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *raffleRepository) GetByCreator(ctx context.Context, creatorStakeKey string) ([]entity.Raffle, error) {
	var result []entity.Raffle
	err := xcontext.DB(ctx).Where("creator_stake_key=?", creatorStakeKey).
		Order("created_at DESC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *raffleRepository) GetEndedUndrawn(ctx context.Context, nowMillis int64) ([]entity.Raffle, error) {
	var result []entity.Raffle
	err := xcontext.DB(ctx).Where("end_at <= ? AND winners_drawn=?", nowMillis, false).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// CheckAndMarkWinnersDrawn flips the drawn flag exactly once. A second sweep
// hitting the same raffle gets gorm.ErrRecordNotFound and skips it.
func (r *raffleRepository) CheckAndMarkWinnersDrawn(ctx context.Context, raffleID string) error {
	tx := xcontext.DB(ctx).Model(&entity.Raffle{}).
		Where("id=? AND winners_drawn=?", raffleID, false).
		Update("winners_drawn", true)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *raffleRepository) DeleteByID(ctx context.Context, id string) error {
	return xcontext.DB(ctx).Delete(&entity.Raffle{}, "id=?", id).Error
}

// UpsertEntry merges additively: a wallet re-entering with new holdings gains
// the delta on top of its existing points.
func (r *raffleRepository) UpsertEntry(ctx context.Context, entry *entity.RaffleEntry) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "raffle_id"}, {Name: "stake_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"points": gorm.Expr("points+?", entry.Points),
		}),
	}).Create(entry).Error
}

func (r *raffleRepository) GetEntry(ctx context.Context, raffleID, stakeKey string) (*entity.RaffleEntry, error) {
	var result entity.RaffleEntry
	err := xcontext.DB(ctx).
		Take(&result, "raffle_id=? AND stake_key=?", raffleID, stakeKey).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *raffleRepository) GetEntries(ctx context.Context, raffleID string) ([]entity.RaffleEntry, error) {
	var result []entity.RaffleEntry
	err := xcontext.DB(ctx).Where("raffle_id=?", raffleID).
		Order("created_at ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// AddUsedUnits is a set union: units already recorded for the raffle are
// silently kept.
func (r *raffleRepository) AddUsedUnits(ctx context.Context, units []entity.UsedUnit) error {
	if len(units) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "raffle_id"}, {Name: "unit"}},
		DoNothing: true,
	}).Create(units).Error
}

func (r *raffleRepository) GetUsedUnits(ctx context.Context, raffleID string) ([]entity.UsedUnit, error) {
	var result []entity.UsedUnit
	if err := xcontext.DB(ctx).Find(&result, "raffle_id=?", raffleID).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *raffleRepository) CreateFungibleHolders(ctx context.Context, holders []entity.FungibleHolder) error {
	if len(holders) == 0 {
		return nil
	}

	return xcontext.DB(ctx).CreateInBatches(holders, 100).Error
}

func (r *raffleRepository) GetFungibleHolder(ctx context.Context, raffleID, stakeKey string) (*entity.FungibleHolder, error) {
	var result entity.FungibleHolder
	err := xcontext.DB(ctx).
		Take(&result, "raffle_id=? AND stake_key=?", raffleID, stakeKey).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// CheckAndMarkFungibleEntered consumes a snapshot row exactly once. The second
// attempt of the same wallet gets gorm.ErrRecordNotFound.
func (r *raffleRepository) CheckAndMarkFungibleEntered(ctx context.Context, raffleID, stakeKey string) error {
	tx := xcontext.DB(ctx).Model(&entity.FungibleHolder{}).
		Where("raffle_id=? AND stake_key=? AND has_entered=?", raffleID, stakeKey, false).
		Update("has_entered", true)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *raffleRepository) CreateWinners(ctx context.Context, winners []entity.RaffleWinner) error {
	if len(winners) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Create(winners).Error
}

func (r *raffleRepository) GetWinners(ctx context.Context, raffleID string) ([]entity.RaffleWinner, error) {
	var result []entity.RaffleWinner
	err := xcontext.DB(ctx).Where("raffle_id=?", raffleID).
		Order("created_at ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *raffleRepository) CreateWithdrawal(ctx context.Context, withdrawal *entity.RaffleWithdrawal) error {
	return xcontext.DB(ctx).Create(withdrawal).Error
}

func (r *raffleRepository) GetWithdrawals(ctx context.Context, raffleID string) ([]entity.RaffleWithdrawal, error) {
	var result []entity.RaffleWithdrawal
	err := xcontext.DB(ctx).Where("raffle_id=?", raffleID).
		Order("position ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
