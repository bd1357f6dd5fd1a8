package testutil

import (
	"context"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/tokenraffle/backend/internal/entity"
	"github.com/tokenraffle/backend/internal/repository"
)

// SampleRaffle creates a raffle in database with randomized fields. Non-zero
// fields of init overwrite the sample before it is saved.
func SampleRaffle(ctx context.Context, init *entity.Raffle) (entity.Raffle, error) {
	raffleRepo := repository.NewRaffleRepository()

	sample := &entity.Raffle{
		Base:            entity.Base{ID: uuid.NewString()},
		CreatorStakeKey: "stake1" + uuid.NewString(),
		IsToken:         true,
		Amount:          1000,
		TokenID:         "lovelace",
		TokenName:       "ADA",
		NumOfWinners:    1,
		EndAt:           time.Now().Add(time.Hour).UnixMilli(),
		HolderRules: entity.Array[entity.HolderRule]{
			{PolicyID: "policy1", Weight: 1},
		},
		TxDeposit: "txdeposit",
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := raffleRepo.Create(ctx, sample); err != nil {
		return *sample, err
	}
	return *sample, nil
}

func overwriteFields[T any](origin *T, overwrite T) {
	originValue := reflect.ValueOf(origin).Elem()
	overwriteValue := reflect.ValueOf(overwrite)

	for i := 0; i < overwriteValue.NumField(); i++ {
		overwriteField := overwriteValue.Field(i)
		if !overwriteField.Comparable() {
			if !overwriteField.IsZero() {
				originValue.Field(i).Set(overwriteField)
			}
			continue
		}

		if overwriteField.Interface() != reflect.Zero(overwriteField.Type()).Interface() {
			originValue.Field(i).Set(overwriteField)
		}
	}
}
