package domain

import (
	"time"

	"github.com/fatih/structs"
	"github.com/mitchellh/mapstructure"
	"github.com/tokenraffle/backend/internal/entity"
	"github.com/tokenraffle/backend/internal/model"
	"github.com/tokenraffle/backend/pkg/numberutil"
)

func convertRaffle(
	raffle *entity.Raffle,
	numOfEntries int,
	winners []entity.RaffleWinner,
	withdrawals []entity.RaffleWithdrawal,
) model.Raffle {
	if raffle == nil {
		return model.Raffle{}
	}

	txHashes := []string{}
	for _, withdrawal := range withdrawals {
		txHashes = append(txHashes, withdrawal.TxHash)
	}

	modelWinners := []model.RaffleWinner{}
	for _, winner := range winners {
		modelWinners = append(modelWinners, model.RaffleWinner{
			StakeKey: winner.StakeKey,
			Address:  winner.Address,
			Amount:   numberutil.TokenFromChainToHuman(winner.Amount, raffle.TokenDecimals),
		})
	}

	return model.Raffle{
		ID:                     raffle.ID,
		CreatorStakeKey:        raffle.CreatorStakeKey,
		IsToken:                raffle.IsToken,
		Amount:                 numberutil.TokenFromChainToHuman(raffle.Amount, raffle.TokenDecimals),
		TokenID:                raffle.TokenID,
		TokenName:              raffle.TokenName,
		TokenImage:             raffle.TokenImage,
		OtherTitle:             raffle.OtherTitle,
		OtherDescription:       raffle.OtherDescription,
		OtherImage:             raffle.OtherImage,
		NumOfWinners:           raffle.NumOfWinners,
		EndAt:                  raffle.EndAt,
		Active:                 raffle.Active(time.Now().UnixMilli()),
		MustBeDelegatingToPool: raffle.MustBeDelegatingToPool,
		PoolID:                 raffle.PoolID,
		HolderRules:            convertEntityHolderRules(raffle.HolderRules),
		NumOfEntries:           numOfEntries,
		Winners:                modelWinners,
		PayoutTxHashes:         txHashes,
	}
}

func convertModelHolderRules(rules []model.HolderRule) entity.Array[entity.HolderRule] {
	result := entity.Array[entity.HolderRule]{}
	for _, rule := range rules {
		entityRule := entity.HolderRule{}
		if err := mapstructure.Decode(structs.Map(rule), &entityRule); err != nil {
			continue
		}

		result = append(result, entityRule)
	}

	return result
}

func convertEntityHolderRules(rules entity.Array[entity.HolderRule]) []model.HolderRule {
	result := []model.HolderRule{}
	for _, rule := range rules {
		modelRule := model.HolderRule{}
		if err := mapstructure.Decode(structs.Map(rule), &modelRule); err != nil {
			continue
		}

		result = append(result, modelRule)
	}

	return result
}
