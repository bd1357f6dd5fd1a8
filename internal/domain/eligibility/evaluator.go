package eligibility

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/tokenraffle/backend/internal/entity"
	"github.com/tokenraffle/backend/internal/repository"
	"github.com/tokenraffle/backend/pkg/blockfrost"
	"github.com/tokenraffle/backend/pkg/errorx"
	"github.com/tokenraffle/backend/pkg/numberutil"
	"github.com/tokenraffle/backend/pkg/xcontext"
	"github.com/tokenraffle/backend/pkg/xredis"
	"gorm.io/gorm"
)

const policyRanksCacheTTL = time.Hour

// Result is one scoring pass over a wallet's holdings. Units lists the asset
// units counted by this pass; WithFungible reports that the wallet's fungible
// snapshot points were consumed and the snapshot row must be marked entered.
type Result struct {
	Points       int64
	Units        []string
	WithFungible bool
}

type Evaluator struct {
	raffleRepo  repository.RaffleRepository
	endpoint    blockfrost.IEndpoint
	redisClient xredis.Client
}

func NewEvaluator(
	raffleRepo repository.RaffleRepository,
	endpoint blockfrost.IEndpoint,
	redisClient xredis.Client,
) *Evaluator {
	return &Evaluator{
		raffleRepo:  raffleRepo,
		endpoint:    endpoint,
		redisClient: redisClient,
	}
}

// Evaluate computes the wallet's point total under the raffle's rules. It
// never mutates raffle state; the caller commits the result through the entry
// ledger.
func (e *Evaluator) Evaluate(
	ctx context.Context, raffle *entity.Raffle, wallet *blockfrost.WalletData,
) (*Result, error) {
	if raffle.WithBlacklist {
		for _, blacklisted := range raffle.Blacklist {
			if blacklisted == wallet.StakeKey {
				return nil, errorx.New(errorx.Ineligible, "You are not allowed to enter this raffle")
			}
		}
	}

	if raffle.MustBeDelegatingToPool && wallet.PoolID != raffle.PoolID {
		return nil, errorx.New(errorx.Ineligible, "You must delegate to the required stake pool")
	}

	qualifyingRules := []entity.HolderRule{}
	for _, rule := range raffle.HolderRules {
		if holdsAny(wallet, rule.PolicyID) {
			qualifyingRules = append(qualifyingRules, rule)
		}
	}

	if len(qualifyingRules) == 0 {
		return nil, errorx.New(errorx.Ineligible, "You hold no qualifying assets for this raffle")
	}

	usedRecords, err := e.raffleRepo.GetUsedUnits(ctx, raffle.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load used units of raffle %s: %v", raffle.ID, err)
		return nil, errorx.Unknown
	}

	used := map[string]bool{}
	for _, record := range usedRecords {
		used[record.Unit] = true
	}

	result := &Result{}
	total := float64(0)
	fungibleCounted := false
	for _, rule := range qualifyingRules {
		if rule.HasFungibleTokens {
			// The snapshot row already sums every fungible collection, so it
			// contributes at most once however many rules carry the flag.
			if fungibleCounted {
				continue
			}
			fungibleCounted = true

			points, consumed, err := e.fungiblePoints(ctx, raffle.ID, wallet.StakeKey)
			if err != nil {
				return nil, err
			}

			total += float64(points)
			if consumed {
				result.WithFungible = true
			}
			continue
		}

		rulePoints, units, err := e.scoreRule(ctx, rule, wallet, used)
		if err != nil {
			return nil, err
		}

		total += rulePoints
		result.Units = append(result.Units, units...)
	}

	result.Points = int64(math.Floor(total))
	return result, nil
}

// fungiblePoints looks the wallet up in the creation-time snapshot. A wallet
// absent from the snapshot or one that already entered contributes nothing,
// without erroring.
func (e *Evaluator) fungiblePoints(
	ctx context.Context, raffleID, stakeKey string,
) (int64, bool, error) {
	holder, err := e.raffleRepo.GetFungibleHolder(ctx, raffleID, stakeKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot load fungible holder of raffle %s: %v", raffleID, err)
		return 0, false, errorx.Unknown
	}

	if holder.HasEntered {
		return 0, false, nil
	}

	return holder.Points, true, nil
}

func (e *Evaluator) scoreRule(
	ctx context.Context,
	rule entity.HolderRule,
	wallet *blockfrost.WalletData,
	used map[string]bool,
) (float64, []string, error) {
	var ranks map[string]int
	if rule.WithRanks {
		var err error
		ranks, err = e.policyRanks(ctx, rule.PolicyID)
		if err != nil {
			return 0, nil, err
		}
	}

	total := float64(0)
	units := []string{}
	for _, token := range wallet.Tokens {
		if !strings.HasPrefix(token.TokenID, rule.PolicyID) {
			continue
		}

		if used[token.TokenID] {
			continue
		}

		quantity := numberutil.TokenFromChainToHuman(token.TokenAmount.OnChain, token.TokenAmount.Decimals)
		total += rule.Weight * quantity

		if rule.WithTraits {
			bonus, err := e.traitBonus(ctx, rule, token.TokenID)
			if err != nil {
				return 0, nil, err
			}

			total += bonus
		}

		if rule.WithRanks {
			if rank, ok := ranks[token.TokenID]; ok {
				for _, option := range rule.RankOptions {
					if option.MinRange <= rank && rank <= option.MaxRange {
						total += option.Amount
					}
				}
			}
		}

		units = append(units, token.TokenID)
	}

	return total, units, nil
}

// traitBonus adds the bonus of every matching trait option. Options are
// additive, not exclusive, and matching is case-insensitive.
func (e *Evaluator) traitBonus(
	ctx context.Context, rule entity.HolderRule, tokenID string,
) (float64, error) {
	tokenData, err := e.endpoint.GetTokenData(ctx, tokenID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load attributes of token %s: %v", tokenID, err)
		return 0, errorx.Unknown
	}

	bonus := float64(0)
	for _, option := range rule.TraitOptions {
		for category, trait := range tokenData.Attributes {
			if strings.EqualFold(category, option.Category) && strings.EqualFold(trait, option.Trait) {
				bonus += option.Amount
			}
		}
	}

	return bonus, nil
}

// policyRanks loads the rarity ranks of a collection, cached because every
// entry of a rank-scored raffle needs the full ranked list.
func (e *Evaluator) policyRanks(ctx context.Context, policyID string) (map[string]int, error) {
	cacheKey := "policy_ranks:" + policyID

	ranks := map[string]int{}
	if e.redisClient != nil {
		if err := e.redisClient.GetObj(ctx, cacheKey, &ranks); err == nil {
			return ranks, nil
		}
	}

	policyData, err := e.endpoint.GetPolicyData(ctx, policyID, true)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load ranked policy %s: %v", policyID, err)
		return nil, errorx.Unknown
	}

	for _, token := range policyData.Tokens {
		ranks[token.TokenID] = token.RarityRank
	}

	if e.redisClient != nil {
		if err := e.redisClient.SetObj(ctx, cacheKey, ranks, policyRanksCacheTTL); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot cache ranked policy %s: %v", policyID, err)
		}
	}

	return ranks, nil
}

func holdsAny(wallet *blockfrost.WalletData, policyID string) bool {
	for _, token := range wallet.Tokens {
		if strings.HasPrefix(token.TokenID, policyID) {
			return true
		}
	}

	return false
}
