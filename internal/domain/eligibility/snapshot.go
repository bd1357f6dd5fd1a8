package eligibility

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tokenraffle/backend/internal/entity"
	"github.com/tokenraffle/backend/pkg/blockfrost"
	"github.com/tokenraffle/backend/pkg/numberutil"
	"github.com/tokenraffle/backend/pkg/xcontext"
	"golang.org/x/sync/errgroup"
)

// SnapshotBuilder pre-scores holders of fungible collections at raffle
// creation. Fungible holdings cannot be re-verified per entrant at entry time,
// so the snapshot taken here is the authoritative point source for them.
type SnapshotBuilder struct {
	endpoint blockfrost.IEndpoint
}

func NewSnapshotBuilder(endpoint blockfrost.IEndpoint) *SnapshotBuilder {
	return &SnapshotBuilder{endpoint: endpoint}
}

// Build enumerates the current holders of every fungible-tagged collection in
// the rule set and accumulates quantity×weight per wallet. The returned rows
// are sorted descending by points; ties keep their encounter order.
func (b *SnapshotBuilder) Build(
	ctx context.Context, raffleID string, rules []entity.HolderRule,
) ([]entity.FungibleHolder, error) {
	var mutex sync.Mutex
	points := map[string]float64{}
	order := map[string]int{}

	eg, egCtx := errgroup.WithContext(ctx)
	for _, rule := range rules {
		if !rule.HasFungibleTokens {
			continue
		}

		rule := rule
		eg.Go(func() error {
			holders, err := b.ruleHolders(egCtx, rule)
			if err != nil {
				return err
			}

			mutex.Lock()
			defer mutex.Unlock()
			for _, holder := range holders {
				if _, ok := order[holder.stakeKey]; !ok {
					order[holder.stakeKey] = len(order)
				}
				points[holder.stakeKey] += holder.points
			}

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result := []entity.FungibleHolder{}
	for stakeKey, total := range points {
		result = append(result, entity.FungibleHolder{
			Base:     entity.Base{ID: uuid.NewString()},
			RaffleID: raffleID,
			StakeKey: stakeKey,
			Points:   int64(math.Floor(total)),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Points != result[j].Points {
			return result[i].Points > result[j].Points
		}

		return order[result[i].StakeKey] < order[result[j].StakeKey]
	})

	for i := range result {
		result[i].Position = i
	}

	return result, nil
}

type scoredHolder struct {
	stakeKey string
	points   float64
}

func (b *SnapshotBuilder) ruleHolders(
	ctx context.Context, rule entity.HolderRule,
) ([]scoredHolder, error) {
	policyData, err := b.endpoint.GetPolicyData(ctx, rule.PolicyID, false)
	if err != nil {
		return nil, err
	}

	result := []scoredHolder{}
	pageSize := xcontext.Configs(ctx).Raffle.OwnersPageSize
	for _, token := range policyData.Tokens {
		if !token.IsFungible {
			continue
		}

		for page := 1; ; page++ {
			owners, err := b.endpoint.GetTokenOwners(ctx, token.TokenID, page)
			if err != nil {
				return nil, err
			}

			for _, owner := range owners.Owners {
				if stakeKey, ok := withdrawableStakeKey(ctx, owner); ok {
					quantity := numberutil.TokenFromChainToHuman(owner.Quantity, token.TokenAmount.Decimals)
					result = append(result, scoredHolder{
						stakeKey: stakeKey,
						points:   rule.Weight * quantity,
					})
				}
			}

			// A short page is the last one.
			if len(owners.Owners) < pageSize {
				break
			}
		}
	}

	return result, nil
}

// withdrawableStakeKey filters out holders a payout could never reach: script
// addresses, addresses outside the expected namespace, and addresses with no
// resolvable stake key. Exclusions are logged, never fatal.
func withdrawableStakeKey(ctx context.Context, owner blockfrost.TokenOwner) (string, bool) {
	if owner.StakeKey == "" {
		xcontext.Logger(ctx).Debugf("Snapshot skips holder without stake key")
		return "", false
	}

	for _, address := range owner.Addresses {
		if address.IsScript {
			xcontext.Logger(ctx).Debugf("Snapshot skips script holder %s", owner.StakeKey)
			return "", false
		}

		if !strings.HasPrefix(address.Address, "addr1") {
			xcontext.Logger(ctx).Debugf("Snapshot skips off-chain holder %s", owner.StakeKey)
			return "", false
		}
	}

	return owner.StakeKey, true
}
