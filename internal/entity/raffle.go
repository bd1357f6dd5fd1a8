package entity

// TraitOption awards bonus points when a held unit carries the given attribute
// value. Matching is case-insensitive on both category and trait.
type TraitOption struct {
	Category string  `mapstructure:"category" structs:"category" json:"category"`
	Trait    string  `mapstructure:"trait" structs:"trait" json:"trait"`
	Amount   float64 `mapstructure:"amount" structs:"amount" json:"amount"`
}

// RankOption awards bonus points when a held unit's rarity rank falls inside
// the inclusive range. Overlapping ranges are additive.
type RankOption struct {
	MinRange int     `mapstructure:"min_range" structs:"min_range" json:"min_range"`
	MaxRange int     `mapstructure:"max_range" structs:"max_range" json:"max_range"`
	Amount   float64 `mapstructure:"amount" structs:"amount" json:"amount"`
}

// HolderRule scores wallets holding units of one collection (policy).
type HolderRule struct {
	PolicyID          string        `mapstructure:"policy_id" structs:"policy_id" json:"policy_id"`
	Weight            float64       `mapstructure:"weight" structs:"weight" json:"weight"`
	WithTraits        bool          `mapstructure:"with_traits" structs:"with_traits" json:"with_traits"`
	TraitOptions      []TraitOption `mapstructure:"trait_options" structs:"trait_options" json:"trait_options"`
	WithRanks         bool          `mapstructure:"with_ranks" structs:"with_ranks" json:"with_ranks"`
	RankOptions       []RankOption  `mapstructure:"rank_options" structs:"rank_options" json:"rank_options"`
	HasFungibleTokens bool          `mapstructure:"has_fungible_tokens" structs:"has_fungible_tokens" json:"has_fungible_tokens"`
}

type Raffle struct {
	Base

	CreatorStakeKey string `gorm:"index"`

	// Prize: either an on-chain token or an off-chain item.
	IsToken bool
	// Amount is the indivisible on-chain quantity for token prizes.
	Amount        int64
	TokenID       string
	TokenName     string
	TokenImage    string
	TokenDecimals int

	OtherTitle       string
	OtherDescription string
	OtherImage       string

	NumOfWinners int

	// EndAt is epoch milliseconds of server time. Whether the raffle is active
	// is always derived from the current server time, never stored.
	EndAt int64

	MustBeDelegatingToPool bool
	PoolID                 string

	WithBlacklist bool
	// Blacklist holds stake keys, resolved from whatever identifier form the
	// creator supplied. Resolution happens once at creation time.
	Blacklist Array[string]

	HolderRules Array[HolderRule]

	// WinnersDrawn guards the close sweep: it flips false to true exactly once,
	// making winner selection idempotent under scheduler retries.
	WinnersDrawn bool `gorm:"index"`

	// TxDeposit is the hash of the prize custody transaction (token raffles).
	TxDeposit string
}

func (r Raffle) Active(nowMillis int64) bool {
	return nowMillis < r.EndAt
}

// RaffleEntry is a wallet's accumulated points in a raffle. A wallet has at
// most one row per raffle; re-entering merges additively.
type RaffleEntry struct {
	Base

	RaffleID string `gorm:"index:idx_entry_raffle_stake,unique"`
	Raffle   Raffle `gorm:"foreignKey:RaffleID"`

	StakeKey string `gorm:"index:idx_entry_raffle_stake,unique"`
	Points   int64
}

// UsedUnit marks an asset unit as consumed by some entry of the raffle, so a
// unit transferred between wallets mid-raffle cannot be counted twice.
type UsedUnit struct {
	Base

	RaffleID string `gorm:"index:idx_used_raffle_unit,unique"`
	Raffle   Raffle `gorm:"foreignKey:RaffleID"`

	Unit string `gorm:"index:idx_used_raffle_unit,unique"`
}

// FungibleHolder is one row of the snapshot taken at raffle creation for
// fungible collections. Position preserves the descending-points snapshot
// order.
type FungibleHolder struct {
	Base

	RaffleID string `gorm:"index:idx_fungible_raffle_stake,unique"`
	Raffle   Raffle `gorm:"foreignKey:RaffleID"`

	StakeKey   string `gorm:"index:idx_fungible_raffle_stake,unique"`
	Points     int64
	HasEntered bool
	Position   int
}

type RaffleWinner struct {
	Base

	RaffleID string `gorm:"index"`
	Raffle   Raffle `gorm:"foreignKey:RaffleID"`

	StakeKey string
	Address  string
	Amount   int64
}

// RaffleWithdrawal records one submitted payout transaction, in submission
// order, so a partially paid raffle can be resumed by the operator.
type RaffleWithdrawal struct {
	Base

	RaffleID string `gorm:"index"`
	Raffle   Raffle `gorm:"foreignKey:RaffleID"`

	TxHash   string
	Position int
}
