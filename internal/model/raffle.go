package model

type TraitOption struct {
	Category string  `mapstructure:"category" structs:"category" json:"category"`
	Trait    string  `mapstructure:"trait" structs:"trait" json:"trait"`
	Amount   float64 `mapstructure:"amount" structs:"amount" json:"amount"`
}

type RankOption struct {
	MinRange int     `mapstructure:"min_range" structs:"min_range" json:"min_range"`
	MaxRange int     `mapstructure:"max_range" structs:"max_range" json:"max_range"`
	Amount   float64 `mapstructure:"amount" structs:"amount" json:"amount"`
}

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
	ID              string `json:"id"`
	CreatorStakeKey string `json:"creator_stake_key"`

	IsToken          bool    `json:"is_token"`
	Amount           float64 `json:"amount"`
	TokenID          string  `json:"token_id,omitempty"`
	TokenName        string  `json:"token_name,omitempty"`
	TokenImage       string  `json:"token_image,omitempty"`
	OtherTitle       string  `json:"other_title,omitempty"`
	OtherDescription string  `json:"other_description,omitempty"`
	OtherImage       string  `json:"other_image,omitempty"`

	NumOfWinners int   `json:"num_of_winners"`
	EndAt        int64 `json:"end_at"`
	Active       bool  `json:"active"`

	MustBeDelegatingToPool bool   `json:"must_be_delegating_to_pool"`
	PoolID                 string `json:"pool_id,omitempty"`

	HolderRules []HolderRule `json:"holder_rules"`

	NumOfEntries   int            `json:"num_of_entries"`
	Winners        []RaffleWinner `json:"winners,omitempty"`
	PayoutTxHashes []string       `json:"payout_tx_hashes,omitempty"`
}

type RaffleWinner struct {
	StakeKey string  `json:"stake_key"`
	Address  string  `json:"address"`
	Amount   float64 `json:"amount"`
}

type CreateRaffleRequest struct {
	IsToken          bool    `json:"is_token"`
	Amount           float64 `json:"amount"`
	TokenID          string  `json:"token_id"`
	TokenName        string  `json:"token_name"`
	TokenImage       string  `json:"token_image"`
	OtherTitle       string  `json:"other_title"`
	OtherDescription string  `json:"other_description"`
	OtherImage       string  `json:"other_image"`

	NumOfWinners int `json:"num_of_winners"`

	// The raffle ends EndPeriodAmount periods after creation, measured on the
	// server clock. EndPeriod is one of Minutes, Hours, Days, Weeks, Months.
	EndPeriod       string `json:"end_period"`
	EndPeriodAmount int    `json:"end_period_amount"`

	MustBeDelegatingToPool bool   `json:"must_be_delegating_to_pool"`
	PoolID                 string `json:"pool_id"`

	WithBlacklist bool `json:"with_blacklist"`
	// Blacklist items may be handles, addresses, or stake keys; they are
	// resolved to stake keys at creation.
	Blacklist []string `json:"blacklist"`

	HolderRules []HolderRule `json:"holder_rules"`

	// TxDeposit is the hash of the prize custody transaction. Required for
	// token raffles.
	TxDeposit string `json:"tx_deposit"`
}

type CreateRaffleResponse struct {
	ID string `json:"id"`
}

type GetRaffleRequest struct {
	ID string `json:"id" form:"id"`
}

type GetRaffleResponse struct {
	Raffle Raffle `json:"raffle"`
}

type GetMyRafflesRequest struct{}

type GetMyRafflesResponse struct {
	Raffles []Raffle `json:"raffles"`
}

type EnterRaffleRequest struct {
	RaffleID string `json:"raffle_id"`
	// Identifier is the wallet to score: a handle, an address, or a stake key.
	Identifier string `json:"identifier"`
}

type EnterRaffleResponse struct {
	// Points is the wallet's accumulated total after this entry.
	Points int64 `json:"points"`
	// GainedPoints is what this entry added.
	GainedPoints int64 `json:"gained_points"`
}
