package blockfrost

// TokenAmount carries both representations of a token quantity. Display is the
// human-decimal amount derived from the indivisible OnChain amount.
type TokenAmount struct {
	OnChain  int64   `json:"on_chain"`
	Display  float64 `json:"display"`
	Decimals int     `json:"decimals"`
}

type WalletAddress struct {
	Address  string `json:"address"`
	IsScript bool   `json:"is_script"`
}

type WalletToken struct {
	TokenID     string      `json:"token_id"`
	TokenAmount TokenAmount `json:"token_amount"`
}

type WalletData struct {
	StakeKey  string          `json:"stake_key"`
	PoolID    string          `json:"pool_id"`
	Addresses []WalletAddress `json:"addresses"`
	Tokens    []WalletToken   `json:"tokens"`
}

type PolicyToken struct {
	TokenID     string      `json:"token_id"`
	IsFungible  bool        `json:"is_fungible"`
	RarityRank  int         `json:"rarity_rank"`
	TokenAmount TokenAmount `json:"token_amount"`
}

type PolicyData struct {
	PolicyID string        `json:"policy_id"`
	Tokens   []PolicyToken `json:"tokens"`
}

type TokenData struct {
	TokenID    string            `json:"token_id"`
	Attributes map[string]string `json:"attributes"`
}

type TokenOwner struct {
	Quantity  int64           `json:"quantity"`
	StakeKey  string          `json:"stake_key"`
	Addresses []WalletAddress `json:"addresses"`
}

type TokenOwners struct {
	Owners []TokenOwner `json:"owners"`
}

type StakePool struct {
	PoolID string `json:"pool_id"`
	Ticker string `json:"ticker"`
}

type TransactionData struct {
	TxHash string `json:"tx_hash"`
	Block  string `json:"block"`
}

type GetWalletDataOptions struct {
	WithStakePool bool
	WithTokens    bool
}
