package testutil

import (
	"context"

	"github.com/tokenraffle/backend/pkg/blockfrost"
)

type MockBlockfrostEndpoint struct {
	GetWalletDataFunc      func(ctx context.Context, identifier string, opts blockfrost.GetWalletDataOptions) (*blockfrost.WalletData, error)
	GetPolicyDataFunc      func(ctx context.Context, policyID string, withRanks bool) (*blockfrost.PolicyData, error)
	GetTokenDataFunc       func(ctx context.Context, tokenID string) (*blockfrost.TokenData, error)
	GetTokenOwnersFunc     func(ctx context.Context, tokenID string, page int) (*blockfrost.TokenOwners, error)
	GetStakePoolFunc       func(ctx context.Context, poolID string) (*blockfrost.StakePool, error)
	GetTransactionDataFunc func(ctx context.Context, txHash string) (*blockfrost.TransactionData, error)
}

func (m *MockBlockfrostEndpoint) GetWalletData(
	ctx context.Context, identifier string, opts blockfrost.GetWalletDataOptions,
) (*blockfrost.WalletData, error) {
	if m.GetWalletDataFunc != nil {
		return m.GetWalletDataFunc(ctx, identifier, opts)
	}

	return nil, blockfrost.ErrNotFound{Component: "wallet"}
}

func (m *MockBlockfrostEndpoint) GetPolicyData(
	ctx context.Context, policyID string, withRanks bool,
) (*blockfrost.PolicyData, error) {
	if m.GetPolicyDataFunc != nil {
		return m.GetPolicyDataFunc(ctx, policyID, withRanks)
	}

	return nil, blockfrost.ErrNotFound{Component: "policy"}
}

func (m *MockBlockfrostEndpoint) GetTokenData(
	ctx context.Context, tokenID string,
) (*blockfrost.TokenData, error) {
	if m.GetTokenDataFunc != nil {
		return m.GetTokenDataFunc(ctx, tokenID)
	}

	return nil, blockfrost.ErrNotFound{Component: "token"}
}

func (m *MockBlockfrostEndpoint) GetTokenOwners(
	ctx context.Context, tokenID string, page int,
) (*blockfrost.TokenOwners, error) {
	if m.GetTokenOwnersFunc != nil {
		return m.GetTokenOwnersFunc(ctx, tokenID, page)
	}

	return &blockfrost.TokenOwners{}, nil
}

func (m *MockBlockfrostEndpoint) GetStakePool(
	ctx context.Context, poolID string,
) (*blockfrost.StakePool, error) {
	if m.GetStakePoolFunc != nil {
		return m.GetStakePoolFunc(ctx, poolID)
	}

	return nil, blockfrost.ErrNotFound{Component: "pool"}
}

func (m *MockBlockfrostEndpoint) GetTransactionData(
	ctx context.Context, txHash string,
) (*blockfrost.TransactionData, error) {
	if m.GetTransactionDataFunc != nil {
		return m.GetTransactionDataFunc(ctx, txHash)
	}

	return nil, blockfrost.ErrNotFound{Component: "transaction"}
}
