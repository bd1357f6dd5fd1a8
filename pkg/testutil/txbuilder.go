package testutil

import (
	"context"

	"github.com/tokenraffle/backend/pkg/cardano"
	"github.com/tokenraffle/backend/pkg/errorx"
)

type MockTxBuilder struct {
	BuildFunc  func(ctx context.Context, payments []cardano.Payment) (cardano.UnsignedTx, error)
	SignFunc   func(ctx context.Context, tx cardano.UnsignedTx) (cardano.SignedTx, error)
	SubmitFunc func(ctx context.Context, tx cardano.SignedTx) (string, error)
}

func (m *MockTxBuilder) Build(ctx context.Context, payments []cardano.Payment) (cardano.UnsignedTx, error) {
	if m.BuildFunc != nil {
		return m.BuildFunc(ctx, payments)
	}

	return cardano.UnsignedTx("unsigned"), nil
}

func (m *MockTxBuilder) Sign(ctx context.Context, tx cardano.UnsignedTx) (cardano.SignedTx, error) {
	if m.SignFunc != nil {
		return m.SignFunc(ctx, tx)
	}

	return cardano.SignedTx(tx), nil
}

func (m *MockTxBuilder) Submit(ctx context.Context, tx cardano.SignedTx) (string, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, tx)
	}

	return "", errorx.New(errorx.NotImplemented, "Not implemented")
}
