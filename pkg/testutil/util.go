package testutil

import (
	"context"
	"time"

	"github.com/tokenraffle/backend/config"
	"github.com/tokenraffle/backend/internal/entity"
	"github.com/tokenraffle/backend/pkg/logger"
	"github.com/tokenraffle/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		Env:      "test",
		LogLevel: "silence",
		AppWallet: config.AppWalletConfigs{
			Address: "addr1appwallet",
		},
		Raffle: config.RaffleConfigs{
			OwnersPageSize:           100,
			DepositLovelacePerWinner: 2_000_000,
			ConfirmPollInterval:      time.Millisecond,
			ConfirmMaxAttempts:       3,
			CloseSweepInterval:       time.Minute,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithStakeKey(stakeKey string) context.Context {
	return xcontext.WithRequestStakeKey(MockContext(), stakeKey)
}
