package main

import (
	"github.com/urfave/cli/v2"

	"github.com/tokenraffle/backend/internal/domain/cron"
	"github.com/tokenraffle/backend/internal/domain/draw"
	"github.com/tokenraffle/backend/internal/domain/payout"
	"github.com/tokenraffle/backend/pkg/xcontext"
)

func (s *srv) startCron(*cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadEndpoint()
	s.loadTxBuilder()
	s.loadPublisher()
	s.loadRepos()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewRaffleCloseCronJob(
		s.ctx,
		s.raffleRepo,
		draw.NewSelector(s.endpoint),
		payout.NewBatcher(s.txBuilder),
		s.confirmer,
		s.publisher,
	))

	cronJobManager.Start(s.ctx)
	return nil
}
