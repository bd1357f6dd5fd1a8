package main

import (
	"net/http"

	"github.com/rs/cors"
	"github.com/urfave/cli/v2"

	"github.com/tokenraffle/backend/pkg/router"
	"github.com/tokenraffle/backend/pkg/xcontext"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadEndpoint()
	s.loadRedisClient()
	s.loadRepos()
	s.loadDomains()

	cfg := xcontext.Configs(s.ctx).ApiServer
	s.server = &http.Server{
		Addr: cfg.Address(),
		Handler: cors.New(cors.Options{
			AllowedOrigins: cfg.AllowCORS,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Stake-Key"},
		}).Handler(s.loadRouter().Handler()),
	}

	xcontext.Logger(s.ctx).Infof("Starting api server on %s", cfg.Address())
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}

	return nil
}

func (s *srv) loadRouter() *router.Router {
	r := router.New(s.ctx)

	router.POST(r, "/createRaffle", s.raffleDomain.CreateRaffle)
	router.GET(r, "/getRaffle", s.raffleDomain.GetRaffle)
	router.GET(r, "/getMyRaffles", s.raffleDomain.GetMyRaffles)
	router.POST(r, "/enterRaffle", s.raffleDomain.EnterRaffle)

	return r
}
