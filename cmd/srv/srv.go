package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/tokenraffle/backend/config"
	"github.com/tokenraffle/backend/internal/domain"
	"github.com/tokenraffle/backend/internal/domain/eligibility"
	"github.com/tokenraffle/backend/internal/entity"
	"github.com/tokenraffle/backend/internal/repository"
	"github.com/tokenraffle/backend/pkg/blockfrost"
	"github.com/tokenraffle/backend/pkg/cardano"
	"github.com/tokenraffle/backend/pkg/kafka"
	"github.com/tokenraffle/backend/pkg/logger"
	"github.com/tokenraffle/backend/pkg/pubsub"
	"github.com/tokenraffle/backend/pkg/xcontext"
	"github.com/tokenraffle/backend/pkg/xredis"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App
	ctx context.Context

	endpoint    blockfrost.IEndpoint
	redisClient xredis.Client
	publisher   pubsub.Publisher
	txBuilder   cardano.TxBuilder
	confirmer   *cardano.Confirmer

	raffleRepo repository.RaffleRepository

	raffleDomain domain.RaffleDomain

	server *http.Server
}

func (s *srv) loadConfig() {
	// A missing .env is fine; the environment may be set directly.
	godotenv.Load()

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, config.Configs{
		Env:      getEnv("ENV", "local"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: config.DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			Database: getEnv("MYSQL_DATABASE", "tokenraffle"),
			User:     getEnv("MYSQL_USER", "tokenraffle"),
			Password: getEnv("MYSQL_PASSWORD", "secret"),
		},
		ApiServer: config.ServerConfigs{
			Host:      getEnv("API_HOST", ""),
			Port:      getEnv("API_PORT", "8080"),
			AllowCORS: []string{getEnv("ALLOW_CORS", "http://localhost:3000")},
		},
		Redis: config.RedisConfigs{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: config.KafkaConfigs{
			Addr: getEnv("KAFKA_ADDR", "localhost:9092"),
		},
		Blockfrost: config.BlockfrostConfigs{
			Endpoint:   getEnv("BLOCKFROST_ENDPOINT", "https://cardano-mainnet.blockfrost.io/api/v0"),
			ProjectKey: getEnv("BLOCKFROST_PROJECT_KEY", ""),
		},
		AppWallet: config.AppWalletConfigs{
			Address:    getEnv("APP_WALLET_ADDRESS", ""),
			TxEndpoint: getEnv("APP_WALLET_TX_ENDPOINT", "http://localhost:8090"),
		},
		Raffle: config.RaffleConfigs{
			OwnersPageSize:           getEnvInt("RAFFLE_OWNERS_PAGE_SIZE", 100),
			DepositLovelacePerWinner: int64(getEnvInt("RAFFLE_DEPOSIT_LOVELACE", 2_000_000)),
			ConfirmPollInterval:      getEnvDuration("RAFFLE_CONFIRM_POLL_INTERVAL", 5*time.Second),
			ConfirmMaxAttempts:       getEnvInt("RAFFLE_CONFIRM_MAX_ATTEMPTS", 30),
			CloseSweepInterval:       getEnvDuration("RAFFLE_CLOSE_SWEEP_INTERVAL", time.Minute),
		},
	})
}

func (s *srv) loadLogger() {
	level := logger.ParseLevel(xcontext.Configs(s.ctx).LogLevel)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(level))
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database
	db, err := gorm.Open(mysql.Open(cfg.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) migrateDB() {
	if err := entity.MigrateTable(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadEndpoint() {
	s.endpoint = blockfrost.New(xcontext.Configs(s.ctx).Blockfrost)

	cfg := xcontext.Configs(s.ctx).Raffle
	s.confirmer = cardano.NewConfirmer(s.endpoint, cfg.ConfirmPollInterval, cfg.ConfirmMaxAttempts)
}

func (s *srv) loadTxBuilder() {
	s.txBuilder = cardano.NewBuilder(xcontext.Configs(s.ctx).AppWallet)
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadPublisher() {
	var err error
	s.publisher, err = kafka.NewPublisher(
		"tokenraffle-"+xcontext.Configs(s.ctx).Env,
		[]string{xcontext.Configs(s.ctx).Kafka.Addr},
	)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.raffleRepo = repository.NewRaffleRepository()
}

func (s *srv) loadDomains() {
	evaluator := eligibility.NewEvaluator(s.raffleRepo, s.endpoint, s.redisClient)
	snapshotBuilder := eligibility.NewSnapshotBuilder(s.endpoint)
	s.raffleDomain = domain.NewRaffleDomain(s.raffleRepo, s.endpoint, evaluator, snapshotBuilder)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}
