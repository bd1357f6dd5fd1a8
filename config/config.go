package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env      string
	LogLevel string

	Database   DatabaseConfigs
	ApiServer  ServerConfigs
	Redis      RedisConfigs
	Kafka      KafkaConfigs
	Blockfrost BlockfrostConfigs
	AppWallet  AppWalletConfigs
	Raffle     RaffleConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string

	AllowCORS []string
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type RedisConfigs struct {
	Addr string
}

type KafkaConfigs struct {
	Addr string
}

type BlockfrostConfigs struct {
	Endpoint   string
	ProjectKey string
}

// AppWalletConfigs describes the operating wallet that takes custody of token
// prizes and pays winners out. TxEndpoint is the wallet's transaction service,
// which builds, signs, and submits transactions on its behalf.
type AppWalletConfigs struct {
	Address    string
	TxEndpoint string
}

type RaffleConfigs struct {
	// OwnersPageSize is the fixed page size of the token-owners endpoint. A
	// page with fewer results signals the end of data.
	OwnersPageSize int

	// DepositLovelacePerWinner is attached to the prize deposit so each payout
	// batch can carry the minimum required lovelace.
	DepositLovelacePerWinner int64

	ConfirmPollInterval time.Duration
	ConfirmMaxAttempts  int

	CloseSweepInterval time.Duration
}
