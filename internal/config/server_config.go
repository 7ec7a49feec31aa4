package config

import (
	"fmt"
	"time"

	"github/smartkit/relay/internal/util"
)

// EchoServer holds the echo HTTP server configuration.
type EchoServer struct {
	ListenAddress             string
	Debug                     bool
	EnableCORSMiddleware      bool
	EnableLoggerMiddleware    bool
	EnableRecoverMiddleware   bool
	EnableRequestIDMiddleware bool
}

// Database holds the PostgreSQL connection configuration.
type Database struct {
	Host            string
	Port            int
	Username        string
	Password        string `json:"-"` // sensitive
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ConnectionString returns a keyword/value PostgreSQL DSN.
func (d Database) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.Username, d.Password, d.Database)
}

// Logger holds the zerolog configuration.
type Logger struct {
	Level              string
	PrettyPrintConsole bool
	LogRequestBody     bool
}

// Relay holds the UserOperation pipeline configuration.
type Relay struct {
	// OperatorPrivateKey is the hex-encoded custodial signing key. Never logged.
	OperatorPrivateKey string `json:"-"`
	// APIKeySecret is the HMAC secret used to digest project API keys. Never logged.
	APIKeySecret string `json:"-"`
	// DefaultChainID selects the chain used for newly created wallets.
	DefaultChainID int64
	// ReceiptPollInterval is the delay between bundler receipt lookups.
	ReceiptPollInterval time.Duration
	// ReceiptPollMaxAttempts bounds the number of receipt lookups per operation.
	ReceiptPollMaxAttempts int
	// RPCTimeout applies to each individual outbound RPC call.
	RPCTimeout time.Duration
}

// Server is the aggregated service configuration, read once from the
// environment at startup.
type Server struct {
	Echo     EchoServer
	Database Database
	Logger   Logger
	Relay    Relay
	Chains   []Chain
}

// DefaultServiceConfigFromEnv returns the server config as parsed from the
// environment, applying defaults for everything not set.
func DefaultServiceConfigFromEnv() Server {
	util.DotEnvTryLoad(".env")

	return Server{
		Echo: EchoServer{
			ListenAddress:             util.GetEnv("SERVER_ECHO_LISTEN_ADDRESS", ":8080"),
			Debug:                     util.GetEnvAsBool("SERVER_ECHO_DEBUG", false),
			EnableCORSMiddleware:      util.GetEnvAsBool("SERVER_ECHO_ENABLE_CORS_MIDDLEWARE", true),
			EnableLoggerMiddleware:    util.GetEnvAsBool("SERVER_ECHO_ENABLE_LOGGER_MIDDLEWARE", true),
			EnableRecoverMiddleware:   util.GetEnvAsBool("SERVER_ECHO_ENABLE_RECOVER_MIDDLEWARE", true),
			EnableRequestIDMiddleware: util.GetEnvAsBool("SERVER_ECHO_ENABLE_REQUEST_ID_MIDDLEWARE", true),
		},
		Database: Database{
			Host:            util.GetEnv("PGHOST", "localhost"),
			Port:            util.GetEnvAsInt("PGPORT", 5432),
			Username:        util.GetEnv("PGUSER", "postgres"),
			Password:        util.GetEnv("PGPASSWORD", ""),
			Database:        util.GetEnv("PGDATABASE", "relay"),
			MaxOpenConns:    util.GetEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    util.GetEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: time.Duration(util.GetEnvAsInt("DB_CONN_MAX_LIFETIME_SEC", 3600)) * time.Second,
		},
		Logger: Logger{
			Level:              util.GetEnv("SERVER_LOGGER_LEVEL", "debug"),
			PrettyPrintConsole: util.GetEnvAsBool("SERVER_LOGGER_PRETTY_PRINT_CONSOLE", false),
			LogRequestBody:     util.GetEnvAsBool("SERVER_LOGGER_LOG_REQUEST_BODY", false),
		},
		Relay: Relay{
			OperatorPrivateKey:     util.GetEnv("OPERATOR_PRIVATE_KEY", ""),
			APIKeySecret:           util.GetEnv("API_KEY_SECRET", "smartkit-dev-secret"),
			DefaultChainID:         util.GetEnvAsInt64("RELAY_DEFAULT_CHAIN_ID", 84532),
			ReceiptPollInterval:    time.Duration(util.GetEnvAsInt("RELAY_RECEIPT_POLL_INTERVAL_MS", 2000)) * time.Millisecond,
			ReceiptPollMaxAttempts: util.GetEnvAsInt("RELAY_RECEIPT_POLL_MAX_ATTEMPTS", 30),
			RPCTimeout:             time.Duration(util.GetEnvAsInt("RELAY_RPC_TIMEOUT_MS", 10000)) * time.Millisecond,
		},
		Chains: DefaultChainsFromEnv(),
	}
}
