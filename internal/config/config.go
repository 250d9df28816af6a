package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type OracleServiceConfig struct {
	Port          string
	PostgresCfg   PostgresConfig
	RedisCfg      RedisConfig
	RabbitMQCfg   RabbitMQConfig
	LedgerCfg     LedgerConfig
	ClimateCfg    ClimateConfig
	FlightDataCfg FlightDataConfig
	PricingCfg    PricingConfig
	ReconcileCfg  ReconcileConfig
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	Username string
	Password string
	Host     string
	Port     string
}

// LedgerConfig holds everything needed to talk to the chain. SigningKey is
// the oracle custody key as a hex string; Validate treats its absence as a
// fatal configuration error so a misconfigured node never signs anything.
type LedgerConfig struct {
	RPCURL               string
	ChainID              int64
	SigningKey           string
	FlightContractAddr   string
	RainfallContractAddr string
}

type FlightDataConfig struct {
	BaseURL string
	APIKey  string
}

type ClimateConfig struct {
	BaseURL       string
	HistoryYears  int
	MinValidYears int
	CacheTTL      time.Duration
}

type PricingConfig struct {
	RiskLoading float64
	Margin      float64
	PlatformFee float64
	MinPremium  float64
}

// ReconcileConfig bounds the reconciliation loop. CallTimeout caps the
// processing of a single policy, including the ledger receipt wait; without
// it one hung RPC call would hold the tick open indefinitely.
type ReconcileConfig struct {
	Interval    time.Duration
	GracePeriod time.Duration
	CallTimeout time.Duration
}

func New() *OracleServiceConfig {
	return &OracleServiceConfig{
		Port: getEnvOrDefault("PORT", "8086"),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "oracle_service"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       0,
		},
		RabbitMQCfg: RabbitMQConfig{
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		LedgerCfg: LedgerConfig{
			RPCURL:               getEnvOrDefault("LEDGER_RPC_URL", "http://localhost:8545"),
			ChainID:              getEnvInt64("LEDGER_CHAIN_ID", 11155111),
			SigningKey:           getEnvOrDefault("ORACLE_SIGNING_KEY", ""),
			FlightContractAddr:   getEnvOrDefault("FLIGHT_CONTRACT_ADDRESS", ""),
			RainfallContractAddr: getEnvOrDefault("RAINFALL_CONTRACT_ADDRESS", ""),
		},
		FlightDataCfg: FlightDataConfig{
			BaseURL: getEnvOrDefault("FLIGHT_DATA_API_URL", "https://api.aviationstack.com/v1/flights"),
			APIKey:  getEnvOrDefault("FLIGHT_DATA_API_KEY", ""),
		},
		ClimateCfg: ClimateConfig{
			BaseURL:       getEnvOrDefault("CLIMATE_API_URL", "https://archive-api.open-meteo.com/v1/archive"),
			HistoryYears:  getEnvInt("CLIMATE_HISTORY_YEARS", 10),
			MinValidYears: getEnvInt("CLIMATE_MIN_VALID_YEARS", 3),
			CacheTTL:      getEnvDuration("CLIMATE_CACHE_TTL", 30*24*time.Hour),
		},
		PricingCfg: PricingConfig{
			RiskLoading: getEnvFloat("PRICING_RISK_LOADING", 1.2),
			Margin:      getEnvFloat("PRICING_MARGIN", 0.15),
			PlatformFee: getEnvFloat("PRICING_PLATFORM_FEE", 0.05),
			MinPremium:  getEnvFloat("PRICING_MIN_PREMIUM", 1.0),
		},
		ReconcileCfg: ReconcileConfig{
			Interval:    getEnvDuration("RECONCILE_INTERVAL", time.Hour),
			GracePeriod: getEnvDuration("RECONCILE_GRACE_PERIOD", 48*time.Hour),
			CallTimeout: getEnvDuration("RECONCILE_CALL_TIMEOUT", 2*time.Minute),
		},
	}
}

// Validate checks the settings that make the service unusable when missing.
// Called once at startup; failures are fatal.
func (c *OracleServiceConfig) Validate() error {
	if c.LedgerCfg.SigningKey == "" {
		return fmt.Errorf("ORACLE_SIGNING_KEY is required")
	}
	if c.LedgerCfg.FlightContractAddr == "" {
		return fmt.Errorf("FLIGHT_CONTRACT_ADDRESS is required")
	}
	if c.LedgerCfg.RainfallContractAddr == "" {
		return fmt.Errorf("RAINFALL_CONTRACT_ADDRESS is required")
	}
	if c.ClimateCfg.MinValidYears < 1 || c.ClimateCfg.MinValidYears > c.ClimateCfg.HistoryYears {
		return fmt.Errorf("CLIMATE_MIN_VALID_YEARS must be between 1 and CLIMATE_HISTORY_YEARS")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
