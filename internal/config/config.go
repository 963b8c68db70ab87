// Package config provides configuration loading and validation.
package config

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/fd1az/rewards-distributor/internal/apperror"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Ethereum  EthereumConfig  `mapstructure:"ethereum"`
	Preflight PreflightConfig `mapstructure:"preflight"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Health    HealthConfig    `mapstructure:"health"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// EthereumConfig holds the RPC endpoint, signer and contract settings.
type EthereumConfig struct {
	RPCURL            string        `mapstructure:"rpc_url"`
	PrivateKey        string        `mapstructure:"private_key"`
	ContractAddress   string        `mapstructure:"contract_address"`
	ChainID           uint64        `mapstructure:"chain_id"`
	GasLimit          uint64        `mapstructure:"gas_limit"`
	GasPrice          string        `mapstructure:"gas_price"` // wei, optional
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	DialTimeout       time.Duration `mapstructure:"dial_timeout"`
}

// ContractAddressHex returns the contract address as common.Address.
func (c *EthereumConfig) ContractAddressHex() common.Address {
	return common.HexToAddress(c.ContractAddress)
}

// SigningKey parses the configured private key.
func (c *EthereumConfig) SigningKey() (*ecdsa.PrivateKey, error) {
	return parsePrivateKey(c.PrivateKey)
}

// GasPriceWei returns the fixed gas price override, or nil when unset.
func (c *EthereumConfig) GasPriceWei() *big.Int {
	p, _ := parseGasPrice(c.GasPrice)
	return p
}

// PreflightConfig selects how pre-flight contract checks are applied.
type PreflightConfig struct {
	Mode string `mapstructure:"mode"` // advisory | enforce
}

// ScheduleConfig holds the daily trigger settings.
type ScheduleConfig struct {
	Expression string        `mapstructure:"expression"` // cron with seconds field
	Timezone   string        `mapstructure:"timezone"`
	RunTimeout time.Duration `mapstructure:"run_timeout"`
}

// Location resolves the configured timezone.
func (c *ScheduleConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int `mapstructure:"port"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	Provider       string `mapstructure:"provider"` // zipkin | console | otlp
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("REWARDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, apperror.New(apperror.CodeConfigurationError,
				apperror.WithCause(err),
				apperror.WithContext("failed to read config"))
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithCause(err),
			apperror.WithContext("failed to unmarshal config"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "REWARDS_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "REWARDS_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "REWARDS_LOG_LEVEL", "LOG_LEVEL")

	// Ethereum
	v.BindEnv("ethereum.rpc_url", "REWARDS_RPC_URL", "RPC_URL")
	v.BindEnv("ethereum.private_key", "REWARDS_PRIVATE_KEY", "PRIVATE_KEY")
	v.BindEnv("ethereum.contract_address", "REWARDS_CONTRACT_ADDRESS", "CONTRACT_ADDRESS")
	v.BindEnv("ethereum.chain_id", "REWARDS_CHAIN_ID", "CHAIN_ID")
	v.BindEnv("ethereum.gas_limit", "REWARDS_GAS_LIMIT", "GAS_LIMIT")
	v.BindEnv("ethereum.gas_price", "REWARDS_GAS_PRICE", "GAS_PRICE")

	// Pre-flight and schedule
	v.BindEnv("preflight.mode", "REWARDS_PREFLIGHT_MODE", "PREFLIGHT_MODE")
	v.BindEnv("schedule.expression", "REWARDS_SCHEDULE", "SCHEDULE")
	v.BindEnv("schedule.timezone", "REWARDS_TIMEZONE")

	// Telemetry
	v.BindEnv("telemetry.enabled", "REWARDS_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "REWARDS_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "REWARDS_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.otlp_headers", "REWARDS_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "rewards-distributor")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Ethereum defaults
	v.SetDefault("ethereum.chain_id", 1)
	v.SetDefault("ethereum.gas_limit", 500000)
	v.SetDefault("ethereum.gas_price", "")
	v.SetDefault("ethereum.requests_per_second", 10)
	v.SetDefault("ethereum.dial_timeout", "10s")

	v.SetDefault("preflight.mode", "advisory")

	// Daily at 00:00
	v.SetDefault("schedule.expression", "0 0 0 * * *")
	v.SetDefault("schedule.timezone", "")
	v.SetDefault("schedule.run_timeout", "10m")

	v.SetDefault("health.port", 8081)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "rewards-distributor")
	v.SetDefault("telemetry.provider", "zipkin")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Ethereum.RPCURL == "" {
		return invalid("ethereum.rpc_url (RPC_URL) is required")
	}
	if c.Ethereum.PrivateKey == "" {
		return invalid("ethereum.private_key (PRIVATE_KEY) is required")
	}
	if _, err := parsePrivateKey(c.Ethereum.PrivateKey); err != nil {
		return invalid("ethereum.private_key is not a valid secp256k1 key")
	}
	if c.Ethereum.ContractAddress == "" {
		return invalid("ethereum.contract_address (CONTRACT_ADDRESS) is required")
	}
	if err := validateAddress(c.Ethereum.ContractAddress); err != nil {
		return err
	}
	if c.Ethereum.ChainID == 0 {
		return invalid("ethereum.chain_id must be positive")
	}
	if c.Ethereum.GasLimit == 0 {
		return invalid("ethereum.gas_limit must be positive")
	}
	if _, err := parseGasPrice(c.Ethereum.GasPrice); err != nil {
		return err
	}
	if c.Ethereum.RequestsPerSecond <= 0 {
		return invalid("ethereum.requests_per_second must be positive")
	}

	switch strings.ToLower(c.Preflight.Mode) {
	case "advisory", "enforce":
	default:
		return invalid(fmt.Sprintf("preflight.mode must be advisory or enforce, got %q", c.Preflight.Mode))
	}

	if strings.TrimSpace(c.Schedule.Expression) == "" {
		return invalid("schedule.expression cannot be empty")
	}
	if _, err := scheduleParser.Parse(c.Schedule.Expression); err != nil {
		return invalid(fmt.Sprintf("schedule.expression %q: %v", c.Schedule.Expression, err))
	}
	if _, err := c.Schedule.Location(); err != nil {
		return invalid(fmt.Sprintf("schedule.timezone %q: %v", c.Schedule.Timezone, err))
	}
	if c.Schedule.RunTimeout <= 0 {
		return invalid("schedule.run_timeout must be positive")
	}
	return nil
}

// scheduleParser accepts the six-field expressions the scheduler runs.
var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func invalid(msg string) error {
	return apperror.New(apperror.CodeConfigurationError, apperror.WithContext(msg))
}

func parsePrivateKey(s string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
}

// validateAddress accepts lower/upper-case hex, and enforces EIP-55 when mixed-case.
func validateAddress(s string) error {
	if !common.IsHexAddress(s) {
		return invalid(fmt.Sprintf("invalid ethereum.contract_address: %s", s))
	}
	body := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if body != strings.ToLower(body) && body != strings.ToUpper(body) {
		if common.HexToAddress(s).Hex() != "0x"+body {
			return invalid(fmt.Sprintf("ethereum.contract_address has a bad checksum: %s", s))
		}
	}
	return nil
}

func parseGasPrice(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	p, ok := new(big.Int).SetString(s, 10)
	if !ok || p.Sign() <= 0 {
		return nil, invalid(fmt.Sprintf("ethereum.gas_price must be a positive integer in wei, got %q", s))
	}
	return p, nil
}
