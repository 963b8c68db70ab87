package config_test

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/rewards-distributor/internal/apperror"
	"github.com/fd1az/rewards-distributor/internal/config"
)

// Well-known hardhat account #0.
const (
	testKey      = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testContract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("RPC_URL", "http://127.0.0.1:8545")
	t.Setenv("PRIVATE_KEY", testKey)
	t.Setenv("CONTRACT_ADDRESS", testContract)
}

func emptyDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	emptyDir(t)
	setRequiredEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, uint64(1), cfg.Ethereum.ChainID)
	assert.Equal(t, uint64(500000), cfg.Ethereum.GasLimit)
	assert.Nil(t, cfg.Ethereum.GasPriceWei())
	assert.Equal(t, "advisory", cfg.Preflight.Mode)
	assert.Equal(t, "0 0 0 * * *", cfg.Schedule.Expression)
	assert.Equal(t, 10*time.Minute, cfg.Schedule.RunTimeout)
	assert.Equal(t, 8081, cfg.Health.Port)
	assert.Equal(t, testContract, cfg.Ethereum.ContractAddressHex().Hex())

	key, err := cfg.Ethereum.SigningKey()
	require.NoError(t, err)
	assert.NotNil(t, key)
}

func TestLoad_Overrides(t *testing.T) {
	emptyDir(t)
	setRequiredEnv(t)
	t.Setenv("CHAIN_ID", "31337")
	t.Setenv("GAS_LIMIT", "750000")
	t.Setenv("GAS_PRICE", "15000000000")
	t.Setenv("PREFLIGHT_MODE", "enforce")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, uint64(31337), cfg.Ethereum.ChainID)
	assert.Equal(t, uint64(750000), cfg.Ethereum.GasLimit)
	assert.Equal(t, big.NewInt(15_000_000_000), cfg.Ethereum.GasPriceWei())
	assert.Equal(t, "enforce", cfg.Preflight.Mode)
}

func TestLoad_FromFile(t *testing.T) {
	dir := emptyDir(t)
	path := filepath.Join(dir, "distributor.yaml")
	content := []byte(`
ethereum:
  rpc_url: http://node:8545
  private_key: "` + testKey + `"
  contract_address: "` + testContract + `"
  chain_id: 1337
schedule:
  expression: "0 0 14 * * *"
  timezone: UTC
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://node:8545", cfg.Ethereum.RPCURL)
	assert.Equal(t, uint64(1337), cfg.Ethereum.ChainID)
	assert.Equal(t, "0 0 14 * * *", cfg.Schedule.Expression)

	loc, err := cfg.Schedule.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing_rpc_url", env: map[string]string{"RPC_URL": ""}},
		{name: "missing_private_key", env: map[string]string{"PRIVATE_KEY": ""}},
		{name: "malformed_private_key", env: map[string]string{"PRIVATE_KEY": "0xnothex"}},
		{name: "missing_contract", env: map[string]string{"CONTRACT_ADDRESS": ""}},
		{name: "malformed_contract", env: map[string]string{"CONTRACT_ADDRESS": "0x1234"}},
		{name: "bad_checksum", env: map[string]string{"CONTRACT_ADDRESS": "0x5fbDB2315678afecb367f032d93F642f64180aa3"}},
		{name: "malformed_chain_id", env: map[string]string{"CHAIN_ID": "mainnet"}},
		{name: "zero_gas_price", env: map[string]string{"GAS_PRICE": "0"}},
		{name: "malformed_gas_price", env: map[string]string{"GAS_PRICE": "20gwei"}},
		{name: "bad_preflight_mode", env: map[string]string{"PREFLIGHT_MODE": "strict"}},
		{name: "five_field_schedule", env: map[string]string{"SCHEDULE": "0 0 * * *"}},
		{name: "garbled_schedule", env: map[string]string{"SCHEDULE": "every day at noon"}},
		{name: "unknown_timezone", env: map[string]string{"REWARDS_TIMEZONE": "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emptyDir(t)
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load("")
			require.Error(t, err)
			assert.Equal(t, apperror.CodeConfigurationError, apperror.GetCode(err))
		})
	}
}

func TestLoad_LowercaseAddressAccepted(t *testing.T) {
	emptyDir(t)
	setRequiredEnv(t)
	t.Setenv("CONTRACT_ADDRESS", "0x5fbdb2315678afecb367f032d93f642f64180aa3")

	_, err := config.Load("")
	require.NoError(t, err)
}
