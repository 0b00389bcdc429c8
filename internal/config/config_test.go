package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testContract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONTRACT_ADDRESS", testContract)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "http://localhost:8545", cfg.RPCURL)
	assert.Equal(t, testContract, cfg.ContractAddress)
	assert.Equal(t, "secret", cfg.SessionSecret)
	assert.False(t, cfg.JournalEnabled)
	assert.Empty(t, cfg.ConnectToken)
	assert.Equal(t, "vending", cfg.DatabaseName)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("CONTRACT_ADDRESS", testContract)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RPC_URL", "http://node:8545")
	t.Setenv("KEYSTORE_DIR", "/keys")
	t.Setenv("JOURNAL_ENABLED", "true")
	t.Setenv("CONNECT_TOKEN", "let-me-in")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "http://node:8545", cfg.RPCURL)
	assert.Equal(t, "/keys", cfg.KeystoreDir)
	assert.True(t, cfg.JournalEnabled)
	assert.Equal(t, "let-me-in", cfg.ConnectToken)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing contract", map[string]string{"CONTRACT_ADDRESS": ""}},
		{"bad contract", map[string]string{"CONTRACT_ADDRESS": "0xnope"}},
		{"bad port", map[string]string{"CONTRACT_ADDRESS": testContract, "SERVER_PORT": "http"}},
		{"port out of range", map[string]string{"CONTRACT_ADDRESS": testContract, "SERVER_PORT": "70000"}},
		{"bad journal flag", map[string]string{"CONTRACT_ADDRESS": testContract, "JOURNAL_ENABLED": "maybe"}},
		{"empty secret", map[string]string{"CONTRACT_ADDRESS": testContract, "SESSION_SECRET": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
