package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	RPCURL          string
	ContractAddress string

	// wallet provider: keystore takes precedence over a raw key
	KeystoreDir      string
	KeystorePassword string
	PrivateKey       string

	SessionSecret string
	// when set, connecting the shared wallet requires this token
	ConnectToken string

	JournalEnabled   bool
	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
}

// LoadConfig reads the configuration from the environment. Values from a
// .env file in the working directory are used when the variable is not
// already set.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	journal, err := strconv.ParseBool(getEnv("JOURNAL_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOURNAL_ENABLED: %w", err)
	}

	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		RPCURL:           getEnv("RPC_URL", "http://localhost:8545"),
		ContractAddress:  getEnv("CONTRACT_ADDRESS", ""),
		KeystoreDir:      getEnv("KEYSTORE_DIR", ""),
		KeystorePassword: getEnv("KEYSTORE_PASSWORD", ""),
		PrivateKey:       getEnv("PRIVATE_KEY", ""),
		SessionSecret:    getEnv("SESSION_SECRET", "secret"),
		ConnectToken:     getEnv("CONNECT_TOKEN", ""),
		JournalEnabled:   journal,
		DatabaseHost:     getEnv("DATABASE_HOST", "localhost"),
		DatabasePort:     getEnv("DATABASE_PORT", "5432"),
		DatabaseUser:     getEnv("DATABASE_USER", "postgres"),
		DatabasePassword: getEnv("DATABASE_PASSWORD", "password"),
		DatabaseName:     getEnv("DATABASE_NAME", "vending"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ContractAddress == "" {
		return errors.New("CONTRACT_ADDRESS is required")
	}
	if !common.IsHexAddress(c.ContractAddress) {
		return fmt.Errorf("CONTRACT_ADDRESS %q is not a hex address", c.ContractAddress)
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET must not be empty")
	}
	port, err := strconv.Atoi(c.ServerPort)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %q", c.ServerPort)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
