package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	assert.Equal(t, 3001, Port())
	assert.Equal(t, StoragePostgres, Storage())
	assert.Equal(t, 10*time.Second, OracleTimeout())
	assert.Equal(t, 168*time.Hour, JWTExpiresIn())
	assert.Equal(t, 15*time.Minute, RateLimitWindow())
	assert.Equal(t, 30*time.Second, HeartbeatInterval())
	assert.Empty(t, RedisURL())
	assert.Empty(t, AdminWallet())
}

func TestAdminWalletFromEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("ADMIN_WALLET_ADDRESS", " root-wallet ")

	InitConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, "root-wallet", AdminWallet())

	t.Setenv("ADMINWALLET", "other-wallet")
	assert.Equal(t, "other-wallet", AdminWallet())
}

func TestInitConfigReadsFileAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 8080
storage: MEMORY
jwtSecret: from-file
oracleTimeout: 2s
`), 0o600))
	t.Setenv("JWTSECRET", "from-env")

	InitConfig(path)

	assert.Equal(t, 8080, Port())
	assert.Equal(t, StorageMemory, Storage())
	assert.Equal(t, 2*time.Second, OracleTimeout())
	assert.Equal(t, "from-env", JWTSecret())
}
