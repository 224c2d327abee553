package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// InitConfig initializes the application configuration using viper.
// If configPath is provided, it will use that specific file,
// otherwise it will look for 'local.yaml' in the config directory
func InitConfig(configPath string) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath("config")
		viper.SetConfigName("local")
	}
	viper.SetConfigType("yaml")

	SetDefaults()
	viper.AutomaticEnv()
	_ = viper.BindEnv("adminWallet", "ADMINWALLET", "ADMIN_WALLET_ADDRESS")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Can't read config: %s\n", err)
	}
}

// SetDefaults registers the default of every known key
func SetDefaults() {
	viper.SetDefault("port", 3001)
	viper.SetDefault("storage", StoragePostgres)
	viper.SetDefault("solanaRpcUrl", "https://api.mainnet-beta.solana.com")
	viper.SetDefault("oracleTimeout", "10s")
	viper.SetDefault("jwtExpiresIn", "168h")
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("corsOrigins", "*")
	viper.SetDefault("rateLimitMax", 100)
	viper.SetDefault("rateLimitWindow", "15m")
	viper.SetDefault("strictRateLimitMax", 10)
	viper.SetDefault("strictRateLimitWindow", "15m")
	viper.SetDefault("queryTimeout", "15s")
	viper.SetDefault("metricsFeedTopic", "realtime:metrics")
	viper.SetDefault("heartbeatInterval", "30s")
}

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

func Port() int {
	return viper.GetInt("port")
}

// Storage selects the catalog backend, postgres or memory
func Storage() string {
	return strings.ToLower(viper.GetString("storage"))
}

func DatabaseURL() string {
	return viper.GetString("databaseUrl")
}

func QueryTimeout() time.Duration {
	return viper.GetDuration("queryTimeout")
}

func SolanaRPCURL() string {
	return viper.GetString("solanaRpcUrl")
}

func OracleTimeout() time.Duration {
	return viper.GetDuration("oracleTimeout")
}

func JWTSecret() string {
	return viper.GetString("jwtSecret")
}

func JWTExpiresIn() time.Duration {
	return viper.GetDuration("jwtExpiresIn")
}

// RedisURL is optional; sign-in nonces stay in memory when it is empty
func RedisURL() string {
	return viper.GetString("redisUrl")
}

func LogLevel() string {
	return viper.GetString("logLevel")
}

func LogFile() string {
	return viper.GetString("logFile")
}

// CORSOrigins returns the allowed origins as a comma separated list
func CORSOrigins() string {
	return viper.GetString("corsOrigins")
}

func RateLimitMax() int {
	return viper.GetInt("rateLimitMax")
}

func RateLimitWindow() time.Duration {
	return viper.GetDuration("rateLimitWindow")
}

func StrictRateLimitMax() int {
	return viper.GetInt("strictRateLimitMax")
}

func StrictRateLimitWindow() time.Duration {
	return viper.GetDuration("strictRateLimitWindow")
}

func MetricsFeedURL() string {
	return viper.GetString("metricsFeedUrl")
}

func MetricsFeedAPIKey() string {
	return viper.GetString("metricsFeedApiKey")
}

func MetricsFeedTopic() string {
	return viper.GetString("metricsFeedTopic")
}

// AdminWallet is granted SUPER_ADMIN when the API starts. Empty skips the grant.
func AdminWallet() string {
	return strings.TrimSpace(viper.GetString("adminWallet"))
}

func HeartbeatInterval() time.Duration {
	return viper.GetDuration("heartbeatInterval")
}
