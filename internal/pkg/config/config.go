package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/givehub/payments/internal/pkg/models"
	"github.com/joho/godotenv"
)

func InitConfig(configPath string) *models.Config {
	local := GetEnv("APP_ENV", "local")
	if local == "local" {
		// Load config from file
		err := godotenv.Load(configPath)
		if err != nil {
			log.Println("error loading config from file", err)
		}
	}
	// Create config from environment variables
	return loadConfigFromEnv()
}

func loadConfigFromEnv() *models.Config {
	configs := &models.Config{}

	// App config
	configs.App.Name = GetEnv("APP_NAME", "payments-service")
	configs.App.Environment = GetEnv("APP_ENV", "")
	configs.App.Debug = GetEnvAsBool("APP_DEBUG", true)
	configs.App.Version = GetEnv("APP_VERSION", "")

	// Server config
	configs.Server.Host = GetEnv("SERVER_HOST", "")
	configs.Server.Port = GetEnvAsInt("SERVER_PORT", 9980)
	configs.Server.ReadTimeout = GetEnvAsInt("SERVER_READ_TIMEOUT", 0)
	configs.Server.WriteTimeout = GetEnvAsInt("SERVER_WRITE_TIMEOUT", 0)
	configs.Server.ShutdownTimeout = GetEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 0)

	// Database config
	configs.Database.Driver = GetEnv("DB_DRIVER", "pgx")
	configs.Database.Host = GetEnv("DB_HOST", "")
	configs.Database.Port = GetEnvAsInt("DB_PORT", 5432)
	configs.Database.Username = GetEnv("DB_USERNAME", "")
	configs.Database.Password = GetEnv("DB_PASSWORD", "")
	configs.Database.Database = GetEnv("DB_DATABASE", "")
	configs.Database.SSLMode = GetEnv("DB_SSL_MODE", "disable")
	configs.Database.MaxConns = GetEnvAsInt("DB_MAX_CONNS", 0)
	configs.Database.IdleConns = GetEnvAsInt("DB_IDLE_CONNS", 0)

	// Redis config
	configs.Redis.Host = GetEnv("REDIS_HOST", "")
	configs.Redis.Port = GetEnvAsInt("REDIS_PORT", 6379)
	configs.Redis.Password = GetEnv("REDIS_PASSWORD", "")
	configs.Redis.DB = GetEnvAsInt("REDIS_DB", 0)
	configs.Redis.PoolSize = GetEnvAsInt("REDIS_POOL_SIZE", 0)

	// NATS config
	configs.NATS.URL = GetEnv("NATS_URL", "")

	// NewRelic config
	configs.NewRelic.LicenseKey = GetEnv("NEW_RELIC_LICENSE_KEY", "")
	configs.NewRelic.AppName = GetEnv("NEW_RELIC_APP_NAME", "")
	configs.NewRelic.Enabled = GetEnvAsBool("NEW_RELIC_ENABLED", false)
	configs.NewRelic.ForwardLogs = GetEnvAsBool("NEW_RELIC_FORWARD_LOGS", false)

	// Logger config
	configs.Logger.Level = GetEnv("LOG_LEVEL", "info")
	configs.Logger.FilePath = GetEnv("LOG_FILE_PATH", "")

	// Payment config
	configs.Payment.CurrencyRoutes = GetEnvAsStringMap("CURRENCY_ROUTES", "USD:omnipay,EUR:omnipay,GBP:omnipay,ILS:shekel")
	configs.Payment.MaxAmount = GetEnvAsFloat("PAYMENT_MAX_AMOUNT", 1000000)
	configs.Payment.WebhookDedupTTLMinutes = GetEnvAsInt("WEBHOOK_DEDUP_TTL_MINUTES", 1440)

	// Resilience config
	configs.Resilience.BreakerFailureThreshold = uint32(GetEnvAsInt("BREAKER_FAILURE_THRESHOLD", 3))
	configs.Resilience.BreakerCooldownSeconds = GetEnvAsInt("BREAKER_COOLDOWN_SECONDS", 30)
	configs.Resilience.RetryMaxAttempts = GetEnvAsInt("RETRY_MAX_ATTEMPTS", 3)
	configs.Resilience.RetryBaseDelayMs = GetEnvAsInt("RETRY_BASE_DELAY_MS", 100)
	configs.Resilience.CallTimeoutSeconds = GetEnvAsInt("GATEWAY_CALL_TIMEOUT_SECONDS", 5)

	// Gateway config
	configs.Gateways.OmniPay.BaseURL = GetEnv("OMNIPAY_BASE_URL", "")
	configs.Gateways.OmniPay.APIKey = GetEnv("OMNIPAY_API_KEY", "")
	configs.Gateways.OmniPay.WebhookSecret = GetEnv("OMNIPAY_WEBHOOK_SECRET", "")

	configs.Gateways.Shekel.BaseURL = GetEnv("SHEKEL_BASE_URL", "")
	configs.Gateways.Shekel.APIKey = GetEnv("SHEKEL_API_KEY", "")
	configs.Gateways.Shekel.WebhookSecret = GetEnv("SHEKEL_WEBHOOK_SECRET", "")
	configs.Gateways.Shekel.SigningSecret = GetEnv("SHEKEL_SIGNING_SECRET", "")
	configs.Gateways.Shekel.AllowedIPs = GetEnvAsStringSlice("SHEKEL_ALLOWED_IPS", "")
	configs.Gateways.Shekel.SourceIP = GetEnv("SHEKEL_SOURCE_IP", "")

	// Services config
	configs.Services.DonationServiceURL = GetEnv("DONATION_SERVICE_URL", "http://localhost:9970")

	return configs
}

// Helper functions to get environment variables with different types
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func GetEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default: %f", key, defaultValue)
		return defaultValue
	}

	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

// GetEnvAsStringSlice parses a comma-separated list
func GetEnvAsStringSlice(key, defaultValue string) []string {
	valueStr := GetEnv(key, defaultValue)
	if valueStr == "" {
		return nil
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GetEnvAsStringMap parses a comma-separated list of key:value pairs,
// e.g. "USD:omnipay,ILS:shekel"
func GetEnvAsStringMap(key, defaultValue string) map[string]string {
	valueStr := GetEnv(key, defaultValue)
	out := make(map[string]string)
	for _, pair := range strings.Split(valueStr, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			log.Printf("Warning: Skipping malformed entry %q for %s", pair, key)
			continue
		}
		out[strings.ToUpper(strings.TrimSpace(kv[0]))] = strings.TrimSpace(kv[1])
	}
	return out
}
