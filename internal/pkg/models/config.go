package models

// Config represents application configuration
type Config struct {
	App        AppConfig
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	NATS       NATSConfig
	NewRelic   NewRelicConfig
	Logger     LoggerConfig
	Payment    PaymentConfig
	Resilience ResilienceConfig
	Gateways   GatewaysConfig
	Services   ServicesConfig
}

// ServicesConfig contains URLs for collaborator services
type ServicesConfig struct {
	DonationServiceURL string
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NATSConfig contains NATS connection configuration
type NATSConfig struct {
	URL string
}

// NewRelicConfig contains New Relic agent configuration
type NewRelicConfig struct {
	LicenseKey  string
	AppName     string
	Enabled     bool
	ForwardLogs bool
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level    string
	FilePath string
}

// PaymentConfig contains payment orchestration configuration
type PaymentConfig struct {
	// CurrencyRoutes maps an ISO 4217 currency code to the gateway id that
	// must service it. The map is total over supported currencies; there is
	// no fallback gateway.
	CurrencyRoutes         map[string]string
	MaxAmount              float64
	WebhookDedupTTLMinutes int
}

// ResilienceConfig contains circuit breaker and retry configuration
type ResilienceConfig struct {
	BreakerFailureThreshold uint32
	BreakerCooldownSeconds  int
	RetryMaxAttempts        int
	RetryBaseDelayMs        int
	CallTimeoutSeconds      int
}

// GatewayConfig contains one processor adapter's credentials and endpoints
type GatewayConfig struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
	// SigningSecret keys the payload HMAC for processors that require it
	SigningSecret string
	// AllowedIPs is the outbound source allow-list for processors that
	// enforce one; empty means no restriction
	AllowedIPs []string
	SourceIP   string
}

// GatewaysConfig holds per-processor configuration
type GatewaysConfig struct {
	OmniPay GatewayConfig
	Shekel  GatewayConfig
}
