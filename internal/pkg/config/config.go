package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	CORS      CORSConfig
	Log       LogConfig
	JWT       JWTConfig
	Gateway   GatewayConfig
	Kafka     KafkaConfig
	Hold      HoldConfig
	RateLimit RateLimitConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,X-Internal-Service-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,Retry-After"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

// GatewayConfig points at the external payment processor API.
type GatewayConfig struct {
	BaseURL     string        `envconfig:"GATEWAY_BASE_URL" required:"true"`
	APIKey      string        `envconfig:"GATEWAY_API_KEY" required:"true"`
	ConnTimeout time.Duration `envconfig:"GATEWAY_CONN_TIMEOUT" default:"15s"`
	Currency    string        `envconfig:"GATEWAY_CURRENCY" default:"cad"`
	SuccessURL  string        `envconfig:"GATEWAY_CHECKOUT_SUCCESS_URL" default:"http://localhost:3000/booking/payment/success"`
	CancelURL   string        `envconfig:"GATEWAY_CHECKOUT_CANCEL_URL" default:"http://localhost:3000/booking/payment/cancel"`
}

type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"true"`
}

// HoldConfig carries the security-hold policy: how large the holds are and
// how far before the rental start the security hold is authorized.
type HoldConfig struct {
	SecurityAmountCents int64         `envconfig:"HOLD_SECURITY_AMOUNT_CENTS" default:"50000"`
	VerifyAmountCents   int64         `envconfig:"HOLD_VERIFY_AMOUNT_CENTS" default:"5000"`
	LeadTime            time.Duration `envconfig:"HOLD_LEAD_TIME" default:"48h"`
}

type RateLimitConfig struct {
	StrictPerMinute   int  `envconfig:"RATE_LIMIT_STRICT_PER_MINUTE" default:"5"`
	ModeratePerMinute int  `envconfig:"RATE_LIMIT_MODERATE_PER_MINUTE" default:"30"`
	AdminBypass       bool `envconfig:"RATE_LIMIT_ADMIN_BYPASS" default:"true"`
}

type WorkerConfig struct {
	Interval           time.Duration `envconfig:"WORKER_INTERVAL" default:"1m"`
	BatchSize          int           `envconfig:"WORKER_BATCH_SIZE" default:"100"`
	InternalServiceKey string        `envconfig:"INTERNAL_SERVICE_KEY" required:"true"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "UTC",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 0,
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "24h",
		},
		Gateway: GatewayConfig{
			BaseURL:     "http://localhost:12111",
			APIKey:      "sk_test_dummy",
			ConnTimeout: 5 * time.Second,
			Currency:    "cad",
			SuccessURL:  "http://localhost:3000/booking/payment/success",
			CancelURL:   "http://localhost:3000/booking/payment/cancel",
		},
		Kafka: KafkaConfig{
			Enabled: false,
		},
		Hold: HoldConfig{
			SecurityAmountCents: 50000,
			VerifyAmountCents:   5000,
			LeadTime:            48 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			StrictPerMinute:   100,
			ModeratePerMinute: 300,
			AdminBypass:       true,
		},
		Worker: WorkerConfig{
			Interval:           time.Minute,
			BatchSize:          100,
			InternalServiceKey: "test-internal-key",
		},
	}
}
