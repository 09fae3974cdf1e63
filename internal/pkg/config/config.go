package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: values that differ between environments (port, DB connection, secrets)
// - default: values common across all environments (timeouts, TTLs, fees)
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	CORS     CORSConfig
	Log      LogConfig
	JWT      JWTConfig
	Checkout CheckoutConfig
	Stripe   StripeConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
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
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,Location"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

// Buyer tokens are issued by the identity provider; this service only verifies them.
type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
	Issuer string `envconfig:"JWT_ISSUER" default:""`
}

type CheckoutConfig struct {
	ReservationTTL       time.Duration `envconfig:"CHECKOUT_RESERVATION_TTL" default:"15m"`
	SweepInterval        time.Duration `envconfig:"CHECKOUT_SWEEP_INTERVAL" default:"1m"`
	SweepBatchSize       int           `envconfig:"CHECKOUT_SWEEP_BATCH_SIZE" default:"100"`
	ServiceFeeBps        int64         `envconfig:"CHECKOUT_SERVICE_FEE_BPS" default:"0"`
	ServiceFeeFixed      int64         `envconfig:"CHECKOUT_SERVICE_FEE_FIXED" default:"0"`
	Currency             string        `envconfig:"CHECKOUT_CURRENCY" default:"usd"`
	MaxQuantityPerItem   int           `envconfig:"CHECKOUT_MAX_QUANTITY_PER_ITEM" default:"20"`
	IdempotencyKeyExpiry time.Duration `envconfig:"CHECKOUT_IDEMPOTENCY_KEY_EXPIRY" default:"24h"`
}

type StripeConfig struct {
	SecretKey     string `envconfig:"STRIPE_SECRET_KEY" default:""`
	WebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET" default:""`
	SuccessURL    string `envconfig:"STRIPE_SUCCESS_URL" default:"http://localhost:3000/checkout/success?order={ORDER_ID}"`
	CancelURL     string `envconfig:"STRIPE_CANCEL_URL" default:"http://localhost:3000/checkout/cancel?order={ORDER_ID}"`
}

type KafkaConfig struct {
	Enabled          bool          `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers          []string      `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	Topic            string        `envconfig:"KAFKA_TOPIC" default:"ticketing.orders"`
	DispatchInterval time.Duration `envconfig:"KAFKA_DISPATCH_INTERVAL" default:"5s"`
	BatchSize        int           `envconfig:"KAFKA_DISPATCH_BATCH_SIZE" default:"50"`
	MaxAttempts      int           `envconfig:"KAFKA_DISPATCH_MAX_ATTEMPTS" default:"10"`
}

type RedisConfig struct {
	Enabled         bool          `envconfig:"REDIS_ENABLED" default:"false"`
	Addr            string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password        string        `envconfig:"REDIS_PASSWORD" default:""`
	DB              int           `envconfig:"REDIS_DB" default:"0"`
	AvailabilityTTL time.Duration `envconfig:"REDIS_AVAILABILITY_TTL" default:"5s"`
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
			Port: "8889",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433",
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 20,
		},
		Log: LogConfig{
			Level:      "error",
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret: "test-secret",
		},
		Checkout: CheckoutConfig{
			ReservationTTL:       15 * time.Minute,
			SweepInterval:        time.Minute,
			SweepBatchSize:       100,
			Currency:             "usd",
			MaxQuantityPerItem:   20,
			IdempotencyKeyExpiry: 24 * time.Hour,
		},
		Stripe: StripeConfig{
			SuccessURL: "http://localhost:3000/checkout/success?order={ORDER_ID}",
			CancelURL:  "http://localhost:3000/checkout/cancel?order={ORDER_ID}",
		},
		Kafka: KafkaConfig{
			Topic:            "ticketing.orders",
			DispatchInterval: 5 * time.Second,
			BatchSize:        50,
			MaxAttempts:      10,
		},
		Redis: RedisConfig{
			AvailabilityTTL: 5 * time.Second,
		},
	}
}
