package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tair/fashion-checkout/pkg/database"
	"github.com/tair/fashion-checkout/pkg/tracing"
)

// Config is the full runtime configuration of the shop and reconciler.
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string
	HTTPPort    string

	JaegerEndpoint   string
	TraceSampleRatio float64

	Database database.Config

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// CheckoutRateLimit caps order and payment URL creation per customer
	// per minute. Zero disables the limit.
	CheckoutRateLimit int

	KafkaEnabled bool
	KafkaBrokers []string

	JWTSecret string

	VNPay VNPayConfig

	// PaymentResultBaseURL is the storefront origin the browser is sent back to
	// after the gateway return callback, e.g. https://shop.example.com.
	PaymentResultBaseURL string
}

// VNPayConfig holds merchant settings for the signed-redirect gateway.
type VNPayConfig struct {
	PayURL      string
	TmnCode     string
	HashSecret  string
	ReturnURL   string
	Version     string
	Command     string
	OrderType   string
	Locale      string
	CurrCode    string
	ExpireAfter time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load(serviceName string) (*Config, error) {
	// Missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName: getEnv("OTEL_SERVICE_NAME", serviceName),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),

		JaegerEndpoint:   getEnv("JAEGER_ENDPOINT", ""),
		TraceSampleRatio: getEnvFloat("TRACE_SAMPLE_RATIO", 1),

		Database: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "shopdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		CheckoutRateLimit: getEnvInt("CHECKOUT_RATE_LIMIT", 20),
		KafkaEnabled:      getEnvBool("KAFKA_ENABLED", false),
		KafkaBrokers:      splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		VNPay: VNPayConfig{
			PayURL:      getEnv("VNPAY_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
			TmnCode:     getEnv("VNPAY_TMN_CODE", ""),
			HashSecret:  getEnv("VNPAY_HASH_SECRET", ""),
			ReturnURL:   getEnv("VNPAY_RETURN_URL", "http://localhost:8080/api/payments/vnpay/return"),
			Version:     getEnv("VNPAY_VERSION", "2.1.0"),
			Command:     getEnv("VNPAY_COMMAND", "pay"),
			OrderType:   getEnv("VNPAY_ORDER_TYPE", "other"),
			Locale:      getEnv("VNPAY_LOCALE", "vn"),
			CurrCode:    getEnv("VNPAY_CURRENCY", "VND"),
			ExpireAfter: time.Duration(getEnvInt("VNPAY_EXPIRE_MINUTES", 15)) * time.Minute,
		},
		PaymentResultBaseURL: strings.TrimRight(getEnv("PAYMENT_RESULT_BASE_URL", "http://localhost:3000"), "/"),
	}

	return cfg, nil
}

// Tracing returns the tracer settings for this process.
func (c *Config) Tracing() tracing.Config {
	return tracing.Config{
		ServiceName: c.ServiceName,
		Environment: c.Environment,
		Endpoint:    c.JaegerEndpoint,
		SampleRatio: c.TraceSampleRatio,
	}
}

// IsDevelopment reports whether console logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Validate checks the settings the payment path cannot run without.
func (c VNPayConfig) Validate() error {
	if c.TmnCode == "" {
		return fmt.Errorf("VNPAY_TMN_CODE is required")
	}
	if c.HashSecret == "" {
		return fmt.Errorf("VNPAY_HASH_SECRET is required")
	}
	if c.ExpireAfter <= 0 {
		return fmt.Errorf("VNPAY_EXPIRE_MINUTES must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
