package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Storage backends for the persisted cart
const (
	StorageMemory = "memory"
	StoragePebble = "pebble"
	StorageRedis  = "redis"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Observ   ObservabilityConfig
	Business BusinessConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type StorageConfig struct {
	Backend string
	Dir     string
	CartKey string
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers           []string
	TopicIntegrations string
	ConsumerGroup     string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

type BusinessConfig struct {
	ChatTypedDelay      time.Duration
	ChatQuickReplyDelay time.Duration
	PaymentDelay        time.Duration
	SubmissionDelay     time.Duration
	ShippingFlatFee     decimal.Decimal
}

// Load reads configuration from the environment, after applying an optional .env file
func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	fee, err := decimal.NewFromString(getEnv("SHIPPING_FLAT_FEE", "5.00"))
	if err != nil {
		fee = decimal.NewFromInt(5)
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(getEnv("STORAGE_BACKEND", StoragePebble)),
			Dir:     getEnv("STORAGE_DIR", "./data/storefront"),
			CartKey: getEnv("CART_STORAGE_KEY", "cart"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:           splitList(getEnv("KAFKA_BROKERS", "")),
			TopicIntegrations: getEnv("KAFKA_TOPIC_INTEGRATIONS", "storefront-integrations"),
			ConsumerGroup:     getEnv("KAFKA_CONSUMER_GROUP", "sheet-sync"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
		},
		Business: BusinessConfig{
			ChatTypedDelay:      getMillis("CHAT_TYPED_DELAY_MS", 800),
			ChatQuickReplyDelay: getMillis("CHAT_QUICK_REPLY_DELAY_MS", 600),
			PaymentDelay:        getMillis("PAYMENT_DELAY_MS", 2000),
			SubmissionDelay:     getMillis("SUBMISSION_DELAY_MS", 1000),
			ShippingFlatFee:     fee,
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getMillis(key string, defaultMs int) time.Duration {
	ms, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultMs)))
	if err != nil || ms < 0 {
		ms = defaultMs
	}
	return time.Duration(ms) * time.Millisecond
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
