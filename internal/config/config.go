package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/peptok/CoachMarketBack/internal/models"
)

type Config struct {
	Port                 string
	DBUrl                string
	JWTSecret            string
	AppEnv               string
	LogLevel             string
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	CacheMatches         bool
	CORSAllowOrigins     string
	MatchCacheTTL        time.Duration
	MaxMatchesPerRequest int
	KafkaBrokers         []string
	KafkaConsumerGroup   string
	KafkaRequestTopic    string
	KafkaResponseTopic   string
	KafkaErrorTopic      string
	DefaultPricing       models.PricingConfiguration
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		DBUrl:                getEnv("DB_URL", ""),
		JWTSecret:            jwtSecret,
		AppEnv:               normalizeEnv(getEnv("APP_ENV", "production")),
		LogLevel:             strings.ToLower(getEnv("LOG_LEVEL", "info")),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		CacheMatches:         getEnvBool("CACHE_MATCHES", true),
		CORSAllowOrigins:     getEnv("CORS_ALLOW_ORIGINS", "*"),
		MatchCacheTTL:        time.Duration(getEnvInt("MATCH_CACHE_TTL_SECONDS", 3600)) * time.Second,
		MaxMatchesPerRequest: getEnvInt("MAX_MATCHES_PER_REQUEST", 10),
		KafkaBrokers:         getEnvList("KAFKA_BOOTSTRAP_SERVERS"),
		KafkaConsumerGroup:   getEnv("KAFKA_CONSUMER_GROUP", "matching-service"),
		KafkaRequestTopic:    getEnv("KAFKA_REQUEST_TOPIC", "matching-requests"),
		KafkaResponseTopic:   getEnv("KAFKA_RESPONSE_TOPIC", "matching-responses"),
		KafkaErrorTopic:      getEnv("KAFKA_ERROR_TOPIC", "matching-errors"),
		DefaultPricing: models.PricingConfiguration{
			CompanyServiceFeeRate:         getEnvFloat("DEFAULT_COMPANY_SERVICE_FEE_RATE", 0.10),
			CoachCommissionRate:           getEnvFloat("DEFAULT_COACH_COMMISSION_RATE", 0.20),
			MinCoachCommissionAmount:      getEnvFloat("DEFAULT_MIN_COACH_COMMISSION", 5),
			AdditionalParticipantFee:      getEnvFloat("DEFAULT_ADDITIONAL_PARTICIPANT_FEE", 25),
			MaxParticipantsIncludedInBase: getEnvInt("DEFAULT_MAX_INCLUDED_PARTICIPANTS", 1),
			Currency:                      strings.ToUpper(getEnv("DEFAULT_CURRENCY", "USD")),
		},
	}

	if err := cfg.DefaultPricing.Validate(); err != nil {
		return nil, fmt.Errorf("default pricing: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvList(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

func (c *Config) RedisEnabled() bool {
	return c != nil && c.CacheMatches && c.RedisAddr != ""
}

func (c *Config) KafkaEnabled() bool {
	return c != nil && len(c.KafkaBrokers) > 0
}
