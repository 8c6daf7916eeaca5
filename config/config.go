package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// devJWTSecret signs tokens outside production when JWT_SECRET is unset.
const devJWTSecret = "pfc-balance-dev-secret"

// maxAIAttempts bounds AI_MAX_RETRIES.
const maxAIAttempts = 10

type Config struct {
	Env  string
	Port string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTSecret string

	AIProvider       string
	GeminiAPIKey     string
	GeminiModel      string
	OpenAIAPIKey     string
	OpenAIModel      string
	HuggingFaceToken string
	HuggingFaceModel string
	AIMaxRetries     int
	AIInitialDelay   time.Duration

	MinTargetCalories float64

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AWSRegion     string
	S3Bucket      string
	CloudFrontURL string
	SESEmail      string
	SNSFCMArn     string

	OFFBaseURL string
}

func (c Config) IsProduction() bool { return c.Env == "production" }

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	// a missing .env is fine; the real environment still applies
	_ = godotenv.Load()

	cfg := Config{
		Env:  getEnvOrDefault("APP_ENV", "development"),
		Port: getEnvOrDefault("PORT", "8080"),

		DBHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DBUser:     getEnvOrDefault("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnvOrDefault("DB_NAME", "pfc_balance"),
		DBPort:     getEnvOrDefault("DB_PORT", "5432"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		AIProvider:       strings.ToLower(getEnvOrDefault("AI_PROVIDER", "gemini")),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getEnvOrDefault("OPENAI_MODEL", "gpt-4o"),
		HuggingFaceToken: os.Getenv("HUGGINGFACE_TOKEN"),
		HuggingFaceModel: getEnvOrDefault("HUGGINGFACE_MODEL", "google/flan-t5-large"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		AWSRegion:     getEnvOrDefault("AWS_REGION", "ap-northeast-1"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		CloudFrontURL: os.Getenv("CLOUDFRONT_URL"),
		SESEmail:      os.Getenv("SES_EMAIL"),
		SNSFCMArn:     os.Getenv("SNS_FCM_ARN"),

		OFFBaseURL: getEnvOrDefault("OFF_BASE_URL", "https://world.openfoodfacts.org"),
	}

	var err error
	if cfg.AIMaxRetries, err = getEnvInt("AI_MAX_RETRIES", 3); err != nil {
		return Config{}, err
	}
	if cfg.AIMaxRetries < 1 || cfg.AIMaxRetries > maxAIAttempts {
		return Config{}, fmt.Errorf("AI_MAX_RETRIES: %d out of range 1-%d", cfg.AIMaxRetries, maxAIAttempts)
	}
	delayMs, err := getEnvInt("AI_INITIAL_DELAY_MS", 1000)
	if err != nil {
		return Config{}, err
	}
	cfg.AIInitialDelay = time.Duration(delayMs) * time.Millisecond
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.MinTargetCalories, err = getEnvFloat("MIN_TARGET_CALORIES", 1000); err != nil {
		return Config{}, err
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return Config{}, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = devJWTSecret
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, raw)
	}
	return v, nil
}
