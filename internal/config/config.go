package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DBConfig agrupa os parâmetros de conexão com o Postgres.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns int
	MaxIdleConns int
}

// DSN monta a connection string do Postgres.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// Config é a configuração completa do serviço, carregada do ambiente.
type Config struct {
	Environment string
	ServerPort  string

	DB DBConfig

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	RedisURL string

	S3Bucket string
	S3Region string

	CEPBaseURL  string
	CEPTimeout  time.Duration
	CEPCacheTTL time.Duration

	LandingRegistryPath string
	AlertWebhookURL     string

	CORSAllowedOrigins []string
	LogLevel           string
}

// Load lê o .env (se existir) e depois as variáveis de ambiente.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "backoffice"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),

			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		JWTSecret:  os.Getenv("JWT_SECRET"),
		AccessTTL:  getEnvAsDuration("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTTL: getEnvAsDuration("JWT_REFRESH_TTL", 30*24*time.Hour),

		RedisURL: getEnv("REDIS_URL", ""),

		S3Bucket: getEnv("S3_BUCKET_NAME", ""),
		S3Region: getEnv("AWS_S3_REGION", "sa-east-1"),

		CEPBaseURL:  getEnv("CEP_BASE_URL", "https://viacep.com.br/ws"),
		CEPTimeout:  getEnvAsDuration("CEP_TIMEOUT", 5*time.Second),
		CEPCacheTTL: getEnvAsDuration("CEP_CACHE_TTL", 24*time.Hour),

		LandingRegistryPath: getEnv("LANDING_REGISTRY_PATH", "landing.json"),
		AlertWebhookURL:     getEnv("ALERT_WEBHOOK_URL", ""),

		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET não definida")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
