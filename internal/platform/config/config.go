package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AllowedOrigins []string

	Judge0URL          string
	Judge0Key          string
	Judge0Host         string
	Judge0Timeout      time.Duration
	Judge0MockFallback bool

	OpenRouterKey     string
	OpenRouterModel   string
	OpenRouterTimeout time.Duration

	ChatMessageCap  int
	TeamMaxSize     int
	ProxyRateLimit  int
	ProxyRateWindow time.Duration
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:            getEnv("API_PORT", "8080"),
		JWTKey:             []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:             time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "user"),
		DBPassword:         getEnv("DB_PASSWORD", "password"),
		DBName:             getEnv("DB_NAME", "codeclash_db"),
		DBSslMode:          getEnv("DB_SSLMODE", "disable"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		AllowedOrigins:     strings.Split(getEnv("ALLOWED_ORIGINS", "https://*,http://*"), ","),
		Judge0URL:          getEnv("JUDGE0_API_URL", "https://judge0-ce.p.rapidapi.com"),
		Judge0Key:          getEnv("RAPIDAPI_KEY", ""),
		Judge0Host:         getEnv("JUDGE0_API_HOST", "judge0-ce.p.rapidapi.com"),
		Judge0Timeout:      time.Duration(getEnvAsInt("JUDGE0_TIMEOUT_SECONDS", 20)) * time.Second,
		Judge0MockFallback: getEnvAsBool("JUDGE0_MOCK_FALLBACK", false),
		OpenRouterKey:      getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:    getEnv("OPENROUTER_MODEL", "tngtech/deepseek-r1t2-chimera:free"),
		OpenRouterTimeout:  time.Duration(getEnvAsInt("OPENROUTER_TIMEOUT_SECONDS", 30)) * time.Second,
		ChatMessageCap:     getEnvAsInt("CHAT_MESSAGE_CAP", 50),
		TeamMaxSize:        getEnvAsInt("TEAM_MAX_SIZE", 0),
		ProxyRateLimit:     getEnvAsInt("PROXY_RATE_LIMIT", 30),
		ProxyRateWindow:    time.Duration(getEnvAsInt("PROXY_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
