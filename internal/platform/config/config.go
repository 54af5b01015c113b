package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort  string
	JWTKey   []byte
	JWTExp   time.Duration
	LogLevel string

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

	SyncLockTTL time.Duration

	CodeforcesAPIURL      string
	CodeforcesMinInterval time.Duration
	CodeforcesTimeout     time.Duration

	// Bootstrap administrator, created on first start. Change the password right after.
	AdminUsername string
	AdminPassword string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:  getEnv("API_PORT", "8080"),
		JWTKey:   []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:   time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "cp_tracker"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		SyncLockTTL: time.Duration(getEnvAsInt("SYNC_LOCK_TTL_SECONDS", 60)) * time.Second,

		CodeforcesAPIURL:      getEnv("CODEFORCES_API_URL", "https://codeforces.com/api"),
		CodeforcesMinInterval: time.Duration(getEnvAsInt("CODEFORCES_MIN_INTERVAL_MS", 200)) * time.Millisecond,
		CodeforcesTimeout:     time.Duration(getEnvAsInt("CODEFORCES_TIMEOUT_SECONDS", 10)) * time.Second,

		AdminUsername: getEnv("ADMIN_USERNAME", "Admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "12345678"),
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
