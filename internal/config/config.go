package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	JWTIssuer  string
	JWTTTL     int // hours
	GinMode    string
	UploadRoot string
}

func Load() *Config {
	// A missing .env is fine; deployments configure via real environment variables.
	_ = godotenv.Load()

	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "timesheet"),
		DBPassword: getEnv("DB_PASSWORD", "timesheet"),
		DBName:     getEnv("DB_NAME", "timesheet_app"),
		JWTSecret:  getEnv("JWT_SECRET", "default-secret-key-change-me"),
		JWTIssuer:  getEnv("JWT_ISSUER", "timesheet-api"),
		JWTTTL:     getEnvInt("JWT_TTL_HOURS", 24),
		GinMode:    getEnv("GIN_MODE", "debug"),
		UploadRoot: getEnv("UPLOAD_ROOT", "."),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
