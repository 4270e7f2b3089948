package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DB       DBConfig
	Loyalty  LoyaltyConfig
	LogLevel string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// LoyaltyConfig holds the tunable rules of the loyalty program.
type LoyaltyConfig struct {
	PointsPer100       int // points credited per 100 of order total
	MaxRedeemPercent   int // at most this % of an order can be paid with points
	StampsForFreeDrink int // stamps needed for a free drink
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "coffee"),
		},
		Loyalty: LoyaltyConfig{
			PointsPer100:       getEnvInt("POINTS_PER_100", 5),
			MaxRedeemPercent:   getEnvInt("MAX_REDEEM_PERCENT", 30),
			StampsForFreeDrink: getEnvInt("STAMPS_FOR_FREE_DRINK", 6),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
