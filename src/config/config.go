package config

import (
	"log"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/stake-plus/groupgov/src/data"
)

type Config struct {
	Token          string
	MySQLDSN       string
	RedisURL       string
	JWTSecret      string
	Port           string
	AllowedOrigins []string
}

func Load(db *gorm.DB) Config {
	// Load settings from the database
	if err := data.LoadSettings(db); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}

	// Get values from the database with env fallbacks
	token := data.GetSetting("discord_token")
	if token == "" {
		token = os.Getenv("DISCORD_TOKEN")
	}

	jwtSecret := data.GetSetting("jwt_secret")
	if jwtSecret == "" {
		jwtSecret = getenv("JWT_SECRET", "dev-secret")
	}

	origins := data.GetSetting("allowed_origins")
	if origins == "" {
		origins = getenv("ALLOWED_ORIGINS", "http://localhost:3000")
	}

	return Config{
		Token:          token,
		MySQLDSN:       getenv("MYSQL_DSN", "groupgov:groupgov@tcp(127.0.0.1:3306)/groupgov"),
		RedisURL:       getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		JWTSecret:      jwtSecret,
		Port:           getenv("PORT", "8080"),
		AllowedOrigins: strings.Split(origins, ","),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
