package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI           string
	DBName             string
	Port               string
	JWTSecret          string
	TokenTTL           time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendURL        string
	UploadDir          string
	PublicBaseURL      string
	ChatbotURL         string
	AMQPURL            string
	PostmarkToken      string
	EmailSender        string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	return &Config{
		MongoURI:           getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		DBName:             getEnvOrDefault("DB_NAME", "petcare"),
		Port:               getEnvOrDefault("PORT", "5000"),
		JWTSecret:          getEnvOrDefault("JWT_SECRET", ""),
		TokenTTL:           getDurationEnv("TOKEN_TTL_HOURS", 24, time.Hour),
		GoogleClientID:     getEnvOrDefault("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnvOrDefault("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnvOrDefault("GOOGLE_REDIRECT_URL", "http://localhost:5000/auth/google/callback"),
		FrontendURL:        getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
		UploadDir:          getEnvOrDefault("UPLOAD_DIR", "./uploads"),
		PublicBaseURL:      getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:5000"),
		ChatbotURL:         getEnvOrDefault("CHATBOT_URL", "http://127.0.0.1:8000/ask"),
		AMQPURL:            getEnvOrDefault("AMQP_URL", ""),
		PostmarkToken:      getEnvOrDefault("POSTMARK_TOKEN", ""),
		EmailSender:        getEnvOrDefault("EMAIL_SENDER", ""),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
