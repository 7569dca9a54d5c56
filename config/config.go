package config

import (
	"log"
	"os"
	"strconv"
)

const (
	DefaultPort             = "8080"
	DefaultTokenExpiryMin   = 10
	DefaultTwoFAExpiryMin   = 10
	DefaultCaptchaThreshold = 5
	DefaultFailureWindowMin = 15
	DefaultClientIDHeader   = "X-Forwarded-For"
)

type Config struct {
	Env              string
	Port             string
	JWTSecret        string
	TokenExpiryMin   int
	TwoFAExpiryMin   int
	CaptchaThreshold int
	FailureWindowMin int
	ClientIDHeader   string
	RecaptchaSecret  string
	// DBURL and RedisAddr are optional; when empty the in-memory stores are
	// used instead.
	DBURL     string
	RedisAddr string
}

func Load() *Config {
	return &Config{
		Env:              getEnv("ENV", "development"),
		Port:             getEnv("PORT", DefaultPort),
		JWTSecret:        mustGetEnv("JWT_SECRET"),
		TokenExpiryMin:   getEnvAsInt("TOKEN_EXPIRY", DefaultTokenExpiryMin),
		TwoFAExpiryMin:   getEnvAsInt("TWO_FA_EXPIRY", DefaultTwoFAExpiryMin),
		CaptchaThreshold: getEnvAsInt("CAPTCHA_THRESHOLD", DefaultCaptchaThreshold),
		FailureWindowMin: getEnvAsInt("FAILURE_WINDOW", DefaultFailureWindowMin),
		ClientIDHeader:   getEnv("CLIENT_ID_HEADER", DefaultClientIDHeader),
		RecaptchaSecret:  getEnv("RECAPTCHA_SECRET", ""),
		DBURL:            getEnv("DB_URL", ""),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
	}
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required environment variable: %s", key)
	return ""
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}
