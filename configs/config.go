package configs

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string
	Port   int

	DBDriver   string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBNameTest string
	DBPath     string

	RedisEnabled  bool
	RedisHost     string
	RedisPort     int
	RedisPassword string

	JWTSecret     string
	EncryptionKey string
	BcryptCost    int

	ClientURL string
	ServerURL string

	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string

	UploadDir       string
	LogDir          string
	InvitationSweep string
}

// IsProduction reports whether cookies must be marked Secure.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func LoadConfig() Config {
	// Muat file .env
	if err := godotenv.Load(); err != nil {
		// Hanya log jika tidak dalam mode test
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	return Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnvInt("PORT", 3004),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "taskhub"),
		DBNameTest: getEnv("DB_NAME_TEST", "taskhub_test"),
		DBPath:     getEnv("DB_PATH", "taskhub.db"),

		RedisEnabled:  getEnvBool("REDIS_ENABLED", true),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnvInt("REDIS_PORT", 6379),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		EncryptionKey: getEnv("ENCRYPTION_KEY", "MySecretEncryptionKey!"),
		BcryptCost:    getEnvInt("BCRYPT_COST", 12),

		ClientURL: strings.TrimRight(getEnv("CLIENT_URL", "http://localhost:3000"), "/"),
		ServerURL: strings.TrimRight(getEnv("SERVER_URL", "http://localhost:3004"), "/"),

		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:   os.Getenv("GOOGLE_CLIENT_SECRET"),
		FacebookClientID:     os.Getenv("FACEBOOK_CLIENT_ID"),
		FacebookClientSecret: os.Getenv("FACEBOOK_CLIENT_SECRET"),

		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		LogDir:          getEnv("LOG_DIR", "logs"),
		InvitationSweep: getEnv("INVITATION_SWEEP", "@every 1h"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
