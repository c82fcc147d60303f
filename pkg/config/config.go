package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	GitHub   GitHubConfig
	JWT      JWTConfig
	Email    EmailConfig
	Frontend FrontendConfig
	Public   PublicDataConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type DatabaseConfig struct {
	Path string
}

type GitHubConfig struct {
	ClientID            string
	ClientSecret        string
	CallbackURL         string
	PersonalAccessToken string
}

type JWTConfig struct {
	Secret string
}

type EmailConfig struct {
	Address      string
	SMTPAddr     string
	SMTPUsername string
	SMTPPassword string
}

type FrontendConfig struct {
	URL string
}

type PublicDataConfig struct {
	Path string
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./codebaseshow.db"),
		},
		GitHub: GitHubConfig{
			ClientID:            getEnv("GITHUB_CLIENT_ID", ""),
			ClientSecret:        getEnv("GITHUB_CLIENT_SECRET", ""),
			CallbackURL:         getEnv("GITHUB_CALLBACK_URL", ""),
			PersonalAccessToken: getEnv("GITHUB_PERSONAL_ACCESS_TOKEN", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Email: EmailConfig{
			Address:      getEnv("EMAIL_ADDRESS", ""),
			SMTPAddr:     getEnv("SMTP_ADDR", "localhost:25"),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		},
		Frontend: FrontendConfig{
			URL: getEnv("FRONTEND_URL", "https://codebase.show/"),
		},
		Public: PublicDataConfig{
			Path: getEnv("PUBLIC_DATA_PATH", "./public"),
		},
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
