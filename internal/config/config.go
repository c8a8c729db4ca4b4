package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DATA_DIR      string
	SESSION_FILE  string
	JWT_SECRET    string
	LOG_LEVEL     string
	SMTP_HOST     string
	SMTP_PORT     string
	SMTP_USER     string
	SMTP_PASSWORD string
	SENDER_EMAIL  string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DATA_DIR:      os.Getenv("DATA_DIR"),
		SESSION_FILE:  os.Getenv("SESSION_FILE"),
		JWT_SECRET:    os.Getenv("JWT_SECRET"),
		LOG_LEVEL:     os.Getenv("LOG_LEVEL"),
		SMTP_HOST:     os.Getenv("SMTP_HOST"),
		SMTP_PORT:     os.Getenv("SMTP_PORT"),
		SMTP_USER:     os.Getenv("SMTP_USER"),
		SMTP_PASSWORD: os.Getenv("SMTP_PASSWORD"),
		SENDER_EMAIL:  os.Getenv("SENDER_EMAIL"),
	}

	if config.DATA_DIR == "" {
		config.DATA_DIR = "data"
	}
	if config.SESSION_FILE == "" {
		config.SESSION_FILE = "session.json"
	}
	if config.JWT_SECRET == "" {
		config.JWT_SECRET = "harvoffe-dev-secret"
	}
	if config.SMTP_PORT == "" {
		config.SMTP_PORT = "465"
	}

	return config, nil
}
