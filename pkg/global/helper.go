package global

import (
	"context"
	"log"
	"os"
	"time"
)

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetDefaultTimer() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func GetMongoURI() string {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI is not set in environment variables")
	}
	return mongoURI
}

func GetDatabaseName() string {
	return GetEnvOrDefault("MONGODB_DATABASE", "storefront")
}

func GetJWTSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set in environment variables")
	}
	return secret
}

func GetRedisAddress() string {
	return GetEnvOrDefault("REDIS_ADDRESS", "localhost:6379")
}

func GetSMTPAddress() string {
	host := GetEnvOrDefault("SMTP_HOST", "localhost")
	port := GetEnvOrDefault("SMTP_PORT", "587")
	return host + ":" + port
}

func GetSMTPFrom() string {
	return GetEnvOrDefault("SMTP_FROM", "no-reply@storefront.local")
}

func GetFrontendURL() string {
	return GetEnvOrDefault("FRONTEND_URL", "http://localhost:3000")
}
