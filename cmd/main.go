package main

import (
	"log"

	"github.com/joho/godotenv"

	"example.com/storefront/internal/auth"
	"example.com/storefront/internal/checkout"
	"example.com/storefront/internal/notify"
	"example.com/storefront/internal/router"
	"example.com/storefront/pkg/global"
	"example.com/storefront/pkg/mongo"
	"example.com/storefront/pkg/redis"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	store, err := mongo.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := store.EnsureIndexes(); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	redisClient := redis.NewClient()
	cache := redis.NewProductCache(redisClient)
	blacklist := redis.NewTokenBlacklist(redisClient)

	authService := auth.NewService(global.GetJWTSecret())
	mailer := notify.NewMailer(global.GetSMTPAddress(), global.GetSMTPFrom())
	engine := checkout.New(store, store, store, store, store, mailer)

	_, api := router.New(router.Deps{
		Store:     store,
		Cache:     cache,
		Blacklist: blacklist,
		Auth:      authService,
		Mailer:    mailer,
		Checkout:  engine,
	})

	port := global.GetEnvOrDefault("PORT", "8000")
	log.Printf("Server is running on port %s", port)

	if err := api.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
