package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Xaroyw/ArtCore/config"
	database "github.com/Xaroyw/ArtCore/db"
	"github.com/Xaroyw/ArtCore/handler"
	natsClient "github.com/Xaroyw/ArtCore/nats"
	"github.com/Xaroyw/ArtCore/pkg/jwt"
	"github.com/Xaroyw/ArtCore/publisher"
	"github.com/Xaroyw/ArtCore/repository"
	"github.com/Xaroyw/ArtCore/service"
	"github.com/Xaroyw/ArtCore/storage"
	"github.com/Xaroyw/ArtCore/subscriber"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	dbConfig, err := config.LoadDatabaseConfig("ARTCORE_")
	if err != nil {
		log.Fatalf("Failed to load database config: %v", err)
	}

	db, err := database.NewConnection(database.Config{
		Host:         dbConfig.Host,
		Port:         dbConfig.Port,
		User:         dbConfig.User,
		Password:     dbConfig.Password,
		DBName:       dbConfig.DBName,
		SSLMode:      dbConfig.SSLMode,
		MaxOpenConns: dbConfig.MaxOpenConns,
		MaxIdleConns: dbConfig.MaxIdleConns,
		MaxLifetime:  dbConfig.MaxLifetime,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.HealthCheck(ctx); err != nil {
		log.Fatalf("Database health check failed: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	log.Println("Database ready")

	// Redis feed cache; the server runs without it
	redisConfig := config.LoadRedisConfig()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisConfig.Addr,
		Password: redisConfig.Password,
		DB:       redisConfig.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Printf("Redis unavailable, feed cache disabled: %v", err)
		redisClient = nil
	} else {
		log.Println("Connected to Redis")
	}

	// NATS events; the server runs without them
	natsConfig := config.LoadNATSConfig()
	nc, err := natsClient.NewClient(natsClient.Config{
		URL:           natsConfig.URL,
		MaxReconnects: natsConfig.MaxReconnects,
		ReconnectWait: natsConfig.ReconnectWait,
	})
	if err != nil {
		log.Printf("NATS unavailable, events disabled: %v", err)
		nc = nil
	} else {
		defer nc.Close()
		log.Println("Connected to NATS")
	}

	storageConfig := config.LoadStorageConfig()
	blobs, err := storage.NewDiskStore(storageConfig.Root, storageConfig.BaseURL)
	if err != nil {
		log.Fatalf("Failed to init blob storage: %v", err)
	}

	serverConfig := config.LoadServerConfig()
	jwtManager := jwt.NewManager(serverConfig.JWTSecret)

	// Repositories
	accountRepo := repository.NewAccountRepository(db.DB)
	postRepo := repository.NewPostRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)
	sessionRepo := repository.NewSessionRepository(db.DB)

	// Services
	var pub *publisher.EventPublisher
	if nc != nil {
		pub = publisher.NewEventPublisher(nc)
	}
	var profileSink service.ProfileEventSink
	var mediaSink service.MediaEventSink
	if pub != nil {
		profileSink = pub
		mediaSink = pub
	}

	profileService := service.NewProfileService(accountRepo, profileSink)
	identityService := service.NewIdentityService(
		accountRepo, sessionRepo, profileService, jwtManager,
		serverConfig.AccessExpiry, serverConfig.RefreshExpiry,
	)
	feedService := service.NewFeedService(postRepo, redisClient, 5*time.Minute)
	likeService := service.NewLikeService(likeRepo)
	mediaService := service.NewMediaService(blobs, postRepo, accountRepo, profileService, feedService, mediaSink)

	if nc != nil {
		feedSub := subscriber.NewFeedSubscriber(nc, feedService, context.Background())
		if err := feedSub.Start(); err != nil {
			log.Printf("Failed to start feed subscriber: %v", err)
		} else {
			defer feedSub.Stop()
		}
	}

	// HTTP server
	router := handler.NewRouter(
		jwtManager,
		handler.NewAuthHandler(identityService),
		handler.NewProfileHandler(profileService, mediaService),
		handler.NewFeedHandler(feedService, profileService),
		handler.NewLikeHandler(likeService),
		handler.NewMediaHandler(mediaService, profileService),
		blobs.Root(),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", serverConfig.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("ArtCore server running on port %s", serverConfig.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down ArtCore server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped cleanly")
}
