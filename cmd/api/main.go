package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"travel-agent/internal/config"
	"travel-agent/internal/db"
	"travel-agent/internal/destination"
	apihttp "travel-agent/internal/http"
	"travel-agent/internal/model"
	"travel-agent/internal/repository"
	"travel-agent/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	tree, err := model.Load(cfg.ModelPath)
	if err != nil {
		logger.Fatal("load model", zap.String("path", cfg.ModelPath), zap.Error(err))
	}
	logger.Info("model loaded",
		zap.String("path", cfg.ModelPath),
		zap.Strings("features", tree.FeatureNames()),
		zap.Int("nodes", tree.Structure().NodeCount()),
	)

	var decisionRepo repository.DecisionRepository
	var recorder service.DecisionRecorder
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("db schema", zap.Error(err))
		}
		repo := repository.NewPgDecisionRepository(pool)
		decisionRepo = repo
		recorder = repo
	} else {
		logger.Warn("DATABASE_URL not set, decision audit disabled")
	}

	var (
		memory       service.DecisionMemory
		tokenStore   service.RefreshTokenStore
		tokenLimiter service.RateLimiter
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-process memory", zap.Error(err))
		} else {
			memory = service.NewRedisDecisionMemory(redisClient, cfg.MemorySessionKey, cfg.MemoryMaxEntries)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			tokenLimiter = service.NewRedisTokenRateLimiter(
				redisClient,
				time.Duration(cfg.AuthRateLimitWindowSeconds)*time.Second,
				cfg.AuthRateLimitMax,
			)
		}
		cancel()
	}
	if memory == nil {
		memory = service.NewMemoryDecisionStore(cfg.MemoryMaxEntries)
	}

	var policy service.Policy = service.NoopPolicy{}
	if cfg.PolicyEnabled {
		policy = service.NewBudgetPolicy()
	}

	agent, err := service.NewAgent(logger, tree, memory, policy, recorder)
	if err != nil {
		logger.Fatal("init agent", zap.Error(err))
	}

	destClient := destination.NewHTTPClient(cfg.GeocoderBaseURL, cfg.OverpassURL, cfg.UserAgent, cfg.DestinationRadiusM, logger)
	alternativesSvc := service.NewAlternativesService(destClient, logger)

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLHours)*time.Hour,
		tokenStore,
	)
	clientScopes, err := service.ParseScopes(cfg.APIClientScopes)
	if err != nil {
		logger.Fatal("invalid API_CLIENT_SCOPES", zap.String("value", cfg.APIClientScopes), zap.Error(err))
	}
	clients := service.NewClientAuthenticator(cfg.APIClientID, cfg.APIClientSecretHash, clientScopes)

	decisionHandler := apihttp.NewDecisionHandler(logger, agent, tree, alternativesSvc, decisionRepo)
	authHandler := apihttp.NewAuthHandler(logger, clients, jwtSvc, tokenLimiter)
	router := apihttp.NewRouter(logger, decisionHandler, authHandler, jwtSvc)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.Bool("policy_enabled", cfg.PolicyEnabled))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
