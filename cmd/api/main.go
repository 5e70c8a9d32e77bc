package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hgyoseo/HDMeal-Chatbot/config"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/api"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/chat"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/database"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/mealdata"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/middleware"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/server"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/service"
)

func main() {
	configPath := flag.String("config", "conf.yaml", "path to the configuration file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	zapCfg := zap.NewProductionConfig()
	if *verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}

	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.WebhookToken)
	store := service.NewPreferenceStore(db)
	source := mealdata.NewCachedSource(mealdata.NewClient(&cfg.Source), redisClient, cfg.Redis.TTL, logger)
	publisher := service.NewPublisher(source, service.PublisherConfig{
		OneSignalAppID:  cfg.OneSignal.AppID,
		OneSignalAPIKey: cfg.OneSignal.APIKey,
		FacebookPageID:  cfg.Facebook.PageID,
		FacebookToken:   cfg.Facebook.PageAccessToken,
	}, logger)

	router := chat.NewRouter(store, source, tokens, logger, chat.Config{
		SchoolName:      cfg.School.Name,
		SettingsBaseURL: cfg.Settings.BaseURL,
		BriefingTimeout: cfg.Briefing.Timeout,
	})

	limiter := middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
		Window:    time.Minute,
		Limit:     10,
		KeyPrefix: "hdmeal:ratelimit",
	})

	srv := server.New(cfg, tokens, limiter, server.Handlers{
		Kakao:      api.NewKakaoHandler(router, logger),
		Dialogflow: api.NewDialogflowHandler(router, logger),
		Publish:    api.NewPublishHandler(publisher, logger),
		Settings:   api.NewSettingsHandler(store, tokens, logger),
		Health:     api.NewHealthHandler(source, logger),
	}, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Fatal("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}
