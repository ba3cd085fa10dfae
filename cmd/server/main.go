package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"diario/internal/core"
	"diario/internal/mailer"
	httpProtocol "diario/internal/protocols/http"
	wsProtocol "diario/internal/protocols/websocket"
	"diario/internal/repository"
	"diario/pkg/config"
	"diario/pkg/database"
	"diario/pkg/logger"
)

func main() {
	configPath := flag.String("config", "./configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)
	logger.Info("Starting Diario de un Instante server...")

	// Connect to database
	dbCfg := database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime.Std(),
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime.Std(),
		Timeout:         cfg.Database.Timeout.Std(),
	}

	pool, err := database.NewPGXPool(dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	logger.Info("Connected to PostgreSQL database")

	// Redis backs the short-lived newsletter tokens
	redisClient, err := database.NewRedisClient(database.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis")

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool)
	instanteRepo := repository.NewInstanteRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	inviteRepo := repository.NewInviteRepository(pool)
	newsletterRepo := repository.NewNewsletterRepository(pool)
	tokenStore := repository.NewTokenStore(redisClient)

	logger.Info("Initialized all repositories")

	// Outbound mail
	mail := mailer.New(cfg.SMTP)
	if !cfg.SMTP.Enabled {
		logger.Warn("SMTP disabled: notification and confirmation emails will be dropped")
	}

	// Live comment stream
	wsHub := wsProtocol.NewHub()
	wsHandler := wsProtocol.NewHandler(wsHub)

	// Initialize core services
	authSvc := core.NewAuthService(
		userRepo, inviteRepo,
		cfg.Auth.InviteRequired,
		cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration.Std(),
	)
	instanteSvc := core.NewInstanteService(instanteRepo, userRepo)
	notifier := core.NewNotificationDispatcher(userRepo, commentRepo, mail, cfg.Site.BaseURL)
	commentSvc := core.NewCommentService(commentRepo, instanteRepo, userRepo, notifier, wsHub)
	newsletterSvc := core.NewNewsletterService(newsletterRepo, tokenStore, mail, cfg.Site.BaseURL)
	inviteSvc := core.NewInviteService(inviteRepo)

	logger.Info("Initialized all core services")

	httpServer := httpProtocol.NewServer(
		cfg,
		authSvc,
		instanteSvc,
		commentSvc,
		newsletterSvc,
		inviteSvc,
		wsHandler,
	)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("HTTP server panic recovered: %v", r)
			}
		}()
		httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		logger.Info(fmt.Sprintf("Starting HTTP server on %s", httpAddr))
		if err := httpServer.Start(httpAddr); err != nil {
			logger.Errorf("HTTP server error: %v", err)
		}
	}()

	logger.Info("Server started successfully")
	logger.Info("Press Ctrl+C to shutdown")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info(fmt.Sprintf("Received signal: %v", sig))

	logger.Info("Shutting down...")
	wsHub.Stop()
	logger.Info("Comment stream hub stopped")

	logger.Info("Shutdown complete")
}
