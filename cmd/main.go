package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/likhilliki/EcoPulse/internal/agent"
	"github.com/likhilliki/EcoPulse/internal/cardano"
	"github.com/likhilliki/EcoPulse/internal/config"
	"github.com/likhilliki/EcoPulse/internal/handler"
	"github.com/likhilliki/EcoPulse/internal/models"
	"github.com/likhilliki/EcoPulse/internal/repository"
	"github.com/likhilliki/EcoPulse/internal/scheduler"
	"github.com/likhilliki/EcoPulse/internal/service"
	"github.com/likhilliki/EcoPulse/pkg/auth"
	"github.com/likhilliki/EcoPulse/pkg/logger"

	"github.com/rs/cors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	db, err := initDatabase(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer closeDatabase(db)

	userRepo := repository.NewUserRepository(db)
	readingRepo := repository.NewReadingRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	verifier := agent.NewVerifier(&cfg.Agent)

	authSvc := service.NewAuthService(userRepo, tokens)
	readingSvc := service.NewReadingService(readingRepo)
	tokenSvc := service.NewTokenService(tokenRepo)
	agentSvc := service.NewAgentService(db, verifier, verificationRepo, readingRepo, tokenRepo, submissionRepo)
	reconcileSvc := service.NewReconcileService(userRepo, tokenRepo, verificationRepo)

	agentScheduler := scheduler.NewAgentScheduler(agentSvc, reconcileSvc, cfg.Agent.BatchCron)
	if err := agentScheduler.Start(); err != nil {
		logger.Fatal("Failed to start scheduler:", err)
	}
	defer agentScheduler.Stop()

	blockfrost := cardano.NewClient(&cfg.Blockfrost)

	router := setupHTTPRouter(cfg, tokens, authSvc, readingSvc, tokenSvc, agentSvc, blockfrost)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      corsMiddleware.Handler(router),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting on port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error:", err)
	}

	logger.Info("Server stopped")
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := db.AutoMigrate(
		&models.User{},
		&models.AQIReading{},
		&models.Token{},
		&models.AgentVerification{},
		&models.AgentSubmission{},
	); err != nil {
		return nil, err
	}

	return db, nil
}

func closeDatabase(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get database instance:", err)
		return
	}
	sqlDB.Close()
}

func setupHTTPRouter(
	cfg *config.Config,
	tokens *auth.TokenManager,
	authSvc *service.AuthService,
	readingSvc *service.ReadingService,
	tokenSvc *service.TokenService,
	agentSvc *service.AgentService,
	blockfrost *cardano.Client,
) http.Handler {
	router := http.NewServeMux()

	authHandler := handler.NewAuthHandler(authSvc)
	readingHandler := handler.NewReadingHandler(readingSvc)
	tokenHandler := handler.NewTokenHandler(tokenSvc)
	agentHandler := handler.NewAgentHandler(agentSvc)
	cardanoHandler := handler.NewCardanoHandler(blockfrost)

	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return handler.AuthMiddleware(tokens, h)
	}

	router.HandleFunc("/api/auth/signup", authHandler.Signup)
	router.HandleFunc("/api/auth/login", authHandler.Login)
	router.HandleFunc("/api/auth/me", protected(authHandler.Me))
	router.HandleFunc("/api/wallet/connect", protected(authHandler.ConnectWallet))
	router.HandleFunc("/api/aqi/record", protected(readingHandler.Record))
	router.HandleFunc("/api/aqi/history", protected(readingHandler.History))
	router.HandleFunc("/api/agent/submit", protected(agentHandler.Submit))
	router.HandleFunc("/api/agent/stats", protected(agentHandler.Stats))
	router.HandleFunc("/api/agent/verifications", protected(agentHandler.Verifications))
	router.HandleFunc("/api/tokens/balance", protected(tokenHandler.Balance))
	router.HandleFunc("/api/cardano/submit-tx", cardanoHandler.SubmitTx)
	router.HandleFunc("/health", handler.HandleHealth)

	fs := http.FileServer(http.Dir("./web"))
	router.Handle("/", fs)

	return router
}
