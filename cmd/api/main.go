package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventpulse/config"
	authadapter "eventpulse/internal/adapters/auth"
	emailadapter "eventpulse/internal/adapters/email"
	"eventpulse/internal/adapters/generator"
	"eventpulse/internal/clock"
	delivery "eventpulse/internal/delivery/http"
	"eventpulse/internal/delivery/http/controllers"
	"eventpulse/internal/delivery/http/middleware"
	"eventpulse/internal/repository/postgres"
	"eventpulse/internal/services"
)

const (
	serviceTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
	bcryptCost      = 12
)

// @title EventPulse API
// @version 1.0
// @description Event management and registration API.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	txManager := postgres.NewTxManager(db)
	clk := clock.NewSystem()

	hasher := authadapter.NewBcryptHasher(bcryptCost)
	tokenIssuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	tokenVerifier := authadapter.NewJWTVerifier(cfg.JWTSecret)

	mailer, err := emailadapter.NewMailer(emailadapter.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: emailadapter.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	})
	if err != nil {
		log.Fatalf("failed to create mailer: %v", err)
	}

	authService := services.NewAuthService(userRepo, hasher, tokenIssuer, cfg.JWTExpiry)
	userService := services.NewUserService(userRepo)
	eventService := services.NewEventService(eventRepo, registrationRepo, userRepo, txManager, clk, serviceTimeout)
	dashboardService := services.NewDashboardService(eventRepo, registrationRepo, clk, serviceTimeout)
	emailService := services.NewEmailService(emailadapter.NewTemplateRenderer(), mailer)
	registrationService := services.NewRegistrationService(eventRepo, registrationRepo, emailService, clk, logger, serviceTimeout)
	eventGenerator := generator.NewGeminiGenerator(nil, cfg.GeminiAPIKey)

	mux := delivery.NewRouter(
		tokenVerifier,
		controllers.NewAuthController(logger, authService),
		controllers.NewUserController(logger, userService),
		controllers.NewEventController(logger, eventService),
		controllers.NewDashboardController(logger, dashboardService),
		controllers.NewRegistrationController(logger, registrationService),
		controllers.NewGeneratorController(logger, eventGenerator),
	)

	handler := middleware.CORS(cfg.CORSOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	logger.Info("server stopped")
}
