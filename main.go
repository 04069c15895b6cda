package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lessons-api/config"
	"lessons-api/database"
	adminapi "lessons-api/internal/api/admin"
	authapi "lessons-api/internal/api/auth"
	billingapi "lessons-api/internal/api/billing"
	usersapi "lessons-api/internal/api/users"
	routes "lessons-api/internal/app/http"
	"lessons-api/internal/app/logging"
	"lessons-api/internal/checkout"
	"lessons-api/internal/infra/store"
	"lessons-api/internal/infra/stripe"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadEnv()
	log := logging.Setup(config.IsDev())
	if !config.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// run owns every resource it opens, so deferred cleanup happens before main
// decides the exit code.
func run(log *slog.Logger) error {
	db, err := database.Open(config.DB_URL, config.IsDev())
	if err != nil {
		return fmt.Errorf("database setup: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("close database", "error", err)
		}
	}()

	if err := authapi.RegisterValidations(); err != nil {
		return fmt.Errorf("register validations: %w", err)
	}

	accounts := store.NewAccounts(db)
	ledger := store.NewLedger(db)

	gateway := stripe.NewGateway(stripe.Config{
		SecretKey:         config.STRIPE_SECRET_KEY,
		APIURL:            config.STRIPE_API_URL,
		AppURL:            config.APP_URL,
		Timeout:           config.GATEWAY_TIMEOUT,
		MaxNetworkRetries: 2,
	})
	svc := checkout.NewService(gateway, ledger, accounts, checkout.WithLogger(log))

	r := gin.New()
	r.Use(gin.Recovery())

	// Add CORS middleware BEFORE registering routes
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Handlers{
		Users:   usersapi.NewHandler(accounts),
		Auth:    authapi.NewHandler(accounts, config.JWT_SECRET),
		Billing: billingapi.NewHandler(svc, ledger),
		Admin:   adminapi.NewHandler(ledger, accounts),
	}, routes.Deps{
		JWTSecret: config.JWT_SECRET,
		Accounts:  accounts,
		Log:       log,
	})

	srv := &http.Server{
		Addr:              ":" + config.PORT,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", config.PORT, "env", config.APP_ENV)
		serveErr <- srv.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
