package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"flightdeals/internal/config"
	"flightdeals/internal/db"
	"flightdeals/internal/email"
	"flightdeals/internal/flights"
	"flightdeals/internal/jobs"
	"flightdeals/internal/metrics"
	"flightdeals/internal/middleware"
	"flightdeals/internal/notify"
	"flightdeals/internal/server"
	"flightdeals/internal/sheet"
	"flightdeals/internal/sms"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}
	cfg := config.Load()

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}
	yamlCfg.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize run history
	var database *db.DB
	if cfg.IsHistoryEnabled() {
		database, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations completed successfully")
		metrics.Init(database)
	} else {
		log.Println("Run history disabled. Set DATABASE_URL to enable.")
		metrics.Init(nil)
	}

	// Wire the deal checker
	sheetClient := sheet.NewClient(ctx, cfg)
	tequila := flights.NewClient(cfg)
	notifier := notify.NewNotifier(cfg, sheetClient, email.NewService(cfg), sms.NewSender(cfg))
	checker := jobs.NewDealChecker(cfg, sheetClient, flights.NewResolver(tequila), flights.NewFinder(tequila, cfg), notifier)
	if database != nil {
		checker.SetHistory(database)
	}

	if !cfg.IsDaemon() {
		run, err := checker.RunOnce(ctx)
		if err != nil {
			if database != nil {
				database.Close()
			}
			log.Fatalf("Deal check failed: %v", err)
		}
		log.Printf("Deal check complete: %d offers found, %d notifications sent", run.OffersFound, run.NotificationsSent)
		return
	}

	srv := server.New(cfg)
	deps := server.Deps{Trigger: checker}
	if database != nil {
		deps.History = database
	}

	if cfg.IsAuthEnabled() {
		auth, err := middleware.NewBearerAuth(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			log.Fatalf("Failed to initialize OIDC auth: %v", err)
		}
		deps.Auth = auth
	} else {
		log.Println("API authentication is disabled. Set OIDC_ISSUER to enable.")
	}
	srv.RegisterRoutes(ctx, deps)

	go checker.Start(ctx)

	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down server...")
	if err := srv.Shutdown(); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
