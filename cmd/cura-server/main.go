package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cura/cura/internal/config"
	"github.com/cura/cura/internal/domain/billing"
	"github.com/cura/cura/internal/domain/directory"
	"github.com/cura/cura/internal/domain/insurance"
	"github.com/cura/cura/internal/domain/pricing"
	"github.com/cura/cura/internal/domain/reports"
	"github.com/cura/cura/internal/platform/auth"
	"github.com/cura/cura/internal/platform/blobstore"
	"github.com/cura/cura/internal/platform/db"
	"github.com/cura/cura/internal/platform/middleware"
	"github.com/cura/cura/internal/platform/notification"
	"github.com/cura/cura/internal/platform/paymentgw"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cura-server",
		Short: "Practice management billing API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tenantCmd())
	rootCmd.AddCommand(seedPricingCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the billing API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			fmt.Printf("Running migrations on schema: %s\n", schema)

			count, err := migrator.Up(ctx, schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("schema", "tenant_default", "Target schema for migrations")
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx, schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("Migration status for schema: %s\n", schema)
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("schema", "tenant_default", "Target schema for migrations")
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func tenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new tenant schema and run migrations against it",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			fmt.Printf("Creating tenant schema: tenant_%s\n", name)
			if err := db.CreateTenantSchema(ctx, pool, name, cfg.MigrationsDir); err != nil {
				return err
			}
			fmt.Println("Tenant created successfully.")
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Tenant identifier (alphanumeric)")

	cmd.AddCommand(createCmd)
	return cmd
}

func seedPricingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-pricing",
		Short: "Seed the pricing catalogs with the canonical defaults (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")

			logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if _, err := pool.Exec(ctx, fmt.Sprintf("SET search_path TO %s, public", schema)); err != nil {
				return fmt.Errorf("set search_path: %w", err)
			}

			svc := pricing.NewService(
				pricing.NewDoctorFeeRepoPG(pool),
				pricing.NewLabTestRepoPG(pool),
				pricing.NewImagingRepoPG(pool),
				logger,
			)
			result, err := svc.SeedDefaults(ctx)
			if err != nil {
				return fmt.Errorf("seeding pricing catalogs: %w", err)
			}
			fmt.Printf("Seeded pricing catalogs: %d inserted, %d already existed.\n",
				result.Inserted, result.AlreadyExisted)
			return nil
		},
	}
	cmd.Flags().String("schema", "tenant_default", "Target schema")
	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-Tenant-Subdomain"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.AuthSigningKey),
		}))
	}

	e.Use(db.TenantMiddleware(pool, cfg.DefaultTenant))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	api := e.Group("/api")

	// Payment gateway: Stripe when configured, otherwise online payments
	// are refused with a clear error instead of failing mid-flow.
	var gateway paymentgw.Gateway
	if cfg.PaymentsEnabled() {
		gateway = paymentgw.NewStripeGateway(cfg.StripeSecretKey)
		logger.Info().Msg("stripe payment gateway enabled")
	} else {
		logger.Warn().Msg("STRIPE_SECRET_KEY not set; online payments are disabled")
	}

	docs := blobstore.NewMemoryStore()
	notifier := notification.NewDispatcher(
		&notification.LogEmailSender{Logger: logger},
		&notification.LogSMSSender{Logger: logger},
		notification.NewTemplateEngine(),
	)

	runTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.RunInTx(ctx, pool, fn)
	}

	// Directory (reference data)
	patientRepo := directory.NewPatientRepoPG(pool)
	userRepo := directory.NewUserRepoPG(pool)
	settingsRepo := directory.NewSettingsRepoPG(pool)
	directoryHandler := directory.NewHandler(patientRepo, userRepo, settingsRepo)
	directoryHandler.RegisterRoutes(api)

	// Billing domain
	invoiceRepo := billing.NewInvoiceRepoPG(pool)
	paymentRepo := billing.NewPaymentRepoPG(pool)
	billingSvc := billing.NewService(invoiceRepo, paymentRepo, gateway, docs, notifier, runTx, billing.Config{
		Currency:   cfg.DefaultCurrency,
		DueDays:    cfg.InvoiceDueDays,
		ClinicName: cfg.ClinicName,
	}).WithBranding(settingsRepo)
	billingHandler := billing.NewHandler(billingSvc)
	billingHandler.RegisterRoutes(api)

	// Insurance claim workflow
	insuranceSvc := insurance.NewService(invoiceRepo, paymentRepo, runTx, logger)
	insuranceHandler := insurance.NewHandler(insuranceSvc)
	insuranceHandler.RegisterRoutes(api)

	// Pricing catalogs
	feeRepo := pricing.NewDoctorFeeRepoPG(pool)
	pricingSvc := pricing.NewService(feeRepo,
		pricing.NewLabTestRepoPG(pool),
		pricing.NewImagingRepoPG(pool),
		logger)
	pricingHandler := pricing.NewHandler(pricingSvc)
	pricingHandler.RegisterRoutes(api)

	// Revenue reporting and the overdue sweep
	reportsSvc := reports.NewService(reports.NewRepoPG(pool), feeRepo, userRepo, reports.Config{
		ClinicName: cfg.ClinicName,
		Currency:   cfg.DefaultCurrency,
	}, logger).WithBranding(settingsRepo)
	reportsHandler := reports.NewHandler(reportsSvc)
	reportsHandler.RegisterRoutes(api)

	// Server lifecycle
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server listening")
		if err := e.StartServer(srv); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	return nil
}
