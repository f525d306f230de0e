package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"retailbilling-backend/internal/config"
	"retailbilling-backend/internal/db"
	"retailbilling-backend/internal/handler"
	"retailbilling-backend/internal/logging"
	"retailbilling-backend/internal/repository"
	"retailbilling-backend/internal/server"
	"retailbilling-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	logger := logging.New(os.Stdout, cfg.Env, cfg.LogLevel)
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	if cfg.RunMigrations {
		if err := pg.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", "err", err)
			os.Exit(1)
		}
	}

	// repositories
	userRepo := repository.UserRepository{DB: pg}
	productRepo := repository.ProductRepository{DB: pg}
	billRepo := repository.BillRepository{DB: pg}
	settingsRepo := repository.SettingsRepository{DB: pg}
	reportRepo := repository.ReportRepository{DB: pg}

	// services
	productSvc := service.ProductService{Products: productRepo, Logger: logger}
	billSvc := service.BillService{
		Tx:       pg,
		Users:    userRepo,
		Bills:    billRepo,
		Catalog:  productSvc,
		Logger:   logger,
		Prefix:   cfg.BillNumberPrefix,
		Discount: cfg.FixedDiscountPercent,
	}
	settingsSvc := service.SettingsService{Settings: settingsRepo}
	authSvc := service.AuthService{Config: cfg, Users: userRepo, Logger: logger}
	userSvc := service.UserService{Users: userRepo, Logger: logger}
	reportSvc := service.ReportService{Reports: reportRepo}

	if cfg.IsDevelopment() {
		if err := productRepo.SeedDefaults(ctx); err != nil {
			logger.Warn("failed to seed demo catalog", "err", err)
		}
	}

	if err := userSvc.EnsureOwner(ctx, cfg.BootstrapOwner); err != nil {
		logger.Error("failed to bootstrap owner account", "err", err)
		os.Exit(1)
	}

	// handlers
	router := server.NewRouter(cfg, logger, server.Handlers{
		Home:          handler.HomeHandler{ShopName: "Retail Billing"},
		Health:        handler.HealthHandler{DB: pg},
		Auth:          handler.AuthHandler{Service: authSvc, Logger: logger},
		Docs:          handler.DocsHandler{OpenAPIPath: cfg.OpenAPIPath},
		Bills:         handler.BillHandler{Service: billSvc, Logger: logger},
		BillExport:    handler.BillExportHandler{Service: billSvc, Logger: logger},
		Products:      handler.ProductHandler{Service: productSvc, Logger: logger},
		ProductsAdmin: handler.ProductAdminHandler{Service: productSvc, Logger: logger},
		Settings:      handler.SettingsHandler{Service: settingsSvc, Logger: logger},
		Users:         handler.UserHandler{Service: userSvc, Logger: logger},
		Reports:       handler.ReportHandler{Service: reportSvc, Logger: logger},
	})

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
