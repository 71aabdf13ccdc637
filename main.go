package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/creditmitra/loanflow/config"
	mysqldb "github.com/creditmitra/loanflow/infra/mysql"
	redisdb "github.com/creditmitra/loanflow/infra/redis"
	"github.com/creditmitra/loanflow/internal/domain"
	"github.com/creditmitra/loanflow/internal/model"
	cloudinarypkg "github.com/creditmitra/loanflow/pkg/cloudinary"
	ratelimiter "github.com/creditmitra/loanflow/pkg/rate-limiter"
	"github.com/creditmitra/loanflow/pkg/telemetry"
	"github.com/creditmitra/loanflow/presenter"
	"github.com/creditmitra/loanflow/router"
)

func main() {
	slog.Info("Starting application setup...")

	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		slog.Error("No .env file found, using system environment variables", "error", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	tel, err := telemetry.New(ctx, cfg)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize monitoring: %v", err))
	}

	db, err := mysqldb.InitializeDatabase()
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.SHUTDOWN_TIMEOUT)
		defer cancelShutdown()

		zap.L().Info("Closing MySQL Connection...")
		if err := mysqldb.Close(db, shutdownCtx); err != nil {
			zap.L().Error("Error disconnecting from MySQL", zap.Error(err))
		} else {
			zap.L().Info("Disconnected from MySQL.")
		}

		zap.L().Info("Shutting down monitoring...")
		if err := tel.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("Error during monitoring shutdown", zap.Error(err))
		} else {
			zap.L().Info("Monitoring shutdown complete.")
		}
	}()

	if err := model.AutoMigrate(db); err != nil {
		slog.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migration completed!")

	SeedCustomers(db, cfg.CUSTOMERS_FILE)

	if err := mysqldb.Ping(db, ctx); err != nil {
		slog.Error("Database ping failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connection successful!")

	// Redis backs the rate limiter and, optionally, the session store.
	var redisClient *redis.Client
	redisClient, err = redisdb.NewRedis(cfg)
	if err != nil {
		if cfg.SESSION_BACKEND == "redis" {
			slog.Error("Failed to connect to Redis for session store", "error", err)
			os.Exit(1)
		}
		slog.Error("Redis unavailable, continuing without rate limiting", "error", err)
		redisClient = nil
	}

	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				zap.L().Error("Error closing Redis connection", zap.Error(err))
			}
		}
	}()

	var cld *cloudinary.Cloudinary
	if cfg.UPLOAD_BACKEND == "cloudinary" {
		cld, err = cloudinarypkg.InitCloudinary(cfg)
		if err != nil {
			slog.Error("Failed to initialize Cloudinary service", "error", err)
			os.Exit(1)
		}
	}

	var limiter *ratelimiter.RateLimiter
	if redisClient != nil {
		limiter = ratelimiter.NewRateLimiter(redisClient, 10, 20, 5*time.Minute)
	}

	presenter := presenter.NewPresenter(db, redisClient, cld, tel, cfg)
	app := router.NewRouter(presenter, db, tel, cfg, limiter)

	addr := ":" + cfg.SERVER_PORT

	listenErr := make(chan error, 1)

	go func() {
		zap.L().Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		} else {
			listenErr <- nil
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		zap.L().Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-listenErr:
		if err != nil {
			zap.L().Error("Server listen error", zap.Error(err))
			os.Exit(1)
		}
	}

	zap.L().Info("Starting graceful shutdown...")
	if err := app.ShutdownWithTimeout(cfg.SHUTDOWN_TIMEOUT); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			zap.L().Warn("Server shutdown timed out", zap.Duration("timeout", cfg.SHUTDOWN_TIMEOUT))
		} else {
			zap.L().Error("Server shutdown error", zap.Error(err))
		}
	} else {
		zap.L().Info("Server gracefully stopped.")
	}

	zap.L().Info("Application shutdown complete.")
}

type seedCustomer struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Phone            string             `json:"phone"`
	Address          string             `json:"address"`
	PreApprovedLimit int64              `json:"pre_approved_limit"`
	CreditScore      int                `json:"credit_score"`
	SalaryInfo       *domain.SalaryInfo `json:"salary_info"`
}

// SeedCustomers loads the customer master file into MySQL. Existing rows are
// left untouched so reseeding on restart is safe.
func SeedCustomers(db *gorm.DB, path string) {
	slog.Info("Seeding customer master data...", "file", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Failed to read customer master file", "file", path, "error", err)
		os.Exit(1)
	}

	var seeds []seedCustomer
	if err := json.Unmarshal(raw, &seeds); err != nil {
		slog.Error("Failed to parse customer master file", "file", path, "error", err)
		os.Exit(1)
	}

	customers := make([]model.Customer, 0, len(seeds))
	for _, seed := range seeds {
		customers = append(customers, model.CustomerFromEntity(&domain.Customer{
			ID:               seed.ID,
			Name:             seed.Name,
			Phone:            seed.Phone,
			Address:          seed.Address,
			PreApprovedLimit: seed.PreApprovedLimit,
			CreditScore:      seed.CreditScore,
			SalaryInfo:       seed.SalaryInfo,
		}))
	}

	if len(customers) == 0 {
		slog.Info("Customer master file is empty, nothing to seed")
		return
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&customers).Error; err != nil {
		slog.Error("Failed to seed customers", "error", err)
		os.Exit(1)
	}

	slog.Info("Customer master data seeded successfully.", "count", len(customers))
}
