package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"toyWholesale/auth"
	"toyWholesale/config"
	"toyWholesale/handlers"
	"toyWholesale/logger"
	"toyWholesale/migrations"
	"toyWholesale/models"
	"toyWholesale/repository"
	"toyWholesale/services"
	"toyWholesale/storage"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func initDB(cfg config.DatabaseConfig, log *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)
	if cfg.Driver == "sqlite3" {
		// sqlite serializes writers anyway
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if err = migrations.Up(db, cfg.Driver, log); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("db connected", zap.String("driver", cfg.Driver))
	return db, nil
}

func initRedis(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	log.Info("redis connected", zap.String("addr", cfg.Addr()))
	return rdb, nil
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	db, err := initDB(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	rdb, err := initRedis(ctx, cfg.Redis, log)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()

	uR, err := repository.NewUserRepository(db, log)
	if err != nil {
		return err
	}
	sR, err := repository.NewSessionRepository(ctx, rdb, cfg.Auth.SessionTTL, log)
	if err != nil {
		return err
	}
	pR, err := repository.NewProductRepository(db, log)
	if err != nil {
		return err
	}
	cR, err := repository.NewCategoryRepository(db, log)
	if err != nil {
		return err
	}
	cartR, err := repository.NewCartRepository(ctx, rdb, log)
	if err != nil {
		return err
	}
	oR, err := repository.NewOrderRepository(db, log)
	if err != nil {
		return err
	}
	chR, err := repository.NewChatRepository(db, log)
	if err != nil {
		return err
	}

	policy, err := models.ParseStatusPolicy(cfg.Orders.StatusPolicy)
	if err != nil {
		return err
	}
	files, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.App.Name)

	us := services.NewUserService(uR, sR, tokens, files, log)
	if err = us.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return fmt.Errorf("admin account: %w", err)
	}

	hp := handlers.HandlerParams{
		UsrService:     us,
		PrdService:     services.NewProductService(pR, files, log),
		CrtService:     services.NewCartService(pR, cartR, log),
		CatsService:    services.NewCategoryService(cR),
		OrdService:     services.NewOrderService(uR, pR, cartR, oR, chR, policy, log),
		ChtService:     services.NewChatService(chR, log),
		StatsService:   services.NewStatsService(uR, oR),
		Logger:         log,
		LoginRate:      cfg.Auth.LoginRate,
		LoginBurst:     cfg.Auth.LoginBurst,
		CookieSecure:   cfg.Auth.CookieSecure,
		TokenTTL:       cfg.Auth.TokenTTL,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		HealthChecks: map[string]func(context.Context) error{
			"database": db.PingContext,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	}
	opts := handlers.RouterOptions{RequestTimeout: cfg.App.RequestTimeout}
	if local, ok := files.(*storage.LocalStorage); ok {
		opts.UploadsDir = local.Dir()
		opts.UploadsPrefix = cfg.Storage.PublicPrefix
	}
	router := handlers.NewRouter(handlers.NewHandler(hp), opts)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.App.RequestTimeout + 5*time.Second,
		WriteTimeout:      cfg.App.RequestTimeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
