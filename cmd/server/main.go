package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/folio/internal/config"
	"github.com/folio/internal/db"
	"github.com/folio/internal/logger"
	"github.com/folio/internal/router"
	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

// run 返回后所有 defer 都已执行，数据库与日志得以正常关闭。
func run() error {
	cfg := config.Load()

	l, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer l.Sync()

	gin.SetMode(cfg.GinMode)

	// 初始化数据库并执行迁移
	store, err := db.Open(context.Background(), cfg.DatabasePath,
		db.WithGormLogger(logger.NewGorm(l, gormlogger.Warn)),
		db.WithMigrationLogger(logger.NewMigration(l)),
	)
	if err != nil {
		l.Error("failed to initialize database", zap.Error(err))
		return err
	}
	defer store.Close()

	if removed, err := service.NewSessionService(store.Gorm()).Cleanup(); err != nil {
		l.Warn("session cleanup failed", zap.Error(err))
	} else if removed > 0 {
		l.Info("expired sessions removed", zap.Int64("count", removed))
	}

	r := router.SetupRouter(router.Deps{DB: store.Gorm(), Config: cfg, Logger: l})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	l.Info("server starting", zap.String("addr", cfg.ListenAddr), zap.String("env", cfg.Env))
	if err := serve(srv, quit, shutdownTimeout, l); err != nil {
		l.Error("server stopped with error", zap.Error(err))
		return err
	}
	l.Info("server stopped")
	return nil
}

// serve 运行 srv 直到监听失败或收到退出信号；收到信号时在 timeout 内优雅关闭。
func serve(srv *http.Server, quit <-chan os.Signal, timeout time.Duration, l *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		l.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
