// Package web assembles the HTTP API.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	attendance "axiapac.com/backoffice/attendance/web/handlers"
	clients "axiapac.com/backoffice/clients/web/handlers"
	"axiapac.com/backoffice/config"
	"axiapac.com/backoffice/core"
	"axiapac.com/backoffice/infrastructure/communication"
	"axiapac.com/backoffice/infrastructure/events"
	"axiapac.com/backoffice/web/middlewares"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Dm        *core.DatabaseManager
	JWTSecret []byte
	Location  *time.Location
	Publisher events.Publisher
	Notifier  communication.Notifier
	Logger    *slog.Logger
}

func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := gin.New()
	r.Use(middlewares.RequestID(), middlewares.RequestLogger(deps.Logger), gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	protected := r.Group("/api/v1.0")
	protected.Use(middlewares.Authentication(deps.JWTSecret))
	{
		attendance.Register(protected, deps.Dm, attendance.Options{
			Location:  deps.Location,
			Publisher: deps.Publisher,
			Logger:    deps.Logger,
		})
		clients.Register(protected, deps.Dm, deps.Notifier, deps.Logger)
	}

	return r
}

// Serve runs the server until ctx is cancelled, then drains connections.
func Serve(ctx context.Context, cfg config.ServerConfig, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
