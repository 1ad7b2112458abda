package cmd

import (
	"context"
	"net/http"

	"tms/api"
	apicompany "tms/api/company"
	"tms/api/health"
	apishipmentorder "tms/api/shipmentorder"
	"tms/config"
	"tms/pkg/logger"

	"go.uber.org/zap"
)

// App HTTP server process
type App struct {
	config    *config.Config
	container *Container
	server    *http.Server
}

// NewApp Wire the HTTP server from configuration
func NewApp(cfg *config.Config) (*App, error) {
	container, err := NewContainer(cfg)
	if err != nil {
		return nil, err
	}

	var healthDB interface{}
	if sqlDB, err := container.Writer().DB(); err == nil {
		healthDB = sqlDB
	}

	router := api.NewRouter(
		cfg,
		health.NewController(cfg, healthDB),
		apicompany.NewController(container.CompanyService),
		apishipmentorder.NewController(container.ShipmentOrderService),
	)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &App{
		config:    cfg,
		container: container,
		server:    server,
	}, nil
}

// Run Serve until ctx is cancelled, then drain within the shutdown window
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	return a.server.Shutdown(shutdownCtx)
}
