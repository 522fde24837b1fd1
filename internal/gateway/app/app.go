package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/corray333/backend-labs/microshop/internal/gateway/proxy"
	httptransport "github.com/corray333/backend-labs/microshop/internal/gateway/transport/http"
	"github.com/corray333/backend-labs/microshop/internal/otel"
	"github.com/spf13/viper"
)

// App represents the API gateway.
type App struct {
	transport      *httptransport.HTTPTransport
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel("gateway")

	routes := httptransport.RoutesFromConfig()
	for _, route := range routes {
		if route.BaseURL == "" {
			panic("base url for route " + route.Name + " is not set in config")
		}
	}

	forwarder := proxy.NewForwarder(viper.GetDuration("gateway.timeout"))

	transport := httptransport.NewHTTPTransport(forwarder, routes)
	transport.RegisterRoutes()

	return &App{
		transport:      transport,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("Starting HTTP server", "port", viper.GetString("server.http.port"))
		if err := a.transport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			stop <- syscall.SIGTERM
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("server.http.shutdown_timeout"))
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Otel trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
