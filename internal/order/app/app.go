package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/corray333/backend-labs/microshop/internal/order/dal/postgres"
	"github.com/corray333/backend-labs/microshop/internal/order/dal/rabbitmq"
	orderrepo "github.com/corray333/backend-labs/microshop/internal/order/dal/repositories/order/postgres"
	"github.com/corray333/backend-labs/microshop/internal/order/service/services/ordersvc"
	"github.com/corray333/backend-labs/microshop/internal/order/transport/consumer"
	httptransport "github.com/corray333/backend-labs/microshop/internal/order/transport/http"
	"github.com/corray333/backend-labs/microshop/internal/order/worker/connector"
	"github.com/corray333/backend-labs/microshop/internal/otel"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// App represents the order service.
type App struct {
	orderSvc       *ordersvc.OrderService
	transport      *httptransport.HTTPTransport
	brokerWorker   *connector.Worker[*rabbitmq.Client]
	postgresClient *postgres.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel("order-svc")
	postgresClient := postgres.MustNewClient()

	orderRepository := orderrepo.NewPostgresOrderRepository(postgresClient)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithOrderRepository(orderRepository),
	)

	consumerTransp := consumer.NewConsumer(orderSvc, consumer.ConfigFromViper())

	brokerURL := os.ExpandEnv(viper.GetString("rabbitmq.url"))
	brokerWorker := connector.NewWorker[*rabbitmq.Client](
		func(ctx context.Context) (*rabbitmq.Client, error) {
			return rabbitmq.Dial(ctx, brokerURL)
		},
		consumerTransp.Serve,
		connector.BackoffFromViper(),
	)

	transport := httptransport.NewHTTPTransport(orderSvc, brokerWorker)
	transport.RegisterRoutes()

	return &App{
		orderSvc:       orderSvc,
		transport:      transport,
		brokerWorker:   brokerWorker,
		postgresClient: postgresClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting HTTP server", "port", viper.GetString("server.http.port"))
		if err := a.transport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)

			return err
		}

		return nil
	})

	g.Go(func() error {
		return a.brokerWorker.Run(gctx)
	})

	select {
	case <-stop:
		slog.Info("Shutdown signal received")
	case <-gctx.Done():
		slog.Warn("Component stopped unexpectedly, shutting down")
	}

	a.gracefulShutdown(cancel, g)
}

// gracefulShutdown drains HTTP first so in-flight requests finish against a live pool,
// then stops the broker worker, then closes PostgreSQL and OpenTelemetry.
func (a *App) gracefulShutdown(cancel context.CancelFunc, g *errgroup.Group) {
	ctx, cancelTimeout := context.WithTimeout(context.Background(), viper.GetDuration("server.http.shutdown_timeout"))
	defer cancelTimeout()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	cancel()
	if err := g.Wait(); err != nil {
		slog.Error("Application component error", "error", err)
	}
	slog.Info("Broker worker stopped")

	a.postgresClient.Close()
	slog.Info("Postgres connection closed")

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Otel trace provider shutdown error", "error", err)
	} else {
		slog.Info("Otel trace provider shut down gracefully")
	}

	select {
	case <-ctx.Done():
		slog.Warn("Shutdown timeout exceeded")
	default:
		slog.Info("Application shutdown complete")
	}
}
