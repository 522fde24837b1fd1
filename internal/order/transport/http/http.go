package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/microshop/internal/order/service/models/order"
	createorder "github.com/corray333/backend-labs/microshop/internal/order/transport/http/create_order"
	listorders "github.com/corray333/backend-labs/microshop/internal/order/transport/http/list_orders"
	"github.com/corray333/backend-labs/microshop/internal/order/worker/connector"
	"github.com/corray333/backend-labs/microshop/pkg/http/middleware/cors"
	"github.com/corray333/backend-labs/microshop/pkg/http/middleware/trace"
	"github.com/corray333/backend-labs/microshop/pkg/http/render"
	"github.com/corray333/backend-labs/microshop/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/viper"
)

type service interface {
	ListOrders(ctx context.Context) ([]order.Order, error)
	CreateOrder(ctx context.Context, o order.Order) (order.Order, error)
}

// brokerState reports the broker connection state for /health.
type brokerState interface {
	State() connector.State
}

type healthResponse struct {
	Status string `json:"status"`
	Broker string `json:"broker"`
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service service
	broker  brokerState
}

func NewHTTPTransport(service service, broker brokerState) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:  server,
		router:  router,
		service: service,
		broker:  broker,
	}
}

// Handler exposes the router, mainly for tests.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/orders", h.listOrders)
	h.router.Post("/orders", h.createOrder)
	h.router.Get("/health", h.health)
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.service)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.service)
}

func (h *HTTPTransport) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, http.StatusOK, healthResponse{
		Status: "ok",
		Broker: h.broker.State().String(),
	})
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(trace.NewTraceMiddleware("order-svc"))
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(cors.NewCorsMiddleware())

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
