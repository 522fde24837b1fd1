package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/microshop/internal/gateway/proxy"
	"github.com/corray333/backend-labs/microshop/pkg/http/middleware/cors"
	"github.com/corray333/backend-labs/microshop/pkg/http/middleware/trace"
	"github.com/corray333/backend-labs/microshop/pkg/http/render"
	"github.com/corray333/backend-labs/microshop/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/viper"
)

const rootMessage = "API Gateway is running!"

type forwarder interface {
	Handler(route proxy.Route) http.HandlerFunc
}

type HTTPTransport struct {
	server    *http.Server
	router    *chi.Mux
	forwarder forwarder
	routes    []proxy.Route
}

func NewHTTPTransport(forwarder forwarder, routes []proxy.Route) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:    server,
		router:    router,
		forwarder: forwarder,
		routes:    routes,
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

// RegisterRoutes registers the root route and one GET route per proxy route.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/", h.root)
	for _, route := range h.routes {
		h.router.Get(route.Path, h.forwarder.Handler(route))
	}
}

func (h *HTTPTransport) root(w http.ResponseWriter, r *http.Request) {
	render.Text(w, r, http.StatusOK, rootMessage)
}

// RoutesFromConfig builds the static route table.
func RoutesFromConfig() []proxy.Route {
	return []proxy.Route{
		{
			Name:           "products",
			Path:           "/products",
			BaseURL:        viper.GetString("services.products.url"),
			UpstreamPath:   viper.GetString("services.products.path"),
			FailureMessage: "Error connecting to Product Service",
		},
		{
			Name:           "orders",
			Path:           "/orders",
			BaseURL:        viper.GetString("services.orders.url"),
			UpstreamPath:   viper.GetString("services.orders.path"),
			FailureMessage: "Error connecting to Order Service",
		},
	}
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(trace.NewTraceMiddleware("gateway"))
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
