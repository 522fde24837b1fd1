package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/corray333/backend-labs/microshop/pkg/http/render"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// ErrUpstreamStatus is returned when a backend answers with a non-2xx status.
var ErrUpstreamStatus = errors.New("upstream returned non-success status")

// Route maps a gateway path onto a backend endpoint.
type Route struct {
	// Name is used in logs only.
	Name string
	// Path is the gateway path the route is mounted on.
	Path string
	// BaseURL is the backend base URL, e.g. http://product-service:4000.
	BaseURL string
	// UpstreamPath is appended to BaseURL. Empty means Path.
	UpstreamPath string
	// FailureMessage is the plain-text body sent when the backend fails.
	FailureMessage string
}

// Target returns the absolute upstream URL.
func (r Route) Target() string {
	upstreamPath := r.UpstreamPath
	if upstreamPath == "" {
		upstreamPath = r.Path
	}

	return strings.TrimRight(r.BaseURL, "/") + upstreamPath
}

// Forwarder relays GET requests to backends.
type Forwarder struct {
	client *http.Client
}

// NewForwarder creates a Forwarder whose outbound calls give up after timeout.
func NewForwarder(timeout time.Duration) *Forwarder {
	return &Forwarder{
		client: &http.Client{Timeout: timeout},
	}
}

// Handler returns the handler serving route. The upstream body is read in
// full before anything is written, so a backend failing mid-body still
// yields the route's failure reply.
func (f *Forwarder) Handler(route Route) http.HandlerFunc {
	target := route.Target()

	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := f.get(r.Context(), target)
		if err != nil {
			slog.ErrorContext(r.Context(), "Error forwarding request",
				"route", route.Name,
				"target", target,
				"error", err,
			)
			render.Text(w, r, http.StatusInternalServerError, route.FailureMessage)

			return
		}

		contentType := resp.contentType
		if contentType == "" {
			contentType = "application/json"
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(resp.status)

		if _, err := w.Write(resp.body); err != nil {
			slog.ErrorContext(r.Context(), "Error writing response", "route", route.Name, "error", err)
		}
	}
}

// upstreamResponse is a fully read 2xx backend answer.
type upstreamResponse struct {
	status      int
	contentType string
	body        []byte
}

// get issues the outbound GET and reads the whole body within the client timeout.
func (f *Forwarder) get(ctx context.Context, target string) (upstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return upstreamResponse{}, fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		req.Header.Set(middleware.RequestIDHeader, reqID)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := f.client.Do(req)
	if err != nil {
		return upstreamResponse{}, fmt.Errorf("failed to call upstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)

		return upstreamResponse{}, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return upstreamResponse{}, fmt.Errorf("failed to read upstream body: %w", err)
	}

	return upstreamResponse{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}, nil
}
