package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestCorsMiddlewareUsesConfiguredOrigins(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("server.http.cors.allowed_origins", []string{"http://shop.local"})
	viper.Set("server.http.cors.allowed_methods", []string{"GET", "POST"})
	viper.Set("server.http.cors.exposed_headers", []string{"X-Request-Id"})

	handler := NewCorsMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	allowed := httptest.NewRequest(http.MethodGet, "/orders", nil)
	allowed.Header.Set("Origin", "http://shop.local")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, allowed)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://shop.local", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "X-Request-Id", rec.Header().Get("Access-Control-Expose-Headers"))

	foreign := httptest.NewRequest(http.MethodGet, "/orders", nil)
	foreign.Header.Set("Origin", "http://evil.local")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, foreign)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
