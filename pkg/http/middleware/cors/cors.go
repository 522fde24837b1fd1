package cors

import (
	"net/http"

	chicors "github.com/go-chi/cors"
	"github.com/spf13/viper"
)

// NewCorsMiddleware builds the CORS handler from server.http.cors.*.
func NewCorsMiddleware() func(next http.Handler) http.Handler {
	c := chicors.New(chicors.Options{
		AllowedOrigins:   viper.GetStringSlice("server.http.cors.allowed_origins"),
		AllowedMethods:   viper.GetStringSlice("server.http.cors.allowed_methods"),
		AllowedHeaders:   viper.GetStringSlice("server.http.cors.allowed_headers"),
		ExposedHeaders:   viper.GetStringSlice("server.http.cors.exposed_headers"),
		AllowCredentials: viper.GetBool("server.http.cors.allow_credentials"),
		MaxAge:           viper.GetInt("server.http.cors.max_age"),
	})

	return c.Handler
}
