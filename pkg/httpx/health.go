package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Pinger is satisfied by *sql.DB and by the Redis client adapter.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RegisterHealthCheck registers /health. Every dependency must answer
// within two seconds for the service to report healthy.
func RegisterHealthCheck(router *mux.Router, service string, deps map[string]Pinger) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := make(map[string]string, len(deps))
		healthy := true
		for name, dep := range deps {
			if err := dep.PingContext(ctx); err != nil {
				status[name] = "unavailable"
				healthy = false
				continue
			}
			status[name] = "ok"
		}

		if !healthy {
			JSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "dependency unavailable",
				Data:    status,
			})
			return
		}
		OK(w, http.StatusOK, service+" is healthy", status)
	}).Methods("GET")
}

// RegisterSwaggerDocs registers Swagger documentation routes
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}
