package routes

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"biorreator-telemetry/internal/controller"
)

// SetupRouter registers the dashboard query routes. authMiddleware guards the
// telemetry endpoints; the health check stays open for the load balancer.
func SetupRouter(ctrl *controller.TelemetryController, authMiddleware func(http.Handler) http.Handler) *mux.Router {
	router := mux.NewRouter()

	router.Handle("/telemetry/series",
		authMiddleware(http.HandlerFunc(ctrl.HandleTimeSeries))).Methods(http.MethodGet)
	router.Handle("/telemetry/latest",
		authMiddleware(http.HandlerFunc(ctrl.HandleLatestValues))).Methods(http.MethodGet)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}).Methods(http.MethodGet)

	return router
}
