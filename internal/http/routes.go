package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/target/prreview-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Dispatcher   *service.DispatcherService
	Jobs         *service.JobService
	HealthChecks map[string]HealthCheck
	// HealthTimeout bounds all dependency checks; zero selects 2s.
	HealthTimeout time.Duration
	Logger        *slog.Logger
}

// NewRouter creates the API router wrapped in recovery and request logging.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	reviews := &ReviewHandlers{Dispatcher: services.Dispatcher, Jobs: services.Jobs}
	health := &HealthHandlers{Checks: services.HealthChecks, Timeout: services.HealthTimeout}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", health.Health)
	mux.HandleFunc("POST /analyze-pr", reviews.AnalyzePR)
	mux.HandleFunc("GET /task-status/{id}", reviews.TaskStatus)
	mux.HandleFunc("GET /task-result/{id}", reviews.TaskResult)
	mux.HandleFunc("GET /tasks", reviews.ListTasks)
	mux.HandleFunc("GET /stats", reviews.Stats)

	return Recover(logger)(Logging(logger)(mux))
}
