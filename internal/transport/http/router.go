package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	audithandler "visitorreg/internal/audit/handler"
	"visitorreg/internal/platform/health"
	"visitorreg/internal/platform/metrics"
	visitorhandler "visitorreg/internal/visitor/handler"
	"visitorreg/pkg/platform/middleware/metadata"
	"visitorreg/pkg/platform/middleware/operator"
	"visitorreg/pkg/platform/middleware/request"
	"visitorreg/pkg/platform/middleware/requesttime"
)

const maxBodyBytes = 64 << 10

// Dependencies are the route groups and cross-cutting pieces of the API.
// Registry and Health may be nil.
type Dependencies struct {
	Logger         *slog.Logger
	Visitors       *visitorhandler.Handler
	Audit          *audithandler.Handler
	Health         *health.Handler
	Registry       *prometheus.Registry
	RequestMetrics *request.Metrics
	RequestTimeout time.Duration
}

// NewRouter wires every public endpoint behind the shared middleware chain.
func NewRouter(d Dependencies) http.Handler {
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(d.Logger))
	r.Use(request.Latency(d.RequestMetrics))

	if d.Health != nil {
		d.Health.Register(r)
	}
	if d.Registry != nil {
		r.Handle("/metrics", metrics.Handler(d.Registry))
	}

	r.Group(func(r chi.Router) {
		r.Use(operator.Middleware(d.Logger))
		r.Use(request.Timeout(timeout))
		r.Use(request.BodyLimit(maxBodyBytes))
		r.Use(request.ContentTypeJSON)

		d.Visitors.Register(r)
		d.Audit.Register(r)
	})
	return r
}
