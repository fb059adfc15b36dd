package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Metrics provides observability for the visitor register.
// Tracks transitions, register number collisions and orchestrator durations.
type Metrics struct {
	VisitorsCreated      prometheus.Counter
	VisitorsCheckedOut   prometheus.Counter
	VisitorsVoided       prometheus.Counter
	RegisterNoCollisions prometheus.Counter
	StaleWrites          prometheus.Counter
	CacheHits            prometheus.Counter
	CacheMisses          prometheus.Counter
	OperationDuration    *prometheus.HistogramVec
}

// New creates a Metrics instance registered with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers with reg so tests can use an isolated registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		VisitorsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitorreg_visitors_created_total",
			Help: "Total number of visitors checked in",
		}),
		VisitorsCheckedOut: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitorreg_visitors_checked_out_total",
			Help: "Total number of visits closed by checkout",
		}),
		VisitorsVoided: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitorreg_visitors_voided_total",
			Help: "Total number of visits voided",
		}),
		RegisterNoCollisions: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitorreg_register_no_collisions_total",
			Help: "Register number allocations rejected by the uniqueness constraint",
		}),
		StaleWrites: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitorreg_stale_writes_total",
			Help: "Updates rejected because the visitor version changed concurrently",
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitorreg_visitor_cache_hits_total",
			Help: "Visitor detail lookups served from cache",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitorreg_visitor_cache_misses_total",
			Help: "Visitor detail lookups that went to the store",
		}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "visitorreg_visitor_operation_duration_seconds",
			Help:    "Duration of visitor register operations",
			Buckets: durationBuckets,
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementCreated()             { m.VisitorsCreated.Inc() }
func (m *Metrics) IncrementCheckedOut()          { m.VisitorsCheckedOut.Inc() }
func (m *Metrics) IncrementVoided()              { m.VisitorsVoided.Inc() }
func (m *Metrics) IncrementRegisterNoCollision() { m.RegisterNoCollisions.Inc() }
func (m *Metrics) IncrementStaleWrite()          { m.StaleWrites.Inc() }
func (m *Metrics) IncrementCacheHit()            { m.CacheHits.Inc() }
func (m *Metrics) IncrementCacheMiss()           { m.CacheMisses.Inc() }

// ObserveOperation records the duration of one operation.
// Call with time.Now() taken at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
