package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// LoginCounter counts tenant login attempts by result: success, failure, invalid
	LoginCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenantgate_login_total",
			Help: "Total number of tenant login attempts",
		},
		[]string{"result"},
	)

	// MetaLoginCounter counts meta-admin login attempts by result
	MetaLoginCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenantgate_meta_login_total",
			Help: "Total number of meta-admin login attempts",
		},
		[]string{"result"},
	)

	// TenantResolutionCounter counts resolver outcomes: hit, miss, error
	TenantResolutionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenantgate_tenant_resolution_total",
			Help: "Total number of tenant resolutions by outcome",
		},
		[]string{"result"},
	)

	// TenantOperationCounter counts meta-admin tenant mutations
	TenantOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenantgate_tenant_operations_total",
			Help: "Total number of tenant operations",
		},
		[]string{"operation"},
	)

	// RouteRegenerationCounter counts route file generations: written, skipped, failed
	RouteRegenerationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenantgate_route_regenerations_total",
			Help: "Total number of reverse-proxy route file regenerations",
		},
		[]string{"result"},
	)

	// HTTPRequestCounter counts HTTP requests by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenantgate_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tenantgate_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tenantgate_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// ActiveTenantsGauge holds the number of tenants routed by the last generated file
var ActiveTenantsGauge = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "tenantgate_active_tenants",
		Help: "Number of active tenants in the last generated route file",
	},
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(MetaLoginCounter)
	prometheus.MustRegister(TenantResolutionCounter)
	prometheus.MustRegister(TenantOperationCounter)
	prometheus.MustRegister(RouteRegenerationCounter)
	prometheus.MustRegister(HTTPRequestCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(ActiveTenantsGauge)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations.
// Usage: defer prometheus.TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(startTime).Seconds())
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// render now so the recorded status is the one sent
				c.Error(err)
			}

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordLogin records a tenant login attempt
func RecordLogin(result string) {
	LoginCounter.With(prometheus.Labels{"result": result}).Inc()
}

// RecordMetaLogin records a meta-admin login attempt
func RecordMetaLogin(result string) {
	MetaLoginCounter.With(prometheus.Labels{"result": result}).Inc()
}

// RecordTenantResolution records the outcome of a tenant lookup
func RecordTenantResolution(result string) {
	TenantResolutionCounter.With(prometheus.Labels{"result": result}).Inc()
}

// RecordTenantOperation records a tenant operation
func RecordTenantOperation(operation string) {
	TenantOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordRouteRegeneration records a route file generation outcome
func RecordRouteRegeneration(result string) {
	RouteRegenerationCounter.With(prometheus.Labels{"result": result}).Inc()
}

// UpdateActiveTenants updates the active tenants gauge
func UpdateActiveTenants(count int) {
	ActiveTenantsGauge.Set(float64(count))
}
