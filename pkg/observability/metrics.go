package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultBuckets are latency buckets in milliseconds. Tool calls run Maven
// builds and remote API calls, so the tail reaches two minutes.
var DefaultBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 120000}

// MetricsConfig configures the metrics provider
type MetricsConfig struct {
	ServiceName    string
	ServiceVersion string

	// Addr is the listen address of the scrape endpoint, e.g. ":9090".
	// Empty disables the endpoint; metrics are still collected.
	Addr        string
	MetricsPath string // default /metrics

	Namespace        string // default sdlc
	HistogramBuckets []float64
	ConstLabels      prometheus.Labels
}

func (c *MetricsConfig) setDefaults() {
	if c.Namespace == "" {
		c.Namespace = "sdlc"
	}
	if c.MetricsPath == "" {
		c.MetricsPath = "/metrics"
	}
	if c.HistogramBuckets == nil {
		c.HistogramBuckets = DefaultBuckets
	}
	labels := prometheus.Labels{}
	for k, v := range c.ConstLabels {
		labels[k] = v
	}
	if c.ServiceName != "" {
		labels["service"] = c.ServiceName
	}
	if c.ServiceVersion != "" {
		labels["version"] = c.ServiceVersion
	}
	c.ConstLabels = labels
}

// MetricsProvider records dispatch metrics
type MetricsProvider interface {
	RecordRequest(ctx context.Context, method, status string, duration time.Duration)
	// RecordError counts a failed method by its wire error code
	RecordError(ctx context.Context, method string, code int)
	// RecordInFlight moves the in-flight request gauge by delta
	RecordInFlight(ctx context.Context, method string, delta float64)

	RecordToolCall(ctx context.Context, tool, status string, duration time.Duration)
	RecordResourceRead(ctx context.Context, resource, status string, duration time.Duration)
	RecordPromptGet(ctx context.Context, prompt, status string, duration time.Duration)

	Registry() *prometheus.Registry

	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// PrometheusMetricsProvider keeps its collectors in a private registry so
// several servers can live in one process.
type PrometheusMetricsProvider struct {
	config   MetricsConfig
	registry *prometheus.Registry

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener

	requestDuration      *prometheus.HistogramVec
	requestTotal         *prometheus.CounterVec
	inFlight             *prometheus.GaugeVec
	errorTotal           *prometheus.CounterVec
	toolCallDuration     *prometheus.HistogramVec
	resourceReadDuration *prometheus.HistogramVec
	promptGetDuration    *prometheus.HistogramVec
}

// NewMetricsProvider creates a provider and registers its collectors
func NewMetricsProvider(config MetricsConfig) (*PrometheusMetricsProvider, error) {
	config.setDefaults()
	p := &PrometheusMetricsProvider{config: config, registry: prometheus.NewRegistry()}

	if err := p.register(); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	return p, nil
}

func (p *PrometheusMetricsProvider) register() (err error) {
	// promauto panics on duplicate registration
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	f := promauto.With(p.registry)
	ns, labels, buckets := p.config.Namespace, p.config.ConstLabels, p.config.HistogramBuckets
	histogram := func(name, help, label string) *prometheus.HistogramVec {
		return f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Name: name, Help: help, Buckets: buckets, ConstLabels: labels,
		}, []string{label, "status"})
	}

	p.requestDuration = histogram("request_duration_milliseconds", "Duration of dispatched requests in milliseconds", "method")
	p.requestTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Name: "request_total", Help: "Dispatched requests by method and outcome", ConstLabels: labels,
	}, []string{"method", "status"})
	p.inFlight = f.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: ns, Name: "requests_in_flight", Help: "Requests currently being handled", ConstLabels: labels,
	}, []string{"method"})
	p.errorTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Name: "errors_total", Help: "Error responses by method and JSON-RPC code", ConstLabels: labels,
	}, []string{"method", "code"})
	p.toolCallDuration = histogram("tool_call_duration_milliseconds", "Duration of tool calls in milliseconds", "tool")
	p.resourceReadDuration = histogram("resource_read_duration_milliseconds", "Duration of resource reads in milliseconds", "resource")
	p.promptGetDuration = histogram("prompt_get_duration_milliseconds", "Duration of prompt renders in milliseconds", "prompt")
	return nil
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func (p *PrometheusMetricsProvider) RecordRequest(_ context.Context, method, status string, duration time.Duration) {
	p.requestDuration.WithLabelValues(method, status).Observe(ms(duration))
	p.requestTotal.WithLabelValues(method, status).Inc()
}

func (p *PrometheusMetricsProvider) RecordError(_ context.Context, method string, code int) {
	p.errorTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

func (p *PrometheusMetricsProvider) RecordInFlight(_ context.Context, method string, delta float64) {
	p.inFlight.WithLabelValues(method).Add(delta)
}

func (p *PrometheusMetricsProvider) RecordToolCall(_ context.Context, tool, status string, duration time.Duration) {
	p.toolCallDuration.WithLabelValues(tool, status).Observe(ms(duration))
}

func (p *PrometheusMetricsProvider) RecordResourceRead(_ context.Context, resource, status string, duration time.Duration) {
	p.resourceReadDuration.WithLabelValues(resource, status).Observe(ms(duration))
}

func (p *PrometheusMetricsProvider) RecordPromptGet(_ context.Context, prompt, status string, duration time.Duration) {
	p.promptGetDuration.WithLabelValues(prompt, status).Observe(ms(duration))
}

func (p *PrometheusMetricsProvider) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the provider's registry in the Prometheus text format
func (p *PrometheusMetricsProvider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Start listens on the configured address. It does nothing when no address
// is configured or the endpoint is already running.
func (p *PrometheusMetricsProvider) Start(context.Context) error {
	if p.config.Addr == "" {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.server != nil {
		return nil
	}

	l, err := net.Listen("tcp", p.config.Addr)
	if err != nil {
		return fmt.Errorf("metrics listen on %s: %w", p.config.Addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(p.config.MetricsPath, p.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	p.server, p.listener = srv, l

	go func() {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = l.Close()
		}
	}()
	return nil
}

// Addr returns the bound scrape address, or "" when not started
func (p *PrometheusMetricsProvider) Addr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listener == nil {
		return ""
	}
	return p.listener.Addr().String()
}

// Shutdown stops the scrape endpoint
func (p *PrometheusMetricsProvider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	srv := p.server
	p.server = nil
	p.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
