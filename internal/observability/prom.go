package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blogapi"

var (
	httpBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}
	dbBuckets   = []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.25, 0.5, 1, 2}
)

type Prom struct {
	registry *prometheus.Registry

	// HTTP
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// DB
	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	// Domain
	AuthResults   *prometheus.CounterVec
	ContentWrites *prometheus.CounterVec
}

func counter(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labels)
}

func histogram(subsystem, name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets,
	}, labels)
}

// NewProm builds the collectors on a private registry (plus Go and process
// collectors) so tests can create as many instances as they like.
func NewProm() *Prom {
	p := &Prom{
		registry: prometheus.NewRegistry(),

		RequestsTotal:    counter("", "http_requests_total", "Total HTTP requests processed.", "method", "route", "status"),
		RequestsDuration: histogram("", "http_request_duration_seconds", "HTTP request latency.", httpBuckets, "method", "route", "status"),
		InFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "http_in_flight_requests", Help: "HTTP requests currently being served.",
		}, []string{"method", "route"}),

		DbQueryDuration: histogram("db", "query_duration_seconds", "Store operation latency by logical op.", dbBuckets, "op", "status"),
		DbErrorsTotal:   counter("db", "errors_total", "Store errors by logical op and class.", "op", "class"),

		AuthResults:   counter("auth", "results_total", "Signup and login outcomes.", "action", "result"),
		ContentWrites: counter("content", "writes_total", "Successful post and comment writes.", "kind", "action"),
	}

	p.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.DbQueryDuration, p.DbErrorsTotal,
		p.AuthResults, p.ContentWrites,
	)

	return p
}

// RegisterPool exports pgxpool connection gauges, read at scrape time.
func (p *Prom) RegisterPool(pool *pgxpool.Pool) {
	gauge := func(name, help string, read func(*pgxpool.Stat) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "db_pool", Name: name, Help: help,
		}, func() float64 { return float64(read(pool.Stat())) })
	}

	p.registry.MustRegister(
		gauge("acquired_conns", "Connections currently checked out.", (*pgxpool.Stat).AcquiredConns),
		gauge("idle_conns", "Idle connections in the pool.", (*pgxpool.Stat).IdleConns),
		gauge("total_conns", "All connections owned by the pool.", (*pgxpool.Stat).TotalConns),
	)
}

func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// ObserveAuth counts an auth outcome. Safe on a nil *Prom.
func (p *Prom) ObserveAuth(action, result string) {
	if p == nil {
		return
	}
	p.AuthResults.WithLabelValues(action, result).Inc()
}

// ObserveContent counts a successful write; kind is post or comment.
func (p *Prom) ObserveContent(kind, action string) {
	if p == nil {
		return
	}
	p.ContentWrites.WithLabelValues(kind, action).Inc()
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method

		inFlight := p.InFlight.WithLabelValues(method, route)
		inFlight.Inc()
		defer inFlight.Dec()

		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
	}
}
