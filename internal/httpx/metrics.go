package httpx

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg     *prometheus.Registry
	actions *prometheus.CounterVec
	cache   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_actions_total",
			Help: "Form actions by action and outcome.",
		}, []string{"action", "outcome"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_page_cache_total",
			Help: "Page cache lookups by result.",
		}, []string{"result"}),
	}
	m.reg.MustRegister(m.actions, m.cache, collectors.NewGoCollector())
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) action(name, outcome string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(name, outcome).Inc()
}

func (m *Metrics) cacheResult(result string) {
	if m == nil {
		return
	}
	m.cache.WithLabelValues(result).Inc()
}
