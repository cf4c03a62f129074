// Package metrics counts submissions and the reasons they were turned down.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	formSaves   prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quickform",
			Name:      "submissions_total",
			Help:      "Submissions received, by outcome.",
		}, []string{"outcome"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quickform",
			Name:      "field_rejections_total",
			Help:      "Field answers rejected during submission, by reason.",
		}, []string{"reason"}),
		formSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quickform",
			Name:      "form_saves_total",
			Help:      "Form definitions saved.",
		}),
	}
	m.registry.MustRegister(m.submissions, m.rejections, m.formSaves)
	return m
}

// All methods accept a nil receiver so callers need not check.

func (m *Metrics) SubmissionAccepted() {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues("accepted").Inc()
}

func (m *Metrics) SubmissionRejected(reasons ...string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues("rejected").Inc()
	for _, r := range reasons {
		m.rejections.WithLabelValues(r).Inc()
	}
}

func (m *Metrics) SubmissionFailed() {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues("failed").Inc()
}

func (m *Metrics) FormSaved() {
	if m == nil {
		return
	}
	m.formSaves.Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
