package prometheus

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-access-notifier/core"
)

// Recorder exposes notifier metrics through a dedicated prometheus registry.
// Metric families are created lazily on first use; the label schema of a
// metric is fixed by its first recording, later calls fill missing labels
// with an empty value and drop unknown ones.
type Recorder struct {
	registry *prom.Registry

	mu         sync.Mutex
	counters   map[string]*counterFamily
	histograms map[string]*histogramFamily
}

type counterFamily struct {
	vec  *prom.CounterVec
	keys []string
}

type histogramFamily struct {
	vec  *prom.HistogramVec
	keys []string
}

func NewRecorder() *Recorder {
	return &Recorder{
		registry:   prom.NewRegistry(),
		counters:   map[string]*counterFamily{},
		histograms: map[string]*histogramFamily{},
	}
}

func (r *Recorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	if r == nil || value <= 0 {
		return
	}
	family := r.counterFor(name, tags)
	if family == nil {
		return
	}
	family.vec.With(labelValues(family.keys, tags)).Add(float64(value))
}

func (r *Recorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	if r == nil {
		return
	}
	family := r.histogramFor(name, tags)
	if family == nil {
		return
	}
	family.vec.With(labelValues(family.keys, tags)).Observe(value)
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Registry() *prom.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) counterFor(name string, tags map[string]string) *counterFamily {
	metric := metricName(name)
	if metric == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if family, ok := r.counters[metric]; ok {
		return family
	}

	keys := labelKeys(tags)
	vec := prom.NewCounterVec(prom.CounterOpts{
		Name: metric,
		Help: "Counter " + name,
	}, keys)
	if err := r.registry.Register(vec); err != nil {
		return nil
	}
	family := &counterFamily{vec: vec, keys: keys}
	r.counters[metric] = family
	return family
}

func (r *Recorder) histogramFor(name string, tags map[string]string) *histogramFamily {
	metric := metricName(name)
	if metric == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if family, ok := r.histograms[metric]; ok {
		return family
	}

	keys := labelKeys(tags)
	vec := prom.NewHistogramVec(prom.HistogramOpts{
		Name:    metric,
		Help:    "Histogram " + name,
		Buckets: prom.DefBuckets,
	}, keys)
	if err := r.registry.Register(vec); err != nil {
		return nil
	}
	family := &histogramFamily{vec: vec, keys: keys}
	r.histograms[metric] = family
	return family
}

func metricName(name string) string {
	metric := strings.TrimSpace(name)
	metric = strings.ReplaceAll(metric, ".", "_")
	metric = strings.ReplaceAll(metric, "-", "_")
	return metric
}

func labelKeys(tags map[string]string) []string {
	if len(tags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tags))
	for key := range tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func labelValues(keys []string, tags map[string]string) prom.Labels {
	labels := prom.Labels{}
	for _, key := range keys {
		labels[key] = tags[key]
	}
	return labels
}

var _ core.MetricsRecorder = (*Recorder)(nil)
