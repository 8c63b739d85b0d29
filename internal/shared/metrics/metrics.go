package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Recorder is the subset of Collector the pipelines depend on.
type Recorder interface {
	IncIngest()
	IncExtraction(method string)
	IncQuestion()
	IncAudit()
	IncProviderFailure(kind string)
	ObservePipelineMs(pipeline string, value float64)
}

// Collector owns the service counters. One is built at startup and passed to
// every service that records metrics.
type Collector struct {
	ingestsTotal   atomic.Uint64
	questionsTotal atomic.Uint64
	auditsTotal    atomic.Uint64

	extractions      *labeledCounter
	providerFailures *labeledCounter

	mu        sync.Mutex
	durations map[string]*histogram
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{
		extractions:      newLabeledCounter(),
		providerFailures: newLabeledCounter(),
		durations:        make(map[string]*histogram),
	}
}

// IncIngest increments the ingested documents counter.
func (c *Collector) IncIngest() {
	c.ingestsTotal.Add(1)
}

// IncExtraction increments the extraction counter for the given method.
func (c *Collector) IncExtraction(method string) {
	c.extractions.Inc(method)
}

// IncQuestion increments the answered questions counter.
func (c *Collector) IncQuestion() {
	c.questionsTotal.Add(1)
}

// IncAudit increments the audits counter.
func (c *Collector) IncAudit() {
	c.auditsTotal.Add(1)
}

// IncProviderFailure increments the provider failure counter for kind.
func (c *Collector) IncProviderFailure(kind string) {
	c.providerFailures.Inc(kind)
}

// ObservePipelineMs records a pipeline duration in milliseconds.
func (c *Collector) ObservePipelineMs(pipeline string, value float64) {
	if value < 0 {
		value = 0
	}
	c.mu.Lock()
	h, ok := c.durations[pipeline]
	if !ok {
		h = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000})
		c.durations[pipeline] = h
	}
	c.mu.Unlock()
	h.Observe(value)
}

// Snapshot returns plain counter values, keyed by metric name.
func (c *Collector) Snapshot() map[string]uint64 {
	out := map[string]uint64{
		"ingests_total":   c.ingestsTotal.Load(),
		"questions_total": c.questionsTotal.Load(),
		"audits_total":    c.auditsTotal.Load(),
	}
	for label, v := range c.extractions.Values() {
		out["extractions_total{method=\""+label+"\"}"] = v
	}
	for label, v := range c.providerFailures.Values() {
		out["provider_failures_total{kind=\""+label+"\"}"] = v
	}
	return out
}

// Handler exposes metrics in Prometheus text format.
func (c *Collector) Handler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Header("Content-Type", "text/plain; version=0.0.4")
		ctx.String(http.StatusOK, c.Render())
	}
}

// Render renders metrics in Prometheus text format.
func (c *Collector) Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "ingests_total", "Total documents ingested", c.ingestsTotal.Load())
	writeLabeledCounter(&buf, "extractions_total", "Total field extractions by method", "method", c.extractions.Values())
	writeCounter(&buf, "questions_total", "Total questions answered", c.questionsTotal.Load())
	writeCounter(&buf, "audits_total", "Total audits run", c.auditsTotal.Load())
	writeLabeledCounter(&buf, "provider_failures_total", "Total provider failures by kind", "kind", c.providerFailures.Values())

	c.mu.Lock()
	names := make([]string, 0, len(c.durations))
	for name := range c.durations {
		names = append(names, name)
	}
	c.mu.Unlock()
	sort.Strings(names)
	if len(names) > 0 {
		fmt.Fprintf(&buf, "# HELP pipeline_duration_ms Pipeline duration in milliseconds\n")
		fmt.Fprintf(&buf, "# TYPE pipeline_duration_ms histogram\n")
	}
	for _, name := range names {
		c.mu.Lock()
		h := c.durations[name]
		c.mu.Unlock()
		writeHistogram(&buf, "pipeline_duration_ms", name, h.Snapshot())
	}
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	values map[string]uint64
}

func newLabeledCounter() *labeledCounter {
	return &labeledCounter{values: make(map[string]uint64)}
}

func (l *labeledCounter) Inc(label string) {
	if label == "" {
		label = "unknown"
	}
	l.mu.Lock()
	l.values[label]++
	l.mu.Unlock()
}

func (l *labeledCounter) Values() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records value in the first bucket that holds it; Render accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeledCounter(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, pipeline string, snap histogramSnapshot) {
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{pipeline=%q,le=\"%s\"} %d\n", name, pipeline, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{pipeline=%q,le=\"+Inf\"} %d\n", name, pipeline, snap.count)
	fmt.Fprintf(buf, "%s_sum{pipeline=%q} %s\n", name, pipeline, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count{pipeline=%q} %d\n", name, pipeline, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// SinceMillis returns the elapsed milliseconds since start.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

// Nop discards every observation. Services use it when no collector is wired.
type Nop struct{}

func (Nop) IncIngest()                        {}
func (Nop) IncExtraction(string)              {}
func (Nop) IncQuestion()                      {}
func (Nop) IncAudit()                         {}
func (Nop) IncProviderFailure(string)         {}
func (Nop) ObservePipelineMs(string, float64) {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
