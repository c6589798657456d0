package metrics

import (
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// Analysis runs are dominated by PDF parsing, so buckets reach into seconds.
var durationBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

var (
	uploadsAccepted    = &counter{name: "uploads_accepted_total", help: "Uploads accepted for analysis"}
	uploadsRejected    = &reasonCounter{name: "uploads_rejected_total", help: "Uploads rejected before analysis", label: "reason"}
	analysesStarted    = &counter{name: "analysis_started_total", help: "Analyses handed to the worker pool"}
	analysesCompleted  = &counter{name: "analysis_completed_total", help: "Analyses stored as completed"}
	analysesFailed     = &counter{name: "analysis_failed_total", help: "Analyses stored as failed"}
	transitionFailures = &counter{name: "analysis_transition_failures_total", help: "Analyses whose terminal state could not be persisted"}
	analysisDuration   = newHistogram("analysis_duration_ms", "Wall time from submit to terminal state in milliseconds", durationBuckets)

	registry = []collector{
		uploadsAccepted, uploadsRejected,
		analysesStarted, analysesCompleted, analysesFailed, transitionFailures,
		analysisDuration,
	}
)

func IncUploadAccepted()           { uploadsAccepted.inc() }
func IncUploadRejected(why string) { uploadsRejected.inc(why) }
func IncAnalysisStarted()          { analysesStarted.inc() }
func IncAnalysisCompleted()        { analysesCompleted.inc() }
func IncAnalysisFailed()           { analysesFailed.inc() }
func IncTransitionFailure()        { transitionFailures.inc() }

// ObserveAnalysisDurationMs records one analysis run. Negative values clamp to zero.
func ObserveAnalysisDurationMs(ms float64) {
	analysisDuration.observe(max(ms, 0))
}

// Handler serves Render as Prometheus text exposition.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

func Render() string {
	var sb strings.Builder
	for _, m := range registry {
		m.write(&sb)
	}
	return sb.String()
}

type collector interface {
	write(w io.StringWriter)
}

func header(w io.StringWriter, name, help, kind string) {
	w.WriteString("# HELP " + name + " " + help + "\n")
	w.WriteString("# TYPE " + name + " " + kind + "\n")
}

type counter struct {
	name, help string
	n          atomic.Uint64
}

func (c *counter) inc() { c.n.Add(1) }

func (c *counter) write(w io.StringWriter) {
	header(w, c.name, c.help, "counter")
	w.WriteString(c.name + " " + strconv.FormatUint(c.n.Load(), 10) + "\n")
}

type reasonCounter struct {
	name, help, label string

	mu     sync.Mutex
	counts map[string]uint64
}

func (c *reasonCounter) inc(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]uint64)
	}
	c.counts[value]++
}

func (c *reasonCounter) write(w io.StringWriter) {
	c.mu.Lock()
	values := make([]string, 0, len(c.counts))
	for v := range c.counts {
		values = append(values, v)
	}
	sort.Strings(values)
	lines := make([]string, len(values))
	for i, v := range values {
		lines[i] = c.name + "{" + c.label + "=" + strconv.Quote(v) + "} " + strconv.FormatUint(c.counts[v], 10) + "\n"
	}
	c.mu.Unlock()

	header(w, c.name, c.help, "counter")
	for _, l := range lines {
		w.WriteString(l)
	}
}

// histogram keeps per-bucket counts; cumulative totals are computed on write.
type histogram struct {
	name, help string
	bounds     []float64

	mu     sync.Mutex
	counts []uint64 // len(bounds)+1, last slot is +Inf
	sum    float64
}

func newHistogram(name, help string, bounds []float64) *histogram {
	return &histogram{name: name, help: help, bounds: bounds, counts: make([]uint64, len(bounds)+1)}
}

func (h *histogram) observe(v float64) {
	i := sort.SearchFloat64s(h.bounds, v)
	h.mu.Lock()
	h.counts[i]++
	h.sum += v
	h.mu.Unlock()
}

func (h *histogram) write(w io.StringWriter) {
	h.mu.Lock()
	counts := append([]uint64(nil), h.counts...)
	sum := h.sum
	h.mu.Unlock()

	header(w, h.name, h.help, "histogram")
	var total uint64
	for i, c := range counts {
		total += c
		le := "+Inf"
		if i < len(h.bounds) {
			le = strconv.FormatFloat(h.bounds[i], 'f', -1, 64)
		}
		w.WriteString(h.name + `_bucket{le="` + le + `"} ` + strconv.FormatUint(total, 10) + "\n")
	}
	w.WriteString(h.name + "_sum " + strconv.FormatFloat(sum, 'f', -1, 64) + "\n")
	w.WriteString(h.name + "_count " + strconv.FormatUint(total, 10) + "\n")
}
