package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	translationStartedTotal   atomic.Uint64
	translationCompletedTotal atomic.Uint64
	translationFailedTotal    atomic.Uint64
	pagesTranslatedTotal      atomic.Uint64
	pagesFailedTotal          atomic.Uint64

	jobsReceivedTotal             atomic.Uint64
	jobsCompletedTotal            atomic.Uint64
	jobsFailedTotal               atomic.Uint64
	jobsDeletedUnrecoverableTotal atomic.Uint64

	translationDuration = newHistogram([]float64{500, 1000, 2000, 5000, 10000, 30000, 60000, 120000, 300000})
)

// IncTranslationStarted increments the started counter.
func IncTranslationStarted() {
	translationStartedTotal.Add(1)
}

// IncTranslationCompleted increments the completed counter.
func IncTranslationCompleted() {
	translationCompletedTotal.Add(1)
}

// IncTranslationFailed increments the failed counter.
func IncTranslationFailed() {
	translationFailedTotal.Add(1)
}

// AddPagesTranslated records successfully translated pages.
func AddPagesTranslated(n int) {
	if n > 0 {
		pagesTranslatedTotal.Add(uint64(n))
	}
}

// IncPageFailed records a page that failed to translate.
func IncPageFailed() {
	pagesFailedTotal.Add(1)
}

// IncJobsReceived increments the worker received counter.
func IncJobsReceived() {
	jobsReceivedTotal.Add(1)
}

// IncJobsCompleted increments the worker completed counter.
func IncJobsCompleted() {
	jobsCompletedTotal.Add(1)
}

// IncJobsFailed increments the worker failed counter.
func IncJobsFailed() {
	jobsFailedTotal.Add(1)
}

// IncJobsDeletedUnrecoverable counts poison messages dropped from the queue.
func IncJobsDeletedUnrecoverable() {
	jobsDeletedUnrecoverableTotal.Add(1)
}

// ObserveTranslationDurationMs records a translation duration in milliseconds.
func ObserveTranslationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	translationDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "translation_started_total", "Total translations started", translationStartedTotal.Load())
	writeCounter(&buf, "translation_completed_total", "Total translations completed", translationCompletedTotal.Load())
	writeCounter(&buf, "translation_failed_total", "Total translations failed", translationFailedTotal.Load())
	writeCounter(&buf, "translation_pages_total", "Total pages translated", pagesTranslatedTotal.Load())
	writeCounter(&buf, "translation_pages_failed_total", "Total pages that failed to translate", pagesFailedTotal.Load())
	writeCounter(&buf, "translation_jobs_received_total", "Total queue jobs received", jobsReceivedTotal.Load())
	writeCounter(&buf, "translation_jobs_completed_total", "Total queue jobs completed", jobsCompletedTotal.Load())
	writeCounter(&buf, "translation_jobs_failed_total", "Total queue jobs failed", jobsFailedTotal.Load())
	writeCounter(&buf, "translation_jobs_deleted_unrecoverable_total", "Total poison queue jobs dropped", jobsDeletedUnrecoverableTotal.Load())
	writeHistogram(&buf, "translation_duration_ms", "Translation duration in milliseconds", translationDuration.Snapshot())
	return buf.String()
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

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
