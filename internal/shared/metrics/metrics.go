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
	uploadStartedTotal   atomic.Uint64
	uploadSucceededTotal atomic.Uint64
	uploadFailedTotal    atomic.Uint64

	documentsRegisteredTotal atomic.Uint64
	documentsDeletedTotal    atomic.Uint64

	processingStartedTotal   atomic.Uint64
	processingCompletedTotal atomic.Uint64
	processingFailedTotal    atomic.Uint64

	aiCleanupFailedTotal atomic.Uint64

	uploadDuration     = newHistogram([]float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000})
	processingDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncUploadStarted increments the upload started counter.
func IncUploadStarted() {
	uploadStartedTotal.Add(1)
}

// IncUploadSucceeded increments the upload succeeded counter.
func IncUploadSucceeded() {
	uploadSucceededTotal.Add(1)
}

// IncUploadFailed increments the upload failed counter.
func IncUploadFailed() {
	uploadFailedTotal.Add(1)
}

// IncDocumentRegistered increments the documents registered counter.
func IncDocumentRegistered() {
	documentsRegisteredTotal.Add(1)
}

// IncDocumentDeleted increments the documents deleted counter.
func IncDocumentDeleted() {
	documentsDeletedTotal.Add(1)
}

// IncProcessingStarted increments the AI processing started counter.
func IncProcessingStarted() {
	processingStartedTotal.Add(1)
}

// IncProcessingCompleted increments the AI processing completed counter.
func IncProcessingCompleted() {
	processingCompletedTotal.Add(1)
}

// IncProcessingFailed increments the AI processing failed counter.
func IncProcessingFailed() {
	processingFailedTotal.Add(1)
}

// IncAICleanupFailed increments the best-effort AI cleanup failure counter.
func IncAICleanupFailed() {
	aiCleanupFailedTotal.Add(1)
}

// ObserveUploadDurationMs records one blob upload duration in milliseconds.
func ObserveUploadDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	uploadDuration.Observe(value)
}

// ObserveProcessingDurationMs records one AI processing duration in milliseconds.
func ObserveProcessingDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	processingDuration.Observe(value)
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
	writeCounter(&buf, "upload_started_total", "Total blob uploads started", uploadStartedTotal.Load())
	writeCounter(&buf, "upload_succeeded_total", "Total blob uploads succeeded", uploadSucceededTotal.Load())
	writeCounter(&buf, "upload_failed_total", "Total blob uploads failed", uploadFailedTotal.Load())
	writeCounter(&buf, "documents_registered_total", "Total document records created", documentsRegisteredTotal.Load())
	writeCounter(&buf, "documents_deleted_total", "Total document records deleted", documentsDeletedTotal.Load())
	writeCounter(&buf, "processing_started_total", "Total AI processing invocations started", processingStartedTotal.Load())
	writeCounter(&buf, "processing_completed_total", "Total AI processing invocations completed", processingCompletedTotal.Load())
	writeCounter(&buf, "processing_failed_total", "Total AI processing invocations failed", processingFailedTotal.Load())
	writeCounter(&buf, "ai_cleanup_failed_total", "Total best-effort AI data cleanups that failed", aiCleanupFailedTotal.Load())
	writeHistogram(&buf, "upload_duration_ms", "Blob upload duration in milliseconds", uploadDuration.Snapshot())
	writeHistogram(&buf, "processing_duration_ms", "AI processing duration in milliseconds", processingDuration.Snapshot())
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
			break
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
