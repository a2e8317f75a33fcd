package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	applicationsSubmittedTotal atomic.Uint64
	applicationsPromotedTotal  atomic.Uint64
	applicationsWithdrawnTotal atomic.Uint64
	applicationConflictsTotal  atomic.Uint64
	bookmarkTogglesTotal       atomic.Uint64
	notificationsQueuedTotal   atomic.Uint64
	notificationsFailedTotal   atomic.Uint64
	handlerPanicsTotal         atomic.Uint64

	sideEffectFailures = newLabeledCounter()
	workerMessages     = newLabeledCounter()

	submitDuration = newHistogram([]float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500})
)

// IncApplicationSubmitted counts a committed submission; promoted reports a bookmark promotion.
func IncApplicationSubmitted(promoted bool) {
	applicationsSubmittedTotal.Add(1)
	if promoted {
		applicationsPromotedTotal.Add(1)
	}
}

// IncApplicationWithdrawn increments the withdrawn counter.
func IncApplicationWithdrawn() {
	applicationsWithdrawnTotal.Add(1)
}

// IncApplicationConflict counts submissions rejected because an active application exists.
func IncApplicationConflict() {
	applicationConflictsTotal.Add(1)
}

// IncBookmarkToggled increments the bookmark toggle counter.
func IncBookmarkToggled() {
	bookmarkTogglesTotal.Add(1)
}

// IncNotificationQueued counts notifications handed to a dispatcher.
func IncNotificationQueued() {
	notificationsQueuedTotal.Add(1)
}

// IncNotificationFailed counts notifications the worker could not deliver.
func IncNotificationFailed() {
	notificationsFailedTotal.Add(1)
}

// IncHandlerPanic counts requests that panicked and were recovered.
func IncHandlerPanic() {
	handlerPanicsTotal.Add(1)
}

// IncSideEffectFailure counts a failed best-effort side effect by kind (ranking, notification).
func IncSideEffectFailure(kind string) {
	sideEffectFailures.Inc(kind)
}

// IncWorkerMessage counts queue messages handled by the worker by outcome
// (received, completed, failed, discarded).
func IncWorkerMessage(outcome string) {
	workerMessages.Inc(outcome)
}

// ObserveSubmitDurationMs records a submission duration in milliseconds.
func ObserveSubmitDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	submitDuration.Observe(value)
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
	writeCounter(&buf, "applications_submitted_total", "Total applications submitted", applicationsSubmittedTotal.Load())
	writeCounter(&buf, "applications_promoted_total", "Submissions that promoted a bookmark-only row", applicationsPromotedTotal.Load())
	writeCounter(&buf, "applications_withdrawn_total", "Total applications withdrawn", applicationsWithdrawnTotal.Load())
	writeCounter(&buf, "application_conflicts_total", "Submissions rejected by an active application", applicationConflictsTotal.Load())
	writeCounter(&buf, "bookmark_toggles_total", "Total bookmark toggles", bookmarkTogglesTotal.Load())
	writeCounter(&buf, "notifications_queued_total", "Notifications handed to a dispatcher", notificationsQueuedTotal.Load())
	writeCounter(&buf, "notifications_failed_total", "Notifications the worker failed to deliver", notificationsFailedTotal.Load())
	writeCounter(&buf, "handler_panics_total", "Requests recovered from a panic", handlerPanicsTotal.Load())
	writeLabeledCounter(&buf, "side_effect_failures_total", "Best-effort side effects that failed", "kind", sideEffectFailures.Snapshot())
	writeLabeledCounter(&buf, "worker_messages_total", "Queue messages handled by the worker", "outcome", workerMessages.Snapshot())
	writeHistogram(&buf, "application_submit_duration_ms", "Submission duration in milliseconds", submitDuration.Snapshot())
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
	l.mu.Lock()
	l.values[label]++
	l.mu.Unlock()
}

func (l *labeledCounter) Snapshot() map[string]uint64 {
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

// Observe counts value in the first bucket whose bound it does not exceed.
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
