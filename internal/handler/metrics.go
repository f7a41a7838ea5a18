package handler

import (
	"fmt"
	"net/http"

	"github.com/attendly/attendly/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns counters in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "attendly_users_registered_total %d\n", snap.UsersRegistered)
	for reason, count := range snap.RegistrationsRejected {
		writeMetric(w, "attendly_registrations_rejected_total{reason=%q} %d\n", reason, count)
	}

	writeMetric(w, "attendly_logins_total{status=\"success\"} %d\n", snap.LoginSuccesses)
	writeMetric(w, "attendly_logins_total{status=\"failure\"} %d\n", snap.LoginFailures)

	writeMetric(w, "attendly_tokens_revoked_total %d\n", snap.TokensRevoked)
	for reason, count := range snap.TokensRejected {
		writeMetric(w, "attendly_tokens_rejected_total{reason=%q} %d\n", reason, count)
	}

	writeMetric(w, "attendly_users_updated_total %d\n", snap.UsersUpdated)
	writeMetric(w, "attendly_users_deleted_total %d\n", snap.UsersDeleted)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
