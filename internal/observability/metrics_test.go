package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetricsRegistersWithoutPanicking(t *testing.T) {
	m := NewMetrics()
	if m.registry == nil {
		t.Fatal("expected a non-nil registry")
	}
}

func TestRecordRunUpdatesCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRun("K", "success", 3, "")
	m.RecordRun("Q", "failure", 2, "Inadmissible")

	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("K", "success")); got != 1 {
		t.Fatalf("RunsTotal(K,success) = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.FaultsTotal.WithLabelValues("Inadmissible")); got != 1 {
		t.Fatalf("FaultsTotal(Inadmissible) = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("Q", "failure")); got != 1 {
		t.Fatalf("RunsTotal(Q,failure) = %v, want 1", got)
	}
}

func TestServeMetricsRespectsContextCancellation(t *testing.T) {
	m := NewMetrics()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.ServeMetrics(ctx, "127.0.0.1:0")
	}()

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("ServeMetrics: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ServeMetrics did not return after context cancellation")
	}
}
