package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Reset collectors for testing purposes.
	fetchRequestsTotal = nil
	fetchRetriesTotal = nil
	snapshotWritesTotal = nil
	httpRequestsTotal = nil
	httpRequestDurationSeconds = nil

	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if fetchRequestsTotal == nil || fetchRetriesTotal == nil ||
		snapshotWritesTotal == nil || httpRequestsTotal == nil ||
		httpRequestDurationSeconds == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}

	// A simple check to see if a metric can be used.
	ObserveFetchRequest("cs.AI", "ok")
	if val := testutil.ToFloat64(fetchRequestsTotal.WithLabelValues("cs.AI", "ok")); val != 1 {
		t.Errorf("Expected fetchRequestsTotal to be 1, got %f", val)
	}
}

func TestHelpersNilSafeBeforeInit(t *testing.T) {
	saved := fetchRequestsTotal
	fetchRequestsTotal = nil
	defer func() { fetchRequestsTotal = saved }()

	// Must not panic when collectors are not registered.
	ObserveFetchRequest("cs.AI", "error")
}

func TestObserveSnapshotWrite(t *testing.T) {
	Init()

	ObserveSnapshotWrite("ok", 42)
	if val := testutil.ToFloat64(snapshotPapers); val != 42 {
		t.Errorf("Expected snapshotPapers gauge to be 42, got %f", val)
	}

	ObserveSnapshotWrite("error", 0)
	if val := testutil.ToFloat64(snapshotPapers); val != 42 {
		t.Errorf("Failed write should not change the gauge, got %f", val)
	}
}
