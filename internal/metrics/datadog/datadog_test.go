package datadog

import (
	"reflect"
	"sync"
	"testing"

	"github.com/DataDog/datadog-go/v5/statsd"

	"sparkify/internal/metrics"
)

// recordingClient captures calls made through statsd.ClientInterface.
type recordingClient struct {
	statsd.NoOpClient

	mu      sync.Mutex
	counts  []call
	hists   []call
	flushed int
	closed  int
}

type call struct {
	name  string
	value float64
	tags  []string
}

func (r *recordingClient) Count(name string, value int64, tags []string, rate float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = append(r.counts, call{name, float64(value), tags})
	return nil
}

func (r *recordingClient) Histogram(name string, value float64, tags []string, rate float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hists = append(r.hists, call{name, value, tags})
	return nil
}

func (r *recordingClient) Flush() error { r.flushed++; return nil }
func (r *recordingClient) Close() error { r.closed++; return nil }

func TestNewBackend_RequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(Config{}); err == nil {
		t.Fatal("NewBackend(Config{}) error = nil, want non-nil")
	}
}

func TestNewBackend_UDP(t *testing.T) {
	t.Parallel()

	// UDP needs no listener to construct a client.
	b, err := NewBackend(Config{Addr: "127.0.0.1:8125", Namespace: "sparkify.", GlobalTags: []string{"env:test"}})
	if err != nil {
		t.Fatalf("NewBackend error = %v", err)
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush error = %v", err)
	}
}

func TestBackend_ForwardsToClient(t *testing.T) {
	t.Parallel()

	rc := &recordingClient{}
	b := &Backend{client: rc}

	b.IncCounter(metrics.FilesTotal, 1, metrics.Labels{"status": "success", "dataset": "songs"})
	b.ObserveHistogram(metrics.StepDurationSeconds, 0.25, metrics.Labels{"step": "logs"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush error = %v", err)
	}

	if len(rc.counts) != 1 || rc.counts[0].name != metrics.FilesTotal || rc.counts[0].value != 1 {
		t.Fatalf("counts = %+v", rc.counts)
	}
	if want := []string{"dataset:songs", "status:success"}; !reflect.DeepEqual(rc.counts[0].tags, want) {
		t.Fatalf("tags = %v, want %v", rc.counts[0].tags, want)
	}
	if len(rc.hists) != 1 || rc.hists[0].value != 0.25 {
		t.Fatalf("hists = %+v", rc.hists)
	}
	if rc.flushed != 1 || rc.closed != 1 {
		t.Fatalf("flushed=%d closed=%d, want 1 and 1", rc.flushed, rc.closed)
	}
}

func TestLabelsToTags(t *testing.T) {
	t.Parallel()

	if got := labelsToTags(nil); got != nil {
		t.Fatalf("labelsToTags(nil) = %v, want nil", got)
	}
	got := labelsToTags(metrics.Labels{"kind": "songplays", "job": "sparkify"})
	if want := []string{"job:sparkify", "kind:songplays"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("labelsToTags = %v, want %v", got, want)
	}
}
