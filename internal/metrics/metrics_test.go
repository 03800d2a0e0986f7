package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	callsCounters   []counterCall
	callsHistograms []histCall
	flushCount      int
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsCounters = append(f.callsCounters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsHistograms = append(f.callsHistograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

func swapBackend(t *testing.T) *fakeBackend {
	t.Helper()
	orig := backend
	t.Cleanup(func() { backend = orig })
	fb := &fakeBackend{}
	backend = fb
	return fb
}

func TestRecordStep_SuccessAndFailure(t *testing.T) {
	fb := swapBackend(t)

	RecordStep("sparkify", "songs", nil, 2*time.Second)
	RecordStep("sparkify", "logs", errors.New("boom"), 1500*time.Millisecond)

	if len(fb.callsCounters) != 2 || len(fb.callsHistograms) != 2 {
		t.Fatalf("got %d counters, %d histograms; want 2 each", len(fb.callsCounters), len(fb.callsHistograms))
	}

	c0 := fb.callsCounters[0]
	if c0.name != StepTotal || c0.delta != 1 {
		t.Fatalf("counter[0] = %#v", c0)
	}
	if c0.labels["job"] != "sparkify" || c0.labels["step"] != "songs" || c0.labels["status"] != "success" {
		t.Fatalf("counter[0].labels = %v", c0.labels)
	}
	if h0 := fb.callsHistograms[0]; h0.name != StepDurationSeconds || h0.value < 1.999 || h0.value > 2.001 {
		t.Fatalf("hist[0] = %#v", h0)
	}

	if got := fb.callsCounters[1].labels["status"]; got != "failure" {
		t.Fatalf("counter[1] status = %q, want failure", got)
	}
	if h1 := fb.callsHistograms[1]; h1.value < 1.499 || h1.value > 1.501 {
		t.Fatalf("hist[1].value = %v, want ~1.5", h1.value)
	}
}

func TestRecordRow(t *testing.T) {
	fb := swapBackend(t)

	RecordRow("sparkify", "songplays", 3)
	RecordRow("sparkify", "matched", 0)
	RecordRow("sparkify", "missed", -1)
	RecordRow("sparkify", "users", 5)

	if len(fb.callsCounters) != 2 {
		t.Fatalf("expected 2 counter calls, got %d", len(fb.callsCounters))
	}
	c0, c1 := fb.callsCounters[0], fb.callsCounters[1]
	if c0.name != RecordsTotal || c0.delta != 3 || c0.labels["kind"] != "songplays" {
		t.Fatalf("counter[0] = %#v", c0)
	}
	if c1.delta != 5 || c1.labels["kind"] != "users" || c1.labels["job"] != "sparkify" {
		t.Fatalf("counter[1] = %#v", c1)
	}
}

func TestRecordFile(t *testing.T) {
	fb := swapBackend(t)

	RecordFile("sparkify", "songs", nil)
	RecordFile("sparkify", "logs", errors.New("parse"))

	want := []Labels{
		{"job": "sparkify", "dataset": "songs", "status": "success"},
		{"job": "sparkify", "dataset": "logs", "status": "failure"},
	}
	for i, w := range want {
		c := fb.callsCounters[i]
		if c.name != FilesTotal || c.delta != 1 {
			t.Fatalf("counter[%d] = %#v", i, c)
		}
		for k, v := range w {
			if c.labels[k] != v {
				t.Fatalf("counter[%d].labels[%s] = %q, want %q", i, k, c.labels[k], v)
			}
		}
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	SetBackend(fb)
	if backend != fb {
		t.Fatal("SetBackend did not replace global backend")
	}
	if err := Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("expected flushCount=1, got %d", fb.flushCount)
	}

	SetBackend(nil)
	if backend != fb {
		t.Fatal("SetBackend(nil) should not change backend")
	}
}

func TestNopBackend(t *testing.T) {
	var b Backend = nopBackend{}
	b.IncCounter(StepTotal, 1, nil)
	b.ObserveHistogram(StepDurationSeconds, 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("nop Flush = %v", err)
	}
}
