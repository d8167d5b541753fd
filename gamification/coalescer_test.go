package gamification

import (
	"sync"
	"testing"
	"time"
)

type sinkCall struct {
	total   int
	summary string
}

type recordingSink struct {
	mu    sync.Mutex
	calls []sinkCall
}

func (r *recordingSink) record(total int, summary string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, sinkCall{total: total, summary: summary})
}

func (r *recordingSink) snapshot() []sinkCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sinkCall, len(r.calls))
	copy(out, r.calls)
	return out
}

func TestCoalescerMergesBurst(t *testing.T) {
	sink := &recordingSink{}
	c := NewCoalescer(40*time.Millisecond, sink.record)

	c.Add(10, "Matéria cadastrada")
	c.Add(10, "Aula adicionada")
	c.Add(5, "Falta registrada")

	time.Sleep(150 * time.Millisecond)

	calls := sink.snapshot()
	if len(calls) != 1 {
		t.Fatalf("sink calls = %d, want 1", len(calls))
	}
	if calls[0].total != 25 {
		t.Errorf("total = %d, want 25", calls[0].total)
	}
	if calls[0].summary != "3 ações" {
		t.Errorf("summary = %q, want %q", calls[0].summary, "3 ações")
	}
}

func TestCoalescerSingleReasonPassesThrough(t *testing.T) {
	sink := &recordingSink{}
	c := NewCoalescer(time.Hour, sink.record)

	c.Add(10, "Matéria cadastrada")
	c.Add(10, "Matéria cadastrada")
	c.Flush()

	calls := sink.snapshot()
	if len(calls) != 1 {
		t.Fatalf("sink calls = %d, want 1", len(calls))
	}
	if calls[0].total != 20 {
		t.Errorf("total = %d, want 20", calls[0].total)
	}
	if calls[0].summary != "Matéria cadastrada" {
		t.Errorf("summary = %q", calls[0].summary)
	}
}

func TestCoalescerQuietTimerRestarts(t *testing.T) {
	sink := &recordingSink{}
	c := NewCoalescer(60*time.Millisecond, sink.record)

	// Keep the stream busy; nothing may flush while grants keep arriving.
	for i := 0; i < 4; i++ {
		c.Add(5, "Falta registrada")
		time.Sleep(20 * time.Millisecond)
	}
	if got := len(sink.snapshot()); got != 0 {
		t.Fatalf("flushed %d times while stream was active", got)
	}

	time.Sleep(150 * time.Millisecond)
	calls := sink.snapshot()
	if len(calls) != 1 {
		t.Fatalf("sink calls = %d, want 1", len(calls))
	}
	if calls[0].total != 20 {
		t.Errorf("total = %d, want 20", calls[0].total)
	}
}

func TestCoalescerFlushWithNothingPendingIsSilent(t *testing.T) {
	sink := &recordingSink{}
	c := NewCoalescer(time.Hour, sink.record)

	c.Flush()
	c.Flush()
	if got := len(sink.snapshot()); got != 0 {
		t.Fatalf("empty flush reached the sink %d times", got)
	}
}

func TestCoalescerCloseFlushesPending(t *testing.T) {
	sink := &recordingSink{}
	c := NewCoalescer(time.Hour, sink.record)

	c.Add(15, "Entrou em uma turma")
	c.Close()

	calls := sink.snapshot()
	if len(calls) != 1 || calls[0].total != 15 {
		t.Fatalf("Close dropped the pending grant: %v", calls)
	}

	// Post-close grants are discarded; the session is gone.
	c.Add(10, "Matéria cadastrada")
	c.Flush()
	if got := len(sink.snapshot()); got != 1 {
		t.Fatalf("grant accepted after Close, sink calls = %d", got)
	}
}

func TestCoalescerZeroQuietUsesDefault(t *testing.T) {
	c := NewCoalescer(0, nil)
	if c.quiet != DefaultQuietPeriod {
		t.Fatalf("quiet = %v, want %v", c.quiet, DefaultQuietPeriod)
	}
}
