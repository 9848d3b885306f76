package log

import (
	"sync"
	"testing"
)

type recordingLogger struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingLogger) Log(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingLogger) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NoopLogger{}
	l.Log(Event{EventID: "x"})
}

func TestLoggerFunc(t *testing.T) {
	var got string
	l := LoggerFunc(func(e Event) { got = e.EventID })
	l.Log(Event{EventID: "abc"})
	if got != "abc" {
		t.Errorf("got %q, want %q", got, "abc")
	}
}

func TestMultiLoggerFansOut(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}
	m := NewMultiLogger(a, nil, b)

	m.Log(Event{EventID: "1"})
	m.Log(Event{EventID: "2"})

	if a.count() != 2 || b.count() != 2 {
		t.Errorf("counts = %d, %d, want 2, 2", a.count(), b.count())
	}
}

func TestMultiLoggerConcurrent(t *testing.T) {
	r := &recordingLogger{}
	m := NewMultiLogger(r)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Log(Event{})
		}()
	}
	wg.Wait()

	if r.count() != 50 {
		t.Errorf("count = %d, want 50", r.count())
	}
}
