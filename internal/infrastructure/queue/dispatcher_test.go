package queue

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"

	"github.com/bookly/booking-platform/internal/api/metrics"
	"github.com/bookly/booking-platform/internal/core/domain"
)

type collectingService struct {
	mu      sync.Mutex
	seen    []domain.Activity
	ctxErrs []error
	fail    bool
	block   chan struct{}
	done    chan struct{}
}

func (s *collectingService) Process(ctx context.Context, a domain.Activity) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	s.seen = append(s.seen, a)
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	s.mu.Unlock()
	if s.done != nil {
		s.done <- struct{}{}
	}
	if s.fail {
		return errors.New("insert failed")
	}
	return nil
}

func (s *collectingService) snapshot() []domain.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Activity(nil), s.seen...)
}

func waitFor(t *testing.T, done <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for record %d", i+1)
		}
	}
}

func droppedTotal(t *testing.T) float64 {
	t.Helper()
	var m dto.Metric
	if err := metrics.ActivityDroppedTotal.Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func shutdown(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestDispatcher_PreservesPerEmailOrder(t *testing.T) {
	svc := &collectingService{}
	d := NewDispatcher(3, svc, zerolog.New(io.Discard))
	d.Start()

	kinds := []domain.ActivityKind{
		domain.ActivityLoginSucceeded,
		domain.ActivityTokenRefreshed,
		domain.ActivityLogout,
	}
	for _, k := range kinds {
		d.Record(domain.Activity{Email: "alice@example.com", Kind: k})
	}
	d.Record(domain.Activity{Email: "bob@example.com", Kind: domain.ActivityLoginFailed})

	shutdown(t, d)

	var alice []domain.ActivityKind
	for _, a := range svc.snapshot() {
		if a.Email == "alice@example.com" {
			alice = append(alice, a.Kind)
		}
	}
	if len(alice) != len(kinds) {
		t.Fatalf("expected %d records for alice, got %d", len(kinds), len(alice))
	}
	for i := range kinds {
		if alice[i] != kinds[i] {
			t.Fatalf("order broken at %d: got %s want %s", i, alice[i], kinds[i])
		}
	}
}

func TestDispatcher_ShutdownDrainsQueuedRecords(t *testing.T) {
	svc := &collectingService{block: make(chan struct{})}
	d := NewDispatcher(1, svc, zerolog.New(io.Discard))
	d.Start()

	const n = 10
	for i := 0; i < n; i++ {
		d.Record(domain.Activity{Email: "alice@example.com", Kind: domain.ActivityLoginFailed})
	}

	result := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		result <- d.Shutdown(ctx)
	}()

	// The worker is still stuck on the first record while shutdown starts.
	time.Sleep(20 * time.Millisecond)
	close(svc.block)

	if err := <-result; err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if got := len(svc.snapshot()); got != n {
		t.Fatalf("expected %d persisted records, got %d", n, got)
	}
	for i, err := range svc.ctxErrs {
		if err != nil {
			t.Fatalf("record %d processed with a dead context: %v", i, err)
		}
	}
}

func TestDispatcher_ShutdownHonoursDeadline(t *testing.T) {
	svc := &collectingService{block: make(chan struct{})}
	d := NewDispatcher(1, svc, zerolog.New(io.Discard))
	d.Start()
	defer close(svc.block)

	d.Record(domain.Activity{Email: "alice@example.com", Kind: domain.ActivityLoginFailed})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestDispatcher_RecordAfterShutdownIsDropped(t *testing.T) {
	d := NewDispatcher(2, &collectingService{}, zerolog.New(io.Discard))
	d.Start()
	shutdown(t, d)

	before := droppedTotal(t)
	d.Record(domain.Activity{Email: "late@example.com", Kind: domain.ActivityLogout})
	if got := droppedTotal(t) - before; got != 1 {
		t.Fatalf("expected one dropped record, got %v", got)
	}

	// A second shutdown is harmless.
	shutdown(t, d)
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &collectingService{}, zerolog.New(io.Discard))

	a := d.shardIndex("Alice@Example.com")
	b := d.shardIndex("alice@example.com")
	if a != b {
		t.Fatalf("email casing must not change the shard: %d vs %d", a, b)
	}
	if a < 0 || a >= 8 {
		t.Fatalf("shard out of range: %d", a)
	}
}

func TestDispatcher_RecordDropsWhenFull(t *testing.T) {
	svc := &collectingService{}
	d := NewDispatcher(1, svc, zerolog.New(io.Discard))

	before := droppedTotal(t)

	// Workers are not started, so the single channel fills up.
	for i := 0; i < channelBuffer; i++ {
		d.Record(domain.Activity{Email: "alice@example.com", Kind: domain.ActivityLoginFailed})
	}

	returned := make(chan struct{})
	go func() {
		d.Record(domain.Activity{Email: "alice@example.com", Kind: domain.ActivityLoginFailed})
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatalf("Record blocked on a full queue")
	}

	if got := droppedTotal(t) - before; got != 1 {
		t.Fatalf("expected one dropped record, got %v", got)
	}
}

func TestDispatcher_ProcessingErrorDoesNotStopWorker(t *testing.T) {
	svc := &collectingService{fail: true, done: make(chan struct{}, 4)}
	d := NewDispatcher(1, svc, zerolog.New(io.Discard))
	d.Start()
	defer shutdown(t, d)

	d.Record(domain.Activity{Email: "a@example.com", Kind: domain.ActivityLoginFailed})
	d.Record(domain.Activity{Email: "a@example.com", Kind: domain.ActivityLoginFailed})

	waitFor(t, svc.done, 2)
	if got := len(svc.snapshot()); got != 2 {
		t.Fatalf("expected both records to be processed, got %d", got)
	}
}
