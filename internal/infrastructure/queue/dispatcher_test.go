package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tasklane/task-api/internal/core/domain"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []domain.TaskEvent
	err    error
	block  chan struct{}
}

func (r *recordingRepo) Insert(_ context.Context, e domain.TaskEvent) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *recordingRepo) snapshot() []domain.TaskEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.TaskEvent(nil), r.events...)
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingRepo{}, zerolog.Nop())

	for id := int64(1); id < 100; id++ {
		first := d.shardIndex(id)
		if first < 0 || first >= 8 {
			t.Fatalf("shard %d out of range for task %d", first, id)
		}
		if d.shardIndex(id) != first {
			t.Fatalf("shard for task %d is not deterministic", id)
		}
	}
}

func TestDispatcher_DefaultWorkers(t *testing.T) {
	d := NewDispatcher(0, &recordingRepo{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Errorf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}

func TestDispatcher_PreservesPerTaskOrder(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(4, repo, zerolog.Nop())
	d.Start(context.Background())

	actions := []domain.TaskAction{domain.ActionCreated, domain.ActionUpdated, domain.ActionDeleted, domain.ActionRestored}
	for _, a := range actions {
		d.Record(domain.TaskEvent{TaskID: 7, OwnerID: 1, Action: a})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	got := repo.snapshot()
	if len(got) != len(actions) {
		t.Fatalf("expected %d events, got %d", len(actions), len(got))
	}
	for i, e := range got {
		if e.Action != actions[i] {
			t.Errorf("event %d: want %s, got %s", i, actions[i], e.Action)
		}
	}
}

func TestDispatcher_RecordAfterStopIsDropped(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())
	d.Start(context.Background())

	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	// Must neither panic on the closed channel nor block.
	d.Record(domain.TaskEvent{TaskID: 1, Action: domain.ActionCreated})

	if len(repo.snapshot()) != 0 {
		t.Error("event recorded after stop must be dropped")
	}
	if err := d.Stop(context.Background()); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestDispatcher_FullQueueDoesNotBlock(t *testing.T) {
	repo := &recordingRepo{block: make(chan struct{})}
	d := NewDispatcher(1, repo, zerolog.Nop())
	d.Start(context.Background())

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Record(domain.TaskEvent{TaskID: 1, Action: domain.ActionUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on a full queue")
	}

	close(repo.block)
	_ = d.Stop(context.Background())
}

func TestDispatcher_WriteErrorIsSwallowed(t *testing.T) {
	repo := &recordingRepo{err: errors.New("db unavailable")}
	d := NewDispatcher(1, repo, zerolog.Nop())
	d.Start(context.Background())

	d.Record(domain.TaskEvent{TaskID: 1, Action: domain.ActionCreated})
	d.Record(domain.TaskEvent{TaskID: 1, Action: domain.ActionDeleted})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		t.Fatalf("worker must survive write errors, Stop() error = %v", err)
	}
}
