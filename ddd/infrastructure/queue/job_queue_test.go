package queue

import (
	"context"
	"testing"
	"time"
)

func TestMemoryJobQueueFIFO(t *testing.T) {
	q := NewMemoryJobQueue(10)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := q.Enqueue(ctx, id); err != nil {
			t.Fatalf("enqueue %s: %v", id, err)
		}
	}
	if q.Size() != 3 {
		t.Errorf("size = %d, want 3", q.Size())
	}

	for _, want := range []string{"a", "b", "c"} {
		got, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue: %v", err)
		}
		if got != want {
			t.Errorf("dequeue = %q, want %q", got, want)
		}
	}
	if !q.IsEmpty() {
		t.Error("queue should be empty")
	}
}

func TestMemoryJobQueueRejectsEmptyUUID(t *testing.T) {
	q := NewMemoryJobQueue(10)
	if err := q.Enqueue(context.Background(), ""); err == nil {
		t.Error("empty uuid should be rejected")
	}
}

func TestMemoryJobQueueFull(t *testing.T) {
	q := NewMemoryJobQueue(1)
	ctx := context.Background()
	if err := q.Enqueue(ctx, "a"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, "b"); err == nil {
		t.Error("enqueue past capacity should fail")
	}
}

func TestMemoryJobQueueTryDequeue(t *testing.T) {
	q := NewMemoryJobQueue(10)
	ctx := context.Background()

	got, err := q.TryDequeue(ctx)
	if err != nil || got != "" {
		t.Errorf("empty queue TryDequeue = (%q, %v), want empty", got, err)
	}

	_ = q.Enqueue(ctx, "a")
	got, err = q.TryDequeue(ctx)
	if err != nil || got != "a" {
		t.Errorf("TryDequeue = (%q, %v), want a", got, err)
	}
}

func TestMemoryJobQueueDequeueHonorsContext(t *testing.T) {
	q := NewMemoryJobQueue(10)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := q.Dequeue(ctx); err == nil {
		t.Error("dequeue on empty queue should fail when context expires")
	}
}

func TestMemoryJobQueueClose(t *testing.T) {
	q := NewMemoryJobQueue(10)
	ctx := context.Background()
	_ = q.Enqueue(ctx, "a")

	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("queue should report closed")
	}
	if err := q.Enqueue(ctx, "b"); err == nil {
		t.Error("enqueue after close should fail")
	}
	if _, err := q.Dequeue(ctx); err == nil {
		t.Error("dequeue after close should fail")
	}
	// 重复关闭无害
	if err := q.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestMemoryJobQueueMetrics(t *testing.T) {
	q := NewMemoryJobQueue(5).(*MemoryJobQueue)
	ctx := context.Background()
	_ = q.Enqueue(ctx, "a")
	_ = q.Enqueue(ctx, "b")
	_, _ = q.Dequeue(ctx)

	m := q.GetMetrics()
	if m.EnqueueCount != 2 || m.DequeueCount != 1 {
		t.Errorf("metrics = %+v", m)
	}
	if m.CurrentSize != 1 || m.MaxSize != 5 {
		t.Errorf("metrics sizes = %+v", m)
	}
}
