package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSender) Send(_ context.Context, rec DispatchRecord) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	f.sent = append(f.sent, rec.ID)
	f.mu.Unlock()
	return "provider-" + rec.ID, nil
}

func failedRecord(id, reason string) DispatchRecord {
	return DispatchRecord{
		ID:            id,
		Status:        StatusFailed,
		FailureReason: &reason,
	}
}

func TestRetryQueue_EmptyScan(t *testing.T) {
	repo := &fakeDispatchRepo{}
	q := NewRetryQueue(repo, &fakeSender{})

	stats, err := q.Process(context.Background())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if stats.Scanned != 0 || stats.Sent != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRetryQueue_SendsRetryableCandidates(t *testing.T) {
	repo := &fakeDispatchRepo{
		candidates: []DispatchRecord{
			failedRecord("d1", "smtp timeout"),
			failedRecord("d2", "connection reset"),
		},
	}
	sender := &fakeSender{}
	q := NewRetryQueue(repo, sender)

	stats, err := q.Process(context.Background())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if stats.Scanned != 2 || stats.Sent != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(repo.sent) != 2 {
		t.Fatalf("expected both records marked sent, got %v", repo.sent)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected both records sent, got %v", sender.sent)
	}
}

func TestRetryQueue_PermanentFailures(t *testing.T) {
	repo := &fakeDispatchRepo{
		candidates: []DispatchRecord{
			failedRecord("d1", "550 recipient address rejected"),
			failedRecord("d2", "invalid email: no mx records"),
		},
	}
	sender := &fakeSender{}
	q := NewRetryQueue(repo, sender)

	stats, err := q.Process(context.Background())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if stats.Permanent != 2 {
		t.Fatalf("expected 2 permanent failures, got %+v", stats)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("permanent failures must not be re-sent, got %v", sender.sent)
	}
	if len(repo.permanent) != 2 {
		t.Fatalf("expected both parked permanently, got %v", repo.permanent)
	}
}

func TestRetryQueue_RateLimitedDeferred(t *testing.T) {
	repo := &fakeDispatchRepo{
		candidates: []DispatchRecord{failedRecord("d1", "provider rate limit exceeded")},
	}
	sender := &fakeSender{}
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	q := NewRetryQueue(repo, sender).WithClock(func() time.Time { return now })

	stats, err := q.Process(context.Background())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if stats.Deferred != 1 {
		t.Fatalf("expected deferral, got %+v", stats)
	}
	if len(sender.sent) != 0 {
		t.Fatal("rate-limited record must not be sent this pass")
	}
	if len(repo.deferred) != 1 {
		t.Fatalf("expected retry scheduled, got %v", repo.deferred)
	}
}

func TestRetryQueue_SendFailureMarksFailedAgain(t *testing.T) {
	repo := &fakeDispatchRepo{
		candidates: []DispatchRecord{failedRecord("d1", "smtp timeout")},
	}
	sender := &fakeSender{err: errors.New("still down")}
	q := NewRetryQueue(repo, sender)

	stats, err := q.Process(context.Background())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if stats.Failed != 1 {
		t.Fatalf("expected failed-again count, got %+v", stats)
	}
	if len(repo.failed) != 1 {
		t.Fatalf("expected record marked failed, got %v", repo.failed)
	}
}

func TestRetryQueue_ListErrorSurfaces(t *testing.T) {
	repo := &fakeDispatchRepo{listErr: errors.New("query failed")}
	q := NewRetryQueue(repo, &fakeSender{})

	if _, err := q.Process(context.Background()); err == nil {
		t.Fatal("expected scan error to surface")
	}
}
