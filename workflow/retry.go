package workflow

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	retryBatchSize    = 50
	retryMaxParallel  = 4
	rateLimitDeferral = 30 * time.Minute
)

// Sender delivers one dispatch record over its chosen channel. Actual
// provider integration lives outside this service.
type Sender interface {
	Send(ctx context.Context, rec DispatchRecord) (providerMessageID string, err error)
}

// RetryStats summarizes one retry-queue pass.
type RetryStats struct {
	Scanned   int
	Sent      int
	Deferred  int
	Permanent int
	Failed    int
}

// RetryQueue re-attempts failed dispatches on fixed backoff windows
// (5, 15, 60 minutes by attempt count, capped at 3 attempts).
type RetryQueue struct {
	repo   Repository
	sender Sender
	now    func() time.Time
}

func NewRetryQueue(repo Repository, sender Sender) *RetryQueue {
	return &RetryQueue{
		repo:   repo,
		sender: sender,
		now:    time.Now,
	}
}

func (q *RetryQueue) WithClock(now func() time.Time) *RetryQueue {
	q.now = now
	return q
}

// Process scans one batch of retry candidates and fans the sends out with
// bounded concurrency. Non-retryable failures are parked permanently,
// rate-limited ones are deferred, the rest are re-sent immediately.
func (q *RetryQueue) Process(ctx context.Context) (RetryStats, error) {
	now := q.now()
	candidates, err := q.repo.ListRetryCandidates(ctx, now, retryBatchSize)
	if err != nil {
		return RetryStats{}, err
	}

	stats := RetryStats{Scanned: len(candidates)}
	if len(candidates) == 0 {
		return stats, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(retryMaxParallel)

	for _, rec := range candidates {
		rec := rec
		g.Go(func() error {
			outcome, err := q.retryOne(gctx, rec, now)
			if err != nil {
				return err
			}
			mu.Lock()
			switch outcome {
			case retrySent:
				stats.Sent++
			case retryDeferred:
				stats.Deferred++
			case retryPermanent:
				stats.Permanent++
			case retryFailedAgain:
				stats.Failed++
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

type retryOutcome int

const (
	retrySent retryOutcome = iota
	retryDeferred
	retryPermanent
	retryFailedAgain
)

func (q *RetryQueue) retryOne(ctx context.Context, rec DispatchRecord, now time.Time) (retryOutcome, error) {
	reason := ""
	if rec.FailureReason != nil {
		reason = strings.ToLower(*rec.FailureReason)
	}

	if !retryable(reason) {
		if err := q.repo.MarkPermanentFailure(ctx, rec.ID); err != nil {
			return 0, err
		}
		return retryPermanent, nil
	}

	if strings.Contains(reason, "rate limit") {
		if err := q.repo.ScheduleRetry(ctx, rec.ID, now.Add(rateLimitDeferral)); err != nil {
			return 0, err
		}
		return retryDeferred, nil
	}

	providerID, err := q.sender.Send(ctx, rec)
	if err != nil {
		if markErr := q.repo.MarkFailed(ctx, rec.ID, err.Error(), now); markErr != nil {
			return 0, markErr
		}
		return retryFailedAgain, nil
	}

	if err := q.repo.MarkSent(ctx, rec.ID, providerID); err != nil {
		return 0, err
	}
	return retrySent, nil
}

func retryable(reason string) bool {
	return !strings.Contains(reason, "recipient address rejected") &&
		!strings.Contains(reason, "invalid email") &&
		!strings.Contains(reason, "invalid phone")
}
