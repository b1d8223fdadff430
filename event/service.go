package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service records behavioral signal events reported by the front end.
type Service struct {
	repo  Repository
	now   func() time.Time
	idGen func() string
}

// TrackParams enumerates the fields accepted from the instrumentation call.
type TrackParams struct {
	BuyerID    string
	PropertyID string
	SessionID  string
	Type       Type
	Metadata   map[string]any
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		now:   time.Now,
		idGen: func() string { return uuid.NewString() },
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.idGen = gen
	return s
}

// Track persists one event. The session id is generated when the caller did
// not carry one across page loads, and the time-of-day bucket is derived
// from the event timestamp so the contact-time estimator can tally it later.
func (s *Service) Track(ctx context.Context, params TrackParams) (Signal, error) {
	if params.BuyerID == "" {
		return Signal{}, fmt.Errorf("event: missing buyer id")
	}
	if params.Type == "" {
		return Signal{}, fmt.Errorf("event: missing event type")
	}

	sessionID := params.SessionID
	if sessionID == "" {
		sessionID = s.idGen()
	}

	metadata := params.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	occurredAt := s.now()

	sig := Signal{
		BuyerID:    params.BuyerID,
		PropertyID: params.PropertyID,
		SessionID:  sessionID,
		Type:       params.Type,
		Metadata:   metadata,
		TimeOfDay:  occurredAt.Format("15:04"),
		OccurredAt: occurredAt,
	}

	return s.repo.Insert(ctx, sig)
}
