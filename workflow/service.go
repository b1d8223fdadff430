package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tharaga/lead"
	"tharaga/persona"
	"tharaga/property"
)

// ErrMissingFields signals a dispatch request without the required inputs.
var ErrMissingFields = errors.New("workflow: buyer id, property id, buyer type and readiness score required")

// LeadReader looks up the buyer being contacted.
type LeadReader interface {
	GetByID(ctx context.Context, id string) (lead.Buyer, error)
}

// PropertyReader looks up the listing referenced by the dispatch.
type PropertyReader interface {
	GetByID(ctx context.Context, id string) (property.Listing, error)
}

// Service selects a workflow tier from the readiness score, renders the
// persona message, and persists the dispatch intent. Delivery is an
// external collaborator consuming the record asynchronously.
type Service struct {
	repo       Repository
	leads      LeadReader
	properties PropertyReader
	idGen      func() string
}

// DispatchParams enumerates the inputs to one dispatch.
type DispatchParams struct {
	BuyerID    string
	PropertyID string
	BuyerType  persona.Type
	Score      int
	HasScore   bool
}

func NewService(repo Repository, leads LeadReader, properties PropertyReader) *Service {
	return &Service{
		repo:       repo,
		leads:      leads,
		properties: properties,
		idGen:      func() string { return uuid.NewString() },
	}
}

func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.idGen = gen
	return s
}

// Dispatch validates, resolves buyer and property (failing before any write
// when either is missing), and persists exactly one pending dispatch record.
// There is no idempotency key: re-invoking for the same pair appends a
// duplicate record.
func (s *Service) Dispatch(ctx context.Context, params DispatchParams) (DispatchRecord, error) {
	if params.BuyerID == "" || params.PropertyID == "" || params.BuyerType == "" || !params.HasScore {
		return DispatchRecord{}, ErrMissingFields
	}

	if _, err := s.leads.GetByID(ctx, params.BuyerID); err != nil {
		if errors.Is(err, lead.ErrNotFound) {
			return DispatchRecord{}, err
		}
		return DispatchRecord{}, fmt.Errorf("workflow: resolve buyer: %w", err)
	}

	listing, err := s.properties.GetByID(ctx, params.PropertyID)
	if err != nil {
		if errors.Is(err, property.ErrNotFound) {
			return DispatchRecord{}, err
		}
		return DispatchRecord{}, fmt.Errorf("workflow: resolve property: %w", err)
	}

	tier := TierForScore(params.Score)
	msg := renderMessage(listing, params.BuyerType, tier)

	action := ActionSendEmail
	if tier == TierHigh {
		action = ActionSendWhatsApp
	}

	rec := DispatchRecord{
		ID:         s.idGen(),
		BuyerID:    params.BuyerID,
		PropertyID: params.PropertyID,
		ActionType: action,
		Urgency:    tier.urgencyLabel(),
		Message:    msg,
		Status:     StatusPending,
	}

	return s.repo.Insert(ctx, rec)
}

// MarkOutcome is used by the sending collaborator to report delivery.
func (s *Service) MarkOutcome(ctx context.Context, id string, sent bool, detail string, at time.Time) error {
	if sent {
		return s.repo.MarkSent(ctx, id, detail)
	}
	return s.repo.MarkFailed(ctx, id, detail, at)
}
