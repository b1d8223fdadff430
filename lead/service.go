package lead

import "context"

// Service exposes business-level buyer lookups.
type Service struct {
	repo Reader
}

func NewService(repo Reader) *Service {
	return &Service{repo: repo}
}

// GetByID returns the buyer for the given identifier.
func (s *Service) GetByID(ctx context.Context, id string) (Buyer, error) {
	return s.repo.GetByID(ctx, id)
}
