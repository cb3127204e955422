package dashboard

import (
	"context"
	"time"
)

// Repository supplies the individual aggregates. Each count reads committed
// state; the snapshot as a whole is not required to be a single consistent
// point in time.
type Repository interface {
	CountCalls(ctx context.Context) (int, error)
	CountCustomers(ctx context.Context) (int, error)
	// CountInactiveCustomers counts visible (non-hidden) customers whose
	// last call is older than the threshold, or who were never called.
	CountInactiveCustomers(ctx context.Context, threshold time.Time) (int, error)
	// TopAgentByAnswered returns nil when no answered calls exist.
	TopAgentByAnswered(ctx context.Context) (*TopAgent, error)
}

// inactiveAfter is how long a customer can go without a call before they
// count as inactive on the dashboard.
const inactiveAfter = 7 * 24 * time.Hour

// Service assembles dashboard statistics.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	var err error

	if out.TotalCalls, err = s.repo.CountCalls(ctx); err != nil {
		return Stats{}, err
	}
	if out.TotalCustomers, err = s.repo.CountCustomers(ctx); err != nil {
		return Stats{}, err
	}
	threshold := s.clock().UTC().Add(-inactiveAfter)
	if out.InactiveCustomers, err = s.repo.CountInactiveCustomers(ctx, threshold); err != nil {
		return Stats{}, err
	}
	if out.TopAgent, err = s.repo.TopAgentByAnswered(ctx); err != nil {
		return Stats{}, err
	}
	return out, nil
}
