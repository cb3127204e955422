package calls

import (
	"context"
	"sync"
	"time"
)

// CustomerMetrics mirrors the derived call fields on a customer row.
type CustomerMetrics struct {
	LastCallDate   time.Time
	LastCallStatus Status
	ContactCount   int
}

// MemoryRepo is an in-memory recording repository for tests. The log append
// and metric update happen under one lock, mirroring the transactional
// contract of the Postgres repository.

type MemoryRepo struct {
	mu      sync.Mutex
	logs    []CallLog
	metrics map[string]CustomerMetrics
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{metrics: map[string]CustomerMetrics{}}
}

// AddCustomer registers a customer id so Record can find it.
func (r *MemoryRepo) AddCustomer(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.metrics[id]; !ok {
		r.metrics[id] = CustomerMetrics{}
	}
}

func (r *MemoryRepo) Record(ctx context.Context, log CallLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.metrics[log.CustomerID]
	if !ok {
		return ErrNotFound
	}

	r.logs = append(r.logs, log)
	m.LastCallDate = log.CreatedAt
	m.LastCallStatus = log.Status
	if log.Status == StatusAnswered {
		m.ContactCount++
	}
	r.metrics[log.CustomerID] = m
	return nil
}

func (r *MemoryRepo) Logs() []CallLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CallLog, len(r.logs))
	copy(out, r.logs)
	return out
}

func (r *MemoryRepo) Metrics(customerID string) CustomerMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.metrics[customerID]
}
