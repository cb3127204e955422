package dashboard

import (
	"context"
	"sync"
	"time"
)

// memCustomer carries just the fields the aggregates look at.
type memCustomer struct {
	Hidden       bool
	LastCallDate *time.Time
}

type memCall struct {
	AgentID  string
	Answered bool
}

// MemoryRepo is an in-memory aggregate source for tests.
type MemoryRepo struct {
	mu         sync.Mutex
	customers  []memCustomer
	calls      []memCall
	agentNames map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{agentNames: map[string]string{}}
}

func (r *MemoryRepo) AddAgent(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agentNames[id] = name
}

func (r *MemoryRepo) AddCustomer(hidden bool, lastCall *time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers = append(r.customers, memCustomer{Hidden: hidden, LastCallDate: lastCall})
}

func (r *MemoryRepo) AddCall(agentID string, answered bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, memCall{AgentID: agentID, Answered: answered})
}

func (r *MemoryRepo) CountCalls(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls), nil
}

func (r *MemoryRepo) CountCustomers(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.customers), nil
}

func (r *MemoryRepo) CountInactiveCustomers(ctx context.Context, threshold time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.customers {
		if c.Hidden {
			continue
		}
		if c.LastCallDate == nil || c.LastCallDate.Before(threshold) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) TopAgentByAnswered(ctx context.Context) (*TopAgent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int{}
	for _, c := range r.calls {
		if c.Answered {
			counts[c.AgentID]++
		}
	}
	var top *TopAgent
	for id, n := range counts {
		if top == nil || n > top.AnsweredCalls {
			top = &TopAgent{AgentID: id, Name: r.agentNames[id], AnsweredCalls: n}
		}
	}
	return top, nil
}
