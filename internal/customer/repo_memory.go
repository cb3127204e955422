package customer

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory customer repository for tests.
// It applies Filter exactly like the Postgres repository and emulates the
// all-or-nothing contract of Distribute.

type MemoryRepo struct {
	mu        sync.Mutex
	customers map[string]Customer

	// AgentNames resolves assigned agent ids to display names in listings.
	AgentNames map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		customers:  map[string]Customer{},
		AgentNames: map[string]string{},
	}
}

func (r *MemoryRepo) Create(ctx context.Context, c Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.customers {
		if existing.Phone == c.Phone {
			return ErrDuplicatePhone
		}
	}
	r.customers[c.ID] = c
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return Customer{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) GetByPhone(ctx context.Context, phone string) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.Phone == phone {
			return c, nil
		}
	}
	return Customer{}, ErrNotFound
}

func (r *MemoryRepo) Update(ctx context.Context, c Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[c.ID]; !ok {
		return ErrNotFound
	}
	r.customers[c.ID] = c
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, f Filter) ([]ListItem, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]Customer, 0)
	for _, c := range r.customers {
		if matchesFilter(c, f) {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	total := len(matched)
	start := (f.Page - 1) * f.Limit
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}

	out := make([]ListItem, 0, end-start)
	for _, c := range matched[start:end] {
		item := ListItem{Customer: c}
		if c.AssignedAgentID != nil {
			item.AssignedAgent = &AgentRef{
				ID:   *c.AssignedAgentID,
				Name: r.AgentNames[*c.AssignedAgentID],
			}
		}
		out = append(out, item)
	}
	return out, total, nil
}

func matchesFilter(c Customer, f Filter) bool {
	if f.VisibleToAgentID != "" {
		assignedToSelf := c.AssignedAgentID != nil && *c.AssignedAgentID == f.VisibleToAgentID
		if !assignedToSelf && c.IsHidden {
			return false
		}
	}
	if f.AssignedAgentID != "" {
		if c.AssignedAgentID == nil || *c.AssignedAgentID != f.AssignedAgentID {
			return false
		}
	}
	if f.Search != "" {
		nameMatch := strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search))
		phoneMatch := strings.Contains(c.Phone, f.Search)
		if !nameMatch && !phoneMatch {
			return false
		}
	}
	if f.Operator != "" && c.Operator != f.Operator {
		return false
	}
	if f.FilterStatus {
		if f.StatusIsNull {
			if c.LastCallStatus != nil {
				return false
			}
		} else if c.LastCallStatus == nil || *c.LastCallStatus != f.Status {
			return false
		}
	}
	return true
}

func (r *MemoryRepo) HideAll(ctx context.Context, ids []string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if c, ok := r.customers[id]; ok {
			c.IsHidden = true
			c.UpdatedAt = now
			r.customers[id] = c
		}
	}
	return nil
}

func (r *MemoryRepo) AssignAll(ctx context.Context, ids []string, agentID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if c, ok := r.customers[id]; ok {
			target := agentID
			c.AssignedAgentID = &target
			c.UpdatedAt = now
			r.customers[id] = c
		}
	}
	return nil
}

func (r *MemoryRepo) Distribute(ctx context.Context, assignments []Assignment, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// All-or-nothing: verify every target row first.
	for _, a := range assignments {
		if _, ok := r.customers[a.CustomerID]; !ok {
			return ErrNotFound
		}
	}
	for _, a := range assignments {
		c := r.customers[a.CustomerID]
		agentID := a.AgentID
		c.AssignedAgentID = &agentID
		c.UpdatedAt = now
		r.customers[a.CustomerID] = c
	}
	return nil
}
