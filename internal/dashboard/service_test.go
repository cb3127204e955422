package dashboard

import (
	"context"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStats_Empty(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	got, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if got.TotalCalls != 0 || got.TotalCustomers != 0 || got.InactiveCustomers != 0 {
		t.Fatalf("expected zero counts, got %+v", got)
	}
	if got.TopAgent != nil {
		t.Fatalf("expected nil top agent, got %+v", got.TopAgent)
	}
}

func TestStats_InactiveThreshold(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-24 * time.Hour)
	stale := now.Add(-8 * 24 * time.Hour)

	repo := NewMemoryRepo()
	repo.AddCustomer(false, &recent) // active
	repo.AddCustomer(false, &stale)  // inactive
	repo.AddCustomer(false, nil)     // never called, inactive
	repo.AddCustomer(true, &stale)   // hidden, excluded

	svc := NewService(repo)
	svc.clock = fixedClock(now)

	got, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if got.TotalCustomers != 4 {
		t.Fatalf("expected 4 customers, got %d", got.TotalCustomers)
	}
	if got.InactiveCustomers != 2 {
		t.Fatalf("expected 2 inactive customers, got %d", got.InactiveCustomers)
	}
}

func TestStats_TopAgentByAnsweredOnly(t *testing.T) {
	repo := NewMemoryRepo()
	repo.AddAgent("a1", "Alice")
	repo.AddAgent("a2", "Bob")

	// a2 places more calls overall, a1 answers more.
	repo.AddCall("a1", true)
	repo.AddCall("a1", true)
	repo.AddCall("a2", true)
	repo.AddCall("a2", false)
	repo.AddCall("a2", false)

	svc := NewService(repo)
	got, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if got.TotalCalls != 5 {
		t.Fatalf("expected 5 calls, got %d", got.TotalCalls)
	}
	if got.TopAgent == nil || got.TopAgent.AgentID != "a1" {
		t.Fatalf("expected top agent a1, got %+v", got.TopAgent)
	}
	if got.TopAgent.Name != "Alice" || got.TopAgent.AnsweredCalls != 2 {
		t.Fatalf("unexpected top agent details: %+v", got.TopAgent)
	}
}

func TestStats_NoAnsweredCallsMeansNoTopAgent(t *testing.T) {
	repo := NewMemoryRepo()
	repo.AddAgent("a1", "Alice")
	repo.AddCall("a1", false)

	svc := NewService(repo)
	got, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if got.TotalCalls != 1 {
		t.Fatalf("expected 1 call, got %d", got.TotalCalls)
	}
	if got.TopAgent != nil {
		t.Fatalf("expected nil top agent, got %+v", got.TopAgent)
	}
}
