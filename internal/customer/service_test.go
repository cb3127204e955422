package customer

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloudconnect/internal/rbac"
)

type stubAgents struct {
	active map[string]bool
}

func (s stubAgents) ActiveAgent(ctx context.Context, id string) (bool, error) {
	return s.active[id], nil
}

func newTestService() (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	agents := stubAgents{active: map[string]bool{"agent-a": true, "agent-b": true}}
	svc := NewService(repo, agents, nil)
	return svc, repo
}

func seed(t *testing.T, repo *MemoryRepo, c Customer) Customer {
	t.Helper()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Unix(1700000000, 0).UTC()
		c.UpdatedAt = c.CreatedAt
	}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("seed customer %s: %v", c.ID, err)
	}
	return c
}

func strPtr(s string) *string { return &s }

func TestCreate_AgentSelfAssignsOnIntake(t *testing.T) {
	svc, _ := newTestService()

	c, err := svc.Create(context.Background(), "agent-a", rbac.RoleAgent, CreateRequest{Name: "Acme", Phone: "+33100000001"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.AssignedAgentID == nil || *c.AssignedAgentID != "agent-a" {
		t.Fatalf("expected self-assignment, got %+v", c.AssignedAgentID)
	}
}

func TestCreate_AdminLeavesUnassigned(t *testing.T) {
	svc, _ := newTestService()

	c, err := svc.Create(context.Background(), "admin-1", rbac.RoleAdmin, CreateRequest{Name: "Acme", Phone: "+33100000001"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.AssignedAgentID != nil {
		t.Fatalf("expected unassigned, got %+v", c.AssignedAgentID)
	}
}

func TestCreate_DuplicatePhoneLeavesNoRecord(t *testing.T) {
	svc, repo := newTestService()

	if _, err := svc.Create(context.Background(), "admin-1", rbac.RoleAdmin, CreateRequest{Name: "First", Phone: "+33100000001"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(context.Background(), "admin-1", rbac.RoleAdmin, CreateRequest{Name: "Second", Phone: "+33100000001"})
	if !errors.Is(err, ErrDuplicatePhone) {
		t.Fatalf("expected ErrDuplicatePhone, got %v", err)
	}

	items, total, err := repo.List(context.Background(), Filter{Page: 1, Limit: 50})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Name != "First" {
		t.Fatalf("expected only the first record, got total=%d items=%+v", total, items)
	}
}

func TestList_AgentNeverSeesForeignHiddenCustomers(t *testing.T) {
	svc, repo := newTestService()
	seed(t, repo, Customer{ID: "c1", Name: "Own hidden", Phone: "1", AssignedAgentID: strPtr("agent-a"), IsHidden: true})
	seed(t, repo, Customer{ID: "c2", Name: "Foreign hidden", Phone: "2", AssignedAgentID: strPtr("agent-b"), IsHidden: true})
	seed(t, repo, Customer{ID: "c3", Name: "Pool", Phone: "3"})

	page, err := svc.List(context.Background(), rbac.RoleAgent, "agent-a", Query{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected own hidden + pool, got %+v", page)
	}
	for _, item := range page.Data {
		if item.ID == "c2" {
			t.Fatalf("agent must not see a foreign hidden customer")
		}
	}
}

func TestList_TotalCountsFilteredSet(t *testing.T) {
	svc, repo := newTestService()
	for i := 0; i < 5; i++ {
		seed(t, repo, Customer{ID: string(rune('a' + i)), Name: "Acme", Phone: string(rune('0' + i))})
	}
	seed(t, repo, Customer{ID: "other", Name: "Beta", Phone: "99"})

	page, err := svc.List(context.Background(), rbac.RoleAdmin, "admin-1", Query{Search: "acme", Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 5 {
		t.Fatalf("expected filtered total 5, got %d", page.Total)
	}
	if len(page.Data) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page.Data))
	}
}

func TestUpdate_ClosedFieldSet(t *testing.T) {
	svc, repo := newTestService()
	seed(t, repo, Customer{ID: "c1", Name: "Acme", Phone: "1"})

	hidden := true
	got, err := svc.Update(context.Background(), "c1", UpdateCommand{
		Notes:           strPtr("called twice"),
		AssignedAgentID: strPtr("agent-a"),
		IsHidden:        &hidden,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Notes != "called twice" || got.AssignedAgentID == nil || *got.AssignedAgentID != "agent-a" || !got.IsHidden {
		t.Fatalf("unexpected customer: %+v", got)
	}

	// Clearing the assignment.
	got, err = svc.Update(context.Background(), "c1", UpdateCommand{AssignedAgentID: strPtr("")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.AssignedAgentID != nil {
		t.Fatalf("expected cleared assignment, got %+v", got.AssignedAgentID)
	}
}

func TestUpdate_RejectsUnknownAgent(t *testing.T) {
	svc, repo := newTestService()
	seed(t, repo, Customer{ID: "c1", Name: "Acme", Phone: "1"})

	_, err := svc.Update(context.Background(), "c1", UpdateCommand{AssignedAgentID: strPtr("ghost")})
	if !errors.Is(err, ErrUnknownAgent) {
		t.Fatalf("expected ErrUnknownAgent, got %v", err)
	}
}

func TestBulk_DistributeRoundRobin(t *testing.T) {
	svc, repo := newTestService()
	for _, id := range []string{"c1", "c2", "c3", "c4"} {
		seed(t, repo, Customer{ID: id, Name: id, Phone: id})
	}

	err := svc.Bulk(context.Background(), "admin-1", BulkRequest{
		Action:         BulkActionDistribute,
		IDs:            []string{"c1", "c2", "c3", "c4"},
		TargetAgentIDs: []string{"agent-a", "agent-b"},
	})
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}

	want := map[string]string{"c1": "agent-a", "c2": "agent-b", "c3": "agent-a", "c4": "agent-b"}
	for id, agent := range want {
		c, _ := repo.GetByID(context.Background(), id)
		if c.AssignedAgentID == nil || *c.AssignedAgentID != agent {
			t.Fatalf("customer %s: expected %s, got %+v", id, agent, c.AssignedAgentID)
		}
	}
}

func TestBulk_DistributeAtomicOnMissingCustomer(t *testing.T) {
	svc, repo := newTestService()
	seed(t, repo, Customer{ID: "c1", Name: "c1", Phone: "1"})

	err := svc.Bulk(context.Background(), "admin-1", BulkRequest{
		Action:         BulkActionDistribute,
		IDs:            []string{"c1", "missing"},
		TargetAgentIDs: []string{"agent-a"},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	c, _ := repo.GetByID(context.Background(), "c1")
	if c.AssignedAgentID != nil {
		t.Fatalf("expected no partial distribution, got %+v", c.AssignedAgentID)
	}
}

func TestBulk_HideIsIdempotent(t *testing.T) {
	svc, repo := newTestService()
	seed(t, repo, Customer{ID: "c1", Name: "c1", Phone: "1"})
	seed(t, repo, Customer{ID: "c2", Name: "c2", Phone: "2"})

	req := BulkRequest{Action: BulkActionHide, IDs: []string{"c1", "c2"}}
	if err := svc.Bulk(context.Background(), "admin-1", req); err != nil {
		t.Fatalf("first hide: %v", err)
	}
	if err := svc.Bulk(context.Background(), "admin-1", req); err != nil {
		t.Fatalf("second hide must still succeed: %v", err)
	}
	for _, id := range req.IDs {
		c, _ := repo.GetByID(context.Background(), id)
		if !c.IsHidden {
			t.Fatalf("customer %s: expected hidden", id)
		}
	}
}

func TestBulk_RejectsInvalidRequests(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []BulkRequest{
		{Action: BulkActionHide, IDs: nil},
		{Action: BulkActionHide, IDs: []string{""}},
		{Action: BulkActionTransfer, IDs: []string{"c1"}},
		{Action: BulkActionDistribute, IDs: []string{"c1"}},
		{Action: "archive", IDs: []string{"c1"}},
	}
	for i, req := range cases {
		if err := svc.Bulk(ctx, "admin-1", req); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("case %d: expected ErrInvalidArgument, got %v", i, err)
		}
	}
}

func TestBulk_TransferRejectsUnknownAgent(t *testing.T) {
	svc, repo := newTestService()
	seed(t, repo, Customer{ID: "c1", Name: "c1", Phone: "1"})

	err := svc.Bulk(context.Background(), "admin-1", BulkRequest{
		Action:        BulkActionTransfer,
		IDs:           []string{"c1"},
		TargetAgentID: "ghost",
	})
	if !errors.Is(err, ErrUnknownAgent) {
		t.Fatalf("expected ErrUnknownAgent, got %v", err)
	}
}

func TestImport_CountsDuplicates(t *testing.T) {
	svc, repo := newTestService()
	seed(t, repo, Customer{ID: "e1", Name: "Existing 1", Phone: "+101"})
	seed(t, repo, Customer{ID: "e2", Name: "Existing 2", Phone: "+102"})

	records := []ImportRecord{
		{Name: "New 1", Phone: "+201"},
		{Name: "Dup 1", Phone: "+101"},
		{Name: "New 2", Phone: "+202"},
		{Name: "Dup 2", Phone: "+102"},
		{Name: "New 3", Phone: "+203"},
	}
	res, err := svc.Import(context.Background(), "admin-1", records)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 3 || res.Duplicates != 2 {
		t.Fatalf("expected {3,2}, got %+v", res)
	}

	_, total, err := repo.List(context.Background(), Filter{Page: 1, Limit: 50})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected 2 existing + 3 imported, got %d", total)
	}
}

func TestImport_DefaultsOperatorAndStaysUnassigned(t *testing.T) {
	svc, repo := newTestService()

	if _, err := svc.Import(context.Background(), "admin-1", []ImportRecord{{Name: "X", Phone: "+300"}}); err != nil {
		t.Fatalf("import: %v", err)
	}
	c, err := repo.GetByPhone(context.Background(), "+300")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c.Operator != "Unknown" {
		t.Fatalf("expected default operator, got %q", c.Operator)
	}
	if c.AssignedAgentID != nil {
		t.Fatalf("imported customers start unassigned, got %+v", c.AssignedAgentID)
	}
}

func TestImport_MalformedRecordFailsBeforeAnyWrite(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.Import(context.Background(), "admin-1", []ImportRecord{
		{Name: "Good", Phone: "+400"},
		{Name: "", Phone: "+401"},
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, total, _ := repo.List(context.Background(), Filter{Page: 1, Limit: 50}); total != 0 {
		t.Fatalf("expected no writes, got %d rows", total)
	}
}
