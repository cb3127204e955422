package customer

import "cloudconnect/internal/rbac"

// Query is the caller-supplied customer query before role scoping.
type Query struct {
	// Search matches name (case-insensitive substring) or phone (substring).
	Search string
	// Operator filters by carrier tag; "" or "All" means no filter.
	Operator string
	// Status filters by last call status; "" or "All" means no filter,
	// "None" means no call recorded yet (null status).
	Status string
	// AgentID filters by assigned agent. Only honored for admins.
	AgentID string

	// Pagination, 1-indexed.
	Page  int
	Limit int
}

const defaultPageSize = 50

// Filter is the storage-level filter produced by the visibility policy.
// Repositories interpret it; they must not re-apply role rules.
type Filter struct {
	// VisibleToAgentID, when set, scopes rows to
	// (assigned_agent_id == this) OR (is_hidden == false).
	// This is a disjunction: an agent sees their own assignments even when
	// hidden, plus the shared unhidden pool.
	VisibleToAgentID string

	// AssignedAgentID, when set, restricts to rows assigned to this agent.
	// Admin-only; never combined with VisibleToAgentID.
	AssignedAgentID string

	Search   string
	Operator string

	// FilterStatus applies the last-call-status condition: when StatusIsNull
	// is true it matches rows with no recorded call, otherwise it matches
	// Status exactly.
	FilterStatus bool
	StatusIsNull bool
	Status       string

	Page  int
	Limit int
}

// ScopedFilter is the visibility policy: a pure function from
// (role, self id, query) to a storage filter.
//
// ADMIN is unrestricted and may filter by a specific assigned agent.
// AGENT is restricted to their own assignments plus the unhidden pool.
func ScopedFilter(role, selfID string, q Query) Filter {
	f := Filter{
		Search:   q.Search,
		Operator: q.Operator,
		Page:     q.Page,
		Limit:    q.Limit,
	}

	if role == rbac.RoleAdmin {
		f.AssignedAgentID = q.AgentID
	} else {
		f.VisibleToAgentID = selfID
	}

	if q.Operator == "All" {
		f.Operator = ""
	}

	switch q.Status {
	case "", "All":
		// no status filter
	case "None":
		f.FilterStatus = true
		f.StatusIsNull = true
	default:
		f.FilterStatus = true
		f.Status = q.Status
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}

	return f
}
