package dashboard

// TopAgent is the agent with the most ANSWERED calls, nil when no calls
// have been answered yet.
type TopAgent struct {
	AgentID       string `json:"agent_id"`
	Name          string `json:"name"`
	AnsweredCalls int    `json:"answered_calls"`
}

// Stats is the aggregate snapshot served on the dashboard.
type Stats struct {
	TotalCalls        int       `json:"total_calls"`
	TotalCustomers    int       `json:"total_customers"`
	InactiveCustomers int       `json:"inactive_customers"`
	TopAgent          *TopAgent `json:"top_agent"`
}
