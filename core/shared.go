package core

// SharedState is everything neurons share: the immutable parameters, the
// mailbox registry and the activity table. One instance is handed by pointer
// to every neuron and lives as long as the network.
type SharedState struct {
	params   Params
	router   *Router
	activity ActivityTable
}

// NewSharedState builds the router and activity table for params.
func NewSharedState(params Params, mailboxSize int, policy OverflowPolicy) *SharedState {
	return &SharedState{
		params:   params,
		router:   NewRouter(params.Size, mailboxSize, policy),
		activity: NewActivityTable(params.Size),
	}
}

// Params returns the network parameters.
func (s *SharedState) Params() Params {
	return s.params
}

// Router returns the mailbox registry.
func (s *SharedState) Router() *Router {
	return s.router
}

// Activity returns the activity table.
func (s *SharedState) Activity() ActivityTable {
	return s.activity
}
