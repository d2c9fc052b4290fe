// Package session models per-conversation state: the last product query, the
// server-side page counter and the per-query set of products already shown.
package session

// State is the conversational memory for one session id. Serialized as JSON
// by the Redis store driver.
type State struct {
	// LastQuery is the normalized query of the most recent product search,
	// reused verbatim for "show more" continuations.
	LastQuery string `json:"last_query"`
	// ServerPage is the server-side page counter for LastQuery.
	ServerPage int `json:"server_page"`
	// HadEvidence records whether the previous search produced results.
	HadEvidence bool `json:"had_evidence"`
	// TopicTokens augment one-word follow-up messages with the active topic.
	TopicTokens []string `json:"topic_tokens,omitempty"`
	// SeenByQuery maps a normalized query to the product keys already shown
	// for it, so "show more" never repeats an item.
	SeenByQuery map[string]map[string]bool `json:"seen_by_query,omitempty"`
}

// New returns fresh state for a session seen for the first time.
func New() *State {
	return &State{SeenByQuery: make(map[string]map[string]bool)}
}

// Seen returns the exclusion set for a query, creating it on first use.
func (s *State) Seen(query string) map[string]bool {
	if s.SeenByQuery == nil {
		s.SeenByQuery = make(map[string]map[string]bool)
	}
	set := s.SeenByQuery[query]
	if set == nil {
		set = make(map[string]bool)
		s.SeenByQuery[query] = set
	}
	return set
}

// ResetSeen clears the exclusion set for a query. Called when a client
// restarts a query at page zero.
func (s *State) ResetSeen(query string) {
	if s.SeenByQuery != nil {
		delete(s.SeenByQuery, query)
	}
}

// MarkSeen records product keys as shown for a query.
func (s *State) MarkSeen(query string, keys []string) {
	set := s.Seen(query)
	for _, k := range keys {
		set[k] = true
	}
}

// ClearTopic drops the follow-up topic and evidence flag. Called when a
// continuation runs out of results.
func (s *State) ClearTopic() {
	s.TopicTokens = nil
	s.HadEvidence = false
}
