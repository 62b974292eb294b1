package markov

// ModelStats holds aggregated statistics for a single Markov model.
type ModelStats struct {
	Order       int     `json:"order"`        // The chain order of the model
	Prefixes    int     `json:"prefixes"`     // The number of unique n-gram keys in the mapping
	Transitions int     `json:"transitions"`  // The number of unique key->successor links
	TotalWeight float64 `json:"total_weight"` // The summed weight of all links; the total trained volume
	Starts      int     `json:"starts"`       // The number of unique sentence-start keys
	StartWeight float64 `json:"start_weight"` // The summed weight of the start set
	Vocabulary  int     `json:"vocabulary"`   // The number of unique successor tokens
}

// Stats returns a snapshot of aggregated statistics for the model.
func (m *Model) Stats() ModelStats {
	stats := ModelStats{
		Order:       m.order,
		Prefixes:    len(m.prefixes),
		Starts:      len(m.starts),
		StartWeight: m.startTotal,
	}

	seen := make(map[string]struct{})
	for _, p := range m.prefixes {
		stats.Transitions += len(p.succs)
		stats.TotalWeight += p.total
		for _, wt := range p.succs {
			seen[wt.Token] = struct{}{}
		}
	}
	stats.Vocabulary = len(seen)

	return stats
}
