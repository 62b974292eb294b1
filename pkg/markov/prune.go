package markov

import (
	"log/slog"
	"strings"
)

// PruneStats reports what a Prune call removed.
type PruneStats struct {
	Transitions int `json:"transitions"` // Successor links removed
	Prefixes    int `json:"prefixes"`    // Keys removed because pruning emptied them
	Starts      int `json:"starts"`      // Start keys removed along with their prefix
}

// Prune removes all successor links whose accumulated weight is below
// minWeight. This is useful for reducing the size of a model by removing
// rare, and often noisy, transitions.
//
// A key whose links are all pruned away is removed from the mapping, and
// any start entry for a removed key is dropped with it. Keys that never
// had successors in the first place are left alone: they mark the final
// window of some training text and remain valid dead ends.
func (m *Model) Prune(minWeight float64) PruneStats {
	var stats PruneStats

	kept := m.prefixes[:0]
	for _, p := range m.prefixes {
		hadSuccs := len(p.succs) > 0

		survivors := p.succs[:0]
		total := 0.0
		for _, wt := range p.succs {
			if wt.Weight < minWeight {
				stats.Transitions++
				continue
			}
			survivors = append(survivors, wt)
			total += wt.Weight
		}
		p.succs = survivors
		p.total = total
		p.succIdx = make(map[string]int, len(p.succs))
		for i, wt := range p.succs {
			p.succIdx[wt.Token] = i
		}

		if hadSuccs && len(p.succs) == 0 {
			stats.Prefixes++
			continue
		}
		kept = append(kept, p)
	}
	m.prefixes = kept

	m.index = make(map[string]*prefixEntry, len(m.prefixes))
	for _, p := range m.prefixes {
		m.index[strings.Join(p.tokens, keySep)] = p
	}

	keptStarts := m.starts[:0]
	m.startIdx = make(map[string]*startEntry, len(m.starts))
	m.startTotal = 0
	for _, s := range m.starts {
		if _, ok := m.index[m.normKey(s.tokens)]; !ok {
			stats.Starts++
			continue
		}
		keptStarts = append(keptStarts, s)
		m.startIdx[strings.Join(s.tokens, keySep)] = s
		m.startTotal += s.weight
	}
	m.starts = keptStarts

	m.logger.Info("model pruned",
		slog.Float64("min_weight", minWeight),
		slog.Int("transitions_removed", stats.Transitions),
		slog.Int("prefixes_removed", stats.Prefixes),
		slog.Int("starts_removed", stats.Starts),
	)
	return stats
}
