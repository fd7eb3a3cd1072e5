package aggregate

import "sort"

// Rankable is one scored entity entering a ranking pass.
type Rankable struct {
	ID    string
	Score float64
}

// Ranked is a Rankable with its assigned 1-based rank.
type Ranked struct {
	ID    string
	Score float64
	Rank  int
}

// Rank assigns standard competition ranks: entries sort descending by score,
// equal scores share a rank, and the next distinct score resumes at the
// previous rank plus the number tied. Within a tie, entries order by ascending
// ID so repeated calls on identical input yield identical output.
//
// The same function serves every scope: overall and per-activity, individual
// and team. Each scope ranks independently.
func Rank(items []Rankable) []Ranked {
	sorted := make([]Rankable, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].ID < sorted[j].ID
	})

	out := make([]Ranked, len(sorted))
	for i, it := range sorted {
		rank := i + 1
		if i > 0 && it.Score == sorted[i-1].Score {
			rank = out[i-1].Rank
		}
		out[i] = Ranked{ID: it.ID, Score: it.Score, Rank: rank}
	}
	return out
}
