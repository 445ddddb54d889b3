package search

import (
	"sort"

	"github.com/kilianp07/tariffbroker/core/logger"
)

// BinarySearch looks for the best of n ordered candidates assuming utility is
// unimodal in the index. It evaluates both ends and the middle, then bisects
// between the two best indices. A midpoint that does not end up among the two
// best breaks that assumption; the search stops there with what it has.
type BinarySearch struct {
	Log logger.Logger
}

// Indexed is one evaluated candidate.
type Indexed struct {
	Index   int
	Utility float64
}

// Search returns the evaluated candidates, best first. eval is called at most
// once per index.
func (s BinarySearch) Search(n int, eval func(i int) float64) []Indexed {
	log := logger.OrNop(s.Log)
	seen := make(map[int]float64)
	var top []Indexed
	visit := func(i int) {
		if _, ok := seen[i]; ok {
			return
		}
		u := eval(i)
		seen[i] = u
		top = append(top, Indexed{Index: i, Utility: u})
		sort.SliceStable(top, func(a, b int) bool { return top[a].Utility > top[b].Utility })
		if len(top) > 3 {
			top = top[:3]
		}
	}
	if n <= 0 {
		return nil
	}
	visit(0)
	visit(n - 1)
	visit((n - 1) / 2)

	for len(top) >= 2 && abs(top[1].Index-top[0].Index) >= 2 {
		mid := (top[0].Index + top[1].Index) / 2
		visit(mid)
		if top[0].Index != mid && top[1].Index != mid {
			log.Warnf("binary search: utility not unimodal around index %d, keeping index %d", mid, top[0].Index)
			break
		}
	}

	out := make([]Indexed, 0, len(seen))
	for i, u := range seen {
		out = append(out, Indexed{Index: i, Utility: u})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Utility != out[b].Utility {
			return out[a].Utility > out[b].Utility
		}
		return out[a].Index < out[b].Index
	})
	return out
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
