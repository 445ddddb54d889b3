package model

import "sort"

// RankedAction pairs an action with its estimated utility.
type RankedAction struct {
	Utility float64 `json:"utility"`
	Action  Action  `json:"action"`
}

// Ranking orders candidate actions by utility. Utilities are unique keys:
// inserting an equal utility keeps the existing entry, except that a NoOp
// entry always replaces a non-NoOp one so the "do nothing" option is never
// lost. The zero value is an empty ranking ready to use.
type Ranking struct {
	entries []RankedAction // ascending by utility
}

// NewRanking returns an empty ranking.
func NewRanking() *Ranking { return &Ranking{} }

// Put inserts an action with its utility.
func (r *Ranking) Put(utility float64, a Action) {
	i := sort.Search(len(r.entries), func(i int) bool { return r.entries[i].Utility >= utility })
	if i < len(r.entries) && r.entries[i].Utility == utility {
		if a.IsNoOp() && !r.entries[i].Action.IsNoOp() {
			r.entries[i].Action = a
		}
		return
	}
	r.entries = append(r.entries, RankedAction{})
	copy(r.entries[i+1:], r.entries[i:])
	r.entries[i] = RankedAction{Utility: utility, Action: a}
}

// Len returns the number of entries.
func (r *Ranking) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Best returns the highest-utility entry.
func (r *Ranking) Best() (RankedAction, bool) {
	if r.Len() == 0 {
		return RankedAction{}, false
	}
	return r.entries[len(r.entries)-1], true
}

// BestNonNoOp returns the highest-utility entry whose action does something.
func (r *Ranking) BestNonNoOp() (RankedAction, bool) {
	for i := r.Len() - 1; i >= 0; i-- {
		if !r.entries[i].Action.IsNoOp() {
			return r.entries[i], true
		}
	}
	return RankedAction{}, false
}

// BestOfKind returns the highest-utility entry of the given kind.
func (r *Ranking) BestOfKind(k ActionKind) (RankedAction, bool) {
	for i := r.Len() - 1; i >= 0; i-- {
		if r.entries[i].Action.Kind == k {
			return r.entries[i], true
		}
	}
	return RankedAction{}, false
}

// NoOpUtility returns the utility of the NoOp entry.
func (r *Ranking) NoOpUtility() (float64, bool) {
	e, ok := r.BestOfKind(NoOp)
	return e.Utility, ok
}

// NoOpCount returns how many entries hold the NoOp action.
func (r *Ranking) NoOpCount() int {
	n := 0
	for i := 0; i < r.Len(); i++ {
		if r.entries[i].Action.IsNoOp() {
			n++
		}
	}
	return n
}

// Entries returns a copy of the entries, best first.
func (r *Ranking) Entries() []RankedAction {
	out := make([]RankedAction, r.Len())
	for i := range out {
		out[i] = r.entries[len(r.entries)-1-i]
	}
	return out
}

// Top returns at most n entries, best first.
func (r *Ranking) Top(n int) []RankedAction {
	all := r.Entries()
	if n < len(all) {
		return all[:n]
	}
	return all
}

// Merge inserts every entry of other into r. When skipNoOp is true the NoOp
// entries of other are ignored so that r keeps a single NoOp.
func (r *Ranking) Merge(other *Ranking, skipNoOp bool) {
	for i := 0; i < other.Len(); i++ {
		e := other.entries[i]
		if skipNoOp && e.Action.IsNoOp() {
			continue
		}
		r.Put(e.Utility, e.Action)
	}
}

// Clone returns a shallow copy of the ranking. Tariff specs are shared.
func (r *Ranking) Clone() *Ranking {
	if r == nil {
		return NewRanking()
	}
	return &Ranking{entries: append([]RankedAction(nil), r.entries...)}
}
