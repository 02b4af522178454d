package beindex

// postingList is a view over a contiguous, ascending-sorted slice of
// Entries with a forward-only cursor. It does not own its backing slice —
// the slice is owned by the Index that built it, and a postingList must
// not outlive that Index.
type postingList struct {
	entries Entries
	cursor  int
}

// newPostingList returns a postingList positioned at the start of entries.
// entries must already be sorted ascending.
func newPostingList(entries Entries) postingList {
	return postingList{entries: entries}
}

// empty reports whether the cursor has reached the end of the list.
func (p *postingList) empty() bool {
	return p.cursor >= len(p.entries)
}

// current returns the Entry under the cursor. Its result is undefined if
// empty() is true.
func (p *postingList) current() Entry {
	return p.entries[p.cursor]
}

// skipTo advances the cursor forward to the first Entry whose ID is >=
// targetID. It never moves the cursor backward. Entries beyond
// linearSearchThreshold from the cursor are located with a binary search
// before falling back to a linear scan, following the teacher corpus's
// posting-list scanners; either strategy is permitted by the spec as long
// as it is monotonic.
func (p *postingList) skipTo(targetID uint64) {
	if p.empty() || p.current().ID() >= targetID {
		return
	}
	n := len(p.entries)
	lo, hi := p.cursor, n
	for hi-lo > linearSearchThreshold {
		mid := (lo + hi) / 2
		if p.entries[mid].ID() < targetID {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	for lo < n && p.entries[lo].ID() < targetID {
		lo++
	}
	p.cursor = lo
}

// linearSearchThreshold is the remaining-entry count below which skipTo
// falls back to a linear scan instead of continuing the binary search.
const linearSearchThreshold = 64
