package beindex

// postingListGroup unions several posting lists into one sorted stream,
// exposing the minimum current Entry across its members. It represents
// all the posting lists triggered by one assigned key's values, OR'd
// together.
type postingListGroup struct {
	members []postingList
	min     Entry
}

// newPostingListGroup returns an empty group; its current() is the
// sentinel entryMax until members are added.
func newPostingListGroup() postingListGroup {
	return postingListGroup{min: entryMax}
}

// add includes a posting list in the group, updating current() to the
// minimum over all members. Empty posting lists are discarded immediately.
func (g *postingListGroup) add(p postingList) {
	if p.empty() {
		return
	}
	if p.current() < g.min {
		g.min = p.current()
	}
	g.members = append(g.members, p)
}

// empty reports whether every member is exhausted.
func (g *postingListGroup) empty() bool {
	return g.min == entryMax
}

// current returns the minimum current Entry across all members.
func (g *postingListGroup) current() Entry {
	return g.min
}

// skipTo advances every member to its first Entry whose ID is >= targetID
// and recomputes current() as the new minimum over still-non-empty members.
func (g *postingListGroup) skipTo(targetID uint64) {
	g.min = entryMax
	for i := range g.members {
		m := &g.members[i]
		if m.empty() {
			continue
		}
		m.skipTo(targetID)
		if !m.empty() && m.current() < g.min {
			g.min = m.current()
		}
	}
}

// postingListGroups sorts ascending by current().
type postingListGroups []postingListGroup

func (g postingListGroups) Len() int           { return len(g) }
func (g postingListGroups) Less(i, j int) bool { return g[i].current() < g[j].current() }
func (g postingListGroups) Swap(i, j int)      { g[i], g[j] = g[j], g[i] }
