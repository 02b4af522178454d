package beindex

import "testing"

func entriesFor(t *testing.T, ids ...uint64) Entries {
	t.Helper()
	es := make(Entries, len(ids))
	for i, id := range ids {
		e, err := NewEntry(id, 0, true)
		if err != nil {
			t.Fatalf("NewEntry(%d): %v", id, err)
		}
		es[i] = e
	}
	return es
}

// idOf returns the Entry ID (the skipTo target scale) of conjunction 0 of
// the given document.
func idOf(documentID uint64) uint64 {
	return packEntry(documentID, 0, true).ID()
}

func TestPostingListSkipToAdvancesMonotonically(t *testing.T) {
	p := newPostingList(entriesFor(t, 1, 3, 5, 7, 9))

	p.skipTo(idOf(5))
	if p.empty() || p.current().DocumentID() != 5 {
		t.Fatalf("after skipTo(idOf(5)), current = %v", p.current().DocumentID())
	}

	p.skipTo(idOf(6))
	if p.empty() || p.current().DocumentID() != 7 {
		t.Fatalf("after skipTo(idOf(6)), current = %v", p.current().DocumentID())
	}

	p.skipTo(idOf(3)) // must not move backward
	if p.current().DocumentID() != 7 {
		t.Fatalf("skipTo must never move the cursor backward, got %v", p.current().DocumentID())
	}

	p.skipTo(idOf(100))
	if !p.empty() {
		t.Fatalf("skipTo past the end should exhaust the list")
	}
}

func TestPostingListSkipToExercisesBinarySearchPath(t *testing.T) {
	ids := make([]uint64, 0, 500)
	for i := uint64(0); i < 500; i++ {
		ids = append(ids, i*2)
	}
	p := newPostingList(entriesFor(t, ids...))

	p.skipTo(idOf(801)) // odd target forces rounding to the next even id
	if p.empty() || p.current().DocumentID() != 802 {
		t.Fatalf("skipTo(idOf(801)) = %v, want 802", p.current().DocumentID())
	}
}

func TestPostingListGroupTracksMinimumAcrossMembers(t *testing.T) {
	g := newPostingListGroup()
	a := newPostingList(entriesFor(t, 2, 8))
	b := newPostingList(entriesFor(t, 1, 9))
	g.add(a)
	g.add(b)

	if g.empty() {
		t.Fatalf("group with non-empty members should not be empty")
	}
	if got := g.current().DocumentID(); got != 1 {
		t.Fatalf("group current() = %d, want 1 (minimum across members)", got)
	}

	g.skipTo(idOf(3))
	if got := g.current().DocumentID(); got != 8 {
		t.Fatalf("after skipTo(idOf(3)), group current() = %d, want 8", got)
	}

	g.skipTo(idOf(10))
	if !g.empty() {
		t.Fatalf("group should be empty once every member is exhausted")
	}
}

func TestPostingListGroupIgnoresEmptyMembers(t *testing.T) {
	g := newPostingListGroup()
	g.add(newPostingList(nil))
	if !g.empty() {
		t.Fatalf("adding only an empty posting list should leave the group empty")
	}
}
