package beindex

import "sort"

// Index is an immutable, built-once inverted index over Documents of
// Conjunctions. Once Build has returned, an Index is safe for concurrent
// Retrieve calls from multiple goroutines as long as each caller uses its
// own ResultSet and its own Assignment — Retrieve allocates no shared
// mutable state beyond read-only lookups into the Index itself.
type Index[K comparable] struct {
	// sizes[k] indexes every predicate of every conjunction of size k
	// across all documents, keyed by (predicate key, value). A size-0
	// conjunction has only negative predicates by definition, so sizes[0]
	// holds only those — see zero for the positive counterpart.
	sizes []invertedIndexSize[K]

	// zero holds one always-true Entry per size-0 conjunction, standing in
	// for the absent positive predicate so the merge loop has something to
	// pivot a match (or veto) on.
	zero Entries
}

// Build constructs an Index over documents. documents[i]'s document ID is
// i; conjunction j within a document carries conjunction index j, packed
// alongside the document ID in every Entry that conjunction produces.
//
// Build returns an error if any document ID or conjunction index would
// overflow the packed Entry range (see NewEntry), or if a single
// conjunction repeats the same predicate key (ErrDuplicateField).
func Build[K comparable](documents []Document[K]) (*Index[K], error) {
	idx := &Index[K]{}
	for documentID, doc := range documents {
		for conjunctionIndex, conj := range doc.Conjunctions {
			if err := idx.addConjunction(uint64(documentID), conjunctionIndex, conj); err != nil {
				return nil, err
			}
		}
	}
	idx.sortAll()
	return idx, nil
}

// addConjunction files every predicate of conj into the size-k inverted
// index, where k is the conjunction's size (count of positive predicates).
// A size-0 conjunction has only negative predicates by definition; those
// still go into the size-0 index so they can veto matches, and the
// conjunction additionally contributes an always-true Entry to the zero
// list Z, representing the implicit "no positive requirement" match.
func (idx *Index[K]) addConjunction(documentID uint64, conjunctionIndex int, conj Conjunction[K]) error {
	seen := make(map[K]struct{}, len(conj.Predicates))
	for _, p := range conj.Predicates {
		if _, dup := seen[p.Key]; dup {
			return ErrDuplicateField
		}
		seen[p.Key] = struct{}{}
	}

	size := conj.size()
	for size >= len(idx.sizes) {
		idx.sizes = append(idx.sizes, newInvertedIndexSize[K]())
	}
	sizeIdx := &idx.sizes[size]
	for _, p := range conj.Predicates {
		entry, err := NewEntry(documentID, conjunctionIndex, p.Positive)
		if err != nil {
			return err
		}
		if err := sizeIdx.addEntry(entry, p.Key, p.Values); err != nil {
			return err
		}
	}

	if size == 0 {
		entry, err := NewEntry(documentID, conjunctionIndex, true)
		if err != nil {
			return err
		}
		idx.zero = append(idx.zero, entry)
	}
	return nil
}

// PostingListEntryCounts returns the total posting-list entry count for
// each indexed conjunction size, index 0 first, for the ambient
// per-size gauge metric (see pkg/metrics).
func (idx *Index[K]) PostingListEntryCounts() []int {
	counts := make([]int, len(idx.sizes))
	for i := range idx.sizes {
		counts[i] = idx.sizes[i].entryCount()
	}
	return counts
}

func (idx *Index[K]) sortAll() {
	for i := range idx.sizes {
		idx.sizes[i].sortAll()
	}
	sort.Sort(idx.zero)
}

// Retrieve matches assignment against every indexed document, adding each
// matched document ID to result. Result is not reset first; callers that
// want a fresh ResultSet per call should use NewResultSet or Reset.
//
// The outer loop walks conjunction sizes from the largest possibly-matching
// size down to zero. At size 0, the zero list Z is pushed as one extra
// group alongside whatever the assignment triggers in the size-0 index
// (the negative predicates of size-0 conjunctions); required is forced to
// 1 so a lone Z group still yields a match, while a tied negative entry at
// the same (document, conjunction) id still vetoes it in the usual way.
func (idx *Index[K]) Retrieve(result *ResultSet, assignment Assignment[K]) {
	maxSize := len(idx.sizes) - 1
	if n := assignment.Size(); n < maxSize {
		maxSize = n
	}

	var groups postingListGroups
	for k := maxSize; k >= 0; k-- {
		groups = idx.collectGroups(groups[:0], k, assignment)
		if k == 0 && len(idx.zero) > 0 {
			zeroGroup := newPostingListGroup()
			zeroGroup.add(newPostingList(idx.zero))
			groups = append(groups, zeroGroup)
		}

		required := k
		if required < 1 {
			required = 1
		}
		if len(groups) < required {
			continue
		}
		mergeAndMatch(result, groups, required)
	}
}

// collectGroups builds, for conjunction size k, one postingListGroup per
// assignment-bound key whose index at size k has a matching value, reusing
// dst's backing array.
func (idx *Index[K]) collectGroups(dst postingListGroups, k int, assignment Assignment[K]) postingListGroups {
	if k >= len(idx.sizes) {
		return dst
	}
	sizeIdx := &idx.sizes[k]
	assignment.Trigger(func(key K, values Values) {
		group := newPostingListGroup()
		sizeIdx.trigger(&group, key, values)
		if !group.empty() {
			dst = append(dst, group)
		}
	})
	return dst
}

// mergeAndMatch runs the k-way merge over groups, the core algorithm: at
// each step the groups are sorted by current id; if the k-th smallest
// (0-indexed k-1) group shares its id with the smallest group, every
// predicate at that id is satisfied for this conjunction. If the smallest
// group's current entry is negative, that id is vetoed — every group tied
// at that id is skipped past it. Otherwise the id is a match, and the
// conjunction's document id is recorded. Either way, the bottom k groups
// advance to the next candidate id.
func mergeAndMatch(result *ResultSet, groups postingListGroups, k int) {
	for {
		sort.Sort(groups)
		if groups[k-1].empty() {
			return
		}

		var nextID uint64
		if groups[0].current().ID() == groups[k-1].current().ID() {
			if groups[0].current().IsNegative() {
				rejectID := groups[0].current().ID()
				for l := k; l < len(groups); l++ {
					if groups[l].current().ID() == rejectID {
						groups[l].skipTo(rejectID + 1)
					} else {
						break
					}
				}
			} else {
				e := groups[k-1].current()
				result.Add(e.DocumentID())
			}
			nextID = groups[k-1].current().ID() + 1
		} else {
			nextID = groups[k-1].current().ID()
		}

		for l := 0; l < k; l++ {
			groups[l].skipTo(nextID)
		}
	}
}
