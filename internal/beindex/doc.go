package beindex

// Predicate is one (key, values, polarity) test within a Conjunction.
// A positive predicate requires the assignment to bind at least one
// matching value for Key; a negative predicate requires that none of the
// assignment's values for Key lie in Values.
type Predicate[K comparable] struct {
	Key      K
	Values   Values
	Positive bool
}

// Conjunction is an AND of Predicates; a Document matches an assignment
// iff at least one of its Conjunctions does. Its size is the count of
// positive predicates — negated predicates don't contribute to size, and a
// conjunction with size 0 (pure negation, or empty) is handled via the
// zero-conjunction list (see Index).
type Conjunction[K comparable] struct {
	Predicates []Predicate[K]
}

// In appends a positive predicate and returns c for chaining.
func (c *Conjunction[K]) In(key K, values Values) *Conjunction[K] {
	c.Predicates = append(c.Predicates, Predicate[K]{Key: key, Values: values, Positive: true})
	return c
}

// NotIn appends a negative predicate and returns c for chaining.
func (c *Conjunction[K]) NotIn(key K, values Values) *Conjunction[K] {
	c.Predicates = append(c.Predicates, Predicate[K]{Key: key, Values: values, Positive: false})
	return c
}

func (c Conjunction[K]) size() int {
	n := 0
	for _, p := range c.Predicates {
		if p.Positive {
			n++
		}
	}
	return n
}

// Document is a sequence of Conjunctions, indexed by its position in the
// slice passed to Build.
type Document[K comparable] struct {
	Conjunctions []Conjunction[K]
}
