package beindex

import "errors"

// Programmer-input errors. These surface only from Build (or from NewEntry,
// which Build calls); Retrieve is total and never returns an error — a
// non-matching assignment simply yields an empty ResultSet.
var (
	// ErrDocumentIDOverflow is returned when a document id exceeds the
	// 47 bits available in the packed Entry representation.
	ErrDocumentIDOverflow = errors.New("beindex: document id exceeds packed range")

	// ErrConjunctionIndexOverflow is returned when a document has more
	// than 2^16 conjunctions.
	ErrConjunctionIndexOverflow = errors.New("beindex: conjunction index exceeds packed range")

	// ErrDuplicateField is returned when a conjunction names the same
	// predicate key more than once.
	ErrDuplicateField = errors.New("beindex: predicate key repeated within one conjunction")

	// ErrUnsupportedValueType is returned when a predicate's values are
	// neither all strings nor all int64s.
	ErrUnsupportedValueType = errors.New("beindex: predicate values must be all string or all int64")
)
