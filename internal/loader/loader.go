// Package loader parses a JSON document corpus from disk into
// []beindex.Document[string], validating predicate shapes before they
// reach Build.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/kestrelindex/beindex/internal/beindex"
)

// corpusFile is the on-disk JSON shape: an object whose "documents" field
// lists documents, each holding a list of conjunctions, each holding a list
// of predicates.
type corpusFile struct {
	Documents []documentJSON `json:"documents"`
}

type documentJSON struct {
	Conjunctions []conjunctionJSON `json:"conjunctions"`
}

type conjunctionJSON struct {
	Predicates []predicateJSON `json:"predicates"`
}

type predicateJSON struct {
	Key          string   `json:"key"`
	Positive     bool     `json:"positive"`
	StringValues []string `json:"string_values,omitempty"`
	IntValues    []int64  `json:"int_values,omitempty"`
}

// ValidationError holds per-field validation failure messages, in the
// style of a field-error accumulator: every problem in one predicate is
// reported together. Load stops at the first predicate that fails, so
// problems in later predicates or documents are not reported.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// Load reads a JSON document corpus from path and converts it into
// documents Build can consume. Load itself never calls Build — callers
// decide when to build, so a CLI can log corpus size before committing to
// the (potentially large) build step.
func Load(path string) ([]beindex.Document[string], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file %s: %w", path, err)
	}

	var file corpusFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing corpus file %s: %w", path, err)
	}

	docs := make([]beindex.Document[string], len(file.Documents))
	for i, docJSON := range file.Documents {
		doc, err := convertDocument(docJSON)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		docs[i] = doc
	}
	return docs, nil
}

func convertDocument(docJSON documentJSON) (beindex.Document[string], error) {
	conjunctions := make([]beindex.Conjunction[string], len(docJSON.Conjunctions))
	for i, conjJSON := range docJSON.Conjunctions {
		conj, err := convertConjunction(conjJSON)
		if err != nil {
			return beindex.Document[string]{}, fmt.Errorf("conjunction %d: %w", i, err)
		}
		conjunctions[i] = conj
	}
	return beindex.Document[string]{Conjunctions: conjunctions}, nil
}

func convertConjunction(conjJSON conjunctionJSON) (beindex.Conjunction[string], error) {
	predicates := make([]beindex.Predicate[string], len(conjJSON.Predicates))
	for i, p := range conjJSON.Predicates {
		values, err := convertValues(p)
		if err != nil {
			return beindex.Conjunction[string]{}, fmt.Errorf("predicate %d (%s): %w", i, p.Key, err)
		}
		predicates[i] = beindex.Predicate[string]{Key: p.Key, Values: values, Positive: p.Positive}
	}
	return beindex.Conjunction[string]{Predicates: predicates}, nil
}

func convertValues(p predicateJSON) (beindex.Values, error) {
	errs := make(map[string]string)
	if strings.TrimSpace(p.Key) == "" {
		errs["key"] = "key is required"
	}
	hasStrings := len(p.StringValues) > 0
	hasInts := len(p.IntValues) > 0
	switch {
	case hasStrings && hasInts:
		errs["values"] = "predicate must set string_values or int_values, not both"
	case !hasStrings && !hasInts:
		errs["values"] = "predicate must set string_values or int_values"
	}
	if len(errs) > 0 {
		return beindex.Values{}, &ValidationError{Fields: errs}
	}

	if hasStrings {
		return beindex.Strings(p.StringValues...), nil
	}
	return beindex.Ints(p.IntValues...), nil
}
