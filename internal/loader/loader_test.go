package loader

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadParsesDocumentsAndConjunctions(t *testing.T) {
	path := writeCorpus(t, `{
		"documents": [
			{"conjunctions": [
				{"predicates": [
					{"key": "a", "positive": true, "int_values": [3]},
					{"key": "b", "positive": false, "string_values": ["y"]}
				]}
			]}
		]
	}`)

	docs, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("len(docs) = %d, want 1", len(docs))
	}
	conj := docs[0].Conjunctions[0]
	if len(conj.Predicates) != 2 {
		t.Fatalf("len(predicates) = %d, want 2", len(conj.Predicates))
	}
	if conj.Predicates[0].Key != "a" || !conj.Predicates[0].Positive {
		t.Errorf("predicate 0 = %+v, want key=a positive=true", conj.Predicates[0])
	}
	if conj.Predicates[1].Key != "b" || conj.Predicates[1].Positive {
		t.Errorf("predicate 1 = %+v, want key=b positive=false", conj.Predicates[1])
	}
}

func TestLoadRejectsPredicateWithNoValues(t *testing.T) {
	path := writeCorpus(t, `{
		"documents": [
			{"conjunctions": [{"predicates": [{"key": "a", "positive": true}]}]}
		]
	}`)

	if _, err := Load(path); err == nil {
		t.Fatalf("Load with valueless predicate: want error, got nil")
	}
}

func TestLoadRejectsPredicateWithBothValueKinds(t *testing.T) {
	path := writeCorpus(t, `{
		"documents": [
			{"conjunctions": [{"predicates": [
				{"key": "a", "positive": true, "int_values": [1], "string_values": ["x"]}
			]}]}
		]
	}`)

	if _, err := Load(path); err == nil {
		t.Fatalf("Load with mixed value kinds: want error, got nil")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("Load of missing file: want error, got nil")
	}
}

func TestLoadEmptyCorpus(t *testing.T) {
	path := writeCorpus(t, `{"documents": []}`)
	docs, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("len(docs) = %d, want 0", len(docs))
	}
}
