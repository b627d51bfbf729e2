package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"patternhub/internal/models"
)

const validCatalog = `{
  "version": "test-1",
  "lastUpdated": "2026-08-01T00:00:00Z",
  "patterns": [
    {
      "id": "retry-with-backoff",
      "title": "Retry with Exponential Backoff",
      "description": "Retry a failing effect.",
      "category": "error-handling",
      "difficulty": "intermediate",
      "tags": ["retry"],
      "examples": [{"language": "typescript", "code": "const x = NAME;", "primary": true}]
    },
    {
      "id": "parallel-with-limit",
      "title": "Bounded Parallelism",
      "description": "Cap concurrent effects.",
      "category": "concurrency",
      "difficulty": "beginner",
      "examples": [{"language": "typescript", "code": "code"}]
    }
  ]
}`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patterns.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write catalog fixture: %v", err)
	}
	return path
}

func TestNew_LoadsCatalog(t *testing.T) {
	st, err := New(writeCatalog(t, validCatalog))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer st.Close()

	if st.Count() != 2 {
		t.Errorf("Expected 2 patterns, got %d", st.Count())
	}

	snap := st.Snapshot()
	if snap.Version != "test-1" {
		t.Errorf("Expected version test-1, got %s", snap.Version)
	}
	if snap.LoadedAt.IsZero() {
		t.Error("Expected LoadedAt to be set")
	}
	if snap.Patterns[0].ID != "retry-with-backoff" {
		t.Errorf("Catalog order not preserved: %s", snap.Patterns[0].ID)
	}
}

func TestNew_MissingFile(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestNew_MalformedJSON(t *testing.T) {
	_, err := New(writeCatalog(t, "{not json"))
	if err == nil || !strings.Contains(err.Error(), "parse") {
		t.Fatalf("Expected parse error, got %v", err)
	}
}

func TestRefresh_SwapsSnapshot(t *testing.T) {
	path := writeCatalog(t, validCatalog)
	st, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer st.Close()

	before := st.Snapshot()

	updated := strings.Replace(validCatalog, `"version": "test-1"`, `"version": "test-2"`, 1)
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatalf("Failed to rewrite catalog: %v", err)
	}

	if err := st.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	after := st.Snapshot()
	if after.Version != "test-2" {
		t.Errorf("Expected refreshed version test-2, got %s", after.Version)
	}
	// The old snapshot stays intact for readers still holding it
	if before.Version != "test-1" {
		t.Errorf("Previous snapshot mutated: %s", before.Version)
	}
}

func TestRefresh_FailureKeepsSnapshot(t *testing.T) {
	path := writeCatalog(t, validCatalog)
	st, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer st.Close()

	if err := os.WriteFile(path, []byte("broken"), 0644); err != nil {
		t.Fatalf("Failed to corrupt catalog: %v", err)
	}

	if err := st.Refresh(); err == nil {
		t.Fatal("Expected refresh to fail on corrupted file")
	}

	if st.Count() != 2 {
		t.Errorf("Snapshot lost after failed refresh: %d patterns", st.Count())
	}
	if st.Snapshot().Version != "test-1" {
		t.Errorf("Snapshot replaced after failed refresh: %s", st.Snapshot().Version)
	}
}

func TestValidate(t *testing.T) {
	base := func() []models.Pattern {
		return []models.Pattern{
			{ID: "a", Category: models.CategoryTesting, Difficulty: models.DifficultyBeginner},
			{ID: "b", Category: models.CategoryCaching, Difficulty: models.DifficultyAdvanced},
		}
	}

	if err := Validate(base()); err != nil {
		t.Errorf("Valid patterns rejected: %v", err)
	}

	dup := base()
	dup[1].ID = "a"
	if err := Validate(dup); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("Expected duplicate id error, got %v", err)
	}

	empty := base()
	empty[0].ID = ""
	if err := Validate(empty); err == nil || !strings.Contains(err.Error(), "empty id") {
		t.Errorf("Expected empty id error, got %v", err)
	}

	badCat := base()
	badCat[0].Category = "necromancy"
	if err := Validate(badCat); err == nil || !strings.Contains(err.Error(), "category") {
		t.Errorf("Expected category error, got %v", err)
	}

	badDiff := base()
	badDiff[0].Difficulty = "impossible"
	if err := Validate(badDiff); err == nil || !strings.Contains(err.Error(), "difficulty") {
		t.Errorf("Expected difficulty error, got %v", err)
	}
}

func TestValidate_ZeroExamplesAllowed(t *testing.T) {
	patterns := []models.Pattern{
		{ID: "doc-only", Category: models.CategoryObservability, Difficulty: models.DifficultyBeginner},
	}
	if err := Validate(patterns); err != nil {
		t.Errorf("Patterns without examples must load: %v", err)
	}
}

func TestSeedCatalog_CoversAllCategories(t *testing.T) {
	st, err := New(filepath.Join("..", "..", "data", "patterns.json"))
	if err != nil {
		t.Fatalf("Failed to load seed catalog: %v", err)
	}
	defer st.Close()

	seen := make(map[string]bool)
	for _, p := range st.Patterns() {
		seen[p.Category] = true
	}
	for _, category := range models.Categories {
		if !seen[category] {
			t.Errorf("Seed catalog has no %s pattern", category)
		}
	}
}
