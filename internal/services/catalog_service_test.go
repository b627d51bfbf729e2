package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"patternhub/internal/database"
	"patternhub/internal/models"
	"patternhub/internal/store"
)

const serviceTestCatalog = `{
  "version": "test-1",
  "patterns": [
    {
      "id": "layered-service",
      "title": "Layered Service",
      "description": "Compose services into layers.",
      "category": "services",
      "difficulty": "intermediate",
      "examples": [
        {"language": "typescript", "code": "call(NAME, INPUT);", "primary": true}
      ]
    }
  ]
}`

func setupCatalogService(t *testing.T) (*CatalogService, *AnalyticsService, func()) {
	t.Helper()

	dir := t.TempDir()
	patternsPath := filepath.Join(dir, "patterns.json")
	if err := os.WriteFile(patternsPath, []byte(serviceTestCatalog), 0644); err != nil {
		t.Fatalf("Failed to write catalog fixture: %v", err)
	}

	db, err := database.New(filepath.Join(dir, "usage.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	patternStore, err := store.New(patternsPath)
	if err != nil {
		t.Fatalf("Failed to load test catalog: %v", err)
	}

	analytics := NewAnalyticsService(db)
	svc := NewCatalogService(patternStore, analytics)

	cleanup := func() {
		patternStore.Close()
		db.Close()
	}
	return svc, analytics, cleanup
}

func TestGenerate_DistinctRequestsGetDistinctSnippets(t *testing.T) {
	svc, _, cleanup := setupCatalogService(t)
	defer cleanup()

	ctx := context.Background()

	// Field values chosen so a naive separator-joined cache key would
	// alias the two requests.
	_, first, err := svc.Generate(ctx, models.GenerateRequest{
		PatternID: "layered-service",
		Name:      "a|b",
		Input:     "c",
	}, "trace-1")
	if err != nil {
		t.Fatalf("First generate failed: %v", err)
	}
	if first != "call(a|b, c);" {
		t.Errorf("Expected 'call(a|b, c);', got %q", first)
	}

	_, second, err := svc.Generate(ctx, models.GenerateRequest{
		PatternID: "layered-service",
		Name:      "a",
		Input:     "b|c",
	}, "trace-2")
	if err != nil {
		t.Fatalf("Second generate failed: %v", err)
	}
	if second != "call(a, b|c);" {
		t.Errorf("Expected 'call(a, b|c);', got %q", second)
	}
}

func TestGenerate_CacheHitStillRecordsUsage(t *testing.T) {
	svc, analytics, cleanup := setupCatalogService(t)
	defer cleanup()

	ctx := context.Background()
	req := models.GenerateRequest{PatternID: "layered-service", Name: "fetchUser"}

	_, first, err := svc.Generate(ctx, req, "trace-1")
	if err != nil {
		t.Fatalf("First generate failed: %v", err)
	}
	_, second, err := svc.Generate(ctx, req, "trace-2")
	if err != nil {
		t.Fatalf("Second generate failed: %v", err)
	}
	if first != second {
		t.Errorf("Expected memoized snippet to match, got %q vs %q", first, second)
	}

	stats, err := analytics.GetStats(ctx)
	if err != nil {
		t.Fatalf("Failed to read stats: %v", err)
	}
	if stats.TotalGenerates != 2 {
		t.Errorf("Expected 2 recorded generates, got %d", stats.TotalGenerates)
	}
	if len(stats.TopPatterns) != 1 || stats.TopPatterns[0].Count != 2 {
		t.Errorf("Expected layered-service counted twice, got %+v", stats.TopPatterns)
	}
}
