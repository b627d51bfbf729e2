package catalog

import (
	"strings"
	"testing"

	"patternhub/internal/models"
)

const samplePatternMD = `---
id: retry-with-backoff
title: "Retry with Exponential Backoff"
description: "Retry a failing effect with growing delays."
category: error-handling
difficulty: intermediate
tags: [retry, backoff]
use-cases:
  - "Flaky HTTP calls"
related-patterns: [timeout-fallback]
metadata:
  version: "1.2.0"
---

# Retry with Exponential Backoff

Retries up to five times.

` + "```typescript\nconst x = NAME;\n```" + `

A variant without a cap.

` + "```typescript\nconst y = INPUT;\n```" + `
`

func TestParsePatternMD(t *testing.T) {
	p, err := ParsePatternMD(samplePatternMD)
	if err != nil {
		t.Fatalf("ParsePatternMD failed: %v", err)
	}

	if p.ID != "retry-with-backoff" {
		t.Errorf("Expected id retry-with-backoff, got %s", p.ID)
	}
	if p.Title != "Retry with Exponential Backoff" {
		t.Errorf("Unexpected title: %s", p.Title)
	}
	if p.Category != models.CategoryErrorHandling {
		t.Errorf("Unexpected category: %s", p.Category)
	}
	if p.Version != "1.2.0" {
		t.Errorf("Expected version from metadata, got %q", p.Version)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "retry" {
		t.Errorf("Unexpected tags: %v", p.Tags)
	}
	if len(p.UseCases) != 1 || p.UseCases[0] != "Flaky HTTP calls" {
		t.Errorf("Unexpected use cases: %v", p.UseCases)
	}

	if len(p.Examples) != 2 {
		t.Fatalf("Expected 2 examples, got %d", len(p.Examples))
	}
	if !p.Examples[0].Primary {
		t.Error("First example must be primary")
	}
	if p.Examples[1].Primary {
		t.Error("Second example must not be primary")
	}
	if p.Examples[0].Code != "const x = NAME;" {
		t.Errorf("Unexpected example code: %q", p.Examples[0].Code)
	}
	if p.Examples[0].Description != "Retries up to five times." {
		t.Errorf("Unexpected example description: %q", p.Examples[0].Description)
	}
}

func TestParsePatternMD_TitleFallsBackToID(t *testing.T) {
	content := "---\nid: scoped-resource\ncategory: resource-management\ndifficulty: advanced\n---\n\nbody"
	p, err := ParsePatternMD(content)
	if err != nil {
		t.Fatalf("ParsePatternMD failed: %v", err)
	}
	if p.Title != "Scoped Resource" {
		t.Errorf("Expected title derived from id, got %q", p.Title)
	}
}

func TestParsePatternMD_DefaultLanguage(t *testing.T) {
	content := "---\nid: x\ncategory: testing\ndifficulty: beginner\n---\n\n```\ncode\n```"
	p, err := ParsePatternMD(content)
	if err != nil {
		t.Fatalf("ParsePatternMD failed: %v", err)
	}
	if len(p.Examples) != 1 || p.Examples[0].Language != "typescript" {
		t.Errorf("Expected typescript default language, got %v", p.Examples)
	}
}

func TestParsePatternMD_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"missing id", "---\ntitle: X\ncategory: testing\ndifficulty: beginner\n---\nbody"},
		{"unknown category", "---\nid: x\ncategory: voodoo\ndifficulty: beginner\n---\nbody"},
		{"unknown difficulty", "---\nid: x\ncategory: testing\ndifficulty: guru\n---\nbody"},
		{"unterminated frontmatter", "---\nid: x\ncategory: testing"},
		{"oversized", "---\nid: x\n---\n" + strings.Repeat("a", maxPatternMDSize+1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParsePatternMD(tc.content); err == nil {
				t.Errorf("Expected error for %s", tc.name)
			}
		})
	}
}

func TestFormatPatternMD_RoundTrip(t *testing.T) {
	original, err := ParsePatternMD(samplePatternMD)
	if err != nil {
		t.Fatalf("ParsePatternMD failed: %v", err)
	}

	formatted := FormatPatternMD(original)
	reparsed, err := ParsePatternMD(formatted)
	if err != nil {
		t.Fatalf("Reparsing formatted output failed: %v", err)
	}

	if reparsed.ID != original.ID || reparsed.Title != original.Title {
		t.Error("Identity fields lost in round trip")
	}
	if reparsed.Category != original.Category || reparsed.Difficulty != original.Difficulty {
		t.Error("Classification lost in round trip")
	}
	if reparsed.Version != original.Version {
		t.Errorf("Version lost in round trip: %q vs %q", reparsed.Version, original.Version)
	}
	if len(reparsed.Examples) != len(original.Examples) {
		t.Fatalf("Example count changed: %d vs %d", len(reparsed.Examples), len(original.Examples))
	}
	if reparsed.Examples[0].Code != original.Examples[0].Code {
		t.Errorf("Example code changed: %q vs %q", reparsed.Examples[0].Code, original.Examples[0].Code)
	}
}

func TestKebabToTitle(t *testing.T) {
	if got := kebabToTitle("retry-with-backoff"); got != "Retry With Backoff" {
		t.Errorf("Unexpected title: %q", got)
	}
}
