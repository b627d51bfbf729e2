package catalog

import (
	"errors"
	"strings"
	"testing"

	"patternhub/internal/models"
)

func snippetPattern(code string) models.Pattern {
	return models.Pattern{
		ID:         "test-pattern",
		Title:      "Test Pattern",
		Category:   models.CategoryErrorHandling,
		Difficulty: models.DifficultyBeginner,
		Examples:   []models.Example{{Language: "typescript", Code: code, Primary: true}},
	}
}

func TestGenerate_SubstitutesPlaceholders(t *testing.T) {
	p := snippetPattern("const x = NAME;")

	out, err := Generate(p, Options{Name: "42"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "const x = 42;" {
		t.Errorf("Expected const x = 42; got %q", out)
	}
}

func TestGenerate_SubstitutesAllOccurrences(t *testing.T) {
	p := snippetPattern("NAME(INPUT); NAME(INPUT);")

	out, err := Generate(p, Options{Name: "run", Input: "payload"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "run(payload); run(payload);" {
		t.Errorf("Unexpected output: %q", out)
	}
}

func TestGenerate_NoOptionsEmitsExampleVerbatim(t *testing.T) {
	code := "import { Effect } from \"effect\";\n\nexport const NAME = Effect.succeed(INPUT);\n"
	p := snippetPattern(code)

	out, err := Generate(p, Options{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != code {
		t.Errorf("Expected verbatim example, got %q", out)
	}
}

func TestGenerate_PrimaryExampleWins(t *testing.T) {
	p := models.Pattern{
		ID: "multi-example",
		Examples: []models.Example{
			{Language: "typescript", Code: "first"},
			{Language: "typescript", Code: "flagged", Primary: true},
		},
	}

	out, err := Generate(p, Options{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "flagged" {
		t.Errorf("Expected the primary example, got %q", out)
	}
}

func TestGenerate_FirstExampleWhenNonePrimary(t *testing.T) {
	p := models.Pattern{
		ID: "multi-example",
		Examples: []models.Example{
			{Language: "typescript", Code: "first"},
			{Language: "typescript", Code: "second"},
		},
	}

	out, err := Generate(p, Options{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "first" {
		t.Errorf("Expected the first example, got %q", out)
	}
}

func TestGenerate_NoExamplesIsInvalidPattern(t *testing.T) {
	p := models.Pattern{ID: "empty-pattern"}

	_, err := Generate(p, Options{})
	if !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("Expected ErrInvalidPattern, got %v", err)
	}
	if !strings.Contains(err.Error(), "empty-pattern") {
		t.Errorf("Error should name the pattern id: %v", err)
	}
}

func TestGenerate_UnknownModuleType(t *testing.T) {
	p := snippetPattern("code")

	_, err := Generate(p, Options{ModuleType: "amd"})
	if !errors.Is(err, ErrUnsupportedModuleType) {
		t.Fatalf("Expected ErrUnsupportedModuleType, got %v", err)
	}
}

func TestGenerate_ESMIsDefault(t *testing.T) {
	code := "import { Effect } from \"effect\";\nexport const job = Effect.unit;"
	p := snippetPattern(code)

	explicit, err := Generate(p, Options{ModuleType: ModuleESM})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	implicit, err := Generate(p, Options{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if explicit != implicit || explicit != code {
		t.Error("esm must leave the example untouched")
	}
}

func TestGenerate_CommonJSRewritesImportsAndExports(t *testing.T) {
	code := "import { Effect, Schedule } from \"effect\";\n\nexport const job = Effect.unit;\n"
	p := snippetPattern(code)

	out, err := Generate(p, Options{ModuleType: ModuleCommonJS})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.Contains(out, "const { Effect, Schedule } = require(\"effect\");") {
		t.Errorf("Import was not rewritten: %q", out)
	}
	if strings.Contains(out, "export ") {
		t.Errorf("Export keyword survived the rewrite: %q", out)
	}
	if !strings.Contains(out, "const job = Effect.unit;") {
		t.Errorf("Declaration body was mangled: %q", out)
	}
}

func TestGenerate_CommonJSNamespaceImport(t *testing.T) {
	p := snippetPattern("import * as Effect from \"effect\";\n")

	out, err := Generate(p, Options{ModuleType: ModuleCommonJS})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(out, "const Effect = require(\"effect\");") {
		t.Errorf("Namespace import was not rewritten: %q", out)
	}
}

func TestGenerate_CommonJSLeavesUnknownLinesAlone(t *testing.T) {
	code := "const helper = () => {};\n// import-like comment: import stuff\nhelper();\n"
	p := snippetPattern(code)

	out, err := Generate(p, Options{ModuleType: ModuleCommonJS})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != code {
		t.Errorf("Non-module lines must pass through unchanged: %q", out)
	}
}

func TestGenerate_EffectVersionHeader(t *testing.T) {
	p := snippetPattern("const x = 1;")

	out, err := Generate(p, Options{EffectVersion: "3.12.0"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.HasPrefix(out, "// effect version: 3.12.0\n") {
		t.Errorf("Expected version header, got %q", out)
	}
	if !strings.HasSuffix(out, "const x = 1;") {
		t.Errorf("Code body missing after header: %q", out)
	}
}

func TestGenerate_SubstitutionBeforeModuleRewrite(t *testing.T) {
	p := snippetPattern("import { Effect } from \"effect\";\nexport const NAME = Effect.succeed(INPUT);")

	out, err := Generate(p, Options{Name: "loadUser", Input: "userId", ModuleType: ModuleCommonJS})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(out, "const loadUser = Effect.succeed(userId);") {
		t.Errorf("Substituted declaration missing: %q", out)
	}
	if strings.Contains(out, "NAME") || strings.Contains(out, "INPUT") {
		t.Errorf("Placeholders survived generation: %q", out)
	}
}
