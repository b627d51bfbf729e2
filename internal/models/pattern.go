package models

import "time"

// Category values recognized by the catalog. Patterns outside this set are
// rejected at load time.
const (
	CategoryErrorHandling      = "error-handling"
	CategoryConcurrency        = "concurrency"
	CategoryDataTransformation = "data-transformation"
	CategoryTesting            = "testing"
	CategoryServices           = "services"
	CategoryStreams            = "streams"
	CategoryCaching            = "caching"
	CategoryObservability      = "observability"
	CategoryScheduling         = "scheduling"
	CategoryResourceManagement = "resource-management"
)

// Difficulty values recognized by the catalog.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Categories lists all valid category values in display order.
var Categories = []string{
	CategoryErrorHandling,
	CategoryConcurrency,
	CategoryDataTransformation,
	CategoryTesting,
	CategoryServices,
	CategoryStreams,
	CategoryCaching,
	CategoryObservability,
	CategoryScheduling,
	CategoryResourceManagement,
}

// Difficulties lists all valid difficulty values.
var Difficulties = []string{
	DifficultyBeginner,
	DifficultyIntermediate,
	DifficultyAdvanced,
}

// ValidCategory reports whether c is a member of the category enumeration.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// ValidDifficulty reports whether d is a member of the difficulty enumeration.
func ValidDifficulty(d string) bool {
	for _, v := range Difficulties {
		if v == d {
			return true
		}
	}
	return false
}

// Example is a single code example attached to a pattern
type Example struct {
	Language    string `json:"language"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	Primary     bool   `json:"primary,omitempty"` // authoritative example for snippet generation
}

// Pattern is the canonical unit of catalog content
type Pattern struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`   // one of Categories
	Difficulty      string    `json:"difficulty"` // one of Difficulties
	Tags            []string  `json:"tags,omitempty"`
	Examples        []Example `json:"examples"`
	UseCases        []string  `json:"useCases,omitempty"`
	RelatedPatterns []string  `json:"relatedPatterns,omitempty"`
	Version         string    `json:"version,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt,omitempty"`
}

// PatternSummary is the list-view projection of a Pattern. It is always
// derived from a Pattern, never constructed independently.
type PatternSummary struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
	Tags        []string `json:"tags,omitempty"`
}

// CatalogDocument is the on-disk layout of the pattern catalog
type CatalogDocument struct {
	Version     string    `json:"version,omitempty"`
	LastUpdated time.Time `json:"lastUpdated,omitempty"`
	Patterns    []Pattern `json:"patterns"`
}

// SearchRequest represents the request body for pattern search
type SearchRequest struct {
	Query      string `json:"query,omitempty"`
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Limit      *int   `json:"limit,omitempty"`
}

// SearchResponse represents the search result payload
type SearchResponse struct {
	Patterns []PatternSummary `json:"patterns"`
	Count    int              `json:"count"`
}

// GenerateRequest represents the request body for snippet generation
type GenerateRequest struct {
	PatternID     string `json:"patternId"`
	Name          string `json:"name,omitempty"`
	Input         string `json:"input,omitempty"`
	ModuleType    string `json:"moduleType,omitempty"`    // "esm" (default) or "commonjs"
	EffectVersion string `json:"effectVersion,omitempty"` // embedded as a header comment
}

// GenerateResponse represents the generated snippet payload
type GenerateResponse struct {
	PatternID   string `json:"patternId"`
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	TraceID     string `json:"traceId"`
	TemplateURI string `json:"templateUri"`
}
