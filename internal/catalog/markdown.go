package catalog

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"patternhub/internal/models"
)

const maxPatternMDSize = 100 * 1024 // 100KB

// PatternMDFrontmatter represents the YAML frontmatter of a PATTERN.md file
type PatternMDFrontmatter struct {
	ID              string            `yaml:"id"`
	Title           string            `yaml:"title"`
	Description     string            `yaml:"description"`
	Category        string            `yaml:"category"`
	Difficulty      string            `yaml:"difficulty"`
	Tags            []string          `yaml:"tags"`
	UseCases        []string          `yaml:"use-cases"`
	RelatedPatterns []string          `yaml:"related-patterns"`
	Metadata        map[string]string `yaml:"metadata"`
}

// ParsePatternMD parses PATTERN.md content into a Pattern. The frontmatter
// carries the metadata; each fenced code block in the body becomes an example
// (the first one is primary). Used by the publishing flow and the CLI — the
// HTTP catalog itself loads the compiled JSON document.
func ParsePatternMD(content string) (models.Pattern, error) {
	if len(content) > maxPatternMDSize {
		return models.Pattern{}, fmt.Errorf("content exceeds maximum size of %d bytes", maxPatternMDSize)
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Pattern{}, fmt.Errorf("empty content")
	}

	fm := PatternMDFrontmatter{}
	body := content

	if strings.HasPrefix(content, "---\n") {
		rest := content[4:]
		closingIdx := strings.Index(rest, "\n---")
		if closingIdx == -1 {
			return models.Pattern{}, fmt.Errorf("unterminated YAML frontmatter")
		}
		if err := yaml.Unmarshal([]byte(rest[:closingIdx]), &fm); err != nil {
			return models.Pattern{}, fmt.Errorf("invalid YAML frontmatter: %w", err)
		}
		body = strings.TrimSpace(rest[closingIdx+4:])
	}

	if fm.ID == "" {
		return models.Pattern{}, fmt.Errorf("frontmatter missing required field: id")
	}
	if fm.Title == "" {
		fm.Title = kebabToTitle(fm.ID)
	}
	if !models.ValidCategory(fm.Category) {
		return models.Pattern{}, fmt.Errorf("unknown category %q", fm.Category)
	}
	if !models.ValidDifficulty(fm.Difficulty) {
		return models.Pattern{}, fmt.Errorf("unknown difficulty %q", fm.Difficulty)
	}

	examples := extractExamples(body)

	version := ""
	if fm.Metadata != nil {
		version = fm.Metadata["version"]
	}

	return models.Pattern{
		ID:              fm.ID,
		Title:           fm.Title,
		Description:     fm.Description,
		Category:        fm.Category,
		Difficulty:      fm.Difficulty,
		Tags:            fm.Tags,
		Examples:        examples,
		UseCases:        fm.UseCases,
		RelatedPatterns: fm.RelatedPatterns,
		Version:         version,
		UpdatedAt:       time.Now(),
	}, nil
}

// extractExamples pulls fenced code blocks out of a markdown body. The text
// preceding a block becomes its description; the first block is primary.
func extractExamples(body string) []models.Example {
	var examples []models.Example
	lines := strings.Split(body, "\n")

	var pending []string // prose lines preceding the next fence
	inFence := false
	var lang string
	var code []string

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			if !inFence {
				inFence = true
				lang = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				if lang == "" {
					lang = "typescript"
				}
				code = code[:0]
				continue
			}
			inFence = false
			examples = append(examples, models.Example{
				Language:    lang,
				Code:        strings.Join(code, "\n"),
				Description: strings.TrimSpace(strings.Join(pending, "\n")),
				Primary:     len(examples) == 0,
			})
			pending = nil
			continue
		}
		if inFence {
			code = append(code, line)
		} else if strings.TrimSpace(line) != "" && !strings.HasPrefix(line, "#") {
			pending = append(pending, line)
		}
	}

	return examples
}

// FormatPatternMD converts a pattern back to PATTERN.md format.
func FormatPatternMD(p models.Pattern) string {
	var sb strings.Builder

	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("id: %s\n", p.ID))
	sb.WriteString(fmt.Sprintf("title: %q\n", p.Title))
	if p.Description != "" {
		sb.WriteString(fmt.Sprintf("description: %q\n", p.Description))
	}
	sb.WriteString(fmt.Sprintf("category: %s\n", p.Category))
	sb.WriteString(fmt.Sprintf("difficulty: %s\n", p.Difficulty))
	if len(p.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("tags: [%s]\n", strings.Join(p.Tags, ", ")))
	}
	if len(p.UseCases) > 0 {
		sb.WriteString("use-cases:\n")
		for _, uc := range p.UseCases {
			sb.WriteString(fmt.Sprintf("  - %q\n", uc))
		}
	}
	if len(p.RelatedPatterns) > 0 {
		sb.WriteString(fmt.Sprintf("related-patterns: [%s]\n", strings.Join(p.RelatedPatterns, ", ")))
	}
	if p.Version != "" {
		sb.WriteString("metadata:\n")
		sb.WriteString(fmt.Sprintf("  version: %q\n", p.Version))
	}
	sb.WriteString("---\n\n")

	sb.WriteString("# " + p.Title + "\n")
	for _, ex := range p.Examples {
		sb.WriteString("\n")
		if ex.Description != "" {
			sb.WriteString(ex.Description + "\n\n")
		}
		sb.WriteString("```" + ex.Language + "\n")
		sb.WriteString(ex.Code)
		if !strings.HasSuffix(ex.Code, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("```\n")
	}

	return sb.String()
}

// kebabToTitle converts "retry-with-backoff" to "Retry With Backoff"
func kebabToTitle(s string) string {
	words := strings.Split(s, "-")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
