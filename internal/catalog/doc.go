package catalog

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"patternhub/internal/models"
)

var docConverter = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
	),
)

// RenderDoc renders a pattern's documentation page as an HTML fragment for
// the website. The markdown source is assembled from the pattern's metadata,
// use cases, and examples, then converted with GFM extensions.
func RenderDoc(p models.Pattern) (string, error) {
	var md strings.Builder

	md.WriteString("# " + p.Title + "\n\n")
	if p.Description != "" {
		md.WriteString(p.Description + "\n\n")
	}
	md.WriteString(fmt.Sprintf("**Category:** %s · **Difficulty:** %s\n\n", p.Category, p.Difficulty))
	if len(p.Tags) > 0 {
		md.WriteString("Tags: `" + strings.Join(p.Tags, "` `") + "`\n\n")
	}

	if len(p.UseCases) > 0 {
		md.WriteString("## Use cases\n\n")
		for _, uc := range p.UseCases {
			md.WriteString("- " + uc + "\n")
		}
		md.WriteString("\n")
	}

	if len(p.Examples) > 0 {
		md.WriteString("## Examples\n")
		for _, ex := range p.Examples {
			md.WriteString("\n")
			if ex.Description != "" {
				md.WriteString(ex.Description + "\n\n")
			}
			md.WriteString("```" + ex.Language + "\n" + ex.Code + "\n```\n")
		}
	}

	if len(p.RelatedPatterns) > 0 {
		md.WriteString("\n## Related patterns\n\n")
		for _, id := range p.RelatedPatterns {
			md.WriteString(fmt.Sprintf("- [%s](/patterns/%s)\n", id, id))
		}
	}

	var html bytes.Buffer
	if err := docConverter.Convert([]byte(md.String()), &html); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}

	return html.String(), nil
}
