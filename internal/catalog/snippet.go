package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"patternhub/internal/models"
)

// Placeholder tokens substituted into example code. Examples intended for
// parameterized generation use these literal tokens at their invocation sites.
const (
	PlaceholderName  = "NAME"
	PlaceholderInput = "INPUT"
)

// Module styles accepted by Generate.
const (
	ModuleESM      = "esm"
	ModuleCommonJS = "commonjs"
)

// Options controls snippet generation. All fields are optional; zero Options
// emits the pattern's canonical example verbatim.
type Options struct {
	Name          string
	Input         string
	ModuleType    string // "" or "esm" leaves imports as-is, "commonjs" rewrites them
	EffectVersion string // embedded as a header comment when set
}

var (
	importRe     = regexp.MustCompile(`^(\s*)import\s+(\{[^}]*\}|\*\s+as\s+\w+|\w+)\s+from\s+(['"][^'"]+['"])\s*;?\s*$`)
	exportDeclRe = regexp.MustCompile(`^(\s*)export\s+(const|let|var|function|class|async function)\b`)
)

// Generate renders a single code snippet from a pattern. The example flagged
// primary is authoritative; otherwise the first example is used. Output is
// always a fully substituted string — never a partial render.
//
// Fails with ErrInvalidPattern when the pattern has zero examples and
// ErrUnsupportedModuleType for an unrecognized module style. Missing patterns
// are a lookup failure surfaced by the caller via GetByID, not here.
func Generate(p models.Pattern, opts Options) (string, error) {
	example, ok := primaryExample(p)
	if !ok {
		return "", fmt.Errorf("pattern %q: %w", p.ID, ErrInvalidPattern)
	}

	switch opts.ModuleType {
	case "", ModuleESM, ModuleCommonJS:
	default:
		return "", fmt.Errorf("module type %q: %w", opts.ModuleType, ErrUnsupportedModuleType)
	}

	code := example.Code
	if opts.Name != "" {
		code = strings.ReplaceAll(code, PlaceholderName, opts.Name)
	}
	if opts.Input != "" {
		code = strings.ReplaceAll(code, PlaceholderInput, opts.Input)
	}

	if opts.ModuleType == ModuleCommonJS {
		code = toCommonJS(code)
	}

	if opts.EffectVersion != "" {
		code = fmt.Sprintf("// effect version: %s\n%s", opts.EffectVersion, code)
	}

	return code, nil
}

// primaryExample returns the example flagged primary, falling back to the
// first example. False when the pattern has none.
func primaryExample(p models.Pattern) (models.Example, bool) {
	if len(p.Examples) == 0 {
		return models.Example{}, false
	}
	for _, ex := range p.Examples {
		if ex.Primary {
			return ex, true
		}
	}
	return p.Examples[0], true
}

// toCommonJS rewrites ESM import/export lines to their CommonJS form. The
// transform is line-based: anything it does not recognize passes through
// unchanged, so output is always a complete snippet.
func toCommonJS(code string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if m := importRe.FindStringSubmatch(line); m != nil {
			binding := m[2]
			if strings.HasPrefix(binding, "* as ") {
				binding = strings.TrimSpace(strings.TrimPrefix(binding, "* as "))
			}
			lines[i] = fmt.Sprintf("%sconst %s = require(%s);", m[1], binding, m[3])
			continue
		}
		if m := exportDeclRe.FindStringSubmatch(line); m != nil {
			lines[i] = m[1] + strings.TrimPrefix(strings.TrimSpace(line), "export ")
		}
	}
	return strings.Join(lines, "\n")
}
