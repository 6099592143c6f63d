package shader

import (
	"fmt"
	"strings"
)

// includePrefix marks a WGSL comment line that pulls in a registered struct source.
//
// Syntax: //@dream:include <name>
const includePrefix = "//@dream:include"

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// sources maps include names to WGSL struct definitions.
	sources map[string]string
}

// PreProcessor expands include directives in WGSL source. Included sources may include others.
// Each registered name is emitted only once per processed source.
type PreProcessor interface {
	// Process replaces every include directive with the registered WGSL source.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: an error if a directive is malformed or names an unregistered source
	Process(source string) (string, error)

	// Register adds or replaces an include source.
	//
	// Parameters:
	//   - name: the include name used in directives
	//   - source: the WGSL text to inject
	Register(name, source string)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor seeded with the given include sources.
//
// Parameters:
//   - sources: include name to WGSL text, may be nil
//
// Returns:
//   - PreProcessor: the pre-processor
func NewPreProcessor(sources map[string]string) PreProcessor {
	p := &preProcessor{sources: make(map[string]string, len(sources))}
	for k, v := range sources {
		p.sources[k] = v
	}
	return p
}

func (p *preProcessor) Register(name, source string) {
	p.sources[name] = source
}

func (p *preProcessor) Process(source string) (string, error) {
	return p.expand(source, make(map[string]bool), 0)
}

// maxIncludeDepth bounds nested includes so a cycle fails instead of recursing forever.
const maxIncludeDepth = 8

func (p *preProcessor) expand(source string, seen map[string]bool, depth int) (string, error) {
	if depth > maxIncludeDepth {
		return "", fmt.Errorf("includes nested deeper than %d", maxIncludeDepth)
	}
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), includePrefix)
		if !ok {
			out = append(out, line)
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) != 1 {
			return "", fmt.Errorf("line %d: include expects exactly one name, got %d", i+1, len(fields))
		}
		name := fields[0]
		src, ok := p.sources[name]
		if !ok {
			return "", fmt.Errorf("line %d: unknown include %q", i+1, name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		expanded, err := p.expand(src, seen, depth+1)
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, expanded)
	}
	return strings.Join(out, "\n"), nil
}
