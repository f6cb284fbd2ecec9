package pipeline

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/uav-enrich/internal/model"
)

// Extract parses a newline-delimited research response into the fixed field
// table. Every field is present in the result; fields the response does not
// label resolve to model.NotFound.
func Extract(body string) map[model.Field]string {
	lines := splitLines(body)
	fold := cases.Fold()

	folded := make([]string, len(lines))
	for i, l := range lines {
		folded[i] = fold.String(l)
	}

	out := make(map[model.Field]string, len(model.Fields))
	for _, spec := range model.Fields {
		out[spec.Field] = matchLabel(lines, folded, fold.String(spec.Label)+":")
	}
	return out
}

// ExtractField returns the value labeled by label in body, or model.NotFound.
// The label match is a case-insensitive line prefix; the value is everything
// after the first colon on that line.
func ExtractField(body, label string) string {
	lines := splitLines(body)
	fold := cases.Fold()

	folded := make([]string, len(lines))
	for i, l := range lines {
		folded[i] = fold.String(l)
	}
	return matchLabel(lines, folded, fold.String(label)+":")
}

// matchLabel scans lines in order and returns the value of the first line
// whose folded form starts with prefix. Only the first colon separates the
// label from the value, so URLs with ports or schemes survive intact.
func matchLabel(lines, folded []string, prefix string) string {
	for i, f := range folded {
		if !strings.HasPrefix(f, prefix) {
			continue
		}
		_, value, ok := strings.Cut(lines[i], ":")
		if !ok {
			continue
		}
		return strings.TrimSpace(value)
	}
	return model.NotFound
}

// splitLines splits on '\n' and trims surrounding whitespace (including a
// trailing '\r') from each line.
func splitLines(body string) []string {
	raw := strings.Split(body, "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}
