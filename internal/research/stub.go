package research

import (
	"context"
	"strings"
)

// StubResearcher returns a canned labeled answer without network access.
// It backs --offline runs and dry runs.
type StubResearcher struct{}

// Research implements Researcher.
func (s *StubResearcher) Research(ctx context.Context, companyName string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, Classify(ProviderStub, 0, err)
	}

	slug := stubSlug(companyName)
	site := "https://www." + slug + ".example"
	body := strings.Join([]string{
		"Website: " + site,
		"Category: UAV systems (offline placeholder)",
		"Size: N/A",
		"Countries: N/A",
		"UAV Type: N/A",
		"Launch Recovery: N/A",
		"Services: N/A",
		"Manufacturing: No",
		"Composites: No",
		"Email: info@" + slug + ".example",
		"Phone: N/A",
		"LinkedIn: https://www.linkedin.com/company/" + slug,
	}, "\n")

	return newResult(ProviderStub, body, []string{site})
}

func stubSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "company"
	}
	return slug
}
