// AngelaMos | 2026
// sanitize.go

package post

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	titlePolicy   = bluemonday.StrictPolicy()
	contentPolicy = bluemonday.UGCPolicy()
)

// sanitizeTitle strips all markup. The result is plain text, so entities
// the policy escaped are decoded again.
func sanitizeTitle(s string) string {
	return strings.TrimSpace(html.UnescapeString(titlePolicy.Sanitize(s)))
}

func sanitizeContent(s string) string {
	return strings.TrimSpace(contentPolicy.Sanitize(s))
}

func sanitizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(sanitizeTitle(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
