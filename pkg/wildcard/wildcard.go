// Package wildcard expands shell-style *, ?, [...] patterns to
// concrete filesystem paths and aggregates results from multiple
// directories in sorted order.
package wildcard

import (
	"path/filepath"
	"sort"

	"github.com/hashtree/hashtree/pkg/herrors"
)

// Expand resolves each pattern with filepath.Glob and returns the
// sorted, deduplicated union of all matches. A pattern that expands to
// nothing is fatal when strict is true.
func Expand(patterns []string, strict bool) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, herrors.Wrap("expand", pattern, herrors.PatternSyntax, err)
		}
		if len(matches) == 0 {
			if strict {
				return nil, herrors.New("expand", pattern, herrors.NoMatches)
			}
			continue
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}

	sort.Strings(out)
	return out, nil
}
