package badwords

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mikey/group-guard/internal/utils"
)

// Matcher tests text against a fixed set of whole-word targets
type Matcher struct {
	pattern *regexp.Regexp
	words   []string
}

// Compile builds a matcher from words. It returns nil when no usable word
// remains after normalization, which callers treat as "never matches".
func Compile(words []string) (*Matcher, error) {
	seen := make(map[string]struct{}, len(words))
	normalized := make([]string, 0, len(words))
	for _, w := range words {
		n := utils.NormalizeText(w)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		normalized = append(normalized, n)
	}
	if len(normalized) == 0 {
		return nil, nil
	}

	// Longer words first so "abc" is preferred over "ab"
	sort.SliceStable(normalized, func(i, j int) bool {
		return len(normalized[i]) > len(normalized[j])
	})

	alternatives := make([]string, len(normalized))
	for i, w := range normalized {
		alternatives[i] = regexp.QuoteMeta(w)
	}

	expr := `(?i)(?:^|[^\p{L}\p{N}_])(` + strings.Join(alternatives, "|") + `)(?:$|[^\p{L}\p{N}_])`
	pattern, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to compile badword pattern: %w", err)
	}

	return &Matcher{pattern: pattern, words: normalized}, nil
}

// Match reports whether text contains one of the words as a whole word and
// returns the word that matched. A nil matcher never matches.
func (m *Matcher) Match(text string) (string, bool) {
	if m == nil {
		return "", false
	}
	sub := m.pattern.FindStringSubmatch(utils.NormalizeText(text))
	if sub == nil {
		return "", false
	}
	return sub[1], true
}

// Words returns the normalized words in match priority order
func (m *Matcher) Words() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.words...)
}
