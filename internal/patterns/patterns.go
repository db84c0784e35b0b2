// Package patterns holds the stateless matchers for mentions and links.
// The expressions are compiled once and are safe for concurrent use.
package patterns

import (
	"regexp"
)

// wordClass matches a single Unicode word character. RE2 has no
// lookbehind, so "not preceded by a word character" is expressed as a
// non-word character or the start of input in front of the token.
const wordClass = `[\p{L}\p{N}_]`

var (
	// mentionPattern matches @handle with a 2-32 character handle that is
	// not glued to a preceding word character (foo@bar is not a mention).
	mentionPattern = regexp.MustCompile(
		`(?:^|[^\p{L}\p{N}_])@` + wordClass + `{2,32}(?:$|[^\p{L}\p{N}_])`)

	// linkPattern matches any of: an http(s) URL, a www. token, a t.me or
	// telegram.me path, or a bare domain with a 2+ letter TLD and an
	// optional path. Only the bare domain is closed by \b; the prefixed
	// forms may end in any non-space character, including non-ASCII hosts.
	linkPattern = regexp.MustCompile(`(?i)` +
		`\b(?:https?://\S+|www\.\S+|t\.me/\S+|telegram\.me/\S+)|` +
		`\b(?:[a-z0-9-]+\.)+[a-z]{2,}(?:/\S*)?\b`)
)

// ContainsMention reports whether text contains a standalone @handle
func ContainsMention(text string) bool {
	return mentionPattern.MatchString(text)
}

// ContainsLink reports whether text contains a URL or domain-like token
func ContainsLink(text string) bool {
	return linkPattern.MatchString(text)
}
