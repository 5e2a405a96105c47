// Package sanitize neutralizes user-supplied text before it is interpolated
// into a language-model prompt.
//
// PromptInput keeps free text readable while escaping the markup an attacker
// could use to break out of a prompt section. Identifier strips that markup
// entirely and is meant for short names embedded inline.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// IdentifierMaxLength is the rune limit applied by Identifier.
const IdentifierMaxLength = 50

const quotedMarker = " (quoted)"

// roleSuffixWindow covers the longest role word at four bytes per rune.
const roleSuffixWindow = 9 * 4

var (
	roleTurnPattern  = regexp.MustCompile(`(?i)\n\s*(system|user|assistant):\s`)
	roleWordSuffix   = regexp.MustCompile(`(?i)(?:system|user|assistant)$`)
	identifierStrips = regexp.MustCompile("[\n\r`{}<>]")
)

// PromptInput bounds input to maxLength characters and defuses prompt
// injection: code fences become ''', forged role turns are marked as quoted
// and angle brackets are HTML-escaped.
//
// The result is stable under re-sanitizing with the same limit. To keep it
// that way, entities already present in input count as the one character they
// stand for, so escaped output can be longer than maxLength.
func PromptInput(input string, maxLength int) string {
	if input == "" || maxLength <= 0 {
		return ""
	}

	clean := truncate(input, maxLength)
	clean = strings.ReplaceAll(clean, "```", "'''")
	clean = roleTurnPattern.ReplaceAllString(clean, "\n${1}"+quotedMarker+": ")
	clean = strings.ReplaceAll(clean, "<", "&lt;")
	clean = strings.ReplaceAll(clean, ">", "&gt;")
	return clean
}

// PromptInputPtr is PromptInput for optional fields. A nil input yields "".
func PromptInputPtr(input *string, maxLength int) string {
	if input == nil {
		return ""
	}
	return PromptInput(*input, maxLength)
}

// Identifier removes newlines, backticks, braces and angle brackets, trims
// surrounding whitespace and then caps the result at IdentifierMaxLength
// runes. The cut is not trimmed again.
func Identifier(input string) string {
	clean := strings.TrimSpace(identifierStrips.ReplaceAllString(input, ""))
	if utf8.RuneCountInString(clean) <= IdentifierMaxLength {
		return clean
	}
	return string([]rune(clean)[:IdentifierMaxLength])
}

// truncate keeps the first limit characters of s. The entities &lt; and &gt;
// count as the single character they stand for and a quoted-role marker
// counts as nothing, so text that has already been sanitized is never cut
// again.
func truncate(s string, limit int) string {
	n := 0
	for i := 0; i < len(s); {
		if n == limit {
			return s[:i]
		}
		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, "&lt;"), strings.HasPrefix(rest, "&gt;"):
			i += 4
		case strings.HasPrefix(rest, quotedMarker+":") && followsRoleWord(s[:i]):
			i += len(quotedMarker)
			continue
		default:
			_, size := utf8.DecodeRuneInString(rest)
			i += size
		}
		n++
	}
	return s
}

// followsRoleWord reports whether prefix ends in a role word, folded the same
// way roleTurnPattern folds it.
func followsRoleWord(prefix string) bool {
	if len(prefix) > roleSuffixWindow {
		prefix = prefix[len(prefix)-roleSuffixWindow:]
	}
	return roleWordSuffix.MatchString(prefix)
}
