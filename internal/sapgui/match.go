package sapgui

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowers a label to a diacritic-free, punctuation-free token form
// so SAP Logon entries match regardless of accents, separators or casing.
func Normalize(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	decomposed, _, err := transform.String(t, text)
	if err != nil {
		decomposed = text
	}

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Score rates how well a control label matches an already-normalized target.
// Exact match scores highest, then substring containment in either direction,
// then token overlap. Non-positive scores mean no usable match.
func Score(text, target string) int {
	if text == "" {
		return -1
	}
	normalized := Normalize(text)
	if normalized == "" {
		return -1
	}

	if normalized == target {
		return 100
	}
	if strings.Contains(normalized, target) {
		return 90
	}
	if strings.Contains(target, normalized) && len(normalized) >= 6 {
		return 70
	}

	score := 0
	targetTokens := strings.Fields(target)
	textTokens := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		textTokens[tok] = struct{}{}
	}

	for _, tok := range targetTokens {
		if len(tok) <= 1 {
			continue
		}
		if _, ok := textTokens[tok]; ok {
			score += 8
		} else if strings.Contains(normalized, tok) {
			score += 5
		}
	}

	if len(targetTokens) > 0 && strings.HasPrefix(normalized, targetTokens[0]) {
		score += 10
	}

	return score
}
