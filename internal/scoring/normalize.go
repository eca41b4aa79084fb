package scoring

import (
	"strings"
	"unicode"
)

// contractions maps common English contractions to their expanded forms.
// Expansion runs after lowercasing, so only lowercase keys are needed.
// Longer keys must not be prefixes of shorter ones at the same position;
// the replacer matches whole words only because keys are replaced on a
// word-boundary tokenization, not raw substring replacement.
var contractions = map[string]string{
	"don't":     "do not",
	"doesn't":   "does not",
	"didn't":    "did not",
	"won't":     "will not",
	"wouldn't":  "would not",
	"can't":     "cannot",
	"couldn't":  "could not",
	"shouldn't": "should not",
	"isn't":     "is not",
	"aren't":    "are not",
	"wasn't":    "was not",
	"weren't":   "were not",
	"hasn't":    "has not",
	"haven't":   "have not",
	"hadn't":    "had not",
	"i'm":       "i am",
	"i've":      "i have",
	"i'll":      "i will",
	"i'd":       "i would",
	"you're":    "you are",
	"you've":    "you have",
	"you'll":    "you will",
	"he's":      "he is",
	"she's":     "she is",
	"it's":      "it is",
	"we're":     "we are",
	"we've":     "we have",
	"they're":   "they are",
	"they've":   "they have",
	"that's":    "that is",
	"there's":   "there is",
	"what's":    "what is",
	"let's":     "let us",
}

// Normalize canonicalizes text for word-level comparison: lowercases, expands
// contractions, strips punctuation, and collapses runs of whitespace to a
// single space. The result is trimmed and idempotent — normalizing an already
// normalized string returns it unchanged.
func Normalize(text string) string {
	lower := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lower))
	for _, field := range strings.Fields(lower) {
		// Contractions may arrive wrapped in punctuation ("don't," at a
		// clause end); match on the bare word, the wrapper is stripped in
		// the punctuation pass regardless.
		bare := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
		})
		if expanded, ok := contractions[bare]; ok {
			field = expanded
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(field)
	}

	var out strings.Builder
	out.Grow(b.Len())
	for _, r := range b.String() {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			out.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(out.String()), " ")
}

// Tokens normalizes text and splits it into comparison tokens.
func Tokens(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}
