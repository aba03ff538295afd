package normalize

import (
	"strings"
	"unicode"
)

// stopWords are lower-cased when they appear anywhere but the first token.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "as": {}, "at": {}, "but": {}, "by": {},
	"for": {}, "in": {}, "nor": {}, "of": {}, "on": {}, "or": {}, "so": {},
	"the": {}, "to": {}, "up": {}, "yet": {}, "is": {},
}

// Title capitalizes each word of text except stop words, preserving trailing
// punctuation. A word opening a segment is always capitalized even when it is
// a stop word, and clause punctuation (colon, period, and the like) starts a
// new segment: "the lord of THE rings: a story" -> "The Lord of the Rings: A Story".
func Title(text string) string {
	if text == "" {
		return ""
	}

	words := strings.Fields(text)
	segmentStart := true
	for i, word := range words {
		core, punct := splitPunct(word)
		if core == "" {
			if endsSegment(punct) {
				segmentStart = true
			}
			continue
		}
		lower := strings.ToLower(core)
		if _, stop := stopWords[lower]; stop && !segmentStart {
			words[i] = lower + punct
		} else {
			words[i] = capitalize(lower) + punct
		}
		segmentStart = endsSegment(punct)
	}

	return strings.Join(words, " ")
}

// endsSegment reports whether trailing punctuation closes a clause, so the
// next word is treated like a first token.
func endsSegment(punct string) bool {
	return strings.ContainsAny(punct, ":;.!?")
}

// Email lower-cases and trims an email address for storage and lookup.
func Email(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// splitPunct separates a word's leading letter/digit run from any trailing
// punctuation so "rings:" normalizes to "Rings:".
func splitPunct(word string) (core, punct string) {
	for i, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-' || r == '’' {
			continue
		}
		return word[:i], word[i:]
	}
	return word, ""
}

func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
