package identifier

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// phonetic substitutions applied before the generic diacritic stripping.
// These are the cases where dropping the mark loses information a reader
// of the generated identifier would expect to keep (ö -> oe, not o).
var phonetic = map[rune]string{
	'ä': "ae", 'Ä': "Ae",
	'ö': "oe", 'Ö': "Oe",
	'ü': "ue", 'Ü': "Ue",
	'ß': "ss",
	'æ': "ae", 'Æ': "Ae",
	'ø': "oe", 'Ø': "Oe",
	'å': "aa", 'Å': "Aa",
	'œ': "oe", 'Œ': "Oe",
	'đ': "d", 'Đ': "D",
	'ð': "d", 'Ð': "D",
	'þ': "th", 'Þ': "Th",
	'ł': "l", 'Ł': "L",
}

var digitWords = [10]string{
	"zero", "one", "two", "three", "four",
	"five", "six", "seven", "eight", "nine",
}

// stripMarks removes combining marks left over after NFD decomposition.
var stripMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Transliterate converts a display name to a best-effort ASCII form.
// Characters with a conventional multi-letter romanization go through the
// phonetic table; everything else is NFD-decomposed with combining marks
// removed. Runes that still aren't ASCII afterwards are dropped.
func Transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if sub, ok := phonetic[r]; ok {
			b.WriteString(sub)
			continue
		}
		b.WriteRune(r)
	}
	stripped, _, err := transform.String(stripMarks, b.String())
	if err != nil {
		stripped = b.String()
	}
	var out strings.Builder
	out.Grow(len(stripped))
	for _, r := range stripped {
		if r < 128 {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// Tokenize splits a transliterated name into lowercase tokens on
// whitespace and punctuation boundaries. A token that begins with digits
// has the leading digit run spelled out in words, since none of the
// target grammars allow an identifier segment to start with a digit.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := spellLeadingDigits(strings.ToLower(f))
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// spellLeadingDigits rewrites a leading digit run as words: "2fast"
// becomes "twofast", "42" becomes "fourtwo".
func spellLeadingDigits(tok string) string {
	i := 0
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
	}
	if i == 0 {
		return tok
	}
	var b strings.Builder
	for _, d := range tok[:i] {
		b.WriteString(digitWords[d-'0'])
	}
	b.WriteString(tok[i:])
	return b.String()
}
