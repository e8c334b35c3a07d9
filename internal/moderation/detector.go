package moderation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Match is an offending span of the inspected text. Start and End are byte
// offsets.
type Match struct {
	Term  string
	Start int
	End   int
}

// Detector finds offending spans in a text. Implementations must be safe for
// concurrent use.
type Detector interface {
	Name() string
	Detect(text string) []Match
}

// PatternDetector runs an ordered list of inflection-tolerant expressions.
type PatternDetector struct {
	patterns []*regexp.Regexp
}

// NewPatternDetector compiles each body case-insensitively, followed by a
// trailing word boundary. The leading boundary is checked while scanning so
// that adjacent matches are all found.
func NewPatternDetector(bodies []string) (*PatternDetector, error) {
	d := &PatternDetector{patterns: make([]*regexp.Regexp, 0, len(bodies))}
	for _, body := range bodies {
		re, err := regexp.Compile(`(?i)(` + body + `)(?:[^\p{L}\p{N}_]|$)`)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", body, err)
		}
		d.patterns = append(d.patterns, re)
	}
	return d, nil
}

func (d *PatternDetector) Name() string { return "pattern" }

func (d *PatternDetector) Detect(text string) []Match {
	var out []Match
	for _, re := range d.patterns {
		pos := 0
		for pos < len(text) {
			loc := re.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				break
			}
			start, end := pos+loc[2], pos+loc[3]
			if !wordBefore(text, start) {
				out = append(out, Match{Term: strings.ToLower(text[start:end]), Start: start, End: end})
				pos = end
				continue
			}
			_, size := utf8.DecodeRuneInString(text[start:])
			pos = start + size
		}
	}
	return out
}

func wordBefore(text string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_'
}

// DictionaryDetector looks up whole words and phrases, ignoring case and
// accents.
type DictionaryDetector struct {
	entries map[string][][]string // first folded token -> candidate phrases
}

func NewDictionaryDetector(words []string) *DictionaryDetector {
	d := &DictionaryDetector{entries: make(map[string][][]string)}
	for _, w := range words {
		var phrase []string
		for _, tok := range tokenize(w) {
			phrase = append(phrase, tok.folded)
		}
		if len(phrase) == 0 {
			continue
		}
		d.entries[phrase[0]] = append(d.entries[phrase[0]], phrase)
	}
	return d
}

func (d *DictionaryDetector) Name() string { return "dictionary" }

func (d *DictionaryDetector) Detect(text string) []Match {
	tokens := tokenize(text)
	var out []Match
	for i := 0; i < len(tokens); i++ {
		best := 0
		for _, phrase := range d.entries[tokens[i].folded] {
			if len(phrase) > best && phraseAt(tokens, i, phrase) {
				best = len(phrase)
			}
		}
		if best == 0 {
			continue
		}
		last := tokens[i+best-1]
		start, end := tokens[i].start, last.end
		out = append(out, Match{Term: strings.ToLower(text[start:end]), Start: start, End: end})
		i += best - 1
	}
	return out
}

func phraseAt(tokens []token, i int, phrase []string) bool {
	if i+len(phrase) > len(tokens) {
		return false
	}
	for j, want := range phrase {
		if tokens[i+j].folded != want {
			return false
		}
	}
	return true
}

type token struct {
	folded     string
	start, end int
}

// tokenize splits text into runs of word runes. Phrase entries are matched
// token by token, so any whitespace or punctuation between words is accepted.
// Combining marks stay inside the token they follow.
func tokenize(text string) []token {
	var out []token
	start := -1
	for i, r := range text {
		if isWordRune(r) || (start >= 0 && unicode.Is(unicode.Mn, r)) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, token{folded: fold(text[start:i]), start: start, end: i})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, token{folded: fold(text[start:]), start: start, end: len(text)})
	}
	return out
}

// strippedMark reports the diacritics removed by fold. The combining tilde
// is kept so "año" and "ano" stay distinct.
func strippedMark(r rune) bool {
	return unicode.Is(unicode.Mn, r) && r != '\u0303'
}

// fold lowercases s and removes accents: "PELOTÚDO" becomes "pelotudo".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(strippedMark)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}
