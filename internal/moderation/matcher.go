// Package moderation implements the lexical profanity check applied to
// listing titles, descriptions and report details.
package moderation

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

// Result is the outcome of CheckText.
type Result struct {
	Valid    bool     `json:"valid"`
	Cleaned  string   `json:"cleaned,omitempty"`
	Detected []string `json:"detected,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// Checker is what callers depend on; alternative engines can be swapped in
// behind it.
type Checker interface {
	CheckText(text string) Result
}

// Matcher flags a text when any of its detectors reports a match.
type Matcher struct {
	detectors []Detector
	logger    *logger.Logger
	onFailure func()
}

type Option func(*Matcher)

// WithFailureHook registers fn to be called whenever a detector fails and
// the check is failed open.
func WithFailureHook(fn func()) Option {
	return func(m *Matcher) { m.onFailure = fn }
}

func NewMatcher(log *logger.Logger, detectors []Detector, opts ...Option) *Matcher {
	m := &Matcher{detectors: detectors, logger: log.Named("ProfanityMatcher")}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FromWordlist builds the standard pattern + dictionary matcher. Pattern
// detections are listed first.
func FromWordlist(wl *Wordlist, log *logger.Logger, opts ...Option) (*Matcher, error) {
	patterns, err := NewPatternDetector(wl.Patterns)
	if err != nil {
		return nil, err
	}
	return NewMatcher(log, []Detector{patterns, NewDictionaryDetector(wl.Words)}, opts...), nil
}

// CheckText never blocks on internal failure: a detector panic is logged and
// the text is reported valid.
func (m *Matcher) CheckText(text string) (res Result) {
	if strings.TrimSpace(text) == "" {
		return Result{Valid: true}
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Profanity check failed, allowing text",
				zap.Any("panic", r),
				zap.Int("text_length", len(text)))
			if m.onFailure != nil {
				m.onFailure()
			}
			res = Result{Valid: true}
		}
	}()

	var matches []Match
	for _, d := range m.detectors {
		found := d.Detect(text)
		if len(found) > 0 {
			m.logger.Debug("Detector matched", zap.String("detector", d.Name()), zap.Int("count", len(found)))
		}
		matches = append(matches, found...)
	}
	if len(matches) == 0 {
		return Result{Valid: true}
	}

	detected := dedupe(matches)
	return Result{
		Valid:    false,
		Cleaned:  mask(text, matches),
		Detected: detected,
		Message:  Message(detected),
	}
}

// Message builds the user-facing explanation for a flagged text.
func Message(detected []string) string {
	if len(detected) == 0 {
		return "El texto contiene lenguaje inapropiado. Por favor, revisa el contenido."
	}
	return fmt.Sprintf("El texto contiene lenguaje inapropiado (detectadas: %s). Por favor, revisa el contenido.",
		strings.Join(detected, ", "))
}

func dedupe(matches []Match) []string {
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, mt := range matches {
		if _, ok := seen[mt.Term]; ok {
			continue
		}
		seen[mt.Term] = struct{}{}
		out = append(out, mt.Term)
	}
	return out
}

// mask replaces every rune covered by a match with '*'. Uncovered bytes are
// copied as they are, invalid UTF-8 included.
func mask(text string, matches []Match) string {
	spans := make([]Match, len(matches))
	copy(spans, matches)
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	var b strings.Builder
	b.Grow(len(text))
	si := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		for si < len(spans) && spans[si].End <= i {
			si++
		}
		covered := false
		for k := si; k < len(spans) && spans[k].Start <= i; k++ {
			if i < spans[k].End {
				covered = true
				break
			}
		}
		if covered && !unicode.IsSpace(r) {
			b.WriteByte('*')
		} else {
			b.WriteString(text[i : i+size])
		}
		i += size
	}
	return b.String()
}
