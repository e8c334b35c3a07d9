package moderation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatcher(t *testing.T, opts ...Option) *Matcher {
	t.Helper()
	m, err := FromWordlist(DefaultWordlist(), logger.NewNop(), opts...)
	require.NoError(t, err)
	return m
}

func TestCheckTextEmptyIsValid(t *testing.T) {
	m := newTestMatcher(t)
	for _, in := range []string{"", "   ", "\n\t"} {
		res := m.CheckText(in)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Cleaned)
		assert.Empty(t, res.Detected)
	}
}

func TestCheckTextCleanText(t *testing.T) {
	m := newTestMatcher(t)
	inputs := []string{
		"Bicicleta rodado 29 en excelente estado, poco uso",
		"Vendo disputas legales resueltas", // "puta" inside a longer word
		"Una tontería de precio",
		"Ortografía y gramática, libro de texto",
	}
	for _, in := range inputs {
		res := m.CheckText(in)
		assert.True(t, res.Valid, in)
		assert.Empty(t, res.Cleaned, in)
		assert.Empty(t, res.Message, in)
	}
}

func TestCheckTextDictionaryWord(t *testing.T) {
	m := newTestMatcher(t)

	res := m.CheckText("Sos un idiota")

	assert.False(t, res.Valid)
	assert.Equal(t, []string{"idiota"}, res.Detected)
	assert.Equal(t, "Sos un ******", res.Cleaned)
	assert.Equal(t, "El texto contiene lenguaje inapropiado (detectadas: idiota). Por favor, revisa el contenido.", res.Message)
}

func TestCheckTextKeepsInvalidBytes(t *testing.T) {
	m := newTestMatcher(t)

	res := m.CheckText("Vendo \xffsilla, sos un idiota")

	assert.False(t, res.Valid)
	assert.Equal(t, "Vendo \xffsilla, sos un ******", res.Cleaned)
}

func TestCheckTextInflections(t *testing.T) {
	m := newTestMatcher(t)
	tests := []struct {
		in   string
		term string
	}{
		{"Son unos pelotudos", "pelotudos"},
		{"qué estupido", "estupido"},
		{"ESTÚPIDO", "estúpido"},
		{"imbeciles todos", "imbeciles"},
		{"IDIOTA", "idiota"},
		{"cagones", "cagones"},
	}
	for _, tt := range tests {
		res := m.CheckText(tt.in)
		assert.False(t, res.Valid, tt.in)
		assert.Contains(t, res.Detected, tt.term, tt.in)
	}
}

func TestCheckTextDedupesAndMasksEveryOccurrence(t *testing.T) {
	m := newTestMatcher(t)

	res := m.CheckText("boludo, boludo, BOLUDO")

	assert.False(t, res.Valid)
	assert.Equal(t, []string{"boludo"}, res.Detected)
	assert.Equal(t, "******, ******, ******", res.Cleaned)
}

func TestCheckTextPhrases(t *testing.T) {
	m := newTestMatcher(t)

	res := m.CheckText("sos un cabeza de termo")

	assert.False(t, res.Valid)
	assert.Contains(t, res.Detected, "cabeza de termo")
	assert.Equal(t, "sos un ****** ** *****", res.Cleaned)
}

func TestCheckTextMultipleTerms(t *testing.T) {
	m := newTestMatcher(t)

	res := m.CheckText("Sos un boludo y un idiota")

	assert.False(t, res.Valid)
	assert.ElementsMatch(t, []string{"boludo", "idiota"}, res.Detected)
	assert.Equal(t, "Sos un ****** y un ******", res.Cleaned)
}

func TestDictionaryOnlyMatchIsFlagged(t *testing.T) {
	// "japi" has no inflection pattern; only the dictionary catches it.
	m := newTestMatcher(t)

	res := m.CheckText("que japi")

	assert.False(t, res.Valid)
	assert.Equal(t, []string{"japi"}, res.Detected)
}

type panickingDetector struct{}

func (panickingDetector) Name() string          { return "boom" }
func (panickingDetector) Detect(string) []Match { panic("detector exploded") }

func TestCheckTextFailsOpen(t *testing.T) {
	failures := 0
	m := NewMatcher(logger.NewNop(), []Detector{panickingDetector{}}, WithFailureHook(func() { failures++ }))

	res := m.CheckText("idiota")

	assert.True(t, res.Valid)
	assert.Empty(t, res.Detected)
	assert.Equal(t, 1, failures)
}

func TestMessageWithoutTerms(t *testing.T) {
	assert.Equal(t, "El texto contiene lenguaje inapropiado. Por favor, revisa el contenido.", Message(nil))
}

func TestLoadWordlist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.yaml")
	require.NoError(t, os.WriteFile(path, []byte("words: [chanta]\npatterns: ['chant(a|as)']\n"), 0o600))

	wl, err := LoadWordlist(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"chanta"}, wl.Words)

	m, err := FromWordlist(wl, logger.NewNop())
	require.NoError(t, err)
	assert.False(t, m.CheckText("es un chantas").Valid)
	assert.True(t, m.CheckText("es un idiota").Valid)

	def, err := LoadWordlist("")
	require.NoError(t, err)
	assert.NotEmpty(t, def.Patterns)
}

func TestParseWordlistErrors(t *testing.T) {
	_, err := ParseWordlist([]byte("words: []\n"))
	assert.Error(t, err)

	_, err = FromWordlist(&Wordlist{Patterns: []string{"("}}, logger.NewNop())
	assert.Error(t, err)
}
