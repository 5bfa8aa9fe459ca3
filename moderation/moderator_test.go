package moderation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestModerator(t *testing.T, words ...string) *Moderator {
	t.Helper()
	m, err := NewModerator(words, '*')
	require.NoError(t, err)
	return m
}

func TestCensor_ReplacesMatchedWords(t *testing.T) {
	req := require.New(t)
	m := newTestModerator(t, "damn", "hell")

	req.Equal("**** right", m.Censor("damn right"))
	req.Equal("what the ****", m.Censor("what the hell"))
}

func TestCensor_CleanTextUntouched(t *testing.T) {
	req := require.New(t)
	m := newTestModerator(t, "damn")

	input := "perfectly fine sentence"
	req.Equal(input, m.Censor(input))
}

func TestCensor_IgnoresCase(t *testing.T) {
	req := require.New(t)
	m := newTestModerator(t, "damn")

	req.Equal("****", m.Censor("DaMn"))
}

func TestCensor_DefeatsPunctuationTricks(t *testing.T) {
	req := require.New(t)
	m := newTestModerator(t, "damn")

	// Separators inside the word are censored along with it
	req.Equal("*******", m.Censor("d.a-m n"))
}

func TestCensor_MatchesInsideLongerWord(t *testing.T) {
	req := require.New(t)
	m := newTestModerator(t, "hell")

	req.Equal("****o", m.Censor("hello"))
}

func TestCensor_EmptyInput(t *testing.T) {
	req := require.New(t)
	m := newTestModerator(t, "damn")

	req.Equal("", m.Censor(""))
}

func TestLoadWords(t *testing.T) {
	req := require.New(t)

	words, err := LoadWords()

	req.NoError(err)
	req.NotEmpty(words)
	for _, w := range words {
		req.NotEmpty(w)
		req.False(strings.HasPrefix(w, "#"), "comment line leaked: %q", w)
		req.Equal(strings.ToLower(w), w, "words are stored lowercased")
	}
}
