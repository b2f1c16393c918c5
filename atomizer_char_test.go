package clgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharacterAtomizer_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"single rune", "x"},
		{"kernel snippet", "__kernel void f(__global int* a) { a[0] = 1; }"},
		{"non-ascii", "int café = 0;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := CharacterAtomizerFromText(tt.text)
			indices, err := a.Atomize(tt.text)
			require.NoError(t, err)

			got, err := a.Deatomize(indices)
			require.NoError(t, err)
			assert.Equal(t, tt.text, got)
		})
	}
}

func TestCharacterAtomizer_Tokenize(t *testing.T) {
	a := CharacterAtomizerFromText("aab")
	tokens, err := a.Tokenize("aab")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a", "b"}, tokens)
}

func TestCharacterAtomizer_FrequencyOrdering(t *testing.T) {
	// 'a' appears most often and should therefore get the lowest index.
	a := CharacterAtomizerFromText("baaac")
	idx, ok := a.vocab.indexOf("a")
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestCharacterAtomizer_UnknownAtom(t *testing.T) {
	a := CharacterAtomizerFromText("ab")
	_, err := a.Atomize("abc")
	require.Error(t, err)
	assert.IsType(t, VocabError{}, err)
}

func TestCharacterAtomizer_UnknownIndex(t *testing.T) {
	a := CharacterAtomizerFromText("ab")
	_, err := a.Deatomize([]int{99})
	require.Error(t, err)
	ve, ok := err.(VocabError)
	require.True(t, ok)
	assert.True(t, ve.HasIndex)
}

func TestNewCharacterAtomizer_ExplicitVocab(t *testing.T) {
	a := NewCharacterAtomizer(map[rune]int{'a': 0, 'b': 1})
	indices, err := a.Atomize("ab")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, indices)
	assert.Equal(t, 2, a.VocabSize())
}
