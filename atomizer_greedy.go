package clgen

import (
	"sort"
	"strings"
)

// GreedyAtomizer does longest-match tokenization over a seeded,
// domain-specific vocabulary of single characters and multi-character
// atoms (§4.3).
type GreedyAtomizer struct {
	vocab *vocabulary
	// lookup maps the first byte of every multi-character atom to the
	// list of multi-character atoms starting with that byte (§4.3,
	// "Index structure").
	lookup map[byte][]string
}

var _ Atomizer = (*GreedyAtomizer)(nil)

func newGreedyAtomizer(vocab *vocabulary) *GreedyAtomizer {
	lookup := make(map[byte][]string)
	for _, a := range vocab.atoms() {
		if len(a) > 1 {
			head := a[0]
			lookup[head] = append(lookup[head], a)
		}
	}
	return &GreedyAtomizer{vocab: vocab, lookup: lookup}
}

// NewGreedyAtomizer builds a GreedyAtomizer directly from an explicit
// atom -> index vocabulary.
func NewGreedyAtomizer(vocab map[string]int) *GreedyAtomizer {
	return newGreedyAtomizer(newVocabulary(vocab))
}

// SeededGreedyAtomizer returns the GreedyAtomizer seeded with the bundled
// OpenCL atom set unioned with all printable ASCII characters (§3, §4.3).
// This is the atomizer GreedyAtomizerFromText uses to retokenize a corpus.
func SeededGreedyAtomizer() *GreedyAtomizer {
	return newGreedyAtomizer(vocabFromOrderedAtoms(seededOpenCLAtomSet()))
}

// GreedyAtomizerFromText induces a vocabulary from a corpus (§4.3):
// retokenize the corpus with the seeded atomizer, collect the distinct
// tokens seen, and index them in sorted order. The resulting vocabulary
// contains only atoms the corpus actually exercises.
func GreedyAtomizerFromText(corpus string) (*GreedyAtomizer, error) {
	seeded := SeededGreedyAtomizer()
	tokens, err := seeded.Tokenize(corpus)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		seen[t] = struct{}{}
	}
	unique := make([]string, 0, len(seen))
	for t := range seen {
		unique = append(unique, t)
	}
	sort.Strings(unique)
	return newGreedyAtomizer(vocabFromOrderedAtoms(unique)), nil
}

func (a *GreedyAtomizer) Atoms() []string { return a.vocab.atoms() }
func (a *GreedyAtomizer) Indices() []int  { return a.vocab.indices() }
func (a *GreedyAtomizer) VocabSize() int  { return a.vocab.size() }

// anyHasPrefix reports whether any candidate atom starts with prefix,
// i.e. prefix is (not necessarily proper) a prefix of the atom.
func anyHasPrefix(candidates []string, prefix string) bool {
	for _, x := range candidates {
		if strings.HasPrefix(x, prefix) {
			return true
		}
	}
	return false
}

func anyEquals(candidates []string, s string) bool {
	for _, x := range candidates {
		if x == s {
			return true
		}
	}
	return false
}

// Atomize runs the longest-match scan described in §4.3: maintain a left
// anchor i and trial right end j, extend j while some multi-character
// atom for text[i]'s head is (has as a prefix) the candidate slice, then
// shrink from the longest candidate down until an exact atom match is
// found, falling back to the single-character atom otherwise.
func (a *GreedyAtomizer) Atomize(text string) ([]int, error) {
	var indices []int
	i := 0
	for i < len(text) {
		candidates := a.lookup[text[i]]
		if len(candidates) == 0 {
			idx, ok := a.vocab.indexOf(text[i : i+1])
			if !ok {
				return nil, VocabError{Atom: text[i : i+1]}
			}
			indices = append(indices, idx)
			i++
			continue
		}

		j := i + 2
		for j <= len(text) && anyHasPrefix(candidates, text[i:j]) {
			j++
		}
		if j > len(text) {
			j = len(text)
		}

		matched := false
		for j > i+1 {
			if anyEquals(candidates, text[i:j]) {
				idx, ok := a.vocab.indexOf(text[i:j])
				if !ok {
					return nil, VocabError{Atom: text[i:j]}
				}
				indices = append(indices, idx)
				i = j
				matched = true
				break
			}
			j--
		}
		if !matched {
			idx, ok := a.vocab.indexOf(text[i : i+1])
			if !ok {
				return nil, VocabError{Atom: text[i : i+1]}
			}
			indices = append(indices, idx)
			i++
		}
	}
	return indices, nil
}

func (a *GreedyAtomizer) Tokenize(text string) ([]string, error) {
	indices, err := a.Atomize(text)
	if err != nil {
		return nil, err
	}
	return tokenizeWith(a.vocab, indices)
}

func (a *GreedyAtomizer) Deatomize(indices []int) (string, error) {
	return deatomizeWith(a.vocab, indices)
}
