package clgen

// CharacterAtomizer is an atomizer for character-level syntactic
// modelling: one Unicode code point is one atom (§4.2).
type CharacterAtomizer struct {
	vocab *vocabulary
}

var _ Atomizer = (*CharacterAtomizer)(nil)

// NewCharacterAtomizer builds a CharacterAtomizer directly from an
// explicit code-point -> index vocabulary.
func NewCharacterAtomizer(vocab map[rune]int) *CharacterAtomizer {
	forward := make(map[string]int, len(vocab))
	for r, idx := range vocab {
		forward[string(r)] = idx
	}
	return &CharacterAtomizer{vocab: newVocabulary(forward)}
}

// CharacterAtomizerFromText counts code-point frequencies in the corpus
// and assigns indices in descending-frequency order, ties broken by
// insertion order from the counting pass (§4.2).
func CharacterAtomizerFromText(corpus string) *CharacterAtomizer {
	var order []rune
	counts := make(map[rune]int)
	for _, r := range corpus {
		if _, seen := counts[r]; !seen {
			order = append(order, r)
		}
		counts[r]++
	}

	// Stable sort by descending count, preserving first-seen order among
	// ties (Go's sort.SliceStable would also work; a manual insertion
	// sort keeps this free of extra imports).
	sorted := make([]rune, len(order))
	copy(sorted, order)
	for i := 1; i < len(sorted); i++ {
		r := sorted[i]
		j := i - 1
		for j >= 0 && counts[sorted[j]] < counts[r] {
			sorted[j+1] = sorted[j]
			j--
		}
		sorted[j+1] = r
	}

	forward := make(map[string]int, len(sorted))
	for i, r := range sorted {
		forward[string(r)] = i
	}
	return &CharacterAtomizer{vocab: newVocabulary(forward)}
}

func (a *CharacterAtomizer) Atoms() []string { return a.vocab.atoms() }
func (a *CharacterAtomizer) Indices() []int  { return a.vocab.indices() }
func (a *CharacterAtomizer) VocabSize() int  { return a.vocab.size() }

func (a *CharacterAtomizer) Atomize(text string) ([]int, error) {
	indices := make([]int, 0, len(text))
	for _, r := range text {
		idx, ok := a.vocab.indexOf(string(r))
		if !ok {
			return nil, VocabError{Atom: string(r)}
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

func (a *CharacterAtomizer) Tokenize(text string) ([]string, error) {
	indices, err := a.Atomize(text)
	if err != nil {
		return nil, err
	}
	return tokenizeWith(a.vocab, indices)
}

func (a *CharacterAtomizer) Deatomize(indices []int) (string, error) {
	return deatomizeWith(a.vocab, indices)
}
