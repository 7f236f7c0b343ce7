// internal/cw/morse.go
package cw

// Morse code timing ratios (ITU standard)
const (
	// DahDitRatio is the ratio of dah duration to dit duration (ITU: 3:1)
	DahDitRatio = 3.0
	// IntraCharSpaceRatio is the space between elements of one character, in dits (ITU: 1:1)
	IntraCharSpaceRatio = 1.0
	// InterCharSpaceRatio is the space between characters, in dits (ITU: 3:1)
	InterCharSpaceRatio = 3.0
	// WordSpaceRatio is the space between words, in dits (ITU: 7:1)
	WordSpaceRatio = 7.0

	// SecondsPerMinute is used for WPM calculations
	SecondsPerMinute = 60.0
	// DitsPerWord is the standard word "PARIS" = 50 dit units
	DitsPerWord = 50.0
)

// treeSize covers patterns of up to six elements.
const treeSize = 128

// morseTree is the binary tree for Morse code lookup.
// Left branch = dit, right branch = dah.
// Index 1 is the root; parent at i, left child at 2i, right child at 2i+1.
var morseTree = buildTree()

func buildTree() [treeSize]rune {
	var tree [treeSize]rune
	for r, s := range chars {
		idx, ok := treeIndex(ParsePattern(s))
		if ok {
			tree[idx] = r
		}
	}
	return tree
}

func treeIndex(p Pattern) (int, bool) {
	if len(p) == 0 {
		return 0, false
	}
	idx := 1
	for _, e := range p {
		idx *= 2
		if e == Dah {
			idx++
		}
		if idx >= treeSize {
			return 0, false
		}
	}
	return idx, true
}

// Decode walks the tree for p and returns the character at its leaf.
// The second result is false when no character sits there.
func Decode(p Pattern) (rune, bool) {
	idx, ok := treeIndex(p)
	if !ok || morseTree[idx] == 0 {
		return 0, false
	}
	return morseTree[idx], true
}
