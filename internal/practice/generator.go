// internal/practice/generator.go

// Package practice generates randomized practice text: character groups,
// common words, callsigns and prosigns.
package practice

import (
	"math/rand/v2"
	"strings"

	"github.com/samber/lo"

	"github.com/ColonelBlimp/cwtrainer/internal/cw"
)

const (
	// CallsignChance is the per-word probability of a callsign in RandomText.
	CallsignChance = 0.05
	// ProsignChance is the per-word probability of a prosign in RandomText.
	ProsignChance = 0.05
)

// EnabledSet selects the content categories the generators may draw from.
type EnabledSet struct {
	Letters   bool
	Numbers   bool
	Symbols   bool
	Callsigns bool
	Prosigns  bool
}

// AllEnabled returns a set with every category switched on.
func AllEnabled() EnabledSet {
	return EnabledSet{Letters: true, Numbers: true, Symbols: true, Callsigns: true, Prosigns: true}
}

// Alphabet returns the characters RandomGroups draws from, in the order
// letters, numbers, symbols.
func (e EnabledSet) Alphabet() []rune {
	var parts [][]rune
	if e.Letters {
		parts = append(parts, cw.Letters)
	}
	if e.Numbers {
		parts = append(parts, cw.Numbers)
	}
	if e.Symbols {
		parts = append(parts, cw.Symbols)
	}
	return lo.Flatten(parts)
}

// Generator produces practice strings. It is not safe for concurrent use.
type Generator struct {
	Enabled EnabledSet
	rng     *rand.Rand
}

// New returns a generator with every category enabled, seeded with seed.
func New(seed uint64) *Generator {
	return &Generator{
		Enabled: AllEnabled(),
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// MakeCallsign composes a prefix, one digit, one letter and up to two more
// letters, each added with even odds.
func (g *Generator) MakeCallsign() string {
	var b strings.Builder
	b.WriteString(pick(g.rng, callPrefixes))
	b.WriteRune(pick(g.rng, cw.Numbers))
	b.WriteRune(pick(g.rng, cw.Letters))
	for range 2 {
		if g.rng.Float64() > 0.5 {
			b.WriteRune(pick(g.rng, cw.Letters))
		}
	}
	return b.String()
}

// RandomText returns n space-separated words. Each slot is independently a
// callsign, a '@'-marked prosign or a common word, in that priority.
func (g *Generator) RandomText(n int) string {
	if n <= 0 {
		return ""
	}
	words := lo.Times(n, func(int) string {
		if g.rng.Float64() < CallsignChance && g.Enabled.Callsigns {
			return g.MakeCallsign()
		}
		if g.rng.Float64() < ProsignChance && g.Enabled.Prosigns {
			return string(cw.ProsignMarker) + pick(g.rng, cw.Prosigns())
		}
		return pick(g.rng, topWords)
	})
	return strings.Join(words, " ")
}

// RandomGroups returns groups of size characters drawn with replacement from
// the enabled alphabet. With no character category enabled it returns "";
// callers treat that as nothing to send.
func (g *Generator) RandomGroups(groups, size int) string {
	alphabet := g.Enabled.Alphabet()
	if len(alphabet) == 0 || groups <= 0 || size <= 0 {
		return ""
	}
	out := lo.Times(groups, func(int) string {
		group := lo.Times(size, func(int) rune { return pick(g.rng, alphabet) })
		return string(group)
	})
	return strings.Join(out, " ")
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}
