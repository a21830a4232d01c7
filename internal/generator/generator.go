// Package generator builds practice text for timed typing tests.
package generator

import (
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// CommonWords is the default vocabulary for typing tests.
var CommonWords = strings.Fields(`
the be to of and a in that have it for not on with he as you do at this
but his by from they we say her she or an will my one all would there
their what so up out if about who get which go me when make can like time
no just him know take people into year your good some could them see other
than then now look only come its over think also back after use two how our
work first well way even new want because any these give day most us
`)

// Options controls capitalisation and punctuation of generated words.
type Options struct {
	CapsPct  float64
	PunctPct float64
	PunctSet []rune
}

// Generator produces randomized typing text.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate selects count words uniformly from words and applies the
// caps and punctuation rules. An empty vocabulary falls back to CommonWords.
func (g *Generator) Generate(words []string, count int, opts Options) []string {
	if len(words) == 0 {
		words = CommonWords
	}
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		word := words[g.rnd.Intn(len(words))]
		word = applyCaps(g.rnd, word, opts.CapsPct)
		word = applyPunct(g.rnd, word, opts.PunctPct, opts.PunctSet)
		result = append(result, word)
	}
	return result
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 || rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 || rnd.Float64() > punctPct {
		return word
	}
	return word + string(punctSet[rnd.Intn(len(punctSet))])
}
