package service

import (
	"math/rand"
	"strconv"

	"github.com/jim941206/110311/internal/domain/entities"
)

const (
	maxDistractorAttempts = 200 // nearby-delta attempts before forcing
	maxForceAttempts      = 200 // forced-offset attempts before sequential fill
	maxNearDelta          = 5
	maxForceDelta         = 6
)

// OptionGenerator generates multiple choice options for numeric answers.
type OptionGenerator struct {
	rnd *rand.Rand
}

// NewOptionGenerator creates an option generator drawing from rnd.
func NewOptionGenerator(rnd *rand.Rand) *OptionGenerator {
	return &OptionGenerator{rnd: rnd}
}

// GenerateOptions creates 4 distinct options including correct.
// Returns: options slice and the index of the correct answer (0-3).
func (g *OptionGenerator) GenerateOptions(correct int) ([]string, int) {
	values := g.distractorSet(correct)

	g.rnd.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
	if len(values) > entities.OptionsPerQuestion {
		values = values[:entities.OptionsPerQuestion]
	}
	if indexOf(values, correct) < 0 {
		values[g.rnd.Intn(len(values))] = correct
	}

	options := make([]string, len(values))
	for i, v := range values {
		options[i] = strconv.Itoa(v)
	}

	return options, indexOf(values, correct)
}

// distractorSet returns correct plus nearby non-negative values, in insertion order.
func (g *OptionGenerator) distractorSet(correct int) []int {
	set := newIntSet(correct)

	// Nearby values first: correct ± (1..5), negatives rejected.
	for tries := 0; set.len() < entities.OptionsPerQuestion && tries < maxDistractorAttempts; tries++ {
		candidate := correct + g.signedDelta(maxNearDelta)
		if candidate < 0 {
			continue
		}
		set.add(candidate)
	}

	// Forced values, clamped at zero.
	for tries := 0; set.len() < entities.OptionsPerQuestion && tries < maxForceAttempts; tries++ {
		set.add(max(0, correct+g.signedDelta(maxForceDelta)))
	}

	// Sequential fill always terminates: correct+1, correct+2, ... are new values.
	for offset := 1; set.len() < entities.OptionsPerQuestion; offset++ {
		set.add(correct + offset)
	}

	return set.values
}

// signedDelta returns ±(1..limit).
func (g *OptionGenerator) signedDelta(limit int) int {
	d := g.rnd.Intn(limit) + 1
	if g.rnd.Float64() < 0.5 {
		return -d
	}
	return d
}

// intSet keeps insertion order so a fixed seed yields a fixed option order.
type intSet struct {
	seen   map[int]struct{}
	values []int
}

func newIntSet(first int) *intSet {
	s := &intSet{seen: make(map[int]struct{}, entities.OptionsPerQuestion)}
	s.add(first)
	return s
}

func (s *intSet) add(v int) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.values = append(s.values, v)
}

func (s *intSet) len() int {
	return len(s.values)
}

func indexOf(values []int, target int) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
