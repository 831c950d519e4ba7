package service

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/jim941206/110311/internal/domain/entities"
)

// ErrGenerationExhausted marks a bounded search that hit its retry cap and fell back.
// It is logged, never returned: the generator always produces a playable quiz.
var ErrGenerationExhausted = errors.New("generation retry cap reached")

const (
	DefaultQuizSize = 4

	maxDivisionAttempts   = 200
	maxComparisonAttempts = 200
	maxQuizAttempts       = 400
)

// NewRand returns a random source for seed, or a time-seeded one when seed is 0.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// QuestionGenerator produces arithmetic multiple choice questions.
// It is not safe for concurrent use; each quiz controller owns one.
type QuestionGenerator struct {
	rnd     *rand.Rand
	options *OptionGenerator
	labels  entities.Labels
	logger  *zap.Logger
}

// NewQuestionGenerator creates a generator drawing from rnd.
func NewQuestionGenerator(rnd *rand.Rand, labels entities.Labels, logger *zap.Logger) *QuestionGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionGenerator{
		rnd:     rnd,
		options: NewOptionGenerator(rnd),
		labels:  labels,
		logger:  logger,
	}
}

// GenerateQuestion picks one of the archetypes uniformly and builds a question from it.
func (g *QuestionGenerator) GenerateQuestion() entities.Question {
	return g.generate(entities.Archetype(g.randInt(1, entities.ArchetypeCount)))
}

// GenerateQuiz collects n questions, unique by text and options where the retry cap allows.
func (g *QuestionGenerator) GenerateQuiz(n int) entities.Quiz {
	if n <= 0 {
		return entities.Quiz{}
	}

	questions := make([]entities.Question, 0, n)
	seen := make(map[string]struct{}, n)

	for attempts := 0; len(questions) < n && attempts < maxQuizAttempts; attempts++ {
		q := g.GenerateQuestion()
		key := q.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		questions = append(questions, q)
	}

	if missing := n - len(questions); missing > 0 {
		g.logger.Warn("quiz uniqueness search exhausted, filling without de-duplication",
			zap.Int("requested", n),
			zap.Int("unique", len(questions)),
			zap.Error(ErrGenerationExhausted),
		)
		for len(questions) < n {
			questions = append(questions, g.GenerateQuestion())
		}
	}

	return entities.Quiz{Questions: questions}
}

func (g *QuestionGenerator) generate(kind entities.Archetype) entities.Question {
	var (
		text     string
		correct  int
		operands []int
	)

	switch kind {
	case entities.ArchetypeAddition:
		a, b := g.randInt(0, 20), g.randInt(0, 20)
		text, correct, operands = fmt.Sprintf("%d + %d = ?", a, b), a+b, []int{a, b}

	case entities.ArchetypeSubtraction:
		a := g.randInt(0, 20)
		b := g.randInt(0, a)
		text, correct, operands = fmt.Sprintf("%d - %d = ?", a, b), a-b, []int{a, b}

	case entities.ArchetypeMultiplication:
		a, b := g.randInt(0, 10), g.randInt(0, 10)
		text, correct, operands = fmt.Sprintf("%d × %d = ?", a, b), a*b, []int{a, b}

	case entities.ArchetypeDivision:
		dividend, divisor, quotient := g.division()
		text, correct, operands = fmt.Sprintf("%d ÷ %d = ?", dividend, divisor), quotient, []int{dividend, divisor}

	case entities.ArchetypeComparison:
		a, b := g.distinctPair(0, 20)
		if g.rnd.Float64() < 0.5 {
			text, correct = fmt.Sprintf(g.labels.Larger, a, b), max(a, b)
		} else {
			text, correct = fmt.Sprintf(g.labels.Smaller, a, b), min(a, b)
		}
		operands = []int{a, b}

	case entities.ArchetypeBlankAddition:
		b, answer := g.randInt(0, 20), g.randInt(0, 20)
		c := answer + b
		text, correct, operands = fmt.Sprintf(g.labels.BlankAddition, b, c), answer, []int{b, c}

	case entities.ArchetypeBlankSubtraction:
		a := g.randInt(0, 20)
		c := g.randInt(0, a)
		text, correct, operands = fmt.Sprintf(g.labels.BlankSubtract, a, c), a-c, []int{a, c}

	default:
		kind = entities.ArchetypeBoundedSumDifference
		if g.randInt(1, 2) == 1 {
			a := g.randInt(0, 10)
			b := g.randInt(0, 10-a)
			text, correct, operands = fmt.Sprintf("%d + %d = ?", a, b), a+b, []int{a, b}
		} else {
			a := g.randInt(0, 10)
			b := g.randInt(0, a)
			text, correct, operands = fmt.Sprintf("%d - %d = ?", a, b), a-b, []int{a, b}
		}
	}

	options, answerIndex := g.options.GenerateOptions(correct)

	return entities.Question{
		Text:        text,
		Options:     options,
		AnswerIndex: answerIndex,
		Archetype:   kind,
		Correct:     correct,
		Operands:    operands,
	}
}

// division returns an exact division with every factor >= 1.
func (g *QuestionGenerator) division() (dividend, divisor, quotient int) {
	for attempts := 0; attempts < maxDivisionAttempts; attempts++ {
		divisor = g.randInt(1, 10)
		quotient = g.randInt(1, 10)
		dividend = divisor * quotient
		if dividend >= 1 && divisor >= 1 && quotient >= 1 {
			return dividend, divisor, quotient
		}
	}

	g.logger.Debug("division search exhausted", zap.Error(ErrGenerationExhausted))
	divisor = g.randInt(1, 10)
	quotient = g.randInt(1, 10)
	return divisor * quotient, divisor, quotient
}

// distinctPair returns a != b, both in [lo, hi]. The range must hold at least two values.
func (g *QuestionGenerator) distinctPair(lo, hi int) (int, int) {
	a := g.randInt(lo, hi)
	for attempts := 0; attempts < maxComparisonAttempts; attempts++ {
		if b := g.randInt(lo, hi); b != a {
			return a, b
		}
	}

	g.logger.Debug("comparison search exhausted", zap.Error(ErrGenerationExhausted))
	return a, lo + (a-lo+1)%(hi-lo+1)
}

// randInt returns an integer in [lo, hi].
func (g *QuestionGenerator) randInt(lo, hi int) int {
	return lo + g.rnd.Intn(hi-lo+1)
}
