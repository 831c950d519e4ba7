package entities

import "strings"

// OptionsPerQuestion is the number of choices every question offers.
const OptionsPerQuestion = 4

// Archetype identifies the template a question was generated from.
type Archetype int

const (
	ArchetypeAddition             Archetype = iota + 1 // a + b, operands in [0,20]
	ArchetypeSubtraction                               // a - b, b in [0,a]
	ArchetypeMultiplication                            // a × b, operands in [0,10]
	ArchetypeDivision                                  // dividend ÷ divisor, exact quotient in [1,10]
	ArchetypeComparison                                // larger or smaller of two distinct numbers
	ArchetypeBlankAddition                             // __ + b = c
	ArchetypeBlankSubtraction                          // a - __ = c
	ArchetypeBoundedSumDifference                      // addition with a+b <= 10 or subtraction in [0,10]
)

// ArchetypeCount is the number of archetypes the generator picks from.
const ArchetypeCount = 8

func (a Archetype) String() string {
	switch a {
	case ArchetypeAddition:
		return "addition"
	case ArchetypeSubtraction:
		return "subtraction"
	case ArchetypeMultiplication:
		return "multiplication"
	case ArchetypeDivision:
		return "division"
	case ArchetypeComparison:
		return "comparison"
	case ArchetypeBlankAddition:
		return "blank_addition"
	case ArchetypeBlankSubtraction:
		return "blank_subtraction"
	case ArchetypeBoundedSumDifference:
		return "bounded_sum_difference"
	default:
		return "unknown"
	}
}

// Question is a single multiple-choice arithmetic question.
type Question struct {
	Text        string    // prompt shown to the player, may contain the blank marker "__"
	Options     []string  // exactly 4 distinct decimal renderings
	AnswerIndex int       // index into Options of the correct choice
	Archetype   Archetype // template the question came from
	Correct     int       // correct integer answer
	Operands    []int     // numbers shown in the prompt, in prompt order
}

// Key identifies a question for de-duplication inside a quiz.
func (q Question) Key() string {
	return q.Text + "|" + strings.Join(q.Options, ",")
}

// CorrectOption returns the rendered correct choice.
func (q Question) CorrectOption() string {
	if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.AnswerIndex]
}

// IsCorrect reports whether choice selects the correct option.
// Out-of-range choices are simply wrong.
func (q Question) IsCorrect(choice int) bool {
	return choice == q.AnswerIndex && choice >= 0 && choice < len(q.Options)
}
