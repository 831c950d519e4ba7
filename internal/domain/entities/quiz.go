package entities

import "time"

// Quiz is an ordered, immutable set of questions for one play-through.
type Quiz struct {
	Questions []Question
}

// Len returns the number of questions in the quiz.
func (q Quiz) Len() int {
	return len(q.Questions)
}

// Phase is the quiz controller's state.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseInProgress
	PhaseAwaitingAdvance
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseInProgress:
		return "in_progress"
	case PhaseAwaitingAdvance:
		return "awaiting_advance"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Point is a caller-supplied position, typically where the player clicked.
type Point struct {
	X, Y float64
}

// ScheduledAdvance describes a delayed advance that is waiting to fire.
// It is only valid while the controller's epoch still equals Epoch.
type ScheduledAdvance struct {
	Epoch uint64
	Due   time.Time
}

// Snapshot is a read-only view of a quiz session.
type Snapshot struct {
	SessionID       string        // identifier of the current play-through, empty before the first begin
	Phase           Phase         // current state
	Epoch           uint64        // bumped on begin, reset and every advance
	CurrentQuestion *Question     // nil unless a question is on screen
	CurrentIndex    int           // 0-based index of CurrentQuestion
	TotalQuestions  int           // number of questions in the quiz
	Score           int           // points earned so far
	MaxScore        int           // TotalQuestions × points per correct answer
	InputEnabled    bool          // true only while the question awaits a first answer
	TimeRemaining   time.Duration // countdown for the current question
	TimerDuration   time.Duration // full countdown length
	EndedAt         time.Time     // when the quiz ended, zero unless Phase is PhaseEnded
}

// Percentage returns the score as a rounded percentage of MaxScore.
func (s Snapshot) Percentage() int {
	if s.MaxScore <= 0 {
		return 0
	}
	return (s.Score*100 + s.MaxScore/2) / s.MaxScore
}
