package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jim941206/110311/internal/domain/entities"
)

var (
	ErrInvalidTransition = errors.New("operation not allowed in current quiz phase")
	ErrInputLocked       = errors.New("question already answered or timed out")
)

const (
	DefaultTimerDuration    = 15 * time.Second
	DefaultPointsPerCorrect = 25
	DefaultCorrectDelay     = 800 * time.Millisecond
	DefaultIncorrectDelay   = 700 * time.Millisecond
)

// QuizSettings configures a quiz controller.
type QuizSettings struct {
	Questions        int           // questions per quiz
	TimerDuration    time.Duration // countdown per question
	PointsPerCorrect int           // points added for a correct answer
	CorrectDelay     time.Duration // pause before advancing after a correct answer
	IncorrectDelay   time.Duration // pause before advancing after a wrong answer or timeout
}

// DefaultQuizSettings returns the standard 4-question, 15-second quiz.
func DefaultQuizSettings() QuizSettings {
	return QuizSettings{
		Questions:        DefaultQuizSize,
		TimerDuration:    DefaultTimerDuration,
		PointsPerCorrect: DefaultPointsPerCorrect,
		CorrectDelay:     DefaultCorrectDelay,
		IncorrectDelay:   DefaultIncorrectDelay,
	}
}

// QuizController owns one quiz session and its state machine.
//
// The controller never reads the clock: every operation that depends on time
// takes the current instant from the caller. It is not safe for concurrent use.
type QuizController struct {
	generator QuizGenerator
	listener  Listener
	settings  QuizSettings
	logger    *zap.Logger

	sessionID     string
	phase         entities.Phase
	quiz          entities.Quiz
	currentIndex  int
	score         int
	inputEnabled  bool
	questionStart time.Time
	timeRemaining time.Duration
	epoch         uint64
	pending       *entities.ScheduledAdvance
	endedAt       time.Time
}

// NewQuizController creates a controller in the Start phase.
func NewQuizController(
	generator QuizGenerator,
	listener Listener,
	settings QuizSettings,
	logger *zap.Logger,
) *QuizController {
	if listener == nil {
		listener = NopListener{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &QuizController{
		generator:     generator,
		listener:      listener,
		settings:      settings,
		logger:        logger,
		phase:         entities.PhaseStart,
		timeRemaining: settings.TimerDuration,
	}
}

// Begin starts a fresh quiz. Calling it mid-quiz abandons the current one.
func (c *QuizController) Begin(now time.Time) {
	c.epoch++
	c.pending = nil
	c.sessionID = uuid.NewString()
	c.quiz = c.generator.GenerateQuiz(c.settings.Questions)
	c.currentIndex = 0
	c.score = 0

	c.logger.Debug("quiz started",
		zap.String("session_id", c.sessionID),
		zap.Int("questions", c.quiz.Len()),
	)

	if c.quiz.Len() == 0 {
		c.end(now)
		return
	}

	c.startQuestion(now)
}

// SubmitAnswer records the first answer to the current question and reports whether it was correct.
// Out-of-range choices count as wrong answers. The next question follows after a delay, see Tick.
func (c *QuizController) SubmitAnswer(now time.Time, choice int, at entities.Point) (bool, error) {
	switch c.phase {
	case entities.PhaseInProgress:
	case entities.PhaseAwaitingAdvance:
		return false, ErrInputLocked
	default:
		return false, ErrInvalidTransition
	}
	if !c.inputEnabled {
		return false, ErrInputLocked
	}

	c.lockInput(now)

	q := c.quiz.Questions[c.currentIndex]
	if q.IsCorrect(choice) {
		c.score += c.settings.PointsPerCorrect
		c.schedule(now.Add(c.settings.CorrectDelay))
		c.logger.Debug("correct answer",
			zap.String("session_id", c.sessionID),
			zap.Int("index", c.currentIndex),
			zap.Int("score", c.score),
		)
		c.listener.OnCorrect(at)
		return true, nil
	}

	c.schedule(now.Add(c.settings.IncorrectDelay))
	c.logger.Debug("incorrect answer",
		zap.String("session_id", c.sessionID),
		zap.Int("index", c.currentIndex),
		zap.Int("choice", choice),
	)
	c.listener.OnIncorrect(at)
	return false, nil
}

// Tick drives the controller from a periodic loop.
// A due scheduled advance runs first; otherwise the countdown is updated and
// an expired question times out. At most one of the two happens per tick.
func (c *QuizController) Tick(now time.Time) {
	if p := c.pending; p != nil && p.Epoch == c.epoch && !now.Before(p.Due) {
		c.advance(now)
		return
	}

	if c.phase != entities.PhaseInProgress || !c.inputEnabled {
		return
	}

	remaining := c.settings.TimerDuration - now.Sub(c.questionStart)
	if remaining > 0 {
		c.timeRemaining = remaining
		return
	}

	c.timeRemaining = 0
	c.timeout(now)
}

// Advance moves to the next question, or ends the quiz after the last one.
// Any scheduled advance is cancelled.
func (c *QuizController) Advance(now time.Time) error {
	if c.phase != entities.PhaseInProgress && c.phase != entities.PhaseAwaitingAdvance {
		return ErrInvalidTransition
	}
	c.advance(now)
	return nil
}

// PendingAdvance returns the scheduled advance, if any, for callers that run their own timers.
func (c *QuizController) PendingAdvance() (entities.ScheduledAdvance, bool) {
	if c.pending == nil {
		return entities.ScheduledAdvance{}, false
	}
	return *c.pending, true
}

// FireAdvance runs the advance scheduled under epoch. It reports false and does
// nothing if that advance was cancelled or superseded by Begin, Reset or Advance.
func (c *QuizController) FireAdvance(now time.Time, epoch uint64) bool {
	if c.pending == nil || c.pending.Epoch != epoch || epoch != c.epoch {
		c.logger.Debug("stale advance ignored",
			zap.String("session_id", c.sessionID),
			zap.Uint64("epoch", epoch),
			zap.Uint64("current_epoch", c.epoch),
		)
		return false
	}
	c.advance(now)
	return true
}

// Reset returns the controller to the Start phase.
func (c *QuizController) Reset() error {
	if c.phase == entities.PhaseStart {
		return ErrInvalidTransition
	}

	c.epoch++
	c.pending = nil
	c.phase = entities.PhaseStart
	c.quiz = entities.Quiz{}
	c.currentIndex = 0
	c.score = 0
	c.inputEnabled = false
	c.timeRemaining = c.settings.TimerDuration

	c.logger.Debug("quiz reset", zap.String("session_id", c.sessionID))
	return nil
}

// Phase returns the current phase.
func (c *QuizController) Phase() entities.Phase {
	return c.phase
}

// Settings returns the controller's configuration.
func (c *QuizController) Settings() QuizSettings {
	return c.settings
}

// Snapshot returns a read-only view of the session.
func (c *QuizController) Snapshot() entities.Snapshot {
	s := entities.Snapshot{
		SessionID:      c.sessionID,
		Phase:          c.phase,
		Epoch:          c.epoch,
		CurrentIndex:   c.currentIndex,
		TotalQuestions: c.quiz.Len(),
		Score:          c.score,
		MaxScore:       c.quiz.Len() * c.settings.PointsPerCorrect,
		InputEnabled:   c.inputEnabled,
		TimeRemaining:  c.timeRemaining,
		TimerDuration:  c.settings.TimerDuration,
	}

	if c.phase == entities.PhaseEnded {
		s.EndedAt = c.endedAt
	}

	if c.phase == entities.PhaseInProgress || c.phase == entities.PhaseAwaitingAdvance {
		q := c.quiz.Questions[c.currentIndex]
		s.CurrentQuestion = &q
	}

	return s
}

func (c *QuizController) startQuestion(now time.Time) {
	c.phase = entities.PhaseInProgress
	c.inputEnabled = true
	c.questionStart = now
	c.timeRemaining = c.settings.TimerDuration
	c.listener.OnQuestion(c.currentIndex, c.quiz.Questions[c.currentIndex])
}

// lockInput freezes the countdown at its current value and waits for the advance.
func (c *QuizController) lockInput(now time.Time) {
	c.inputEnabled = false
	c.phase = entities.PhaseAwaitingAdvance
	if remaining := c.settings.TimerDuration - now.Sub(c.questionStart); remaining > 0 {
		c.timeRemaining = remaining
	} else {
		c.timeRemaining = 0
	}
}

func (c *QuizController) timeout(now time.Time) {
	if !c.inputEnabled {
		return
	}

	c.lockInput(now)
	c.schedule(now.Add(c.settings.IncorrectDelay))
	c.logger.Debug("question timed out",
		zap.String("session_id", c.sessionID),
		zap.Int("index", c.currentIndex),
	)
	c.listener.OnTimeout()
}

func (c *QuizController) schedule(due time.Time) {
	c.pending = &entities.ScheduledAdvance{Epoch: c.epoch, Due: due}
}

func (c *QuizController) advance(now time.Time) {
	c.pending = nil
	c.epoch++
	c.currentIndex++

	if c.currentIndex >= c.quiz.Len() {
		c.end(now)
		return
	}

	c.startQuestion(now)
}

func (c *QuizController) end(now time.Time) {
	c.phase = entities.PhaseEnded
	c.inputEnabled = false
	c.pending = nil
	c.endedAt = now

	total := c.quiz.Len() * c.settings.PointsPerCorrect
	c.logger.Debug("quiz ended",
		zap.String("session_id", c.sessionID),
		zap.Int("score", c.score),
		zap.Int("total", total),
	)
	c.listener.OnQuizEnded(c.score, total)
}
