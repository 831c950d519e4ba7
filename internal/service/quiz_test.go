package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jim941206/110311/internal/domain/entities"
)

// fixedGenerator hands out the same questions on every call.
type fixedGenerator struct {
	questions []entities.Question
	calls     int
}

func (g *fixedGenerator) GenerateQuiz(n int) entities.Quiz {
	g.calls++
	if n > len(g.questions) {
		n = len(g.questions)
	}
	if n < 0 {
		n = 0
	}
	qs := make([]entities.Question, n)
	copy(qs, g.questions)
	return entities.Quiz{Questions: qs}
}

type event struct {
	name  string
	index int
	score int
	total int
	at    entities.Point
}

type recordingListener struct {
	events []event
}

func (l *recordingListener) OnQuestion(index int, _ entities.Question) {
	l.events = append(l.events, event{name: "question", index: index})
}

func (l *recordingListener) OnCorrect(at entities.Point) {
	l.events = append(l.events, event{name: "correct", at: at})
}

func (l *recordingListener) OnIncorrect(at entities.Point) {
	l.events = append(l.events, event{name: "incorrect", at: at})
}

func (l *recordingListener) OnTimeout() {
	l.events = append(l.events, event{name: "timeout"})
}

func (l *recordingListener) OnQuizEnded(score, total int) {
	l.events = append(l.events, event{name: "ended", score: score, total: total})
}

func (l *recordingListener) count(name string) int {
	n := 0
	for _, e := range l.events {
		if e.name == name {
			n++
		}
	}
	return n
}

func (l *recordingListener) last() event {
	return l.events[len(l.events)-1]
}

func testQuestions() []entities.Question {
	return []entities.Question{
		{Text: "1 + 1 = ?", Options: []string{"2", "3", "1", "4"}, AnswerIndex: 0, Correct: 2, Archetype: entities.ArchetypeAddition},
		{Text: "5 - 2 = ?", Options: []string{"4", "3", "2", "1"}, AnswerIndex: 1, Correct: 3, Archetype: entities.ArchetypeSubtraction},
		{Text: "2 × 3 = ?", Options: []string{"5", "7", "6", "8"}, AnswerIndex: 2, Correct: 6, Archetype: entities.ArchetypeMultiplication},
		{Text: "8 ÷ 2 = ?", Options: []string{"2", "3", "5", "4"}, AnswerIndex: 3, Correct: 4, Archetype: entities.ArchetypeDivision},
	}
}

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestController(t *testing.T) (*QuizController, *recordingListener, *fixedGenerator) {
	t.Helper()

	gen := &fixedGenerator{questions: testQuestions()}
	l := &recordingListener{}
	c := NewQuizController(gen, l, DefaultQuizSettings(), zaptest.NewLogger(t))
	return c, l, gen
}

// answerAndAdvance answers the current question and ticks past the advance delay.
func answerAndAdvance(t *testing.T, c *QuizController, now time.Time, choice int) time.Time {
	t.Helper()

	_, err := c.SubmitAnswer(now, choice, entities.Point{})
	require.NoError(t, err)
	now = now.Add(time.Second)
	c.Tick(now)
	return now
}

func TestNewQuizControllerStartsIdle(t *testing.T) {
	c, l, gen := newTestController(t)

	s := c.Snapshot()
	assert.Equal(t, entities.PhaseStart, s.Phase)
	assert.Nil(t, s.CurrentQuestion)
	assert.False(t, s.InputEnabled)
	assert.Equal(t, DefaultTimerDuration, s.TimeRemaining)
	assert.Empty(t, l.events)
	assert.Zero(t, gen.calls)
}

func TestBeginShowsFirstQuestion(t *testing.T) {
	c, l, _ := newTestController(t)

	c.Begin(t0)

	s := c.Snapshot()
	assert.Equal(t, entities.PhaseInProgress, s.Phase)
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Equal(t, 4, s.TotalQuestions)
	assert.Equal(t, 100, s.MaxScore)
	assert.True(t, s.InputEnabled)
	assert.NotEmpty(t, s.SessionID)
	require.NotNil(t, s.CurrentQuestion)
	assert.Equal(t, "1 + 1 = ?", s.CurrentQuestion.Text)
	assert.Equal(t, []event{{name: "question", index: 0}}, l.events)
}

func TestAllCorrectScoresFullMarks(t *testing.T) {
	c, l, _ := newTestController(t)
	c.Begin(t0)

	now := t0
	for _, q := range testQuestions() {
		now = answerAndAdvance(t, c, now, q.AnswerIndex)
	}

	s := c.Snapshot()
	assert.Equal(t, entities.PhaseEnded, s.Phase)
	assert.Equal(t, 100, s.Score)
	assert.Equal(t, 100, s.Percentage())
	assert.False(t, s.InputEnabled)
	assert.Nil(t, s.CurrentQuestion)
	assert.Equal(t, now, s.EndedAt)

	assert.Equal(t, 4, l.count("correct"))
	assert.Equal(t, 1, l.count("ended"))
	assert.Equal(t, event{name: "ended", score: 100, total: 100}, l.last())
}

func TestWrongAnswerScoresNothing(t *testing.T) {
	c, l, _ := newTestController(t)
	c.Begin(t0)

	at := entities.Point{X: 3, Y: 4}
	correct, err := c.SubmitAnswer(t0, 1, at)
	require.NoError(t, err)
	assert.False(t, correct)
	assert.Zero(t, c.Snapshot().Score)
	assert.Equal(t, event{name: "incorrect", at: at}, l.last())
}

func TestOutOfRangeChoiceIsWrong(t *testing.T) {
	for _, choice := range []int{-1, 4, 99} {
		c, l, _ := newTestController(t)
		c.Begin(t0)

		correct, err := c.SubmitAnswer(t0, choice, entities.Point{})
		require.NoError(t, err)
		assert.False(t, correct)
		assert.Equal(t, 1, l.count("incorrect"))
	}
}

func TestSecondAnswerIsIgnored(t *testing.T) {
	c, l, _ := newTestController(t)
	c.Begin(t0)

	correct, err := c.SubmitAnswer(t0, 0, entities.Point{})
	require.NoError(t, err)
	require.True(t, correct)

	_, err = c.SubmitAnswer(t0.Add(10*time.Millisecond), 0, entities.Point{})
	assert.ErrorIs(t, err, ErrInputLocked)

	assert.Equal(t, 25, c.Snapshot().Score)
	assert.Equal(t, 1, l.count("correct"))
	assert.Equal(t, entities.PhaseAwaitingAdvance, c.Phase())
}

func TestAnswerFreezesCountdown(t *testing.T) {
	c, _, _ := newTestController(t)
	c.Begin(t0)

	_, err := c.SubmitAnswer(t0.Add(4*time.Second), 0, entities.Point{})
	require.NoError(t, err)

	// The advance is 800ms away, the countdown must not move in the meantime.
	c.Tick(t0.Add(4*time.Second + 500*time.Millisecond))
	assert.Equal(t, 11*time.Second, c.Snapshot().TimeRemaining)
}

func TestAdvanceWaitsForDelay(t *testing.T) {
	c, _, _ := newTestController(t)
	c.Begin(t0)

	_, err := c.SubmitAnswer(t0, 0, entities.Point{})
	require.NoError(t, err)

	c.Tick(t0.Add(DefaultCorrectDelay - time.Millisecond))
	assert.Equal(t, 0, c.Snapshot().CurrentIndex)

	c.Tick(t0.Add(DefaultCorrectDelay))
	s := c.Snapshot()
	assert.Equal(t, 1, s.CurrentIndex)
	assert.Equal(t, entities.PhaseInProgress, s.Phase)
	assert.True(t, s.InputEnabled)
	assert.Equal(t, DefaultTimerDuration, s.TimeRemaining)
}

func TestIncorrectDelayIsShorter(t *testing.T) {
	c, _, _ := newTestController(t)
	c.Begin(t0)

	_, err := c.SubmitAnswer(t0, 3, entities.Point{})
	require.NoError(t, err)

	c.Tick(t0.Add(DefaultIncorrectDelay))
	assert.Equal(t, 1, c.Snapshot().CurrentIndex)
}

func TestCountdownTicks(t *testing.T) {
	c, l, _ := newTestController(t)
	c.Begin(t0)

	c.Tick(t0.Add(6 * time.Second))
	s := c.Snapshot()
	assert.Equal(t, 9*time.Second, s.TimeRemaining)
	assert.True(t, s.InputEnabled)
	assert.Zero(t, l.count("timeout"))
}

func TestTimeoutFiresOnce(t *testing.T) {
	c, l, _ := newTestController(t)
	c.Begin(t0)

	expired := t0.Add(DefaultTimerDuration)
	c.Tick(expired)
	c.Tick(expired.Add(100 * time.Millisecond))

	s := c.Snapshot()
	assert.Equal(t, 1, l.count("timeout"))
	assert.False(t, s.InputEnabled)
	assert.Zero(t, s.TimeRemaining)
	assert.Equal(t, entities.PhaseAwaitingAdvance, s.Phase)

	_, err := c.SubmitAnswer(expired.Add(200*time.Millisecond), 0, entities.Point{})
	assert.ErrorIs(t, err, ErrInputLocked)
	assert.Zero(t, s.Score)
}

func TestAllTimeoutsScoreZero(t *testing.T) {
	c, l, _ := newTestController(t)
	c.Begin(t0)

	now := t0
	for i := 0; i < 4; i++ {
		now = now.Add(DefaultTimerDuration)
		c.Tick(now)
		now = now.Add(DefaultIncorrectDelay)
		c.Tick(now)
	}

	s := c.Snapshot()
	assert.Equal(t, entities.PhaseEnded, s.Phase)
	assert.Zero(t, s.Score)
	assert.Equal(t, 4, l.count("timeout"))
	assert.Equal(t, event{name: "ended", score: 0, total: 100}, l.last())
}

func TestTickDoesOneTransition(t *testing.T) {
	c, l, _ := newTestController(t)
	c.Begin(t0)

	_, err := c.SubmitAnswer(t0, 0, entities.Point{})
	require.NoError(t, err)

	// Far enough for both the advance and the next question's timeout.
	c.Tick(t0.Add(time.Hour))
	assert.Equal(t, 1, c.Snapshot().CurrentIndex)
	assert.True(t, c.Snapshot().InputEnabled)
	assert.Zero(t, l.count("timeout"))

	c.Tick(t0.Add(time.Hour + DefaultTimerDuration))
	assert.Equal(t, 1, l.count("timeout"))
}

func TestResetReturnsToStart(t *testing.T) {
	c, _, _ := newTestController(t)
	c.Begin(t0)
	_, err := c.SubmitAnswer(t0, 0, entities.Point{})
	require.NoError(t, err)

	require.NoError(t, c.Reset())

	s := c.Snapshot()
	assert.Equal(t, entities.PhaseStart, s.Phase)
	assert.Zero(t, s.Score)
	assert.Zero(t, s.TotalQuestions)
	assert.Nil(t, s.CurrentQuestion)
	_, pending := c.PendingAdvance()
	assert.False(t, pending)

	assert.ErrorIs(t, c.Reset(), ErrInvalidTransition)
}

func TestResetCancelsScheduledAdvance(t *testing.T) {
	c, l, _ := newTestController(t)
	c.Begin(t0)
	_, err := c.SubmitAnswer(t0, 0, entities.Point{})
	require.NoError(t, err)

	adv, ok := c.PendingAdvance()
	require.True(t, ok)

	require.NoError(t, c.Reset())
	assert.False(t, c.FireAdvance(adv.Due, adv.Epoch))
	c.Tick(adv.Due)

	assert.Equal(t, entities.PhaseStart, c.Phase())
	assert.Equal(t, 1, l.count("question"))
}

func TestBeginAgainStartsFreshQuiz(t *testing.T) {
	c, l, gen := newTestController(t)
	c.Begin(t0)
	first := c.Snapshot().SessionID

	_, err := c.SubmitAnswer(t0, 0, entities.Point{})
	require.NoError(t, err)
	adv, ok := c.PendingAdvance()
	require.True(t, ok)

	c.Begin(t0.Add(100 * time.Millisecond))

	// The advance scheduled by the abandoned quiz must not skip question 1.
	assert.False(t, c.FireAdvance(adv.Due, adv.Epoch))
	c.Tick(adv.Due)

	s := c.Snapshot()
	assert.NotEqual(t, first, s.SessionID)
	assert.Equal(t, 2, gen.calls)
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Zero(t, s.Score)
	assert.Equal(t, 2, l.count("question"))
}

func TestBeginAfterEnd(t *testing.T) {
	c, _, _ := newTestController(t)
	c.Begin(t0)

	now := t0
	for _, q := range testQuestions() {
		now = answerAndAdvance(t, c, now, q.AnswerIndex)
	}
	require.Equal(t, entities.PhaseEnded, c.Phase())

	c.Begin(now)
	assert.Equal(t, entities.PhaseInProgress, c.Phase())
	assert.Zero(t, c.Snapshot().Score)
	assert.True(t, c.Snapshot().EndedAt.IsZero())
}

func TestFireAdvance(t *testing.T) {
	c, _, _ := newTestController(t)
	c.Begin(t0)

	_, err := c.SubmitAnswer(t0, 0, entities.Point{})
	require.NoError(t, err)
	adv, ok := c.PendingAdvance()
	require.True(t, ok)
	assert.Equal(t, t0.Add(DefaultCorrectDelay), adv.Due)

	assert.True(t, c.FireAdvance(adv.Due, adv.Epoch))
	assert.Equal(t, 1, c.Snapshot().CurrentIndex)

	// Firing the same advance twice does nothing.
	assert.False(t, c.FireAdvance(adv.Due, adv.Epoch))
	assert.Equal(t, 1, c.Snapshot().CurrentIndex)
}

func TestManualAdvance(t *testing.T) {
	c, l, _ := newTestController(t)

	assert.ErrorIs(t, c.Advance(t0), ErrInvalidTransition)

	c.Begin(t0)
	_, err := c.SubmitAnswer(t0, 0, entities.Point{})
	require.NoError(t, err)
	adv, _ := c.PendingAdvance()

	require.NoError(t, c.Advance(t0.Add(100*time.Millisecond)))
	assert.Equal(t, 1, c.Snapshot().CurrentIndex)

	// The timer-driven advance was cancelled by the manual one.
	c.Tick(adv.Due)
	assert.Equal(t, 1, c.Snapshot().CurrentIndex)

	for i := 1; i < 4; i++ {
		require.NoError(t, c.Advance(t0))
	}
	assert.Equal(t, entities.PhaseEnded, c.Phase())
	assert.Equal(t, event{name: "ended", score: 25, total: 100}, l.last())
	assert.ErrorIs(t, c.Advance(t0), ErrInvalidTransition)
}

func TestSubmitOutsideQuiz(t *testing.T) {
	c, _, _ := newTestController(t)

	_, err := c.SubmitAnswer(t0, 0, entities.Point{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEmptyQuizEndsImmediately(t *testing.T) {
	l := &recordingListener{}
	settings := DefaultQuizSettings()
	settings.Questions = 0
	c := NewQuizController(&fixedGenerator{questions: testQuestions()}, l, settings, nil)

	c.Begin(t0)

	assert.Equal(t, entities.PhaseEnded, c.Phase())
	assert.Equal(t, []event{{name: "ended", score: 0, total: 0}}, l.events)
	assert.Equal(t, t0, c.Snapshot().EndedAt)
	assert.Zero(t, c.Snapshot().Percentage())
}

func TestControllerWithRealGenerator(t *testing.T) {
	l := &recordingListener{}
	c := NewQuizController(newTestGenerator(8), l, DefaultQuizSettings(), nil)
	c.Begin(t0)

	now := t0
	for c.Phase() != entities.PhaseEnded {
		q := c.Snapshot().CurrentQuestion
		require.NotNil(t, q)
		now = answerAndAdvance(t, c, now, q.AnswerIndex)
	}

	assert.Equal(t, 100, c.Snapshot().Score)
	assert.Equal(t, DefaultQuizSize, l.count("question"))
}
