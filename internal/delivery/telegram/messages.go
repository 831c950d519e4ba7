// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"
	"time"

	"github.com/jim941206/110311/internal/domain/entities"
)

const (
	msgWelcome = "<b>🧮 Arithmetic quiz</b>\n\n" +
		"Answer a few quick questions. Each one has a countdown, and every correct answer is worth points.\n\n" +
		"Press the button below or send /quiz to begin."
	msgHelp = "/quiz — start a new quiz\n" +
		"/stop — abandon the current quiz\n" +
		"/status — show the current question and score\n\n" +
		"Answer with the buttons, or by sending A–D or 1–4."
	msgUnknownCommand = "Unknown command. Send /help for the list of commands."
	msgNoQuiz         = "No quiz is running. Send /quiz to start one."
	msgQuizStopped    = "Quiz stopped. Send /quiz to start again."
	msgInternalError  = "Something went wrong. Please try again."
)

// Callback toasts.
const (
	toastCorrect = "✅ Correct!"
	toastWrong   = "❌ Wrong"
	toastLocked  = "Already answered"
	toastStale   = "This question is over"
)

const timeBarLength = 10

var optionLetters = []string{"A", "B", "C", "D"}

func optionLabel(i int) string {
	if i >= 0 && i < len(optionLetters) {
		return optionLetters[i]
	}
	return fmt.Sprintf("%d", i+1)
}

// formatQuestion renders the question currently on screen.
func formatQuestion(s entities.Snapshot) string {
	if s.CurrentQuestion == nil {
		return msgNoQuiz
	}

	return fmt.Sprintf(
		"<b>Question %d / %d</b>    Score: %d / %d\n⏱ %s %s\n\n<b>%s</b>",
		s.CurrentIndex+1,
		s.TotalQuestions,
		s.Score,
		s.MaxScore,
		formatSeconds(s.TimeRemaining),
		buildProgressBar(s.TimeRemaining, s.TimerDuration, timeBarLength),
		escape(s.CurrentQuestion.Text),
	)
}

func formatCorrect(points int) string {
	return fmt.Sprintf("✅ Correct! +%d", points)
}

func formatIncorrect(q *entities.Question) string {
	if q == nil {
		return "❌ Wrong."
	}
	return fmt.Sprintf("❌ Wrong. The answer was <b>%s. %s</b>",
		optionLabel(q.AnswerIndex), escape(q.CorrectOption()))
}

func formatTimeout(q *entities.Question) string {
	if q == nil {
		return "⏰ Time's up!"
	}
	return fmt.Sprintf("⏰ Time's up! The answer was <b>%s. %s</b>",
		optionLabel(q.AnswerIndex), escape(q.CorrectOption()))
}

func formatResult(score, total int) string {
	pct := 0
	if total > 0 {
		pct = (score*100 + total/2) / total
	}
	return fmt.Sprintf("🏁 <b>Your score: %d / %d (%d%%)</b>\n\nThanks for playing!", score, total, pct)
}

// formatStatus renders the /status reply for any phase.
func formatStatus(s entities.Snapshot) string {
	switch s.Phase {
	case entities.PhaseInProgress:
		return formatQuestion(s)
	case entities.PhaseAwaitingAdvance:
		return fmt.Sprintf("Question %d / %d answered, next one is coming.\nScore: %d / %d",
			s.CurrentIndex+1, s.TotalQuestions, s.Score, s.MaxScore)
	case entities.PhaseEnded:
		return formatResult(s.Score, s.MaxScore)
	default:
		return msgNoQuiz
	}
}

// formatSeconds rounds up, so "1s" is shown until the countdown actually hits zero.
func formatSeconds(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return fmt.Sprintf("%ds", (d+time.Second-1)/time.Second)
}

func buildProgressBar(current, total time.Duration, length int) string {
	if total <= 0 {
		return strings.Repeat("░", length)
	}

	filled := int(float64(current) / float64(total) * float64(length))
	if filled > length {
		filled = length
	}
	if filled < 0 {
		filled = 0
	}

	empty := length - filled
	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return fmt.Sprintf("[%s]", bar)
}

// parseChoice accepts "A".."D" (any case) or "1".."4" as an answer.
func parseChoice(text string) (int, bool) {
	t := strings.ToUpper(strings.TrimSpace(text))
	if len(t) != 1 {
		return 0, false
	}

	switch c := t[0]; {
	case c >= 'A' && c < 'A'+entities.OptionsPerQuestion:
		return int(c - 'A'), true
	case c >= '1' && c < '1'+entities.OptionsPerQuestion:
		return int(c - '1'), true
	default:
		return 0, false
	}
}
