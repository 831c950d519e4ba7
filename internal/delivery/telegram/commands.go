package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jim941206/110311/internal/domain/entities"
	"github.com/jim941206/110311/internal/service"
)

var errSessionMissing = errors.New("quiz session missing after creation")

// beginHandler starts a quiz, replacing any quiz already running in the chat.
func (h *Handler) beginHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		h.quizzes.Ensure(chatID, h.controllerFor(chatID))

		ok := h.quizzes.With(chatID, func(c *service.QuizController) {
			c.Begin(h.now())
			h.logger.Info("quiz started",
				zap.Int64("chat_id", chatID),
				zap.String("session_id", c.Snapshot().SessionID),
			)
		})
		if !ok {
			return errSessionMissing
		}
		h.flush()
		return nil
	}
}

// stopHandler abandons the running quiz and forgets the chat's session.
func (h *Handler) stopHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		// Deliver what the ticker already queued, so nothing arrives after the stop notice.
		h.flush()

		stopped := false
		h.quizzes.With(chatID, func(c *service.QuizController) {
			stopped = c.Reset() == nil
		})
		h.quizzes.Delete(chatID)
		h.clearKeyboard(chatID)

		if !stopped {
			h.send(newHTMLMessage(chatID, msgNoQuiz))
			return nil
		}
		h.send(newHTMLMessage(chatID, msgQuizStopped))
		return nil
	}
}

func (h *Handler) statusHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		snapshot := entities.Snapshot{Phase: entities.PhaseStart}
		h.quizzes.With(chatID, func(c *service.QuizController) {
			c.Tick(h.now())
			snapshot = c.Snapshot()
		})
		h.flush()

		h.send(newHTMLMessage(chatID, formatStatus(snapshot)))
		return nil
	}
}

// textAnswerHandler accepts "A".."D" or "1".."4" typed as a plain message.
func (h *Handler) textAnswerHandler(text string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		choice, ok := parseChoice(text)
		if !ok {
			h.send(newHTMLMessage(chatID, msgUnknownCommand))
			return nil
		}

		var err error
		found := h.quizzes.With(chatID, func(c *service.QuizController) {
			_, err = c.SubmitAnswer(h.now(), choice, choicePoint(choice))
		})
		h.flush()

		switch {
		case !found || errors.Is(err, service.ErrInvalidTransition):
			h.send(newHTMLMessage(chatID, msgNoQuiz))
		case errors.Is(err, service.ErrInputLocked):
			h.logger.Debug("answer ignored, input locked", zap.Int64("chat_id", chatID))
		}
		return nil
	}
}

// choicePoint maps an option to the position of its button row.
func choicePoint(choice int) entities.Point {
	return entities.Point{X: 0, Y: float64(choice)}
}
