package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/jim941206/110311/internal/service"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		h.answerCallback(cb.ID, "")
		return
	}
	chatID := cb.Message.Chat.ID

	data := decodeCallback(cb.Data)
	switch data.Action {
	case actionAnswer:
		h.answerCallback(cb.ID, h.handleAnswerCallback(chatID, data))

	case actionQuiz:
		h.answerCallback(cb.ID, "")
		switch {
		case len(data.Params) == 1 && data.Params[0] == quizStart:
			_ = h.withErrorHandling(h.beginHandler())(ctx, chatID)
		case len(data.Params) == 1 && data.Params[0] == quizStop:
			_ = h.withErrorHandling(h.stopHandler())(ctx, chatID)
		default:
			h.logger.Warn("unknown quiz callback", zap.String("data", cb.Data))
		}

	default:
		h.answerCallback(cb.ID, "")
		h.logger.Warn("unknown callback", zap.String("data", cb.Data))
	}
}

// handleAnswerCallback submits a button press and returns the toast to show.
func (h *Handler) handleAnswerCallback(chatID int64, data callbackData) string {
	session, epoch, choice, err := data.answerParams()
	if err != nil {
		h.logger.Warn("invalid answer callback",
			zap.String("data", data.Raw),
			zap.Error(err),
		)
		return ""
	}

	var (
		correct   bool
		submitErr error
		stale     bool
	)
	found := h.quizzes.With(chatID, func(c *service.QuizController) {
		// Buttons from an earlier question carry an old epoch, buttons from an
		// earlier play-through (even one stored before a restart) an old session.
		s := c.Snapshot()
		if sessionTag(s.SessionID) != session || s.Epoch != epoch {
			stale = true
			return
		}
		correct, submitErr = c.SubmitAnswer(h.now(), choice, choicePoint(choice))
	})
	h.flush()

	switch {
	case !found || stale || errors.Is(submitErr, service.ErrInvalidTransition):
		return toastStale
	case errors.Is(submitErr, service.ErrInputLocked):
		return toastLocked
	case correct:
		return toastCorrect
	default:
		return toastWrong
	}
}

func (h *Handler) answerCallback(callbackID, text string) {
	// Remove the user's "clock".
	answer := tgbotapi.NewCallback(callbackID, text)
	if _, err := h.bot.Request(answer); err != nil {
		h.logger.Debug("callback answer error", zap.Error(err))
	}
}
