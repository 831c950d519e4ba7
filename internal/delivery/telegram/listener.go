package telegram

import (
	"go.uber.org/zap"

	"github.com/jim941206/110311/internal/domain/entities"
	"github.com/jim941206/110311/internal/service"
)

// chatListener renders quiz events into one chat.
// Its callbacks run while the chat's controller is locked: they read the
// controller directly and only queue the Telegram calls, see outbox.
type chatListener struct {
	handler    *Handler
	chatID     int64
	controller *service.QuizController
}

var _ service.Listener = (*chatListener)(nil)

func (l *chatListener) OnQuestion(index int, q entities.Question) {
	h := l.handler
	snapshot := l.controller.Snapshot()

	msg := newHTMLMessage(l.chatID, formatQuestion(snapshot))
	msg.ReplyMarkup = buildAnswerKeyboard(snapshot.SessionID, snapshot.Epoch, q.Options)

	h.outbox.push(func() {
		sent, ok := h.send(msg)
		if !ok {
			return
		}

		if prev, hadPrev := h.messages.UpsertAndGetPrev(l.chatID, sent.MessageID, h.now()); hadPrev {
			h.removeKeyboard(prev)
		}

		h.logger.Debug("question sent",
			zap.Int64("chat_id", l.chatID),
			zap.Int("index", index),
			zap.String("archetype", q.Archetype.String()),
		)
	})
}

func (l *chatListener) OnCorrect(at entities.Point) {
	l.feedback(formatCorrect(l.controller.Settings().PointsPerCorrect))
}

func (l *chatListener) OnIncorrect(at entities.Point) {
	l.feedback(formatIncorrect(l.controller.Snapshot().CurrentQuestion))
}

func (l *chatListener) OnTimeout() {
	l.feedback(formatTimeout(l.controller.Snapshot().CurrentQuestion))
}

func (l *chatListener) OnQuizEnded(finalScore, total int) {
	h := l.handler

	msg := newHTMLMessage(l.chatID, formatResult(finalScore, total))
	msg.ReplyMarkup = buildQuizResultKeyboard()

	h.outbox.push(func() {
		h.clearKeyboard(l.chatID)
		h.send(msg)
	})

	h.logger.Info("quiz finished",
		zap.Int64("chat_id", l.chatID),
		zap.Int("score", finalScore),
		zap.Int("total", total),
	)
}

// feedback removes the answer buttons and reports how the question went.
func (l *chatListener) feedback(text string) {
	h := l.handler
	msg := newHTMLMessage(l.chatID, text)

	h.outbox.push(func() {
		h.clearKeyboard(l.chatID)
		h.send(msg)
	})
}
