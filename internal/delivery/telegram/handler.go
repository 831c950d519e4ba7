package telegram

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/jim941206/110311/internal/service"
	"github.com/jim941206/110311/internal/storage"
)

type Handler struct {
	bot           Bot
	logger        *zap.Logger
	quizzes       *storage.QuizStorage
	messages      *storage.MessageStorage
	newController ControllerFactory
	tickInterval  time.Duration
	sessionTTL    time.Duration
	now           func() time.Time
	outbox        outbox
}

func NewHandler(
	bot Bot,
	logger *zap.Logger,
	quizzes *storage.QuizStorage,
	messages *storage.MessageStorage,
	newController ControllerFactory,
	tickInterval time.Duration,
	sessionTTL time.Duration,
) *Handler {
	return &Handler{
		bot:           bot,
		logger:        logger,
		quizzes:       quizzes,
		messages:      messages,
		newController: newController,
		tickInterval:  tickInterval,
		sessionTTL:    sessionTTL,
		now:           time.Now,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	// The ticker stops with Run, whichever way Run returns.
	tickCtx, stopTicker := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.runTicker(tickCtx)
	}()
	defer func() {
		stopTicker()
		wg.Wait()
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	chatID := update.Message.Chat.ID

	if update.Message.IsCommand() {
		switch update.Message.Command() {
		case "start":
			msg := newHTMLMessage(chatID, msgWelcome)
			msg.ReplyMarkup = buildStartKeyboard()
			h.send(msg)

		case "quiz":
			_ = h.withErrorHandling(h.beginHandler())(ctx, chatID)

		case "stop":
			_ = h.withErrorHandling(h.stopHandler())(ctx, chatID)

		case "status":
			_ = h.withErrorHandling(h.statusHandler())(ctx, chatID)

		case "help":
			h.send(newHTMLMessage(chatID, msgHelp))

		default:
			h.send(newHTMLMessage(chatID, msgUnknownCommand))
		}

		return
	}

	_ = h.withErrorHandling(h.textAnswerHandler(update.Message.Text))(ctx, chatID)
}

// controllerFor returns a factory closure that wires a new controller to this chat's listener.
func (h *Handler) controllerFor(chatID int64) func() *service.QuizController {
	return func() *service.QuizController {
		l := &chatListener{handler: h, chatID: chatID}
		c := h.newController(l)
		l.controller = c
		return c
	}
}

func (h *Handler) sendError(chatID int64, err string) {
	msg := newHTMLMessage(chatID, err)
	h.send(msg)
}

func (h *Handler) send(c tgbotapi.Chattable) (tgbotapi.Message, bool) {
	sent, err := h.bot.Send(c)
	if err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
		return tgbotapi.Message{}, false
	}
	return sent, true
}

// clearKeyboard removes the answer buttons from the chat's last question message.
func (h *Handler) clearKeyboard(chatID int64) {
	prev, ok := h.messages.Take(chatID)
	if !ok {
		return
	}
	h.removeKeyboard(prev)
}

func (h *Handler) removeKeyboard(m storage.QuestionMessage) {
	edit := tgbotapi.NewEditMessageReplyMarkup(m.ChatID, m.MessageID, emptyKeyboard())
	if _, err := h.bot.Request(edit); err != nil {
		h.logger.Debug("failed to remove keyboard",
			zap.Int64("chat_id", m.ChatID),
			zap.Int("message_id", m.MessageID),
			zap.Error(err),
		)
	}
}
