package telegram

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

// withErrorHandling logs a failed or panicking handler and tells the chat something went wrong.
func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("handler panic: %v", r)
				h.logger.Error("handler panicked",
					zap.Int64("chat_id", chatID),
					zap.Any("panic", r),
					zap.Stack("stack"),
				)
				h.sendError(chatID, msgInternalError)
			}
		}()

		if err := fn(ctx, chatID); err != nil {
			h.logger.Error("handle error",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
			h.sendError(chatID, msgInternalError)
			return err
		}
		return nil
	}
}
