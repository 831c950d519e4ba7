package telegram

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/jim941206/110311/internal/domain/entities"
	"github.com/jim941206/110311/internal/service"
)

// runTicker drives every stored quiz until ctx is cancelled.
// cron's @every has one-second resolution; shorter intervals are rounded up.
func (h *Handler) runTicker(ctx context.Context) {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc("@every "+h.tickInterval.String(), func() {
		h.tickAll(h.now())
	})
	if err != nil {
		h.logger.Error("failed to add tick job", zap.Error(err))
		return
	}

	c.Start()
	h.logger.Info("quiz ticker started", zap.Duration("interval", h.tickInterval))

	<-ctx.Done()

	<-c.Stop().Done()
	h.logger.Info("quiz ticker stopped", zap.Int("sessions", h.quizzes.Len()))
}

// tickAll advances countdowns and scheduled advances of all running quizzes,
// then delivers the resulting messages and drops quizzes that ended more than
// sessionTTL ago.
func (h *Handler) tickAll(now time.Time) {
	h.quizzes.Each(func(chatID int64, c *service.QuizController) {
		c.Tick(now)
	})
	h.flush()

	evicted := h.quizzes.Evict(func(c *service.QuizController) bool {
		s := c.Snapshot()
		return s.Phase == entities.PhaseEnded && now.Sub(s.EndedAt) >= h.sessionTTL
	})
	if evicted > 0 {
		h.logger.Debug("finished quizzes evicted", zap.Int("count", evicted))
	}
}
