package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/jim941206/110311/internal/config"
	"github.com/jim941206/110311/internal/delivery/telegram"
	"github.com/jim941206/110311/internal/domain/entities"
	"github.com/jim941206/110311/internal/logger"
	"github.com/jim941206/110311/internal/service"
	"github.com/jim941206/110311/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		lg.Fatal("failed to create bot", zap.Error(err))
	}

	// Set commands.
	commands := []tgbotapi.BotCommand{
		{
			Command:     "start",
			Description: "Show the welcome screen",
		},
		{
			Command:     "quiz",
			Description: "Start a new quiz",
		},
		{
			Command:     "status",
			Description: "Show the current question and score",
		},
		{
			Command:     "stop",
			Description: "Abandon the current quiz",
		},
		{
			Command:     "help",
			Description: "Help",
		},
	}

	_, err = bot.Request(tgbotapi.NewSetMyCommands(commands...))
	if err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	bot.Debug = cfg.Env != "production"
	lg.Info("authorized", zap.String("account", bot.Self.UserName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settings := service.QuizSettings{
		Questions:        cfg.Quiz.Questions,
		TimerDuration:    cfg.Quiz.TimerDuration,
		PointsPerCorrect: cfg.Quiz.PointsPerCorrect,
		CorrectDelay:     cfg.Quiz.CorrectDelay,
		IncorrectDelay:   cfg.Quiz.IncorrectDelay,
	}
	labels := entities.LabelsFor(cfg.Quiz.Locale)

	// Each chat owns its generator: a *rand.Rand is not safe for concurrent use.
	newController := func(listener service.Listener) *service.QuizController {
		generator := service.NewQuestionGenerator(service.NewRand(cfg.Quiz.Seed), labels, lg)
		return service.NewQuizController(generator, listener, settings, lg)
	}

	handler := telegram.NewHandler(
		bot,
		lg,
		storage.NewQuizStorage(),
		storage.NewMessageStorage(),
		newController,
		cfg.TickInterval,
		cfg.SessionTTL,
	)
	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		lg.Fatal("telegram handler failed", zap.Error(err))
	}

	lg.Info("shutdown signal received")
}
