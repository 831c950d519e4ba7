package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jim941206/110311/internal/config"
)

// New builds the application logger: JSON in production, colored console output otherwise.
// Every entry carries the environment name.
func New(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Env == "production" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lg, err := zc.Build(zap.Fields(zap.String("env", cfg.Env)))
	if err != nil {
		return nil, err
	}
	return lg.Named("quizbot"), nil
}
