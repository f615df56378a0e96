package logger

import (
	"fmt"

	"github.com/mehrdadmmz/StagePass/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var level = zap.NewAtomicLevelAt(zap.InfoLevel)

// Init builds the process logger and installs it as zap's global logger.
func Init(environment, logLevel string) (*zap.Logger, error) {
	if err := SetLevel(logLevel); err != nil {
		return nil, err
	}

	var conf zap.Config
	if environment == config.EnvProduction {
		conf = zap.NewProductionConfig()
	} else {
		conf = zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	conf.Level = level

	l, err := conf.Build()
	if err != nil {
		return nil, fmt.Errorf("conf.Build -> %w", err)
	}

	zap.ReplaceGlobals(l)
	return l, nil
}

// SetLevel changes the level of every logger built by Init.
func SetLevel(logLevel string) error {
	if logLevel == "" {
		return nil
	}

	lvl, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("zapcore.ParseLevel -> %w", err)
	}

	level.SetLevel(lvl)
	return nil
}

func Level() zapcore.Level {
	return level.Level()
}
