// Package logger настраивает zap для всех компонентов фреймворка.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Zap оборачивает *zap.Logger, чтобы компоненты получали один и тот же экземпляр.
type Zap struct {
	*zap.Logger
}

// New создает логгер: для env=dev человекочитаемый консольный вывод,
// для остальных окружений JSON.
func New(env, level string) (*Zap, error) {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("неверный уровень логирования %q: %w", level, err)
	}

	var cfg zap.Config
	if strings.EqualFold(env, "dev") || strings.EqualFold(env, "development") {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	}
	cfg.Level = lvl

	l, err := cfg.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации логгера: %w", err)
	}

	return &Zap{Logger: l.Named("e2e")}, nil
}

// Nop возвращает логгер, который ничего не пишет.
func Nop() *Zap {
	return &Zap{Logger: zap.NewNop()}
}
