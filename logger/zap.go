package logger

import (
	"go.uber.org/zap"
)

type zapLogger struct {
	sugar *zap.SugaredLogger
}

var _ Logger = &zapLogger{}

// NewZap adapts a zap logger to the Logger interface.
// A nil logger results in zap.NewNop().
func NewZap(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &zapLogger{
		sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar(),
	}
}

func (z *zapLogger) Debugf(format string, args ...any) {
	z.sugar.Debugf(format, args...)
}

func (z *zapLogger) Infof(format string, args ...any) {
	z.sugar.Infof(format, args...)
}

func (z *zapLogger) Warnf(format string, args ...any) {
	z.sugar.Warnf(format, args...)
}

func (z *zapLogger) Errorf(format string, args ...any) {
	z.sugar.Errorf(format, args...)
}
