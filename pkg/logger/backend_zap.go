package logger

import (
	"context"
	"log/slog"
	"time"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newZapHandler(cfg Config) slog.Handler {
	z := zap.New(zapCore(cfg),
		zap.AddCaller(),
		zap.AddCallerSkip(1), // slog call site, not the bridge
	)
	return slogzap.Option{
		Level:           cfg.Level,
		Logger:          z,
		AttrFromContext: []func(ctx context.Context) []slog.Attr{AttrsFromCtx},
	}.NewZapHandler()
}

// zapCore writes JSON to cfg.Output and samples bursts of identical lines,
// e.g. a run of failed sends to one dead room.
func zapCore(cfg Config) zapcore.Core {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "ts"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if cfg.AddSource {
		ec.EncodeCaller = zapcore.ShortCallerEncoder
	}

	first, after := cfg.SampleInitial, cfg.SampleThereafter
	if first <= 0 {
		first = 100
	}
	if after <= 0 {
		after = 10
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(ec), zapcore.AddSync(cfg.Output), zapLevel(cfg.Level))
	return zapcore.NewSamplerWithOptions(core, time.Second, first, after)
}

// zapLevel maps slog's -4/0/4/8 scale onto zap's -1/0/1/2.
func zapLevel(l slog.Level) zapcore.Level {
	z := zapcore.Level(l / 4)
	if z < zapcore.DebugLevel {
		return zapcore.DebugLevel
	}
	if z > zapcore.ErrorLevel {
		return zapcore.ErrorLevel
	}
	return z
}
