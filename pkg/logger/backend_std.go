package logger

import "log/slog"

func newStdHandler(cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}

	var h slog.Handler = slog.NewJSONHandler(cfg.Output, opts)
	if cfg.Env == EnvDev {
		h = slog.NewTextHandler(cfg.Output, opts)
	}
	return traceHandler{h}
}
