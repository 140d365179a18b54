package logger

import "log/slog"

// Init builds the logger for cfg, installs it as the slog default and returns it.
// Call sites log through the package-level slog functions.
func Init(cfg Config) *slog.Logger {
	cfg = cfg.withDefaults()

	var h slog.Handler
	if cfg.Backend == BackendZap {
		h = newZapHandler(cfg)
	} else {
		h = newStdHandler(cfg)
	}
	l := slog.New(h.WithAttrs(cfg.attrs()))
	slog.SetDefault(l)
	return l
}
