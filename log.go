package guing

import "go.uber.org/zap"

// newLogger returns the logger components write to. A caller-supplied logger
// wins; otherwise debug builds get a development logger and release builds a
// production logger that only reports warnings and above.
func newLogger(cfg Config, l *zap.Logger) *zap.Logger {
	if l != nil {
		return l.Named("guing")
	}
	if cfg.Debug {
		if dl, err := zap.NewDevelopment(); err == nil {
			return dl.Named("guing")
		}
	}
	pc := zap.NewProductionConfig()
	pc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	pl, err := pc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return pl.Named("guing")
}

// orNop guards components constructed without a logger.
func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
