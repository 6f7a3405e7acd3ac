package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// SetupLogger function setup logger.
// Records are written as JSON to w; a nil writer means os.Stderr so that
// stdout stays free for result tables.
func SetupLogger(loglevel string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
		// Replace attributes to convert to CloudLogging format.
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr = slog.Attr{
					Key:   "severity",
					Value: attr.Value,
				}
			case slog.MessageKey:
				attr = slog.Attr{
					Key:   "message",
					Value: attr.Value,
				}
			case slog.SourceKey:
				attr = slog.Attr{
					Key:   "logging.googleapis.com/sourceLocation",
					Value: attr.Value,
				}
			}
			return attr
		},
	}
	handler := slog.NewJSONHandler(w, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))
	SetProvider(NewSlogProvider(errFmtHandler))
}

func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

// IsValidLevel reports whether ToLogLevel accepts level.
func IsValidLevel(level string) bool {
	switch level {
	case "info", "debug", "warn", "error":
		return true
	}
	return false
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// slogLogger adapts *slog.Logger to Logger.
type slogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps a slog handler as a Logger.
func NewSlogLogger(h slog.Handler) Logger {
	return &slogLogger{logger: slog.New(h)}
}

func (l *slogLogger) Debug(msg string, fields ...any) { l.logger.Debug(msg, fields...) }
func (l *slogLogger) Info(msg string, fields ...any)  { l.logger.Info(msg, fields...) }
func (l *slogLogger) Warn(msg string, fields ...any)  { l.logger.Warn(msg, fields...) }

func (l *slogLogger) Error(msg string, fields ...any) {
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			args := make([]any, 0, len(fields))
			args = append(args, ErrAttr(err))
			args = append(args, fields[1:]...)
			l.logger.Error(msg, args...)
			return
		}
	}
	l.logger.Error(msg, fields...)
}

func (l *slogLogger) With(fields ...any) Logger {
	return &slogLogger{logger: l.logger.With(fields...)}
}

func (l *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return l.logger.Enabled(ctx, slog.Level(level))
}

// slogProvider hands out slog-backed loggers sharing one handler.
type slogProvider struct {
	handler slog.Handler
	level   *slog.LevelVar
}

// NewSlogProvider returns a LoggerProvider over h. SetLevel raises or lowers
// the floor on top of whatever h itself filters.
func NewSlogProvider(h slog.Handler) LoggerProvider {
	lv := &slog.LevelVar{}
	lv.Set(slog.LevelDebug)
	return &slogProvider{handler: &levelHandler{Handler: h, level: lv}, level: lv}
}

func (p *slogProvider) GetLogger() Logger {
	return NewSlogLogger(p.handler)
}

func (p *slogProvider) GetLoggerWithName(name string) Logger {
	return NewSlogLogger(p.handler).With(ComponentKey, name)
}

func (p *slogProvider) SetLevel(level Level) {
	p.level.Set(slog.Level(level))
}

type levelHandler struct {
	slog.Handler
	level slog.Leveler
}

func (h *levelHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.level.Level() && h.Handler.Enabled(ctx, l)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{Handler: h.Handler.WithAttrs(attrs), level: h.level}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{Handler: h.Handler.WithGroup(name), level: h.level}
}

var (
	providerMu sync.RWMutex
	provider   = NewSlogProvider(WrapByErrFmtHandler(slog.Default().Handler()))
)

// SetProvider replaces the package-level provider.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// GetLogger returns a logger from the package-level provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a component logger from the package-level provider.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}
