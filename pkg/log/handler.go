package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"

	tourneyerrors "github.com/YuminosukeSato/tourney/pkg/errors"
)

// ErrFmtHandler is a slog handler that expands the error attribute. It adds
// the cockroachdb/errors stacktrace and lifts the fields of tourney's typed
// errors (candidate name, data source and line) into their own attributes.
type ErrFmtHandler struct {
	handler slog.Handler
}

// WrapByErrFmtHandler wraps handler so that records carrying an error
// attribute are emitted with a stacktrace and the error's context fields.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{
		handler: handler,
	}
}

func (eh *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return eh.handler.Enabled(ctx, l)
}

func (eh *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	present := make(map[string]bool, r.NumAttrs())
	r.Attrs(func(attr slog.Attr) bool {
		present[attr.Key] = true
		if attr.Key == ErrAttrKey && err == nil {
			err, _ = attr.Value.Any().(error)
		}
		return true
	})
	if err == nil {
		return eh.handler.Handle(ctx, r)
	}

	if stacktrace := extractStacktrace(err); stacktrace != "" {
		r.AddAttrs(slog.String(StacktraceAttrKey, stacktrace))
	}
	// Explicit attributes from the caller win over lifted ones.
	for _, attr := range contextAttrs(err) {
		if !present[attr.Key] {
			r.AddAttrs(attr)
		}
	}
	return eh.handler.Handle(ctx, r)
}

func (eh *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithAttrs(attrs)}
}

func (eh *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithGroup(g)}
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

// contextAttrs returns the attributes carried by tourney's typed errors
// anywhere in err's chain. A candidate failure wrapping a format error
// yields both sets.
func contextAttrs(err error) []slog.Attr {
	var attrs []slog.Attr
	var cf *tourneyerrors.CandidateFailure
	if tourneyerrors.As(err, &cf) {
		attrs = append(attrs,
			slog.String(CandidateKey, cf.Candidate),
			slog.String(ErrorTypeKey, "CandidateFailure"),
		)
	}
	var fe *tourneyerrors.FormatError
	if tourneyerrors.As(err, &fe) {
		attrs = append(attrs, slog.String(SourceKey, fe.Source))
		if fe.Line > 0 {
			attrs = append(attrs, slog.Int(LineKey, fe.Line))
		}
		if cf == nil {
			attrs = append(attrs, slog.String(ErrorTypeKey, "FormatError"))
		}
	}
	return attrs
}
