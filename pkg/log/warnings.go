package log

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	tourneyerrors "github.com/YuminosukeSato/tourney/pkg/errors"
)

// SetupWarnings routes library warnings (convergence problems, failed
// candidates) to a zerolog logger writing JSON lines to w. Warnings that
// implement zerolog.LogObjectMarshaler contribute their structured fields.
// Passing a nil writer uses os.Stderr.
func SetupWarnings(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	zl := zerolog.New(w).With().Timestamp().Str(ComponentKey, "warnings").Logger()
	tourneyerrors.SetZerologWarnFunc(func(warning error) {
		ev := zl.Warn()
		var m zerolog.LogObjectMarshaler
		if errors.As(warning, &m) {
			ev = ev.EmbedObject(m)
		}
		ev.Msg(warning.Error())
	})
	return zl
}

// ResetWarnings detaches the zerolog bridge installed by SetupWarnings.
func ResetWarnings() {
	tourneyerrors.SetZerologWarnFunc(nil)
}
