package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/secmon-lab/sortie/pkg/utils/logging"
)

// Close closes an io.Closer and logs a failure instead of returning it. Nil closers are ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// Write writes data and logs a failure. Used once response headers are committed and the error
// can no longer reach the client.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Error("Failed to write", slog.Any("error", err))
	}
}
