package dto

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/jsamuelsen/library-service/internal/platform/logging"
)

func newBufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func withLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.WithContext(ctx, logger)
}
