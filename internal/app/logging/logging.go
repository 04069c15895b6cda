package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs the process-wide logger. Dev gets readable text output,
// everything else JSON.
func Setup(dev bool) *slog.Logger {
	l := New(os.Stdout, dev)
	slog.SetDefault(l)
	return l
}

func New(w io.Writer, dev bool) *slog.Logger {
	if dev {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, nil))
}
