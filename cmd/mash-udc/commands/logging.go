package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mash-protocol/mash-udc/pkg/log"
)

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (use: debug, info, warn, error)", level)
	}
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := parseLogLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// protocolLogger builds the protocol event sink. Events always reach the
// slog adapter; with a path they are also captured to a .mlog file. The
// returned close function flushes the file.
func protocolLogger(logger *slog.Logger, path string) (log.Logger, func() error, error) {
	adapter := log.NewSlogAdapter(logger)
	if path == "" {
		return adapter, func() error { return nil }, nil
	}

	file, err := log.NewFileLogger(path)
	if err != nil {
		return nil, nil, err
	}
	return log.NewMultiLogger(file, adapter), file.Close, nil
}
