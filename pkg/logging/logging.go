// Package logging builds the zap logger used for diagnostics. All output
// goes to stderr so that it never mixes with produced files or stdout.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Options selects the logger flavour.
type Options struct {
	Debug      bool // development config, debug level
	Quiet      bool // only warnings and errors
	Console    bool // human-readable encoding instead of JSON
	AppName    string
	AppVersion string
}

// New builds a logger from opts. On failure it returns a no-op logger and the error.
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	if opts.Debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	if opts.Quiet {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	if opts.Console {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	cfg.InitialFields = map[string]interface{}{
		"appName":    opts.AppName,
		"appVersion": opts.AppVersion,
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop(), err
	}
	return logger, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Sync flushes logger. Sync on a pipe or character device fails with
// "invalid argument" on some platforms; that error is dropped.
func Sync(logger *zap.Logger) error {
	if !IsTerminal(os.Stderr) && !isRegularFile(os.Stderr) {
		return nil
	}
	if err := logger.Sync(); err != nil && !strings.Contains(strings.ToLower(err.Error()), "invalid argument") {
		return err
	}
	return nil
}

func isRegularFile(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return fileInfo.Mode().IsRegular()
}
