package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogOpts struct {
	Verbose bool
	// Color is one of "auto" (default), "always"/"on", "never"/"off".
	Color string
	// Encoding is "console" (default) or "json".
	Encoding      string
	DefaultLevels map[string]zapcore.Level

	HadWarnings *atomic.Bool
	HadErrors   *atomic.Bool
}

func (opts LogOpts) Encoder() zapcore.Encoder {
	switch opts.Encoding {
	case "json":
		if opts.Verbose {
			return zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig())
		}
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	case "console", "":
		switch opts.Color {
		case "always", "on":
			color.NoColor = false
		case "never", "off":
			color.NoColor = true
		}
		return NewConsoleEncoder(opts.Verbose, opts.HadWarnings, opts.HadErrors)

	default:
		panic(fmt.Errorf("unknown encoding %q", opts.Encoding))
	}
}

// EntryLeveller wraps core with per-logger levels. LOG_LEVEL (eg. `LOG_LEVEL=cfn=debug,construct=warn`)
// replaces DefaultLevels when set.
func (opts LogOpts) EntryLeveller(core zapcore.Core) zapcore.Core {
	levels := opts.DefaultLevels
	if levelEnv, ok := os.LookupEnv("LOG_LEVEL"); ok {
		levels = ParseLevels(levelEnv)
	}
	if len(levels) > 0 {
		core = NewEntryLeveller(core, levels)
	}
	return core
}

func ParseLevels(setting string) map[string]zapcore.Level {
	values := strings.Split(setting, ",")
	levels := make(map[string]zapcore.Level, len(values))
	for _, v := range values {
		k, v, ok := strings.Cut(v, "=")
		if !ok {
			continue
		}
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(v)); err != nil {
			continue
		}
		levels[k] = lvl
	}
	return levels
}

func (opts LogOpts) NewCore(w zapcore.WriteSyncer) zapcore.Core {
	if opts.HadWarnings == nil {
		opts.HadWarnings = atomic.NewBool(false)
	}
	if opts.HadErrors == nil {
		opts.HadErrors = atomic.NewBool(false)
	}
	enc := opts.Encoder()

	leveller := zap.NewAtomicLevel()
	if opts.Verbose {
		leveller.SetLevel(zap.DebugLevel)
	} else {
		leveller.SetLevel(zap.InfoLevel)
	}

	core := zapcore.NewCore(enc, w, leveller)
	return opts.EntryLeveller(core)
}

func (opts LogOpts) NewLogger() *zap.Logger {
	return zap.New(opts.NewCore(os.Stderr))
}
