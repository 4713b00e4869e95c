package logging

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/atomic"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var (
	levelColours = map[zapcore.Level]*color.Color{
		zapcore.DebugLevel:  color.New(color.FgMagenta),
		zapcore.InfoLevel:   color.New(color.FgHiGreen),
		zapcore.WarnLevel:   color.New(color.FgHiYellow, color.Bold),
		zapcore.ErrorLevel:  color.New(color.FgHiRed, color.Bold),
		zapcore.DPanicLevel: color.New(color.FgHiRed, color.Bold),
		zapcore.PanicLevel:  color.New(color.FgHiRed, color.Bold),
		zapcore.FatalLevel:  color.New(color.FgHiRed, color.Bold),
	}

	levelFmt string
)

func init() {
	levelWidth := 0
	for l := range levelColours {
		if ll := len(l.String()); levelWidth < ll {
			levelWidth = ll
		}
	}
	levelFmt = fmt.Sprintf("%%%ds", levelWidth)
}

// ConsoleEncoder is a console encoder for CLI output. The level is only shown when verbose; warnings
// and errors are coloured instead. It records whether any warning or error was logged so the CLI
// can report it on exit.
type ConsoleEncoder struct {
	zapcore.Encoder

	Verbose     bool
	HadWarnings *atomic.Bool
	HadErrors   *atomic.Bool
}

func NewConsoleEncoder(verbose bool, hadWarnings *atomic.Bool, hadErrors *atomic.Bool) *ConsoleEncoder {
	cfg := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      colourLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	}
	if verbose {
		cfg.LevelKey = "level"
		cfg.NameKey = "logger"
	}
	return &ConsoleEncoder{
		Encoder:     zapcore.NewConsoleEncoder(cfg),
		Verbose:     verbose,
		HadWarnings: hadWarnings,
		HadErrors:   hadErrors,
	}
}

func colourLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	colour := levelColours[l]
	if colour == nil {
		colour = levelColours[zapcore.PanicLevel]
	}
	enc.AppendString(colour.Sprintf(levelFmt, l.String()))
}

func (enc *ConsoleEncoder) Clone() zapcore.Encoder {
	return &ConsoleEncoder{
		Encoder:     enc.Encoder.Clone(),
		Verbose:     enc.Verbose,
		HadWarnings: enc.HadWarnings,
		HadErrors:   enc.HadErrors,
	}
}

func (enc *ConsoleEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	if ent.Level >= zapcore.WarnLevel && enc.HadWarnings != nil {
		enc.HadWarnings.Store(true)
	}
	if ent.Level >= zapcore.ErrorLevel && enc.HadErrors != nil {
		enc.HadErrors.Store(true)
	}
	if !enc.Verbose && ent.Level >= zapcore.WarnLevel {
		colour := levelColours[ent.Level]
		if colour == nil {
			colour = levelColours[zapcore.PanicLevel]
		}
		ent.Message = colour.Sprintf("%s: %s", strings.ToUpper(ent.Level.String()), ent.Message)
	}
	return enc.Encoder.EncodeEntry(ent, fields)
}
