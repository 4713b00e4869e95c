package logging

import (
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// EntryLeveller is a zapcore.Core that filters log entries based on the logger name
// similar to Log4j or python's logging module: a level set for `cfn` also applies to `cfn.compile`.
type EntryLeveller struct {
	zapcore.Core

	levels sync.Map // map[string]zapcore.Level
}

func NewEntryLeveller(core zapcore.Core, levels map[string]zapcore.Level) *EntryLeveller {
	el := &EntryLeveller{Core: core}
	for k, v := range levels {
		el.levels.Store(k, v)
	}
	return el
}

func (el *EntryLeveller) With(f []zapcore.Field) zapcore.Core {
	next := &EntryLeveller{
		Core: el.Core.With(f),
	}
	el.levels.Range(func(k, v interface{}) bool {
		next.levels.Store(k, v)
		return true
	})
	return next
}

func (el *EntryLeveller) checkModule(e zapcore.Entry, ce *zapcore.CheckedEntry, module string) (*zapcore.CheckedEntry, bool) {
	level, ok := el.levels.Load(module)
	if !ok {
		return nil, false
	}
	if e.Level < level.(zapcore.Level) {
		return ce, true
	}
	return ce.AddCore(e, el), true
}

func (el *EntryLeveller) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if e.LoggerName == "" {
		return el.Core.Check(e, ce)
	}
	nameParts := strings.Split(e.LoggerName, ".")
	for i := len(nameParts); i > 0; i-- {
		module := strings.Join(nameParts[:i], ".")
		if ce, ok := el.checkModule(e, ce, module); ok {
			return ce
		}
	}
	return el.Core.Check(e, ce)
}

// Enabled is true for every level so that per-logger levels below the core's level still get a chance in Check.
func (el *EntryLeveller) Enabled(zapcore.Level) bool {
	return true
}
