package logging

import (
	"context"
	"sync/atomic"
)

// MirrorFunc receives a copy of every emitted log entry. The
// observability layer installs one to forward logs to the telemetry
// backend without coupling this package to an exporter.
type MirrorFunc func(ctx context.Context, level Level, msg string, args ...any)

var mirrorFn atomic.Pointer[MirrorFunc]

// SetMirror installs fn as the global log mirror. Passing nil removes
// the current mirror.
func SetMirror(fn MirrorFunc) {
	if fn == nil {
		mirrorFn.Store(nil)
		return
	}
	mirrorFn.Store(&fn)
}

func mirrorEmit(ctx context.Context, level Level, msg string, args ...any) {
	fn := mirrorFn.Load()
	if fn == nil {
		return
	}
	(*fn)(ctx, level, msg, args...)
}
