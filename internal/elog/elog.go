// Package elog is the engine-wide logging façade. It follows the same
// convention as the rest of the runtime: timestamped status lines via the
// standard log package, warnings for recoverable faults (a discarded ASF
// packet, a skipped WMV2 frame) and errors for faults that halt a single
// VM context or media stream.
package elog

import (
	"log"
	"os"
)

var std = log.New(os.Stderr, "", log.LstdFlags)

// SetOutput redirects the package logger, primarily for tests that want to
// capture or silence log output.
func SetOutput(l *log.Logger) {
	std = l
}

// Warnf logs a recoverable condition: the offending unit (packet, frame,
// context) is discarded but the engine continues.
func Warnf(format string, args ...any) {
	std.Printf("WARN "+format, args...)
}

// Errorf logs a fault that halted a context or stream.
func Errorf(format string, args ...any) {
	std.Printf("ERROR "+format, args...)
}

// Infof logs a routine lifecycle event (save written, stream opened).
func Infof(format string, args ...any) {
	std.Printf("INFO "+format, args...)
}
