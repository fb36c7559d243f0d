package debug

import (
	"io"
	"log"
	"os"
)

// Debug levels
const (
	LevelOff     = 0 // warnings and errors only
	LevelInfo    = 1 // important info (session setup, device list)
	LevelLive    = 2 // live info (frames grabbed, controls written)
	LevelVerbose = 3 // verbose (buffer sizes, config resolution)
	LevelTrace   = 4 // trace (raw driver calls, very low level)
)

var (
	level  int
	logger = log.New(os.Stderr, "[pseyepy] ", log.LstdFlags|log.Lmicroseconds)
)

// Init sets the debug level (0-4).
// 0 = warnings/errors only
// 1 = important info (session lifecycle, device list)
// 2 = live info (frame reads, control writes)
// 3 = verbose (config resolution, buffer allocation)
// 4 = trace (raw driver calls)
func Init(debugLevel int) {
	level = debugLevel
}

// SetOutput redirects all debug output. Used by tests to capture warnings.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Level returns the current debug level.
func Level() int {
	return level
}

// IsEnabled returns true if debug level is >= the requested level.
func IsEnabled(minLevel int) bool {
	return level >= minLevel
}

// Warning reports an advisory condition (rejected or unverified control
// write). Always emitted, regardless of level: callers that ignore the
// return path still get a trace of what the hardware refused.
func Warning(format string, args ...interface{}) {
	logger.Printf("[WARNING] "+format, args...)
}

// Error prints an error (always emitted).
func Error(err error) {
	logger.Printf("[ERROR] %v", err)
}

// --- Level 1 functions (Info): important info ---

// Info prints a level 1 message (important info).
func Info(format string, args ...interface{}) {
	if level >= LevelInfo {
		logger.Printf("[INFO] "+format, args...)
	}
}

// Value prints a named value in formatted form (level 1).
func Value(name string, value interface{}) {
	if level >= LevelInfo {
		logger.Printf("[INFO]   %s = %v", name, value)
	}
}

// --- Level 2 functions (Live): real-time info ---

// Live prints a level 2 message (live info).
func Live(format string, args ...interface{}) {
	if level >= LevelLive {
		logger.Printf("[LIVE] "+format, args...)
	}
}

// Control prints a control write (level 2).
func Control(name string, device, value int) {
	if level >= LevelLive {
		logger.Printf("[LIVE] Control %s: device %d <- %d", name, device, value)
	}
}

// --- Level 3 functions (Verbose): everything ---

// Verbose prints a level 3 message (verbose).
func Verbose(format string, args ...interface{}) {
	if level >= LevelVerbose {
		logger.Printf("[VERBOSE] "+format, args...)
	}
}

// Step prints a numbered setup step (level 3).
func Step(num int, description string) {
	if level >= LevelVerbose {
		logger.Printf("[VERBOSE] Step %d: %s", num, description)
	}
}

// PrintStruct prints a struct in formatted form (level 3).
func PrintStruct(name string, v interface{}) {
	if level >= LevelVerbose {
		logger.Printf("[VERBOSE] %s: %+v", name, v)
	}
}

// --- Level 4 functions (Trace): very low level ---

// Trace prints a level 4 message (trace).
func Trace(format string, args ...interface{}) {
	if level >= LevelTrace {
		logger.Printf("[TRACE] "+format, args...)
	}
}

// Driver prints a low-level driver call (level 4).
func Driver(operation string, device int, value interface{}) {
	if level >= LevelTrace {
		logger.Printf("[DRIVER] %s device=%d value=%v", operation, device, value)
	}
}
