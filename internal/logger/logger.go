// Package logger prints diagnostic output for the quarry CLI. Nothing is
// written unless verbose mode is on, so commands stay quiet by default
// and --verbose turns the indexing and search pipelines chatty.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose toggles verbose mode for the whole process.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

// IsVerbose reports whether verbose mode is on.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects log output. The default is os.Stderr; tests point
// it at a buffer.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}

// emit writes one tagged line while holding the read lock.
func emit(tag, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	fmt.Fprintf(output, "["+tag+"] "+format+"\n", args...)
}

// Debug logs fine-grained pipeline detail.
func Debug(format string, args ...any) { emit("DEBUG", format, args...) }

// Info logs progress milestones.
func Info(format string, args ...any) { emit("INFO", format, args...) }

// Warn logs recoverable problems, like a file that failed to parse.
func Warn(format string, args ...any) { emit("WARN", format, args...) }

// Section prints a visual divider between pipeline phases.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
