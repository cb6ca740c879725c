// Package logging provides colored, leveled log output for trainwatch.
//
// Every function writes one prefixed, color-coded line. Debug output is
// suppressed unless verbose mode is on. SetLogFile additionally mirrors
// every line, uncolored, into a size-rotated file.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu      sync.Mutex
	verbose bool
	stdout  io.Writer = os.Stdout
	stderr  io.Writer = os.Stderr
	file    io.WriteCloser
)

// Color printers for each log level.
var (
	infoPrefix    = color.New(color.FgBlue).SprintFunc()
	successPrefix = color.New(color.FgGreen).SprintFunc()
	warnPrefix    = color.New(color.FgYellow).SprintFunc()
	errorPrefix   = color.New(color.FgRed).SprintFunc()
	phasePrefix   = color.New(color.FgCyan).SprintFunc()
	debugPrefix   = color.New(color.FgBlue).SprintFunc()
)

// SetVerbose enables or disables Debug output.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

// SetOutput redirects console output. Error lines go to errW, everything
// else to outW. Nil arguments restore os.Stdout / os.Stderr.
func SetOutput(outW, errW io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if outW == nil {
		outW = os.Stdout
	}
	if errW == nil {
		errW = os.Stderr
	}
	stdout, stderr = outW, errW
}

// SetLogFile mirrors all log lines into path, rotating at maxSizeMB.
// An empty path closes any open log file.
func SetLogFile(path string, maxSizeMB int) {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
	if path == "" {
		return
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	file = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

// Close flushes and closes the log file, if any.
func Close() {
	SetLogFile("", 0)
}

func emit(toErr bool, prefix func(a ...interface{}) string, tag, msg string) {
	mu.Lock()
	defer mu.Unlock()
	w := stdout
	if toErr {
		w = stderr
	}
	fmt.Fprintln(w, prefix(tag)+" "+msg)
	if file != nil {
		fmt.Fprintf(file, "%s %s %s\n", time.Now().Format(time.RFC3339), tag, msg)
	}
}

// Info prints an informational message in blue.
func Info(msg string) {
	emit(false, infoPrefix, "[INFO]", msg)
}

// Success prints a success message in green.
func Success(msg string) {
	emit(false, successPrefix, "[SUCCESS]", msg)
}

// Warn prints a warning message in yellow.
func Warn(msg string) {
	emit(false, warnPrefix, "[WARN]", msg)
}

// Error prints an error message to the error stream in red.
func Error(msg string) {
	emit(true, errorPrefix, "[ERROR]", msg)
}

// Phase prints a stage header in cyan, surrounded by separator lines.
func Phase(msg string) {
	sep := "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
	mu.Lock()
	fmt.Fprintln(stdout, phasePrefix(sep))
	mu.Unlock()
	emit(false, phasePrefix, "[PHASE]", msg)
	mu.Lock()
	fmt.Fprintln(stdout, phasePrefix(sep))
	mu.Unlock()
}

// Debug prints a debug message, only when verbose mode is enabled.
func Debug(msg string) {
	mu.Lock()
	v := verbose
	mu.Unlock()
	if !v {
		return
	}
	emit(false, debugPrefix, "[DEBUG]", msg)
}

// FormatDuration converts a duration in seconds to a human-readable string.
//
// Examples:
//
//	FormatDuration(0)    => "0s"
//	FormatDuration(45)   => "45s"
//	FormatDuration(90)   => "1m 30s"
//	FormatDuration(3661) => "1h 1m 1s"
func FormatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
