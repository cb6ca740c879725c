package monitor

import (
	"fmt"
	"strings"

	"github.com/CodexForgeBR/trainwatch/internal/logging"
)

// cronLogger routes scheduler chatter to debug output and its errors
// (recovered panics) to warnings.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logging.Debug("scheduler: " + msg + formatKV(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logging.Warn(fmt.Sprintf("scheduler: %s: %v%s", msg, err, formatKV(keysAndValues)))
}

func formatKV(kv []interface{}) string {
	if len(kv) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return b.String()
}
