// Package exitcode defines named exit codes for the trainwatch CLI.
package exitcode

// Exit code constants.
const (
	Success     = 0   // Command finished; watch reached the end of its stage
	Error       = 1   // Invalid args, unreadable queue, misconfiguration
	NoState     = 3   // status/stage found no saved run
	Interrupted = 130 // SIGINT/SIGTERM received
)

// Name returns the human-readable name for the given exit code.
// Unknown codes return "unknown".
func Name(code int) string {
	switch code {
	case Success:
		return "Success"
	case Error:
		return "Error"
	case NoState:
		return "NoState"
	case Interrupted:
		return "Interrupted"
	default:
		return "unknown"
	}
}

// ExitError carries an exit code through cobra's error return.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return Name(e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }
