package invoker

import "fmt"

// StartError means the command could not be launched at all.
type StartError struct {
	Path string
	Err  error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Path, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// ExecutionError means the command ran and exited with a non-zero status.
type ExecutionError struct {
	ExitCode int
	Stderr   string
}

func (e *ExecutionError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("command exited with status %d", e.ExitCode)
	}
	return e.Stderr
}

// CommunicationError wraps an I/O failure while exchanging data with the
// command, including cancellation of the invocation context.
type CommunicationError struct {
	Err error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("communication with command failed: %v", e.Err)
}

func (e *CommunicationError) Unwrap() error { return e.Err }

// Kind names the failure class of err for logs and JSON output.
func Kind(err error) string {
	switch err.(type) {
	case nil:
		return ""
	case *StartError:
		return "start"
	case *ExecutionError:
		return "execution"
	case *CommunicationError:
		return "communication"
	default:
		return "unknown"
	}
}
