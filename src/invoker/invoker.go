package invoker

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle position of a single invocation.
type State int

const (
	StateIdle State = iota
	StateSpawning
	StateAwaitingOutput
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpawning:
		return "spawning"
	case StateAwaitingOutput:
		return "awaiting-output"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// waitDelay bounds how long Wait keeps draining pipes after the child is gone
// (a grandchild may still hold stdout open).
const waitDelay = 2 * time.Second

// Command is the external program to run for every invocation.
type Command struct {
	Path string
	Args []string
	// Dir is the working directory; empty means the caller's.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Response is the outcome of one invocation. Exactly one of the two shapes is
// populated: on success Err is nil and Output holds the trimmed stdout; on
// failure Err is a *StartError, *ExecutionError or *CommunicationError and
// Message holds the text to show the user.
type Response struct {
	Output  string
	Message string
	Err     error
}

// OK reports whether the invocation succeeded.
func (r Response) OK() bool { return r.Err == nil }

// TransitionFunc observes state changes of an invocation.
type TransitionFunc func(id string, from, to State)

// Invoker runs Command once per Invoke call. It holds no per-call state, so a
// single Invoker may be used from multiple goroutines.
type Invoker struct {
	Command Command
	// Timeout kills the child after the given duration; zero disables it.
	Timeout time.Duration
	// OnTransition, when set, is called synchronously on every state change.
	OnTransition TransitionFunc
}

// New returns an Invoker for cmd without a timeout.
func New(cmd Command) *Invoker {
	return &Invoker{Command: cmd}
}

// Invoke writes req to the command's stdin, closes it, drains stdout and
// stderr, and waits for the process to exit.
func (inv *Invoker) Invoke(ctx context.Context, req Request) Response {
	id := uuid.NewString()
	state := StateIdle
	transition := func(to State) {
		if inv.OnTransition != nil {
			inv.OnTransition(id, state, to)
		}
		state = to
	}
	fail := func(err error, message string) Response {
		transition(StateFailed)
		log.Printf("Invoker[%s]: failed (%s): %s", id, Kind(err), message)
		return Response{Message: message, Err: err}
	}

	payload, err := req.Payload()
	if err != nil {
		return fail(&CommunicationError{Err: err}, err.Error())
	}

	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	transition(StateSpawning)
	if err := ctx.Err(); err != nil {
		return fail(&CommunicationError{Err: err}, err.Error())
	}

	cmd := exec.CommandContext(ctx, inv.Command.Path, inv.Command.Args...)
	cmd.Dir = inv.Command.Dir
	if len(inv.Command.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Command.Env...)
	}
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	log.Printf("Invoker[%s]: starting %s (payload %d bytes)", id, inv.Command, len(payload))
	start := time.Now()
	if err := cmd.Start(); err != nil {
		startErr := &StartError{Path: inv.Command.Path, Err: err}
		return fail(startErr, startErr.Error())
	}
	transition(StateAwaitingOutput)

	err = cmd.Wait()
	elapsed := time.Since(start)
	if err == nil {
		transition(StateSucceeded)
		output := strings.TrimSpace(stdout.String())
		log.Printf("Invoker[%s]: succeeded in %v, output %d chars", id, elapsed, len(output))
		return Response{Output: output}
	}

	// A child killed by the context reports a signal exit; surface the cause.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fail(&CommunicationError{Err: ctxErr}, ctxErr.Error())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		execErr := &ExecutionError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
		return fail(execErr, execErr.Error())
	}
	return fail(&CommunicationError{Err: err}, err.Error())
}
