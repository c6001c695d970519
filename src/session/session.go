package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"enhance-with-ai/src/invoker"
	"enhance-with-ai/src/worker"
)

const (
	HintClipboardEmpty = "Clipboard is empty."
	MsgClipboardError  = "Error accessing clipboard."
	MsgMissingInput    = "Error: Missing instruction or content."
	MsgThinking        = "Thinking..."
)

var (
	ErrBusy      = errors.New("an invocation is already running")
	ErrQueueFull = errors.New("worker queue is full")
)

type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

type Submitter interface {
	Submit(ctx context.Context, req invoker.Request, cb worker.ResultCallback) bool
}

// Controller holds the dialog state that outlives a single keystroke: whether
// an invocation is in flight, and where clipboard text comes from and goes to.
type Controller struct {
	clip Clipboard
	pool Submitter

	mu   sync.Mutex
	busy bool
}

func NewController(clip Clipboard, pool Submitter) *Controller {
	return &Controller{clip: clip, pool: pool}
}

// Prefill is the initial content area: either the clipboard text or a hint.
type Prefill struct {
	Text string
	Hint string
}

func (c *Controller) Prefill() Prefill {
	if c.clip == nil {
		return Prefill{Hint: MsgClipboardError}
	}
	text, err := c.clip.Read()
	if err != nil {
		log.Printf("Session: clipboard read failed: %v", err)
		return Prefill{Hint: MsgClipboardError}
	}
	if text == "" {
		return Prefill{Hint: HintClipboardEmpty}
	}
	return Prefill{Text: text}
}

// Submit validates the input and queues one invocation. The controller stays
// busy until the response is ready; it is cleared before cb runs so the
// callback may immediately submit again.
func (c *Controller) Submit(ctx context.Context, instruction, content string, cb worker.ResultCallback) error {
	req := invoker.Request{Instruction: instruction, Text: content}
	if err := req.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	ok := c.pool.Submit(ctx, req, func(resp invoker.Response) {
		c.setBusy(false)
		if cb != nil {
			cb(resp)
		}
	})
	if !ok {
		c.setBusy(false)
		return ErrQueueFull
	}
	return nil
}

func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Controller) setBusy(v bool) {
	c.mu.Lock()
	c.busy = v
	c.mu.Unlock()
}

// Copy writes text to the clipboard. Empty text is ignored and reports false.
func (c *Controller) Copy(text string) (bool, error) {
	if text == "" {
		return false, nil
	}
	if c.clip == nil {
		return false, errors.New("clipboard not available")
	}
	if err := c.clip.Write(text); err != nil {
		return false, fmt.Errorf("clipboard error: %w", err)
	}
	return true, nil
}

// DisplayText renders a response the way the dialog shows it.
func DisplayText(resp invoker.Response) string {
	if resp.OK() {
		return resp.Output
	}
	var execErr *invoker.ExecutionError
	if errors.As(resp.Err, &execErr) {
		return "Error: " + resp.Message
	}
	return "System Error: " + resp.Message
}

// InputError maps a Submit error to the text shown in the content area.
func InputError(err error) string {
	switch {
	case errors.Is(err, invoker.ErrMissingInput):
		return MsgMissingInput
	case errors.Is(err, ErrBusy), errors.Is(err, ErrQueueFull):
		return "Still processing the previous request."
	default:
		return "Error: " + err.Error()
	}
}

// ResultTarget receives the outcome of a one-shot invocation.
type ResultTarget interface {
	OnSuccess(text string) error
	OnFailure(resp invoker.Response) error
}

type InvokeFunc func(ctx context.Context, req invoker.Request) invoker.Response

// Execute runs a single validated invocation synchronously and hands the
// result to target. The returned error is the invocation or delivery failure.
func Execute(ctx context.Context, invoke InvokeFunc, req invoker.Request, target ResultTarget) (invoker.Response, error) {
	if invoke == nil {
		return invoker.Response{}, errors.New("invoke is required")
	}
	if target == nil {
		return invoker.Response{}, errors.New("target is required")
	}
	if err := req.Validate(); err != nil {
		return invoker.Response{}, err
	}

	resp := invoke(ctx, req)
	if !resp.OK() {
		_ = target.OnFailure(resp)
		return resp, resp.Err
	}
	if err := target.OnSuccess(resp.Output); err != nil {
		return resp, err
	}
	return resp, nil
}

type ClipboardTarget struct {
	Clipboard Clipboard
}

func (t ClipboardTarget) OnSuccess(text string) error {
	if t.Clipboard == nil {
		return errors.New("clipboard target missing clipboard")
	}
	if err := t.Clipboard.Write(text); err != nil {
		return fmt.Errorf("clipboard error: %w", err)
	}
	return nil
}

func (ClipboardTarget) OnFailure(resp invoker.Response) error {
	return nil
}

type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) OnSuccess(text string) error {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func (StdoutTarget) OnFailure(resp invoker.Response) error {
	return nil
}

// MultiTarget fans a result out to several targets, stopping at the first error.
type MultiTarget []ResultTarget

func (m MultiTarget) OnSuccess(text string) error {
	for _, t := range m {
		if err := t.OnSuccess(text); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiTarget) OnFailure(resp invoker.Response) error {
	for _, t := range m {
		_ = t.OnFailure(resp)
	}
	return nil
}
