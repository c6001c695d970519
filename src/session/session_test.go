package session

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enhance-with-ai/src/clipboard"
	"enhance-with-ai/src/invoker"
	"enhance-with-ai/src/worker"
)

func newPool(t *testing.T, invoke worker.Invoke) *worker.Pool {
	t.Helper()
	p := worker.New(1, invoke)
	t.Cleanup(p.Close)
	return p
}

func waitResponse(t *testing.T, ch <-chan invoker.Response) invoker.Response {
	t.Helper()
	select {
	case resp := <-ch:
		return resp
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for response")
		return invoker.Response{}
	}
}

func TestPrefill(t *testing.T) {
	tests := []struct {
		name string
		mem  *clipboard.Memory
		want Prefill
	}{
		{name: "Text", mem: &clipboard.Memory{Text: "copied"}, want: Prefill{Text: "copied"}},
		{name: "Empty", mem: &clipboard.Memory{}, want: Prefill{Hint: HintClipboardEmpty}},
		{name: "ReadError", mem: &clipboard.Memory{ReadErr: errors.New("no display")}, want: Prefill{Hint: MsgClipboardError}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(tt.mem, nil)
			assert.Equal(t, tt.want, c.Prefill())
		})
	}
}

func TestSubmitRejectsEmptyInputWithoutInvoking(t *testing.T) {
	var calls atomic.Int32
	c := NewController(&clipboard.Memory{}, newPool(t, func(ctx context.Context, req invoker.Request) invoker.Response {
		calls.Add(1)
		return invoker.Response{}
	}))

	err := c.Submit(context.Background(), "", "", nil)

	require.ErrorIs(t, err, invoker.ErrMissingInput)
	assert.Equal(t, MsgMissingInput, InputError(err))
	assert.False(t, c.Busy())
	assert.Zero(t, calls.Load())
}

func TestSubmitDeliversResponseAndClearsBusy(t *testing.T) {
	release := make(chan struct{})
	c := NewController(&clipboard.Memory{}, newPool(t, func(ctx context.Context, req invoker.Request) invoker.Response {
		<-release
		return invoker.Response{Output: req.Instruction + ":" + req.Text}
	}))

	got := make(chan invoker.Response, 1)
	busyInCallback := true
	require.NoError(t, c.Submit(context.Background(), "upper", "abc", func(resp invoker.Response) {
		busyInCallback = c.Busy()
		got <- resp
	}))
	assert.True(t, c.Busy())

	err := c.Submit(context.Background(), "again", "", nil)
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	resp := waitResponse(t, got)
	assert.Equal(t, "upper:abc", resp.Output)
	assert.False(t, busyInCallback)
	assert.False(t, c.Busy())
}

func TestCopy(t *testing.T) {
	mem := &clipboard.Memory{}
	c := NewController(mem, nil)

	copied, err := c.Copy("")
	require.NoError(t, err)
	assert.False(t, copied)
	assert.Zero(t, mem.Writes)

	copied, err = c.Copy("edited result")
	require.NoError(t, err)
	assert.True(t, copied)
	assert.Equal(t, "edited result", mem.Text)

	mem.WriteErr = errors.New("denied")
	_, err = c.Copy("again")
	assert.ErrorContains(t, err, "clipboard error")
}

func TestDisplayText(t *testing.T) {
	tests := []struct {
		name string
		resp invoker.Response
		want string
	}{
		{name: "Success", resp: invoker.Response{Output: "done"}, want: "done"},
		{
			name: "Execution",
			resp: invoker.Response{Message: "boom", Err: &invoker.ExecutionError{ExitCode: 1, Stderr: "boom"}},
			want: "Error: boom",
		},
		{
			name: "Start",
			resp: invoker.Response{Message: "failed to start python3", Err: &invoker.StartError{Path: "python3"}},
			want: "System Error: failed to start python3",
		},
		{
			name: "Communication",
			resp: invoker.Response{Message: "broken pipe", Err: &invoker.CommunicationError{Err: errors.New("broken pipe")}},
			want: "System Error: broken pipe",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayText(tt.resp))
		})
	}
}

type recordingTarget struct {
	success []string
	failure []invoker.Response
	err     error
}

func (r *recordingTarget) OnSuccess(text string) error {
	r.success = append(r.success, text)
	return r.err
}

func (r *recordingTarget) OnFailure(resp invoker.Response) error {
	r.failure = append(r.failure, resp)
	return nil
}

func TestExecute(t *testing.T) {
	ok := func(ctx context.Context, req invoker.Request) invoker.Response {
		return invoker.Response{Output: "HELLO"}
	}
	bad := func(ctx context.Context, req invoker.Request) invoker.Response {
		err := &invoker.ExecutionError{ExitCode: 1, Stderr: "boom"}
		return invoker.Response{Message: "boom", Err: err}
	}

	t.Run("Success", func(t *testing.T) {
		target := &recordingTarget{}
		resp, err := Execute(context.Background(), ok, invoker.Request{Text: "hello"}, target)
		require.NoError(t, err)
		assert.Equal(t, "HELLO", resp.Output)
		assert.Equal(t, []string{"HELLO"}, target.success)
		assert.Empty(t, target.failure)
	})

	t.Run("Failure", func(t *testing.T) {
		target := &recordingTarget{}
		_, err := Execute(context.Background(), bad, invoker.Request{Text: "hello"}, target)
		var execErr *invoker.ExecutionError
		require.ErrorAs(t, err, &execErr)
		assert.Empty(t, target.success)
		assert.Len(t, target.failure, 1)
	})

	t.Run("DeliveryError", func(t *testing.T) {
		target := &recordingTarget{err: errors.New("stdout closed")}
		_, err := Execute(context.Background(), ok, invoker.Request{Text: "hello"}, target)
		assert.EqualError(t, err, "stdout closed")
	})

	t.Run("MissingInput", func(t *testing.T) {
		called := false
		_, err := Execute(context.Background(), func(ctx context.Context, req invoker.Request) invoker.Response {
			called = true
			return invoker.Response{}
		}, invoker.Request{}, &recordingTarget{})
		assert.ErrorIs(t, err, invoker.ErrMissingInput)
		assert.False(t, called)
	})
}

func TestTargets(t *testing.T) {
	var buf bytes.Buffer
	mem := &clipboard.Memory{}
	target := MultiTarget{StdoutTarget{Writer: &buf}, ClipboardTarget{Clipboard: mem}}

	require.NoError(t, target.OnSuccess("result"))
	assert.Equal(t, "result\n", buf.String())
	assert.Equal(t, "result", mem.Text)

	assert.Error(t, ClipboardTarget{}.OnSuccess("x"))
}
