package worker

import (
	"context"
	"log"
	"runtime"
	"sync"

	"enhance-with-ai/src/invoker"
	"enhance-with-ai/src/logutil"
)

// Invoke runs one request against the external command.
type Invoke func(ctx context.Context, req invoker.Request) invoker.Response

// ResultCallback is invoked on completion (from a worker goroutine).
// UI callers should pass a closure that posts back into their own loop.
type ResultCallback func(resp invoker.Response)

// Pool is a fixed-size invocation worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	invoke Invoke
	jobs   chan job
	wg     sync.WaitGroup
	once   sync.Once
}

type job struct {
	ctx context.Context
	req invoker.Request
	cb  ResultCallback
}

// New creates a worker pool. Size defaults to NumCPU when size<=0. Queue is 1 slot.
func New(size int, invoke Invoke) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{invoke: invoke, jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				log.Printf("Worker: starting invocation, instruction=%q", logutil.SanitizeForLog(j.req.Instruction))
				resp := p.run(j)
				log.Printf("Worker: invocation completed, ok=%v, output length=%d", resp.OK(), len(resp.Output))
				if j.cb != nil {
					j.cb(resp)
				}
			}
		}()
	}
}

// run keeps a panicking Invoke from taking the worker down.
func (p *Pool) run(j job) (resp invoker.Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Worker: invocation panicked: %v", r)
			err := &invoker.CommunicationError{Err: panicError{value: r}}
			resp = invoker.Response{Message: err.Err.Error(), Err: err}
		}
	}()
	return p.invoke(j.ctx, j.req)
}

// Submit enqueues a job if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, req invoker.Request, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, req: req, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work. Safe to call more than once.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.jobs) })
	p.wg.Wait()
}
