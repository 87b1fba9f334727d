package script

import (
	"time"

	"github.com/dop251/goja"
)

// job is one outstanding async unit of work; Poll reports whether it has
// completed (and, if so, invokes its resolution callback against vm).
type job interface {
	poll(vm *goja.Runtime) bool
	cancel()
}

// jobQueue holds every outstanding promise/async/timeout/generic job for
// one Runtime. It is never shared across runtimes: each Runtime owns its
// own queue, scoped to the scripts it evaluates.
type jobQueue struct {
	jobs []job
}

func newJobQueue() *jobQueue {
	return &jobQueue{}
}

// add enqueues j; called by host functions that hand back a pending
// result (a promise-returning filesystem read, a timeout, ...).
func (q *jobQueue) add(j job) {
	q.jobs = append(q.jobs, j)
}

// maxDrainRounds bounds run_jobs_async's poll loop against a job that
// never completes (a bug in a host function, not a legitimate script
// wait) instead of hanging the process forever.
const maxDrainRounds = 100_000

// runUntilDrained polls every outstanding job until none remain (or a
// round limit is hit), re-checking microtask completion with each pass -
// the single-threaded cooperative scheduler the runtime promises
// scripts.
func (q *jobQueue) runUntilDrained(vm *goja.Runtime) {
	for round := 0; len(q.jobs) > 0 && round < maxDrainRounds; round++ {
		remaining := q.jobs[:0]
		for _, j := range q.jobs {
			if !j.poll(vm) {
				remaining = append(remaining, j)
			}
		}
		q.jobs = remaining
		if len(q.jobs) > 0 {
			time.Sleep(time.Millisecond)
		}
	}
}

// cancelAll cancels every still-pending job, called from Runtime.Close.
func (q *jobQueue) cancelAll() {
	for _, j := range q.jobs {
		j.cancel()
	}
	q.jobs = nil
}

// timeoutJob fires its callback once deadline has passed.
type timeoutJob struct {
	deadline time.Time
	fn       func(vm *goja.Runtime)
	done     bool
}

func newTimeoutJob(d time.Duration, fn func(vm *goja.Runtime)) *timeoutJob {
	return &timeoutJob{deadline: time.Now().Add(d), fn: fn}
}

func (t *timeoutJob) poll(vm *goja.Runtime) bool {
	if t.done {
		return true
	}
	if time.Now().Before(t.deadline) {
		return false
	}
	t.fn(vm)
	t.done = true
	return true
}

func (t *timeoutJob) cancel() { t.done = true }

// promiseJob wraps a result channel populated by a background goroutine
// (a host function doing real I/O); poll resolves or rejects the
// associated goja promise the first time a result is available.
type promiseJob struct {
	resultCh <-chan jobResult
	resolve  func(vm *goja.Runtime, value any)
	reject   func(vm *goja.Runtime, err error)
	done     bool
}

type jobResult struct {
	value any
	err   error
}

func newPromiseJob(resultCh <-chan jobResult, resolve func(*goja.Runtime, any), reject func(*goja.Runtime, error)) *promiseJob {
	return &promiseJob{resultCh: resultCh, resolve: resolve, reject: reject}
}

func (p *promiseJob) poll(vm *goja.Runtime) bool {
	if p.done {
		return true
	}
	select {
	case res := <-p.resultCh:
		if res.err != nil {
			p.reject(vm, res.err)
		} else {
			p.resolve(vm, res.value)
		}
		p.done = true
		return true
	default:
		return false
	}
}

func (p *promiseJob) cancel() { p.done = true }

// genericJob runs fn to completion on its first poll - a cooperative
// "do this once the current synchronous script body has returned"
// continuation, used by host functions with no real asynchrony of their
// own.
type genericJob struct {
	fn   func(vm *goja.Runtime)
	done bool
}

func newGenericJob(fn func(vm *goja.Runtime)) *genericJob {
	return &genericJob{fn: fn}
}

func (g *genericJob) poll(vm *goja.Runtime) bool {
	if g.done {
		return true
	}
	g.fn(vm)
	g.done = true
	return true
}

func (g *genericJob) cancel() { g.done = true }
