// Package script embeds a JavaScript runtime (via github.com/dop251/goja)
// that exposes the collector's own byte-primitive, encoding, filesystem,
// and compression helpers as host functions namespaced by domain, so an
// analyst can compose a custom collector without leaving JavaScript.
package script

import (
	"encoding/json"
	"errors"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// ErrNoReturnValue is returned by Eval when a script completes without
// producing a JSON-serializable return value (e.g. it ends with a
// statement, not an expression).
var ErrNoReturnValue = errors.New("script: no return value")

// Options configures a Runtime. Logger defaults to zap's no-op logger
// when nil, matching every other entry point in this module.
type Options struct {
	Logger *zap.SugaredLogger
}

// Runtime wraps one goja.Runtime with the host-function registry
// installed. A Runtime is single-threaded: scripts run cooperatively,
// never concurrently, on the goroutine that calls Eval/EvalAsync.
type Runtime struct {
	vm     *goja.Runtime
	logger *zap.SugaredLogger
	jobs   *jobQueue
}

// NewRuntime builds a Runtime with the filesystem, encoding, time,
// compression and system host-function namespaces installed and
// staticArgs pre-registered as the global STATIC_ARGS. No nom, windows,
// macos or linux namespace is installed.
func NewRuntime(staticArgs any, opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	vm := goja.New()
	r := &Runtime{vm: vm, logger: logger, jobs: newJobQueue()}

	if err := vm.Set("STATIC_ARGS", staticArgs); err != nil {
		return nil, err
	}
	r.installHostFunctions()
	return r, nil
}

// Eval runs code synchronously and returns its completion value decoded
// from JSON-compatible data (objects, arrays, strings, numbers,
// booleans) - scripts never see the source host language, only the data
// these host functions already normalized.
func (r *Runtime) Eval(code string) (any, error) {
	v, err := r.vm.RunString(code)
	if err != nil {
		return nil, err
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, ErrNoReturnValue
	}
	exported := v.Export()
	// Round-trip through JSON so a caller always receives plain
	// map[string]any/[]any/primitive data, never a goja-internal type.
	raw, err := json.Marshal(exported)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EvalAsync runs code, then drains the job queue (promise, async,
// timeout, and generic jobs) until both the microtask queue and the
// tracked task group are empty, per run_jobs_async's polling contract.
func (r *Runtime) EvalAsync(code string) (any, error) {
	result, err := r.Eval(code)
	if err != nil && !errors.Is(err, ErrNoReturnValue) {
		return nil, err
	}
	r.jobs.runUntilDrained(r.vm)
	return result, nil
}

// Close cancels any still-pending jobs. Every Runtime must be closed
// explicitly on completion - jobs are never left running past the
// script that queued them.
func (r *Runtime) Close() {
	r.jobs.cancelAll()
}
