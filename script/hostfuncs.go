package script

import (
	"encoding/base64"
	"errors"
	"os"
	"time"

	"github.com/dop251/goja"

	"github.com/puffyCid/artemis-sub004/pkg/compress"
	"github.com/puffyCid/artemis-sub004/pkg/enc"
)

// ErrBadArgument is returned by filesystem.readFile for an empty path;
// goja throws it into the script as a JS exception, not a Go panic.
var ErrBadArgument = errors.New("script: invalid argument")

// installHostFunctions registers the filesystem.*, encoding.*, time.*,
// compression.*, and system.* namespaces. goja converts script
// arguments to each function's Go parameter types, and an error a
// function returns reaches the script as a JS exception (never a panic).
// No windows.*, macos.*, linux.*, or nom.* namespace is registered here
// or by any other package.
func (r *Runtime) installHostFunctions() {
	r.mustSet("filesystem", map[string]any{
		"readFile": r.hostReadFile,
		"readAsync": r.hostReadFileAsync,
	})
	r.mustSet("encoding", map[string]any{
		"base64Encode": enc.Base64Encode,
		"base64Decode": r.hostBase64Decode,
		"utf16leText":  enc.UTF16LE,
		"guidLE":       enc.GUIDLittleEndian,
		"guidBE":       enc.GUIDBigEndian,
	})
	r.mustSet("time", map[string]any{
		"filetimeToIso": enc.FILETIMEToISO8601,
		"unixSecToIso":  enc.UnixSecondsToISO8601,
		"cocoaToIso":    enc.CocoaToISO8601,
		"webkitToIso":   enc.WebKitToISO8601,
		"oleToIso":      enc.OLEAutomationToISO8601,
	})
	r.mustSet("compression", map[string]any{
		"gunzip":   r.hostGunzip,
		"gzip":     r.hostGzip,
		"lz4Block": r.hostLZ4Block,
	})
	r.mustSet("system", map[string]any{
		"sleep": r.hostSleep,
		"now":   func() int64 { return time.Now().UnixMilli() },
	})
}

func (r *Runtime) mustSet(name string, value any) {
	if err := r.vm.Set(name, value); err != nil {
		panic(err) // only on a Go-level registration bug, never from script input
	}
}

// hostReadFile implements filesystem.readFile(path): validates the
// argument is a non-empty string, then returns the file's bytes as a
// Uint8Array-compatible []byte.
func (r *Runtime) hostReadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, ErrBadArgument
	}
	return os.ReadFile(path)
}

// hostReadFileAsync is filesystem's asynchronous variant: it returns
// immediately and resolves a goja promise once the read completes,
// exercising the promise-job path of the queue rather than blocking the
// calling script.
func (r *Runtime) hostReadFileAsync(path string) *goja.Promise {
	promise, resolve, reject := r.vm.NewPromise()
	resultCh := make(chan jobResult, 1)

	go func() {
		data, err := os.ReadFile(path)
		if err != nil {
			resultCh <- jobResult{err: err}
			return
		}
		resultCh <- jobResult{value: data}
	}()

	r.jobs.add(newPromiseJob(resultCh,
		func(vm *goja.Runtime, value any) { resolve(value) },
		func(vm *goja.Runtime, err error) { reject(vm.ToValue(err.Error())) },
	))
	return promise
}

func (r *Runtime) hostBase64Decode(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

func (r *Runtime) hostGunzip(b []byte) ([]byte, error) {
	return compress.Gunzip(b)
}

func (r *Runtime) hostGzip(b []byte) ([]byte, error) {
	return compress.Gzip(b, -1)
}

func (r *Runtime) hostLZ4Block(src []byte, uncompressedSize int) ([]byte, error) {
	return compress.LZ4BlockDecompress(src, uncompressedSize)
}

// hostSleep installs a timeout job that resolves after d milliseconds -
// the minimal building block an async script composes into its own
// polling/backoff logic.
func (r *Runtime) hostSleep(ms int64) *goja.Promise {
	promise, resolve, _ := r.vm.NewPromise()
	r.jobs.add(newTimeoutJob(time.Duration(ms)*time.Millisecond, func(vm *goja.Runtime) {
		resolve(goja.Undefined())
	}))
	return promise
}
