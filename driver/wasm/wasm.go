// Package wasm hosts an engine compiled to WebAssembly with wazero.
//
// The guest is a WASI reactor exporting:
//
//	memory
//	cabi_realloc(old_ptr, old_size, align, new_size) -> ptr
//	engine_call(req_ptr, req_len) -> i64   ;; resp_ptr<<32 | resp_len
//
// and, optionally, _initialize. Requests and responses are wire-encoded
// messages. The host allocates the request with cabi_realloc, and frees
// it and the guest-allocated response with cabi_realloc(ptr, len, 1, 0).
package wasm

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/enginewrap"
	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/wire"
)

// Guest export names.
const (
	ExportRealloc    = "cabi_realloc"
	ExportCall       = "engine_call"
	ExportInitialize = "_initialize"
)

// Driver instantiates an engine module.
type Driver struct {
	// Module holds the module bytes. If empty, Path is read.
	Module []byte
	Path   string

	// Args and Env are passed to the guest through WASI.
	Args []string
	Env  map[string]string

	// Stdout and Stderr receive the guest's WASI output. nil discards.
	Stdout io.Writer
	Stderr io.Writer

	// MemoryLimitPages caps guest memory in 64KiB pages. 0 keeps wazero's
	// default.
	MemoryLimitPages uint32
}

var _ enginewrap.Driver = Driver{}

// Open compiles and instantiates the module and performs the protocol
// handshake.
func (d Driver) Open(ctx context.Context) (enginewrap.Conn, error) {
	t, err := d.instantiate(ctx)
	if err != nil {
		return nil, err
	}
	client := wire.NewClient(t)
	if err := client.Hello(ctx); err != nil {
		t.Close()
		return nil, errors.EngineStart("handshake with wasm engine", err)
	}
	return client, nil
}

func (d Driver) instantiate(ctx context.Context) (*Transport, error) {
	code := d.Module
	if len(code) == 0 {
		if d.Path == "" {
			return nil, errors.EngineStart("no wasm module configured", nil)
		}
		var err error
		code, err = os.ReadFile(d.Path)
		if err != nil {
			return nil, errors.EngineStart("read wasm module", err)
		}
	}

	cfg := wazero.NewRuntimeConfig()
	if d.MemoryLimitPages > 0 {
		cfg = cfg.WithMemoryLimitPages(d.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)
	fail := func(detail string, err error) (*Transport, error) {
		rt.Close(ctx)
		return nil, errors.EngineStart(detail, err)
	}

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		return fail("instantiate WASI", err)
	}
	compiled, err := rt.CompileModule(ctx, code)
	if err != nil {
		return fail("compile wasm module", err)
	}

	modCfg := wazero.NewModuleConfig().
		WithName("engine").
		WithStartFunctions().
		WithArgs(append([]string{"engine"}, d.Args...)...)
	if d.Stdout != nil {
		modCfg = modCfg.WithStdout(d.Stdout)
	}
	if d.Stderr != nil {
		modCfg = modCfg.WithStderr(d.Stderr)
	}
	for k, v := range d.Env {
		modCfg = modCfg.WithEnv(k, v)
	}
	mod, err := rt.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		return fail("instantiate wasm module", err)
	}

	t := &Transport{
		runtime: rt,
		module:  mod,
		memory:  mod.Memory(),
		realloc: mod.ExportedFunction(ExportRealloc),
		call:    mod.ExportedFunction(ExportCall),
		stack:   make([]uint64, 4),
	}
	switch {
	case t.memory == nil:
		return fail("module exports no memory", nil)
	case t.realloc == nil:
		return fail("module does not export "+ExportRealloc, nil)
	case t.call == nil:
		return fail("module does not export "+ExportCall, nil)
	}

	if init := mod.ExportedFunction(ExportInitialize); init != nil {
		if _, err := init.Call(ctx); err != nil {
			return fail("initialize wasm module", err)
		}
	}
	Logger().Debug("wasm engine instantiated",
		zap.Int("module_bytes", len(code)),
		zap.Uint32("memory_bytes", t.memory.Size()))
	return t, nil
}

// Transport carries wire messages through guest memory. It implements
// wire.RoundTripper.
type Transport struct {
	runtime wazero.Runtime
	module  api.Module
	memory  api.Memory
	realloc api.Function
	call    api.Function
	stack   []uint64
	mu      sync.Mutex
	closed  bool
}

var _ wire.RoundTripper = (*Transport)(nil)

// RoundTrip implements wire.RoundTripper.
func (t *Transport) RoundTrip(ctx context.Context, req []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, errors.Closed(errors.PhaseTransport, "wasm module")
	}

	ptr, err := t.alloc(ctx, uint32(len(req)))
	if err != nil {
		return nil, err
	}
	defer t.free(ctx, ptr, uint32(len(req)))
	if !t.memory.Write(ptr, req) {
		return nil, errors.Transport("request out of guest memory bounds", nil)
	}

	t.stack[0], t.stack[1] = uint64(ptr), uint64(len(req))
	if err := t.call.CallWithStack(ctx, t.stack[:2]); err != nil {
		return nil, errors.Transport(ExportCall, err)
	}
	respPtr, respLen := unpack(t.stack[0])
	defer t.free(ctx, respPtr, respLen)

	view, ok := t.memory.Read(respPtr, respLen)
	if !ok {
		return nil, errors.Transport("response out of guest memory bounds", nil)
	}
	return append([]byte(nil), view...), nil
}

func (t *Transport) alloc(ctx context.Context, size uint32) (uint32, error) {
	t.stack[0], t.stack[1], t.stack[2], t.stack[3] = 0, 0, 1, uint64(size)
	if err := t.realloc.CallWithStack(ctx, t.stack[:4]); err != nil {
		return 0, errors.Transport(ExportRealloc, err)
	}
	return uint32(t.stack[0]), nil
}

func (t *Transport) free(ctx context.Context, ptr, size uint32) {
	if ptr == 0 {
		return
	}
	t.stack[0], t.stack[1], t.stack[2], t.stack[3] = uint64(ptr), uint64(size), 1, 0
	if err := t.realloc.CallWithStack(ctx, t.stack[:4]); err != nil {
		Logger().Warn("free guest buffer",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}

// Close releases the module and its runtime. Closing twice is a no-op.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return t.runtime.Close(context.Background())
}

func unpack(v uint64) (ptr, size uint32) {
	return uint32(v >> 32), uint32(v)
}
