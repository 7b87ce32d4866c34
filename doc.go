// Package enginewrap drives a long-lived numeric computation engine (a
// MATLAB-style process with a global variable workspace) from Go, as if the
// engine's functions and variables were native objects.
//
// # Architecture Overview
//
//	enginewrap/          Root package with the Driver and Conn interfaces
//	├── wrap/            Session, command dispatch, marshalling, proxies
//	├── resolve/         Command signature discovery (declared, introspected, help text)
//	├── value/           Host-side engine values (double arrays, char)
//	├── resource/        Weak, observable registry of live proxies
//	├── wire/            Binary request/response protocol shared by drivers
//	├── driver/sim/      In-process reference engine
//	├── driver/process/  Engine in a child process speaking the wire protocol
//	├── driver/wasm/     Engine compiled to WebAssembly, hosted with wazero
//	├── config/          YAML configuration
//	└── errors/          Structured error types
//
// # Quick Start
//
//	s, err := wrap.New(ctx, sim.Driver{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close(ctx)
//
//	sorted, err := s.Call(ctx, "sort", []float64{3, 1, 2})
//	fmt.Println(sorted) // [1 2 3]
//
// Multiple return values are requested per call:
//
//	sortCmd, _ := s.Command(ctx, "sort")
//	res, err := sortCmd.Call(ctx, []any{[]float64{3, 1, 2}}, wrap.NOut(2))
//	// res.([]any) holds the sorted values and the permutation
//
// # Proxies
//
// Results without a faithful Go representation (structs, non rank-1 cells)
// come back as *wrap.Proxy values that forward field and index access to the
// engine. A proxy owns a workspace variable until Close is called or the
// garbage collector reclaims it and the session drains its release queue.
//
// # Thread Safety
//
// A Session is NOT safe for concurrent use. The engine executes one statement
// at a time and all calls block until it answers.
package enginewrap
