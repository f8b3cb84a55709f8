// Package cmplog provides the public, pure-Go API for the sub-instruction
// data-flow coverage runtime.
//
// This package is what a Go harness (or a test) calls directly. A
// coverage-instrumented binary built with cgo instead reaches this
// same logic through internal/cmplog/cabi's exported C symbols; both
// paths converge on internal/cmplog/dispatch.
//
// A typical manual harness looks like:
//
//	func main() {
//		defer cmplog.Shutdown()
//		// ... exercise the target, calling cmplog.TraceCmp4 etc.
//		// at each comparison site of interest ...
//	}
//
// Shutdown flushes every module's accumulated trace records to its
// .sancov file. Programs built with the cgo ABI shim get this for free
// through an automatically registered C atexit handler; a pure-Go
// caller that never links cabi must call Shutdown explicitly.
package cmplog
