// Package cmplog: instrumentation entry points.
//
// Every function here is a thin wrapper over internal/cmplog/dispatch:
// the actual pipeline lives in an internal package, and this package
// exists only to give it a name a Go program (or a coverage compiler's
// generated calls, via internal/cmplog/cabi) can call.
package cmplog

import (
	"math/bits"

	"github.com/ripfuzz/cmplog/internal/cmplog/dispatch"
)

// Shutdown flushes accumulated trace records for every module to its
// .sancov file. Safe to call more than once; only the first call does
// any work.
func Shutdown() {
	dispatch.Shutdown()
}

// GetInfo returns information about the runtime as currently compiled.
func GetInfo() Info {
	width := 8
	if bits.UintSize == 32 {
		width = 4
	}
	return Info{Version: Version, RecordWidth: width}
}

// TraceCmp1 records a single-byte integer comparison. This is a
// permanent no-op: single-byte operands are trivially brute-forceable
// by the consumer.
func TraceCmp1(arg1, arg2 uint8) { dispatch.TraceCmp1(arg1, arg2) }

// TraceCmp2 records a non-constant 2-byte integer comparison.
func TraceCmp2(arg1, arg2 uint16) { dispatch.TraceCmp2(arg1, arg2) }

// TraceCmp4 records a non-constant 4-byte integer comparison.
func TraceCmp4(arg1, arg2 uint32) { dispatch.TraceCmp4(arg1, arg2) }

// TraceCmp8 records a non-constant 8-byte integer comparison.
func TraceCmp8(arg1, arg2 uint64) { dispatch.TraceCmp8(arg1, arg2) }

// TraceConstCmp1 is a permanent no-op; see TraceCmp1.
func TraceConstCmp1(arg1, arg2 uint8) { dispatch.TraceConstCmp1(arg1, arg2) }

// TraceConstCmp2 records a constant 2-byte comparison; arg1 is the
// constant operand.
func TraceConstCmp2(arg1, arg2 uint16) { dispatch.TraceConstCmp2(arg1, arg2) }

// TraceConstCmp4 records a constant 4-byte comparison; arg1 is the
// constant operand.
func TraceConstCmp4(arg1, arg2 uint32) { dispatch.TraceConstCmp4(arg1, arg2) }

// TraceConstCmp8 records a constant 8-byte comparison; arg1 is the
// constant operand.
func TraceConstCmp8(arg1, arg2 uint64) { dispatch.TraceConstCmp8(arg1, arg2) }

// TraceSwitch records a switch statement's case constants. cases[0] is
// the case count, cases[1] the declared operand bit width (unused),
// cases[2:] the case constants; cases may be mutated in place (see
// internal/cmplog/dispatch.TraceSwitch).
func TraceSwitch(value uint64, cases []uint64) { dispatch.TraceSwitch(value, cases) }

// TraceDiv4, TraceDiv8, and TraceGep are accepted and ignored: division
// and pointer-index instrumentation is out of scope.
func TraceDiv4(value uint32) { dispatch.TraceDiv4(value) }
func TraceDiv8(value uint64) { dispatch.TraceDiv8(value) }
func TraceGep(value uintptr) { dispatch.TraceGep(value) }

// WeakHookMemcmp records a memcmp-style comparison of exactly n bytes,
// keyed by the caller's PC (pc is the return address of the
// instrumented call site, not this function's own caller — a real
// coverage-instrumented compiler supplies it directly).
func WeakHookMemcmp(pc uint64, s1, s2 []byte, n int) {
	dispatch.WeakHookMemcmp(pc, s1, s2, n)
}

// WeakHookStrncmp records a strncmp-style comparison.
func WeakHookStrncmp(pc uint64, s1, s2 []byte, n int) {
	dispatch.WeakHookStrncmp(pc, s1, s2, n)
}

// WeakHookStrcmp records a strcmp-style comparison.
func WeakHookStrcmp(pc uint64, s1, s2 []byte) {
	dispatch.WeakHookStrcmp(pc, s1, s2)
}

// WeakHookStrncasecmp records a strncasecmp-style comparison, sharing
// strncmp's byte-exact matching-prefix computation.
func WeakHookStrncasecmp(pc uint64, s1, s2 []byte, n int) {
	dispatch.WeakHookStrncasecmp(pc, s1, s2, n)
}

// WeakHookStrcasecmp records a strcasecmp-style comparison, sharing
// strcmp's byte-exact matching-prefix computation.
func WeakHookStrcasecmp(pc uint64, s1, s2 []byte) {
	dispatch.WeakHookStrcasecmp(pc, s1, s2)
}
