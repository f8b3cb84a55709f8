//go:build cgo

// Package cabi is the cgo boundary: it exports the real
// SanitizerCoverage symbol names a coverage-instrumented compiler
// expects, each a one-line trampoline into the pure-Go dispatcher.
//
// Go's own `-d=libfuzzer` build mode emits calls to exactly these
// symbol names, and a Go binary must supply C-linkage definitions of
// them to satisfy the linker. Without cgo, this package is simply not
// built; the pure-Go surface in the top-level cmplog package remains
// fully usable on its own.
package cabi

/*
#include <stdint.h>
#include <stdlib.h>

extern void cmplogGoExitHook();

static void cmplog_atexit_trampoline(void) {
	cmplogGoExitHook();
}

static void cmplog_register_atexit(void) {
	atexit(cmplog_atexit_trampoline);
}
*/
import "C"

import (
	"unsafe"

	"github.com/ripfuzz/cmplog/internal/cmplog/dispatch"
)

func init() {
	C.cmplog_register_atexit()
}

//export cmplogGoExitHook
func cmplogGoExitHook() {
	dispatch.Shutdown()
}

//export __sanitizer_cov_trace_cmp1
func __sanitizer_cov_trace_cmp1(arg1, arg2 C.uint8_t) {
	dispatch.TraceCmp1(uint8(arg1), uint8(arg2))
}

//export __sanitizer_cov_trace_cmp2
func __sanitizer_cov_trace_cmp2(arg1, arg2 C.uint16_t) {
	dispatch.TraceCmp2(uint16(arg1), uint16(arg2))
}

//export __sanitizer_cov_trace_cmp4
func __sanitizer_cov_trace_cmp4(arg1, arg2 C.uint32_t) {
	dispatch.TraceCmp4(uint32(arg1), uint32(arg2))
}

//export __sanitizer_cov_trace_cmp8
func __sanitizer_cov_trace_cmp8(arg1, arg2 C.uint64_t) {
	dispatch.TraceCmp8(uint64(arg1), uint64(arg2))
}

//export __sanitizer_cov_trace_const_cmp1
func __sanitizer_cov_trace_const_cmp1(arg1, arg2 C.uint8_t) {
	dispatch.TraceConstCmp1(uint8(arg1), uint8(arg2))
}

//export __sanitizer_cov_trace_const_cmp2
func __sanitizer_cov_trace_const_cmp2(arg1, arg2 C.uint16_t) {
	dispatch.TraceConstCmp2(uint16(arg1), uint16(arg2))
}

//export __sanitizer_cov_trace_const_cmp4
func __sanitizer_cov_trace_const_cmp4(arg1, arg2 C.uint32_t) {
	dispatch.TraceConstCmp4(uint32(arg1), uint32(arg2))
}

//export __sanitizer_cov_trace_const_cmp8
func __sanitizer_cov_trace_const_cmp8(arg1, arg2 C.uint64_t) {
	dispatch.TraceConstCmp8(uint64(arg1), uint64(arg2))
}

//export __sanitizer_cov_trace_switch
func __sanitizer_cov_trace_switch(val C.uint64_t, cases *C.uint64_t) {
	if cases == nil {
		return
	}
	// SanitizerCoverage guarantees cases[0]+2 valid elements; recover
	// that length from the case count stored at cases[0] itself.
	base := unsafe.Pointer(cases)
	count := *(*uint64)(base)
	n := int(2 + count)
	slice := unsafe.Slice((*uint64)(base), n)
	dispatch.TraceSwitch(uint64(val), slice)
}

//export __sanitizer_cov_trace_div4
func __sanitizer_cov_trace_div4(val C.uint32_t) {
	dispatch.TraceDiv4(uint32(val))
}

//export __sanitizer_cov_trace_div8
func __sanitizer_cov_trace_div8(val C.uint64_t) {
	dispatch.TraceDiv8(uint64(val))
}

//export __sanitizer_cov_trace_gep
func __sanitizer_cov_trace_gep(idx C.uintptr_t) {
	dispatch.TraceGep(uintptr(idx))
}

//export __sanitizer_weak_hook_memcmp
func __sanitizer_weak_hook_memcmp(pc, s1, s2 unsafe.Pointer, n C.size_t, result C.int) {
	dispatch.WeakHookMemcmp(pcValue(pc), bytesAt(s1, int(n)), bytesAt(s2, int(n)), int(n))
}

//export __sanitizer_weak_hook_strncmp
func __sanitizer_weak_hook_strncmp(pc, s1, s2 unsafe.Pointer, n C.size_t, result C.int) {
	dispatch.WeakHookStrncmp(pcValue(pc), bytesAt(s1, int(n)), bytesAt(s2, int(n)), int(n))
}

//export __sanitizer_weak_hook_strcmp
func __sanitizer_weak_hook_strcmp(pc, s1, s2 unsafe.Pointer, result C.int) {
	const scanCap = 65 // MaxDataCmpLength + 1
	dispatch.WeakHookStrcmp(pcValue(pc), bytesAt(s1, scanCap), bytesAt(s2, scanCap))
}

//export __sanitizer_weak_hook_strncasecmp
func __sanitizer_weak_hook_strncasecmp(pc, s1, s2 unsafe.Pointer, n C.size_t, result C.int) {
	dispatch.WeakHookStrncasecmp(pcValue(pc), bytesAt(s1, int(n)), bytesAt(s2, int(n)), int(n))
}

//export __sanitizer_weak_hook_strcasecmp
func __sanitizer_weak_hook_strcasecmp(pc, s1, s2 unsafe.Pointer, result C.int) {
	const scanCap = 65
	dispatch.WeakHookStrcasecmp(pcValue(pc), bytesAt(s1, scanCap), bytesAt(s2, scanCap))
}

// pcValue converts the caller_pc argument the runtime passes to every
// weak hook into the plain uint64 the pure-Go dispatcher stores as a
// trace record's key.
func pcValue(p unsafe.Pointer) uint64 {
	return uint64(uintptr(p))
}

// bytesAt views n bytes starting at the C address p as a Go byte
// slice, without copying. For the NUL-terminated string hooks, n is an
// upper bound on the scan, not the true string length — the
// dispatcher's own NUL scan accounts for the difference.
func bytesAt(p unsafe.Pointer, n int) []byte {
	if p == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), n)
}
