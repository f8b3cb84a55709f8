// Package dispatch implements the comparison-event pipeline: the
// lazily-initialized singleton owning Configuration, ModuleMap and
// TraceStore, and every instrumentation ABI entry point that feeds it.
//
// The lazy-init-under-lock shape, and the fast-return discipline before
// the lock is ever touched, follow a familiar runtime-instrumentation
// pattern: a package-level flag is consulted first, the lock guards
// first-use initialization, and once initialized the singleton lives
// until process death — deliberately never torn down, since a
// coverage-tracking runtime has no natural shutdown point short of
// process exit.
package dispatch

import (
	"os"
	"sync"

	"github.com/ripfuzz/cmplog/internal/cmplog/config"
	"github.com/ripfuzz/cmplog/internal/cmplog/diag"
	"github.com/ripfuzz/cmplog/internal/cmplog/dumper"
	"github.com/ripfuzz/cmplog/internal/cmplog/modulemap"
	"github.com/ripfuzz/cmplog/internal/cmplog/tracestore"
)

var (
	mu          sync.Mutex
	initialized bool
	cfg         config.Config
	store       *tracestore.Store

	flushOnce sync.Once
)

// ensureInitLocked performs the one-time Configuration/ModuleMap/
// TraceStore setup. The caller must already hold mu. A malformed
// ASAN_OPTIONS is the one fatal error reachable from here.
func ensureInitLocked() {
	if initialized {
		return
	}
	c, err := config.Parse(os.LookupEnv)
	if err != nil {
		diag.Fatalf("%v", err)
	}
	cfg = c
	store = tracestore.New(modulemap.Build())
	initialized = true
}

// Shutdown flushes every module's trace records to disk exactly once,
// the programmatic equivalent of the process-exit hook registered at
// init time. It is safe to call multiple times, from
// multiple goroutines, and safe to call even if no callback ever fired
// (initialized stays false and nothing is written).
func Shutdown() {
	flushOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if !initialized || !cfg.Enabled {
			return
		}
		dumper.Dump(store, cfg.OutputDir, os.Getpid())
	})
}

// reset is a test-only seam that clears the singleton so successive
// tests don't observe each other's state.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	initialized = false
	cfg = config.Config{}
	store = nil
	flushOnce = sync.Once{}
}

// TraceCmp1 and TraceConstCmp1 are permanently no-ops: single-byte
// operands are assumed trivially brute-forceable by the consumer.
func TraceCmp1(arg1, arg2 uint8) {}

// TraceConstCmp1 is a permanent no-op; see TraceCmp1.
func TraceConstCmp1(arg1, arg2 uint8) {}

// TraceDiv4, TraceDiv8 and TraceGep are accepted and ignored: the
// division and pointer-index callback family is explicitly out of
// scope for this runtime.
func TraceDiv4(value uint32) {}
func TraceDiv8(value uint64) {}
func TraceGep(value uintptr) {}

// TraceCmp2 records a non-constant 2-byte comparison.
func TraceCmp2(arg1, arg2 uint16) {
	traceNonconstCmp(2, uint64(arg1), uint64(arg2))
}

// TraceCmp4 records a non-constant 4-byte comparison.
func TraceCmp4(arg1, arg2 uint32) {
	traceNonconstCmp(4, uint64(arg1), uint64(arg2))
}

// TraceCmp8 records a non-constant 8-byte comparison.
func TraceCmp8(arg1, arg2 uint64) {
	traceNonconstCmp(8, arg1, arg2)
}

// TraceConstCmp2 records a constant 2-byte comparison; arg1 is the
// constant operand.
func TraceConstCmp2(arg1, arg2 uint16) {
	traceConstCmp(2, uint64(arg1), uint64(arg2))
}

// TraceConstCmp4 records a constant 4-byte comparison; arg1 is the
// constant operand.
func TraceConstCmp4(arg1, arg2 uint32) {
	traceConstCmp(4, uint64(arg1), uint64(arg2))
}

// TraceConstCmp8 records a constant 8-byte comparison; arg1 is the
// constant operand.
func TraceConstCmp8(arg1, arg2 uint64) {
	traceConstCmp(8, arg1, arg2)
}

// traceNonconstCmp implements the N-byte non-const comparison policy:
// only active when trace_nonconst_cmp is on, full width, no
// value-dependent narrowing.
func traceNonconstCmp(width int, a, b uint64) {
	mu.Lock()
	defer mu.Unlock()
	ensureInitLocked()
	if !cfg.Enabled || !cfg.TraceNonconstCmp {
		return
	}
	pc := capturePC(2)
	emitIntRecords(pc, a, b, width, 0)
}

// traceConstCmp implements the N-byte const comparison policy: always
// active when enabled, pre-filtered on the constant's magnitude before
// anything else runs, and narrowed to the constant's byte span for
// width 4 and 8.
func traceConstCmp(width int, constant, value uint64) {
	// Cheap pre-filter: independent of configuration, so it runs before
	// the lock is ever touched.
	if constant < 256 {
		return
	}

	mu.Lock()
	defer mu.Unlock()
	ensureInitLocked()
	if !cfg.Enabled {
		return
	}

	argLength := width
	if width == 4 || width == 8 {
		argLength = byteSpan(constant, width*8)
	}
	pc := capturePC(2)
	emitIntRecordsWidth(pc, constant, value, argLength, 0)
}

// emitIntRecords computes the matching-byte prefix length for a and b
// over the full comparison width and stores one record per prefix
// length 1..matching_bytes.
func emitIntRecords(pc, a, b uint64, width int, switchCase uint8) {
	emitIntRecordsWidth(pc, a, b, width, switchCase)
}

// emitIntRecordsWidth is the common tail of every integer-comparison
// hook: it runs the matching-byte routine over argLength bytes and
// saves one record per matched prefix length 1..n, rather than
// collapsing to a single record per call.
func emitIntRecordsWidth(pc, a, b uint64, argLength int, switchCase uint8) {
	n := matchingBytes(a, b, argLength)
	for k := 1; k <= n; k++ {
		store.TrySave(pc, uint8(k), switchCase)
	}
}
