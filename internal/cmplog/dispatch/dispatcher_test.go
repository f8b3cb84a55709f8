package dispatch

import (
	"testing"

	"github.com/ripfuzz/cmplog/internal/cmplog/tracestore"
)

// allRecords concatenates every module's stored records. Tests run
// against the real process module map (there is no seam to fake it out
// from within this package's own tests), so a comparison performed
// from inside this test binary resolves to whichever module in the map
// covers the test binary's own text segment; which module that is
// doesn't matter for these assertions.
func allRecords(t *testing.T) []tracestore.Record {
	t.Helper()
	if store == nil {
		return nil
	}
	var all []tracestore.Record
	for i := 0; i < store.ModuleCount(); i++ {
		all = append(all, store.SortedRecords(i)...)
	}
	return all
}

func withCoverageEnabled(t *testing.T) {
	t.Helper()
	reset()
	t.Setenv("ASAN_OPTIONS", "coverage=1")
	t.Setenv("TRACE_NONCONST_CMP", "1")
	t.Setenv("TRACE_MEMORY_CMP", "1")
	t.Cleanup(reset)
}

func TestTraceCmp1IsAlwaysANoOp(t *testing.T) {
	withCoverageEnabled(t)
	TraceCmp1(0xAB, 0xAB)
	if got := allRecords(t); len(got) != 0 {
		t.Fatalf("expected no records from a 1-byte comparison, got %d", len(got))
	}
}

func TestTraceConstCmp1IsAlwaysANoOp(t *testing.T) {
	withCoverageEnabled(t)
	TraceConstCmp1(0xAB, 0xAB)
	if got := allRecords(t); len(got) != 0 {
		t.Fatalf("expected no records from a 1-byte const comparison, got %d", len(got))
	}
}

func TestTraceDivAndGepProduceNoRecords(t *testing.T) {
	withCoverageEnabled(t)
	TraceDiv4(7)
	TraceDiv8(7)
	TraceGep(7)
	if got := allRecords(t); len(got) != 0 {
		t.Fatalf("expected div/gep hooks to produce no records, got %d", len(got))
	}
}

func TestTraceConstCmpBelow256ProducesNoRecords(t *testing.T) {
	withCoverageEnabled(t)
	TraceConstCmp4(0x42, 0x42)
	if got := allRecords(t); len(got) != 0 {
		t.Fatalf("expected no records for a constant below 256, got %d", len(got))
	}
}

func TestTraceConstCmpEqualOperandsMatchesFullWidth(t *testing.T) {
	withCoverageEnabled(t)
	TraceConstCmp2(0x1234, 0x1234)
	got := allRecords(t)
	if len(got) != 2 {
		t.Fatalf("expected 2 records (tag1 in {1,2}), got %d", len(got))
	}
	seen := map[uint8]bool{}
	for _, r := range got {
		_, tag1, tag2 := r.Decode()
		if tag2 != 0 {
			t.Fatalf("expected tag2=0 for a plain const compare, got %d", tag2)
		}
		seen[tag1] = true
	}
	if !seen[1] || !seen[2] {
		t.Fatalf("expected tag1 values {1,2}, got %v", seen)
	}
}

func TestTraceCmpDedup(t *testing.T) {
	withCoverageEnabled(t)
	for i := 0; i < 5; i++ {
		TraceCmp4(42, 42)
	}
	got := allRecords(t)
	if len(got) != 4 {
		t.Fatalf("repeating an identical callback 5 times should still yield exactly 4 records (one per matched byte), got %d", len(got))
	}
}

// TestTraceCmpDistinctCallSitesProduceDistinctPCOffsets guards against
// capturePC's skip count under-counting a helper frame: if it did,
// every call site of TraceCmp4 anywhere in a program would collapse
// onto the same fixed pc_offset instead of each caller's own return
// address.
func TestTraceCmpDistinctCallSitesProduceDistinctPCOffsets(t *testing.T) {
	withCoverageEnabled(t)
	// Operands agree in their three low bytes (matching is LSB first),
	// so each call site yields records.
	TraceCmp4(0x11111111, 0x21111111) // call site 1
	TraceCmp4(0x22222222, 0x12222222) // call site 2

	got := allRecords(t)
	if len(got) == 0 {
		t.Fatal("expected records from two non-constant comparisons")
	}
	offsets := map[uint64]bool{}
	for _, r := range got {
		pcOffset, _, _ := r.Decode()
		offsets[pcOffset] = true
	}
	if len(offsets) < 2 {
		t.Fatalf("expected two distinct call sites to decode to at least 2 distinct pc_offsets, got %d (%v)", len(offsets), offsets)
	}
}

// TestTraceConstCmpDistinctCallSitesProduceDistinctPCOffsets is the
// const-comparison counterpart of
// TestTraceCmpDistinctCallSitesProduceDistinctPCOffsets: traceConstCmp
// sits behind the same one-helper-frame indirection as
// traceNonconstCmp and needs the same skip-count correction.
func TestTraceConstCmpDistinctCallSitesProduceDistinctPCOffsets(t *testing.T) {
	withCoverageEnabled(t)
	// Operands agree in their seven low bytes (matching is LSB first),
	// so each call site yields records.
	TraceConstCmp8(0x1122334455667788, 0x0022334455667788) // call site 1
	TraceConstCmp8(0x99AABBCCDDEEFF00, 0x00AABBCCDDEEFF00) // call site 2

	got := allRecords(t)
	if len(got) == 0 {
		t.Fatal("expected records from two constant comparisons")
	}
	offsets := map[uint64]bool{}
	for _, r := range got {
		pcOffset, _, _ := r.Decode()
		offsets[pcOffset] = true
	}
	if len(offsets) < 2 {
		t.Fatalf("expected two distinct call sites to decode to at least 2 distinct pc_offsets, got %d (%v)", len(offsets), offsets)
	}
}

func TestTraceCmpDisabledByDefaultProducesNoRecords(t *testing.T) {
	reset()
	t.Cleanup(reset)
	// No ASAN_OPTIONS at all: master switch defaults to off.
	TraceCmp4(1, 1)
	if got := allRecords(t); len(got) != 0 {
		t.Fatalf("expected no records when the library is disabled, got %d", len(got))
	}
}

func TestTraceCmpNonconstRequiresFlag(t *testing.T) {
	reset()
	t.Setenv("ASAN_OPTIONS", "coverage=1")
	// TRACE_NONCONST_CMP left unset: defaults to off.
	t.Cleanup(reset)

	TraceCmp4(1, 1)
	if got := allRecords(t); len(got) != 0 {
		t.Fatalf("expected no records: trace_nonconst_cmp is off by default, got %d", len(got))
	}
}

func TestShutdownIsIdempotentWhenNothingWasRecorded(t *testing.T) {
	reset()
	t.Cleanup(reset)
	Shutdown()
	Shutdown()
}

