package tracestore

import (
	"sort"
	"testing"
)

// fakeLocator is a tiny in-memory locator for store tests, avoiding any
// dependency on the real process address space.
type fakeLocator struct {
	names []string
	bases []uint64
	sizes []uint64
}

func (f *fakeLocator) Count() int { return len(f.names) }

func (f *fakeLocator) Name(i int) string { return f.names[i] }

func (f *fakeLocator) Locate(addr uint64) (int, uint64, bool) {
	for i, base := range f.bases {
		if addr >= base && addr < base+f.sizes[i] {
			return i, addr - base, true
		}
	}
	return 0, 0, false
}

func newFake() *fakeLocator {
	return &fakeLocator{
		names: []string{"mod-a", "mod-b"},
		bases: []uint64{0x1000, 0x2000},
		sizes: []uint64{0x100, 0x100},
	}
}

func TestRecordEncodeDecodeRoundTrip(t *testing.T) {
	r := NewRecord(0x1234, 0xAB, 0xCD)
	off, t1, t2 := r.Decode()
	if off != 0x1234 || t1 != 0xAB || t2 != 0xCD {
		t.Fatalf("round trip mismatch: off=%#x t1=%#x t2=%#x", off, t1, t2)
	}
}

func TestRecordPCOffsetMasking(t *testing.T) {
	huge := uint64(1) << 50 // exceeds the 48-bit field
	r := NewRecord(huge, 0, 0)
	off, _, _ := r.Decode()
	if off != huge&pcOffsetMask {
		t.Fatalf("expected offset masked to 48 bits, got %#x", off)
	}
}

func TestTrySaveDedup(t *testing.T) {
	s := New(newFake())
	if !s.TrySave(0x1010, 1, 2) {
		t.Fatal("expected first insert to report true")
	}
	if s.TrySave(0x1010, 1, 2) {
		t.Fatal("expected duplicate insert to report false")
	}
	if s.RecordCount(0) != 1 {
		t.Fatalf("expected 1 record, got %d", s.RecordCount(0))
	}
}

func TestTrySaveUnknownAddressDropped(t *testing.T) {
	s := New(newFake())
	if s.TrySave(0xDEADBEEF, 1, 2) {
		t.Fatal("expected TrySave for an unmapped address to report false")
	}
	for i := 0; i < s.ModuleCount(); i++ {
		if s.RecordCount(i) != 0 {
			t.Fatalf("expected no records recorded anywhere, got %d in module %d", s.RecordCount(i), i)
		}
	}
}

func TestTrySaveRoutesToCorrectModule(t *testing.T) {
	s := New(newFake())
	s.TrySave(0x1050, 1, 1) // mod-a
	s.TrySave(0x2050, 2, 2) // mod-b

	if s.RecordCount(0) != 1 || s.RecordCount(1) != 1 {
		t.Fatalf("expected one record per module, got %d and %d", s.RecordCount(0), s.RecordCount(1))
	}
}

func TestSortedRecordsIsDeterministic(t *testing.T) {
	s := New(newFake())
	s.TrySave(0x10F0, 9, 9)
	s.TrySave(0x1000, 1, 1)
	s.TrySave(0x1080, 5, 5)

	recs := s.SortedRecords(0)
	if !sort.SliceIsSorted(recs, func(i, j int) bool { return recs[i] < recs[j] }) {
		t.Fatal("expected records in ascending order")
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
}

func TestHash32IsStableAndWellDistributed(t *testing.T) {
	a := Hash32(0x1122334455667788)
	b := Hash32(0x1122334455667788)
	if a != b {
		t.Fatal("expected Hash32 to be a pure function of its input")
	}
	c := Hash32(0x1122334455667789)
	if a == c {
		t.Fatal("expected a single-bit input change to change the hash (not a strict requirement, but a canary for a broken mix)")
	}
}
