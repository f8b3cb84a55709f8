package dispatch

import "github.com/ripfuzz/cmplog/internal/cmplog/tracestore"

// Memory-compare weak hooks receive the calling PC directly from the
// instrumented runtime, unlike the integer-compare and switch hooks
// above which capture it themselves: the hooking convention passes the
// caller's return address as an explicit first argument rather than
// leaving it to be inferred.
//
// Every hook here uses TryLock, never Lock: the library's own byte
// comparisons in this file could recursively trigger the same weak
// hooks on some platforms, and a blocking acquire would deadlock.

// WeakHookMemcmp records a memcmp-style comparison of exactly n bytes.
func WeakHookMemcmp(pc uint64, s1, s2 []byte, n int) {
	if n > tracestore.MaxDataCmpLength {
		return
	}
	if !mu.TryLock() {
		return
	}
	defer mu.Unlock()
	ensureInitLocked()
	if !cfg.Enabled || !cfg.TraceMemoryCmp {
		return
	}
	emitMemcmpRecords(pc, s1, s2, n)
}

// WeakHookStrncmp records a strncmp-style comparison, narrowing n to
// whichever of the two strings terminates first within the first n
// bytes.
func WeakHookStrncmp(pc uint64, s1, s2 []byte, n int) {
	if n > tracestore.MaxDataCmpLength {
		return
	}
	if !mu.TryLock() {
		return
	}
	defer mu.Unlock()
	ensureInitLocked()
	if !cfg.Enabled || !cfg.TraceMemoryCmp {
		return
	}
	n = nulScan(s1, n)
	n = nulScan(s2, n)
	emitMemcmpRecords(pc, s1, s2, n)
}

// WeakHookStrcmp records a strcmp-style comparison. Both strings are
// scanned in parallel for up to MaxDataCmpLength+1 bytes; if neither
// terminates within that range the comparison is dropped rather than
// truncated.
func WeakHookStrcmp(pc uint64, s1, s2 []byte) {
	if !mu.TryLock() {
		return
	}
	defer mu.Unlock()
	ensureInitLocked()
	if !cfg.Enabled || !cfg.TraceMemoryCmp {
		return
	}
	n := nulScan2(s1, s2, tracestore.MaxDataCmpLength+1)
	if n > tracestore.MaxDataCmpLength {
		return
	}
	emitMemcmpRecords(pc, s1, s2, n)
}

// WeakHookStrncasecmp shares strncmp's implementation: the
// matching-prefix computation stays byte-exact even for the
// case-insensitive family.
func WeakHookStrncasecmp(pc uint64, s1, s2 []byte, n int) {
	WeakHookStrncmp(pc, s1, s2, n)
}

// WeakHookStrcasecmp shares strcmp's implementation; see
// WeakHookStrncasecmp.
func WeakHookStrcasecmp(pc uint64, s1, s2 []byte) {
	WeakHookStrcmp(pc, s1, s2)
}

// byteAt returns b[i], or 0 if i is out of range — a Go slice standing
// in for a C string may not extend as far as the nominal scan length.
func byteAt(b []byte, i int) byte {
	if i < 0 || i >= len(b) {
		return 0
	}
	return b[i]
}

// nulScan mirrors InternalStrnlen: the index of the first NUL byte in
// s within the first limit bytes, or limit if none is found.
func nulScan(s []byte, limit int) int {
	for i := 0; i < limit; i++ {
		if byteAt(s, i) == 0 {
			return i
		}
	}
	return limit
}

// nulScan2 mirrors InternalStrnlen2: scans both strings in lock-step,
// stopping at the first position where either has a NUL, up to limit.
func nulScan2(s1, s2 []byte, limit int) int {
	n := 0
	for n < limit {
		if byteAt(s1, n) == 0 || byteAt(s2, n) == 0 {
			break
		}
		n++
	}
	return n
}

// emitMemcmpRecords runs the forward (not LSB-first) matching-byte scan
// used for memory comparisons and saves one record per matched prefix
// length, tagged with MemcmpTag1.
func emitMemcmpRecords(pc uint64, s1, s2 []byte, n int) {
	m := 0
	for m < n {
		if byteAt(s1, m) != byteAt(s2, m) {
			break
		}
		m++
	}
	for k := 1; k <= m; k++ {
		store.TrySave(pc, tracestore.MemcmpTag1, uint8(k))
	}
}
