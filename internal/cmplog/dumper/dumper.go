// Package dumper flushes deduplicated trace records to per-module
// .sancov files at process exit, mirroring a sanitizer coverage
// runtime's exit-time dump and a race detector's exit-time report.
package dumper

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"os"
	"path/filepath"

	"github.com/ripfuzz/cmplog/internal/cmplog/diag"
	"github.com/ripfuzz/cmplog/internal/cmplog/tracestore"
)

// storeLike is the slice of *tracestore.Store the dumper needs,
// expressed as an interface so tests can dump a fake store without a
// real module map.
type storeLike interface {
	ModuleCount() int
	ModuleName(i int) string
	SortedRecords(i int) []tracestore.Record
}

// wordIs32Bit selects the on-disk record width: 8 bytes per record on
// a 64-bit host, 4 (hash-truncated) bytes on a 32-bit host.
const wordIs32Bit = bits.UintSize == 32

// Dump writes one .sancov file per module that has at least one
// recorded trace, into outputDir, naming files after pid. It is called
// once, with the global lock already held for its full duration, so it
// does not lock anything itself.
func Dump(s storeLike, outputDir string, pid int) {
	usedNames := make(map[string]bool)
	for i := 0; i < s.ModuleCount(); i++ {
		records := s.SortedRecords(i)
		if len(records) == 0 {
			continue
		}
		name := s.ModuleName(i)
		path, f := openModuleFile(outputDir, name, pid, i, usedNames)
		writeModule(f, records, path)
		f.Close()
		diag.DumpSummary(path, len(records))
	}
}

// openModuleFile implements the filename-disambiguation rule: the
// first module with a given short name gets the plain name,
// truncating any stale file from a previous run of the same pid;
// subsequent modules sharing that name must not clobber it, so they
// open the plain name exclusively (expected to fail, since it now
// exists) and fall back to a name suffixed with the module index.
func openModuleFile(outputDir, name string, pid, moduleIndex int, usedNames map[string]bool) (string, *os.File) {
	plain := filepath.Join(outputDir, fmt.Sprintf("cmp.%s.%d.sancov", name, pid))

	if !usedNames[name] {
		usedNames[name] = true
		f, err := os.OpenFile(plain, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			diag.Fatalf("opening %s: %v", plain, err)
		}
		return plain, f
	}

	f, err := os.OpenFile(plain, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err == nil {
		return plain, f
	}

	suffixed := filepath.Join(outputDir, fmt.Sprintf("cmp.%s.%d.%d.sancov", name, pid, moduleIndex))
	f, err = os.OpenFile(suffixed, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		diag.Fatalf("opening %s: %v", suffixed, err)
	}
	return suffixed, f
}

// writeModule writes the magic header followed by every record, in the
// width appropriate to this host's pointer size.
func writeModule(f *os.File, records []tracestore.Record, path string) {
	var hdr [8]byte
	binary.LittleEndian.PutUint64(hdr[:], tracestore.Magic)
	if _, err := f.Write(hdr[:]); err != nil {
		diag.Fatalf("writing %s: %v", path, err)
	}

	if wordIs32Bit {
		buf := make([]byte, 4)
		for _, r := range records {
			binary.LittleEndian.PutUint32(buf, tracestore.Hash32(uint64(r)))
			if _, err := f.Write(buf); err != nil {
				diag.Fatalf("writing %s: %v", path, err)
			}
		}
		return
	}

	buf := make([]byte, 8)
	for _, r := range records {
		binary.LittleEndian.PutUint64(buf, uint64(r))
		if _, err := f.Write(buf); err != nil {
			diag.Fatalf("writing %s: %v", path, err)
		}
	}
}
