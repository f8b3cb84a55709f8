//go:build linux

package modulemap

import (
	"bufio"
	"debug/elf"
	"os"
	"strconv"
	"strings"
)

// enumerate parses /proc/self/maps and coalesces contiguous mappings
// that share a backing file into one Module per file, spanning from the
// lowest to the highest address mapped for that file. Anonymous
// mappings and pseudo-paths such as "[heap]", "[stack]" and "[vdso]"
// are not modules and are skipped.
func enumerate() []Module {
	f, err := os.Open("/proc/self/maps")
	if err != nil {
		return nil
	}
	defer f.Close()

	type span struct {
		lo, hi uint64
	}
	spans := make(map[string]span)
	order := make([]string, 0, 16)

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		fields := strings.Fields(line)
		if len(fields) < 6 {
			continue
		}
		addrs := fields[0]
		perms := fields[1]
		path := fields[len(fields)-1]

		if !strings.Contains(perms, "x") {
			continue
		}
		if path == "" || strings.HasPrefix(path, "[") {
			continue
		}

		lo, hi, ok := parseAddrRange(addrs)
		if !ok {
			continue
		}

		if s, seen := spans[path]; seen {
			if lo < s.lo {
				s.lo = lo
			}
			if hi > s.hi {
				s.hi = hi
			}
			spans[path] = s
		} else {
			spans[path] = span{lo: lo, hi: hi}
			order = append(order, path)
		}
	}

	mods := make([]Module, 0, len(order))
	for _, path := range order {
		s := spans[path]
		if !looksExecutable(path) {
			continue
		}
		mods = append(mods, Module{
			Name: canonicalName(path),
			Base: s.lo,
			Size: s.hi - s.lo,
		})
	}
	return mods
}

func parseAddrRange(s string) (lo, hi uint64, ok bool) {
	i := strings.IndexByte(s, '-')
	if i < 0 {
		return 0, 0, false
	}
	loV, err := strconv.ParseUint(s[:i], 16, 64)
	if err != nil {
		return 0, 0, false
	}
	hiV, err := strconv.ParseUint(s[i+1:], 16, 64)
	if err != nil {
		return 0, 0, false
	}
	return loV, hiV, true
}

// looksExecutable cross-checks a mapped, execute-permission path
// against the ELF program headers of the backing file: a region that
// the kernel maps executable but whose file has no executable PT_LOAD
// segment is not a real code module. Any failure to open or parse the
// file (permission denied, not an ELF, already unlinked) is treated as
// "can't rule it out" and the mapping is kept — this is a refinement on
// top of the permission bit, not a replacement for it.
func looksExecutable(path string) bool {
	f, err := elf.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	for _, p := range f.Progs {
		if p.Type == elf.PT_LOAD && p.Flags&elf.PF_X != 0 {
			return true
		}
	}
	return false
}
