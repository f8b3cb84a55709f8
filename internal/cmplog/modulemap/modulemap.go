// Package modulemap enumerates the modules (executable and shared
// objects) loaded into the current process and resolves absolute
// instruction addresses to a (module index, offset-within-module) pair.
//
// The map is built once, lazily, on first use; modules loaded later
// (e.g. via dlopen after the map was built) are not discovered. This
// follows a common platform-dispatch convention: one file implements
// the real OS-specific enumeration, another supplies a safe empty
// fallback, and this file holds the platform-independent logic built
// on top of either.
package modulemap

import (
	"path/filepath"
	"sort"
	"strings"
)

// Module describes one loaded executable image or shared library.
type Module struct {
	// Name is the canonical short name: the base filename with any
	// extension (and, for versioned shared objects, everything from the
	// first '.' onward) stripped. E.g. "/lib/libc-2.31.so" -> "libc-2".
	Name string
	// Base is the lowest mapped address belonging to this module.
	Base uint64
	// Size is the span, in bytes, from Base to the highest mapped
	// address belonging to this module.
	Size uint64
}

// Map is an ordered collection of Modules supporting address lookup.
type Map struct {
	modules []Module // sorted by Base, ascending
}

// Build enumerates the modules currently loaded in this process using
// the host OS facility (platform-specific enumerate()). If enumeration
// fails or is unsupported on this platform, Build returns an empty Map;
// every subsequent Locate then reports not-found, and the dispatcher
// silently drops the corresponding records.
func Build() *Map {
	mods := enumerate()
	sort.Slice(mods, func(i, j int) bool { return mods[i].Base < mods[j].Base })
	return &Map{modules: mods}
}

// Count returns the number of known modules.
func (m *Map) Count() int {
	return len(m.modules)
}

// Name returns the canonical short name of module i.
func (m *Map) Name(i int) string {
	return m.modules[i].Name
}

// Module returns a copy of the Module at index i.
func (m *Map) Module(i int) Module {
	return m.modules[i]
}

// Locate resolves an absolute instruction address to the module that
// contains it. ok is false if no known module covers addr.
func (m *Map) Locate(addr uint64) (moduleIndex int, offset uint64, ok bool) {
	// Binary search for the last module whose Base <= addr.
	i := sort.Search(len(m.modules), func(i int) bool {
		return m.modules[i].Base > addr
	})
	if i == 0 {
		return 0, 0, false
	}
	idx := i - 1
	mod := m.modules[idx]
	off := addr - mod.Base
	if off >= mod.Size {
		return 0, 0, false
	}
	return idx, off, true
}

// canonicalName derives the "base filename without extension" short
// name used to label a module's output file from a full path.
func canonicalName(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}
