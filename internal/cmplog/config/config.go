// Package config parses the environment-variable surface that controls
// the cmplog runtime: whether instrumentation is enabled at all, which
// comparison families are traced, and where coverage files are written.
//
// The tokenizer for ASAN_OPTIONS follows the same shape as the Go
// runtime's own GODEBUG parser (split on ',' at top level, on '=' within
// a field): see runtime.parsedebugvars in the Go source tree.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config is the immutable configuration derived from the environment at
// first dispatcher use. Zero value is NOT a valid default; use Default.
type Config struct {
	// Enabled is the master switch. Default: false.
	Enabled bool

	// TraceNonconstCmp enables tracing of comparisons where neither
	// operand is constant. Default: false.
	TraceNonconstCmp bool

	// TraceMemoryCmp enables tracing of memcmp/strcmp-family hooks.
	// Default: true.
	TraceMemoryCmp bool

	// OutputDir is the directory .sancov files are written to.
	// Default: "."
	OutputDir string
}

// Default returns the configuration in force before any environment
// variable is consulted.
func Default() Config {
	return Config{
		Enabled:          false,
		TraceNonconstCmp: false,
		TraceMemoryCmp:   true,
		OutputDir:        ".",
	}
}

// Lookuper is satisfied by os.LookupEnv. Parse takes one so it remains a
// pure function of its input, independent of process environment state.
type Lookuper func(key string) (string, bool)

// Parse reads ASAN_OPTIONS, TRACE_NONCONST_CMP, and TRACE_MEMORY_CMP
// through lookup and returns the resulting Config.
//
// ASAN_OPTIONS is a comma-separated list of key=value pairs. Recognized
// keys are "coverage" (non-zero integer enables the library) and
// "coverage_dir" (output directory). Unknown keys are ignored. A field
// with no '=' is a syntax error and is reported as such — the original
// C++ tokenizer treats an unterminated quoted value the same way; since
// this tokenizer does not support quoting, a bare '='-less field is the
// equivalent malformed-input case.
//
// TRACE_MEMORY_CMP has inverted polarity: its presence with a value that
// reads as zero (including a non-numeric one, see atoi) disables
// memory-compare tracing; any non-zero integer value, or the variable
// being absent, leaves the default of "on" in force.
func Parse(lookup Lookuper) (Config, error) {
	cfg := Default()

	if raw, ok := lookup("ASAN_OPTIONS"); ok {
		if err := parseAsanOptions(raw, &cfg); err != nil {
			return Config{}, err
		}
	}

	if raw, ok := lookup("TRACE_NONCONST_CMP"); ok {
		if atoi(raw) != 0 {
			cfg.TraceNonconstCmp = true
		}
	}

	if raw, ok := lookup("TRACE_MEMORY_CMP"); ok {
		if atoi(raw) == 0 {
			cfg.TraceMemoryCmp = false
		}
	}

	return cfg, nil
}

func parseAsanOptions(raw string, cfg *Config) error {
	for _, field := range splitTopLevel(raw) {
		if field == "" {
			continue
		}
		key, value, ok := cutOnce(field, "=")
		if !ok {
			return fmt.Errorf("cmplog: malformed ASAN_OPTIONS field %q: missing '='", field)
		}
		switch key {
		case "coverage":
			cfg.Enabled = atoi(value) != 0
		case "coverage_dir":
			cfg.OutputDir = value
		default:
			// Unknown keys are a normal part of ASAN_OPTIONS (most of
			// them configure AddressSanitizer itself); ignore silently.
		}
	}
	return nil
}

// splitTopLevel splits on ',' without trimming whitespace, robust to
// empty input and trailing/leading commas.
func splitTopLevel(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// cutOnce splits field on the first occurrence of sep.
func cutOnce(field, sep string) (before, after string, found bool) {
	i := strings.Index(field, sep)
	if i < 0 {
		return field, "", false
	}
	return field[:i], field[i+1:], true
}

// atoi parses the whole string, after trimming surrounding whitespace,
// as a decimal integer, and returns 0 on any parse failure rather than
// propagating an error. Unlike C's atoi(), a leading integer followed by
// other characters ("12abc") also yields 0. Both TRACE_* variables and
// the "coverage" key follow this permissive convention.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
