// Package diag centralizes the library's two diagnostic surfaces: the
// fatal-error path (configuration errors, dump-time I/O failures) and
// the one-line-per-file summary the dumper writes at exit.
//
// Neither is routed through a logging framework: the summary line
// format ("CmpSanitizerCoverage: <path>: <n> PCs written") is part of
// this library's external contract, and wrapping it in a
// structured-logging prefix would break consumers that scrape it.
package diag

import (
	"fmt"
	"os"
)

// exit is overridden in tests so Fatalf's control-flow effect can be
// observed without actually terminating the test binary.
var exit = os.Exit

// Fatalf writes a diagnostic message to stderr, prefixed the same way
// the host-visible output is ("cmplog: fatal: "), and then terminates
// the process with a non-zero exit status. Used for the two fatal
// error kinds the library recognizes: malformed configuration and
// dump-time I/O failure.
func Fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "cmplog: fatal: "+format+"\n", args...)
	exit(1)
}

// DumpSummary writes the one-line-per-file diagnostic emitted after a
// module's coverage file has been written, in the exact format
// consumers expect.
func DumpSummary(path string, count int) {
	fmt.Fprintf(os.Stderr, "CmpSanitizerCoverage: %s: %d PCs written\n", path, count)
}
