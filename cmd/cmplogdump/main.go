// Command cmplogdump decodes and prints the .sancov coverage files this
// repository's runtime produces, and can cross-check the build
// provenance of an instrumented binary against a local go.mod.
//
// Usage:
//
//	cmplogdump show <file.sancov>
//	cmplogdump provenance <binary> [go.mod path]
//
// This is a read-side consumer tool for the library's own output
// format; it does not perform build-time compiler integration, which
// stays out of scope for the runtime itself.
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "show":
		showCommand(os.Args[2:])
	case "provenance":
		provenanceCommand(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("cmplogdump version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`cmplogdump - inspect cmplog coverage output

USAGE:
    cmplogdump <command> [arguments]

COMMANDS:
    show <file.sancov>              Decode and print a coverage file
    provenance <binary> [go.mod]    Cross-check a binary's build info against a go.mod
    version                         Show version information
    help                            Show this help message

EXAMPLES:
    cmplogdump show cmp.myapp.12345.sancov
    cmplogdump provenance ./myapp
`)
}
