package main

import (
	"debug/buildinfo"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

// provenanceCommand implements `cmplogdump provenance <binary> [go.mod]`:
// read the target binary's embedded Go build info and cross-check its
// reported module path against a local go.mod. Its reported version,
// unless empty or "(devel)", is checked for validity with module.Check;
// an invalid version is an error. The version is not compared with
// anything in go.mod.
//
// This is the read-side counterpart to the module-path resolution a
// build-time instrumentation tool performs when injecting an import:
// here the same golang.org/x/mod/modfile machinery verifies the
// provenance of an already-built binary instead.
func provenanceCommand(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: cmplogdump provenance <binary> [go.mod path]")
		os.Exit(1)
	}

	binPath := args[0]
	modPath := "go.mod"
	if len(args) >= 2 {
		modPath = args[1]
	}

	info, err := buildinfo.ReadFile(binPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cmplogdump: reading build info from %s: %v\n", binPath, err)
		os.Exit(1)
	}

	data, err := os.ReadFile(modPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cmplogdump: reading %s: %v\n", modPath, err)
		os.Exit(1)
	}
	mf, err := modfile.Parse(filepath.Base(modPath), data, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cmplogdump: parsing %s: %v\n", modPath, err)
		os.Exit(1)
	}
	if mf.Module == nil {
		fmt.Fprintf(os.Stderr, "cmplogdump: %s has no module directive\n", modPath)
		os.Exit(1)
	}

	fmt.Printf("binary module path:  %s\n", info.Main.Path)
	fmt.Printf("binary module vers.: %s\n", info.Main.Version)
	fmt.Printf("go.mod module path:  %s\n", mf.Module.Mod.Path)

	if info.Main.Path != mf.Module.Mod.Path {
		fmt.Fprintf(os.Stderr, "cmplogdump: MISMATCH: binary was built from %q, go.mod declares %q\n",
			info.Main.Path, mf.Module.Mod.Path)
		os.Exit(1)
	}

	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		if err := module.Check(info.Main.Path, info.Main.Version); err != nil {
			fmt.Fprintf(os.Stderr, "cmplogdump: binary reports an invalid module version: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("provenance OK")
}
