package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/ripfuzz/cmplog/internal/cmplog/tracestore"
)

// showCommand implements `cmplogdump show <file.sancov>`: validate the
// magic header, then decode and print every 8-byte record. It always
// reads records as the 64-bit width: files written on a 32-bit host,
// whose 4-byte hashed records cannot be decoded back into
// (pc_offset, tag1, tag2), are not recognized as such and are still
// read and decoded in 8-byte units.
func showCommand(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: cmplogdump show <file.sancov>")
		os.Exit(1)
	}

	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "cmplogdump: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var hdr [8]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		fmt.Fprintf(os.Stderr, "cmplogdump: reading header: %v\n", err)
		os.Exit(1)
	}
	magic := binary.LittleEndian.Uint64(hdr[:])
	if magic != tracestore.Magic {
		fmt.Fprintf(os.Stderr, "cmplogdump: bad magic %#x, want %#x\n", magic, tracestore.Magic)
		os.Exit(1)
	}

	count := 0
	buf := make([]byte, 8)
	for {
		n, err := io.ReadFull(f, buf)
		if n == 8 {
			w := binary.LittleEndian.Uint64(buf)
			rec := tracestore.Record(w)
			pcOffset, tag1, tag2 := rec.Decode()
			fmt.Printf("pc_offset=%#x tag1=%#x tag2=%#x\n", pcOffset, tag1, tag2)
			count++
			continue
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "cmplogdump: reading record: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("%d records\n", count)
}
