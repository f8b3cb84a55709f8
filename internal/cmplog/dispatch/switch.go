package dispatch

// TraceSwitch implements the switch-statement hook. cases follows the
// SanitizerCoverage layout: cases[0] is the case count, cases[1] the
// declared bit width of the switch operand (unused here — case
// constants are always widened to 64 bits before deriving arg_length,
// matching the original instrumentation's behavior of treating the
// Cases array as uint64_t regardless of the switch's native width),
// and cases[2:] the case constants in declaration order.
//
// cases is mutated in place: when no case constant is wide enough to
// be interesting, cases[0] is zeroed so future hits on this switch
// short-circuit before the lock is ever touched.
func TraceSwitch(value uint64, cases []uint64) {
	if len(cases) < 2 || cases[0] == 0 {
		return
	}

	mu.Lock()
	defer mu.Unlock()
	ensureInitLocked()
	if !cfg.Enabled {
		return
	}

	pc := capturePC(1)
	count := cases[0]
	wideFound := false
	for i := uint64(0); i < count; i++ {
		idx := 2 + i
		if idx >= uint64(len(cases)) {
			break
		}
		c := cases[idx]
		if c < 256 {
			continue
		}
		wideFound = true
		argLength := byteSpan(c, 64)
		switchCase := uint8(i + 1)
		emitIntRecordsWidth(pc, value, c, argLength, switchCase)
	}

	if !wideFound {
		cases[0] = 0
	}
}
