package interp

import "fmt"

// ---------------------------------------------------------------------------
// Diagnostics: the '#' snapshot
// ---------------------------------------------------------------------------

// Diagnose writes a snapshot of the machine to the diagnostic sink: the
// current source position, both pointers, and every tape cell from index 0
// through the high-water mark inclusive. Best effort; never fails and never
// mutates state.
func (m *Machine) Diagnose() {
	if m.diag == nil {
		return
	}
	fmt.Fprintf(m.diag, "Line: %s\nTape pointer: %d\nInstruction pointer: %d\n", m.pos, m.tp, m.ip)
	fmt.Fprintf(m.diag, "Memory map:\n")
	for i := 0; i <= m.tpMax && i < len(m.tape); i++ {
		fmt.Fprintf(m.diag, "%d: %d\n", i, m.tape[i])
	}
}
