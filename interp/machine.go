package interp

import (
	"bytes"
	"fmt"
	"io"
)

// ---------------------------------------------------------------------------
// Session parameters
// ---------------------------------------------------------------------------

const (
	// DefaultTapeSize is the number of cells allocated when no tape size
	// is configured.
	DefaultTapeSize = 30000

	// DefaultInputSeed is the initial capacity of the REPL program buffer.
	// The buffer doubles whenever an appended line exceeds it.
	DefaultInputSeed = 1024
)

// EOFBehavior selects what ',' does to the current cell once the input
// source is exhausted. End-of-input is sticky: after the first EOF no
// further read is attempted and the policy applies to every later ','.
type EOFBehavior int

const (
	EOFZero EOFBehavior = iota
	EOFDecrement
	EOFUnchanged
)

// ParseEOFBehavior maps a policy name to its EOFBehavior.
func ParseEOFBehavior(name string) (EOFBehavior, error) {
	switch name {
	case "zero":
		return EOFZero, nil
	case "decrement":
		return EOFDecrement, nil
	case "unchanged":
		return EOFUnchanged, nil
	}
	return EOFZero, fmt.Errorf("unknown end-of-input behavior %q (want zero, decrement or unchanged)", name)
}

// Params is the immutable per-session configuration.
type Params struct {
	TapeSize      int
	InputSeed     int
	EOF           EOFBehavior
	Debug         bool
	REPL          bool
	SpecialOps    bool
	SeparateInput bool
}

// DefaultParams returns the stock configuration: 30000 cells, 1024-byte
// input seed, zero-on-EOF, special instructions enabled.
func DefaultParams() Params {
	return Params{
		TapeSize:   DefaultTapeSize,
		InputSeed:  DefaultInputSeed,
		EOF:        EOFZero,
		SpecialOps: true,
	}
}

// ---------------------------------------------------------------------------
// Machine: the tape machine executing one operator per step
// ---------------------------------------------------------------------------

// Machine holds the complete execution state of one session: the program
// buffer, the tape, both pointers, the derived source position and the
// resolved loop table. It is owned by a single session and never shared.
type Machine struct {
	params Params

	prog  []byte
	tape  []byte
	loops *LoopTable

	ip    int // instruction pointer, index into prog
	tp    int // tape pointer, clamped into [0, len(tape))
	tpMax int // high-water mark, diagnostics only
	pos   Position

	receiving bool // false once end-of-input has been reached

	in   io.ByteReader
	out  io.Writer
	diag io.Writer
}

// NewMachine creates a machine with a zeroed tape and an empty program
// buffer. in supplies bytes for ','; out receives '.' output; diag receives
// warnings and '#' snapshots.
func NewMachine(params Params, in io.ByteReader, out, diag io.Writer) *Machine {
	if params.TapeSize <= 0 {
		params.TapeSize = DefaultTapeSize
	}
	if params.InputSeed <= 0 {
		params.InputSeed = DefaultInputSeed
	}
	return &Machine{
		params:    params,
		tape:      make([]byte, params.TapeSize),
		loops:     &LoopTable{},
		pos:       Position{Line: 1, Col: 0},
		receiving: true,
		in:        in,
		out:       out,
		diag:      diag,
	}
}

// Params returns the session parameters.
func (m *Machine) Params() Params {
	return m.params
}

// ProgLen returns the current program buffer length.
func (m *Machine) ProgLen() int {
	return len(m.prog)
}

// Load replaces the program buffer with src and rebuilds the loop table.
// In separated-input mode everything after the first '!' becomes the input
// stream for ',' and the program is truncated at the separator.
func (m *Machine) Load(src []byte) error {
	if m.params.SeparateInput {
		if i := bytes.IndexByte(src, '!'); i >= 0 {
			m.in = bytes.NewReader(src[i+1:])
			src = src[:i]
		}
	}
	m.prog = m.prog[:0]
	m.Append(src)
	return m.Rebuild()
}

// Append grows the program buffer by the given bytes. Capacity grows by
// doubling, starting from the configured input seed.
func (m *Machine) Append(b []byte) {
	need := len(m.prog) + len(b)
	if need > cap(m.prog) {
		newCap := cap(m.prog)
		if newCap == 0 {
			newCap = m.params.InputSeed
		}
		for newCap < need {
			newCap *= 2
		}
		grown := make([]byte, len(m.prog), newCap)
		copy(grown, m.prog)
		m.prog = grown
	}
	m.prog = append(m.prog, b...)
}

// Truncate cuts the program buffer back to n bytes. Used by the REPL to
// roll back a rejected line.
func (m *Machine) Truncate(n int) {
	if n >= 0 && n <= len(m.prog) {
		m.prog = m.prog[:n]
	}
}

// Rebuild discards the loop table and resolves it again from the full
// program buffer.
func (m *Machine) Rebuild() error {
	table, err := ResolveLoops(m.prog)
	if err != nil {
		return err
	}
	m.loops = table
	return nil
}

// ResetPosition rewinds the derived line/column to the start of an
// execution burst without touching any other state.
func (m *Machine) ResetPosition() {
	m.pos = Position{Line: 1, Col: 0}
}

// Reset clears the program buffer, the tape and all pointers back to their
// initial state. The tape is zeroed in place, not reallocated. The
// instruction pointer is left one short of zero so the enclosing run loop's
// unconditional advance lands the next step at offset 0.
func (m *Machine) Reset() {
	m.prog = m.prog[:0]
	for i := range m.tape {
		m.tape[i] = 0
	}
	m.loops = &LoopTable{}
	m.ip = -1
	m.tp = 0
	m.tpMax = 0
	m.pos = Position{Line: 1, Col: 0}
}

// Run executes from the current instruction pointer until it passes the end
// of the program buffer. A taken jump lands on the matching bracket, which
// the advance here then consumes as the next step's current character.
func (m *Machine) Run() {
	for ; m.ip < len(m.prog); m.ip++ {
		m.step()
	}
}

// step executes exactly the operator under the instruction pointer.
// Unrecognized bytes only advance the column counter.
func (m *Machine) step() {
	m.pos.Col++
	switch m.prog[m.ip] {
	case '+':
		m.tape[m.tp]++
	case '-':
		m.tape[m.tp]--
	case '>':
		m.tp++
		if m.tp >= len(m.tape) {
			fmt.Fprintf(m.diag, "Warning (%s): Tape pointer overflow. Tape pointer set to zero.\n", m.pos)
			m.tp = 0
		} else if m.tp > m.tpMax {
			m.tpMax = m.tp
		}
	case '<':
		m.tp--
		if m.tp < 0 {
			fmt.Fprintf(m.diag, "Warning (%s): Tape pointer underflow. Tape pointer set to zero.\n", m.pos)
			m.tp = 0
		}
	case ',':
		m.read()
	case '.':
		m.write(m.tape[m.tp])
	case '[':
		if m.tape[m.tp] == 0 {
			if l := m.loops.AtStart(m.ip); l != nil {
				m.ip = l.End.Offset
				m.pos.Line = l.End.Line
				m.pos.Col = l.End.Col
			}
		}
	case ']':
		if m.tape[m.tp] != 0 {
			if l := m.loops.AtEnd(m.ip); l != nil {
				m.ip = l.Start.Offset
				m.pos.Line = l.Start.Line
				m.pos.Col = l.Start.Col
			}
		}
	case '#':
		if m.params.Debug && m.params.SpecialOps {
			m.Diagnose()
		}
	case '@':
		if m.params.REPL && m.params.SpecialOps {
			m.Reset()
		}
	case '\n':
		m.pos.Line++
		m.pos.Col = 0
	}
}

// read services a ',' operator. Once end-of-input has been reached no
// further read is attempted; the configured policy decides what happens to
// the current cell instead.
func (m *Machine) read() {
	if m.receiving && m.in != nil {
		c, err := m.in.ReadByte()
		if err == nil {
			m.tape[m.tp] = c
			return
		}
		m.receiving = false
	} else if m.receiving {
		m.receiving = false
	}

	switch m.params.EOF {
	case EOFZero:
		m.tape[m.tp] = 0
	case EOFDecrement:
		m.tape[m.tp]--
	case EOFUnchanged:
		// leave the cell alone
	}
}

// write emits one byte to the output sink.
func (m *Machine) write(c byte) {
	if m.out == nil {
		return
	}
	if bw, ok := m.out.(io.ByteWriter); ok {
		bw.WriteByte(c)
		return
	}
	m.out.Write([]byte{c})
}
