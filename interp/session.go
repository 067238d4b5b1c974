package interp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("bfx.interp")

// ---------------------------------------------------------------------------
// Run-once session driver
// ---------------------------------------------------------------------------

// RunFile loads the program at path and executes it to completion against
// stdin/stdout, with warnings and diagnostics on stderr.
func RunFile(path string, params Params) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	m := NewMachine(params, bufio.NewReader(os.Stdin), out, os.Stderr)
	log.Debugf("loaded %s (%d bytes)", path, len(src))
	return m.RunProgram(src)
}

// RunProgram loads src into the machine and executes it from offset 0 until
// the instruction pointer runs past the end of the buffer.
func (m *Machine) RunProgram(src []byte) error {
	if err := m.Load(src); err != nil {
		return err
	}
	m.ip = 0
	m.ResetPosition()
	m.Run()
	return nil
}

// ---------------------------------------------------------------------------
// Interactive session driver
// ---------------------------------------------------------------------------

// REPL drives an interactive session. Each accepted line is appended to the
// machine's program buffer, the loop table is rebuilt from the full
// accumulated buffer, and execution resumes from the prior instruction
// pointer through the new end of the buffer. Tape and pointers persist
// across lines until an explicit reset.
type REPL struct {
	machine *Machine
	in      *bufio.Reader
	out     io.Writer
	prompt  bool
}

// NewREPL creates an interactive session. The reader serves both the driver
// (line input) and the machine's ',' operator, so a ',' consumes the bytes
// that follow the line the driver accepted.
func NewREPL(params Params, in io.Reader, out, diag io.Writer) *REPL {
	params.REPL = true
	r := &REPL{
		in:  bufio.NewReader(in),
		out: out,
	}
	r.machine = NewMachine(params, r.in, out, diag)
	return r
}

// Machine returns the session's machine.
func (r *REPL) Machine() *Machine {
	return r.machine
}

// SetPrompt enables or disables the input prompt. The prompt is off by
// default so piped input produces clean output.
func (r *REPL) SetPrompt(enabled bool) {
	r.prompt = enabled
}

// Run reads lines until end-of-input, which terminates the session cleanly.
// A line that makes the accumulated program unbalanced is rolled back and
// reported; the session continues.
func (r *REPL) Run() error {
	m := r.machine
	for {
		if r.prompt {
			fmt.Fprint(r.out, "> ")
		}

		line, err := r.in.ReadString('\n')
		if line == "" {
			if err == io.EOF || err == nil {
				return nil
			}
			return err
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "exit" || trimmed == "quit" {
			return nil
		}
		if strings.HasPrefix(trimmed, ":") {
			r.command(trimmed)
			continue
		}

		prev := m.ProgLen()
		m.Append([]byte(line))
		if rerr := m.Rebuild(); rerr != nil {
			log.Errorf("rejected input: %s", rerr)
			m.Truncate(prev)
			if rerr = m.Rebuild(); rerr != nil {
				return rerr
			}
			continue
		}

		if m.ip < 0 {
			m.ip = 0
		}
		m.ResetPosition()
		m.Run()
	}
}

// command handles the ':' meta-commands, which are intercepted before the
// line reaches the program buffer.
func (r *REPL) command(cmd string) {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case ":help", ":h", ":?":
		fmt.Fprintln(r.out, "REPL commands:")
		fmt.Fprintln(r.out, "  :help, :h, :?     Show this help")
		fmt.Fprintln(r.out, "  :reset            Clear program, tape and pointers")
		fmt.Fprintln(r.out, "  :dump             Print a diagnostic snapshot")
		fmt.Fprintln(r.out, "  :save <path>      Save the session image")
		fmt.Fprintln(r.out, "  :load <path>      Restore a session image")
		fmt.Fprintln(r.out, "  exit, quit        Leave the session")
	case ":reset":
		r.machine.Reset()
	case ":dump":
		r.machine.Diagnose()
	case ":save":
		if len(fields) != 2 {
			fmt.Fprintln(r.out, "usage: :save <path>")
			return
		}
		if err := r.machine.SaveImage(fields[1]); err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(r.out, "Saved session image to %s\n", fields[1])
	case ":load":
		if len(fields) != 2 {
			fmt.Fprintln(r.out, "usage: :load <path>")
			return
		}
		if err := r.machine.LoadImage(fields[1]); err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(r.out, "Restored session image from %s\n", fields[1])
	default:
		fmt.Fprintf(r.out, "Unknown command: %s (type :help for commands)\n", fields[0])
	}
}
