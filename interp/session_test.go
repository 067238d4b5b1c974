package interp

import (
	"bytes"
	"strings"
	"testing"
)

// runREPL feeds the given text to an interactive session and returns the
// combined prompt/program output, the diagnostic text and the machine.
func runREPL(t *testing.T, params Params, input string) (string, string, *Machine) {
	t.Helper()
	var out, diag bytes.Buffer
	r := NewREPL(params, strings.NewReader(input), &out, &diag)
	if err := r.Run(); err != nil {
		t.Fatalf("REPL failed: %v", err)
	}
	return out.String(), diag.String(), r.Machine()
}

// ---------------------------------------------------------------------------
// Interactive session tests
// ---------------------------------------------------------------------------

func TestREPLStatePersistsAcrossLines(t *testing.T) {
	out, _, m := runREPL(t, DefaultParams(), "+++\n.\n")
	if len(out) != 1 || out[0] != 3 {
		t.Errorf("output = %q, want byte 3", out)
	}
	if m.ProgLen() != 6 {
		t.Errorf("program length = %d, want 6 (both lines accumulated)", m.ProgLen())
	}
}

func TestREPLResetOperator(t *testing.T) {
	out, _, m := runREPL(t, DefaultParams(), "+++++\n@\n.\n")
	if out != "\x00" {
		t.Errorf("output = %q, want a single zero byte", out)
	}
	if m.tape[0] != 0 {
		t.Errorf("tape[0] = %d, want 0 after reset", m.tape[0])
	}
}

func TestREPLRejectsUnbalancedLine(t *testing.T) {
	// The bad line is rolled back; the session continues with prior state.
	out, _, m := runREPL(t, DefaultParams(), "++\n]\n+.\n")
	if len(out) != 1 || out[0] != 3 {
		t.Errorf("output = %q, want byte 3", out)
	}
	if m.ProgLen() != 6 {
		t.Errorf("program length = %d, want 6 (rejected line discarded)", m.ProgLen())
	}
}

func TestREPLLoopWithinLine(t *testing.T) {
	out, _, _ := runREPL(t, DefaultParams(), "+++++[-].\n")
	if out != "\x00" {
		t.Errorf("output = %q, want a single zero byte", out)
	}
}

func TestREPLCommaConsumesFollowingBytes(t *testing.T) {
	// ',' shares the session reader, so it consumes the bytes right after
	// the accepted line.
	out, _, _ := runREPL(t, DefaultParams(), ",.\nA\n")
	if !strings.HasPrefix(out, "A") {
		t.Errorf("output = %q, want leading %q", out, "A")
	}
}

func TestREPLExitCommand(t *testing.T) {
	out, _, _ := runREPL(t, DefaultParams(), "exit\n+++.\n")
	if out != "" {
		t.Errorf("output = %q, want none after exit", out)
	}
}

func TestREPLEndOfInputTerminates(t *testing.T) {
	out, _, _ := runREPL(t, DefaultParams(), "")
	if out != "" {
		t.Errorf("output = %q, want none", out)
	}
}

func TestREPLFinalLineWithoutNewline(t *testing.T) {
	out, _, _ := runREPL(t, DefaultParams(), "+++.")
	if len(out) != 1 || out[0] != 3 {
		t.Errorf("output = %q, want byte 3", out)
	}
}

func TestREPLDumpCommand(t *testing.T) {
	_, diag, _ := runREPL(t, DefaultParams(), "+++\n:dump\n")
	for _, want := range []string{"Tape pointer: 0", "Memory map:", "0: 3"} {
		if !strings.Contains(diag, want) {
			t.Errorf("diagnostics = %q, missing %q", diag, want)
		}
	}
}

func TestREPLResetCommand(t *testing.T) {
	out, _, m := runREPL(t, DefaultParams(), "+++++\n:reset\n.\n")
	if out != "\x00" {
		t.Errorf("output = %q, want a single zero byte", out)
	}
	if m.tpMax != 0 {
		t.Errorf("tpMax = %d, want 0 after reset", m.tpMax)
	}
}

func TestREPLHelpCommand(t *testing.T) {
	out, _, _ := runREPL(t, DefaultParams(), ":help\n")
	if !strings.Contains(out, ":save") || !strings.Contains(out, ":reset") {
		t.Errorf("help output = %q, missing commands", out)
	}
}

func TestREPLUnknownCommand(t *testing.T) {
	out, _, _ := runREPL(t, DefaultParams(), ":bogus\n")
	if !strings.Contains(out, "Unknown command") {
		t.Errorf("output = %q, want unknown-command message", out)
	}
}

func TestREPLPrompt(t *testing.T) {
	var out, diag bytes.Buffer
	r := NewREPL(DefaultParams(), strings.NewReader("+\n"), &out, &diag)
	r.SetPrompt(true)
	if err := r.Run(); err != nil {
		t.Fatalf("REPL failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "> ") {
		t.Errorf("output = %q, want leading prompt", out.String())
	}
}

// ---------------------------------------------------------------------------
// Run-once driver
// ---------------------------------------------------------------------------

func TestRunFileMissing(t *testing.T) {
	err := RunFile("/nonexistent/program.bf", DefaultParams())
	if err == nil {
		t.Fatal("RunFile should fail for a missing file")
	}
	if !strings.Contains(err.Error(), "cannot read") {
		t.Errorf("error = %v, want cannot-read wrapping", err)
	}
}
