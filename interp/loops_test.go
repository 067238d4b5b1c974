package interp

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// Loop resolution tests
// ---------------------------------------------------------------------------

func TestResolveEmpty(t *testing.T) {
	table, err := ResolveLoops(nil)
	if err != nil {
		t.Fatalf("ResolveLoops(empty) failed: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", table.Len())
	}
}

func TestResolveSinglePair(t *testing.T) {
	table, err := ResolveLoops([]byte("[]"))
	if err != nil {
		t.Fatalf("ResolveLoops failed: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", table.Len())
	}

	l := table.AtStart(0)
	if l == nil {
		t.Fatal("AtStart(0) = nil, want entry")
	}
	if l.Start != (Position{Offset: 0, Line: 1, Col: 1}) {
		t.Errorf("Start = %+v, want offset 0 at 1,1", l.Start)
	}
	if l.End != (Position{Offset: 1, Line: 1, Col: 2}) {
		t.Errorf("End = %+v, want offset 1 at 1,2", l.End)
	}
	if table.AtEnd(1) != l {
		t.Error("AtEnd(1) should return the same entry as AtStart(0)")
	}
}

func TestResolveNested(t *testing.T) {
	table, err := ResolveLoops([]byte("[[][]]"))
	if err != nil {
		t.Fatalf("ResolveLoops failed: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", table.Len())
	}

	pairs := []struct{ start, end int }{
		{0, 5},
		{1, 2},
		{3, 4},
	}
	for _, p := range pairs {
		l := table.AtStart(p.start)
		if l == nil {
			t.Errorf("AtStart(%d) = nil, want entry", p.start)
			continue
		}
		if l.End.Offset != p.end {
			t.Errorf("AtStart(%d).End.Offset = %d, want %d", p.start, l.End.Offset, p.end)
		}
	}
}

func TestResolveUnmatchedClose(t *testing.T) {
	_, err := ResolveLoops([]byte("]["))
	var ub *UnbalancedBracketError
	if !errors.As(err, &ub) {
		t.Fatalf("error = %v, want UnbalancedBracketError", err)
	}
	if ub.Kind != CloseBracket {
		t.Errorf("Kind = %v, want CloseBracket", ub.Kind)
	}
	if ub.Pos != (Position{Offset: 0, Line: 1, Col: 1}) {
		t.Errorf("Pos = %+v, want offset 0 at 1,1", ub.Pos)
	}
}

func TestResolveUnmatchedOpen(t *testing.T) {
	_, err := ResolveLoops([]byte("["))
	var ub *UnbalancedBracketError
	if !errors.As(err, &ub) {
		t.Fatalf("error = %v, want UnbalancedBracketError", err)
	}
	if ub.Kind != OpenBracket {
		t.Errorf("Kind = %v, want OpenBracket", ub.Kind)
	}
	if ub.Pos.Offset != 0 {
		t.Errorf("Pos.Offset = %d, want 0", ub.Pos.Offset)
	}
}

func TestResolveReportsInnermostUnclosed(t *testing.T) {
	_, err := ResolveLoops([]byte("[["))
	var ub *UnbalancedBracketError
	if !errors.As(err, &ub) {
		t.Fatalf("error = %v, want UnbalancedBracketError", err)
	}
	if ub.Pos.Offset != 1 {
		t.Errorf("Pos.Offset = %d, want 1 (innermost unclosed)", ub.Pos.Offset)
	}

	// Matched inner pair leaves the outer bracket as the offender.
	_, err = ResolveLoops([]byte("[[]"))
	if !errors.As(err, &ub) {
		t.Fatalf("error = %v, want UnbalancedBracketError", err)
	}
	if ub.Pos.Offset != 0 {
		t.Errorf("Pos.Offset = %d, want 0", ub.Pos.Offset)
	}
}

func TestResolveTracksLineColumn(t *testing.T) {
	table, err := ResolveLoops([]byte("+\n[]"))
	if err != nil {
		t.Fatalf("ResolveLoops failed: %v", err)
	}
	l := table.AtStart(2)
	if l == nil {
		t.Fatal("AtStart(2) = nil, want entry")
	}
	if l.Start.Line != 2 || l.Start.Col != 1 {
		t.Errorf("Start at %d,%d, want 2,1", l.Start.Line, l.Start.Col)
	}
	if l.End.Line != 2 || l.End.Col != 2 {
		t.Errorf("End at %d,%d, want 2,2", l.End.Line, l.End.Col)
	}
}

func TestResolveIgnoresOtherBytes(t *testing.T) {
	table, err := ResolveLoops([]byte("a[b]c"))
	if err != nil {
		t.Fatalf("ResolveLoops failed: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", table.Len())
	}
	l := table.AtStart(1)
	if l == nil || l.End.Offset != 3 {
		t.Errorf("AtStart(1) = %+v, want pair (1,3)", l)
	}
}

func TestLookupMisses(t *testing.T) {
	table, err := ResolveLoops([]byte("+[]"))
	if err != nil {
		t.Fatalf("ResolveLoops failed: %v", err)
	}
	if table.AtStart(0) != nil {
		t.Error("AtStart(0) on '+' should be nil")
	}
	if table.AtStart(2) != nil {
		t.Error("AtStart on a ']' offset should be nil")
	}
	if table.AtEnd(1) != nil {
		t.Error("AtEnd on a '[' offset should be nil")
	}
	if table.AtStart(-1) != nil || table.AtStart(99) != nil {
		t.Error("out-of-range lookups should be nil")
	}
}
