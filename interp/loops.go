package interp

import "fmt"

// ---------------------------------------------------------------------------
// Loop resolution: pair every '[' with its ']' in a single scan
// ---------------------------------------------------------------------------

// Loop pairs a matched '[' with its ']'. Both ends carry full positions so
// that a taken jump can reassign the derived line/column as well as the
// instruction pointer.
type Loop struct {
	Start Position
	End   Position
}

// BracketKind identifies which side of a bracket pair was left unmatched.
type BracketKind int

const (
	OpenBracket BracketKind = iota
	CloseBracket
)

// UnbalancedBracketError reports a bracket with no partner. The whole
// program is rejected as a unit; no partial table is produced.
type UnbalancedBracketError struct {
	Kind BracketKind
	Pos  Position
}

func (e *UnbalancedBracketError) Error() string {
	if e.Kind == OpenBracket {
		return fmt.Sprintf("(%s): unmatched opening bracket '['", e.Pos)
	}
	return fmt.Sprintf("(%s): unmatched closing bracket ']'", e.Pos)
}

// LoopTable holds every matched bracket pair of a program buffer, plus an
// offset index mapping both ends of each pair back to its entry so jump
// resolution is a single array read.
type LoopTable struct {
	loops []Loop
	index []int // program offset -> entry number, -1 for non-bracket bytes
}

// Len returns the number of matched pairs.
func (t *LoopTable) Len() int {
	return len(t.loops)
}

// AtStart returns the loop whose opening bracket sits at offset, or nil.
func (t *LoopTable) AtStart(offset int) *Loop {
	if offset < 0 || offset >= len(t.index) || t.index[offset] < 0 {
		return nil
	}
	l := &t.loops[t.index[offset]]
	if l.Start.Offset != offset {
		return nil
	}
	return l
}

// AtEnd returns the loop whose closing bracket sits at offset, or nil.
func (t *LoopTable) AtEnd(offset int) *Loop {
	if offset < 0 || offset >= len(t.index) || t.index[offset] < 0 {
		return nil
	}
	l := &t.loops[t.index[offset]]
	if l.End.Offset != offset {
		return nil
	}
	return l
}

// ResolveLoops scans prog left to right and pairs every '[' with its
// matching ']', tracking line and column as it goes. A ']' with no pending
// '[' fails immediately at that position; a leftover '[' after the scan
// fails at the position of the innermost unclosed bracket. An empty buffer
// yields an empty table. Non-bracket bytes only affect line/column counting.
func ResolveLoops(prog []byte) (*LoopTable, error) {
	table := &LoopTable{
		index: make([]int, len(prog)),
	}
	for i := range table.index {
		table.index[i] = -1
	}

	var stack []Position
	line := 1
	col := 0

	for i, c := range prog {
		col++
		switch c {
		case '[':
			stack = append(stack, Position{Offset: i, Line: line, Col: col})
		case ']':
			if len(stack) == 0 {
				return nil, &UnbalancedBracketError{
					Kind: CloseBracket,
					Pos:  Position{Offset: i, Line: line, Col: col},
				}
			}
			start := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			table.loops = append(table.loops, Loop{
				Start: start,
				End:   Position{Offset: i, Line: line, Col: col},
			})
			entry := len(table.loops) - 1
			table.index[start.Offset] = entry
			table.index[i] = entry
		case '\n':
			line++
			col = 0
		}
	}

	if len(stack) > 0 {
		return nil, &UnbalancedBracketError{
			Kind: OpenBracket,
			Pos:  stack[len(stack)-1],
		}
	}

	return table, nil
}
