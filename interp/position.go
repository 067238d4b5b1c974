package interp

import "fmt"

// ---------------------------------------------------------------------------
// Position: location of a byte in the program buffer
// ---------------------------------------------------------------------------

// Position locates a byte in the program buffer. Offset is a zero-based byte
// index. Line is 1-based. Col is 1-based and resets to 0 at every newline,
// so the byte following a newline is reported at column 1.
type Position struct {
	Offset int
	Line   int
	Col    int
}

// String renders the position as "line,col" for warnings and errors.
func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.Line, p.Col)
}
