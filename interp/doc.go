// Package interp implements the bfx execution engine.
//
// This package contains:
//   - Stack-based bracket resolution with an offset-indexed jump table
//   - The tape machine executing the operator set one byte at a time
//   - Session drivers for one-shot file execution and the interactive REPL
//   - Diagnostic snapshots and CBOR session images
package interp
