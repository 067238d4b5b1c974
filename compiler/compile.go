// Package compiler translates Brainfuck source into a C program and
// optionally hands the result to an external C toolchain.
package compiler

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("bfx.compiler")

const (
	// DefaultCC is the C toolchain invoked for binary output.
	DefaultCC = "gcc"

	// DefaultCCFlags are the flags passed to the toolchain.
	DefaultCCFlags = "-O3 -s -ffast-math"

	// head opens the emitted program: a fixed-size byte array and a
	// pointer variable. The tape size is substituted in.
	head = "#include <stdio.h>\nint main(void) {unsigned char t[%d];int p=0;"

	// tail closes the emitted program.
	tail = "return 0;}"
)

// Tokens maps each operator byte to the C fragment it compiles to. Bytes
// with no entry are ignored.
var Tokens = map[byte]string{
	'>': "p++;",
	'<': "p--;",
	'+': "t[p]++;",
	'-': "t[p]--;",
	'.': "putchar(t[p]);",
	',': "t[p]=getchar();",
	'[': "while(t[p]){",
	']': "}",
}

// Options configures a compilation.
type Options struct {
	InputPath  string // empty means stdin
	OutputPath string // empty means ./a.out or ./a.out.c
	SourceOnly bool   // emit C source instead of invoking the toolchain
	TapeSize   int
	CC         string
	CCFlags    string
}

// Generate streams src through the token table, writing a complete C
// program to w. Bracket balance is checked by depth counting; an unbalanced
// program is rejected without partial output semantics (the caller discards
// w on error).
func Generate(w io.Writer, src io.Reader, tapeSize int) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, head, tapeSize); err != nil {
		return err
	}

	depth := 0
	br := bufio.NewReader(src)
	for {
		c, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		switch c {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return fmt.Errorf("unbalanced brackets: unmatched ']'")
			}
		}
		if tok, ok := Tokens[c]; ok {
			if _, err := bw.WriteString(tok); err != nil {
				return err
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("unbalanced brackets: unmatched '['")
	}

	if _, err := bw.WriteString(tail); err != nil {
		return err
	}
	return bw.Flush()
}

// Compile reads Brainfuck source per opts and produces either a C source
// file or, by default, a binary built by the external toolchain.
func Compile(opts Options) error {
	if opts.TapeSize <= 0 {
		opts.TapeSize = 30000
	}
	if opts.CC == "" {
		opts.CC = DefaultCC
	}
	if opts.CCFlags == "" {
		opts.CCFlags = DefaultCCFlags
	}

	input := io.Reader(os.Stdin)
	if opts.InputPath != "" {
		f, err := os.Open(opts.InputPath)
		if err != nil {
			return fmt.Errorf("cannot open input file: %w", err)
		}
		defer f.Close()
		input = f
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		if opts.SourceOnly {
			outputPath = "./a.out.c"
		} else {
			outputPath = "./a.out"
		}
	}

	if opts.SourceOnly {
		return emit(outputPath, input, opts.TapeSize)
	}

	tmpDir, err := os.MkdirTemp("", "bfx-compile")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	cFile := filepath.Join(tmpDir, "bfx.c")
	if err := emit(cFile, input, opts.TapeSize); err != nil {
		return err
	}

	args := strings.Fields(opts.CCFlags)
	args = append(args, "-o", outputPath, cFile)
	log.Infof("invoking %s %s", opts.CC, strings.Join(args, " "))

	cmd := exec.Command(opts.CC, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("toolchain failed: %w", err)
	}
	return nil
}

// emit writes the generated C program to path, removing the file again if
// generation fails partway.
func emit(path string, src io.Reader, tapeSize int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	if err := Generate(f, src, tapeSize); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
