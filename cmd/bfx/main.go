// bfx CLI - Brainfuck interpreter, REPL and compiler.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	"golang.org/x/term"

	"github.com/chazu/bfx/compiler"
	"github.com/chazu/bfx/config"
	"github.com/chazu/bfx/interp"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.3.0"

func main() {
	compile := flag.Bool("c", false, "Compile to a binary via the C toolchain")
	sourceOnly := flag.Bool("C", false, "Compile to C source only")
	debug := flag.Bool("d", false, "Enable '#' diagnostics")
	output := flag.String("o", "", "Compiler output path")
	repl := flag.Bool("r", false, "Start interactive REPL")
	noSpecial := flag.Bool("s", false, "Disable the special '#' and '@' instructions")
	tapeSize := flag.Int("t", interp.DefaultTapeSize, "Tape size in cells")
	eofBehavior := flag.String("e", "zero", "End-of-input behavior: zero, decrement or unchanged")
	separate := flag.Bool("i", false, "Treat everything after the first '!' in the file as input")
	showVersion := flag.Bool("v", false, "Print version and exit")
	verbose := flag.Bool("verbose", false, "Verbose logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-cCdirsv] [-e behavior] [-o output_file] [-t tape_size] [file]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  bfx hello.bf           # Run a program\n")
		fmt.Fprintf(os.Stderr, "  bfx -r                 # Start the REPL\n")
		fmt.Fprintf(os.Stderr, "  bfx -c -o hello hello.bf   # Compile to a binary\n")
		fmt.Fprintf(os.Stderr, "  bfx -C hello.bf        # Emit C source to ./a.out.c\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)

	if *showVersion {
		fmt.Fprintf(os.Stderr, "bfx %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg == nil {
		cfg = config.Default()
	}

	// Explicit flags override the configuration file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "d":
			cfg.Features.Debug = *debug
		case "s":
			cfg.Features.SpecialOps = !*noSpecial
		case "t":
			cfg.Machine.TapeSize = *tapeSize
		case "e":
			cfg.Machine.EOFBehavior = *eofBehavior
		case "i":
			cfg.Input.Separate = *separate
		}
	})

	params, err := cfg.Params()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var path string
	switch flag.NArg() {
	case 0:
	case 1:
		path = flag.Arg(0)
	default:
		flag.Usage()
		os.Exit(1)
	}

	if *compile || *sourceOnly {
		opts := compiler.Options{
			InputPath:  path,
			OutputPath: *output,
			SourceOnly: *sourceOnly,
			TapeSize:   params.TapeSize,
			CC:         cfg.Compiler.CC,
			CCFlags:    cfg.Compiler.Flags,
		}
		if err := compiler.Compile(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	switch {
	case !*repl && path != "":
		if err := interp.RunFile(path, params); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case *repl && path == "":
		r := interp.NewREPL(params, os.Stdin, os.Stdout, os.Stderr)
		r.SetPrompt(term.IsTerminal(int(os.Stdin.Fd())))
		if err := r.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		flag.Usage()
		os.Exit(1)
	}
}
