// Command rotor evaluates rotation scripts.
//
//	rotor -e '(log (rotvec 1 0 0))'
//	rotor -f turn.rot
//	echo '(rotate (quat 0.5 0.5 0.5 0.5) (vec3 1 0 0))' | rotor
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/chazu/rotor/pkg/engine"
	"github.com/chazu/rotor/pkg/so3"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("rotor: ")
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command and returns its exit status: 0 on success, 1 on
// script or evaluation errors, 2 on usage errors.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rotor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		expr    = fs.String("e", "", "Evaluate the given expression.")
		path    = fs.String("f", "", "Evaluate the given script file.")
		timeout = fs.Duration("timeout", engine.EvalTimeout, "Abort evaluation after this long.")
		verbose = fs.Bool("v", false, "Log debug output to stderr.")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *expr != "" && *path != "" {
		fmt.Fprintln(stderr, "usage: rotor [-e expr | -f file] [-timeout 5s] [-v]")
		return 2
	}

	source, err := readSource(*expr, *path, stdin)
	if err != nil {
		log.Printf("read source: %v", err)
		return 1
	}

	opts := []engine.Option{engine.WithTimeout(*timeout)}
	if *verbose {
		logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		so3.SetLogger(logger)
		opts = append(opts, engine.WithLogger(logger))
	}
	eng := engine.NewEngine(opts...)

	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		log.Printf("evaluate: %v", err)
		return 1
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintln(stderr, e.Error())
		}
		return 1
	}
	if res.Output != "" {
		fmt.Fprintln(stdout, res.Output)
	}
	return 0
}

func readSource(expr, path string, stdin io.Reader) (string, error) {
	switch {
	case expr != "":
		return expr, nil
	case path != "":
		b, err := os.ReadFile(path)
		return string(b), err
	}
	b, err := io.ReadAll(stdin)
	return string(b), err
}
