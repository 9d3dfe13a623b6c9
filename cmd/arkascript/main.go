package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"arkascript/pkg/compiler"
)

func main() {
	in := flag.String("in", "", "Arkade Script source file (default: stdin)")
	out := flag.String("out", "", "artifact output file (default: stdout)")
	pretty := flag.Bool("pretty", false, "pretty-print the artifact JSON")
	verbose := flag.Bool("verbose", false, "print pipeline stage progress to stderr")
	version := flag.Bool("version", false, "print the compiler version and exit")
	compilerVersion := flag.String("compiler-version", "", "stamp the artifact's compiler.version with this semver string instead of the build's own")
	flag.Parse()

	if *version {
		fmt.Println(compiler.Version())
		return
	}

	var src []byte
	var err error
	if *in != "" {
		if *verbose {
			fmt.Fprintf(os.Stderr, "reading %s\n", *in)
		}
		src, err = os.ReadFile(*in)
	} else {
		if *verbose {
			fmt.Fprintln(os.Stderr, "reading source from stdin")
		}
		src, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "read error:", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Fprintln(os.Stderr, "compiling")
	}

	var artifact string
	switch {
	case *compilerVersion != "" && *pretty:
		artifact, err = compiler.CompilePrettyForVersion(string(src), *compilerVersion)
	case *compilerVersion != "":
		artifact, err = compiler.CompileForVersion(string(src), *compilerVersion)
	case *pretty:
		artifact, err = compiler.CompilePretty(string(src))
	default:
		artifact, err = compiler.Compile(string(src))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "compile error:", err)
		os.Exit(1)
	}

	if *out != "" {
		if *verbose {
			fmt.Fprintf(os.Stderr, "writing %s\n", *out)
		}
		if err := os.WriteFile(*out, []byte(artifact+"\n"), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "write error:", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println(artifact)
}
