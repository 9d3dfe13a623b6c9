package compiler

// Compile runs the full pipeline over a single Arkade Script source file:
// lex, parse, semantic analysis (scope resolution, asset-id decomposition,
// internal-function inlining, loop unrolling), constant folding, dual-
// variant code generation per function, and JSON artifact serialization.
// It is a pure function — no filesystem or network access, no state kept
// across calls — matching the teacher's compile.go pipeline shape, minus
// the teacher's Preprocess/Assemble steps: Arkade Script has no #include
// preprocessor, and the target is a textual opcode list, never bytecode.
func Compile(source string) (string, error) {
	return compile(source, false, Version())
}

// CompilePretty is Compile with pretty-printed JSON output, the shape
// cmd/arkascript's -pretty flag exposes.
func CompilePretty(source string) (string, error) {
	return compile(source, true, Version())
}

// CompileForVersion is Compile, but tags the emitted artifact's "compiler"
// field with an externally supplied version string instead of this build's
// own compilerVersion — the artifact-request path a build pipeline uses to
// pin a reproducible compiler identity across builds. The string is parsed
// as semver; an unparseable one is a configuration error, not this build's
// own panic-on-malformed-constant path, since here it comes from outside
// the binary.
func CompileForVersion(source, version string) (string, error) {
	v, err := ValidateVersion(version)
	if err != nil {
		return "", err
	}
	return compile(source, false, v)
}

// CompilePrettyForVersion is CompileForVersion with pretty-printed JSON
// output.
func CompilePrettyForVersion(source, version string) (string, error) {
	v, err := ValidateVersion(version)
	if err != nil {
		return "", err
	}
	return compile(source, true, v)
}

func compile(source string, pretty bool, version string) (string, error) {
	tokens, err := Lex(source)
	if err != nil {
		return "", err
	}

	contract, err := ParseContract(tokens, source)
	if err != nil {
		return "", err
	}

	sema, err := Analyze(contract)
	if err != nil {
		return "", err
	}

	optimizeFunctions(contract)

	variants := make([][]*FunctionArtifact, 0, len(contract.Functions))
	for _, fn := range contract.Functions {
		fa, err := GenerateFunction(contract, sema, fn)
		if err != nil {
			return "", err
		}
		variants = append(variants, fa)
	}

	artifact := BuildArtifact(contract, sema, source, variants, version)
	out, err := Marshal(artifact, pretty)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
