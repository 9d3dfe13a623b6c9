package compiler

import "github.com/Masterminds/semver/v3"

// compilerVersion is the compiler's own semantic version, bumped alongside
// the artifact schema (the "compiler" field in every serialized artifact).
const compilerVersion = "0.1.0"

// ValidateVersion parses v as semver and returns its canonical string, or a
// configuration error if it doesn't parse. It backs both Version() (which
// validates this build's own compilerVersion constant) and
// CompileForVersion/CompilePrettyForVersion, which validate a
// caller-supplied compiler-version override for the emitted artifact's
// "compiler" field — the artifact-request path a wallet or build pipeline
// uses to pin a reproducible compiler identity.
func ValidateVersion(v string) (string, error) {
	sv, err := semver.NewVersion(v)
	if err != nil {
		return "", errf(StageConfiguration, 0, "compiler version %q is not valid semver: %v", v, err)
	}
	return sv.String(), nil
}

// Version returns the compiler's canonical semantic version string. It
// panics on a malformed compilerVersion constant, which is a build-time
// defect rather than something a caller can recover from.
func Version() string {
	v, err := ValidateVersion(compilerVersion)
	if err != nil {
		panic("internal error: compilerVersion is not valid semver: " + err.Error())
	}
	return v
}
