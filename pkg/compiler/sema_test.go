package compiler

import (
	"strings"
	"testing"
)

func analyzeSrc(t *testing.T, src string) (*Contract, *Sema) {
	t.Helper()
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	c, err := ParseContract(tokens, src)
	if err != nil {
		t.Fatalf("ParseContract failed: %v", err)
	}
	sm, err := Analyze(c)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	return c, sm
}

func analyzeSrcErr(t *testing.T, src string) error {
	t.Helper()
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	c, err := ParseContract(tokens, src)
	if err != nil {
		t.Fatalf("ParseContract failed: %v", err)
	}
	_, err = Analyze(c)
	return err
}

func TestAnalyzeRequiresExitOption(t *testing.T) {
	src := `
	contract C(pk: pubkey) {
		function f(sig: signature) {
			require(checkSig(pk, sig));
		}
	}
	`
	if err := analyzeSrcErr(t, src); err == nil {
		t.Fatal("expected an error when options.exit is missing")
	}
}

func TestAnalyzeServerOptionMustNamePubkeyParam(t *testing.T) {
	src := `
	options { exit = 144; server = notThere; }
	contract C(pk: pubkey) {
		function f(sig: signature) {
			require(checkSig(pk, sig));
		}
	}
	`
	if err := analyzeSrcErr(t, src); err == nil {
		t.Fatal("expected an error when options.server names a non-existent parameter")
	}

	src2 := `
	options { exit = 144; server = amount; }
	contract C(amount: int) {
		function f(sig: signature) {
			require(amount > 0);
		}
	}
	`
	if err := analyzeSrcErr(t, src2); err == nil {
		t.Fatal("expected an error when options.server names a non-pubkey parameter")
	}
}

func TestAnalyzeDetectsUndefinedIdentifier(t *testing.T) {
	src := `
	options { exit = 144; }
	contract C(pk: pubkey) {
		function f(sig: signature) {
			require(checkSig(missing, sig));
		}
	}
	`
	if err := analyzeSrcErr(t, src); err == nil {
		t.Fatal("expected an undefined-identifier error")
	}
}

func TestAnalyzeDuplicateNamesRejected(t *testing.T) {
	src := `
	options { exit = 144; }
	contract C(pk: pubkey, pk: pubkey) {
		function f() { require(true); }
	}
	`
	if err := analyzeSrcErr(t, src); err == nil {
		t.Fatal("expected an error for duplicate constructor parameter names")
	}

	src2 := `
	options { exit = 144; }
	contract C() {
		function f() { require(true); }
		function f() { require(false); }
	}
	`
	if err := analyzeSrcErr(t, src2); err == nil {
		t.Fatal("expected an error for duplicate function names")
	}
}

func TestAnalyzeCollectsAssetSeeds(t *testing.T) {
	src := `
	options { exit = 144; }
	contract C(seed: bytes32, other: bytes32) {
		function f() {
			require(tx.inputs[0].assets.lookup(seed) > 0);
		}
	}
	`
	_, sm := analyzeSrc(t, src)
	if !sm.AssetSeeds["seed"] {
		t.Error("expected 'seed' to be detected as an asset-id seed")
	}
	if sm.AssetSeeds["other"] {
		t.Error("'other' is never used in lookup/find and should not be a seed")
	}
}

func TestAnalyzeInlinesInternalFunctionCalls(t *testing.T) {
	src := `
	options { exit = 144; }
	contract C(pk: pubkey) {
		internal function assertPositive(x: int) {
			require(x > 0);
		}
		function f(amount: int) {
			assertPositive(amount);
		}
	}
	`
	c, _ := analyzeSrc(t, src)
	if len(c.Functions) != 1 {
		t.Fatalf("internal function should be dropped from c.Functions, got %d", len(c.Functions))
	}
	if c.Functions[0].Name != "f" {
		t.Fatalf("remaining function = %q, want f", c.Functions[0].Name)
	}
	found := false
	for _, stmt := range c.Functions[0].Body {
		if let, ok := stmt.(*LetStmt); ok && strings.Contains(let.Name, "__inline") {
			found = true
		}
	}
	if !found {
		t.Error("expected an alpha-renamed let-binding introduced by inlining")
	}
}

func TestAnalyzeUnrollsForLoopOverArrayParam(t *testing.T) {
	src := `
	options { exit = 144; }
	contract C(keys: pubkey[3]) {
		function f(sigs: signature[3]) {
			for (i, k) in keys {
				require(checkSig(k, sigs[i]));
			}
		}
	}
	`
	c, _ := analyzeSrc(t, src)
	body := c.Functions[0].Body
	if len(body) != 3 {
		t.Fatalf("unrolled body has %d statements, want 3", len(body))
	}
	for _, stmt := range body {
		if _, ok := stmt.(*ForStmt); ok {
			t.Fatal("a ForStmt survived unrolling")
		}
	}
}

func TestAnalyzeUnrollingAlphaRenamesLoopLocalLet(t *testing.T) {
	src := `
	options { exit = 144; }
	contract C(keys: pubkey[2]) {
		function f(sigs: signature[2]) {
			for (i, k) in keys {
				let ok = checkSig(k, sigs[i]);
				require(ok);
			}
		}
	}
	`
	c, _ := analyzeSrc(t, src)
	body := c.Functions[0].Body
	if len(body) != 4 {
		t.Fatalf("unrolled body has %d statements, want 4 (let+require per copy)", len(body))
	}
	names := map[string]bool{}
	for _, stmt := range body {
		let, ok := stmt.(*LetStmt)
		if !ok {
			continue
		}
		if !strings.Contains(let.Name, "__unroll") {
			t.Errorf("let name %q was not alpha-renamed per unrolled copy", let.Name)
		}
		names[let.Name] = true
	}
	if len(names) != 2 {
		t.Errorf("both unrolled copies declared the same name, want two distinct names, got %v", names)
	}
}

func TestAnalyzeForOverAssetGroupsRequiresNumGroups(t *testing.T) {
	src := `
	options { exit = 144; }
	contract C() {
		function f() {
			for (i, g) in tx.assetGroups {
				require(i >= 0);
			}
		}
	}
	`
	if err := analyzeSrcErr(t, src); err == nil {
		t.Fatal("expected an error: for over tx.assetGroups without options.numGroups")
	}
}

func TestAnalyzeForOverAssetGroupsUnrollsWithNumGroups(t *testing.T) {
	src := `
	options { exit = 144; numGroups = 2; }
	contract C() {
		function f() {
			for (i, g) in tx.assetGroups {
				require(i >= 0);
			}
		}
	}
	`
	c, _ := analyzeSrc(t, src)
	if len(c.Functions[0].Body) != 2 {
		t.Fatalf("unrolled body has %d statements, want 2", len(c.Functions[0].Body))
	}
}

func TestAnalyzeRejectsAssignToConstructorParam(t *testing.T) {
	src := `
	options { exit = 144; }
	contract C(amount: int) {
		function f() {
			amount = 5;
		}
	}
	`
	if err := analyzeSrcErr(t, src); err == nil {
		t.Fatal("expected an error: assignment to a constructor parameter")
	}
}

func TestAnalyzeRejectsAssignToUndeclaredName(t *testing.T) {
	src := `
	options { exit = 144; }
	contract C() {
		function f() {
			missing = 5;
		}
	}
	`
	if err := analyzeSrcErr(t, src); err == nil {
		t.Fatal("expected an error: assignment to an undeclared variable")
	}
}
