package compiler

import (
	"testing"

	"arkascript/pkg/asm"
)

func TestIntrospectBasicTxFields(t *testing.T) {
	src := `
	options { exit = 144; }
	contract C() {
		function f() {
			require(tx.time >= 0);
			require(tx.inputs.length > 0);
			require(tx.outputs.length > 0);
		}
	}
	`
	fa := genFuncSrc(t, src)
	for _, a := range fa {
		if err := asm.Validate(a.Asm); err != nil {
			t.Errorf("asm failed validation: %v\nasm: %v", err, a.Asm)
		}
		if !contains(a.Asm, asm.OpInspectLockTime) {
			t.Errorf("missing OP_INSPECTLOCKTIME in %v", a.Asm)
		}
		if !contains(a.Asm, asm.OpInspectNumInputs) {
			t.Errorf("missing OP_INSPECTNUMINPUTS in %v", a.Asm)
		}
		if !contains(a.Asm, asm.OpInspectNumOutputs) {
			t.Errorf("missing OP_INSPECTNUMOUTPUTS in %v", a.Asm)
		}
	}
}

func TestIntrospectInputOutputFields(t *testing.T) {
	src := `
	options { exit = 144; }
	contract C() {
		function f() {
			require(tx.inputs[0].value > 0);
			require(tx.outputs[0].scriptPubKey != 0x00);
		}
	}
	`
	fa := genFuncSrc(t, src)
	for _, a := range fa {
		if err := asm.Validate(a.Asm); err != nil {
			t.Errorf("asm failed validation: %v\nasm: %v", err, a.Asm)
		}
		if !contains(a.Asm, asm.OpInspectInputValue) {
			t.Errorf("missing OP_INSPECTINPUTVALUE in %v", a.Asm)
		}
		if !contains(a.Asm, asm.OpInspectOutputScriptPubKey) {
			t.Errorf("missing OP_INSPECTOUTPUTSCRIPTPUBKEY in %v", a.Asm)
		}
	}
}

func TestIntrospectAssetLookupEmitsSentinelGuard(t *testing.T) {
	src := `
	options { exit = 144; }
	contract C(seed: bytes32) {
		function f() {
			require(tx.inputs[0].assets.lookup(seed) > 0);
		}
	}
	`
	fa := genFuncSrc(t, src)
	for _, a := range fa {
		if err := asm.Validate(a.Asm); err != nil {
			t.Errorf("asm failed validation: %v\nasm: %v", err, a.Asm)
		}
		if !contains(a.Asm, asm.OpInspectInAssetLookup) {
			t.Errorf("missing OP_INSPECTINASSETLOOKUP in %v", a.Asm)
		}
		if !contains(a.Asm, asm.OpDup) || !contains(a.Asm, asm.OpVerify) {
			t.Errorf("missing sentinel guard sequence in %v", a.Asm)
		}
	}
}

// TestIntrospectAssetLookupEqualsZeroSkipsSentinelGuard checks spec.md
// §3/§4.4's carve-out: a lookup result consumed by a bare `== 0` comparison
// gets the shorter (push 0, OP_EQUAL) check instead of the five-token guard.
func TestIntrospectAssetLookupEqualsZeroSkipsSentinelGuard(t *testing.T) {
	src := `
	options { exit = 144; }
	contract C(seed: bytes32) {
		function f() {
			require(tx.inputs[0].assets.lookup(seed) == 0);
		}
	}
	`
	fa := genFuncSrc(t, src)
	for _, a := range fa {
		if err := asm.Validate(a.Asm); err != nil {
			t.Errorf("asm failed validation: %v\nasm: %v", err, a.Asm)
		}
		if !contains(a.Asm, asm.OpInspectInAssetLookup) {
			t.Errorf("missing OP_INSPECTINASSETLOOKUP in %v", a.Asm)
		}
		idx := -1
		for i, tok := range a.Asm {
			if tok == asm.OpInspectInAssetLookup {
				idx = i
				break
			}
		}
		if idx < 0 || idx+2 >= len(a.Asm) || a.Asm[idx+1] != asm.Op0 || a.Asm[idx+2] != asm.OpEqual {
			t.Errorf("expected a bare (OP_0, OP_EQUAL) check right after the lookup, got %v", a.Asm)
		}
		if idx >= 0 && idx+1 < len(a.Asm) && a.Asm[idx+1] == asm.OpDup {
			t.Errorf("five-token sentinel guard should have been skipped for == 0, got %v", a.Asm)
		}
	}
}

func TestIntrospectAssetGroupFields(t *testing.T) {
	src := `
	options { exit = 144; numGroups = 1; }
	contract C() {
		function f() {
			require(tx.assetGroups[0].numInputs >= 0);
			require(tx.assetGroups[0].sumOutputs >= 0);
			require(tx.assetGroups[0].isFresh == true);
		}
	}
	`
	fa := genFuncSrc(t, src)
	for _, a := range fa {
		if err := asm.Validate(a.Asm); err != nil {
			t.Errorf("asm failed validation: %v\nasm: %v", err, a.Asm)
		}
		if !contains(a.Asm, asm.OpInspectAssetGroupNum) {
			t.Errorf("missing OP_INSPECTASSETGROUPNUM in %v", a.Asm)
		}
		if !contains(a.Asm, asm.OpInspectAssetGroupSum) {
			t.Errorf("missing OP_INSPECTASSETGROUPSUM in %v", a.Asm)
		}
		if !contains(a.Asm, asm.OpInspectAssetGroupCtrl) {
			t.Errorf("missing OP_INSPECTASSETGROUPCTRL in %v", a.Asm)
		}
	}
}

func TestIntrospectAssetGroupFind(t *testing.T) {
	src := `
	options { exit = 144; }
	contract C(seed: bytes32) {
		function f() {
			require(tx.assetGroups.find(seed) >= 0);
		}
	}
	`
	fa := genFuncSrc(t, src)
	for _, a := range fa {
		if err := asm.Validate(a.Asm); err != nil {
			t.Errorf("asm failed validation: %v\nasm: %v", err, a.Asm)
		}
		if !contains(a.Asm, asm.OpFindAssetGroupByAssetId) {
			t.Errorf("missing OP_FINDASSETGROUPBYASSETID in %v", a.Asm)
		}
	}
}

func TestIntrospectAssetIdSeedMustBeDeclaredSeed(t *testing.T) {
	src := `
	options { exit = 144; }
	contract C(notASeed: bytes32) {
		function f(sig: signature) {
			require(tx.assetGroups.find(0x00) >= 0);
		}
	}
	`
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
	if _, err := GenerateFunction(c, sm, c.Functions[0]); err == nil {
		t.Fatal("expected an error: find() argument is not a declared bytes32 seed identifier")
	}
}

func TestIntrospectUnsupportedShapeRejected(t *testing.T) {
	src := `
	options { exit = 144; }
	contract C() {
		function f() {
			require(tx.assetGroups[0].inputs[0] >= 0);
		}
	}
	`
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
	if _, err := GenerateFunction(c, sm, c.Functions[0]); err == nil {
		t.Fatal("expected a shape error: per-member asset-group index lists are not supported")
	}
}
