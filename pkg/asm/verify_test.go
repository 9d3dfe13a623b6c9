package asm

import "testing"

func TestValidateSimplePushAndVerify(t *testing.T) {
	tokens := []string{"<pk>", "<sig>", OpCheckSig, OpVerify}
	if err := Validate(tokens); err != nil {
		t.Errorf("Validate(%v) unexpected error: %v", tokens, err)
	}
}

func TestValidateUnderflow(t *testing.T) {
	tokens := []string{"<pk>", OpCheckSig}
	if err := Validate(tokens); err == nil {
		t.Fatal("expected an underflow error")
	}
}

func TestValidateIfElseMatchingShape(t *testing.T) {
	tokens := []string{
		"<flag>", OpIf,
		"<a>", OpElse,
		"<b>", OpEndIf,
		OpVerify,
	}
	if err := Validate(tokens); err != nil {
		t.Errorf("Validate(%v) unexpected error: %v", tokens, err)
	}
}

func TestValidateIfElseMismatchedShape(t *testing.T) {
	tokens := []string{
		"<flag>", OpIf,
		"<a>", "<b>", OpElse,
		"<c>", OpEndIf,
	}
	if err := Validate(tokens); err == nil {
		t.Fatal("expected a branch-shape mismatch error")
	}
}

func TestValidateIfWithoutElseRejected(t *testing.T) {
	tokens := []string{"<flag>", OpIf, "<a>", OpEndIf}
	if err := Validate(tokens); err == nil {
		t.Fatal("expected an error: OP_IF with no matching OP_ELSE")
	}
}

func TestValidateUnmatchedElseOrEndIf(t *testing.T) {
	if err := Validate([]string{OpElse}); err == nil {
		t.Fatal("expected an error for a bare OP_ELSE")
	}
	if err := Validate([]string{OpEndIf}); err == nil {
		t.Fatal("expected an error for a bare OP_ENDIF")
	}
}

func TestValidateUnclosedIf(t *testing.T) {
	tokens := []string{"<flag>", OpIf, "<a>", OpElse, "<a>"}
	if err := Validate(tokens); err == nil {
		t.Fatal("expected an error: unclosed OP_IF block")
	}
}

func TestValidateOverflow64MustBeFollowedByVerify(t *testing.T) {
	tokens := []string{"<a>", "<b>", OpAdd64}
	if err := Validate(tokens); err == nil {
		t.Fatal("expected an error: OP_ADD64 not immediately verified")
	}
	ok := []string{"<a>", "<b>", OpAdd64, OpVerify}
	if err := Validate(ok); err != nil {
		t.Errorf("Validate(%v) unexpected error: %v", ok, err)
	}
}

func TestValidateSentinelLookupRequiresGuard(t *testing.T) {
	noGuard := []string{"<in>", "<out>", "<assetId>", OpInspectInAssetLookup}
	if err := Validate(noGuard); err == nil {
		t.Fatal("expected an error: sentinel lookup without a guard")
	}

	bareGuard := []string{"<in>", "<out>", "<assetId>", OpInspectInAssetLookup, Op0, OpEqual}
	if err := Validate(bareGuard); err != nil {
		t.Errorf("Validate(bare guard) unexpected error: %v", err)
	}

	fullGuard := []string{
		"<in>", "<out>", "<assetId>", OpInspectInAssetLookup,
		OpDup, Op1Negate, OpEqual, OpNot, OpVerify,
	}
	if err := Validate(fullGuard); err != nil {
		t.Errorf("Validate(full guard) unexpected error: %v", err)
	}
}

func TestValidateCheckMultisigDepthCheck(t *testing.T) {
	tooShallow := []string{"<onlyone>", OpCheckMultisig}
	if err := Validate(tooShallow); err == nil {
		t.Fatal("expected an error: OP_CHECKMULTISIG with insufficient depth")
	}
	ok := []string{Op2, "<k1>", "<k2>", Op1, "<s1>", OpCheckMultisig}
	if err := Validate(ok); err != nil {
		t.Errorf("Validate(checkmultisig) unexpected error: %v", err)
	}
}

func TestValidateUnrecognizedTokenRejected(t *testing.T) {
	if err := Validate([]string{"not_a_real_opcode"}); err == nil {
		t.Fatal("expected an error for an unrecognized token")
	}
}

func TestIsPush(t *testing.T) {
	tests := []struct {
		tok  string
		want bool
	}{
		{"<pk>", true},
		{Op0, true},
		{Op16, true},
		{Op1Negate, true},
		{"0xdeadbeef", true},
		{"144", true},
		{"-5", true},
		{OpCheckSig, false},
	}
	for _, tc := range tests {
		if got := isPush(tc.tok); got != tc.want {
			t.Errorf("isPush(%q) = %v, want %v", tc.tok, got, tc.want)
		}
	}
}

func TestPushOpcodeForSmall(t *testing.T) {
	if tok, ok := PushOpcodeForSmall(0); !ok || tok != Op0 {
		t.Errorf("PushOpcodeForSmall(0) = %q, %v", tok, ok)
	}
	if tok, ok := PushOpcodeForSmall(16); !ok || tok != Op16 {
		t.Errorf("PushOpcodeForSmall(16) = %q, %v", tok, ok)
	}
	if tok, ok := PushOpcodeForSmall(-1); !ok || tok != Op1Negate {
		t.Errorf("PushOpcodeForSmall(-1) = %q, %v", tok, ok)
	}
	if _, ok := PushOpcodeForSmall(17); ok {
		t.Error("PushOpcodeForSmall(17) should report false")
	}
	if _, ok := PushOpcodeForSmall(-2); ok {
		t.Error("PushOpcodeForSmall(-2) should report false")
	}
}
