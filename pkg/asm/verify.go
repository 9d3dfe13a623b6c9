package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// ifFrame tracks one open OP_IF while scanning a token stream.
type ifFrame struct {
	afterCondDepth int  // depth immediately after OP_IF popped its condition
	thenEndDepth   int  // depth recorded at OP_ELSE
	sawElse        bool
}

// Validate walks a flat tapscript-like token stream and checks the
// mechanical invariants the code generator is responsible for upholding:
//
//   - no opcode ever pops more than the stack currently holds (the generic
//     "internal error" category);
//   - every OP_IF/OP_ELSE/OP_ENDIF nests correctly and both arms leave the
//     stack at the same depth (property 7);
//   - every 64-bit arithmetic opcode is immediately followed by OP_VERIFY
//     before anything else runs (property 6);
//   - every sentinel-producing lookup is immediately followed by either the
//     five-token guard sequence or a bare OP_0/OP_EQUAL check (property 5).
//
// It does not simulate OP_CHECKMULTISIG's variable arity precisely (that
// depends on a preceding small-integer count push it cannot distinguish
// from an ordinary push in a flat token stream); it only checks that the
// stack has at least two items by the time OP_CHECKMULTISIG runs.
func Validate(tokens []string) error {
	depth := 0
	var ifStack []ifFrame

	pop := func(n int, at int) error {
		if depth < n {
			return fmt.Errorf("stack underflow at token %d (%q): need %d, have %d", at, tokens[at], n, depth)
		}
		depth -= n
		return nil
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		switch tok {
		case OpIf:
			if err := pop(1, i); err != nil {
				return err
			}
			ifStack = append(ifStack, ifFrame{afterCondDepth: depth})
			continue
		case OpElse:
			if len(ifStack) == 0 {
				return fmt.Errorf("OP_ELSE without matching OP_IF at token %d", i)
			}
			top := &ifStack[len(ifStack)-1]
			top.thenEndDepth = depth
			top.sawElse = true
			depth = top.afterCondDepth
			continue
		case OpEndIf:
			if len(ifStack) == 0 {
				return fmt.Errorf("OP_ENDIF without matching OP_IF at token %d", i)
			}
			top := ifStack[len(ifStack)-1]
			ifStack = ifStack[:len(ifStack)-1]
			if top.sawElse && top.thenEndDepth != depth {
				return fmt.Errorf("branch shape mismatch at token %d: then-arm left depth %d, else-arm left depth %d", i, top.thenEndDepth, depth)
			}
			if !top.sawElse {
				return fmt.Errorf("OP_IF closed by OP_ENDIF at token %d has no matching OP_ELSE (codegen must always normalize with one)", i)
			}
			continue
		}

		if Overflow64Ops[tok] {
			eff := Catalog[tok]
			if err := pop(eff.Pops, i); err != nil {
				return err
			}
			depth += eff.Pushes
			if i+1 >= len(tokens) || tokens[i+1] != OpVerify {
				return fmt.Errorf("%s at token %d is not immediately followed by OP_VERIFY", tok, i)
			}
			continue
		}

		if SentinelLookupOps[tok] {
			eff := Catalog[tok]
			if err := pop(eff.Pops, i); err != nil {
				return err
			}
			depth += eff.Pushes
			if !sentinelGuardFollows(tokens, i+1) {
				return fmt.Errorf("%s at token %d is not followed by a sentinel guard or bare == 0 check", tok, i)
			}
			continue
		}

		if eff, ok := Catalog[tok]; ok {
			if err := pop(eff.Pops, i); err != nil {
				return err
			}
			depth += eff.Pushes
			continue
		}

		if tok == OpCheckMultisig {
			if depth < 2 {
				return fmt.Errorf("OP_CHECKMULTISIG at token %d with insufficient stack depth %d", i, depth)
			}
			depth -= 1 // net effect is approximate: consumes counts+keys+sigs, pushes 1
			continue
		}

		// Anything else is a push: an angle-bracket placeholder, a bare
		// decimal/hex numeric literal, or a small-int OP_n opcode.
		if isPush(tok) {
			depth++
			continue
		}

		return fmt.Errorf("unrecognized token %q at position %d", tok, i)
	}

	if len(ifStack) != 0 {
		return fmt.Errorf("%d unclosed OP_IF block(s)", len(ifStack))
	}
	return nil
}

// sentinelGuardFollows reports whether tokens[from:] begins with the
// five-token (dup, push -1, equal, not, verify) guard or a bare
// (push 0, equal) not-found check.
func sentinelGuardFollows(tokens []string, from int) bool {
	if from+1 < len(tokens) && tokens[from] == Op0 && tokens[from+1] == OpEqual {
		return true
	}
	if from+4 < len(tokens) &&
		tokens[from] == OpDup &&
		tokens[from+1] == Op1Negate &&
		tokens[from+2] == OpEqual &&
		tokens[from+3] == OpNot &&
		tokens[from+4] == OpVerify {
		return true
	}
	return false
}

func isPush(tok string) bool {
	if strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">") {
		return true
	}
	for _, small := range [...]string{Op0, Op1, Op2, Op3, Op4, Op5, Op6, Op7, Op8, Op9, Op10, Op11, Op12, Op13, Op14, Op15, Op16, Op1Negate, OpFalse} {
		if tok == small {
			return true
		}
	}
	if strings.HasPrefix(tok, "0x") {
		return true
	}
	if _, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return true
	}
	return false
}
