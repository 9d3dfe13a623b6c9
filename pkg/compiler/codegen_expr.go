package compiler

import (
	"fmt"

	"arkascript/pkg/asm"
)

// genExpr emits the tokens for e and returns its representation type. Every
// call leaves exactly one new slot on top of cg.stack relative to the depth
// at entry, regardless of how many intermediate operand pushes it performs
// internally — callers (genStmt, genIf) rely on that single-slot contract.
func (cg *CodeGen) genExpr(e Expr) (RepKind, error) {
	switch n := e.(type) {
	case *IntLit:
		cg.emitPush(smallOrDecimal(n.Value), RepCSN.String())
		return RepCSN, nil

	case *BytesLit:
		cg.emitPush("0x"+n.Hex, RepBytes.String())
		return RepBytes, nil

	case *BoolLit:
		if n.Value {
			cg.emitPush(asm.Op1, RepBool.String())
		} else {
			cg.emitPush(asm.Op0, RepBool.String())
		}
		return RepBool, nil

	case *Ident:
		return cg.genIdent(n)

	case *IndexExpr:
		if isTxRoot(n) {
			return cg.genIntrospect(n)
		}
		return cg.genArrayElement(n)

	case *FieldExpr:
		if isTxRoot(n) {
			return cg.genIntrospect(n)
		}
		return 0, errf(StageShape, n.Line, "unsupported field access %q", n.Field)

	case *CallExpr:
		return cg.genCall(n)

	case *BinaryExpr:
		return cg.genBinary(n)

	case *UnaryExpr:
		return cg.genUnary(n)

	case *NewExpr:
		return cg.genNew(n)

	case *ArrayLitExpr:
		return 0, errf(StageShape, n.Line, "an array literal is only valid as a checkMultisig argument")

	default:
		return 0, fmt.Errorf("internal error: unhandled expression node %T", e)
	}
}

// genIdent resolves a bare name to either a direct placeholder push (a
// constructor or witness parameter, substituted by the wallet that fills in
// the template) or an OP_PICK copy of an existing let-binding slot.
func (cg *CodeGen) genIdent(n *Ident) (RepKind, error) {
	if depth, err := cg.stack.DepthOf(n.Name); err == nil {
		slot, _ := cg.stack.Peek(depth)
		rep := repFromTag(slot.Tag)
		cg.emit(smallOrDecimal(int64(depth)))
		cg.emit(asm.OpPick)
		cg.stack.Push("<"+n.Name+">", rep.String())
		return rep, nil
	}
	if w, ok := cg.witness[n.Name]; ok {
		rep := baseRep(w.Type)
		cg.emitPush(fmt.Sprintf("<%s>", n.Name), rep.String())
		return rep, nil
	}
	if p, ok := cg.params[n.Name]; ok {
		rep := baseRep(p.Type)
		cg.emitPush(fmt.Sprintf("<%s>", n.Name), rep.String())
		return rep, nil
	}
	return 0, fmt.Errorf("internal error: identifier %q reached codegen unresolved", n.Name)
}

// genArrayElement handles name[literalIndex] where name is a fixed-length
// constructor or witness array parameter — the only array-indexing shape
// not rooted at tx. Loop unrolling guarantees the index is always a literal
// by the time codegen runs.
func (cg *CodeGen) genArrayElement(n *IndexExpr) (RepKind, error) {
	id, ok := n.Base.(*Ident)
	if !ok {
		return 0, errf(StageShape, n.Line, "array index base must be a declared array parameter")
	}
	lit, ok := n.Index.(*IntLit)
	if !ok {
		return 0, errf(StageShape, n.Line, "array index must be a compile-time literal")
	}
	if w, ok := cg.witness[id.Name]; ok && w.Type.IsArray {
		if lit.Value < 0 || lit.Value >= int64(w.Type.ArrayLen) {
			return 0, errf(StageShape, n.Line, "index %d out of bounds for %q[%d]", lit.Value, id.Name, w.Type.ArrayLen)
		}
		rep := baseRep(w.Type)
		cg.emitPush(fmt.Sprintf("<%s_%d>", id.Name, lit.Value), rep.String())
		return rep, nil
	}
	if p, ok := cg.params[id.Name]; ok && p.Type.IsArray {
		if lit.Value < 0 || lit.Value >= int64(p.Type.ArrayLen) {
			return 0, errf(StageShape, n.Line, "index %d out of bounds for %q[%d]", lit.Value, id.Name, p.Type.ArrayLen)
		}
		rep := baseRep(p.Type)
		cg.emitPush(fmt.Sprintf("<%s_%d>", id.Name, lit.Value), rep.String())
		return rep, nil
	}
	return 0, errf(StageShape, n.Line, "%q is not a declared array parameter", id.Name)
}

// genCall dispatches a call expression to a free builtin (checkSig and
// friends) or, failing that, to the tx/group introspection matcher.
func (cg *CodeGen) genCall(n *CallExpr) (RepKind, error) {
	if id, ok := n.Callee.(*Ident); ok {
		switch id.Name {
		case "checkSig":
			return cg.genCheckSig(n)
		case "checkSigFromStack":
			return cg.genCheckSigFromStack(n)
		case "checkMultisig":
			return cg.genCheckMultisig(n)
		case "sha256":
			return cg.genSha256(n)
		default:
			return 0, errf(StageScope, n.Line, "call to unresolved function %q (internal functions must be inlined before code generation)", id.Name)
		}
	}
	if isTxRoot(n) {
		return cg.genIntrospect(n)
	}
	return 0, errf(StageShape, n.Line, "unsupported call expression")
}

// genCheckSig emits checkSig(sig, pk) in pk-then-sig token order.
func (cg *CodeGen) genCheckSig(n *CallExpr) (RepKind, error) {
	if len(n.Args) != 2 {
		return 0, errf(StageShape, n.Line, "checkSig expects 2 arguments, got %d", len(n.Args))
	}
	if _, err := cg.genExpr(n.Args[1]); err != nil {
		return 0, err
	}
	if _, err := cg.genExpr(n.Args[0]); err != nil {
		return 0, err
	}
	return cg.applyOp(asm.OpCheckSig, 2, RepBool)
}

// genCheckSigFromStack places [sig, pk, msg] in argument order, msg on top.
func (cg *CodeGen) genCheckSigFromStack(n *CallExpr) (RepKind, error) {
	if len(n.Args) != 3 {
		return 0, errf(StageShape, n.Line, "checkSigFromStack expects 3 arguments, got %d", len(n.Args))
	}
	for _, a := range n.Args {
		if _, err := cg.genExpr(a); err != nil {
			return 0, err
		}
	}
	return cg.applyOp(asm.OpCheckSigFromStack, 3, RepBool)
}

// genCheckMultisig composes checkMultisig([pubkeys...], [sigs...]) as
// count, keys..., count, sigs..., OP_CHECKMULTISIG.
func (cg *CodeGen) genCheckMultisig(n *CallExpr) (RepKind, error) {
	if len(n.Args) != 2 {
		return 0, errf(StageShape, n.Line, "checkMultisig expects 2 array arguments, got %d", len(n.Args))
	}
	pubkeys, ok := n.Args[0].(*ArrayLitExpr)
	if !ok {
		return 0, errf(StageShape, n.Line, "checkMultisig's first argument must be an array literal of pubkeys")
	}
	sigs, ok := n.Args[1].(*ArrayLitExpr)
	if !ok {
		return 0, errf(StageShape, n.Line, "checkMultisig's second argument must be an array literal of signatures")
	}
	pushed := 0
	cg.pushLiteralInt(int64(len(pubkeys.Elems)))
	pushed++
	for _, pk := range pubkeys.Elems {
		if _, err := cg.genExpr(pk); err != nil {
			return 0, err
		}
		pushed++
	}
	cg.pushLiteralInt(int64(len(sigs.Elems)))
	pushed++
	for _, sig := range sigs.Elems {
		if _, err := cg.genExpr(sig); err != nil {
			return 0, err
		}
		pushed++
	}
	return cg.applyOp(asm.OpCheckMultisig, pushed, RepBool)
}

// flattenConcat turns a chain of "+" into its ordered list of operands.
func flattenConcat(e Expr) []Expr {
	b, ok := e.(*BinaryExpr)
	if !ok || b.Op != PLUS {
		return []Expr{e}
	}
	return append(flattenConcat(b.Lhs), flattenConcat(b.Rhs)...)
}

// genSha256 hashes a single operand directly, or streams a "+" chain of
// heterogeneous operands through the initialize/update/finalize opcodes —
// there is no concatenation-then-single-hash path here because producing
// the intermediate concatenated buffer would itself require OP_CAT over
// runtime-substituted placeholder values of statically unknown total width.
func (cg *CodeGen) genSha256(n *CallExpr) (RepKind, error) {
	if len(n.Args) != 1 {
		return 0, errf(StageShape, n.Line, "sha256 expects exactly 1 argument")
	}
	operands := flattenConcat(n.Args[0])
	genOperand := func(op Expr) error {
		rep, err := cg.genExpr(op)
		if err != nil {
			return err
		}
		if !isByteLike(rep) {
			return errf(StageRepresentation, op.exprLine(), "sha256 operand must have a statically known byte width, got %s", rep)
		}
		return nil
	}
	if err := genOperand(operands[0]); err != nil {
		return 0, err
	}
	if len(operands) == 1 {
		return cg.applyOp(asm.OpSha256, 1, RepBytes)
	}
	if _, err := cg.applyOp(asm.OpSha256Initialize, 1, RepBytes); err != nil {
		return 0, err
	}
	for i := 1; i < len(operands)-1; i++ {
		if err := genOperand(operands[i]); err != nil {
			return 0, err
		}
		if _, err := cg.applyOp(asm.OpSha256Update, 2, RepBytes); err != nil {
			return 0, err
		}
	}
	if err := genOperand(operands[len(operands)-1]); err != nil {
		return 0, err
	}
	return cg.applyOp(asm.OpSha256Finalize, 2, RepBytes)
}

func isByteLike(rep RepKind) bool {
	switch rep {
	case RepBytes, RepPubkey, RepSignature, RepU32LE, RepU64LE:
		return true
	default:
		return false
	}
}

// genNew builds the P2TR witness-v1 scriptPubKey by concatenating the
// 2-byte version/length prefix with the key (and, if present, a tweak
// appended as additional committed data — there is no opcode to apply an
// EC tweak and recover a point, only OP_TWEAKVERIFY to check one that's
// already been applied off-chain).
func (cg *CodeGen) genNew(n *NewExpr) (RepKind, error) {
	if n.Name != "P2TR" {
		return 0, errf(StageShape, n.Line, "unknown constructor %q", n.Name)
	}
	if len(n.Args) == 0 || len(n.Args) > 2 {
		return 0, errf(StageShape, n.Line, "P2TR expects 1 or 2 arguments, got %d", len(n.Args))
	}
	cg.emitPush("0x5120", RepBytes.String())
	for _, a := range n.Args {
		rep, err := cg.genExpr(a)
		if err != nil {
			return 0, err
		}
		if !isByteLike(rep) {
			return 0, errf(StageRepresentation, a.exprLine(), "P2TR argument must be byte-like, got %s", rep)
		}
		if _, err := cg.applyOp(asm.OpCat, 2, RepBytes); err != nil {
			return 0, err
		}
	}
	return RepBytes, nil
}

// genBinary picks the csn or 64-bit opcode variant based on operand
// representation and, for arithmetic, immediately verifies the overflow
// flag per the rule that no other token may observe it first.
func (cg *CodeGen) genBinary(n *BinaryExpr) (RepKind, error) {
	switch n.Op {
	case AND_LOGICAL:
		return cg.genBoolOp(n, asm.OpBoolAnd)
	case OR_LOGICAL:
		return cg.genBoolOp(n, asm.OpBoolOr)
	case PLUS:
		return cg.genArith(n, asm.OpAdd64)
	case MINUS:
		return cg.genArith(n, asm.OpSub64)
	case STAR:
		return cg.genArith(n, asm.OpMul64)
	case SLASH:
		return cg.genArith(n, asm.OpDiv64)
	case EQUALS:
		if lookup, ok := sentinelZeroOperand(n); ok {
			return cg.genSentinelZeroCompare(lookup)
		}
		return cg.genCompare(n, asm.OpEqual, asm.OpEqual)
	case NOT_EQ:
		rep, err := cg.genCompare(n, asm.OpEqual, asm.OpEqual)
		if err != nil {
			return 0, err
		}
		cg.emit(asm.OpNot)
		if _, err := cg.stack.PopN(1); err != nil {
			return 0, fmt.Errorf("internal error: %v", err)
		}
		cg.stack.Push("<not>", RepBool.String())
		return rep, nil
	case LESS:
		return cg.genCompare(n, asm.OpLessThan, asm.OpLessThan64)
	case LESS_EQ:
		return cg.genCompare(n, asm.OpLessThanOrEqual, asm.OpLessThanOrEqual64)
	case GREATER:
		return cg.genCompare(n, asm.OpGreaterThan, asm.OpGreaterThan64)
	case GREATER_EQ:
		return cg.genCompare(n, asm.OpGreaterThanOrEqual, asm.OpGreaterThanOrEqual64)
	default:
		return 0, fmt.Errorf("internal error: unhandled binary operator %v", n.Op)
	}
}

func (cg *CodeGen) genBoolOp(n *BinaryExpr, opcode string) (RepKind, error) {
	lrep, err := cg.genExpr(n.Lhs)
	if err != nil {
		return 0, err
	}
	if lrep != RepBool {
		return 0, errf(StageRepresentation, n.Line, "operand of %v must be boolean, got %s", n.Op, lrep)
	}
	rrep, err := cg.genExpr(n.Rhs)
	if err != nil {
		return 0, err
	}
	if rrep != RepBool {
		return 0, errf(StageRepresentation, n.Line, "operand of %v must be boolean, got %s", n.Op, rrep)
	}
	return cg.applyOp(opcode, 2, RepBool)
}

// genArith emits lhs, rhs, the 64-bit opcode (which pushes the result and
// then an overflow flag on top of it), and an immediate OP_VERIFY that
// consumes the flag and leaves the result as the expression's single value.
func (cg *CodeGen) genArith(n *BinaryExpr, opcode string) (RepKind, error) {
	if _, err := cg.genExpr(n.Lhs); err != nil {
		return 0, err
	}
	if _, err := cg.genExpr(n.Rhs); err != nil {
		return 0, err
	}
	cg.emit(opcode)
	if _, err := cg.stack.PopN(2); err != nil {
		return 0, fmt.Errorf("internal error: %v", err)
	}
	cg.stack.Push("<result>", RepU64LE.String())
	cg.stack.Push("<overflowFlag>", "overflow")
	cg.emit(asm.OpVerify)
	if _, err := cg.stack.PopN(1); err != nil {
		return 0, fmt.Errorf("internal error: %v", err)
	}
	return RepU64LE, nil
}

// sentinelZeroOperand recognizes `<lookup> == 0` and `0 == <lookup>` and
// returns the lookup side, per spec.md's carve-out: a lookup result
// consumed by a bare equality-with-zero check doesn't need the five-token
// not-found guard.
func sentinelZeroOperand(n *BinaryExpr) (Expr, bool) {
	if isZeroLit(n.Rhs) && isSentinelLookupCall(n.Lhs) {
		return n.Lhs, true
	}
	if isZeroLit(n.Lhs) && isSentinelLookupCall(n.Rhs) {
		return n.Rhs, true
	}
	return nil, false
}

func isZeroLit(e Expr) bool {
	lit, ok := e.(*IntLit)
	return ok && lit.Value == 0
}

// genSentinelZeroCompare emits the lookup opcode without its usual guard,
// then a bare push-0/OP_EQUAL — the alternative pkg/asm/verify.go's
// sentinelGuardFollows already accepts in place of the guard sequence.
func (cg *CodeGen) genSentinelZeroCompare(lookup Expr) (RepKind, error) {
	call := lookup.(*CallExpr)
	if _, err := cg.genIntrospectCallNoGuard(call); err != nil {
		return 0, err
	}
	cg.pushLiteralInt(0)
	return cg.applyOp(asm.OpEqual, 2, RepBool)
}

func (cg *CodeGen) genCompare(n *BinaryExpr, csnOp, wideOp string) (RepKind, error) {
	lrep, err := cg.genExpr(n.Lhs)
	if err != nil {
		return 0, err
	}
	rrep, err := cg.genExpr(n.Rhs)
	if err != nil {
		return 0, err
	}
	opcode := wideOp
	if lrep == RepCSN && rrep == RepCSN {
		opcode = csnOp
	}
	return cg.applyOp(opcode, 2, RepBool)
}

func (cg *CodeGen) genUnary(n *UnaryExpr) (RepKind, error) {
	switch n.Op {
	case NOT:
		rep, err := cg.genExpr(n.Operand)
		if err != nil {
			return 0, err
		}
		if rep != RepBool {
			return 0, errf(StageRepresentation, n.Line, "! requires a boolean operand, got %s", rep)
		}
		return cg.applyOp(asm.OpNot, 1, RepBool)
	case MINUS:
		rep, err := cg.genExpr(n.Operand)
		if err != nil {
			return 0, err
		}
		if rep != RepCSN && rep != RepU64LE {
			return 0, errf(StageRepresentation, n.Line, "unary - requires a numeric operand, got %s", rep)
		}
		return cg.applyOp(asm.OpNeg64, 1, rep)
	default:
		return 0, fmt.Errorf("internal error: unhandled unary operator %v", n.Op)
	}
}

// applyOp emits opcode, pops consumed virtual-stack slots (which must equal
// the number of values pushed by the caller's preceding genExpr/push calls
// for this operation), and pushes one new result slot.
func (cg *CodeGen) applyOp(opcode string, consumed int, resultRep RepKind) (RepKind, error) {
	cg.emit(opcode)
	if _, err := cg.stack.PopN(consumed); err != nil {
		return 0, fmt.Errorf("internal error: %v", err)
	}
	cg.stack.Push("<"+opcode+">", resultRep.String())
	return resultRep, nil
}

func (cg *CodeGen) pushLiteralInt(v int64) {
	cg.emitPush(smallOrDecimal(v), RepCSN.String())
}

func smallOrDecimal(v int64) string {
	if tok, ok := asm.PushOpcodeForSmall(v); ok {
		return tok
	}
	return fmt.Sprintf("%d", v)
}
