package compiler

import (
	"fmt"

	"arkascript/pkg/asm"
)

// rootIdent walks down the base of a field/index/call chain to the Ident it
// is ultimately rooted at, or nil if the chain bottoms out in anything else.
func rootIdent(e Expr) *Ident {
	switch n := e.(type) {
	case *Ident:
		return n
	case *FieldExpr:
		return rootIdent(n.Base)
	case *IndexExpr:
		return rootIdent(n.Base)
	case *CallExpr:
		return rootIdent(n.Callee)
	default:
		return nil
	}
}

func isTxRoot(e Expr) bool {
	id := rootIdent(e)
	return id != nil && id.Name == "tx"
}

// asCollectionIndex recognizes tx.<collection>[index] and returns index.
func asCollectionIndex(e Expr, collection string) (Expr, bool) {
	ie, ok := e.(*IndexExpr)
	if !ok {
		return nil, false
	}
	fe, ok := ie.Base.(*FieldExpr)
	if !ok || fe.Field != collection {
		return nil, false
	}
	id, ok := fe.Base.(*Ident)
	if !ok || id.Name != "tx" {
		return nil, false
	}
	return ie.Index, true
}

// asAssetsOf recognizes tx.<collection>[index].assets and returns index.
func asAssetsOf(e Expr, collection string) (Expr, bool) {
	fe, ok := e.(*FieldExpr)
	if !ok || fe.Field != "assets" {
		return nil, false
	}
	return asCollectionIndex(fe.Base, collection)
}

// genIntrospect covers every supported tx.*/group.* property-path shape.
// Shapes outside this fixed set (e.g. a group's per-member input/output
// index lists) are rejected with a shape error rather than silently
// mis-compiled, since the introspection surface is large and open-ended.
func (cg *CodeGen) genIntrospect(e Expr) (RepKind, error) {
	switch n := e.(type) {
	case *FieldExpr:
		return cg.genIntrospectField(n)
	case *IndexExpr:
		return cg.genIntrospectIndex(n)
	case *CallExpr:
		return cg.genIntrospectCall(n)
	default:
		return 0, errf(StageShape, e.exprLine(), "unsupported transaction-introspection expression")
	}
}

func (cg *CodeGen) genIntrospectField(n *FieldExpr) (RepKind, error) {
	if id, ok := n.Base.(*Ident); ok && id.Name == "tx" {
		switch n.Field {
		case "time":
			return cg.applyOp(asm.OpInspectLockTime, 0, RepU32LE)
		}
	}

	if fe, ok := n.Base.(*FieldExpr); ok {
		if id, ok := fe.Base.(*Ident); ok && id.Name == "tx" && n.Field == "length" {
			switch fe.Field {
			case "inputs":
				return cg.applyOp(asm.OpInspectNumInputs, 0, RepU32LE)
			case "outputs":
				return cg.applyOp(asm.OpInspectNumOutputs, 0, RepU32LE)
			case "assetGroups":
				return cg.applyOp(asm.OpInspectNumAssetGroups, 0, RepU32LE)
			}
		}
	}

	if idx, ok := asCollectionIndex(n.Base, "inputs"); ok {
		if _, err := cg.genExpr(idx); err != nil {
			return 0, err
		}
		switch n.Field {
		case "value":
			return cg.applyOp(asm.OpInspectInputValue, 1, RepU64LE)
		case "scriptPubKey":
			return cg.applyOp(asm.OpInspectInputScriptPubKey, 1, RepBytes)
		}
		return 0, errf(StageShape, n.Line, "unsupported input field %q", n.Field)
	}
	if idx, ok := asCollectionIndex(n.Base, "outputs"); ok {
		if _, err := cg.genExpr(idx); err != nil {
			return 0, err
		}
		switch n.Field {
		case "value":
			return cg.applyOp(asm.OpInspectOutputValue, 1, RepU64LE)
		case "scriptPubKey":
			return cg.applyOp(asm.OpInspectOutputScriptPubKey, 1, RepBytes)
		}
		return 0, errf(StageShape, n.Line, "unsupported output field %q", n.Field)
	}

	if idx, ok := asAssetsOf(n.Base, "inputs"); ok && n.Field == "length" {
		if _, err := cg.genExpr(idx); err != nil {
			return 0, err
		}
		return cg.applyOp(asm.OpInspectInAssetCount, 1, RepU32LE)
	}
	if idx, ok := asAssetsOf(n.Base, "outputs"); ok && n.Field == "length" {
		if _, err := cg.genExpr(idx); err != nil {
			return 0, err
		}
		return cg.applyOp(asm.OpInspectOutAssetCount, 1, RepU32LE)
	}

	if k, ok := asCollectionIndex(n.Base, "assetGroups"); ok {
		return cg.genAssetGroupField(k, n.Field, n.Line)
	}

	return 0, errf(StageShape, n.Line, "unsupported transaction field %q", n.Field)
}

func (cg *CodeGen) genAssetGroupField(groupIdx Expr, field string, line int) (RepKind, error) {
	switch field {
	case "assetId":
		if _, err := cg.genExpr(groupIdx); err != nil {
			return 0, err
		}
		return cg.applyOp(asm.OpInspectAssetGroupAssetId, 1, RepBytes)
	case "control":
		if _, err := cg.genExpr(groupIdx); err != nil {
			return 0, err
		}
		return cg.applyOp(asm.OpInspectAssetGroupCtrl, 1, RepBytes)
	case "metadataHash":
		if _, err := cg.genExpr(groupIdx); err != nil {
			return 0, err
		}
		return cg.applyOp(asm.OpInspectAssetGroupMetadataHash, 1, RepBytes)
	case "numInputs":
		return cg.genAssetGroupNumOrSum(groupIdx, 0, asm.OpInspectAssetGroupNum, RepU32LE)
	case "numOutputs":
		return cg.genAssetGroupNumOrSum(groupIdx, 1, asm.OpInspectAssetGroupNum, RepU32LE)
	case "sumInputs":
		return cg.genAssetGroupNumOrSum(groupIdx, 0, asm.OpInspectAssetGroupSum, RepU64LE)
	case "sumOutputs":
		return cg.genAssetGroupNumOrSum(groupIdx, 1, asm.OpInspectAssetGroupSum, RepU64LE)
	case "isFresh":
		if _, err := cg.genExpr(groupIdx); err != nil {
			return 0, err
		}
		if _, err := cg.applyOp(asm.OpInspectAssetGroupCtrl, 1, RepBytes); err != nil {
			return 0, err
		}
		cg.emitPush(asm.Op0, RepBytes.String())
		return cg.applyOp(asm.OpEqual, 2, RepBool)
	case "delta":
		if _, err := cg.genAssetGroupNumOrSum(groupIdx, 1, asm.OpInspectAssetGroupSum, RepU64LE); err != nil {
			return 0, err
		}
		if _, err := cg.genAssetGroupNumOrSum(groupIdx, 0, asm.OpInspectAssetGroupSum, RepU64LE); err != nil {
			return 0, err
		}
		cg.emit(asm.OpSub64)
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
	return 0, errf(StageShape, line, "unsupported asset-group field %q", field)
}

func (cg *CodeGen) genAssetGroupNumOrSum(groupIdx Expr, selector int64, opcode string, resultRep RepKind) (RepKind, error) {
	if _, err := cg.genExpr(groupIdx); err != nil {
		return 0, err
	}
	cg.pushLiteralInt(selector)
	return cg.applyOp(opcode, 2, resultRep)
}

func (cg *CodeGen) genIntrospectIndex(n *IndexExpr) (RepKind, error) {
	if idx, ok := asAssetsOf(n.Base, "inputs"); ok {
		if _, err := cg.genExpr(idx); err != nil {
			return 0, err
		}
		if _, err := cg.genExpr(n.Index); err != nil {
			return 0, err
		}
		return cg.applyOp(asm.OpInspectInAssetAt, 2, RepU64LE)
	}
	if idx, ok := asAssetsOf(n.Base, "outputs"); ok {
		if _, err := cg.genExpr(idx); err != nil {
			return 0, err
		}
		if _, err := cg.genExpr(n.Index); err != nil {
			return 0, err
		}
		return cg.applyOp(asm.OpInspectOutAssetAt, 2, RepU64LE)
	}
	return 0, errf(StageShape, n.Line, "unsupported transaction index expression")
}

// genIntrospectCall handles the three sentinel-producing lookup shapes,
// guarding the not-found marker (-1) before it can flow into anything else.
func (cg *CodeGen) genIntrospectCall(n *CallExpr) (RepKind, error) {
	return cg.genIntrospectCallGuarded(n, true)
}

// genIntrospectCallNoGuard is the spec.md §3/§4.4 carve-out: a lookup result
// consumed by a bare `== 0` comparison skips the guard, since the sentinel
// -1 already fails that comparison on its own (pkg/asm/verify.go's
// sentinelGuardFollows accepts the resulting bare push-0/OP_EQUAL in place
// of the five-token guard).
func (cg *CodeGen) genIntrospectCallNoGuard(n *CallExpr) (RepKind, error) {
	return cg.genIntrospectCallGuarded(n, false)
}

func (cg *CodeGen) genIntrospectCallGuarded(n *CallExpr, guard bool) (RepKind, error) {
	fe, ok := n.Callee.(*FieldExpr)
	if !ok {
		return 0, errf(StageShape, n.Line, "unsupported transaction call expression")
	}

	if idx, ok := asAssetsOf(fe.Base, "inputs"); ok && fe.Field == "lookup" {
		if len(n.Args) != 1 {
			return 0, errf(StageShape, n.Line, "assets.lookup expects 1 argument")
		}
		if _, err := cg.genExpr(idx); err != nil {
			return 0, err
		}
		pushed, err := cg.genAssetIdSeed(n.Args[0])
		if err != nil {
			return 0, err
		}
		if _, err := cg.applyOp(asm.OpInspectInAssetLookup, 1+pushed, RepSentinel); err != nil {
			return 0, err
		}
		if !guard {
			return RepSentinel, nil
		}
		return cg.emitSentinelGuard(RepU64LE)
	}
	if idx, ok := asAssetsOf(fe.Base, "outputs"); ok && fe.Field == "lookup" {
		if len(n.Args) != 1 {
			return 0, errf(StageShape, n.Line, "assets.lookup expects 1 argument")
		}
		if _, err := cg.genExpr(idx); err != nil {
			return 0, err
		}
		pushed, err := cg.genAssetIdSeed(n.Args[0])
		if err != nil {
			return 0, err
		}
		if _, err := cg.applyOp(asm.OpInspectOutAssetLookup, 1+pushed, RepSentinel); err != nil {
			return 0, err
		}
		if !guard {
			return RepSentinel, nil
		}
		return cg.emitSentinelGuard(RepU64LE)
	}

	if fe2, ok := fe.Base.(*FieldExpr); ok {
		if id, ok := fe2.Base.(*Ident); ok && id.Name == "tx" && fe2.Field == "assetGroups" && fe.Field == "find" {
			if len(n.Args) != 1 {
				return 0, errf(StageShape, n.Line, "assetGroups.find expects 1 argument")
			}
			pushed, err := cg.genAssetIdSeed(n.Args[0])
			if err != nil {
				return 0, err
			}
			if _, err := cg.applyOp(asm.OpFindAssetGroupByAssetId, pushed, RepSentinel); err != nil {
				return 0, err
			}
			if !guard {
				return RepSentinel, nil
			}
			return cg.emitSentinelGuard(RepU32LE)
		}
	}

	return 0, errf(StageShape, n.Line, "unsupported transaction call expression")
}

// isSentinelLookupCall reports whether e is one of the three call shapes
// genIntrospectCall recognizes as producing a raw sentinel value.
func isSentinelLookupCall(e Expr) bool {
	n, ok := e.(*CallExpr)
	if !ok {
		return false
	}
	fe, ok := n.Callee.(*FieldExpr)
	if !ok {
		return false
	}
	if _, ok := asAssetsOf(fe.Base, "inputs"); ok && fe.Field == "lookup" {
		return true
	}
	if _, ok := asAssetsOf(fe.Base, "outputs"); ok && fe.Field == "lookup" {
		return true
	}
	if fe2, ok := fe.Base.(*FieldExpr); ok {
		if id, ok := fe2.Base.(*Ident); ok && id.Name == "tx" && fe2.Field == "assetGroups" && fe.Field == "find" {
			return true
		}
	}
	return false
}

// genAssetIdSeed pushes the two-value txid/gidx decomposition of a
// bytes32-seed asset-id argument. Only constructor parameters the semantic
// analyzer has already marked as seeds (because they're used exactly this
// way) may appear in lookup/find position.
func (cg *CodeGen) genAssetIdSeed(arg Expr) (int, error) {
	id, ok := arg.(*Ident)
	if !ok || !cg.sema.AssetSeeds[id.Name] {
		return 0, errf(StageRepresentation, arg.exprLine(), "asset-id argument must be a bytes32 constructor parameter used consistently as an asset-id seed")
	}
	rep := RepBytes
	cg.emitPush(fmt.Sprintf("<%s_txid>", id.Name), rep.String())
	cg.emitPush(fmt.Sprintf("<%s_gidx>", id.Name), RepCSN.String())
	return 2, nil
}

// emitSentinelGuard emits the dup/-1/equal/not/verify not-found guard
// immediately after a lookup opcode and leaves the guarded value, retagged
// as resultRep, as the expression's single result.
func (cg *CodeGen) emitSentinelGuard(resultRep RepKind) (RepKind, error) {
	sentinel, err := cg.stack.Pop()
	if err != nil {
		return 0, fmt.Errorf("internal error: %v", err)
	}
	cg.emit(asm.OpDup)
	cg.stack.Push(sentinel.Name, sentinel.Tag)
	cg.stack.Push(sentinel.Name, sentinel.Tag)
	cg.pushLiteralInt(-1)
	cg.emit(asm.OpEqual)
	if _, err := cg.stack.PopN(2); err != nil {
		return 0, fmt.Errorf("internal error: %v", err)
	}
	cg.stack.Push("<isNotFound>", RepBool.String())
	cg.emit(asm.OpNot)
	if _, err := cg.stack.PopN(1); err != nil {
		return 0, fmt.Errorf("internal error: %v", err)
	}
	cg.stack.Push("<isFound>", RepBool.String())
	cg.emit(asm.OpVerify)
	if _, err := cg.stack.PopN(1); err != nil {
		return 0, fmt.Errorf("internal error: %v", err)
	}
	cg.stack.Push(sentinel.Name, resultRep.String())
	return resultRep, nil
}
