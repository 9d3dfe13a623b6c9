package compiler

import (
	"fmt"

	"arkascript/pkg/asm"
)

// FunctionArtifact is one cooperative-or-exit leaf ready for serialization.
type FunctionArtifact struct {
	Name           string
	FunctionInputs []ABIEntry
	ServerVariant  bool
	Require        []string
	Asm            []string
}

// ABIEntry is a single {name, type} pair in a flattened constructor or
// witness ABI.
type ABIEntry struct {
	Name string
	Type string
}

// CodeGen walks one function body and emits tapscript-like assembly tokens
// for a single variant (cooperative or exit). A fresh CodeGen is used per
// function-variant compilation, matching spec.md §3's "one virtual stack
// per function-variant compilation" lifecycle.
type CodeGen struct {
	contract *Contract
	sema     *Sema
	params   map[string]Parameter // constructor parameters by name
	witness  map[string]Parameter // current function's witness parameters by name
	stack    *asm.Stack
	tokens   []string
	require  []string
}

func newCodeGen(c *Contract, sm *Sema, fn *Function) *CodeGen {
	params := map[string]Parameter{}
	for _, p := range c.Parameters {
		params[p.Name] = p
	}
	witness := map[string]Parameter{}
	for _, p := range fn.Parameters {
		witness[p.Name] = p
	}
	return &CodeGen{contract: c, sema: sm, params: params, witness: witness, stack: asm.NewStack()}
}

func (cg *CodeGen) emit(tok string) {
	cg.tokens = append(cg.tokens, tok)
}

func (cg *CodeGen) emitPush(tok string, tag string) {
	cg.emit(tok)
	cg.stack.Push(tok, tag)
}

// GenerateFunction emits the cooperative variant of fn (only when
// options.server is set) followed by its exit variant.
func GenerateFunction(c *Contract, sm *Sema, fn *Function) ([]*FunctionArtifact, error) {
	abi := flattenParams(fn.Parameters, sm.AssetSeeds)
	var out []*FunctionArtifact
	variants := []bool{true, false}
	if !c.Options.HasServer {
		variants = []bool{false}
	}
	for _, serverVariant := range variants {
		cg := newCodeGen(c, sm, fn)
		for _, stmt := range fn.Body {
			if err := cg.genStmt(stmt); err != nil {
				return nil, err
			}
		}
		if err := cg.emitVariantTail(serverVariant); err != nil {
			return nil, err
		}
		cg.emitCleanupTail()
		if serverVariant {
			cg.require = append(cg.require, "serverSignature")
		} else {
			cg.require = append(cg.require, "older")
		}
		if err := asm.Validate(cg.tokens); err != nil {
			return nil, errf(StageInternal, fn.Line, "function %q (serverVariant=%v) failed validation: %v", fn.Name, serverVariant, err)
		}
		out = append(out, &FunctionArtifact{
			Name:           fn.Name,
			FunctionInputs: abi,
			ServerVariant:  serverVariant,
			Require:        cg.require,
			Asm:            cg.tokens,
		})
	}
	return out, nil
}

// emitVariantTail appends the variant-distinguishing suffix after the
// function body's own checks: a server-cosignature verify for the
// cooperative variant (spec.md line 169's "the cooperative leaf ends with
// a signature-verify over <SERVER_KEY>"), or the relative-timelock push for
// the exit variant.
func (cg *CodeGen) emitVariantTail(serverVariant bool) error {
	if serverVariant {
		if !cg.contract.Options.HasServer {
			return errf(StageConfiguration, cg.contract.Line, "cooperative variant requested but options.server is not set")
		}
		cg.emitPush("<SERVER_KEY>", RepPubkey.String())
		cg.emitPush("<serverSig>", RepSignature.String())
		if _, err := cg.applyOp(asm.OpCheckSig, 2, RepBool); err != nil {
			return err
		}
		cg.stack.Pop()
		cg.emit(asm.OpVerify)
		return nil
	}
	cg.emit(fmt.Sprintf("%d", cg.contract.Options.Exit))
	cg.emit(asm.OpCheckSequenceVerify)
	cg.emit(asm.OpDrop)
	return nil
}

func (cg *CodeGen) emitCleanupTail() {
	for cg.stack.Depth() > 0 {
		cg.stack.Pop()
		cg.emit(asm.OpDrop)
	}
	cg.emit(asm.Op1)
}

func (cg *CodeGen) genStmt(stmt Stmt) error {
	switch s := stmt.(type) {
	case *RequireStmt:
		rep, err := cg.genExpr(s.Cond)
		if err != nil {
			return err
		}
		if rep != RepBool && rep != RepCSN {
			return errf(StageRepresentation, s.Line, "require() condition must be boolean or csn, got %s", rep)
		}
		cg.stack.Pop()
		cg.emit(asm.OpVerify)
		cg.require = append(cg.require, requireTag(s.Cond))
		return nil

	case *LetStmt:
		rep, err := cg.genExpr(s.Value)
		if err != nil {
			return err
		}
		cg.stack.Rename(s.Name)
		_ = rep
		return nil

	case *AssignStmt:
		if _, err := cg.stack.DepthOf(s.Name); err != nil {
			return errf(StageScope, s.Line, "cannot assign to undeclared variable %q", s.Name)
		}
		if _, err := cg.genExpr(s.Value); err != nil {
			return err
		}
		depth, err := cg.stack.RollToTop(s.Name)
		if err != nil {
			return errf(StageInternal, s.Line, "%v", err)
		}
		cg.emit(fmt.Sprintf("%d", depth))
		cg.emit(asm.OpRoll)
		cg.stack.Pop()
		cg.emit(asm.OpDrop)
		cg.stack.Rename(s.Name)
		return nil

	case *IfStmt:
		return cg.genIf(s)

	case *ExprStmt:
		_, err := cg.genExpr(s.Call)
		return err

	case *ForStmt:
		return errf(StageInternal, s.Line, "unexpanded for-loop reached codegen")

	default:
		return fmt.Errorf("internal error: unhandled statement %T", stmt)
	}
}

func (cg *CodeGen) genIf(s *IfStmt) error {
	rep, err := cg.genExpr(s.Cond)
	if err != nil {
		return err
	}
	if rep != RepBool && rep != RepCSN {
		return errf(StageRepresentation, s.Line, "if condition must be boolean or csn, got %s", rep)
	}
	cg.stack.Pop()
	cg.emit(asm.OpIf)

	snapshot := cg.stack.Snapshot()

	for _, stmt := range s.Then {
		if err := cg.genStmt(stmt); err != nil {
			return err
		}
	}
	thenSnapshot := cg.stack.Snapshot()

	cg.stack.Restore(snapshot)
	cg.emit(asm.OpElse)

	for _, stmt := range s.Else {
		if err := cg.genStmt(stmt); err != nil {
			return err
		}
	}
	elseSnapshot := cg.stack.Snapshot()

	if !asm.SameShape(thenSnapshot, elseSnapshot) {
		cg.normalizeBranch(elseSnapshot, thenSnapshot)
	}

	cg.emit(asm.OpEndIf)
	return nil
}

// normalizeBranch appends drop/push tokens to the currently open else arm
// (whose live shape is from) so it ends with the same slot count as target,
// per spec.md 4.4's branch-normalization rule. Pushed filler slots take
// target's tag at their position; slots both arms already hold keep the
// else arm's tags, and a tag difference between them is not reconciled.
func (cg *CodeGen) normalizeBranch(from, target []asm.Slot) {
	for len(from) > len(target) {
		cg.emit(asm.OpDrop)
		from = from[:len(from)-1]
		cg.stack.Pop()
	}
	for len(from) < len(target) {
		cg.emit(asm.Op0)
		cg.stack.Push("<normalized>", target[len(from)].Tag)
		from = append(from, target[len(from)])
	}
}

// requireTag summarizes a require() condition's precondition kind for the
// artifact's require list, per spec.md §4.5 ("signature", "hash", ...).
func requireTag(cond Expr) string {
	switch e := cond.(type) {
	case *CallExpr:
		if id, ok := e.Callee.(*Ident); ok {
			switch id.Name {
			case "checkSig", "checkSigFromStack":
				return "signature"
			case "checkMultisig":
				return "signature"
			case "sha256":
				return "hash"
			}
		}
	case *BinaryExpr:
		if containsSha256(e) {
			return "hash"
		}
	}
	return "condition"
}

func containsSha256(e Expr) bool {
	switch n := e.(type) {
	case *CallExpr:
		if id, ok := n.Callee.(*Ident); ok && id.Name == "sha256" {
			return true
		}
		for _, a := range n.Args {
			if containsSha256(a) {
				return true
			}
		}
		return containsSha256(n.Callee)
	case *BinaryExpr:
		return containsSha256(n.Lhs) || containsSha256(n.Rhs)
	case *UnaryExpr:
		return containsSha256(n.Operand)
	default:
		return false
	}
}

// flattenParams turns a declared parameter list into its ABI form: arrays
// become name_0..name_{N-1}, and bytes32 asset-id seeds become
// name_txid/name_gidx pairs.
func flattenParams(params []Parameter, seeds map[string]bool) []ABIEntry {
	var out []ABIEntry
	for _, p := range params {
		switch {
		case p.Type.IsArray:
			for i := 0; i < p.Type.ArrayLen; i++ {
				out = append(out, ABIEntry{Name: fmt.Sprintf("%s_%d", p.Name, i), Type: typeName(p.Type.Base, false)})
			}
		case seeds[p.Name]:
			out = append(out, ABIEntry{Name: p.Name + "_txid", Type: "bytes32"})
			out = append(out, ABIEntry{Name: p.Name + "_gidx", Type: "int"})
		default:
			out = append(out, ABIEntry{Name: p.Name, Type: typeName(p.Type.Base, false)})
		}
	}
	return out
}

func typeName(tt TokenType, array bool) string {
	var base string
	switch tt {
	case TPUBKEY:
		base = "pubkey"
	case TSIGNATURE:
		base = "signature"
	case TBYTES:
		base = "bytes"
	case TBYTES20:
		base = "bytes20"
	case TBYTES32:
		base = "bytes32"
	case TINT:
		base = "int"
	case TBOOL:
		base = "bool"
	case TASSET:
		base = "asset"
	default:
		base = "unknown"
	}
	if array {
		base += "[]"
	}
	return base
}
