package compiler

import "fmt"

// Sema holds the results of semantic analysis that codegen consumes: the
// validated contract with internal calls inlined and loops unrolled, plus
// the set of constructor parameter names that decompose into txid/gidx
// pairs because they're used as asset-id seeds.
type Sema struct {
	Contract   *Contract
	AssetSeeds map[string]bool
}

// Analyze runs scope resolution, asset-id seed detection, internal-function
// inlining, and loop unrolling over c, returning the transformed contract
// ready for code generation. c is mutated in place and also returned.
func Analyze(c *Contract) (*Sema, error) {
	if err := validateOptions(c); err != nil {
		return nil, err
	}
	if err := checkUniqueNames(c); err != nil {
		return nil, err
	}

	seeds := collectAssetSeeds(c)

	internalFns := map[string]*Function{}
	var external []*Function
	for _, fn := range c.Functions {
		if fn.Internal {
			internalFns[fn.Name] = fn
		} else {
			external = append(external, fn)
		}
	}

	for _, fn := range external {
		body, err := inlineCalls(fn.Body, internalFns, 0)
		if err != nil {
			return nil, err
		}
		fn.Body = body
	}
	c.Functions = external

	for _, fn := range c.Functions {
		body, err := unrollLoops(fn.Body, c)
		if err != nil {
			return nil, err
		}
		fn.Body = body
	}

	if err := resolveScopes(c); err != nil {
		return nil, err
	}

	return &Sema{Contract: c, AssetSeeds: seeds}, nil
}

func validateOptions(c *Contract) error {
	if !c.Options.HasExit {
		return errf(StageShape, c.Line, "options.exit is required")
	}
	if c.Options.Exit < 0 {
		return errf(StageShape, c.Options.Line, "options.exit must be non-negative")
	}
	if c.Options.Renew < 0 {
		return errf(StageShape, c.Options.Line, "options.renew must be non-negative")
	}
	return nil
}

func resolveScopes(c *Contract) error {
	if c.Options.HasServer {
		p, ok := findParam(c.Parameters, c.Options.ServerParam)
		if !ok {
			return errf(StageConfiguration, c.Options.Line, "options.server names a non-existent parameter %q", c.Options.ServerParam)
		}
		if p.Type.Base != TPUBKEY || p.Type.IsArray {
			return errf(StageConfiguration, c.Options.Line, "options.server parameter %q must be a pubkey", c.Options.ServerParam)
		}
	}

	paramSet := map[string]Parameter{}
	for _, p := range c.Parameters {
		paramSet[p.Name] = p
	}

	for _, fn := range c.Functions {
		scope := map[string]bool{}
		for _, p := range fn.Parameters {
			if scope[p.Name] {
				return errf(StageScope, p.Line, "duplicate witness parameter %q in function %q", p.Name, fn.Name)
			}
			scope[p.Name] = true
		}
		if err := resolveStmts(fn.Body, paramSet, scope, fn.Name); err != nil {
			return err
		}
	}
	return nil
}

func resolveStmts(stmts []Stmt, params map[string]Parameter, scope map[string]bool, fnName string) error {
	local := map[string]bool{}
	for k, v := range scope {
		local[k] = v
	}
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *RequireStmt:
			if err := resolveExpr(s.Cond, params, local); err != nil {
				return err
			}
		case *LetStmt:
			if err := resolveExpr(s.Value, params, local); err != nil {
				return err
			}
			if local[s.Name] || params[s.Name].Name != "" {
				return errf(StageScope, s.Line, "%q is already defined", s.Name)
			}
			local[s.Name] = true
		case *AssignStmt:
			if !local[s.Name] {
				return errf(StageScope, s.Line, "cannot assign to undeclared variable %q", s.Name)
			}
			if _, isParam := params[s.Name]; isParam {
				return errf(StageScope, s.Line, "cannot assign to constructor parameter %q", s.Name)
			}
			if err := resolveExpr(s.Value, params, local); err != nil {
				return err
			}
		case *IfStmt:
			if err := resolveExpr(s.Cond, params, local); err != nil {
				return err
			}
			if err := resolveStmts(s.Then, params, local, fnName); err != nil {
				return err
			}
			if err := resolveStmts(s.Else, params, local, fnName); err != nil {
				return err
			}
		case *ForStmt:
			return errf(StageInternal, s.Line, "unrolled contract still contains a for-loop in function %q", fnName)
		case *ExprStmt:
			if err := resolveExpr(s.Call, params, local); err != nil {
				return err
			}
		}
	}
	return nil
}

func resolveExpr(e Expr, params map[string]Parameter, locals map[string]bool) error {
	switch n := e.(type) {
	case *Ident:
		if locals[n.Name] || params[n.Name].Name != "" {
			return nil
		}
		return errf(StageScope, n.Line, "undefined identifier %q", n.Name)
	case *IntLit, *BytesLit, *BoolLit:
		return nil
	case *IndexExpr:
		if err := resolveExpr(n.Base, params, locals); err != nil {
			return err
		}
		return resolveExpr(n.Index, params, locals)
	case *FieldExpr:
		if id, ok := n.Base.(*Ident); ok && id.Name == "tx" {
			return nil
		}
		return resolveExpr(n.Base, params, locals)
	case *CallExpr:
		if _, isIdentCallee := n.Callee.(*Ident); !isIdentCallee {
			if err := resolveExpr(n.Callee, params, locals); err != nil {
				return err
			}
		}
		for _, a := range n.Args {
			if err := resolveExpr(a, params, locals); err != nil {
				return err
			}
		}
		return nil
	case *BinaryExpr:
		if err := resolveExpr(n.Lhs, params, locals); err != nil {
			return err
		}
		return resolveExpr(n.Rhs, params, locals)
	case *UnaryExpr:
		return resolveExpr(n.Operand, params, locals)
	case *NewExpr:
		for _, a := range n.Args {
			if err := resolveExpr(a, params, locals); err != nil {
				return err
			}
		}
		return nil
	case *ArrayLitExpr:
		for _, el := range n.Elems {
			if err := resolveExpr(el, params, locals); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("internal error: unhandled expression node %T", e)
	}
}

func findParam(params []Parameter, name string) (Parameter, bool) {
	for _, p := range params {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

func checkUniqueNames(c *Contract) error {
	seen := map[string]bool{}
	for _, p := range c.Parameters {
		if seen[p.Name] {
			return errf(StageScope, p.Line, "duplicate constructor parameter %q", p.Name)
		}
		seen[p.Name] = true
	}
	fnSeen := map[string]bool{}
	for _, fn := range c.Functions {
		if fnSeen[fn.Name] {
			return errf(StageScope, fn.Line, "duplicate function name %q", fn.Name)
		}
		fnSeen[fn.Name] = true
	}
	return nil
}

// collectAssetSeeds walks every function body looking for bytes32
// identifiers used as the first argument to an asset-lookup or
// assetGroups.find call.
func collectAssetSeeds(c *Contract) map[string]bool {
	seeds := map[string]bool{}
	byteParams := map[string]bool{}
	for _, p := range c.Parameters {
		if p.Type.Base == TBYTES32 && !p.Type.IsArray {
			byteParams[p.Name] = true
		}
	}
	var walkStmts func([]Stmt)
	var walkExpr func(Expr)
	walkExpr = func(e Expr) {
		switch n := e.(type) {
		case *CallExpr:
			if fe, ok := n.Callee.(*FieldExpr); ok {
				if (fe.Field == "lookup" || fe.Field == "find") && len(n.Args) > 0 {
					if id, ok := n.Args[0].(*Ident); ok && byteParams[id.Name] {
						seeds[id.Name] = true
					}
				}
			}
			walkExpr(n.Callee)
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *BinaryExpr:
			walkExpr(n.Lhs)
			walkExpr(n.Rhs)
		case *UnaryExpr:
			walkExpr(n.Operand)
		case *IndexExpr:
			walkExpr(n.Base)
			walkExpr(n.Index)
		case *FieldExpr:
			walkExpr(n.Base)
		case *NewExpr:
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ArrayLitExpr:
			for _, el := range n.Elems {
				walkExpr(el)
			}
		}
	}
	walkStmts = func(stmts []Stmt) {
		for _, stmt := range stmts {
			switch s := stmt.(type) {
			case *RequireStmt:
				walkExpr(s.Cond)
			case *LetStmt:
				walkExpr(s.Value)
			case *AssignStmt:
				walkExpr(s.Value)
			case *IfStmt:
				walkExpr(s.Cond)
				walkStmts(s.Then)
				walkStmts(s.Else)
			case *ForStmt:
				walkExpr(s.Iterable)
				walkStmts(s.Body)
			case *ExprStmt:
				walkExpr(s.Call)
			}
		}
	}
	for _, fn := range c.Functions {
		walkStmts(fn.Body)
	}
	return seeds
}

// inlineCalls replaces every ExprStmt that calls an internal function with
// an alpha-renamed copy of that function's body, substituting its
// parameters with let-bindings bound to the call's argument expressions.
// depth guards against unbounded recursion between internal functions.
func inlineCalls(stmts []Stmt, internals map[string]*Function, depth int) ([]Stmt, error) {
	if depth > 32 {
		return nil, fmt.Errorf("internal error: internal-function inlining exceeded depth 32 (recursive internal calls?)")
	}
	var out []Stmt
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *IfStmt:
			thenBody, err := inlineCalls(s.Then, internals, depth)
			if err != nil {
				return nil, err
			}
			elseBody, err := inlineCalls(s.Else, internals, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, &IfStmt{Cond: s.Cond, Then: thenBody, Else: elseBody, Line: s.Line})
		case *ForStmt:
			body, err := inlineCalls(s.Body, internals, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, &ForStmt{IndexVar: s.IndexVar, ValueVar: s.ValueVar, Iterable: s.Iterable, Body: body, Line: s.Line})
		case *ExprStmt:
			if call, ok := s.Call.(*CallExpr); ok {
				if callee, ok := call.Callee.(*Ident); ok {
					if fn, isInternal := internals[callee.Name]; isInternal {
						expanded, err := expandInternalCall(fn, call, internals, depth+1)
						if err != nil {
							return nil, err
						}
						out = append(out, expanded...)
						continue
					}
				}
			}
			out = append(out, s)
		default:
			out = append(out, stmt)
		}
	}
	return out, nil
}

var inlineCounter int

func expandInternalCall(fn *Function, call *CallExpr, internals map[string]*Function, depth int) ([]Stmt, error) {
	if len(call.Args) != len(fn.Parameters) {
		return nil, errf(StageScope, call.Line, "internal function %q called with %d arguments, expected %d", fn.Name, len(call.Args), len(fn.Parameters))
	}
	inlineCounter++
	suffix := fmt.Sprintf("__inline%d", inlineCounter)

	rename := map[string]string{}
	var out []Stmt
	for i, p := range fn.Parameters {
		fresh := p.Name + suffix
		rename[p.Name] = fresh
		out = append(out, &LetStmt{Name: fresh, Value: call.Args[i], Line: call.Line})
	}

	renamedBody := renameStmts(fn.Body, rename, suffix)
	body, err := inlineCalls(renamedBody, internals, depth)
	if err != nil {
		return nil, err
	}
	out = append(out, body...)
	return out, nil
}

// renameStmts alpha-renames every let-binding and witness-parameter
// reference introduced by the inlined function body so repeated inlining
// of the same internal function never collides.
func renameStmts(stmts []Stmt, rename map[string]string, suffix string) []Stmt {
	local := map[string]string{}
	for k, v := range rename {
		local[k] = v
	}
	out := make([]Stmt, len(stmts))
	for i, stmt := range stmts {
		switch s := stmt.(type) {
		case *RequireStmt:
			out[i] = &RequireStmt{Cond: renameExpr(s.Cond, local), Message: s.Message, HasMsg: s.HasMsg, Line: s.Line}
		case *LetStmt:
			fresh := s.Name + suffix
			local[s.Name] = fresh
			out[i] = &LetStmt{Name: fresh, Value: renameExpr(s.Value, local), Line: s.Line}
		case *AssignStmt:
			name := s.Name
			if r, ok := local[name]; ok {
				name = r
			}
			out[i] = &AssignStmt{Name: name, Value: renameExpr(s.Value, local), Line: s.Line}
		case *IfStmt:
			out[i] = &IfStmt{Cond: renameExpr(s.Cond, local), Then: renameStmts(s.Then, local, suffix), Else: renameStmts(s.Else, local, suffix), Line: s.Line}
		case *ForStmt:
			out[i] = &ForStmt{IndexVar: s.IndexVar, ValueVar: s.ValueVar, Iterable: renameExpr(s.Iterable, local), Body: renameStmts(s.Body, local, suffix), Line: s.Line}
		case *ExprStmt:
			out[i] = &ExprStmt{Call: renameExpr(s.Call, local), Line: s.Line}
		default:
			out[i] = stmt
		}
	}
	return out
}

func renameExpr(e Expr, rename map[string]string) Expr {
	switch n := e.(type) {
	case *Ident:
		if r, ok := rename[n.Name]; ok {
			return &Ident{Name: r, Line: n.Line}
		}
		return n
	case *IndexExpr:
		return &IndexExpr{Base: renameExpr(n.Base, rename), Index: renameExpr(n.Index, rename), Line: n.Line}
	case *FieldExpr:
		return &FieldExpr{Base: renameExpr(n.Base, rename), Field: n.Field, Line: n.Line}
	case *CallExpr:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = renameExpr(a, rename)
		}
		return &CallExpr{Callee: renameExpr(n.Callee, rename), Args: args, Line: n.Line}
	case *BinaryExpr:
		return &BinaryExpr{Op: n.Op, Lhs: renameExpr(n.Lhs, rename), Rhs: renameExpr(n.Rhs, rename), Line: n.Line}
	case *UnaryExpr:
		return &UnaryExpr{Op: n.Op, Operand: renameExpr(n.Operand, rename), Line: n.Line}
	case *NewExpr:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = renameExpr(a, rename)
		}
		return &NewExpr{Name: n.Name, Args: args, Line: n.Line}
	case *ArrayLitExpr:
		elems := make([]Expr, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = renameExpr(el, rename)
		}
		return &ArrayLitExpr{Elems: elems, Line: n.Line}
	default:
		return e
	}
}

// substituteExpr replaces every Ident matching a key of sub with that key's
// bound expression, used by unrollLoops to inline a literal loop index and
// an index-expression into the iterable in place of the loop's bound names.
func substituteExpr(e Expr, sub map[string]Expr) Expr {
	switch n := e.(type) {
	case *Ident:
		if r, ok := sub[n.Name]; ok {
			return r
		}
		return n
	case *IndexExpr:
		return &IndexExpr{Base: substituteExpr(n.Base, sub), Index: substituteExpr(n.Index, sub), Line: n.Line}
	case *FieldExpr:
		return &FieldExpr{Base: substituteExpr(n.Base, sub), Field: n.Field, Line: n.Line}
	case *CallExpr:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = substituteExpr(a, sub)
		}
		return &CallExpr{Callee: substituteExpr(n.Callee, sub), Args: args, Line: n.Line}
	case *BinaryExpr:
		return &BinaryExpr{Op: n.Op, Lhs: substituteExpr(n.Lhs, sub), Rhs: substituteExpr(n.Rhs, sub), Line: n.Line}
	case *UnaryExpr:
		return &UnaryExpr{Op: n.Op, Operand: substituteExpr(n.Operand, sub), Line: n.Line}
	case *NewExpr:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = substituteExpr(a, sub)
		}
		return &NewExpr{Name: n.Name, Args: args, Line: n.Line}
	case *ArrayLitExpr:
		elems := make([]Expr, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = substituteExpr(el, sub)
		}
		return &ArrayLitExpr{Elems: elems, Line: n.Line}
	default:
		return e
	}
}

// substituteStmts applies substituteExpr to every expression reachable from
// stmts, recursing into if/for bodies. A nested for-loop's own index/value
// names shadow sub for its body, matching ordinary lexical scoping.
func substituteStmts(stmts []Stmt, sub map[string]Expr) []Stmt {
	out := make([]Stmt, len(stmts))
	for i, stmt := range stmts {
		switch s := stmt.(type) {
		case *RequireStmt:
			out[i] = &RequireStmt{Cond: substituteExpr(s.Cond, sub), Message: s.Message, HasMsg: s.HasMsg, Line: s.Line}
		case *LetStmt:
			out[i] = &LetStmt{Name: s.Name, Value: substituteExpr(s.Value, sub), Line: s.Line}
		case *AssignStmt:
			out[i] = &AssignStmt{Name: s.Name, Value: substituteExpr(s.Value, sub), Line: s.Line}
		case *IfStmt:
			out[i] = &IfStmt{Cond: substituteExpr(s.Cond, sub), Then: substituteStmts(s.Then, sub), Else: substituteStmts(s.Else, sub), Line: s.Line}
		case *ForStmt:
			inner := sub
			if _, shadowed := sub[s.IndexVar]; shadowed {
				inner = dropKeys(sub, s.IndexVar, s.ValueVar)
			} else if _, shadowed := sub[s.ValueVar]; shadowed {
				inner = dropKeys(sub, s.IndexVar, s.ValueVar)
			}
			out[i] = &ForStmt{IndexVar: s.IndexVar, ValueVar: s.ValueVar, Iterable: substituteExpr(s.Iterable, sub), Body: substituteStmts(s.Body, inner), Line: s.Line}
		case *ExprStmt:
			out[i] = &ExprStmt{Call: substituteExpr(s.Call, sub), Line: s.Line}
		default:
			out[i] = stmt
		}
	}
	return out
}

func dropKeys(sub map[string]Expr, keys ...string) map[string]Expr {
	out := make(map[string]Expr, len(sub))
	for k, v := range sub {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

var unrollCounter int

// unrollLoops expands every ForStmt into N copies of its body with the
// index variable substituted by the literal index and the value variable
// substituted by an index expression into the iterable. Every `let`
// declared inside the loop body is alpha-renamed per copy — the same
// per-iteration technique expandInternalCall/renameStmts already use for
// inlined internal-function bodies — so the second and later unrolled
// copies don't collide with the first in resolveScopes's flat name map.
func unrollLoops(stmts []Stmt, c *Contract) ([]Stmt, error) {
	var out []Stmt
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ForStmt:
			n, err := staticLoopBound(s.Iterable, c)
			if err != nil {
				return nil, err
			}
			for i := 0; i < n; i++ {
				sub := map[string]Expr{
					s.IndexVar: &IntLit{Value: int64(i), Line: s.Line},
					s.ValueVar: &IndexExpr{Base: s.Iterable, Index: &IntLit{Value: int64(i), Line: s.Line}, Line: s.Line},
				}
				body := substituteStmts(s.Body, sub)
				unrollCounter++
				body = renameStmts(body, map[string]string{}, fmt.Sprintf("__unroll%d", unrollCounter))
				unrolled, err := unrollLoops(body, c)
				if err != nil {
					return nil, err
				}
				out = append(out, unrolled...)
			}
		case *IfStmt:
			thenBody, err := unrollLoops(s.Then, c)
			if err != nil {
				return nil, err
			}
			elseBody, err := unrollLoops(s.Else, c)
			if err != nil {
				return nil, err
			}
			out = append(out, &IfStmt{Cond: s.Cond, Then: thenBody, Else: elseBody, Line: s.Line})
		default:
			out = append(out, stmt)
		}
	}
	return out, nil
}

// staticLoopBound resolves the compile-time length N of a for-loop's
// iterable: a constructor array parameter's declared length, or, for
// tx.assetGroups, the value of options.numGroups. A constructor parameter
// named numGroups is not consulted.
func staticLoopBound(iterable Expr, c *Contract) (int, error) {
	if id, ok := iterable.(*Ident); ok {
		p, found := findParam(c.Parameters, id.Name)
		if !found || !p.Type.IsArray {
			return 0, errf(StageShape, id.Line, "for-loop iterable %q is not a constructor array parameter", id.Name)
		}
		return p.Type.ArrayLen, nil
	}
	if isAssetGroupsExpr(iterable) {
		if !c.Options.HasNumGroups {
			return 0, errf(StageShape, iterable.exprLine(), "for over tx.assetGroups requires options.numGroups")
		}
		if c.Options.NumGroups <= 0 {
			return 0, errf(StageShape, iterable.exprLine(), "options.numGroups must be positive")
		}
		return int(c.Options.NumGroups), nil
	}
	return 0, errf(StageShape, iterable.exprLine(), "for-loop over a runtime-length iterable is not permitted")
}

func isAssetGroupsExpr(e Expr) bool {
	fe, ok := e.(*FieldExpr)
	if !ok || fe.Field != "assetGroups" {
		return false
	}
	id, ok := fe.Base.(*Ident)
	return ok && id.Name == "tx"
}
