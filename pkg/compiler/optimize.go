package compiler

// optimizeFunctions folds compile-time-constant subexpressions in every
// function body. Arkade Script has no dead-function problem analogous to
// the teacher's eliminateDeadFunctions — every declared external function
// is part of the contract's ABI and must keep a compiled variant — so this
// pass only simplifies expressions, never removes statements or functions.
func optimizeFunctions(c *Contract) {
	for _, fn := range c.Functions {
		fn.Body = foldStmts(fn.Body)
	}
}

func foldStmts(stmts []Stmt) []Stmt {
	out := make([]Stmt, len(stmts))
	for i, stmt := range stmts {
		switch s := stmt.(type) {
		case *RequireStmt:
			out[i] = &RequireStmt{Cond: foldExpr(s.Cond), Message: s.Message, HasMsg: s.HasMsg, Line: s.Line}
		case *LetStmt:
			out[i] = &LetStmt{Name: s.Name, Value: foldExpr(s.Value), Line: s.Line}
		case *AssignStmt:
			out[i] = &AssignStmt{Name: s.Name, Value: foldExpr(s.Value), Line: s.Line}
		case *IfStmt:
			out[i] = &IfStmt{Cond: foldExpr(s.Cond), Then: foldStmts(s.Then), Else: foldStmts(s.Else), Line: s.Line}
		case *ForStmt:
			out[i] = &ForStmt{IndexVar: s.IndexVar, ValueVar: s.ValueVar, Iterable: foldExpr(s.Iterable), Body: foldStmts(s.Body), Line: s.Line}
		case *ExprStmt:
			out[i] = &ExprStmt{Call: foldExpr(s.Call), Line: s.Line}
		default:
			out[i] = stmt
		}
	}
	return out
}

// foldExpr recursively folds arithmetic, comparison, and boolean operators
// whose operands are both literals after folding. It never folds across a
// call, index, or field boundary — those may observe a contract's runtime
// inputs and are left for the code generator.
func foldExpr(e Expr) Expr {
	switch n := e.(type) {
	case *BinaryExpr:
		lhs := foldExpr(n.Lhs)
		rhs := foldExpr(n.Rhs)
		if folded := foldBinary(n.Op, lhs, rhs, n.Line); folded != nil {
			return folded
		}
		return &BinaryExpr{Op: n.Op, Lhs: lhs, Rhs: rhs, Line: n.Line}
	case *UnaryExpr:
		operand := foldExpr(n.Operand)
		if folded := foldUnary(n.Op, operand, n.Line); folded != nil {
			return folded
		}
		return &UnaryExpr{Op: n.Op, Operand: operand, Line: n.Line}
	case *IndexExpr:
		return &IndexExpr{Base: foldExpr(n.Base), Index: foldExpr(n.Index), Line: n.Line}
	case *FieldExpr:
		return &FieldExpr{Base: foldExpr(n.Base), Field: n.Field, Line: n.Line}
	case *CallExpr:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = foldExpr(a)
		}
		return &CallExpr{Callee: n.Callee, Args: args, Line: n.Line}
	case *NewExpr:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = foldExpr(a)
		}
		return &NewExpr{Name: n.Name, Args: args, Line: n.Line}
	case *ArrayLitExpr:
		elems := make([]Expr, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = foldExpr(el)
		}
		return &ArrayLitExpr{Elems: elems, Line: n.Line}
	default:
		return e
	}
}

func foldBinary(op TokenType, lhs, rhs Expr, line int) Expr {
	if li, lok := lhs.(*IntLit); lok {
		if ri, rok := rhs.(*IntLit); rok {
			switch op {
			case PLUS:
				return &IntLit{Value: li.Value + ri.Value, Line: line}
			case MINUS:
				return &IntLit{Value: li.Value - ri.Value, Line: line}
			case STAR:
				return &IntLit{Value: li.Value * ri.Value, Line: line}
			case SLASH:
				if ri.Value == 0 {
					return nil // let codegen/runtime surface the division-by-zero failure
				}
				return &IntLit{Value: li.Value / ri.Value, Line: line}
			case EQUALS:
				return &BoolLit{Value: li.Value == ri.Value, Line: line}
			case NOT_EQ:
				return &BoolLit{Value: li.Value != ri.Value, Line: line}
			case LESS:
				return &BoolLit{Value: li.Value < ri.Value, Line: line}
			case LESS_EQ:
				return &BoolLit{Value: li.Value <= ri.Value, Line: line}
			case GREATER:
				return &BoolLit{Value: li.Value > ri.Value, Line: line}
			case GREATER_EQ:
				return &BoolLit{Value: li.Value >= ri.Value, Line: line}
			}
			return nil
		}
	}

	if lb, lok := lhs.(*BoolLit); lok {
		if rb, rok := rhs.(*BoolLit); rok {
			switch op {
			case AND_LOGICAL:
				return &BoolLit{Value: lb.Value && rb.Value, Line: line}
			case OR_LOGICAL:
				return &BoolLit{Value: lb.Value || rb.Value, Line: line}
			case EQUALS:
				return &BoolLit{Value: lb.Value == rb.Value, Line: line}
			case NOT_EQ:
				return &BoolLit{Value: lb.Value != rb.Value, Line: line}
			}
		}
	}
	return nil
}

func foldUnary(op TokenType, operand Expr, line int) Expr {
	switch n := operand.(type) {
	case *IntLit:
		if op == MINUS {
			return &IntLit{Value: -n.Value, Line: line}
		}
	case *BoolLit:
		if op == NOT {
			return &BoolLit{Value: !n.Value, Line: line}
		}
	}
	return nil
}
