package compiler

import "testing"

func TestFoldBinaryArithmetic(t *testing.T) {
	tests := []struct {
		op   TokenType
		a, b int64
		want int64
	}{
		{PLUS, 2, 3, 5},
		{MINUS, 10, 4, 6},
		{STAR, 6, 7, 42},
		{SLASH, 20, 4, 5},
	}
	for _, tc := range tests {
		got := foldBinary(tc.op, &IntLit{Value: tc.a}, &IntLit{Value: tc.b}, 1)
		lit, ok := got.(*IntLit)
		if !ok || lit.Value != tc.want {
			t.Errorf("foldBinary(%v, %d, %d) = %+v, want IntLit{%d}", tc.op, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestFoldBinaryDivisionByZeroIsNotFolded(t *testing.T) {
	got := foldBinary(SLASH, &IntLit{Value: 5}, &IntLit{Value: 0}, 1)
	if got != nil {
		t.Errorf("foldBinary(5 / 0) = %+v, want nil (unfolded)", got)
	}
}

func TestFoldBinaryComparisons(t *testing.T) {
	got := foldBinary(LESS, &IntLit{Value: 1}, &IntLit{Value: 2}, 1)
	lit, ok := got.(*BoolLit)
	if !ok || !lit.Value {
		t.Errorf("foldBinary(1 < 2) = %+v, want BoolLit{true}", got)
	}
}

func TestFoldBinaryBoolLogic(t *testing.T) {
	got := foldBinary(AND_LOGICAL, &BoolLit{Value: true}, &BoolLit{Value: false}, 1)
	lit, ok := got.(*BoolLit)
	if !ok || lit.Value {
		t.Errorf("foldBinary(true && false) = %+v, want BoolLit{false}", got)
	}
}

func TestFoldUnary(t *testing.T) {
	if lit, ok := foldUnary(MINUS, &IntLit{Value: 5}, 1).(*IntLit); !ok || lit.Value != -5 {
		t.Errorf("foldUnary(-5) = %+v", lit)
	}
	if lit, ok := foldUnary(NOT, &BoolLit{Value: true}, 1).(*BoolLit); !ok || lit.Value {
		t.Errorf("foldUnary(!true) = %+v", lit)
	}
}

func TestFoldExprDoesNotCrossCallBoundary(t *testing.T) {
	// checkSig(pk, sig) — a call's arguments fold individually, but the call
	// itself is never replaced by a constant even if every argument is one.
	call := &CallExpr{
		Callee: &Ident{Name: "checkSig"},
		Args: []Expr{
			&BinaryExpr{Op: PLUS, Lhs: &IntLit{Value: 1}, Rhs: &IntLit{Value: 1}},
		},
	}
	folded := foldExpr(call).(*CallExpr)
	lit, ok := folded.Args[0].(*IntLit)
	if !ok || lit.Value != 2 {
		t.Errorf("argument not folded: %+v", folded.Args[0])
	}
}

func TestOptimizeFunctionsFoldsNestedIfAndRequire(t *testing.T) {
	fn := &Function{
		Name: "f",
		Body: []Stmt{
			&IfStmt{
				Cond: &BinaryExpr{Op: GREATER, Lhs: &IntLit{Value: 3}, Rhs: &IntLit{Value: 1}},
				Then: []Stmt{
					&RequireStmt{Cond: &BinaryExpr{Op: PLUS, Lhs: &IntLit{Value: 1}, Rhs: &IntLit{Value: 2}}},
				},
			},
		},
	}
	c := &Contract{Functions: []*Function{fn}}
	optimizeFunctions(c)

	ifStmt := c.Functions[0].Body[0].(*IfStmt)
	cond, ok := ifStmt.Cond.(*BoolLit)
	if !ok || !cond.Value {
		t.Fatalf("if condition not folded: %+v", ifStmt.Cond)
	}
	req := ifStmt.Then[0].(*RequireStmt)
	reqCond, ok := req.Cond.(*IntLit)
	if !ok || reqCond.Value != 3 {
		t.Fatalf("require condition not folded: %+v", req.Cond)
	}
}
