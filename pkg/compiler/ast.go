package compiler

// TypeRef names a declared type: one of the base keywords, or a fixed-size
// array T[N] of a base type (arrays appear as constructor or witness
// parameters; N is always a compile-time literal).
type TypeRef struct {
	Base     TokenType // TPUBKEY, TSIGNATURE, TBYTES, TBYTES20, TBYTES32, TINT, TBOOL, TASSET
	IsArray  bool
	ArrayLen int
	Line     int
}

// Parameter is a single name:type pair, used for both constructor
// parameters and function (witness) parameters.
type Parameter struct {
	Name string
	Type TypeRef
	Line int
}

// Options captures the top-level options{} block. HasServer/HasExit record
// whether the key was present at all; exit is required, server is optional.
type Options struct {
	HasServer  bool
	ServerParam string // identifier named by the server key, e.g. "server" in `server = server;`
	HasExit      bool
	Renew        int64
	Exit         int64
	HasNumGroups bool
	NumGroups    int64 // compile-time bound for `for (i, v) in tx.assetGroups { }`
	Line         int
}

// Contract is the root AST node produced by the parser.
type Contract struct {
	Name       string
	Options    Options
	Parameters []Parameter
	Functions  []*Function
	Line       int
}

// Function is one function(...) { ... } block. Internal functions are
// inlined at their call sites during semantic analysis and never reach
// code generation directly.
type Function struct {
	Name       string
	Internal   bool
	Parameters []Parameter
	Body       []Stmt
	Line       int
}

// Stmt is any statement appearing in a function body.
type Stmt interface {
	stmtLine() int
}

// RequireStmt is require(<expr>[, "message"]);
type RequireStmt struct {
	Cond   Expr
	Message string
	HasMsg bool
	Line   int
}

func (s *RequireStmt) stmtLine() int { return s.Line }

// LetStmt is let name = expr; the bound type is always inferred.
type LetStmt struct {
	Name  string
	Value Expr
	Line  int
}

func (s *LetStmt) stmtLine() int { return s.Line }

// AssignStmt is name = expr; reassigning an existing let binding.
type AssignStmt struct {
	Name  string
	Value Expr
	Line  int
}

func (s *AssignStmt) stmtLine() int { return s.Line }

// IfStmt is if (cond) { ... } else { ... }. The parser always fills Else —
// an absent else in source becomes an empty block, since codegen's branch
// normalization always emits a real OP_ELSE arm.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
	Line int
}

func (s *IfStmt) stmtLine() int { return s.Line }

// ForStmt is for (idx, val) in iterable { ... }. Iterable is either an
// Ident naming a fixed-length constructor array parameter, or a property
// chain rooted at tx.assetGroups bounded by options.numGroups (a constructor
// parameter named numGroups is not consulted); the concrete bound is
// resolved during semantic analysis, not parsing.
type ForStmt struct {
	IndexVar string
	ValueVar string
	Iterable Expr
	Body     []Stmt
	Line     int
}

func (s *ForStmt) stmtLine() int { return s.Line }

// ExprStmt is a bare call expression used as a statement (e.g. a call to
// an internal function, which semantic analysis inlines).
type ExprStmt struct {
	Call Expr
	Line int
}

func (s *ExprStmt) stmtLine() int { return s.Line }

// Expr is any expression node. All concrete types also implement exprLine
// so error messages can always cite a source line.
type Expr interface {
	exprLine() int
}

// IntLit is a decimal integer literal.
type IntLit struct {
	Value int64
	Line  int
}

func (e *IntLit) exprLine() int { return e.Line }

// BytesLit is a 0x-prefixed hex literal used in a bytes-typed position.
type BytesLit struct {
	Hex  string
	Line int
}

func (e *BytesLit) exprLine() int { return e.Line }

// BoolLit is true or false.
type BoolLit struct {
	Value bool
	Line  int
}

func (e *BoolLit) exprLine() int { return e.Line }

// Ident is a bare name: a constructor parameter, witness parameter, let
// binding, or for-loop index/value variable.
type Ident struct {
	Name string
	Line int
}

func (e *Ident) exprLine() int { return e.Line }

// IndexExpr is base[index], used for constructor array element access and
// group/input/output indexing.
type IndexExpr struct {
	Base  Expr
	Index Expr
	Line  int
}

func (e *IndexExpr) exprLine() int { return e.Line }

// FieldExpr is base.field, the building block of every tx.*/group.*
// property-path chain (e.g. tx.inputs, input.assets).
type FieldExpr struct {
	Base  Expr
	Field string
	Line  int
}

func (e *FieldExpr) exprLine() int { return e.Line }

// CallExpr is callee(args...). Callee is usually a FieldExpr (a method-like
// builtin such as assets.lookup(id)) or a bare Ident (a user function call
// or a free builtin such as checkSig(...)).
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Line   int
}

func (e *CallExpr) exprLine() int { return e.Line }

// BinaryExpr is lhs op rhs for any binary operator token.
type BinaryExpr struct {
	Op   TokenType
	Lhs  Expr
	Rhs  Expr
	Line int
}

func (e *BinaryExpr) exprLine() int { return e.Line }

// UnaryExpr is op operand for a prefix operator (! or unary -).
type UnaryExpr struct {
	Op      TokenType
	Operand Expr
	Line    int
}

func (e *UnaryExpr) exprLine() int { return e.Line }

// NewExpr is new Name(args...), a built-in constructor such as
// new P2TR(pk) or new P2TR(pk, tweak). Name is not a declared TypeRef —
// it names one of a small fixed set of script-template constructors.
type NewExpr struct {
	Name string
	Args []Expr
	Line int
}

func (e *NewExpr) exprLine() int { return e.Line }

// ArrayLitExpr is a bracketed list [a, b, ...], used only in positions that
// take a fixed-order group of values directly, such as checkMultisig's
// pubkey and signature arguments.
type ArrayLitExpr struct {
	Elems []Expr
	Line  int
}

func (e *ArrayLitExpr) exprLine() int { return e.Line }
