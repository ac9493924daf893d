package parser

import "github.com/alecthomas/participle/v2/lexer"

// Program is a single `int name() { ... }` function.
type Program struct {
	Pos  lexer.Position
	Name string       `"int" @Ident "(" ")"`
	Body []*Statement `"{" @@* "}"`
}

// Snippet is a bare statement list, as typed into the REPL.
type Snippet struct {
	Stmts []*Statement `@@*`
}

type Statement struct {
	Pos    lexer.Position
	Return *ReturnStmt `  @@`
	While  *WhileStmt  `| @@`
	Print  *PrintStmt  `| @@`
	Decl   *DeclStmt   `| @@`
	Assign *AssignStmt `| @@`
}

type ReturnStmt struct {
	Value *Expr `"return" [ @@ ] ";"`
}

type WhileStmt struct {
	Cond *Expr        `"while" "(" @@ ")"`
	Body []*Statement `"{" @@* "}"`
}

type PrintStmt struct {
	Value *Expr `"print" "(" @@ ")" ";"`
}

// DeclStmt is `int x;`, `int x = e;` or `int a[N];`.
type DeclStmt struct {
	Name string `"int" @Ident`
	Size *int64 `[ "[" @Integer "]" ]`
	Init *Expr  `[ "=" @@ ] ";"`
}

// AssignStmt is `x = e;` or `a[i] = e;`.
type AssignStmt struct {
	Name  string `@Ident`
	Index *Expr  `[ "[" @@ "]" ]`
	Value *Expr  `"=" @@ ";"`
}

// Expr is a comparison chain; it binds loosest.
type Expr struct {
	Left *Additive `@@`
	Ops  []*CmpOp  `@@*`
}

type CmpOp struct {
	Op    string    `@("==" | "!=" | "<" | ">")`
	Right *Additive `@@`
}

type Additive struct {
	Left *Term    `@@`
	Ops  []*AddOp `@@*`
}

type AddOp struct {
	Op    string `@("+" | "-")`
	Right *Term  `@@`
}

type Term struct {
	Left *Unary   `@@`
	Ops  []*MulOp `@@*`
}

type MulOp struct {
	Op    string `@("*" | "/")`
	Right *Unary `@@`
}

type Unary struct {
	Neg   bool     `[ @"-" ]`
	Value *Primary `@@`
}

type Primary struct {
	Pos    lexer.Position
	Number *int64     `  @Integer`
	Index  *IndexExpr `| @@`
	Ident  *string    `| @Ident`
	Parens *Expr      `| "(" @@ ")"`
}

type IndexExpr struct {
	Name  string `@Ident "["`
	Index *Expr  `@@ "]"`
}
