package ast

// StmtKind enumerates statement node kinds.
type StmtKind uint8

const (
	// StmtReturn is `return expr?;`.
	StmtReturn StmtKind = iota
	// StmtVarDecl is `int name (= expr)?;`.
	StmtVarDecl
	// StmtAssign is `name = expr;`.
	StmtAssign
	// StmtIndexAssign is `name[index] = expr;`.
	StmtIndexAssign
	// StmtWhile is `while (cond) { body }`.
	StmtWhile
	// StmtPrint is `print(expr);`.
	StmtPrint
	// StmtArrayDecl is `int name[size];`.
	StmtArrayDecl
)

func (k StmtKind) String() string {
	switch k {
	case StmtReturn:
		return "return"
	case StmtVarDecl:
		return "var-decl"
	case StmtAssign:
		return "assign"
	case StmtIndexAssign:
		return "index-assign"
	case StmtWhile:
		return "while"
	case StmtPrint:
		return "print"
	case StmtArrayDecl:
		return "array-decl"
	default:
		return "unknown"
	}
}

// Stmt is a statement node. Only the fields of its Kind are meaningful.
type Stmt struct {
	Kind StmtKind

	Name  string // VarDecl, Assign, IndexAssign, ArrayDecl
	Value *Expr  // Return (optional), VarDecl init (optional), Assign, IndexAssign, Print
	Index *Expr  // IndexAssign
	Size  int64  // ArrayDecl

	Cond *Expr   // While
	Body []*Stmt // While
}

// Func is a function definition: the unit handed to the IR builder.
type Func struct {
	Name string
	Body []*Stmt
}

// Return returns a return statement; value may be nil.
func Return(value *Expr) *Stmt {
	return &Stmt{Kind: StmtReturn, Value: value}
}

// Decl returns a scalar declaration; init may be nil.
func Decl(name string, init *Expr) *Stmt {
	return &Stmt{Kind: StmtVarDecl, Name: name, Value: init}
}

// Assign returns a scalar assignment.
func Assign(name string, value *Expr) *Stmt {
	return &Stmt{Kind: StmtAssign, Name: name, Value: value}
}

// IndexAssign returns an array element store.
func IndexAssign(array string, index, value *Expr) *Stmt {
	return &Stmt{Kind: StmtIndexAssign, Name: array, Index: index, Value: value}
}

// While returns a loop statement.
func While(cond *Expr, body ...*Stmt) *Stmt {
	return &Stmt{Kind: StmtWhile, Cond: cond, Body: body}
}

// Print returns a print statement.
func Print(value *Expr) *Stmt {
	return &Stmt{Kind: StmtPrint, Value: value}
}

// ArrayDecl returns an array declaration with a literal size.
func ArrayDecl(name string, size int64) *Stmt {
	return &Stmt{Kind: StmtArrayDecl, Name: name, Size: size}
}

// NewFunc returns a function with the given body.
func NewFunc(name string, body ...*Stmt) *Func {
	return &Func{Name: name, Body: body}
}
