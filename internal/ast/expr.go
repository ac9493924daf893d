package ast

// ExprKind enumerates expression node kinds.
type ExprKind uint8

const (
	// ExprInt is an integer literal.
	ExprInt ExprKind = iota
	// ExprVar is a reference to a scalar variable.
	ExprVar
	// ExprIndex reads one element of an array: Name[Index].
	ExprIndex
	// ExprBinary applies Op to Left and Right.
	ExprBinary
)

func (k ExprKind) String() string {
	switch k {
	case ExprInt:
		return "int"
	case ExprVar:
		return "var"
	case ExprIndex:
		return "index"
	case ExprBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Expr is an expression node. Only the fields of its Kind are meaningful.
type Expr struct {
	Kind ExprKind

	Value int64  // ExprInt
	Name  string // ExprVar, ExprIndex (array name)
	Index *Expr  // ExprIndex

	Op    string // ExprBinary: one of + - * / < > == !=
	Left  *Expr  // ExprBinary
	Right *Expr  // ExprBinary
}

// Int returns an integer literal.
func Int(v int64) *Expr {
	return &Expr{Kind: ExprInt, Value: v}
}

// Var returns a variable reference.
func Var(name string) *Expr {
	return &Expr{Kind: ExprVar, Name: name}
}

// Index returns an array element read.
func Index(array string, index *Expr) *Expr {
	return &Expr{Kind: ExprIndex, Name: array, Index: index}
}

// Bin returns a binary expression.
func Bin(op string, left, right *Expr) *Expr {
	return &Expr{Kind: ExprBinary, Op: op, Left: left, Right: right}
}

// BinaryOps lists the operator symbols the front end may produce.
var BinaryOps = []string{"+", "-", "*", "/", "<", ">", "==", "!="}
