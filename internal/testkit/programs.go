// Package testkit holds sample programs and checkers shared by package tests.
package testkit

import (
	"optimix/internal/ast"
	"optimix/internal/vm"
)

// Program is a sample with its expected behaviour. Fault is zero for
// programs that return normally.
type Program struct {
	Name   string
	Source string
	AST    func() *ast.Func
	Result int64
	Output []int64
	Fault  vm.PanicCode
}

// Programs returns every sample program.
func Programs() []Program {
	return []Program{
		{
			Name: "factorial",
			Source: `int main() {
  int n = 5;
  int result = 1;
  while (n > 0) {
    result = result * n;
    n = n - 1;
  }
  return result;
}
`,
			AST: func() *ast.Func {
				return ast.NewFunc("main",
					ast.Decl("n", ast.Int(5)),
					ast.Decl("result", ast.Int(1)),
					ast.While(ast.Bin(">", ast.Var("n"), ast.Int(0)),
						ast.Assign("result", ast.Bin("*", ast.Var("result"), ast.Var("n"))),
						ast.Assign("n", ast.Bin("-", ast.Var("n"), ast.Int(1))),
					),
					ast.Return(ast.Var("result")),
				)
			},
			Result: 120,
		},
		{
			Name: "fibonacci",
			Source: `int main() {
  int a = 0;
  int b = 1;
  int i = 0;
  while (i < 10) {
    int t = a + b;
    a = b;
    b = t;
    i = i + 1;
  }
  return a;
}
`,
			AST: func() *ast.Func {
				return ast.NewFunc("main",
					ast.Decl("a", ast.Int(0)),
					ast.Decl("b", ast.Int(1)),
					ast.Decl("i", ast.Int(0)),
					ast.While(ast.Bin("<", ast.Var("i"), ast.Int(10)),
						ast.Decl("t", ast.Bin("+", ast.Var("a"), ast.Var("b"))),
						ast.Assign("a", ast.Var("b")),
						ast.Assign("b", ast.Var("t")),
						ast.Assign("i", ast.Bin("+", ast.Var("i"), ast.Int(1))),
					),
					ast.Return(ast.Var("a")),
				)
			},
			Result: 55,
		},
		{
			Name: "print_loop",
			Source: `int main() {
  int i = 1;
  while (i < 6) {
    print(i);
    i = i + 1;
  }
  return 0;
}
`,
			AST: func() *ast.Func {
				return ast.NewFunc("main",
					ast.Decl("i", ast.Int(1)),
					ast.While(ast.Bin("<", ast.Var("i"), ast.Int(6)),
						ast.Print(ast.Var("i")),
						ast.Assign("i", ast.Bin("+", ast.Var("i"), ast.Int(1))),
					),
					ast.Return(ast.Int(0)),
				)
			},
			Output: []int64{1, 2, 3, 4, 5},
		},
		{
			Name: "comprehensive",
			Source: `int main() {
  int arr[5];
  int i = 0;
  while (i < 5) {
    arr[i] = i * 10;
    i = i + 1;
  }
  i = 0;
  while (i < 5) {
    print(arr[i]);
    i = i + 1;
  }
  return 0;
}
`,
			AST: func() *ast.Func {
				return ast.NewFunc("main",
					ast.ArrayDecl("arr", 5),
					ast.Decl("i", ast.Int(0)),
					ast.While(ast.Bin("<", ast.Var("i"), ast.Int(5)),
						ast.IndexAssign("arr", ast.Var("i"), ast.Bin("*", ast.Var("i"), ast.Int(10))),
						ast.Assign("i", ast.Bin("+", ast.Var("i"), ast.Int(1))),
					),
					ast.Assign("i", ast.Int(0)),
					ast.While(ast.Bin("<", ast.Var("i"), ast.Int(5)),
						ast.Print(ast.Index("arr", ast.Var("i"))),
						ast.Assign("i", ast.Bin("+", ast.Var("i"), ast.Int(1))),
					),
					ast.Return(ast.Int(0)),
				)
			},
			Output: []int64{0, 10, 20, 30, 40},
		},
		{
			Name:   "precedence",
			Source: "int main() { return 1 + 2 * 3; }\n",
			AST: func() *ast.Func {
				return ast.NewFunc("main",
					ast.Return(ast.Bin("+", ast.Int(1), ast.Bin("*", ast.Int(2), ast.Int(3)))),
				)
			},
			Result: 7,
		},
		{
			Name:   "count_loop",
			Source: "int main() { int x = 0; while (x < 3) { x = x + 1; } return x; }\n",
			AST: func() *ast.Func {
				return ast.NewFunc("main",
					ast.Decl("x", ast.Int(0)),
					ast.While(ast.Bin("<", ast.Var("x"), ast.Int(3)),
						ast.Assign("x", ast.Bin("+", ast.Var("x"), ast.Int(1))),
					),
					ast.Return(ast.Var("x")),
				)
			},
			Result: 3,
		},
		{
			Name:   "div_zero",
			Source: "int main() { return 5 / 0; }\n",
			AST: func() *ast.Func {
				return ast.NewFunc("main", ast.Return(ast.Bin("/", ast.Int(5), ast.Int(0))))
			},
			Result: 0,
		},
		{
			Name:   "out_of_bounds",
			Source: "int main() { int a[3]; a[5] = 1; return 0; }\n",
			AST: func() *ast.Func {
				return ast.NewFunc("main",
					ast.ArrayDecl("a", 3),
					ast.IndexAssign("a", ast.Int(5), ast.Int(1)),
					ast.Return(ast.Int(0)),
				)
			},
			Fault: vm.PanicOutOfBounds,
		},
		{
			Name:   "print_42",
			Source: "int main() { print(42); return 0; }\n",
			AST: func() *ast.Func {
				return ast.NewFunc("main", ast.Print(ast.Int(42)), ast.Return(ast.Int(0)))
			},
			Output: []int64{42},
		},
		{
			Name: "nested_sum",
			Source: `int main() {
  int i = 0;
  int s = 0;
  while (i < 3) {
    int j = 0;
    while (j < 4) {
      s = s + 1;
      j = j + 1;
    }
    i = i + 1;
  }
  return s;
}
`,
			AST: func() *ast.Func {
				return ast.NewFunc("main",
					ast.Decl("i", ast.Int(0)),
					ast.Decl("s", ast.Int(0)),
					ast.While(ast.Bin("<", ast.Var("i"), ast.Int(3)),
						ast.Decl("j", ast.Int(0)),
						ast.While(ast.Bin("<", ast.Var("j"), ast.Int(4)),
							ast.Assign("s", ast.Bin("+", ast.Var("s"), ast.Int(1))),
							ast.Assign("j", ast.Bin("+", ast.Var("j"), ast.Int(1))),
						),
						ast.Assign("i", ast.Bin("+", ast.Var("i"), ast.Int(1))),
					),
					ast.Return(ast.Var("s")),
				)
			},
			Result: 12,
		},
		{
			Name:   "undefined_is_zero",
			Source: "int main() { int y; return y + 1; }\n",
			AST: func() *ast.Func {
				return ast.NewFunc("main",
					ast.Decl("y", nil),
					ast.Return(ast.Bin("+", ast.Var("y"), ast.Int(1))),
				)
			},
			Result: 1,
		},
		{
			Name:   "negative_result",
			Source: "int main() { int x = -4; return x * 2 - (0 - 1); }\n",
			AST: func() *ast.Func {
				return ast.NewFunc("main",
					ast.Decl("x", ast.Bin("-", ast.Int(0), ast.Int(4))),
					ast.Return(ast.Bin("-",
						ast.Bin("*", ast.Var("x"), ast.Int(2)),
						ast.Bin("-", ast.Int(0), ast.Int(1)),
					)),
				)
			},
			Result: -7,
		},
	}
}

// Lookup returns the sample program with the given name.
func Lookup(name string) (Program, bool) {
	for _, p := range Programs() {
		if p.Name == name {
			return p, true
		}
	}
	return Program{}, false
}
