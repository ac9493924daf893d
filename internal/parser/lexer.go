package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes optimix source. Keywords are split from identifiers so a
// variable can never be named like one.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Keyword", Pattern: `\b(int|while|return|print)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Integer", Pattern: `[0-9]+`},
	{Name: "Operator", Pattern: `==|!=|[-+*/<>=]`},
	{Name: "Punct", Pattern: `[(){}\[\];]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})
