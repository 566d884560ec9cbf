// Package exprtree implements a small arithmetic interpreter that evaluates
// expressions through an explicit, inspectable computation tree.
//
// Evaluation happens in three steps. Tokenize turns text like "3+4*ABS(-2)"
// into a flat list of tokens, ParseTokens turns tokens into a Tree honoring
// precedence, parentheses, and function calls, and Expr.Eval walks the tree
// bottom-up with a set of variable values and a NullPolicy deciding what
// happens to variables that are present but have no value.
//
// Every operator and function comes from a Registry. Registries are built once
// and never change afterward, so one Registry and any Expr parsed with it may
// be shared freely between goroutines.
package exprtree
