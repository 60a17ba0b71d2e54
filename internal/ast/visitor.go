package ast

// Walk visits every node in block in depth-first, source order, calling
// visitExpr for each expression node and visitStmt for each statement
// node. Either callback may be nil. CountNodes is built on it, and both
// the facade's precompile size check and the validation analyzer's
// TotalNodes take their count from CountNodes. The analyzer's other
// statistics come from its own traversal, and the budget controller
// counts visits during evaluation without using Walk.
func Walk(block *Block, visitStmt func(Stmt), visitExpr func(Expr)) {
	if block == nil {
		return
	}
	walkBlock(block, visitStmt, visitExpr)
}

func walkBlock(b *Block, vs func(Stmt), ve func(Expr)) {
	if b == nil {
		return
	}
	if vs != nil {
		vs(b)
	}
	for _, s := range b.Statements {
		walkStmt(s, vs, ve)
	}
}

func walkStmt(s Stmt, vs func(Stmt), ve func(Expr)) {
	if s == nil {
		return
	}
	if vs != nil {
		vs(s)
	}
	switch n := s.(type) {
	case *Set:
		walkExpr(n.Value, ve)
	case *Msg:
		// no child expressions
	case *Return:
		// leaf
	case *Assert:
		walkExpr(n.Cond, ve)
	case *If:
		walkExpr(n.Cond, ve)
		walkBlock(n.Then, vs, ve)
		for _, ei := range n.ElseIfs {
			walkExpr(ei.Cond, ve)
			walkBlock(ei.Block, vs, ve)
		}
		if n.Else != nil {
			walkBlock(n.Else, vs, ve)
		}
	case *Local:
		walkBlock(n.Body, vs, ve)
	case *Block:
		for _, s2 := range n.Statements {
			walkStmt(s2, vs, ve)
		}
	}
}

func walkExpr(e Expr, ve func(Expr)) {
	if e == nil {
		return
	}
	if ve != nil {
		ve(e)
	}
	switch n := e.(type) {
	case *Literal, *Field, *Now:
		// leaves
	case *Unary:
		walkExpr(n.Inner, ve)
	case *Binary:
		walkExpr(n.Left, ve)
		walkExpr(n.Right, ve)
	case *Call:
		for _, a := range n.Args {
			walkExpr(a, ve)
		}
	}
}

// CountNodes returns the total number of expression and statement nodes
// in block, used by the facade's precompile Options.maxNodes check.
func CountNodes(block *Block) int {
	n := 0
	Walk(block, func(Stmt) { n++ }, func(Expr) { n++ })
	return n
}
