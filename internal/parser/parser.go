// Package parser implements the recursive-descent parser that turns a
// token stream into a position-annotated ast.Block.
package parser

import (
	"github.com/yang-sanmu/EasyExpression/internal/ast"
	"github.com/yang-sanmu/EasyExpression/internal/errs"
	"github.com/yang-sanmu/EasyExpression/internal/lexer"
	"github.com/yang-sanmu/EasyExpression/internal/token"
)

// Parser turns a token stream into an ast.Block.
type Parser struct {
	lex *lexer.Lexer
	cur token.Token
}

// Parse lexes and parses src, returning the top-level block.
func Parse(src string, enableComments bool) (*ast.Block, error) {
	l := lexer.New(src, lexer.Options{EnableComments: enableComments})
	p := &Parser{lex: l}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseScript()
}

func (p *Parser) advance() error {
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *Parser) at(k token.Kind) bool { return p.cur.Kind == k }

func (p *Parser) skipNewlines() error {
	for p.at(token.NewLine) {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if !p.at(k) {
		if p.at(token.EOF) {
			return token.Token{}, errs.New(errs.UnexpectedEndOfFile, p.cur.Line, p.cur.Column,
				"expected %s, reached end of file", k)
		}
		return token.Token{}, errs.New(errs.UnexpectedToken, p.cur.Line, p.cur.Column,
			"expected %s, got %s", k, p.cur.Kind)
	}
	t := p.cur
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return t, nil
}

// keywordAt reports whether the current token is the identifier spelling
// (case-insensitive) of kw.
func (p *Parser) keywordAt(kw string) bool {
	if !p.at(token.Identifier) {
		return false
	}
	k, ok := token.LookupKeyword(p.cur.Text)
	return ok && k == kw
}

func (p *Parser) parseScript() (*ast.Block, error) {
	start := ast.Pos{Line: p.cur.Line, Column: p.cur.Column}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	if p.at(token.LBrace) {
		body, err := p.parseBracedBlock()
		if err != nil {
			return nil, err
		}
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if !p.at(token.EOF) {
			return nil, errs.New(errs.UnexpectedToken, p.cur.Line, p.cur.Column,
				"unexpected %s after top-level block", p.cur.Kind)
		}
		body.Pos = start
		return body, nil
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	if !p.at(token.EOF) {
		return nil, errs.New(errs.UnexpectedToken, p.cur.Line, p.cur.Column,
			"unexpected %s at top level", p.cur.Kind)
	}
	body.Pos = start
	return body, nil
}

func (p *Parser) parseBracedBlock() (*ast.Block, error) {
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	start, err := p.expect(token.LBrace)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	body.Pos = ast.Pos{Line: start.Line, Column: start.Column}
	return body, nil
}

func (p *Parser) parseBlockBody() (*ast.Block, error) {
	block := &ast.Block{}
	for {
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.at(token.EOF) || p.at(token.RBrace) {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
	}
	return block, nil
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	pos := ast.Pos{Line: p.cur.Line, Column: p.cur.Column}

	switch {
	case p.keywordAt("set"):
		return p.parseSet(pos)
	case p.keywordAt("msg"):
		return p.parseMsg(pos)
	case p.keywordAt("return"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Return{Pos: pos, Kind: ast.KindReturn}, nil
	case p.keywordAt("return_local"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Return{Pos: pos, Kind: ast.KindReturnLocal}, nil
	case p.keywordAt("assert"):
		return p.parseAssert(pos)
	case p.keywordAt("if"):
		return p.parseIf(pos)
	case p.keywordAt("local"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		body, err := p.parseBracedBlock()
		if err != nil {
			return nil, err
		}
		return &ast.Local{Pos: pos, Body: body}, nil
	}

	if p.at(token.EOF) {
		return nil, errs.New(errs.UnexpectedEndOfFile, pos.Line, pos.Column, "expected a statement, reached end of file")
	}
	return nil, errs.New(errs.UnexpectedToken, pos.Line, pos.Column, "expected a statement, got %s", p.cur.Kind)
}

func (p *Parser) parseSet(pos ast.Pos) (ast.Stmt, error) {
	if err := p.advance(); err != nil { // consume 'set'
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}

	var name, hint string
	if p.at(token.LBracket) {
		var err error
		name, hint, err = p.parseFieldTarget()
		if err != nil {
			return nil, err
		}
	} else if p.at(token.Identifier) {
		name = p.cur.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
	} else {
		return nil, errs.New(errs.UnexpectedToken, p.cur.Line, p.cur.Column, "expected field name in set()")
	}

	if _, err := p.expect(token.Comma); err != nil {
		return nil, err
	}
	valueExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return &ast.Set{Pos: pos, FieldName: name, Value: valueExpr, TypeHint: hint}, nil
}

// parseFieldTarget parses `[` fieldname (`:` IDENT)? `]` once the `[` has
// been recognized but not yet consumed, returning the field name and
// optional type hint.
func (p *Parser) parseFieldTarget() (name, hint string, err error) {
	if !p.at(token.LBracket) {
		_, err = p.expect(token.LBracket)
		return "", "", err
	}
	nameTok, err := p.lex.ScanFieldName()
	if err != nil {
		return "", "", err
	}
	if nameTok.Text == "" {
		return "", "", errs.New(errs.InvalidFieldName, nameTok.Line, nameTok.Column, "empty field name")
	}
	name = nameTok.Text
	if err = p.advance(); err != nil { // load the token after the field name (':' or ']')
		return "", "", err
	}
	if p.at(token.Colon) {
		if err = p.advance(); err != nil {
			return "", "", err
		}
		hintTok, err2 := p.expect(token.Identifier)
		if err2 != nil {
			return "", "", err2
		}
		hint = hintTok.Text
	}
	if _, err = p.expect(token.RBracket); err != nil {
		return "", "", err
	}
	return name, hint, nil
}

func (p *Parser) expectLiteralString() (string, ast.Pos, error) {
	pos := ast.Pos{Line: p.cur.Line, Column: p.cur.Column}
	if !p.at(token.String) {
		return "", pos, errs.New(errs.TypeMismatch, pos.Line, pos.Column,
			"expected a literal string, got %s", p.cur.Kind)
	}
	text := p.cur.Text
	if err := p.advance(); err != nil {
		return "", pos, err
	}
	return text, pos, nil
}

func (p *Parser) parseMsg(pos ast.Pos) (ast.Stmt, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	text, _, err := p.expectLiteralString()
	if err != nil {
		return nil, err
	}
	msg := &ast.Msg{Pos: pos, Text: text, Level: ast.LevelInfo}
	if p.at(token.Comma) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		levelText, levelPos, err := p.expectLiteralString()
		if err != nil {
			return nil, err
		}
		msg.Level = ast.ParseMsgLevel(levelText)
		msg.HasLevel = true
		_ = levelPos
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return msg, nil
}

func (p *Parser) parseAssert(pos ast.Pos) (ast.Stmt, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Comma); err != nil {
		return nil, err
	}
	actionText, actionPos, err := p.expectLiteralString()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Comma); err != nil {
		return nil, err
	}
	message, _, err := p.expectLiteralString()
	if err != nil {
		return nil, err
	}
	a := &ast.Assert{
		Pos:     pos,
		Cond:    cond,
		Action:  ast.ParseAssertAction(actionText),
		Message: message,
		Level:   ast.LevelInfo,
	}
	if a.Action == ast.ActionUnknown {
		return nil, errs.New(errs.UnknownOperator, actionPos.Line, actionPos.Column,
			"unknown assert action %q", actionText)
	}
	if p.at(token.Comma) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		levelText, _, err := p.expectLiteralString()
		if err != nil {
			return nil, err
		}
		a.Level = ast.ParseMsgLevel(levelText)
		a.HasLevel = true
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return a, nil
}

func (p *Parser) parseIf(pos ast.Pos) (ast.Stmt, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBracedBlock()
	if err != nil {
		return nil, err
	}

	node := &ast.If{Pos: pos, Cond: cond, Then: thenBlock}

	for {
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if !p.keywordAt("elseif") {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.LParen); err != nil {
			return nil, err
		}
		eiCond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		eiBlock, err := p.parseBracedBlock()
		if err != nil {
			return nil, err
		}
		node.ElseIfs = append(node.ElseIfs, ast.ElseIf{Cond: eiCond, Block: eiBlock})
	}

	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	if p.keywordAt("else") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseBlock, err := p.parseBracedBlock()
		if err != nil {
			return nil, err
		}
		node.Else = elseBlock
		node.HasElse = true
	}
	return node, nil
}

// --- expression grammar ---

func (p *Parser) parseExpr() (ast.Expr, error) { return p.parseOr() }

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(token.Or) {
		pos := ast.Pos{Line: p.cur.Line, Column: p.cur.Column}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: pos, Op: ast.Or, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.at(token.And) {
		pos := ast.Pos{Line: p.cur.Line, Column: p.cur.Column}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: pos, Op: ast.And, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.at(token.Eq) || p.at(token.Ne) {
		op := ast.Eq
		if p.at(token.Ne) {
			op = ast.Ne
		}
		pos := ast.Pos{Line: p.cur.Line, Column: p.cur.Column}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.at(token.Gt) || p.at(token.Lt) || p.at(token.Ge) || p.at(token.Le) {
		var op ast.BinaryOp
		switch p.cur.Kind {
		case token.Gt:
			op = ast.Gt
		case token.Lt:
			op = ast.Lt
		case token.Ge:
			op = ast.Ge
		case token.Le:
			op = ast.Le
		}
		pos := ast.Pos{Line: p.cur.Line, Column: p.cur.Column}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.at(token.Plus) || p.at(token.Minus) {
		op := ast.Add
		if p.at(token.Minus) {
			op = ast.Sub
		}
		pos := ast.Pos{Line: p.cur.Line, Column: p.cur.Column}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(token.Star) || p.at(token.Slash) || p.at(token.Percent) {
		var op ast.BinaryOp
		switch p.cur.Kind {
		case token.Star:
			op = ast.Mul
		case token.Slash:
			op = ast.Div
		case token.Percent:
			op = ast.Mod
		}
		pos := ast.Pos{Line: p.cur.Line, Column: p.cur.Column}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.at(token.Minus) || p.at(token.Bang) {
		op := ast.Neg
		if p.at(token.Bang) {
			op = ast.Not
		}
		pos := ast.Pos{Line: p.cur.Line, Column: p.cur.Column}
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Pos: pos, Op: op, Inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	pos := ast.Pos{Line: p.cur.Line, Column: p.cur.Column}

	switch {
	case p.at(token.LBracket):
		name, hint, err := p.parseFieldTarget()
		if err != nil {
			return nil, err
		}
		return &ast.Field{Pos: pos, Name: name, TypeHint: hint}, nil

	case p.at(token.Number):
		text := p.cur.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Literal{Pos: pos, Value: ast.LiteralValue{Kind: ast.KindNumber, Num: text}}, nil

	case p.at(token.String):
		text := p.cur.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Literal{Pos: pos, Value: ast.LiteralValue{Kind: ast.KindString, Str: text}}, nil

	case p.at(token.LParen):
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return inner, nil

	case p.at(token.Identifier):
		text := p.cur.Text
		switch text {
		case "true":
			if err := p.advance(); err != nil {
				return nil, err
			}
			return &ast.Literal{Pos: pos, Value: ast.LiteralValue{Kind: ast.KindBool, Bool: true}}, nil
		case "false":
			if err := p.advance(); err != nil {
				return nil, err
			}
			return &ast.Literal{Pos: pos, Value: ast.LiteralValue{Kind: ast.KindBool, Bool: false}}, nil
		case "null":
			if err := p.advance(); err != nil {
				return nil, err
			}
			return &ast.Literal{Pos: pos, Value: ast.LiteralValue{Kind: ast.KindNull}}, nil
		case "now":
			if err := p.advance(); err != nil {
				return nil, err
			}
			return &ast.Now{Pos: pos}, nil
		}

		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.at(token.LParen) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			var args []ast.Expr
			if !p.at(token.RParen) {
				for {
					arg, err := p.parseExpr()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if p.at(token.Comma) {
						if err := p.advance(); err != nil {
							return nil, err
						}
						continue
					}
					break
				}
			}
			if _, err := p.expect(token.RParen); err != nil {
				return nil, err
			}
			return &ast.Call{Pos: pos, Name: text, Args: args}, nil
		}
		return &ast.Field{Pos: pos, Name: text}, nil
	}

	if p.at(token.EOF) {
		return nil, errs.New(errs.UnexpectedEndOfFile, pos.Line, pos.Column, "expected an expression, reached end of file")
	}
	return nil, errs.New(errs.UnexpectedToken, pos.Line, pos.Column, "expected an expression, got %s", p.cur.Kind)
}
