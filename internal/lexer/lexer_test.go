package lexer

import (
	"testing"

	"github.com/matryer/is"

	"github.com/yang-sanmu/EasyExpression/internal/token"
)

func collect(t *testing.T, src string, opts Options) []token.Token {
	t.Helper()
	l := New(src, opts)
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("unexpected lex error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestOperators(t *testing.T) {
	is := is.New(t)
	toks := collect(t, "== != >= <= && || + - * / % ! > <", Options{})
	kinds := []token.Kind{
		token.Eq, token.Ne, token.Ge, token.Le, token.And, token.Or,
		token.Plus, token.Minus, token.Star, token.Slash, token.Percent,
		token.Bang, token.Gt, token.Lt, token.EOF,
	}
	is.Equal(len(toks), len(kinds))
	for i, k := range kinds {
		is.Equal(toks[i].Kind, k)
	}
}

func TestStringEscapes(t *testing.T) {
	is := is.New(t)
	toks := collect(t, `'a\'b\n\r\t\\c\d'`, Options{})
	is.Equal(toks[0].Kind, token.String)
	is.Equal(toks[0].Text, "a'b\n\r\t\\c\\d")
}

func TestNumber(t *testing.T) {
	is := is.New(t)
	toks := collect(t, "123 1.5 .25", Options{})
	is.Equal(toks[0].Text, "123")
	is.Equal(toks[1].Text, "1.5")
	is.Equal(toks[2].Text, ".25")
}

func TestCommentsEnabled(t *testing.T) {
	is := is.New(t)
	toks := collect(t, "1 // comment\n2 /* block */ 3", Options{EnableComments: true})
	var nums []string
	for _, tk := range toks {
		if tk.Kind == token.Number {
			nums = append(nums, tk.Text)
		}
	}
	is.Equal(len(nums), 3)
}

func TestCommentsDisabledLexesSlashesLiterally(t *testing.T) {
	is := is.New(t)
	toks := collect(t, "1 // 2", Options{EnableComments: false})
	is.Equal(toks[1].Kind, token.Slash)
	is.Equal(toks[2].Kind, token.Slash)
	is.Equal(toks[3].Kind, token.Number)
}

func TestFieldNameScan(t *testing.T) {
	is := is.New(t)
	l := New("[field name]", Options{})
	tok, err := l.Next()
	is.NoErr(err)
	is.Equal(tok.Kind, token.LBracket)

	name, err := l.ScanFieldName()
	is.NoErr(err)
	is.Equal(name.Text, "field name")

	tok, err = l.Next()
	is.NoErr(err)
	is.Equal(tok.Kind, token.RBracket)
}

func TestFieldNameWithTypeHint(t *testing.T) {
	is := is.New(t)
	l := New("[amount:decimal]", Options{})
	_, _ = l.Next() // [
	name, err := l.ScanFieldName()
	is.NoErr(err)
	is.Equal(name.Text, "amount")

	colon, _ := l.Next()
	is.Equal(colon.Kind, token.Colon)
	hint, _ := l.Next()
	is.Equal(hint.Text, "decimal")
}

func TestNewlineIsOneTokenForCRLF(t *testing.T) {
	is := is.New(t)
	toks := collect(t, "1\r\n2", Options{})
	is.Equal(toks[0].Kind, token.Number)
	is.Equal(toks[1].Kind, token.NewLine)
	is.Equal(toks[2].Kind, token.Number)
	is.Equal(toks[2].Line, 2)
}

func TestUnterminatedString(t *testing.T) {
	l := New("'abc", Options{})
	_, err := l.Next()
	if err == nil {
		t.Fatal("expected unterminated string error")
	}
}

func TestNewlineInFieldNameIsError(t *testing.T) {
	l := New("[field\nname]", Options{})
	_, _ = l.Next()
	_, err := l.ScanFieldName()
	if err == nil {
		t.Fatal("expected newline-in-field-name error")
	}
}
