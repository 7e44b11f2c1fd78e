package param

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Expr is a parsed constraint expression: arithmetic over named parameter
// references. Supported syntax: floating point literals, identifiers,
// + - * / and ** (power), unary minus, parentheses, and one-argument calls
// of sqrt, exp, log, abs, sin, cos and atan.
type Expr struct {
	root node
	src  string
	refs []string
}

// ParseExpr parses src into an expression AST.
func ParseExpr(src string) (*Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := &exprParser{toks: toks, src: src}
	root, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, fmt.Errorf("%w: unexpected %q in %q", ErrBadExpression, p.peek().text, src)
	}

	refSet := map[string]struct{}{}
	collectRefs(root, refSet)
	refs := make([]string, 0, len(refSet))
	for name := range refSet {
		refs = append(refs, name)
	}
	sort.Strings(refs)

	return &Expr{root: root, src: src, refs: refs}, nil
}

// String returns the original expression source.
func (e *Expr) String() string { return e.src }

// Refs returns the referenced parameter names in sorted order.
func (e *Expr) Refs() []string {
	out := make([]string, len(e.refs))
	copy(out, e.refs)
	return out
}

// Eval evaluates the expression against the given name lookup.
func (e *Expr) Eval(lookup func(string) (float64, bool)) (float64, error) {
	return e.root.eval(lookup)
}

// AST nodes.

type node interface {
	eval(lookup func(string) (float64, bool)) (float64, error)
}

type numNode float64

func (n numNode) eval(func(string) (float64, bool)) (float64, error) {
	return float64(n), nil
}

type refNode string

func (n refNode) eval(lookup func(string) (float64, bool)) (float64, error) {
	v, ok := lookup(string(n))
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, string(n))
	}
	return v, nil
}

type negNode struct{ arg node }

func (n negNode) eval(lookup func(string) (float64, bool)) (float64, error) {
	v, err := n.arg.eval(lookup)
	return -v, err
}

type binNode struct {
	op          byte // '+', '-', '*', '/', '^' (power)
	left, right node
}

func (n binNode) eval(lookup func(string) (float64, bool)) (float64, error) {
	l, err := n.left.eval(lookup)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(lookup)
	if err != nil {
		return 0, err
	}

	switch n.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		return l / r, nil
	default:
		return math.Pow(l, r), nil
	}
}

type callNode struct {
	fn  func(float64) float64
	arg node
}

func (n callNode) eval(lookup func(string) (float64, bool)) (float64, error) {
	v, err := n.arg.eval(lookup)
	if err != nil {
		return 0, err
	}
	return n.fn(v), nil
}

func collectRefs(n node, out map[string]struct{}) {
	switch v := n.(type) {
	case refNode:
		out[string(v)] = struct{}{}
	case negNode:
		collectRefs(v.arg, out)
	case binNode:
		collectRefs(v.left, out)
		collectRefs(v.right, out)
	case callNode:
		collectRefs(v.arg, out)
	}
}

var exprFuncs = map[string]func(float64) float64{
	"sqrt": math.Sqrt,
	"exp":  math.Exp,
	"log":  math.Log,
	"abs":  math.Abs,
	"sin":  math.Sin,
	"cos":  math.Cos,
	"atan": math.Atan,
}

// Lexer.

type tokKind int

const (
	tokEOF tokKind = iota
	tokNumber
	tokIdent
	tokOp     // + - * /
	tokPow    // **
	tokLParen // (
	tokRParen // )
)

type token struct {
	kind tokKind
	text string
}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == '*' && i+1 < len(src) && src[i+1] == '*':
			toks = append(toks, token{tokPow, "**"})
			i += 2
		case c == '+' || c == '-' || c == '*' || c == '/':
			toks = append(toks, token{tokOp, string(c)})
			i++
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.' ||
				src[j] == 'e' || src[j] == 'E' ||
				((src[j] == '+' || src[j] == '-') && j > i && (src[j-1] == 'e' || src[j-1] == 'E'))) {
				j++
			}
			toks = append(toks, token{tokNumber, src[i:j]})
			i = j
		case isIdentStart(c):
			j := i
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			toks = append(toks, token{tokIdent, src[i:j]})
			i = j
		default:
			return nil, fmt.Errorf("%w: unexpected character %q in %q", ErrBadExpression, string(c), src)
		}
	}
	toks = append(toks, token{tokEOF, ""})
	return toks, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

// Parser: recursive descent. Precedence (loose to tight): sum, product,
// unary minus, power, primary. Power is right-associative and binds tighter
// than unary minus on its left, so -x**2 parses as -(x**2).

type exprParser struct {
	toks []token
	pos  int
	src  string
}

func (p *exprParser) peek() token { return p.toks[p.pos] }
func (p *exprParser) next() token { t := p.toks[p.pos]; p.pos++; return t }
func (p *exprParser) eof() bool   { return p.peek().kind == tokEOF }

func (p *exprParser) parseSum() (node, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && (p.peek().text == "+" || p.peek().text == "-") {
		op := p.next().text[0]
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = binNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parseProduct() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && (p.peek().text == "*" || p.peek().text == "/") {
		op := p.next().text[0]
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parseUnary() (node, error) {
	if p.peek().kind == tokOp && p.peek().text == "-" {
		p.next()
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return negNode{arg: arg}, nil
	}
	if p.peek().kind == tokOp && p.peek().text == "+" {
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *exprParser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokPow {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return binNode{op: '^', left: base, right: exp}, nil
	}
	return base, nil
}

func (p *exprParser) parsePrimary() (node, error) {
	switch t := p.next(); t.kind {
	case tokNumber:
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q in %q", ErrBadExpression, t.text, p.src)
		}
		return numNode(v), nil

	case tokIdent:
		if p.peek().kind == tokLParen {
			fn, ok := exprFuncs[strings.ToLower(t.text)]
			if !ok {
				return nil, fmt.Errorf("%w: unknown function %q in %q", ErrBadExpression, t.text, p.src)
			}
			p.next() // consume (
			arg, err := p.parseSum()
			if err != nil {
				return nil, err
			}
			if p.next().kind != tokRParen {
				return nil, fmt.Errorf("%w: missing ) in %q", ErrBadExpression, p.src)
			}
			return callNode{fn: fn, arg: arg}, nil
		}
		return refNode(t.text), nil

	case tokLParen:
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.next().kind != tokRParen {
			return nil, fmt.Errorf("%w: missing ) in %q", ErrBadExpression, p.src)
		}
		return inner, nil

	default:
		return nil, fmt.Errorf("%w: unexpected %q in %q", ErrBadExpression, t.text, p.src)
	}
}
