// Package rules implements the condition language that decides whether a
// stored rule fires for an inbound payload. Conditions are boolean
// expressions over dotted field paths rooted at "payload", e.g.
//
//	payload.category === "incident" && payload.priority >= 3
//
// The language supports comparisons, && / || / !, parentheses and bare-path
// truthiness. It deliberately cannot call functions or mutate anything.
package rules

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Program is a compiled condition ready for evaluation.
type Program struct {
	root node
}

// Compile parses a condition expression. The source is the whole condition,
// not a statement body; a parse error means the rule can never match.
func Compile(src string) (*Program, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, fmt.Errorf("unexpected %q at end of condition", p.peek().text)
	}
	return &Program{root: root}, nil
}

// Eval evaluates the condition against a decoded JSON payload and returns its
// truthiness. Absent fields resolve to null and never cause an error; an
// evaluation error can only come from an operator applied to incompatible
// operands.
func (prog *Program) Eval(payload any) (bool, error) {
	v, err := prog.root.eval(payload)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

// ---- lexer ----

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokNumber
	tokString
	tokOp     // comparison / boolean operators
	tokLParen
	tokRParen
	tokDot
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
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == '.':
			toks = append(toks, token{tokDot, "."})
			i++
		case c == '\'' || c == '"':
			quote := c
			j := i + 1
			var sb strings.Builder
			for j < len(src) && src[j] != quote {
				if src[j] == '\\' && j+1 < len(src) {
					j++
					switch src[j] {
					case 'n':
						sb.WriteByte('\n')
					case 't':
						sb.WriteByte('\t')
					case 'r':
						sb.WriteByte('\r')
					default:
						sb.WriteByte(src[j])
					}
					j++
					continue
				}
				sb.WriteByte(src[j])
				j++
			}
			if j >= len(src) {
				return nil, fmt.Errorf("unterminated string starting at offset %d", i)
			}
			toks = append(toks, token{tokString, sb.String()})
			i = j + 1
		case c >= '0' && c <= '9' || (c == '-' && i+1 < len(src) && src[i+1] >= '0' && src[i+1] <= '9' && startsOperand(toks)):
			j := i + 1
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.') {
				j++
			}
			toks = append(toks, token{tokNumber, src[i:j]})
			i = j
		case isIdentStart(rune(c)):
			j := i + 1
			for j < len(src) && isIdentPart(rune(src[j])) {
				j++
			}
			toks = append(toks, token{tokIdent, src[i:j]})
			i = j
		default:
			op, n := lexOperator(src[i:])
			if n == 0 {
				return nil, fmt.Errorf("unexpected character %q at offset %d", c, i)
			}
			toks = append(toks, token{tokOp, op})
			i += n
		}
	}
	toks = append(toks, token{tokEOF, ""})
	return toks, nil
}

// startsOperand reports whether a '-' at this point begins a negative number
// rather than (unsupported) subtraction.
func startsOperand(toks []token) bool {
	if len(toks) == 0 {
		return true
	}
	k := toks[len(toks)-1].kind
	return k == tokOp || k == tokLParen
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$'
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

var operators = []string{"===", "!==", "==", "!=", ">=", "<=", "&&", "||", ">", "<", "!"}

func lexOperator(s string) (string, int) {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return op, len(op)
		}
	}
	return "", 0
}

// ---- parser ----

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) atEnd() bool { return p.peek().kind == tokEOF }

func (p *parser) acceptOp(op string) bool {
	if p.peek().kind == tokOp && p.peek().text == op {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.acceptOp("||") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: "||", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.acceptOp("&&") {
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: "&&", left: left, right: right}
	}
	return left, nil
}

var comparisonOps = map[string]string{
	"===": "==", "==": "==",
	"!==": "!=", "!=": "!=",
	">": ">", "<": "<", ">=": ">=", "<=": "<=",
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokOp {
		if op, ok := comparisonOps[p.peek().text]; ok {
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return &compareNode{op: op, left: left, right: right}, nil
		}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.acceptOp("!") {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &notNode{inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t := p.peek()
	switch t.kind {
	case tokLParen:
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.next().kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		return inner, nil
	case tokNumber:
		p.next()
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", t.text)
		}
		return &literalNode{value: f}, nil
	case tokString:
		p.next()
		return &literalNode{value: t.text}, nil
	case tokIdent:
		switch t.text {
		case "true":
			p.next()
			return &literalNode{value: true}, nil
		case "false":
			p.next()
			return &literalNode{value: false}, nil
		case "null", "undefined":
			p.next()
			return &literalNode{value: nil}, nil
		}
		return p.parsePath()
	}
	return nil, fmt.Errorf("unexpected %q in condition", t.text)
}

func (p *parser) parsePath() (node, error) {
	first := p.next()
	segs := []string{first.text}
	for p.peek().kind == tokDot {
		p.next()
		seg := p.next()
		if seg.kind != tokIdent {
			return nil, fmt.Errorf("expected field name after '.', got %q", seg.text)
		}
		segs = append(segs, seg.text)
	}
	// Conditions are written against a variable named "payload"; the leading
	// segment addresses the payload root itself.
	if segs[0] == "payload" {
		segs = segs[1:]
	}
	return &pathNode{segments: segs}, nil
}

// ---- evaluation ----

type node interface {
	eval(payload any) (any, error)
}

type literalNode struct{ value any }

func (n *literalNode) eval(any) (any, error) { return n.value, nil }

type pathNode struct{ segments []string }

func (n *pathNode) eval(payload any) (any, error) {
	return LookupPath(payload, n.segments), nil
}

type notNode struct{ inner node }

func (n *notNode) eval(payload any) (any, error) {
	v, err := n.inner.eval(payload)
	if err != nil {
		return nil, err
	}
	return !truthy(v), nil
}

type binaryNode struct {
	op          string
	left, right node
}

func (n *binaryNode) eval(payload any) (any, error) {
	lv, err := n.left.eval(payload)
	if err != nil {
		return nil, err
	}
	if n.op == "&&" && !truthy(lv) {
		return false, nil
	}
	if n.op == "||" && truthy(lv) {
		return true, nil
	}
	rv, err := n.right.eval(payload)
	if err != nil {
		return nil, err
	}
	return truthy(rv), nil
}

type compareNode struct {
	op          string
	left, right node
}

func (n *compareNode) eval(payload any) (any, error) {
	lv, err := n.left.eval(payload)
	if err != nil {
		return nil, err
	}
	rv, err := n.right.eval(payload)
	if err != nil {
		return nil, err
	}
	return compare(lv, n.op, rv)
}

// compare applies a comparison operator to two resolved values. Values of
// mismatched types are never equal and never ordered; null takes part only in
// equality checks. There is no type coercion, so == and === behave the same.
func compare(a any, op string, b any) (bool, error) {
	switch op {
	case "==":
		return looseEqual(a, b), nil
	case "!=":
		return !looseEqual(a, b), nil
	}

	af, aok := toNumber(a)
	bf, bok := toNumber(b)
	if aok && bok {
		switch op {
		case ">":
			return af > bf, nil
		case "<":
			return af < bf, nil
		case ">=":
			return af >= bf, nil
		case "<=":
			return af <= bf, nil
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		switch op {
		case ">":
			return as > bs, nil
		case "<":
			return as < bs, nil
		case ">=":
			return as >= bs, nil
		case "<=":
			return as <= bs, nil
		}
	}
	if a == nil || b == nil {
		return false, nil
	}
	return false, fmt.Errorf("cannot order %T %s %T", a, op, b)
}

func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, ok := toNumber(a); ok {
		if bf, ok := toNumber(b); ok {
			return af == bf
		}
		return false
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// truthy follows JavaScript semantics: null, false, 0, "" are false;
// objects and arrays (even empty ones) are true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	}
	return true
}

// LookupPath walks a decoded JSON value segment by segment. A missing segment
// or a non-object intermediate yields nil rather than an error.
func LookupPath(v any, segments []string) any {
	cur := v
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}
