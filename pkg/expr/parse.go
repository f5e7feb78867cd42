package expr

import (
	"bytes"
	"errors"
	"strings"

	"src.circular.dev/pkg/diag"
)

// Name of expression sources in error messages.
const sourceName = "[expression]"

func newError(text string, shouldbe ...string) error {
	if len(shouldbe) == 0 {
		return errors.New(text)
	}
	var buf bytes.Buffer
	if len(text) > 0 {
		buf.WriteString(text + ", ")
	}
	buf.WriteString("should be " + shouldbe[0])
	for i, opt := range shouldbe[1:] {
		if i == len(shouldbe)-2 {
			buf.WriteString(" or ")
		} else {
			buf.WriteString(", ")
		}
		buf.WriteString(opt)
	}
	return errors.New(buf.String())
}

// Errors.
var (
	errShouldBeAttrName    = newError("", "attribute name")
	errShouldBeVarName     = newError("", "variable name")
	errShouldBeIn          = newError("", "'in'")
	errShouldBeRBracket    = newError("", "']'")
	errShouldBeRParen      = newError("", "')'")
	errShouldBeCommaOrEnd  = newError("", "','", "']'")
	errShouldBeArgSep      = newError("", "','", "')'")
	errEmptyIndex          = newError("empty index")
	errPositionalAfterKw   = newError("positional argument follows keyword argument")
	errRepeatedKwarg       = newError("keyword argument repeated")
	errShouldBeInterpClose = newError("interpolation not terminated", "'}}'")
)

type parser struct {
	src string
	tz  *Tokenizer
	// Lookahead tokens, never Space.
	buf []Token
}

// Parses a whole expression.
func parse(src string) (Node, error) {
	n, _, err := parsePrefix(src, false)
	return n, err
}

// Parses an expression at the start of src. If lenient is true, parsing
// stops at the first token that cannot continue the expression, and the
// offset of that token is returned; otherwise such a token is an error.
func parsePrefix(src string, lenient bool) (Node, int, error) {
	ps := &parser{src: src, tz: Tokenize(src)}
	n, err := ps.expr(stopAt(), lenient)
	if err != nil {
		return nil, 0, err
	}
	t, err := ps.peek()
	if err != nil {
		return nil, 0, err
	}
	return n, t.From, nil
}

func (ps *parser) peekAt(i int) (Token, error) {
	for len(ps.buf) <= i {
		t, err := ps.tz.Next()
		if err != nil {
			return Token{}, err
		}
		if t.Kind != Space {
			ps.buf = append(ps.buf, t)
		}
	}
	return ps.buf[i], nil
}

func (ps *parser) peek() (Token, error) { return ps.peekAt(0) }

func (ps *parser) next() (Token, error) {
	t, err := ps.peek()
	if err == nil {
		ps.buf = ps.buf[1:]
	}
	return t, err
}

// Consumes a token of kind k, failing with e otherwise.
func (ps *parser) expect(k TokenKind, e error) (Token, error) {
	t, err := ps.next()
	if err != nil {
		return t, err
	}
	if t.Kind != k {
		return t, ps.errorAt(t, e)
	}
	return t, nil
}

func (ps *parser) errorAt(t Token, e error) error {
	r := t.Ranging
	if r.To == r.From && r.To < len(ps.src) {
		r.To++
	}
	return &diag.Error{
		Type:    "parse error",
		Message: e.Error(),
		Context: *diag.NewContext(sourceName, ps.src, r),
	}
}

func (ps *parser) unexpected(t Token) error {
	if t.Kind == EOF {
		return ps.errorAt(t, errors.New("unexpected end of expression"))
	}
	return ps.errorAt(t, errors.New("unexpected "+describe(ps.src, t)))
}

func describe(src string, t Token) string {
	return "'" + src[t.From:t.To] + "'"
}

// A stop condition: a token that ends the expression being parsed.
type stop func(Token) bool

func stopAt(kinds ...TokenKind) stop {
	return func(t Token) bool {
		for _, k := range kinds {
			if t.Kind == k {
				return true
			}
		}
		return false
	}
}

func (s stop) orKeyword(kw string) stop {
	return func(t Token) bool { return s(t) || t.Kind == Keyword && t.Value == kw }
}

// An operator waiting on the operator stack.
type pendingOp struct {
	op    string
	prio  int
	unary bool
}

// Parses an expression with an operator-precedence algorithm, until EOF or a
// token satisfying stop.
func (ps *parser) expr(stop stop, lenient bool) (Node, error) {
	var operands []Node
	var ops []pendingOp
	reduce := func() {
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		right := operands[len(operands)-1]
		operands = operands[:len(operands)-1]
		if op.unary {
			operands = append(operands, newOp(op.op, nil, right))
			return
		}
		left := operands[len(operands)-1]
		operands[len(operands)-1] = newOp(op.op, left, right)
	}
	expectOperand := true
loop:
	for {
		t, err := ps.peek()
		if err != nil {
			return nil, err
		}
		if expectOperand {
			var operand Node
			switch {
			case t.Kind == Number || t.Kind == String:
				ps.next()
				operand = newConst(t.Value)
			case t.Kind == Name:
				ps.next()
				operand = newIdent(t.Value.(string))
			case t.Kind == LBracketList:
				operand, err = ps.list()
			case t.Kind == LParenGroup:
				ps.next()
				operand, err = ps.expr(stopAt(RParen), false)
				if err == nil {
					_, err = ps.expect(RParen, errShouldBeRParen)
				}
			case t.Kind == Operator && t.Value == "-":
				ps.next()
				ops = append(ops, pendingOp{"-", prioPow, true})
				continue
			case t.Kind == Operator && t.Value == "not":
				ps.next()
				ops = append(ops, pendingOp{"not", prioNot, true})
				continue
			default:
				return nil, ps.unexpected(t)
			}
			if err != nil {
				return nil, err
			}
			operands = append(operands, operand)
			expectOperand = false
			continue
		}

		if t.Kind == EOF || stop(t) {
			break
		}
		top := &operands[len(operands)-1]
		switch {
		case t.Kind == Dot:
			ps.next()
			name, err := ps.expect(Name, errShouldBeAttrName)
			if err != nil {
				return nil, err
			}
			*top = newAttr(*top, name.Value.(string))
		case t.Kind == LBracketIndex:
			ps.next()
			sub, err := ps.slice()
			if err != nil {
				return nil, err
			}
			*top = newIndex(*top, sub)
		case t.Kind == LParenCall:
			ps.next()
			args, err := ps.args()
			if err != nil {
				return nil, err
			}
			*top = newOp("()", *top, args)
		case t.Kind == Operator || t.Kind == Keyword && t.Value == "in":
			op := t.Value.(string)
			prio, ok := binaryPriority[op]
			if !ok {
				if lenient {
					break loop
				}
				return nil, ps.unexpected(t)
			}
			ps.next()
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				// "**" is right-associative.
				if top.prio > prio || top.prio == prio && op != "**" {
					reduce()
				} else {
					break
				}
			}
			ops = append(ops, pendingOp{op, prio, false})
			expectOperand = true
		default:
			if lenient {
				break loop
			}
			return nil, ps.unexpected(t)
		}
	}
	for len(ops) > 0 {
		reduce()
	}
	return operands[0], nil
}

// Parses a list literal or a list comprehension, starting from "[".
func (ps *parser) list() (Node, error) {
	ps.next()
	t, err := ps.peek()
	if err != nil {
		return nil, err
	}
	if t.Kind == RBracket {
		ps.next()
		return newList(nil), nil
	}
	first, err := ps.expr(stopAt(RBracket, Comma).orKeyword("for"), false)
	if err != nil {
		return nil, err
	}
	if t, _ := ps.peek(); t.Kind == Keyword && t.Value == "for" {
		return ps.comprehension(first)
	}
	items := []Node{first}
	for {
		t, err := ps.next()
		if err != nil {
			return nil, err
		}
		switch t.Kind {
		case RBracket:
			return newList(items), nil
		case Comma:
			if t, err := ps.peek(); err == nil && t.Kind == RBracket {
				// Trailing comma.
				continue
			}
			item, err := ps.expr(stopAt(RBracket, Comma), false)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		default:
			return nil, ps.errorAt(t, errShouldBeCommaOrEnd)
		}
	}
}

// Parses the part of a list comprehension after its expression, starting
// from "for".
func (ps *parser) comprehension(expr Node) (Node, error) {
	ps.next()
	v, err := ps.expect(Name, errShouldBeVarName)
	if err != nil {
		return nil, err
	}
	if _, ok := constants[v.Value.(string)]; ok {
		return nil, ps.errorAt(v, errShouldBeVarName)
	}
	in, err := ps.next()
	if err != nil {
		return nil, err
	}
	if in.Kind != Keyword || in.Value != "in" {
		return nil, ps.errorAt(in, errShouldBeIn)
	}
	src, err := ps.expr(stopAt(RBracket).orKeyword("if"), false)
	if err != nil {
		return nil, err
	}
	var cond Node
	if t, _ := ps.peek(); t.Kind == Keyword && t.Value == "if" {
		ps.next()
		cond, err = ps.expr(stopAt(RBracket), false)
		if err != nil {
			return nil, err
		}
	}
	if _, err := ps.expect(RBracket, errShouldBeRBracket); err != nil {
		return nil, err
	}
	return newListCompr(expr, v.Value.(string), src, cond), nil
}

// Parses an index or a slice, after "[" and up to and including "]".
func (ps *parser) slice() (*Slice, error) {
	var parts [3]Node
	colons := 0
	for i := 0; i < 3; i++ {
		t, err := ps.peek()
		if err != nil {
			return nil, err
		}
		if t.Kind != Colon && t.Kind != RBracket {
			parts[i], err = ps.expr(stopAt(Colon, RBracket), false)
			if err != nil {
				return nil, err
			}
		}
		if t, _ := ps.peek(); t.Kind != Colon || i == 2 {
			break
		}
		ps.next()
		colons++
	}
	end, err := ps.expect(RBracket, errShouldBeRBracket)
	if err != nil {
		return nil, err
	}
	if colons == 0 && parts[0] == nil {
		return nil, ps.errorAt(end, errEmptyIndex)
	}
	return newSlice(parts, colons > 0), nil
}

// Parses the arguments of a call, after "(" and up to and including ")".
func (ps *parser) args() (*FuncArgs, error) {
	var positional, kwValues []Node
	var kwNames []string
	for {
		t, err := ps.peek()
		if err != nil {
			return nil, err
		}
		if t.Kind == RParen {
			ps.next()
			break
		}
		t2, err := ps.peekAt(1)
		if err != nil {
			return nil, err
		}
		if t.Kind == Name && t2.Kind == Equal {
			name := t.Value.(string)
			for _, existing := range kwNames {
				if existing == name {
					return nil, ps.errorAt(t, errRepeatedKwarg)
				}
			}
			ps.next()
			ps.next()
			v, err := ps.expr(stopAt(Comma, RParen), false)
			if err != nil {
				return nil, err
			}
			kwNames = append(kwNames, name)
			kwValues = append(kwValues, v)
		} else {
			if len(kwNames) > 0 {
				return nil, ps.errorAt(t, errPositionalAfterKw)
			}
			v, err := ps.expr(stopAt(Comma, RParen), false)
			if err != nil {
				return nil, err
			}
			positional = append(positional, v)
		}
		sep, err := ps.next()
		if err != nil {
			return nil, err
		}
		if sep.Kind == RParen {
			break
		}
		if sep.Kind != Comma {
			return nil, ps.errorAt(sep, errShouldBeArgSep)
		}
	}
	return newFuncArgs(positional, kwNames, kwValues), nil
}

// Parses a string with interpolations like "a {{ x }} b" into a list of
// nodes: a Const for every literal part and a Fragment for every
// interpolation.
func parseInterpolated(src string, parsePrefix func(string) (Node, int, error)) ([]Node, error) {
	var nodes []Node
	rest := src
	for {
		i := strings.Index(rest, "{{")
		if i == -1 {
			break
		}
		if i > 0 {
			nodes = append(nodes, newConst(rest[:i]))
		}
		offset := len(src) - len(rest) + i + 2
		n, end, err := parsePrefix(rest[i+2:])
		if err != nil {
			return nil, shiftError(err, src, offset)
		}
		after := rest[i+2+end:]
		if !strings.HasPrefix(after, "}}") {
			pos := offset + end
			return nil, &diag.Error{
				Type:    "parse error",
				Message: errShouldBeInterpClose.Error(),
				Context: *diag.NewContext(sourceName, src, diag.PointRanging(pos)),
			}
		}
		nodes = append(nodes, newFragment(n))
		rest = after[2:]
	}
	if rest != "" {
		nodes = append(nodes, newConst(rest))
	}
	return nodes, nil
}

// Moves the context of a parse error in a part of src starting at offset to
// src itself.
func shiftError(err error, src string, offset int) error {
	var e *diag.Error
	if !errors.As(err, &e) {
		return err
	}
	shifted := *e
	r := e.Context.Ranging
	shifted.Context = *diag.NewContext(sourceName, src,
		diag.Ranging{From: r.From + offset, To: r.To + offset})
	return &shifted
}
