package expr

import (
	"errors"
	"strconv"
	"strings"

	"src.circular.dev/pkg/diag"
)

// TokenKind is the kind of a Token.
type TokenKind int

// Possible values of TokenKind.
const (
	Space TokenKind = iota
	Number
	String
	Name
	// Keyword is one of "for", "if" and "in".
	Keyword
	// Operator is an arithmetic, comparison or boolean operator. The word
	// operators "and", "or", "not", "is" and "is not" are also Operator
	// tokens.
	Operator
	// LParenCall is a "(" that starts the arguments of a call.
	LParenCall
	// LParenGroup is a "(" that starts a parenthesized subexpression.
	LParenGroup
	RParen
	// LBracketList is a "[" that starts a list literal or comprehension.
	LBracketList
	// LBracketIndex is a "[" that starts an index or a slice.
	LBracketIndex
	RBracket
	// RBrace is "}". It can only appear at the end of an interpolation.
	RBrace
	Equal
	Colon
	Comma
	Dot
	Unknown
	EOF
)

var tokenKindNames = [...]string{
	Space: "Space", Number: "Number", String: "String", Name: "Name",
	Keyword: "Keyword", Operator: "Operator",
	LParenCall: "LParenCall", LParenGroup: "LParenGroup", RParen: "RParen",
	LBracketList: "LBracketList", LBracketIndex: "LBracketIndex",
	RBracket: "RBracket", RBrace: "RBrace", Equal: "Equal", Colon: "Colon",
	Comma: "Comma", Dot: "Dot", Unknown: "Unknown", EOF: "EOF",
}

func (k TokenKind) String() string {
	if 0 <= k && int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}

// Token is a lexical unit of an expression.
//
// The Value of a Number token is an int or a float64; the Value of a String
// token is the unquoted string; for other tokens it is the source text, with
// "is not" normalized to a single space.
type Token struct {
	Kind  TokenKind
	Value any
	diag.Ranging
}

// ErrUnterminatedString is wrapped by the parse error returned for string
// literals that are not closed.
var ErrUnterminatedString = errors.New("string not terminated")

var keywords = map[string]bool{"for": true, "if": true, "in": true}

var wordOperators = map[string]bool{"and": true, "or": true, "not": true, "is": true}

// Operators made of symbols, longest first.
var symbolOperators = []string{
	"**", "//", "==", "!=", "<=", ">=", "+", "-", "*", "/", "%", "<", ">",
}

// Tokenizer splits an expression into tokens lazily.
type Tokenizer struct {
	src  string
	pos  int
	prev TokenKind
	err  error
}

// Tokenize returns a Tokenizer for the source.
func Tokenize(src string) *Tokenizer {
	return &Tokenizer{src: src, prev: EOF}
}

// Next returns the next token. At the end of the source it returns an EOF
// token; after an error it keeps returning the same error.
func (tz *Tokenizer) Next() (Token, error) {
	if tz.err != nil {
		return Token{}, tz.err
	}
	t, err := tz.scan()
	if err != nil {
		tz.err = err
		return Token{}, err
	}
	if t.Kind != Space {
		tz.prev = t.Kind
	}
	return t, nil
}

// Whether a token of kind k ends an operand, which determines whether a
// following "(" or "[" applies to it.
func endsOperand(k TokenKind) bool {
	switch k {
	case Number, String, Name, RParen, RBracket:
		return true
	}
	return false
}

func (tz *Tokenizer) scan() (Token, error) {
	begin := tz.pos
	if begin == len(tz.src) {
		return tz.token(EOF, "", begin), nil
	}
	c := tz.src[begin]
	switch {
	case isSpace(c):
		for tz.pos < len(tz.src) && isSpace(tz.src[tz.pos]) {
			tz.pos++
		}
		return tz.token(Space, tz.src[begin:tz.pos], begin), nil
	case isDigit(c):
		return tz.scanNumber()
	case c == '"' || c == '\'':
		return tz.scanString()
	case isNameStart(c):
		return tz.scanWord(), nil
	}
	tz.pos++
	switch c {
	case '(':
		if endsOperand(tz.prev) {
			return tz.token(LParenCall, "(", begin), nil
		}
		return tz.token(LParenGroup, "(", begin), nil
	case ')':
		return tz.token(RParen, ")", begin), nil
	case '[':
		if endsOperand(tz.prev) {
			return tz.token(LBracketIndex, "[", begin), nil
		}
		return tz.token(LBracketList, "[", begin), nil
	case ']':
		return tz.token(RBracket, "]", begin), nil
	case '}':
		return tz.token(RBrace, "}", begin), nil
	case ':':
		return tz.token(Colon, ":", begin), nil
	case ',':
		return tz.token(Comma, ",", begin), nil
	case '.':
		return tz.token(Dot, ".", begin), nil
	}
	tz.pos--
	for _, op := range symbolOperators {
		if strings.HasPrefix(tz.src[begin:], op) {
			tz.pos += len(op)
			return tz.token(Operator, op, begin), nil
		}
	}
	tz.pos++
	if c == '=' {
		return tz.token(Equal, "=", begin), nil
	}
	return tz.token(Unknown, string(c), begin), nil
}

func (tz *Tokenizer) token(k TokenKind, v any, begin int) Token {
	return Token{k, v, diag.Ranging{From: begin, To: tz.pos}}
}

func (tz *Tokenizer) scanNumber() (Token, error) {
	begin := tz.pos
	tz.skipDigits()
	isFloat := false
	if tz.pos+1 < len(tz.src) && tz.src[tz.pos] == '.' && isDigit(tz.src[tz.pos+1]) {
		isFloat = true
		tz.pos++
		tz.skipDigits()
	}
	text := tz.src[begin:tz.pos]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Token{}, tz.errorf(begin, "bad number "+text, nil)
		}
		return tz.token(Number, f, begin), nil
	}
	i, err := strconv.Atoi(text)
	if err != nil {
		return Token{}, tz.errorf(begin, "number too large: "+text, nil)
	}
	return tz.token(Number, i, begin), nil
}

func (tz *Tokenizer) skipDigits() {
	for tz.pos < len(tz.src) && isDigit(tz.src[tz.pos]) {
		tz.pos++
	}
}

func (tz *Tokenizer) scanString() (Token, error) {
	begin := tz.pos
	quote := tz.src[begin]
	tz.pos++
	var sb strings.Builder
	for tz.pos < len(tz.src) {
		c := tz.src[tz.pos]
		tz.pos++
		switch {
		case c == quote:
			return tz.token(String, sb.String(), begin), nil
		case c == '\\' && tz.pos < len(tz.src):
			e := tz.src[tz.pos]
			tz.pos++
			switch e {
			case '\\', '"', '\'':
				sb.WriteByte(e)
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte('\\')
				sb.WriteByte(e)
			}
		default:
			sb.WriteByte(c)
		}
	}
	return Token{}, tz.errorf(begin, ErrUnterminatedString.Error(), ErrUnterminatedString)
}

func (tz *Tokenizer) scanWord() Token {
	begin := tz.pos
	tz.skipName()
	word := tz.src[begin:tz.pos]
	switch {
	case keywords[word]:
		return tz.token(Keyword, word, begin)
	case word == "is":
		// "is not", possibly with several spaces in between.
		p := tz.pos
		for p < len(tz.src) && isSpace(tz.src[p]) {
			p++
		}
		if p > tz.pos && strings.HasPrefix(tz.src[p:], "not") &&
			(p+3 == len(tz.src) || !isNameChar(tz.src[p+3])) {
			tz.pos = p + 3
			return tz.token(Operator, "is not", begin)
		}
		return tz.token(Operator, word, begin)
	case wordOperators[word]:
		return tz.token(Operator, word, begin)
	}
	return tz.token(Name, word, begin)
}

func (tz *Tokenizer) skipName() {
	for tz.pos < len(tz.src) && isNameChar(tz.src[tz.pos]) {
		tz.pos++
	}
}

func (tz *Tokenizer) errorf(begin int, msg string, cause error) error {
	return &diag.Error{
		Type:    "parse error",
		Message: msg,
		Context: *diag.NewContext(sourceName, tz.src, diag.Ranging{From: begin, To: tz.pos}),
		Err:     cause,
	}
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isNameStart(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isNameChar(c byte) bool { return isNameStart(c) || isDigit(c) }
