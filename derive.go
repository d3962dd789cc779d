/*
Copyright © 2024 the netcdf-explorer authors.
This file is part of netcdf-explorer.

netcdf-explorer is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

netcdf-explorer is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with netcdf-explorer.  If not, see <http://www.gnu.org/licenses/>.
*/

package explorer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Operators of derived band expressions with their precedence. Higher
// binds tighter; all binary operators are left associative. "not" is a
// unary operator that binds tighter than any binary operator.
var binaryPrecedence = map[string]int{
	"*": 5, "/": 5,
	"+": 4, "-": 4,
	"|": 3, "&": 3,
	"==": 2,
	"and": 1, "or": 1,
}

// Expression is a parsed derived band expression such as
// "(qa & 4) == 0 and not cloud".
type Expression struct {
	src  string
	root *exprNode
}

type exprNode struct {
	op    string // "" for names and literals
	name  string
	value float64
	args  []*exprNode
}

// ParseExpression parses an expression over variable names, numbers and
// the operators not, *, /, +, -, |, &, ==, and, or.
func ParseExpression(s string) (*Expression, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	p := &exprParser{toks: toks}
	root, err := p.parse(0)
	if err != nil {
		return nil, fmt.Errorf("explorer: parsing expression %q: %v", s, err)
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("explorer: parsing expression %q: unexpected %q", s, p.toks[p.pos])
	}
	return &Expression{src: s, root: root}, nil
}

func (e *Expression) String() string { return e.src }

// Bands returns the variable names used by the expression in order of
// first use.
func (e *Expression) Bands() []string {
	var o []string
	seen := make(map[string]bool)
	var walk func(n *exprNode)
	walk = func(n *exprNode) {
		if n.op == "" && n.name != "" && !seen[n.name] {
			seen[n.name] = true
			o = append(o, n.name)
		}
		for _, a := range n.args {
			walk(a)
		}
	}
	walk(e.root)
	return o
}

func tokenize(s string) ([]string, error) {
	var toks []string
	r := []rune(s)
	for i := 0; i < len(r); {
		c := r[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '(' || c == ')' || c == '*' || c == '/' || c == '+' || c == '-' || c == '|' || c == '&':
			toks = append(toks, string(c))
			i++
		case c == '=':
			if i+1 >= len(r) || r[i+1] != '=' {
				return nil, fmt.Errorf("explorer: expression %q: '=' must be '=='", s)
			}
			toks = append(toks, "==")
			i += 2
		case unicode.IsDigit(c) || c == '.':
			j := i
			for j < len(r) && (unicode.IsDigit(r[j]) || r[j] == '.' ||
				((r[j] == 'e' || r[j] == 'E') && j+1 < len(r) && (unicode.IsDigit(r[j+1]) || r[j+1] == '-' || r[j+1] == '+')) ||
				((r[j] == '-' || r[j] == '+') && j > i && (r[j-1] == 'e' || r[j-1] == 'E'))) {
				j++
			}
			toks = append(toks, string(r[i:j]))
			i = j
		case unicode.IsLetter(c) || c == '_':
			j := i
			for j < len(r) && (unicode.IsLetter(r[j]) || unicode.IsDigit(r[j]) || r[j] == '_' || r[j] == '.') {
				j++
			}
			toks = append(toks, string(r[i:j]))
			i = j
		default:
			return nil, fmt.Errorf("explorer: expression %q: unexpected character %q", s, c)
		}
	}
	return toks, nil
}

type exprParser struct {
	toks []string
	pos  int
}

func (p *exprParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *exprParser) next() string {
	t := p.peek()
	p.pos++
	return t
}

// parse reads a sequence of operands joined by binary operators whose
// precedence is at least min.
func (p *exprParser) parse(min int) (*exprNode, error) {
	left, err := p.operand()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		prec, ok := binaryPrecedence[op]
		if !ok || prec < min {
			return left, nil
		}
		p.next()
		right, err := p.parse(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &exprNode{op: op, args: []*exprNode{left, right}}
	}
}

func (p *exprParser) operand() (*exprNode, error) {
	t := p.next()
	switch {
	case t == "":
		return nil, fmt.Errorf("unexpected end of expression")
	case t == "not":
		a, err := p.operand()
		if err != nil {
			return nil, err
		}
		return &exprNode{op: "not", args: []*exprNode{a}}, nil
	case t == "-":
		a, err := p.operand()
		if err != nil {
			return nil, err
		}
		return &exprNode{op: "neg", args: []*exprNode{a}}, nil
	case t == "(":
		n, err := p.parse(0)
		if err != nil {
			return nil, err
		}
		if p.next() != ")" {
			return nil, fmt.Errorf("missing ')'")
		}
		return n, nil
	case unicode.IsDigit(rune(t[0])) || t[0] == '.':
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", t)
		}
		return &exprNode{value: v}, nil
	case t == "and" || t == "or":
		return nil, fmt.Errorf("unexpected operator %q", t)
	case unicode.IsLetter(rune(t[0])) || t[0] == '_':
		return &exprNode{name: t}, nil
	default:
		return nil, fmt.Errorf("unexpected %q", t)
	}
}

// term is an intermediate result: a scalar when dims is empty.
type term struct {
	dims  []string
	shape []int
	v     []float64
}

// Evaluate computes the expression over the variables of ds. Operands
// are matched by dimension name, and the result has the dimensions of
// the referenced variable with the most dimensions.
func (e *Expression) Evaluate(ds *Dataset) (*Variable, error) {
	t, err := e.eval(e.root, ds)
	if err != nil {
		return nil, fmt.Errorf("explorer: evaluating expression %q: %v", e.src, err)
	}
	var dims []string
	var shape []int
	for _, b := range e.Bands() {
		v, _ := ds.Var(b)
		if len(v.Dims) > len(dims) {
			dims, shape = v.Dims, v.Shape()
		}
	}
	if dims == nil && len(e.Bands()) == 0 {
		return nil, fmt.Errorf("explorer: expression %q does not use any variables", e.src)
	}
	if len(t.dims) != len(dims) {
		if t, err = t.expand(dims, shape); err != nil {
			return nil, fmt.Errorf("explorer: evaluating expression %q: %v", e.src, err)
		}
	}
	return NewVariable("", t.dims, t.shape, t.v)
}

// DeriveBand evaluates expr over ds and adds the result to ds as a new
// variable called name.
func DeriveBand(ds *Dataset, name, expr string) error {
	e, err := ParseExpression(expr)
	if err != nil {
		return err
	}
	v, err := e.Evaluate(ds)
	if err != nil {
		return err
	}
	v.Name = name
	return ds.Set(v)
}

func (e *Expression) eval(n *exprNode, ds *Dataset) (*term, error) {
	switch {
	case n.op == "" && n.name != "":
		v, err := ds.Var(n.name)
		if err != nil {
			return nil, err
		}
		if v.Data == nil {
			return nil, fmt.Errorf("variable %s is not numeric", n.name)
		}
		return &term{dims: v.Dims, shape: v.Shape(), v: v.Values()}, nil
	case n.op == "":
		return &term{v: []float64{n.value}}, nil
	case n.op == "not" || n.op == "neg":
		a, err := e.eval(n.args[0], ds)
		if err != nil {
			return nil, err
		}
		o := &term{dims: a.dims, shape: a.shape, v: make([]float64, len(a.v))}
		for i, x := range a.v {
			if n.op == "neg" {
				o.v[i] = -x
			} else {
				o.v[i] = boolValue(x == 0)
			}
		}
		return o, nil
	}
	a, err := e.eval(n.args[0], ds)
	if err != nil {
		return nil, err
	}
	b, err := e.eval(n.args[1], ds)
	if err != nil {
		return nil, err
	}
	dims, shape := a.dims, a.shape
	if len(b.dims) > len(dims) {
		dims, shape = b.dims, b.shape
	}
	if a, err = a.expand(dims, shape); err != nil {
		return nil, err
	}
	if b, err = b.expand(dims, shape); err != nil {
		return nil, err
	}
	f, err := binaryFunc(n.op)
	if err != nil {
		return nil, err
	}
	o := &term{dims: dims, shape: shape, v: make([]float64, len(a.v))}
	for i := range o.v {
		o.v[i] = f(a.v[i], b.v[i])
	}
	return o, nil
}

// expand broadcasts t onto dims.
func (t *term) expand(dims []string, shape []int) (*term, error) {
	size := 1
	for _, l := range shape {
		size *= l
	}
	if len(t.dims) == 0 {
		o := &term{dims: dims, shape: shape, v: make([]float64, size)}
		for i := range o.v {
			o.v[i] = t.v[0]
		}
		return o, nil
	}
	if strings.Join(t.dims, "\x00") == strings.Join(dims, "\x00") {
		return t, nil
	}
	a := newArray(t.shape)
	copy(a.Elements, t.v)
	b, err := broadcast(a, t.dims, dims, shape)
	if err != nil {
		return nil, err
	}
	return &term{dims: dims, shape: shape, v: b.Elements}, nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// toInt converts like a cast to a machine integer; NaN becomes 0.
func toInt(x float64) int64 {
	if math.IsNaN(x) {
		return 0
	}
	return int64(x)
}

func binaryFunc(op string) (func(a, b float64) float64, error) {
	switch op {
	case "*":
		return func(a, b float64) float64 { return a * b }, nil
	case "/":
		return func(a, b float64) float64 { return a / b }, nil
	case "+":
		return func(a, b float64) float64 { return a + b }, nil
	case "-":
		return func(a, b float64) float64 { return a - b }, nil
	case "&":
		return func(a, b float64) float64 { return float64(toInt(a) & toInt(b)) }, nil
	case "|":
		return func(a, b float64) float64 { return float64(toInt(a) | toInt(b)) }, nil
	case "==":
		return func(a, b float64) float64 { return boolValue(a == b) }, nil
	case "and":
		return func(a, b float64) float64 { return boolValue(toInt(a) != 0 && toInt(b) != 0) }, nil
	case "or":
		return func(a, b float64) float64 { return boolValue(toInt(a) != 0 || toInt(b) != 0) }, nil
	}
	return nil, fmt.Errorf("unknown operator %q", op)
}
