package filter

import (
	"strconv"
	"strings"
)

// Expr is a filter expression node.
type Expr interface {
	String() string
	expr()
}

// BinaryExpr represents "expr AND/OR expr".
type BinaryExpr struct {
	Left  Expr
	Op    TokenType // TokenAnd or TokenOr
	Right Expr
}

// NotExpr represents "NOT expr".
type NotExpr struct {
	Expr Expr
}

// CompareExpr represents "field op value".
type CompareExpr struct {
	Field Field
	Op    TokenType
	Value Value
}

// InExpr represents "field IN (values)" or "field NOT IN (values)".
type InExpr struct {
	Field  Field
	Values []Value
	Not    bool
}

func (*BinaryExpr) expr()  {}
func (*NotExpr) expr()     {}
func (*CompareExpr) expr() {}
func (*InExpr) expr()      {}

func (b *BinaryExpr) String() string {
	return "(" + b.Left.String() + " " + strings.ToLower(b.Op.String()) + " " + b.Right.String() + ")"
}

func (n *NotExpr) String() string { return "not " + n.Expr.String() }

func (c *CompareExpr) String() string {
	return c.Field.String() + " " + c.Op.String() + " " + c.Value.Raw
}

func (i *InExpr) String() string {
	raws := make([]string, len(i.Values))
	for k, v := range i.Values {
		raws[k] = v.Raw
	}
	op := " in "
	if i.Not {
		op = " not in "
	}
	return i.Field.String() + op + "(" + strings.Join(raws, ", ") + ")"
}

// FieldKind says where a field's value comes from.
type FieldKind int

const (
	FieldDomain    FieldKind = iota // the name's domain
	FieldProperty                   // a name property
	FieldAttribute                  // an attribute read
)

// Field is the left-hand side of a comparison.
type Field struct {
	Kind FieldKind
	Name string
}

func (f Field) String() string {
	switch f.Kind {
	case FieldDomain:
		return "domain"
	case FieldAttribute:
		return "@" + f.Name
	default:
		return f.Name
	}
}

// ValueType indicates the type of a Value.
type ValueType int

const (
	ValueString ValueType = iota
	ValueNumber
	ValueBool
)

// Value is a literal in an expression.
type Value struct {
	Type   ValueType
	Raw    string
	String string
	Number float64
	Bool   bool
}

func numberValue(literal string) Value {
	n, _ := strconv.ParseFloat(literal, 64)
	return Value{Type: ValueNumber, Raw: literal, String: literal, Number: n}
}
