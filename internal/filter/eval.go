package filter

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/log"
)

// AttributeReader reads one attribute of a named resource. Server.Attribute
// satisfies it.
type AttributeReader func(name objname.Name, attr string) (any, error)

// Eval reports whether name satisfies expr. A nil expr matches everything.
// A comparison whose field is missing, or whose attribute read fails, is false.
func Eval(expr Expr, name objname.Name, read AttributeReader) bool {
	switch e := expr.(type) {
	case nil:
		return true
	case *BinaryExpr:
		if e.Op == TokenAnd {
			return Eval(e.Left, name, read) && Eval(e.Right, name, read)
		}
		return Eval(e.Left, name, read) || Eval(e.Right, name, read)
	case *NotExpr:
		return !Eval(e.Expr, name, read)
	case *CompareExpr:
		actual, ok := resolve(e.Field, name, read)
		if !ok {
			return false
		}
		return compare(actual, e.Op, e.Value)
	case *InExpr:
		actual, ok := resolve(e.Field, name, read)
		if !ok {
			return false
		}
		for _, v := range e.Values {
			if equal(actual, v) {
				return !e.Not
			}
		}
		return e.Not
	}
	return false
}

func resolve(f Field, name objname.Name, read AttributeReader) (any, bool) {
	switch f.Kind {
	case FieldDomain:
		return name.Domain(), true
	case FieldProperty:
		v, ok := name.Property(f.Name)
		return v, ok
	case FieldAttribute:
		if read == nil {
			return nil, false
		}
		v, err := read(name, f.Name)
		if err != nil {
			log.Debug(log.CatFilter, "attribute read failed", "name", name.String(), "attr", f.Name, "error", err)
			return nil, false
		}
		if v == nil {
			return nil, false
		}
		return v, true
	}
	return nil, false
}

func compare(actual any, op TokenType, v Value) bool {
	switch op {
	case TokenEq:
		return equal(actual, v)
	case TokenNeq:
		return !equal(actual, v)
	case TokenMatch:
		return objname.Wildmatch(cast.ToString(actual), v.String)
	case TokenNotMatch:
		return !objname.Wildmatch(cast.ToString(actual), v.String)
	}

	c, ok := order(actual, v)
	if !ok {
		return false
	}
	switch op {
	case TokenLt:
		return c < 0
	case TokenGt:
		return c > 0
	case TokenLte:
		return c <= 0
	case TokenGte:
		return c >= 0
	}
	return false
}

func equal(actual any, v Value) bool {
	switch v.Type {
	case ValueBool:
		b, err := cast.ToBoolE(actual)
		return err == nil && b == v.Bool
	case ValueNumber:
		if n, err := cast.ToFloat64E(actual); err == nil {
			return n == v.Number
		}
	}
	s, err := cast.ToStringE(actual)
	if err != nil {
		return false
	}
	return s == v.String
}

// order compares numerically when both sides are numbers and by string
// otherwise. ok is false when actual has no usable form.
func order(actual any, v Value) (int, bool) {
	if v.Type == ValueNumber {
		if n, err := cast.ToFloat64E(actual); err == nil {
			switch {
			case n < v.Number:
				return -1, true
			case n > v.Number:
				return 1, true
			}
			return 0, true
		}
	}
	s, err := cast.ToStringE(actual)
	if err != nil {
		return 0, false
	}
	return strings.Compare(s, v.String), true
}
