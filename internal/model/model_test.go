package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mxview/internal/domain/objname"
)

func TestCode(t *testing.T) {
	name := objname.MustParse("alphabet:letter=A")
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrNotRunning, CodeNotRunning},
		{NewError("item", name, ErrNotRunning, ""), CodeNotRunning},
		{NewError("item", name, ErrNotFound, ""), CodeNotFound},
		{NewError("attribute", name, ErrAttributeNotFound, "Vowels"), CodeAttributeNotFound},
		{fmt.Errorf("register: %w", ErrReadOnlyNamespace), CodeReadOnlyNamespace},
		{ErrOperationNotSupported, CodeOperationNotSupported},
		{fmt.Errorf("parse: %w", objname.ErrMalformedName), CodeMalformedName},
		{ErrAlreadyExists, CodeAlreadyExists},
		{ErrAttributeNotWritable, CodeAttributeNotWritable},
		{ErrDomainConflict, CodeDomainConflict},
		{errors.New("boom"), CodeInternal},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, Code(tc.err), "%v", tc.err)
	}
}

func TestErrNotRunning_IsNotFound(t *testing.T) {
	require.ErrorIs(t, ErrNotRunning, ErrNotFound)
	require.NotErrorIs(t, ErrNotFound, ErrNotRunning)
}

func TestError_Message(t *testing.T) {
	err := NewError("setAttribute", objname.MustParse("alphabet:letter=A"), ErrReadOnlyNamespace, "Vowel")
	require.Equal(t, "setAttribute alphabet:letter=A: Vowel: read-only namespace", err.Error())
	require.ErrorIs(t, err, ErrReadOnlyNamespace)

	var target *Error
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &target))
	require.Equal(t, "setAttribute", target.Op)
}

func TestGetterAttribute(t *testing.T) {
	attr, ok := GetterAttribute("getVowel", nil)
	require.True(t, ok)
	require.Equal(t, "Vowel", attr)

	_, ok = GetterAttribute("getVowel", []any{1})
	require.False(t, ok)
	_, ok = GetterAttribute("get", nil)
	require.False(t, ok)
	_, ok = GetterAttribute("getaway", nil)
	require.False(t, ok)
	_, ok = GetterAttribute("toLower", nil)
	require.False(t, ok)
}

func TestPredicate_Accept(t *testing.T) {
	var p Predicate
	require.True(t, p.Accept(objname.Name{}))
	p = func(n objname.Name) bool { return n.Domain() == "v" }
	require.True(t, p.Accept(objname.MustParse("v:k=1")))
	require.False(t, p.Accept(objname.MustParse("w:k=1")))
	require.True(t, Always(objname.Name{}))
}

func TestDescriptor_Lookups(t *testing.T) {
	d := Descriptor{
		ClassName: "letter",
		Attributes: []AttributeInfo{
			{Name: "Vowel", Type: "bool", Readable: true},
			{Name: "Secret", Type: "string"},
		},
		Operations: []OperationInfo{{Name: "toLower", ReturnType: "string"}},
	}

	a, ok := d.Attribute("Vowel")
	require.True(t, ok)
	require.Equal(t, "bool", a.Type)
	_, ok = d.Attribute("Missing")
	require.False(t, ok)

	_, ok = d.Operation("toLower")
	require.True(t, ok)
	require.Equal(t, []string{"Vowel"}, d.ReadableAttributes())
}

func TestInstanceSet(t *testing.T) {
	a := Instance{Name: objname.MustParse("v:k=a"), ClassName: "X"}
	b := Instance{Name: objname.MustParse("v:k=b"), ClassName: "X"}

	s := NewInstanceSet(a, a)
	require.Equal(t, 1, s.Len())

	u := s.Union(NewInstanceSet(b))
	require.Equal(t, 2, u.Len())
	require.Equal(t, "v:k=a", u.Sorted()[0].Name.String())
	require.True(t, u.Names().Contains(b.Name))

	var zero InstanceSet
	require.Equal(t, 0, zero.Len())
	require.True(t, zero.Add(a))
}
