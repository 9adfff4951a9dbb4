package objname

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_CanonicalSortsProperties(t *testing.T) {
	a, err := New("files", map[string]string{"type": "/etc", "name": "hosts"})
	require.NoError(t, err)
	b, err := New("files", map[string]string{"name": "hosts", "type": "/etc"})
	require.NoError(t, err)

	require.Equal(t, "name=hosts,type=/etc", a.Canonical())
	require.True(t, a.Equal(b))
	require.Equal(t, a.Key(), b.Key())
	require.Equal(t, "files:name=hosts,type=/etc", a.String())
}

func TestNew_ZeroPropertiesCanonicalizeToEmpty(t *testing.T) {
	n, err := New("root", nil)
	require.NoError(t, err)
	require.Equal(t, "", n.Canonical())
	require.Equal(t, 0, n.Len())
	require.False(t, n.IsPattern())
}

func TestNew_RejectsMalformed(t *testing.T) {
	cases := []struct {
		name   string
		domain string
		props  map[string]string
	}{
		{"colon in domain", "a:b", nil},
		{"empty key", "d", map[string]string{"": "v"}},
		{"empty value", "d", map[string]string{"k": ""}},
		{"comma in value", "d", map[string]string{"k": "a,b"}},
		{"equals in key", "d", map[string]string{"k=": "v"}},
		{"wildcard in value", "d", map[string]string{"k": "v*"}},
		{"quote in value", "d", map[string]string{"k": `"v"`}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.domain, tc.props)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrMalformedName))
		})
	}
}

func TestNew_CopiesProperties(t *testing.T) {
	props := map[string]string{"letter": "A"}
	n := MustNew("alphabet", props)
	props["letter"] = "B"

	v, ok := n.Property("letter")
	require.True(t, ok)
	require.Equal(t, "A", v)

	out := n.Properties()
	out["letter"] = "C"
	v, _ = n.Property("letter")
	require.Equal(t, "A", v)
}

func TestParse(t *testing.T) {
	n, err := Parse("alphabet:letter=A")
	require.NoError(t, err)
	require.Equal(t, "alphabet", n.Domain())
	require.False(t, n.IsPropertyPattern())
	v, ok := n.Property("letter")
	require.True(t, ok)
	require.Equal(t, "A", v)

	p, err := Parse("alphabet:*")
	require.NoError(t, err)
	require.True(t, p.IsPropertyPattern())
	require.Equal(t, 0, p.Len())
	require.Equal(t, "alphabet:*", p.String())

	p, err = Parse("files:type=/etc,*")
	require.NoError(t, err)
	require.True(t, p.IsPropertyPattern())
	require.Equal(t, "files:type=/etc,*", p.String())

	d, err := Parse("al*:letter=A")
	require.NoError(t, err)
	require.True(t, d.IsDomainPattern())
	require.True(t, d.IsPattern())
	require.False(t, d.IsPropertyPattern())

	empty, err := Parse("root:")
	require.NoError(t, err)
	require.Equal(t, "root", empty.Domain())
	require.Equal(t, 0, empty.Len())
}

func TestParse_Errors(t *testing.T) {
	for _, s := range []string{
		"no-separator",
		"d:k",
		"d:k=v,k=w",
		"d:*,k=v",
		"d:k=v,*,*",
		"d:=v",
	} {
		t.Run(s, func(t *testing.T) {
			_, err := Parse(s)
			require.ErrorIs(t, err, ErrMalformedName)
		})
	}
}

func TestParse_RoundTripsString(t *testing.T) {
	for _, s := range []string{
		"alphabet:letter=A",
		"files:name=hosts,type=/etc",
		"files:name=hosts,*",
		"*:*",
		"root:",
	} {
		n := MustParse(s)
		require.Equal(t, s, n.String())
		require.True(t, n.Equal(MustParse(n.String())))
	}
}

func TestName_ZeroValue(t *testing.T) {
	var n Name
	require.True(t, n.IsZero())
	require.Equal(t, "", n.Domain())
	require.Equal(t, 0, n.Len())
	require.False(t, MustNew("root", nil).IsZero())
}

func TestName_PatternAndExactDiffer(t *testing.T) {
	exact := MustNew("alphabet", map[string]string{"letter": "A"})
	pattern, err := NewPattern("alphabet", map[string]string{"letter": "A"})
	require.NoError(t, err)
	require.False(t, exact.Equal(pattern))
	require.NotEqual(t, exact.Key(), pattern.Key())
}

func TestName_JSON(t *testing.T) {
	n := MustParse("alphabet:letter=A")

	data, err := json.Marshal(n)
	require.NoError(t, err)
	require.JSONEq(t, `"alphabet:letter=A"`, string(data))

	var decoded Name
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.True(t, n.Equal(decoded))

	require.Error(t, json.Unmarshal([]byte(`"bad"`), &decoded))
}
