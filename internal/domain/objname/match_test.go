package objname

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestWildmatch(t *testing.T) {
	cases := []struct {
		s, p string
		want bool
	}{
		{"alphabet", "alphabet", true},
		{"alphabet", "alpha*", true},
		{"alphabet", "*bet", true},
		{"alphabet", "a*b*t", true},
		{"alphabet", "?lphabet", true},
		{"alphabet", "alphabe?", true},
		{"alphabet", "alphabet?", false},
		{"alphabet", "beta", false},
		{"", "*", true},
		{"", "?", false},
		{"", "", true},
		{"a", "", false},
		{"abc", "a**c", true},
		{"abc", "*?", true},
		{"é", "?", true},
		{"é", "??", false},
		{"café", "caf?", true},
		{"日本", "?本", true},
		{"日本", "*本", true},
		{"日本", "日?", true},
		{"日本", "???", false},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, Wildmatch(tc.s, tc.p), "Wildmatch(%q, %q)", tc.s, tc.p)
	}
}

// Alternating stars against a near miss forces the backtracking search to try
// many splits. Short inputs still finish quickly.
func TestWildmatch_PathologicalPatternStaysBoundedOnShortInput(t *testing.T) {
	s := strings.Repeat("a", 18) + "b"
	p := strings.Repeat("a*", 8) + "c"

	start := time.Now()
	require.False(t, Wildmatch(s, p))
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestMatches_NilPatternMatchesAll(t *testing.T) {
	require.True(t, Matches(MustParse("alphabet:letter=A"), nil))
	require.True(t, Matches(Name{}, nil))
}

func TestMatches_PropertyPattern(t *testing.T) {
	name := MustParse("files:name=hosts,type=/etc")

	all := MustParse("files:*")
	require.True(t, Matches(name, &all))

	subset := MustParse("files:type=/etc,*")
	require.True(t, Matches(name, &subset))

	wrong := MustParse("files:type=/var,*")
	require.False(t, Matches(name, &wrong))

	missing := MustParse("files:owner=root,*")
	require.False(t, Matches(name, &missing))

	otherDomain := MustParse("alphabet:*")
	require.False(t, Matches(name, &otherDomain))

	anyDomain := MustParse("*:type=/etc,*")
	require.True(t, Matches(name, &anyDomain))
}

func TestMatches_ExactPattern(t *testing.T) {
	name := MustParse("files:name=hosts,type=/etc")

	same := MustParse("files:type=/etc,name=hosts")
	require.True(t, Matches(name, &same))

	subset := MustParse("files:type=/etc")
	require.False(t, Matches(name, &subset))

	globbed := MustParse("fil?s:name=hosts,type=/etc")
	require.True(t, Matches(name, &globbed))

	empty := MustParse("root:")
	bare := MustParse("root:")
	require.True(t, Matches(bare, &empty))
}

func TestMatches_EmptyNameDomainSkipsDomainCheck(t *testing.T) {
	name := MustNew("", map[string]string{"k": "v"})
	pattern := MustParse("other:k=v")
	require.True(t, Matches(name, &pattern))
}

func domainGen() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-z][a-z0-9.]{0,7}`)
}

func propsGen() *rapid.Generator[map[string]string] {
	return rapid.MapOfN(rapid.StringMatching(`[a-z]{1,4}`), rapid.StringMatching(`[A-Za-z0-9/]{1,4}`), 0, 5)
}

func TestMatches_Properties(t *testing.T) {
	t.Run("star matches every domain", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			name := MustNew(domainGen().Draw(rt, "domain"), propsGen().Draw(rt, "props"))
			pattern, err := NewPattern("*", nil)
			require.NoError(rt, err)
			require.True(rt, Matches(name, &pattern))
		})
	})

	t.Run("question mark matches single characters only", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			s := rapid.StringMatching(`[a-z]{0,6}`).Draw(rt, "s")
			require.Equal(rt, len(s) == 1, Wildmatch(s, "?"))
		})
	})

	t.Run("property-pattern is monotonic", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			domain := domainGen().Draw(rt, "domain")
			props := propsGen().Draw(rt, "props")
			extra := propsGen().Draw(rt, "extra")

			pattern, err := NewPattern(domain, props)
			require.NoError(rt, err)
			name := MustNew(domain, props)
			require.True(rt, Matches(name, &pattern))

			bigger := name.Properties()
			for k, v := range extra {
				if _, ok := bigger[k]; !ok {
					bigger[k] = v
				}
			}
			require.True(rt, Matches(MustNew(domain, bigger), &pattern))
		})
	})

	t.Run("exact mode compares canonical form", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			domain := domainGen().Draw(rt, "domain")
			name := MustNew(domain, propsGen().Draw(rt, "name"))
			pattern := MustNew(domain, propsGen().Draw(rt, "pattern"))
			require.Equal(rt, name.Canonical() == pattern.Canonical(), Matches(name, &pattern))
			require.Equal(rt, Matches(name, &pattern), Matches(pattern, &name))
		})
	})
}
