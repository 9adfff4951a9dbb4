package view

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/model"
	"github.com/zjrosen/mxview/internal/notify"
	"github.com/zjrosen/mxview/internal/provider/alphabet"
)

func newView(t *testing.T) *View {
	t.Helper()
	v := New(alphabet.New("v", nil))
	require.NoError(t, v.Start(context.Background(), notify.Discard))
	t.Cleanup(func() { _ = v.Stop(context.Background()) })
	return v
}

var letterA = objname.MustParse("v:letter=A")

func TestView_Lookups(t *testing.T) {
	v := newView(t)

	require.True(t, v.IsRunning())
	require.True(t, v.IsRegistered(letterA))
	require.False(t, v.IsRegistered(objname.MustParse("v:letter=a")))

	in, err := v.Instance(letterA)
	require.NoError(t, err)
	require.Equal(t, alphabet.ClassName, in.ClassName)

	ok, err := v.IsInstanceOf(letterA, alphabet.ClassName)
	require.NoError(t, err)
	require.True(t, ok)

	d, err := v.Descriptor(letterA)
	require.NoError(t, err)
	require.Equal(t, "letter", d.ClassName)

	_, err = v.Descriptor(objname.MustParse("v:letter=ZZ"))
	require.Error(t, err)
}

func TestView_Attributes(t *testing.T) {
	v := newView(t)

	all, err := v.Attributes(letterA, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"Vowel": true, "Position": 1, "Lower": "a"}, all)

	some, err := v.Attributes(letterA, []string{"Lower", "Missing"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"Lower": "a"}, some)

	_, err = v.Attributes(objname.MustParse("v:letter=1"), nil)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestView_WritesAreRejected(t *testing.T) {
	v := newView(t)

	err := v.SetAttribute(letterA, "Vowel", false)
	require.ErrorIs(t, err, model.ErrReadOnlyNamespace)

	err = v.SetAttribute(letterA, "Nope", false)
	require.ErrorIs(t, err, model.ErrAttributeNotFound)

	err = v.SetAttribute(objname.MustParse("v:letter=1"), "Vowel", false)
	require.ErrorIs(t, err, model.ErrNotFound)

	set, err := v.SetAttributes(letterA, map[string]any{"Vowel": false})
	require.NoError(t, err)
	require.Empty(t, set)

	_, err = v.Register(letterA, "X", nil)
	require.ErrorIs(t, err, model.ErrReadOnlyNamespace)
	require.ErrorIs(t, v.Unregister(letterA), model.ErrReadOnlyNamespace)
}

func TestView_Invoke(t *testing.T) {
	v := newView(t)
	ctx := context.Background()

	res, err := v.Invoke(ctx, letterA, "toLower", nil)
	require.NoError(t, err)
	require.Equal(t, "a", res)

	res, err = v.Invoke(ctx, letterA, "getPosition", nil)
	require.NoError(t, err)
	require.Equal(t, 1, res)

	_, err = v.Invoke(ctx, letterA, "", nil)
	require.ErrorIs(t, err, model.ErrOperationNotSupported)

	_, err = v.Invoke(ctx, letterA, "explode", nil)
	require.ErrorIs(t, err, model.ErrOperationNotSupported)
}

func TestView_DelegatesQueries(t *testing.T) {
	v := newView(t)

	require.Equal(t, 26, v.Count())
	require.Equal(t, "v", v.DefaultDomain())
	require.Equal(t, []string{"v"}, v.Domains())
	require.Equal(t, 26, v.QueryNames(nil, nil).Len())
	require.Equal(t, 26, v.QueryInstances(nil, nil).Len())
	require.NotNil(t, v.Provider())
}

func TestView_StoppedProviderFailsFast(t *testing.T) {
	v := New(alphabet.New("v", nil))

	_, err := v.Attribute(letterA, "Vowel")
	require.ErrorIs(t, err, model.ErrNotRunning)
	require.Equal(t, 0, v.QueryNames(nil, nil).Len())
}
