package provider

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/log"
	"github.com/zjrosen/mxview/internal/model"
	"github.com/zjrosen/mxview/internal/notify"
)

type color struct {
	name string
	hex  string
}

type colorKind struct{}

func (colorKind) ClassName(*color) string { return "Color" }

func (colorKind) Describe(*color) model.Descriptor {
	return model.Descriptor{
		ClassName: "color",
		Attributes: []model.AttributeInfo{
			{Name: "Hex", Type: "string", Readable: true, IsGetter: true},
			{Name: "Hidden", Type: "string"},
		},
		Operations: []model.OperationInfo{{Name: "upper", ReturnType: "string"}},
	}
}

func (colorKind) NameProperties(c *color) (map[string]string, error) {
	if c.name == "" {
		return nil, errors.New("unnamed color")
	}
	return map[string]string{"color": c.name}, nil
}

func (colorKind) Attribute(c *color, attr string) (any, error) {
	return c.hex, nil
}

func (colorKind) Invoke(_ context.Context, c *color, op string, _ []any) (any, error) {
	return strings.ToUpper(c.name), nil
}

func newColors(t *testing.T) (*Base[*color], *Collection[*color]) {
	t.Helper()
	coll := NewCollection[*color](&color{"red", "#f00"}, &color{"green", "#0f0"}, nil, &color{"", "#000"})
	return NewBase[*color]("colors", colorKind{}, coll.Snapshot, nil), coll
}

func TestBase_StoppedProviderIsEmpty(t *testing.T) {
	b, _ := newColors(t)

	require.False(t, b.IsRunning())
	require.Equal(t, 0, b.QueryNames(nil, nil).Len())
	require.Equal(t, 0, b.QueryInstances(nil, nil).Len())
	require.Equal(t, 0, b.Count())

	_, err := b.Lookup(objname.MustParse("colors:color=red"), b.FindInSnapshot)
	require.ErrorIs(t, err, model.ErrNotRunning)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestBase_LifecycleEmitsNotifications(t *testing.T) {
	b, coll := newColors(t)
	rec := &notify.Recorder{}

	b.Activate(rec)
	require.True(t, b.IsRunning())
	require.Equal(t, 2, rec.Count(notify.Registered))
	require.Equal(t, 4, b.Count())

	coll.Replace([]*color{{"red", "#f00"}, {"blue", "#00f"}})
	added, removed := b.Refresh()
	require.Equal(t, 1, added)
	require.Equal(t, 1, removed)

	b.Deactivate()
	require.False(t, b.IsRunning())
	require.Equal(t, 3, rec.Count(notify.Unregistered))

	b.Deactivate()
	require.Equal(t, 3, rec.Count(notify.Unregistered))

	added, removed = b.Refresh()
	require.Zero(t, added+removed)
}

func TestBase_LookupAndItem(t *testing.T) {
	b, _ := newColors(t)
	b.Activate(notify.Discard)

	item, err := b.Lookup(objname.MustParse("colors:color=red"), b.FindInSnapshot)
	require.NoError(t, err)
	require.Equal(t, "Color", item.Instance().ClassName)
	require.True(t, item.IsInstanceOf("Color"))
	require.True(t, item.IsInstanceOf("color"))
	require.False(t, item.IsInstanceOf("Shape"))

	hex, err := item.Attribute("Hex")
	require.NoError(t, err)
	require.Equal(t, "#f00", hex)

	_, err = item.Attribute("Hidden")
	require.ErrorIs(t, err, model.ErrAttributeNotFound)

	_, err = b.Lookup(objname.MustParse("other:color=red"), b.FindInSnapshot)
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = b.Lookup(objname.MustParse("colors:color=purple"), b.FindInSnapshot)
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = b.Lookup(objname.MustParse("colors:*"), b.FindInSnapshot)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestBase_InvokeRewritesGetters(t *testing.T) {
	b, _ := newColors(t)
	b.Activate(notify.Discard)
	ctx := context.Background()

	item, err := b.Lookup(objname.MustParse("colors:color=green"), b.FindInSnapshot)
	require.NoError(t, err)

	v, err := b.Invoke(ctx, item, "getHex", nil)
	require.NoError(t, err)
	require.Equal(t, "#0f0", v)

	v, err = b.Invoke(ctx, item, "upper", nil)
	require.NoError(t, err)
	require.Equal(t, "GREEN", v)

	_, err = b.Invoke(ctx, item, "getMissing", nil)
	require.ErrorIs(t, err, model.ErrOperationNotSupported)

	_, err = b.Invoke(ctx, item, "explode", nil)
	require.ErrorIs(t, err, model.ErrOperationNotSupported)
}

func TestBase_QueriesUseLiveSnapshot(t *testing.T) {
	b, coll := newColors(t)
	b.Activate(notify.Discard)

	pattern := objname.MustParse("colors:*")
	require.Equal(t, 2, b.QueryNames(&pattern, nil).Len())

	coll.Update(func(cur []*color) []*color { return append(cur, &color{"blue", "#00f"}) })
	require.Equal(t, 3, b.QueryNames(&pattern, nil).Len())

	instances := b.QueryInstances(&pattern, func(n objname.Name) bool {
		v, _ := n.Property("color")
		return v != "red"
	})
	require.Equal(t, 2, instances.Len())
	require.Equal(t, []string{"colors"}, b.Domains())
	require.Equal(t, "colors", b.DefaultDomain())
}

func TestBase_RefreshRacingDeactivateDoesNotResurrectNames(t *testing.T) {
	b, _ := newColors(t)

	for range 50 {
		b.Activate(notify.Discard)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); b.Refresh() }()
		go func() { defer wg.Done(); b.Deactivate() }()
		wg.Wait()

		rec := &notify.Recorder{}
		b.Activate(rec)
		require.Equal(t, 2, rec.Count(notify.Registered))
		b.Deactivate()
		require.Equal(t, 2, rec.Count(notify.Unregistered))
	}
}

func TestBase_StoppedQueriesAreLogged(t *testing.T) {
	var buf bytes.Buffer
	log.InitWriter(&buf)
	log.SetMinLevel(log.LevelDebug)
	t.Cleanup(log.Reset)

	b, _ := newColors(t)
	b.QueryNames(nil, nil)
	b.QueryInstances(nil, nil)
	b.Count()

	out := buf.String()
	require.Contains(t, out, "query on stopped provider")
	require.Contains(t, out, "domain=colors")
	for _, op := range []string{"op=names", "op=instances", "op=count"} {
		require.Contains(t, out, op)
	}
}
