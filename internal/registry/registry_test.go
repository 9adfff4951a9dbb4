package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/model"
	"github.com/zjrosen/mxview/internal/notify"
)

var cacheName = objname.MustParse("root:type=Cache,name=users")

func newRegistry(t *testing.T) (*Registry, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	return New("root", rec), rec
}

func TestRegistry_RegisterAndUnregister(t *testing.T) {
	r, rec := newRegistry(t)

	in, err := r.Register(cacheName, "", NewStatic("Cache", map[string]any{"Size": 10}))
	require.NoError(t, err)
	require.Equal(t, "Cache", in.ClassName)
	require.True(t, r.IsRegistered(cacheName))
	require.Equal(t, 1, r.Count())
	require.Equal(t, 1, rec.Count(notify.Registered))

	_, err = r.Register(cacheName, "Cache", NewStatic("Cache", nil))
	require.ErrorIs(t, err, model.ErrAlreadyExists)

	require.NoError(t, r.Unregister(cacheName))
	require.False(t, r.IsRegistered(cacheName))
	require.Equal(t, 1, rec.Count(notify.Unregistered))

	require.ErrorIs(t, r.Unregister(cacheName), model.ErrNotFound)
}

func TestRegistry_RegisterRejects(t *testing.T) {
	r, _ := newRegistry(t)

	_, err := r.Register(objname.MustParse("root:*"), "X", NewStatic("X", nil))
	require.ErrorIs(t, err, model.ErrMalformedName)

	_, err = r.Register(objname.MustParse("ro*:k=v"), "X", NewStatic("X", nil))
	require.ErrorIs(t, err, model.ErrMalformedName)

	_, err = r.Register(cacheName, "X", nil)
	require.ErrorIs(t, err, ErrNilResource)
}

func TestRegistry_EmptyDomainUsesDefault(t *testing.T) {
	r, _ := newRegistry(t)

	bare := objname.MustNew("", map[string]string{"type": "Runtime"})
	in, err := r.Register(bare, "", NewRuntime())
	require.NoError(t, err)
	require.Equal(t, "root:type=Runtime", in.Name.String())

	require.True(t, r.IsRegistered(objname.MustParse("root:type=Runtime")))
	require.True(t, r.IsRegistered(bare))
}

func TestRegistry_Attributes(t *testing.T) {
	r, _ := newRegistry(t)
	_, err := r.Register(cacheName, "Cache", NewStatic("Cache", map[string]any{"Size": 10, "Name": "users"}))
	require.NoError(t, err)

	v, err := r.Attribute(cacheName, "Size")
	require.NoError(t, err)
	require.Equal(t, 10, v)

	_, err = r.Attribute(cacheName, "Missing")
	require.ErrorIs(t, err, model.ErrAttributeNotFound)

	require.NoError(t, r.SetAttribute(cacheName, "Size", 20))
	v, _ = r.Attribute(cacheName, "Size")
	require.Equal(t, 20, v)

	set, err := r.SetAttributes(cacheName, map[string]any{"Size": 30, "Missing": 1})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"Size": 30}, set)

	all, err := r.Attributes(cacheName, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"Size": 30, "Name": "users"}, all)

	_, err = r.Attributes(objname.MustParse("root:type=Nope"), nil)
	require.ErrorIs(t, err, model.ErrNotFound)

	ok, err := r.IsInstanceOf(cacheName, "Cache")
	require.NoError(t, err)
	require.True(t, ok)

	d, err := r.Descriptor(cacheName)
	require.NoError(t, err)
	require.Len(t, d.Attributes, 2)
}

func TestRegistry_Invoke(t *testing.T) {
	r, _ := newRegistry(t)
	ctx := context.Background()
	_, err := r.Register(cacheName, "Cache", NewStatic("Cache", map[string]any{"Size": 10}))
	require.NoError(t, err)

	require.NoError(t, r.SetAttribute(cacheName, "Size", 99))

	v, err := r.Invoke(ctx, cacheName, "getSize", nil)
	require.NoError(t, err)
	require.Equal(t, 99, v)

	_, err = r.Invoke(ctx, cacheName, "reset", nil)
	require.NoError(t, err)
	v, _ = r.Attribute(cacheName, "Size")
	require.Equal(t, 10, v)

	_, err = r.Invoke(ctx, cacheName, "explode", nil)
	require.ErrorIs(t, err, model.ErrOperationNotSupported)

	_, err = r.Invoke(ctx, cacheName, "", nil)
	require.ErrorIs(t, err, model.ErrOperationNotSupported)
}

func TestRegistry_Queries(t *testing.T) {
	r, _ := newRegistry(t)
	for _, s := range []string{"root:type=Cache,name=a", "root:type=Cache,name=b", "app:type=Pool"} {
		_, err := r.Register(objname.MustParse(s), "X", NewStatic("X", nil))
		require.NoError(t, err)
	}

	caches := objname.MustParse("root:type=Cache,*")
	require.Equal(t, 2, r.QueryNames(&caches, nil).Len())
	require.Equal(t, 3, r.QueryNames(nil, nil).Len())
	require.Equal(t, 1, r.QueryInstances(nil, func(n objname.Name) bool { return n.Domain() == "app" }).Len())
	require.Equal(t, []string{"app", "root"}, r.Domains())
	require.Equal(t, "root", r.DefaultDomain())
}

func TestRegistry_ReadOnlyResources(t *testing.T) {
	r, _ := newRegistry(t)
	name := objname.MustParse("JMImplementation:type=ServerDelegate")
	_, err := r.Register(name, DelegateClass, NewDelegate("id-1", "1.0"))
	require.NoError(t, err)

	v, err := r.Attribute(name, "ServerID")
	require.NoError(t, err)
	require.Equal(t, "id-1", v)

	require.ErrorIs(t, r.SetAttribute(name, "ServerID", "x"), model.ErrAttributeNotWritable)
	require.ErrorIs(t, r.SetAttribute(name, "Other", "x"), model.ErrAttributeNotFound)

	rt := objname.MustParse("root:type=Runtime")
	_, err = r.Register(rt, "", NewRuntime())
	require.NoError(t, err)

	g, err := r.Attribute(rt, "Goroutines")
	require.NoError(t, err)
	require.Greater(t, g.(int), 0)

	_, err = r.Invoke(context.Background(), rt, "gc", nil)
	require.NoError(t, err)

	all, err := r.Attributes(rt, nil)
	require.NoError(t, err)
	require.Len(t, all, 5)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r, _ := newRegistry(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			name := objname.MustNew("root", map[string]string{"id": string(rune('a' + i))})
			_, _ = r.Register(name, "X", NewStatic("X", nil))
		}(i)
		go func() {
			defer wg.Done()
			_ = r.QueryNames(nil, nil)
			_ = r.Domains()
		}()
	}
	wg.Wait()

	require.Equal(t, 20, r.Count())
}
