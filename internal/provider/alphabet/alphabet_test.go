package alphabet

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/model"
	"github.com/zjrosen/mxview/internal/notify"
)

func started(t *testing.T) (*Provider, *notify.Recorder) {
	t.Helper()
	p := New(DefaultDomain, nil)
	rec := &notify.Recorder{}
	require.NoError(t, p.Start(context.Background(), rec))
	t.Cleanup(func() { _ = p.Stop(context.Background()) })
	return p, rec
}

func TestProvider_StartAnnouncesEveryLetter(t *testing.T) {
	p, rec := started(t)

	require.True(t, p.IsRunning())
	require.Equal(t, 26, p.Count())
	require.Equal(t, 26, rec.Count(notify.Registered))
	require.Equal(t, "alphabet:letter=A", rec.Events()[0].Name.String())
}

func TestProvider_QueryWholeDomain(t *testing.T) {
	p, _ := started(t)

	pattern, err := objname.NewPattern(DefaultDomain, nil)
	require.NoError(t, err)
	require.Equal(t, 26, p.QueryNames(&pattern, model.Always).Len())
	require.Equal(t, 26, p.QueryInstances(&pattern, model.Always).Len())

	other := objname.MustParse("elsewhere:*")
	require.Equal(t, 0, p.QueryNames(&other, nil).Len())
}

func TestProvider_VowelAttribute(t *testing.T) {
	p, _ := started(t)

	a, err := p.Item(objname.MustParse("alphabet:letter=A"))
	require.NoError(t, err)
	vowel, err := a.Attribute("Vowel")
	require.NoError(t, err)
	require.Equal(t, true, vowel)

	b, err := p.Item(objname.MustParse("alphabet:letter=B"))
	require.NoError(t, err)
	vowel, err = b.Attribute("Vowel")
	require.NoError(t, err)
	require.Equal(t, false, vowel)

	pos, err := b.Attribute("Position")
	require.NoError(t, err)
	require.Equal(t, 2, pos)

	require.Equal(t, ClassName, b.Instance().ClassName)
	require.Equal(t, "letter", b.Descriptor().ClassName)
}

func TestProvider_InvokeToLowerAndGetter(t *testing.T) {
	p, _ := started(t)
	ctx := context.Background()

	item, err := p.Item(objname.MustParse("alphabet:letter=E"))
	require.NoError(t, err)

	v, err := p.Invoke(ctx, item, "toLower", nil)
	require.NoError(t, err)
	require.Equal(t, "e", v)

	v, err = p.Invoke(ctx, item, "getVowel", nil)
	require.NoError(t, err)
	require.Equal(t, true, v)

	_, err = p.Invoke(ctx, item, "toUpper", nil)
	require.ErrorIs(t, err, model.ErrOperationNotSupported)
}

func TestProvider_ItemNotFound(t *testing.T) {
	p, _ := started(t)

	for _, s := range []string{
		"alphabet:letter=a",
		"alphabet:letter=AB",
		"alphabet:letter=A,case=upper",
		"other:letter=A",
		"alphabet:",
	} {
		_, err := p.Item(objname.MustParse(s))
		require.ErrorIs(t, err, model.ErrNotFound, s)
	}
}

func TestProvider_StopIsIdempotent(t *testing.T) {
	p := New("letters", nil)
	rec := &notify.Recorder{}
	ctx := context.Background()

	require.NoError(t, p.Start(ctx, rec))
	require.NoError(t, p.Stop(ctx))
	require.NoError(t, p.Stop(ctx))

	require.Equal(t, 26, rec.Count(notify.Unregistered))
	require.False(t, p.IsRunning())
	require.Equal(t, 0, p.Count())

	_, err := p.Item(objname.MustParse("letters:letter=A"))
	require.ErrorIs(t, err, model.ErrNotRunning)
}

func TestIsVowel(t *testing.T) {
	for _, r := range "AEIOUaeiou" {
		require.True(t, IsVowel(r), string(r))
	}
	for _, r := range "BCDXYZbxy" {
		require.False(t, IsVowel(r), string(r))
	}
}

func TestProvider_RefreshDuringStopDoesNotSuppressRestart(t *testing.T) {
	p := New(DefaultDomain, nil)
	ctx := context.Background()

	refreshed := make(chan struct{})
	var once sync.Once
	sink := notify.SinkFunc(func(kind notify.Kind, _ objname.Name) {
		if kind != notify.Unregistered {
			return
		}
		once.Do(func() {
			go func() {
				defer close(refreshed)
				p.Refresh()
			}()
			time.Sleep(20 * time.Millisecond)
		})
	})

	require.NoError(t, p.Start(ctx, sink))
	require.NoError(t, p.Stop(ctx))
	<-refreshed

	rec := &notify.Recorder{}
	require.NoError(t, p.Start(ctx, rec))
	t.Cleanup(func() { _ = p.Stop(ctx) })
	require.Equal(t, 26, rec.Count(notify.Registered))
}

func TestProvider_ConcurrentStartStop(t *testing.T) {
	p := New(DefaultDomain, nil)
	rec := &notify.Recorder{}
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				_ = p.Start(ctx, rec)
				_ = p.Stop(ctx)
			}
		}()
	}
	wg.Wait()

	require.False(t, p.IsRunning())
	require.Equal(t, 0, p.Count())
	require.Equal(t, rec.Count(notify.Registered), rec.Count(notify.Unregistered))

	require.NoError(t, p.Start(ctx, rec))
	t.Cleanup(func() { _ = p.Stop(ctx) })
	require.True(t, p.IsRunning())
	require.Equal(t, 26, p.Count())
}
