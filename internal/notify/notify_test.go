package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/metrics"
	"github.com/zjrosen/mxview/internal/pubsub"
)

func TestBrokerSink_PublishesStampedNotifications(t *testing.T) {
	broker := pubsub.NewBroker[Notification]()
	defer broker.Close()
	source := objname.MustParse("JMImplementation:type=ServerDelegate")
	m := metrics.New(prometheus.NewRegistry())
	sink := NewBrokerSink(broker, source, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := broker.Subscribe(ctx)

	sink.Emit(Registered, objname.MustParse("alphabet:letter=A"))
	sink.Emit(Unregistered, objname.MustParse("alphabet:letter=A"))

	var got []pubsub.Event[Notification]
	for len(got) < 2 {
		select {
		case ev := <-ch:
			got = append(got, ev)
		case <-time.After(time.Second):
			require.FailNow(t, "timeout waiting for notifications")
		}
	}

	require.Equal(t, pubsub.RegisteredEvent, got[0].Type)
	require.Equal(t, pubsub.UnregisteredEvent, got[1].Type)
	require.Equal(t, uint64(1), got[0].Payload.Sequence)
	require.Equal(t, uint64(2), got[1].Payload.Sequence)
	require.True(t, got[0].Payload.Source.Equal(source))
	require.NotEqual(t, uuid.Nil, got[0].Payload.ID)
	require.NotEqual(t, got[0].Payload.ID, got[1].Payload.ID)
	require.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("registered")))
	require.True(t, sink.Source().Equal(source))
}

func TestEmitter_StartSyncClear(t *testing.T) {
	rec := &Recorder{}
	e := NewEmitter()

	a := objname.MustParse("v:k=a")
	b := objname.MustParse("v:k=b")
	c := objname.MustParse("v:k=c")

	e.Start(rec, []objname.Name{a, b})
	require.Equal(t, 2, rec.Count(Registered))

	added, removed := e.Sync([]objname.Name{b, c})
	require.Equal(t, 1, added)
	require.Equal(t, 1, removed)
	require.Equal(t, 3, rec.Count(Registered))
	require.Equal(t, 1, rec.Count(Unregistered))

	added, removed = e.Sync([]objname.Name{b, c})
	require.Zero(t, added)
	require.Zero(t, removed)

	require.Equal(t, 2, e.Clear())
	require.Equal(t, 3, rec.Count(Unregistered))
	require.Equal(t, 0, e.Known().Len())

	require.Equal(t, 0, e.Clear())
	require.Equal(t, 3, rec.Count(Unregistered))
}

func TestEmitter_SyncWhileDetachedIsIgnored(t *testing.T) {
	e := NewEmitter()
	names := []objname.Name{objname.MustParse("v:k=a"), objname.MustParse("v:k=b")}

	added, removed := e.Sync(names)
	require.Zero(t, added+removed)
	require.Equal(t, 0, e.Known().Len())

	rec := &Recorder{}
	e.Start(rec, names)
	require.Equal(t, 2, e.Clear())

	added, removed = e.Sync(names)
	require.Zero(t, added+removed)
	require.Equal(t, 0, e.Known().Len())

	again := &Recorder{}
	e.Start(again, names)
	require.Equal(t, 2, again.Count(Registered))
}

func TestEmitter_SyncRacingClearLeavesNoStaleGeneration(t *testing.T) {
	names := []objname.Name{objname.MustParse("v:k=a"), objname.MustParse("v:k=b")}

	for range 50 {
		e := NewEmitter()
		e.Start(&Recorder{}, names)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); e.Sync(names) }()
		go func() { defer wg.Done(); e.Clear() }()
		wg.Wait()

		rec := &Recorder{}
		e.Start(rec, names)
		require.Equal(t, 2, rec.Count(Registered))
	}
}

func TestEmitter_NilSinkDiscards(t *testing.T) {
	e := NewEmitter()
	require.NotPanics(t, func() {
		e.Start(nil, []objname.Name{objname.MustParse("v:k=a")})
		e.Clear()
	})
}

func TestKind_EventType(t *testing.T) {
	require.Equal(t, pubsub.RegisteredEvent, Registered.EventType())
	require.Equal(t, pubsub.UnregisteredEvent, Unregistered.EventType())
}
