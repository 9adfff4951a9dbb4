package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Records(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncRouted("attribute", "virtual")
	m.IncRouted("attribute", "virtual")
	m.IncFanout("query_names")
	m.IncRejectedRegistration()
	m.IncNotification("registered")
	m.IncQueryError()
	m.SetResources("alphabet", 26)

	require.Equal(t, 2.0, testutil.ToFloat64(m.RouterOps.WithLabelValues("attribute", "virtual")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RouterFanout.WithLabelValues("query_names")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RejectedRegistrations))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("registered")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.QueryErrors))
	require.Equal(t, 26.0, testutil.ToFloat64(m.Resources.WithLabelValues("alphabet")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.IncRouted("a", "b")
		m.IncFanout("a")
		m.IncRejectedRegistration()
		m.IncNotification("a")
		m.IncQueryError()
		m.SetResources("a", 1)
	})
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	require.Panics(t, func() { New(reg) })
}
