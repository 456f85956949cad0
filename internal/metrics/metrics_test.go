package metrics_test

import (
	"bytes"
	"testing"

	"github.com/jrsteele09/go-finance-client/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestClient_WriteText(t *testing.T) {
	m := metrics.New()
	m.Requests.WithLabelValues("GET", metrics.OutcomeOK).Inc()
	m.Requests.WithLabelValues("GET", metrics.OutcomeOK).Inc()
	m.Refreshes.WithLabelValues(metrics.RefreshRejected).Inc()
	m.Replays.Inc()

	require.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", metrics.OutcomeOK)))

	var buf bytes.Buffer
	require.NoError(t, m.WriteText(&buf))
	out := buf.String()
	require.Contains(t, out, `finclient_requests_total{method="GET",outcome="ok"} 2`)
	require.Contains(t, out, `finclient_token_refreshes_total{result="rejected"} 1`)
	require.Contains(t, out, "finclient_request_replays_total 1")
}

func TestClient_SeparateRegistries(t *testing.T) {
	a, b := metrics.New(), metrics.New()
	a.Replays.Inc()
	require.Equal(t, 1.0, testutil.ToFloat64(a.Replays))
	require.Equal(t, 0.0, testutil.ToFloat64(b.Replays))
}
