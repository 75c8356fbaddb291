package lib

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsSubmit(t *testing.T) {
	m := NewMetricsServer(MetricsConfig{Enabled: false}, NewNullLogger())
	// execute the function calls
	m.Submit(MeasurementVoteNative, map[string]int64{"count": 1})
	m.Submit(MeasurementVoteNative, map[string]int64{"count": 1})
	m.Submit(MeasurementPoHTick, map[string]int64{"tick_height": 7, "num_hashes": 3})
	m.Submit(MeasurementLeaderFinality, map[string]int64{"duration_ms": 250})
	m.Submit(MeasurementBanking, map[string]int64{"entries": 4, "transactions": 2})
	m.Submit("custom", map[string]int64{"value": 5})
	// validate the collectors
	require.EqualValues(t, 2, testutil.ToFloat64(m.VotesAccepted))
	require.EqualValues(t, 1, testutil.ToFloat64(m.Ticks))
	require.EqualValues(t, 7, testutil.ToFloat64(m.TickHeight))
	require.EqualValues(t, 3, testutil.ToFloat64(m.TickHashes))
	require.EqualValues(t, 250, testutil.ToFloat64(m.FinalityMS))
	require.EqualValues(t, 4, testutil.ToFloat64(m.Entries))
	require.EqualValues(t, 2, testutil.ToFloat64(m.Transactions))
	require.EqualValues(t, 5, testutil.ToFloat64(m.Generic.WithLabelValues("custom", "value")))
	// the handler exposes the registry
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, metricsPattern, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "poh_vote_native_total 2"))
}

func TestMetricsNil(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.Start()
		m.Submit(MeasurementVoteNative, map[string]int64{"count": 1})
		m.Stop()
	})
}

func TestMemorySink(t *testing.T) {
	s := new(MemorySink)
	fields := map[string]int64{"duration_ms": 1}
	s.Submit(MeasurementLeaderFinality, fields)
	s.Submit(MeasurementVoteNative, map[string]int64{"count": 1})
	// mutating the submitted map doesn't change the capture
	fields["duration_ms"] = 2
	got := s.Measurements(MeasurementLeaderFinality)
	require.Len(t, got, 1)
	require.EqualValues(t, 1, got[0].Fields["duration_ms"])
	require.Len(t, s.Measurements(MeasurementVoteNative), 1)
	require.Empty(t, s.Measurements("missing"))
}
