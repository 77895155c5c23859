package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(SyncRuns.WithLabelValues(OutcomeSynced))
	SyncRuns.WithLabelValues(OutcomeSynced).Inc()
	require.Equal(t, before+1, testutil.ToFloat64(SyncRuns.WithLabelValues(OutcomeSynced)))

	before = testutil.ToFloat64(RoundupsDeposited)
	RoundupsDeposited.Add(3)
	require.Equal(t, before+3, testutil.ToFloat64(RoundupsDeposited))
}
