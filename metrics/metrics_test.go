package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/arbiterlabs/arbiter/metrics"
)

func TestCountersAreRegisteredAndIncrementable(t *testing.T) {
	before := testutil.ToFloat64(metrics.DeadlocksDetected)
	metrics.DeadlocksDetected.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.DeadlocksDetected))
}
