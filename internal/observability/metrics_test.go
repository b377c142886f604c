package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsForTestingIsolated(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.RecordsStored.WithLabelValues("rain").Inc()
	a.RecordsStored.WithLabelValues("rain").Inc()
	a.WetEpisodes.WithLabelValues("closed").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(a.RecordsStored.WithLabelValues("rain")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RecordsStored.WithLabelValues("rain")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.WetEpisodes.WithLabelValues("closed")))
}
