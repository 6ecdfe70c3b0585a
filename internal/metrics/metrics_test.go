package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewIngest(reg)
	require.NoError(t, err)

	m.RecordLine("retake")
	m.RecordLine("retake")
	m.RecordEntry("retake", "killed")
	m.RecordError("retake", ErrorUnrecognized)
	m.RecordCvars("retake", 3)
	m.ServerStarted()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.lines.WithLabelValues("retake")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.entries.WithLabelValues("retake", "killed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("retake", ErrorUnrecognized)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.dumpedCvars.WithLabelValues("retake")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.active))

	m.ServerStopped()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.active))
}

func TestIngestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewIngest(reg)
	require.NoError(t, err)
	_, err = NewIngest(reg)
	assert.Error(t, err)
}

func TestNilIngestIsNoop(t *testing.T) {
	m, err := NewIngest(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	m.RecordLine("x")
	m.RecordEntry("x", "y")
	m.RecordError("x", ErrorReader)
	m.RecordCvars("x", 1)
	m.ServerStarted()
	m.ServerStopped()
}
