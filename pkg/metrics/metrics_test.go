package metrics

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCodec(t *testing.T) {
	before := testutil.ToFloat64(CodecOperations.WithLabelValues("metrics-test", OpEncode))
	failed := testutil.ToFloat64(CodecFailures.WithLabelValues("metrics-test", OpEncode))

	ObserveCodec("metrics-test", OpEncode, nil)
	ObserveCodec("metrics-test", OpEncode, errors.New("boom"))

	assert.Equal(t, before+2, testutil.ToFloat64(CodecOperations.WithLabelValues("metrics-test", OpEncode)))
	assert.Equal(t, failed+1, testutil.ToFloat64(CodecFailures.WithLabelValues("metrics-test", OpEncode)))
}

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)
	Register(reg)
	assert.Equal(t, prometheus.Registerer(reg), GetRegisterer())

	ObserveDocument("application/json", OpSerialize, 128)
	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "serde_document_bytes")
}
