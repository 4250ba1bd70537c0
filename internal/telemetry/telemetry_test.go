package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitMetrics_Idempotent(t *testing.T) {
	InitMetrics()
	InitMetrics()

	FramesMalformed.WithLabelValues("test0").Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(FramesMalformed.WithLabelValues("test0")))
}

func TestInitTracer_WritesSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracer(&buf, "test")
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry-test").Start(context.Background(), "unit")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name": "unit"`)
}
