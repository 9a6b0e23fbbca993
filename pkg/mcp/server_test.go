package mcp

import (
	"context"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/maxscore/pkg/cache"
	"github.com/Sumatoshi-tech/maxscore/pkg/observability"
	"github.com/Sumatoshi-tech/maxscore/pkg/scoring"
)

func TestNewServer_ListToolNames(t *testing.T) {
	t.Parallel()

	srv := NewServer(ServerDeps{})

	assert.Equal(t, []string{ToolNameFind}, srv.ListToolNames())
	assert.NotNil(t, srv.engine)
}

func TestValidateFindInput(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, validateFindInput(FindInput{}), ErrEmptyValues)
	require.ErrorIs(t, validateFindInput(FindInput{Values: make([]float64, MaxValues+1)}), ErrTooManyValues)
	require.NoError(t, validateFindInput(FindInput{Values: []float64{1}}))
}

func TestFindHandler_UsesEngineCache(t *testing.T) {
	t.Parallel()

	eng := scoring.New(scoring.Deps{Cache: cache.New[*scoring.Result](cache.DefaultEntries)})
	handler := findHandler(eng)
	input := FindInput{Values: []float64{3, -1, 4}}

	_, first, err := handler(context.Background(), nil, input)
	require.NoError(t, err)

	result, second, err := handler(context.Background(), nil, input)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	firstOut, ok := first.Data.(FindOutput)
	require.True(t, ok)

	secondOut, ok := second.Data.(FindOutput)
	require.True(t, ok)

	assert.False(t, firstOut.Cached)
	assert.True(t, secondOut.Cached)
	assert.Equal(t, firstOut.Segments, secondOut.Segments)
}

func TestFindHandler_PercentileOutOfRange(t *testing.T) {
	t.Parallel()

	outside := 2.0

	result, _, err := findHandler(scoring.New(scoring.Deps{}))(context.Background(), nil, FindInput{
		Values:        []float64{1, 2, 3},
		ThresholdMode: "percentile",
		Percentile:    &outside,
	})

	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestFindHandler_PercentileDefaultsToMedian(t *testing.T) {
	t.Parallel()

	handler := findHandler(scoring.New(scoring.Deps{}))
	values := []float64{5, 1, 3, 9, 7}

	result, out, err := handler(context.Background(), nil, FindInput{Values: values, ThresholdMode: "percentile"})
	require.NoError(t, err)
	require.False(t, result.IsError)

	data, ok := out.Data.(FindOutput)
	require.True(t, ok)
	assert.InDelta(t, 5.0, data.Threshold, 1e-9)

	lowest := 0.0

	_, out, err = handler(context.Background(), nil, FindInput{Values: values, ThresholdMode: "percentile", Percentile: &lowest})
	require.NoError(t, err)

	data, ok = out.Data.(FindOutput)
	require.True(t, ok)
	assert.InDelta(t, 1.0, data.Threshold, 1e-9)
}

func TestWithMetrics_RecordsStatus(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	t.Cleanup(func() { require.NoError(t, mp.Shutdown(context.Background())) })

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	handler := withMetrics(red, ToolNameFind, findHandler(scoring.New(scoring.Deps{})))

	_, _, err = handler(context.Background(), &mcpsdk.CallToolRequest{}, FindInput{Values: []float64{1}})
	require.NoError(t, err)

	_, _, err = handler(context.Background(), &mcpsdk.CallToolRequest{}, FindInput{})
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	byStatus := map[string]int64{}

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "maxscore.requests.total" {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)

			for _, dp := range sum.DataPoints {
				status, _ := dp.Attributes.Value(attribute.Key("status"))
				byStatus[status.AsString()] += dp.Value
			}
		}
	}

	assert.Equal(t, map[string]int64{observability.StatusOK: 1, observability.StatusError: 1}, byStatus)
}

func TestWithTracing_NilTracerPassesThrough(t *testing.T) {
	t.Parallel()

	handler := withTracing(nil, ToolNameFind, findHandler(scoring.New(scoring.Deps{})))

	result, _, err := handler(context.Background(), nil, FindInput{Values: []float64{1}})
	require.NoError(t, err)
	assert.Len(t, result.Content, 1)
}
