package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklane/internal/event"
	"tasklane/internal/platform/metrics"
	"tasklane/pkg/domain"
)

func TestCorrelation_StampsMissingMetadata(t *testing.T) {
	mw := NewCorrelation()

	t.Run("fills timestamp and correlation id when absent", func(t *testing.T) {
		_, out, err := mw.Before(context.Background(), event.Event{Type: event.TypeTaskCreated})
		require.NoError(t, err)
		assert.False(t, out.Metadata.Timestamp.IsZero())
		assert.NotEmpty(t, out.Metadata.CorrelationID)
	})

	t.Run("preserves metadata supplied by the producer", func(t *testing.T) {
		ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		in := event.Event{
			Type: event.TypeTaskCreated,
			Metadata: event.Metadata{
				Timestamp:     ts,
				CorrelationID: "req-77",
				TenantID:      domain.TenantID("org-1"),
			},
		}

		_, out, err := mw.Before(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, ts, out.Metadata.Timestamp)
		assert.Equal(t, "req-77", out.Metadata.CorrelationID)
		assert.Equal(t, domain.TenantID("org-1"), out.Metadata.TenantID)
	})

	t.Run("does not mutate the input event", func(t *testing.T) {
		in := event.Event{Type: event.TypeTaskCreated}
		_, _, err := mw.Before(context.Background(), in)
		require.NoError(t, err)
		assert.Empty(t, in.Metadata.CorrelationID)
	})
}

func TestMetrics_RecordsPublishesAndFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWith(reg)
	mw := NewMetrics(m)

	ctx, evt, err := mw.Before(context.Background(), event.Event{Type: event.TypeTaskCreated})
	require.NoError(t, err)

	mw.OnError(ctx, evt, errors.New("handler failed"))
	mw.OnError(ctx, evt, errors.New("handler failed again"))
	mw.After(ctx, evt)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues(event.TypeTaskCreated)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HandlerFailures.WithLabelValues(event.TypeTaskCreated)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PublishDurationMs))
}

func TestLogging_EmitsStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mw := NewLogging(logger)

	in := event.Event{
		Type:     event.TypeTaskCompleted,
		Metadata: event.Metadata{TenantID: domain.TenantID("org-3"), CorrelationID: "corr-1"},
	}

	_, out, err := mw.Before(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Contains(t, buf.String(), "publishing event")
	assert.Contains(t, buf.String(), event.TypeTaskCompleted)

	buf.Reset()
	mw.OnError(context.Background(), in, errors.New("consumer broke"))
	assert.Contains(t, buf.String(), "event handler failed")
	assert.Contains(t, buf.String(), "consumer broke")
}

func TestTracing_PassesEventThrough(t *testing.T) {
	mw := NewTracing()

	in := event.Event{Type: event.TypeProjectCreated}
	ctx, out, err := mw.Before(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// With the default no-op tracer provider these must still be safe.
	mw.OnError(ctx, out, errors.New("handler failed"))
	mw.After(ctx, out)
}
