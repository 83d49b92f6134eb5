package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestLogMonitor_WatchdogWarnsWhenCompletionHangs(t *testing.T) {
	logger, logs := newObservedLogger()
	obs := NewLogObserver(logger, 20*time.Millisecond, time.Second)

	m := obs.Start(context.Background(), "l1", "u1")
	m.CompletionStarted()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("Lesson completion did not finish in time").Len() == 1
	}, time.Second, 5*time.Millisecond)

	entry := logs.FilterMessage("Lesson completion did not finish in time").All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "l1", entry.ContextMap()["lesson_id"])
	m.Stop()
}

func TestLogMonitor_WatchdogSilentAfterCompletion(t *testing.T) {
	logger, logs := newObservedLogger()
	obs := NewLogObserver(logger, 20*time.Millisecond, time.Second)

	m := obs.Start(context.Background(), "l1", "u1")
	m.CompletionStarted()
	m.CompletionSucceeded(80, 100)
	m.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, logs.FilterMessage("Lesson completion did not finish in time").Len())

	completed := logs.FilterMessage("Lesson completed").All()
	require.Len(t, completed, 1)
	assert.Equal(t, zapcore.InfoLevel, completed[0].Level)
	assert.EqualValues(t, 80, completed[0].ContextMap()["score"])
	assert.EqualValues(t, 100, completed[0].ContextMap()["xp_gained"])
}

func TestLogMonitor_SlowCompletionWarns(t *testing.T) {
	logger, logs := newObservedLogger()
	obs := NewLogObserver(logger, 0, time.Millisecond)

	m := obs.Start(context.Background(), "l1", "u1")
	m.CompletionStarted()
	time.Sleep(5 * time.Millisecond)
	m.CompletionSucceeded(100, 150)
	m.Stop()

	slow := logs.FilterMessage("Lesson completion was slow").All()
	require.Len(t, slow, 1)
	assert.Equal(t, zapcore.WarnLevel, slow[0].Level)
}

func TestLogMonitor_EventsAndFallback(t *testing.T) {
	logger, logs := newObservedLogger()
	m := NewLogObserver(logger, 0, 0).Start(context.Background(), "l1", "u1")

	m.StepAnswered("s1", true)
	m.ProfileUpdateStarted()
	m.ProfileUpdateFinished(errors.New("store down"))
	m.TimeoutSet("profile_update", 2*time.Second)
	m.TimeoutTriggered("profile_update")
	m.Error(errors.New("boom"))
	m.CompletionFallback("completion timeout")
	m.Stop()
	m.Stop()

	assert.Equal(t, 1, logs.FilterMessage("Step answered").Len())
	assert.Equal(t, 1, logs.FilterMessage("Profile update failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("Timeout triggered").Len())
	assert.Equal(t, 1, logs.FilterMessage("Lesson session error").Len())
	assert.Equal(t, 1, logs.FilterMessage("Lesson completed through fallback").Len())
	assert.Equal(t, 1, logs.FilterMessage("Lesson session stopped").Len())
}

func TestTracerMonitor(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	obs := NewTracerObserver(provider.Tracer("test"))
	m := obs.Start(context.Background(), "l1", "u1")
	m.StepAnswered("s1", true)
	m.CompletionStarted()
	m.ProfileUpdateStarted()
	m.ProfileUpdateFinished(nil)
	m.CompletionSucceeded(100, 150)
	m.Stop()
	m.Stop()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "lesson.session", span.Name())

	var names []string
	for _, ev := range span.Events() {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{
		"step.answered",
		"completion.started",
		"profile_update.started",
		"profile_update.finished",
		"completion.succeeded",
	}, names)

	attrs := map[string]any{}
	for _, kv := range span.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "l1", attrs["lesson.id"])
	assert.Equal(t, "u1", attrs["user.id"])
	assert.EqualValues(t, 150, attrs["lesson.xp_gained"])
}

func TestTracerMonitor_ErrorSetsStatus(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m := NewTracerObserver(provider.Tracer("test")).Start(context.Background(), "l1", "u1")
	m.Error(errors.New("boom"))
	m.Stop()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
}

func TestMulti_FansOut(t *testing.T) {
	logger, logs := newObservedLogger()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	obs := Multi(NewLogObserver(logger, 0, 0), NewTracerObserver(provider.Tracer("test")), Nop())
	m := obs.Start(context.Background(), "l1", "u1")
	m.CompletionStarted()
	m.CompletionSucceeded(80, 100)
	m.Stop()

	assert.Equal(t, 1, logs.FilterMessage("Lesson completed").Len())
	assert.Len(t, recorder.Ended(), 1)
}

func TestSetupTracing_NoopWithoutEndpoint(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), "", "questlingo")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupTracing_WithEndpoint(t *testing.T) {
	// non-routable address, nothing is exported before shutdown
	shutdown, err := SetupTracing(context.Background(), "http://192.0.2.1:4318", "questlingo")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
