package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerObserver records each session as an OpenTelemetry span with one
// span event per session event.
type TracerObserver struct {
	tracer trace.Tracer
}

// NewTracerObserver creates a new tracer observer
func NewTracerObserver(tracer trace.Tracer) *TracerObserver {
	return &TracerObserver{tracer: tracer}
}

// Start implements Observer
func (o *TracerObserver) Start(ctx context.Context, lessonID, userID string) Monitor {
	_, span := o.tracer.Start(ctx, "lesson.session",
		trace.WithAttributes(
			attribute.String("lesson.id", lessonID),
			attribute.String("user.id", userID),
		),
	)
	return &tracerMonitor{span: span}
}

type tracerMonitor struct {
	span trace.Span
	once sync.Once
}

func (m *tracerMonitor) StepAnswered(stepID string, correct bool) {
	m.span.AddEvent("step.answered", trace.WithAttributes(
		attribute.String("step.id", stepID),
		attribute.Bool("step.correct", correct),
	))
}

func (m *tracerMonitor) CompletionStarted() {
	m.span.AddEvent("completion.started")
}

func (m *tracerMonitor) ProfileUpdateStarted() {
	m.span.AddEvent("profile_update.started")
}

func (m *tracerMonitor) ProfileUpdateFinished(err error) {
	if err != nil {
		m.span.AddEvent("profile_update.failed", trace.WithAttributes(attribute.String("error", err.Error())))
		return
	}
	m.span.AddEvent("profile_update.finished")
}

func (m *tracerMonitor) TimeoutSet(name string, d time.Duration) {
	m.span.AddEvent("timeout.set", trace.WithAttributes(
		attribute.String("timeout.name", name),
		attribute.Int64("timeout.ms", d.Milliseconds()),
	))
}

func (m *tracerMonitor) TimeoutTriggered(name string) {
	m.span.AddEvent("timeout.triggered", trace.WithAttributes(attribute.String("timeout.name", name)))
}

func (m *tracerMonitor) Error(err error) {
	m.span.RecordError(err)
	m.span.SetStatus(codes.Error, err.Error())
}

func (m *tracerMonitor) CompletionSucceeded(score, xpGained int) {
	m.span.SetAttributes(
		attribute.Int("lesson.score", score),
		attribute.Int("lesson.xp_gained", xpGained),
	)
	m.span.AddEvent("completion.succeeded")
}

func (m *tracerMonitor) CompletionFallback(reason string) {
	m.span.SetAttributes(attribute.Bool("lesson.fallback", true))
	m.span.AddEvent("completion.fallback", trace.WithAttributes(attribute.String("reason", reason)))
}

func (m *tracerMonitor) Stop() {
	m.once.Do(func() { m.span.End() })
}
