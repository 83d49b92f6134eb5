package telemetry

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LogObserver writes session events to a zap logger.
//
// Once completion starts a watchdog is armed: if neither success nor fallback
// is reported within the watchdog duration a warning is logged. Completions
// slower than the slow threshold are logged as warnings too.
type LogObserver struct {
	logger        *zap.Logger
	watchdog      time.Duration
	slowThreshold time.Duration
}

// NewLogObserver creates a new log observer
func NewLogObserver(logger *zap.Logger, watchdog, slowThreshold time.Duration) *LogObserver {
	return &LogObserver{
		logger:        logger,
		watchdog:      watchdog,
		slowThreshold: slowThreshold,
	}
}

// Start implements Observer
func (o *LogObserver) Start(_ context.Context, lessonID, userID string) Monitor {
	m := &logMonitor{
		logger:        o.logger.With(zap.String("lesson_id", lessonID), zap.String("user_id", userID)),
		watchdog:      o.watchdog,
		slowThreshold: o.slowThreshold,
	}
	m.logger.Debug("Lesson session started")
	return m
}

type logMonitor struct {
	logger        *zap.Logger
	watchdog      time.Duration
	slowThreshold time.Duration

	mu                sync.Mutex
	completionStarted time.Time
	timer             *time.Timer
	finished          bool
	stopped           bool
}

func (m *logMonitor) StepAnswered(stepID string, correct bool) {
	m.logger.Debug("Step answered", zap.String("step_id", stepID), zap.Bool("correct", correct))
}

func (m *logMonitor) CompletionStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped || !m.completionStarted.IsZero() {
		return
	}
	m.completionStarted = time.Now()
	m.logger.Info("Lesson completion started")

	if m.watchdog > 0 {
		m.timer = time.AfterFunc(m.watchdog, m.checkStuck)
	}
}

func (m *logMonitor) checkStuck() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.finished || m.stopped {
		return
	}
	m.logger.Warn("Lesson completion did not finish in time",
		zap.Duration("watchdog", m.watchdog),
		zap.Duration("elapsed", time.Since(m.completionStarted)),
	)
}

func (m *logMonitor) ProfileUpdateStarted() {
	m.logger.Debug("Profile update started")
}

func (m *logMonitor) ProfileUpdateFinished(err error) {
	if err != nil {
		m.logger.Warn("Profile update failed", zap.Error(err))
		return
	}
	m.logger.Debug("Profile update finished")
}

func (m *logMonitor) TimeoutSet(name string, d time.Duration) {
	m.logger.Debug("Timeout set", zap.String("timeout", name), zap.Duration("duration", d))
}

func (m *logMonitor) TimeoutTriggered(name string) {
	m.logger.Warn("Timeout triggered", zap.String("timeout", name))
}

func (m *logMonitor) Error(err error) {
	m.logger.Error("Lesson session error", zap.Error(err))
}

func (m *logMonitor) CompletionSucceeded(score, xpGained int) {
	elapsed := m.finish()
	fields := []zap.Field{zap.Int("score", score), zap.Int("xp_gained", xpGained), zap.Duration("elapsed", elapsed)}
	if m.slowThreshold > 0 && elapsed > m.slowThreshold {
		m.logger.Warn("Lesson completion was slow", fields...)
		return
	}
	m.logger.Info("Lesson completed", fields...)
}

func (m *logMonitor) CompletionFallback(reason string) {
	elapsed := m.finish()
	m.logger.Warn("Lesson completed through fallback", zap.String("reason", reason), zap.Duration("elapsed", elapsed))
}

func (m *logMonitor) finish() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.finished = true
	if m.timer != nil {
		m.timer.Stop()
	}
	if m.completionStarted.IsZero() {
		return 0
	}
	return time.Since(m.completionStarted)
}

func (m *logMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}
	m.stopped = true
	if m.timer != nil {
		m.timer.Stop()
	}
	m.logger.Debug("Lesson session stopped")
}
