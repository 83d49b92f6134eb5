// Package telemetry records what happens during a lesson session.
//
// An Observer is injected into the components that drive sessions. Each
// session gets its own Monitor from Start and must release it with Stop.
package telemetry

import (
	"context"
	"time"
)

// Observer creates monitors for lesson sessions
type Observer interface {
	Start(ctx context.Context, lessonID, userID string) Monitor
}

// Monitor receives the events of a single lesson session
type Monitor interface {
	StepAnswered(stepID string, correct bool)
	CompletionStarted()
	ProfileUpdateStarted()
	ProfileUpdateFinished(err error)
	TimeoutSet(name string, d time.Duration)
	TimeoutTriggered(name string)
	Error(err error)
	CompletionSucceeded(score, xpGained int)
	CompletionFallback(reason string)
	Stop()
}

// Nop returns an observer that discards every event
func Nop() Observer { return nopObserver{} }

type nopObserver struct{}

func (nopObserver) Start(context.Context, string, string) Monitor { return nopMonitor{} }

type nopMonitor struct{}

func (nopMonitor) StepAnswered(string, bool) {}
func (nopMonitor) CompletionStarted() {}
func (nopMonitor) ProfileUpdateStarted() {}
func (nopMonitor) ProfileUpdateFinished(error) {}
func (nopMonitor) TimeoutSet(string, time.Duration) {}
func (nopMonitor) TimeoutTriggered(string) {}
func (nopMonitor) Error(error) {}
func (nopMonitor) CompletionSucceeded(int, int) {}
func (nopMonitor) CompletionFallback(string) {}
func (nopMonitor) Stop() {}

// Multi fans every event out to all observers
func Multi(observers ...Observer) Observer {
	return multiObserver(observers)
}

type multiObserver []Observer

func (m multiObserver) Start(ctx context.Context, lessonID, userID string) Monitor {
	monitors := make(multiMonitor, 0, len(m))
	for _, o := range m {
		monitors = append(monitors, o.Start(ctx, lessonID, userID))
	}
	return monitors
}

type multiMonitor []Monitor

func (m multiMonitor) StepAnswered(stepID string, correct bool) {
	for _, mon := range m {
		mon.StepAnswered(stepID, correct)
	}
}

func (m multiMonitor) CompletionStarted() {
	for _, mon := range m {
		mon.CompletionStarted()
	}
}

func (m multiMonitor) ProfileUpdateStarted() {
	for _, mon := range m {
		mon.ProfileUpdateStarted()
	}
}

func (m multiMonitor) ProfileUpdateFinished(err error) {
	for _, mon := range m {
		mon.ProfileUpdateFinished(err)
	}
}

func (m multiMonitor) TimeoutSet(name string, d time.Duration) {
	for _, mon := range m {
		mon.TimeoutSet(name, d)
	}
}

func (m multiMonitor) TimeoutTriggered(name string) {
	for _, mon := range m {
		mon.TimeoutTriggered(name)
	}
}

func (m multiMonitor) Error(err error) {
	for _, mon := range m {
		mon.Error(err)
	}
}

func (m multiMonitor) CompletionSucceeded(score, xpGained int) {
	for _, mon := range m {
		mon.CompletionSucceeded(score, xpGained)
	}
}

func (m multiMonitor) CompletionFallback(reason string) {
	for _, mon := range m {
		mon.CompletionFallback(reason)
	}
}

func (m multiMonitor) Stop() {
	for _, mon := range m {
		mon.Stop()
	}
}
