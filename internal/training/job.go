// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package training drives one external indexing run per chatbot create or
// retrain request: stage the input PDFs, run a training back-end, stream
// tagged log lines to subscribers in emission order, and register the
// trained chatbot only after the run succeeds.
package training

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// JOB STATUS
// =============================================================================

// Status is the state of a training job.
// Valid path: Pending → Staging → Running → Succeeded | Failed.
// Terminal states are final; a retry is a fresh job.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusStaging   Status = "Staging"
	StatusRunning   Status = "Running"
	StatusSucceeded Status = "Succeeded"
	StatusFailed    Status = "Failed"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// =============================================================================
// LOG LINES
// =============================================================================

// LineKind tags the origin of a log line.
type LineKind string

const (
	// LineInfo is controller commentary (phase changes, results).
	LineInfo LineKind = "info"
	// LineOutput is a trainer stdout line.
	LineOutput LineKind = "stdout"
	// LineErrorOutput is a trainer stderr line.
	LineErrorOutput LineKind = "stderr"
)

// LogLine is one ANSI-stripped line of training output.
type LogLine struct {
	Kind LineKind
	Text string
}

// Event is one delivery to a log subscriber: either a log line or, exactly
// once at the end, the terminal status. Status events are delivered
// strictly after every line emitted before completion.
type Event struct {
	Line     *LogLine
	Status   Status // set on the terminal event
	Terminal bool
}

// =============================================================================
// JOB
// =============================================================================

// Job is the handle for one training run. It is created by the Controller
// and never restarted.
type Job struct {
	ID      string
	Name    string
	Company string
	Team    string
	Part    string

	mu       sync.Mutex
	cond     *sync.Cond
	status   Status
	lines    []LogLine
	diag     string // human-readable failure cause
	started  time.Time
	finished time.Time
}

// newJob creates a pending job for the given chatbot.
func newJob(company, team, part, name string) *Job {
	j := &Job{
		ID:      uuid.New().String(),
		Name:    name,
		Company: company,
		Team:    team,
		Part:    part,
		status:  StatusPending,
		started: time.Now(),
	}
	j.cond = sync.NewCond(&j.mu)
	return j
}

// Status returns the current job status.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Diagnostic returns the failure cause for a Failed job, empty otherwise.
func (j *Job) Diagnostic() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.diag
}

// Lines returns a copy of all log lines emitted so far, in emission order.
func (j *Job) Lines() []LogLine {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]LogLine{}, j.lines...)
}

// Duration returns how long the job ran (or has been running).
func (j *Job) Duration() time.Duration {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.finished.IsZero() {
		return time.Since(j.started)
	}
	return j.finished.Sub(j.started)
}

// appendLine records one log line and wakes subscribers. Lines are
// append-only; nothing is ever reordered or dropped.
func (j *Job) appendLine(kind LineKind, text string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.Terminal() {
		// A terminal status has already been observed; late writes from a
		// draining pipe must not appear after it.
		return
	}
	j.lines = append(j.lines, LogLine{Kind: kind, Text: text})
	j.cond.Broadcast()
}

// setStatus moves the job through its state machine.
func (j *Job) setStatus(s Status) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = s
	if s.Terminal() {
		j.finished = time.Now()
	}
	j.cond.Broadcast()
}

// fail marks the job Failed with a human-readable diagnostic.
func (j *Job) fail(diag string) {
	j.mu.Lock()
	j.diag = diag
	j.mu.Unlock()
	j.setStatus(StatusFailed)
}

// =============================================================================
// SUBSCRIPTION
// =============================================================================

// Subscribe returns a channel delivering every log line from the beginning
// of the job in emission order, followed by exactly one terminal event,
// after which the channel is closed. The returned cancel function tears the
// subscription down early (safe to call multiple times); callers tie it to
// the lifetime of the consuming view so listeners never leak.
func (j *Job) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			// Wake the delivery goroutine if it is parked on the cond.
			j.mu.Lock()
			j.cond.Broadcast()
			j.mu.Unlock()
		})
	}

	go func() {
		defer close(ch)
		next := 0
		for {
			j.mu.Lock()
			for next >= len(j.lines) && !j.status.Terminal() && !isClosed(done) {
				j.cond.Wait()
			}
			var ev Event
			switch {
			case next < len(j.lines):
				line := j.lines[next]
				next++
				ev = Event{Line: &line}
			case j.status.Terminal():
				ev = Event{Status: j.status, Terminal: true}
			}
			j.mu.Unlock()

			if isClosed(done) {
				return
			}
			select {
			case ch <- ev:
			case <-done:
				return
			}
			if ev.Terminal {
				return
			}
		}
	}()

	return ch, cancel
}

func isClosed(done chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
		return false
	}
}
