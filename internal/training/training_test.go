// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package training

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// =============================================================================
// LOG STREAM TESTS
// =============================================================================

// drain collects every event until the channel closes or the timeout hits.
func drain(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var out []Event
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-deadline:
			t.Fatalf("timed out draining events (got %d)", len(out))
		}
	}
}

func TestSubscribeDeliversLinesInOrderThenTerminal(t *testing.T) {
	job := newJob("acme", "eng", "line-1", "bot")
	ch, cancel := job.Subscribe()
	defer cancel()

	go func() {
		for i := 0; i < 50; i++ {
			job.appendLine(LineOutput, fmt.Sprintf("line %d", i))
		}
		job.setStatus(StatusSucceeded)
	}()

	events := drain(t, ch)
	if len(events) != 51 {
		t.Fatalf("got %d events, want 51", len(events))
	}
	for i := 0; i < 50; i++ {
		if events[i].Line == nil {
			t.Fatalf("event %d is not a line", i)
		}
		if want := fmt.Sprintf("line %d", i); events[i].Line.Text != want {
			t.Errorf("event %d = %q, want %q", i, events[i].Line.Text, want)
		}
	}
	last := events[50]
	if !last.Terminal || last.Status != StatusSucceeded {
		t.Errorf("last event = %+v, want terminal Succeeded", last)
	}
}

func TestSubscribeAfterCompletionReplaysFullLog(t *testing.T) {
	job := newJob("acme", "eng", "line-1", "bot")
	job.appendLine(LineInfo, "starting")
	job.appendLine(LineErrorOutput, "boom")
	job.fail("trainer exited: exit status 1")

	ch, cancel := job.Subscribe()
	defer cancel()
	events := drain(t, ch)

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Line.Kind != LineInfo || events[1].Line.Kind != LineErrorOutput {
		t.Errorf("line kinds = %v, %v", events[0].Line.Kind, events[1].Line.Kind)
	}
	if !events[2].Terminal || events[2].Status != StatusFailed {
		t.Errorf("last event = %+v, want terminal Failed", events[2])
	}
	if job.Diagnostic() == "" {
		t.Error("failed job has no diagnostic")
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	job := newJob("acme", "eng", "line-1", "bot")
	ch, cancel := job.Subscribe()
	cancel()
	cancel() // safe to call twice

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}

func TestNoLinesAfterTerminalStatus(t *testing.T) {
	job := newJob("acme", "eng", "line-1", "bot")
	job.appendLine(LineOutput, "before")
	job.setStatus(StatusSucceeded)
	job.appendLine(LineOutput, "after") // must be dropped

	if got := job.Lines(); len(got) != 1 || got[0].Text != "before" {
		t.Errorf("lines after terminal = %v", got)
	}
}

// =============================================================================
// CONTROLLER TESTS
// =============================================================================

type fakeBackend struct {
	err    error
	gotSrc string
}

func (f *fakeBackend) Train(_ context.Context, job *Job, sourceDir, indexDir string) error {
	f.gotSrc = sourceDir
	if f.err != nil {
		return f.err
	}
	// Simulate the trainer writing the index.
	if err := os.WriteFile(filepath.Join(indexDir, "faiss.index"), []byte("idx"), 0o644); err != nil {
		return err
	}
	job.appendLine(LineOutput, "embedding pages")
	return nil
}

type fakeRegistrar struct {
	err   error
	calls int
	index string
}

func (f *fakeRegistrar) RegisterTrained(_ context.Context, company, team, part, name, indexPath string, _ time.Time) error {
	f.calls++
	f.index = indexPath
	return f.err
}

func waitTerminal(t *testing.T, job *Job) Status {
	t.Helper()
	ch, cancel := job.Subscribe()
	defer cancel()
	events := drain(t, ch)
	if len(events) == 0 || !events[len(events)-1].Terminal {
		t.Fatal("job never reached a terminal status")
	}
	return events[len(events)-1].Status
}

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestControllerStagesAndRegistersOnSuccess(t *testing.T) {
	dataDir := t.TempDir()
	backend := &fakeBackend{}
	reg := &fakeRegistrar{}
	c := NewController(dataDir, backend, reg)

	pdf := writePDF(t, t.TempDir(), "handbook.pdf")
	job := c.Start(context.Background(), Request{
		Company: "acme", Team: "eng", Part: "line-1", Name: "bot", PDFs: []string{pdf},
	})

	if got := waitTerminal(t, job); got != StatusSucceeded {
		t.Fatalf("status = %v (diag %q), want Succeeded", got, job.Diagnostic())
	}
	staged := filepath.Join(dataDir, "chatbots", "acme", "eng", "line-1", "bot", "source_data", "handbook.pdf")
	if _, err := os.Stat(staged); err != nil {
		t.Errorf("staged copy missing: %v", err)
	}
	if _, err := os.Stat(pdf); err != nil {
		t.Errorf("original was moved, want copy: %v", err)
	}
	if reg.calls != 1 {
		t.Errorf("registrar calls = %d, want 1", reg.calls)
	}
	if want := IndexFile(BotDir(dataDir, "acme", "eng", "line-1", "bot")); reg.index != want {
		t.Errorf("registered index = %q, want %q", reg.index, want)
	}
}

func TestControllerBackendFailureSkipsRegistration(t *testing.T) {
	dataDir := t.TempDir()
	backend := &fakeBackend{err: fmt.Errorf("trainer exited: exit status 2")}
	reg := &fakeRegistrar{}
	c := NewController(dataDir, backend, reg)

	pdf := writePDF(t, t.TempDir(), "a.pdf")
	job := c.Start(context.Background(), Request{Company: "acme", Team: "eng", Part: "p", Name: "bot", PDFs: []string{pdf}})

	if got := waitTerminal(t, job); got != StatusFailed {
		t.Fatalf("status = %v, want Failed", got)
	}
	if reg.calls != 0 {
		t.Errorf("registrar called %d times on failure", reg.calls)
	}
	if job.Diagnostic() == "" {
		t.Error("no diagnostic on failure")
	}
}

func TestControllerRegistrationFailureFailsJob(t *testing.T) {
	dataDir := t.TempDir()
	c := NewController(dataDir, &fakeBackend{}, &fakeRegistrar{err: fmt.Errorf("disk full")})

	pdf := writePDF(t, t.TempDir(), "a.pdf")
	job := c.Start(context.Background(), Request{Company: "acme", Team: "eng", Part: "p", Name: "bot", PDFs: []string{pdf}})

	if got := waitTerminal(t, job); got != StatusFailed {
		t.Fatalf("status = %v, want Failed", got)
	}
}

func TestControllerStagingFailure(t *testing.T) {
	dataDir := t.TempDir()
	reg := &fakeRegistrar{}
	c := NewController(dataDir, &fakeBackend{}, reg)

	job := c.Start(context.Background(), Request{
		Company: "acme", Team: "eng", Part: "p", Name: "bot",
		PDFs: []string{filepath.Join(t.TempDir(), "missing.pdf")},
	})

	if got := waitTerminal(t, job); got != StatusFailed {
		t.Fatalf("status = %v, want Failed", got)
	}
	if reg.calls != 0 {
		t.Error("registrar called despite staging failure")
	}
}

// =============================================================================
// PROCESS BACKEND TESTS
// =============================================================================

// writeTrainer writes an executable shell script posing as the trainer.
func writeTrainer(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell trainer scripts are not portable to windows")
	}
	path := filepath.Join(t.TempDir(), "train_index.sh")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessBackendTagsAndStripsOutput(t *testing.T) {
	trainer := writeTrainer(t, `printf 'plain line\n'
printf '\033[32mgreen line\033[0m\n'
printf 'warn line\n' >&2`)

	dataDir := t.TempDir()
	job := newJob("acme", "eng", "p", "bot")
	sourceDir := filepath.Join(dataDir, "source_data")
	indexDir := filepath.Join(dataDir, "index")
	os.MkdirAll(sourceDir, 0o755)
	os.MkdirAll(indexDir, 0o755)
	writePDF(t, sourceDir, "doc.pdf")

	b := &ProcessBackend{TrainerPath: trainer}
	if err := b.Train(context.Background(), job, sourceDir, indexDir); err != nil {
		t.Fatalf("Train: %v", err)
	}

	byKind := map[LineKind][]string{}
	for _, l := range job.Lines() {
		byKind[l.Kind] = append(byKind[l.Kind], l.Text)
	}
	wantOut := []string{"plain line", "green line"}
	if got := byKind[LineOutput]; len(got) != 2 || got[0] != wantOut[0] || got[1] != wantOut[1] {
		t.Errorf("stdout lines = %v, want %v", got, wantOut)
	}
	if got := byKind[LineErrorOutput]; len(got) != 1 || got[0] != "warn line" {
		t.Errorf("stderr lines = %v, want [warn line]", got)
	}
}

func TestProcessBackendNonZeroExit(t *testing.T) {
	trainer := writeTrainer(t, `printf 'dying\n' >&2
exit 3`)

	dataDir := t.TempDir()
	sourceDir := filepath.Join(dataDir, "source_data")
	os.MkdirAll(sourceDir, 0o755)
	writePDF(t, sourceDir, "doc.pdf")

	job := newJob("acme", "eng", "p", "bot")
	b := &ProcessBackend{TrainerPath: trainer}
	err := b.Train(context.Background(), job, sourceDir, filepath.Join(dataDir, "index"))
	if err == nil {
		t.Fatal("want error on exit code 3")
	}
}

func TestProcessBackendRequiresStagedDocuments(t *testing.T) {
	dataDir := t.TempDir()
	sourceDir := filepath.Join(dataDir, "source_data")
	os.MkdirAll(sourceDir, 0o755)

	job := newJob("acme", "eng", "p", "bot")
	b := &ProcessBackend{TrainerPath: "/bin/true"}
	if err := b.Train(context.Background(), job, sourceDir, dataDir); err == nil {
		t.Fatal("want error with no staged documents")
	}
}

// =============================================================================
// INDEX WATCHER TESTS
// =============================================================================

func TestIndexWatcherReportsReadiness(t *testing.T) {
	root := t.TempDir()
	type hit struct {
		name  string
		ready bool
	}
	hits := make(chan hit, 8)

	iw, err := NewIndexWatcher(root, 50*time.Millisecond, func(company, team, part, name string, ready bool) {
		if company == "acme" && team == "eng" && part == "p" {
			hits <- hit{name, ready}
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer iw.Close()
	if err := iw.Watch(); err != nil {
		t.Fatal(err)
	}

	indexDir := filepath.Join(root, "acme", "eng", "p", "bot", "index")
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher a beat to pick up the new directories.
	time.Sleep(300 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(indexDir, "faiss.index"), []byte("idx"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case h := <-hits:
		if h.name != "bot" || !h.ready {
			t.Errorf("got %+v, want {bot true}", h)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no readiness callback for created index")
	}
}
