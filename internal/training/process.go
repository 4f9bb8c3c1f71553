// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package training

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/jeranaias/docent-tui/internal/util"
)

// =============================================================================
// PROCESS BACKEND
// =============================================================================

// ProcessBackend trains by spawning a local trainer executable and relaying
// its output line by line. Stdout and stderr are read concurrently and
// tagged; ANSI escape sequences are stripped at the read boundary so the
// log is plain text no matter how colorful the trainer is.
type ProcessBackend struct {
	// TrainerPath is the trainer executable (e.g. a train_index.py wrapper).
	TrainerPath string
	// Interpreter, when set, is prepended to the command line (e.g.
	// "python3" for a bare script).
	Interpreter string
}

// Train runs the trainer once per staged document set. A non-zero exit is a
// failure; the last stderr line usually carries the cause.
func (b *ProcessBackend) Train(ctx context.Context, job *Job, sourceDir, indexDir string) error {
	pdfs, err := listFiles(sourceDir)
	if err != nil {
		return fmt.Errorf("read staged documents: %w", err)
	}
	if len(pdfs) == 0 {
		return fmt.Errorf("no staged documents in %s", sourceDir)
	}

	args := []string{}
	bin := b.TrainerPath
	if b.Interpreter != "" {
		args = append(args, b.TrainerPath)
		bin = b.Interpreter
	}
	for _, pdf := range pdfs {
		args = append(args, "--pdf", pdf)
	}
	args = append(args,
		"--output", indexDir,
		"--company", job.Company,
		"--team", job.Team,
		"--part", job.Part,
		"--name", job.Name,
	)

	cmd := exec.CommandContext(ctx, bin, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	job.appendLine(LineInfo, fmt.Sprintf("Running trainer: %s", filepath.Base(b.TrainerPath)))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start trainer: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		relay(job, LineOutput, stdout)
	}()
	go func() {
		defer wg.Done()
		relay(job, LineErrorOutput, stderr)
	}()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("trainer canceled: %w", ctx.Err())
		}
		return fmt.Errorf("trainer exited: %w", err)
	}
	return nil
}

// relay forwards one pipe into the job log, one stripped line at a time.
func relay(job *Job, kind LineKind, r interface{ Read([]byte) (int, error) }) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		job.appendLine(kind, util.StripANSI(sc.Text()))
	}
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, nil
}
