// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package training

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// =============================================================================
// CONTROLLER
// =============================================================================

// Registrar records a chatbot after its index has been built. Implemented
// by the registry; called only on a successful run so a failed job never
// produces a registered chatbot.
type Registrar interface {
	RegisterTrained(ctx context.Context, company, team, part, name, indexPath string, at time.Time) error
}

// Backend runs the actual index build for a staged job and streams its
// output through the job's log. Implementations: ProcessBackend (local
// trainer executable) and UploadBackend (server-side training over HTTP).
type Backend interface {
	Train(ctx context.Context, job *Job, sourceDir, indexDir string) error
}

// Controller stages inputs, runs a Backend, and registers the result.
type Controller struct {
	dataDir   string
	backend   Backend
	registrar Registrar
}

// NewController wires a training controller. dataDir is the docent data
// directory; chatbot folders are created beneath dataDir/chatbots.
func NewController(dataDir string, backend Backend, registrar Registrar) *Controller {
	return &Controller{dataDir: dataDir, backend: backend, registrar: registrar}
}

// Request describes one training run.
type Request struct {
	Company string
	Team    string
	Part    string
	Name    string
	// PDFs are the input documents to stage. For a retrain an empty list
	// means "reuse whatever is already staged in source_data".
	PDFs []string
}

// DataDir returns the data directory the controller stages into.
func (c *Controller) DataDir() string {
	return c.dataDir
}

// BotDir returns the on-disk folder for a chatbot.
func BotDir(dataDir, company, team, part, name string) string {
	return filepath.Join(dataDir, "chatbots", company, team, part, name)
}

// IndexFile returns the trained index path inside a chatbot folder.
func IndexFile(botDir string) string {
	return filepath.Join(botDir, "index", "faiss.index")
}

// Start launches a training run and returns its job handle immediately.
// The run proceeds in the background; observe it via job.Subscribe.
func (c *Controller) Start(ctx context.Context, req Request) *Job {
	job := newJob(req.Company, req.Team, req.Part, req.Name)
	go c.run(ctx, job, req)
	return job
}

func (c *Controller) run(ctx context.Context, job *Job, req Request) {
	botDir := BotDir(c.dataDir, req.Company, req.Team, req.Part, req.Name)
	sourceDir := filepath.Join(botDir, "source_data")
	indexDir := filepath.Join(botDir, "index")

	job.setStatus(StatusStaging)
	job.appendLine(LineInfo, fmt.Sprintf("Preparing %s", req.Name))
	if err := c.stage(job, sourceDir, indexDir, req.PDFs); err != nil {
		job.fail(fmt.Sprintf("staging failed: %v", err))
		return
	}

	job.setStatus(StatusRunning)
	if err := c.backend.Train(ctx, job, sourceDir, indexDir); err != nil {
		job.fail(err.Error())
		return
	}

	if err := c.registrar.RegisterTrained(ctx, req.Company, req.Team, req.Part, req.Name, IndexFile(botDir), time.Now()); err != nil {
		// The index exists but the metadata write failed; the chatbot will
		// not be listed until a retrain succeeds.
		job.fail(fmt.Sprintf("index built but registration failed: %v", err))
		return
	}
	job.appendLine(LineInfo, fmt.Sprintf("Training complete for %s", req.Name))
	job.setStatus(StatusSucceeded)
}

// stage copies the input PDFs into source_data and ensures the index
// folder exists. Files are copied, not moved, so the user's originals are
// untouched.
func (c *Controller) stage(job *Job, sourceDir, indexDir string, pdfs []string) error {
	if err := os.MkdirAll(sourceDir, 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return err
	}
	for _, src := range pdfs {
		dst := filepath.Join(sourceDir, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
		}
		job.appendLine(LineInfo, fmt.Sprintf("Staged %s", filepath.Base(src)))
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// StagedPDFs lists the documents currently staged for a chatbot, for
// retrains that reuse the original inputs.
func StagedPDFs(dataDir, company, team, part, name string) ([]string, error) {
	sourceDir := filepath.Join(BotDir(dataDir, company, team, part, name), "source_data")
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out = append(out, filepath.Join(sourceDir, e.Name()))
	}
	return out, nil
}
