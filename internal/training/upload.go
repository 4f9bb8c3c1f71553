// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package training

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jeranaias/docent-tui/internal/api"
)

// =============================================================================
// UPLOAD BACKEND
// =============================================================================

// UploadBackend trains by shipping each staged PDF to the backend service,
// which builds the index server-side. There is no process output to relay;
// per-file progress is reported as info lines instead.
type UploadBackend struct {
	Client *api.Client
}

// Train uploads every staged document in order. The first failed upload
// aborts the run.
func (b *UploadBackend) Train(ctx context.Context, job *Job, sourceDir, indexDir string) error {
	pdfs, err := listFiles(sourceDir)
	if err != nil {
		return fmt.Errorf("read staged documents: %w", err)
	}
	if len(pdfs) == 0 {
		return fmt.Errorf("no staged documents in %s", sourceDir)
	}

	scope := api.Scope{Company: job.Company, Team: job.Team, Part: job.Part}
	for i, pdf := range pdfs {
		job.appendLine(LineInfo, fmt.Sprintf("Uploading %s (%d/%d)", filepath.Base(pdf), i+1, len(pdfs)))
		res, err := b.Client.UploadPDF(ctx, scope, job.Name, pdf)
		if err != nil {
			return fmt.Errorf("upload %s: %w", filepath.Base(pdf), err)
		}
		if res.Message != "" {
			job.appendLine(LineOutput, res.Message)
		}
	}
	return nil
}
