// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes chat transcripts to files. A transcript is the
// persisted conversation of one chatbot within one scope, formatted as
// Markdown (readable) or JSON (re-importable).
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/docent-tui/internal/history"
	"github.com/jeranaias/docent-tui/internal/util"
)

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is a conversation snapshot handed to an exporter.
type Transcript struct {
	Company  string         `json:"company"`
	Team     string         `json:"team"`
	Part     string         `json:"part"`
	Chatbot  string         `json:"chatbot"`
	Exported time.Time      `json:"exported"`
	Turns    []history.Turn `json:"turns"`
}

// =============================================================================
// EXPORTERS
// =============================================================================

// Exporter converts a transcript to one output format.
type Exporter interface {
	Export(t *Transcript) ([]byte, error)
	FileExtension() string
}

// Options configures export output.
type Options struct {
	// IncludeTimestamps adds per-turn timestamps to readable formats.
	IncludeTimestamps bool
	// IncludeSources keeps the source citations on assistant turns.
	IncludeSources bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() *Options {
	return &Options{IncludeTimestamps: true, IncludeSources: true}
}

// ForFormat returns the exporter for a format name.
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(format) {
	case "", "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want markdown or json)", format)
	}
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

// WriteFile exports a transcript into outDir and returns the file path.
// The filename carries the chatbot name and export date.
func WriteFile(t *Transcript, e Exporter, outDir string) (string, error) {
	if len(t.Turns) == 0 {
		return "", fmt.Errorf("transcript for %q is empty", t.Chatbot)
	}
	data, err := e.Export(t)
	if err != nil {
		return "", fmt.Errorf("format transcript: %w", err)
	}

	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	name := fmt.Sprintf("docent-%s-%s%s",
		sanitizeFilename(t.Chatbot),
		t.Exported.Format("2006-01-02-150405"),
		e.FileExtension())
	path := filepath.Join(outDir, name)

	if err := util.AtomicWriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}

// sanitizeFilename replaces path separators and other shell-hostile
// characters so chatbot names are always safe as filenames.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "chatbot"
	}
	return b.String()
}
