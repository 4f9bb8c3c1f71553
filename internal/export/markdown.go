// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter writes a transcript as a Markdown document with a
// YAML frontmatter header.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a transcript to Markdown.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("chatbot: %s\n", escapeYAML(t.Chatbot)))
	sb.WriteString(fmt.Sprintf("scope: %s\n",
		escapeYAML(t.Company+" / "+t.Team+" / "+t.Part)))
	sb.WriteString(fmt.Sprintf("turns: %d\n", len(t.Turns)))
	sb.WriteString(fmt.Sprintf("exported: %s\n", t.Exported.Format(time.RFC3339)))
	sb.WriteString("generator: docent\n")
	sb.WriteString("---\n\n")

	sb.WriteString(fmt.Sprintf("# Conversation with %s\n\n", t.Chatbot))

	for _, turn := range t.Turns {
		switch turn.Role {
		case "user":
			sb.WriteString("## You")
		default:
			sb.WriteString("## " + t.Chatbot)
		}
		if e.options.IncludeTimestamps && !turn.At.IsZero() {
			sb.WriteString(" · " + turn.At.Format("2006-01-02 15:04"))
		}
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimRight(turn.Content, "\n"))
		sb.WriteString("\n")
		if e.options.IncludeSources && turn.Sources != "" {
			sb.WriteString("\n> Sources: " + turn.Sources + "\n")
		}
		sb.WriteString("\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// escapeYAML quotes a frontmatter value when it would break parsing.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#\"'\n[]{}") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
