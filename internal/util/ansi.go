// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "regexp"

// Trainer processes tend to emit colored progress output. Log lines must be
// clean text before they reach any consumer, so every stream line goes
// through StripANSI exactly once at the read boundary.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]|\x1b\][^\x07]*\x07`)

// StripANSI removes ANSI/terminal escape sequences (SGR color codes, cursor
// movement, OSC titles) from s. Plain text passes through unchanged.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
