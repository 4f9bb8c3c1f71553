// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the docent TUI.

This package defines the color palette and the themed component styles
used throughout the application. All colors use Lip Gloss AdaptiveColor
for automatic light/dark terminal detection; the configured UI theme can
force either mode.

# Color System (colors.go)

  - Cyan - Brand color for titles, selections and info
  - Purple - Assistant answers and secondary accents
  - Emerald - Success states and trained chatbots
  - Amber - Warnings and in-progress training
  - Rose - Errors and failed training runs

Message bubbles and surfaces use semantic color tokens:

	UserBubbleBg      - Background for user questions
	AssistantBubbleBg - Background for assistant answers
	Surface           - Main background
	SurfaceDim        - Headers and status bars
	Overlay           - Borders and separators

# Theme (theme.go)

Theme bundles every styled component the views need: header, lists and
pickers, message bubbles, the input area, the status bar, training log
lines, and quiz rendering. Create one with NewThemeWithPreference and
share it across views; SetSize keeps it in step with the terminal.
*/
package styles
