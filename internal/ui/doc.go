// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the interactive terminal interface for docent.
//
// The root Model is a screen machine over five screens: login (walk
// the organizational tree), chatbot list, training log, chat, and
// quiz. Screens are value types with update/view methods; the root
// model owns routing, the shared theme, and the status bar. All
// backend work runs in tea.Cmd closures that resolve to typed
// messages, so screens never block the render loop.
//
// The package constructs nothing itself: callers assemble a Deps and
// hand it to New.
package ui
