// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the docent application:
// atomic file writes, ANSI escape stripping, and rune-safe string handling.
package util
