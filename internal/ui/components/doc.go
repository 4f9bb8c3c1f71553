// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the reusable visual components for the
docent TUI: the bottom status bar, a themed loading spinner, and the
vertical list picker the login and chatbot views are built from.

Components are plain view types in the Bubble Tea style: mutate them
through setters, advance them in Update, and render them with View.
They hold a *styles.Theme and never touch the terminal directly.
*/
package components
