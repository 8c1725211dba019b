// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns chat messages and report Markdown into styled
// terminal text.
//
// Markdown goes through glamour, code messages through chroma. Output is
// cached per width in an LRU so redrawing a long conversation does not
// re-render every message on every frame.
//
// # Usage
//
//	r, err := render.New(render.Options{Style: cfg.UI.Theme, Width: 100})
//	body := r.Message(msg)
//	r.SetWidth(newWidth)
package render
