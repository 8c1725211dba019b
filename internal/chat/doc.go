// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat drives a streamed chat session against the agent backend.
//
// A Send appends the user's message, opens a streamed reply and folds every
// decoded chunk into one assistant message. The first chunk creates the
// message and clears the loading flag; later chunks replace it with a copy
// whose content has the chunk appended.
//
// # Key Types
//
//   - Controller: Session owner (store, loading, generation, cancellation)
//   - Backend: Streamed reply source, implemented by client.Client
//   - Event: Change notification for views (append, update, reset, failure)
//   - Phase: Idle, Sending, Streaming
//
// # Usage
//
//	ctrl := chat.NewController(client.NewClient(), &chat.Options{Project: "test2"})
//	ctrl.Subscribe(func(ev chat.Event) {
//	    if ev.ScrollToEnd() {
//	        view.GotoBottom()
//	    }
//	})
//	handle, err := ctrl.SendText(ctx, "add a login page")
package chat
