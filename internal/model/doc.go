// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// # Key Types
//
//   - Message: Single turn with role, content, project and optional kind
//   - Role: Message role enumeration (system, user, assistant)
//   - MsgType: Message kind (requirement, plan, code, select)
//   - Store: Ordered, handle-addressed message list for one session
//
// # Usage
//
// Build a session and stream into an assistant reply:
//
//	store := model.NewStore(model.NewSeedMessage("", "test2"))
//	store.Append(model.NewUserMessage("hello", "test2"))
//	id := store.Append(model.NewAssistantMessage("Hel", "test2"))
//	store.Extend(id, "lo")
package model
