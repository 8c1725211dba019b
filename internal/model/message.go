// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Agent"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// =============================================================================
// MESSAGE KIND
// =============================================================================

// MsgType tags what a message carries. The zero value means untagged.
type MsgType string

const (
	MsgTypeNone        MsgType = ""
	MsgTypeRequirement MsgType = "requirement"
	MsgTypePlan        MsgType = "plan"
	MsgTypeCode        MsgType = "code"
	MsgTypeSelect      MsgType = "select"
)

// Valid reports whether t is untagged or one of the known kinds.
func (t MsgType) Valid() bool {
	switch t {
	case MsgTypeNone, MsgTypeRequirement, MsgTypePlan, MsgTypeCode, MsgTypeSelect:
		return true
	}
	return false
}

// =============================================================================
// MESSAGE
// =============================================================================

// Message is one conversational turn.
//
// ID is the handle used to address a message after it has been appended.
// Role and Project never change once the message is stored; only the content
// of an in-progress assistant reply is ever superseded.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Project   string    `json:"project"`
	MsgType   MsgType   `json:"msgType,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a fresh ID and the current time.
func NewMessage(role Role, content, project string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Project:   project,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user message for project.
func NewUserMessage(content, project string) Message {
	return NewMessage(RoleUser, content, project)
}

// NewAssistantMessage creates an assistant message for project.
func NewAssistantMessage(content, project string) Message {
	return NewMessage(RoleAssistant, content, project)
}

// NewSeedMessage creates the system message a fresh session starts with.
func NewSeedMessage(greeting, project string) Message {
	msg := NewMessage(RoleSystem, greeting, project)
	msg.MsgType = MsgTypeRequirement
	return msg
}

// WithType returns a copy of m tagged with t.
func (m Message) WithType(t MsgType) Message {
	m.MsgType = t
	return m
}

// Extended returns a copy of m whose content has chunk appended.
// Every other field, including ID, is carried over unchanged.
func (m Message) Extended(chunk string) Message {
	m.Content += chunk
	return m
}
