// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrMessageNotFound is returned when a handle does not address a stored message.
var ErrMessageNotFound = errors.New("message not found")

// =============================================================================
// MESSAGE STORE
// =============================================================================

// Store is the ordered list of messages that make up the visible session.
//
// Messages are never edited in place: an update replaces the addressed entry
// with a new value. Readers get copies, so a snapshot taken before an update
// keeps the old content.
//
// The Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	messages []Message
	index    map[string]int
}

// NewStore creates a store holding the given messages in order.
func NewStore(initial ...Message) *Store {
	s := &Store{}
	s.ResetTo(initial...)
	return s
}

// Append adds msg to the end of the store and returns its handle.
// A message without an ID is assigned one.
func (s *Store) Append(msg Message) string {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.index[msg.ID] = len(s.messages)
	s.messages = append(s.messages, msg)
	return msg.ID
}

// Extend replaces the message addressed by id with a copy whose content has
// chunk appended, and returns the new value.
func (s *Store) Extend(id, chunk string) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return Message{}, ErrMessageNotFound
	}
	updated := s.messages[i].Extended(chunk)
	s.messages[i] = updated
	return updated, nil
}

// Get returns the message addressed by id.
func (s *Store) Get(id string) (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return Message{}, false
	}
	return s.messages[i], true
}

// Snapshot returns a copy of all messages in order.
func (s *Store) Snapshot() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// ResetTo discards every message and replaces them with initial.
func (s *Store) ResetTo(initial ...Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = make([]Message, 0, len(initial)+8)
	s.index = make(map[string]int, len(initial)+8)
	for _, msg := range initial {
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		s.index[msg.ID] = len(s.messages)
		s.messages = append(s.messages, msg)
	}
}
