// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"time"

	"github.com/jeranaias/mle-tui/internal/chat"
	"github.com/jeranaias/mle-tui/internal/config"
	"github.com/jeranaias/mle-tui/internal/report"
)

// =============================================================================
// CONTROLLER EVENTS
// =============================================================================

// ChatEventMsg carries a chat session change into the program.
type ChatEventMsg struct {
	Event chat.Event
}

// ReportEventMsg carries a report state change into the program.
type ReportEventMsg struct {
	Event report.Event
}

// =============================================================================
// COMMAND RESULTS
// =============================================================================

// SendDoneMsg reports the end of one chat send.
type SendDoneMsg struct {
	Handle string
	Err    error
}

// GenerateDoneMsg reports the end of a report generate request.
type GenerateDoneMsg struct {
	Outcome report.Outcome
	Err     error
}

// AwaitDoneMsg reports the end of polling after an accepted job.
type AwaitDoneMsg struct {
	Changed bool
	Err     error
}

// FetchDoneMsg reports the end of a latest-report fetch.
type FetchDoneMsg struct {
	Err error
}

// SavedMsg reports a finished export.
type SavedMsg struct {
	Path string
	Err  error
}

// ConfigReloadedMsg delivers a configuration reread after the file changed.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// =============================================================================
// TOASTS
// =============================================================================

// ToastKind selects the toast style.
type ToastKind string

const (
	ToastInfo    ToastKind = "info"
	ToastSuccess ToastKind = "success"
	ToastWarning ToastKind = "warning"
	ToastError   ToastKind = "error"
)

// toastTTL is how long a toast stays on the status line.
const toastTTL = 5 * time.Second

type toast struct {
	id   int
	kind ToastKind
	text string
}

// toastExpiredMsg clears the toast with the matching id.
type toastExpiredMsg struct {
	id int
}
