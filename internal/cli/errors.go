// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/mle-tui/internal/client"
	"github.com/jeranaias/mle-tui/internal/config"
	"github.com/jeranaias/mle-tui/internal/report"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the backend could not be reached
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "report")
	Action  string // Action being performed (e.g., "generate")
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Command, e.Action, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError marks bad arguments or flags.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

func wrapCommandError(command, action string, err error) error {
	if err == nil {
		return nil
	}
	return &CommandError{Command: command, Action: action, Err: err}
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// ExitCodeFor maps an error to the process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	var cfgErrs config.ValidateErrors
	var reqErrs report.ValidateErrors
	var tty *TTYRequiredError
	switch {
	case errors.As(err, &usage), errors.As(err, &reqErrs), errors.As(err, &tty):
		return ExitUsageError
	case errors.As(err, &cfgErrs):
		return ExitConfigError
	case errors.Is(err, report.ErrNoReport), client.IsNotFound(err):
		return ExitNotFoundError
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, client.ErrTimeout):
		return ExitTimeoutError
	case errors.Is(err, client.ErrConnection):
		return ExitNetworkError
	default:
		return ExitGeneralError
	}
}

// hintFor returns a follow-up suggestion for common failures, or "".
func hintFor(err error, baseURL string) string {
	switch ExitCodeFor(err) {
	case ExitNetworkError:
		return fmt.Sprintf("Is the agent backend running at %s? Set --base-url or MLE_BASE_URL to change it.", baseURL)
	case ExitNotFoundError:
		return "Generate one with: mle-tui report generate --repo OWNER/NAME --username USER --token TOKEN"
	case ExitConfigError:
		return "Check the file shown by: mle-tui config path"
	case ExitTimeoutError:
		return "Raise server.timeout_secs or MLE_TIMEOUT for slow report runs."
	}
	return ""
}
