// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report holds project report types, rendering and the job controller.
//
// # Key Types
//
//   - Data: Structured report (goals, progress, todos, problems, references)
//   - Request: Generation request with validation and form defaults
//   - Controller: Fetch/generate/await orchestration with loading and
//     not-found state
//   - Source: Backend contract, implemented by the HTTP client
//
// # Usage
//
//	ctrl := report.NewController(httpClient, nil)
//	if err := ctrl.FetchLatest(ctx); err != nil {
//	    return err
//	}
//	outcome, err := ctrl.Generate(ctx, report.NewRequest("a/b", "u", token))
//	if err == nil && outcome == report.OutcomeAccepted {
//	    ctrl.AwaitNewReport(ctx)
//	}
//	fmt.Println(ctrl.State().Markdown)
package report
