// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for mle-tui.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ServerConfig: Backend origin and request bound
//   - ChatConfig: Project and greeting for new sessions
//   - ReportConfig: Report form defaults and polling
//   - UIConfig: Theme, wrap width and render cache
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (MLE_*)
//   - .env files (working directory, then ~/.mle-tui)
//   - ~/.mle-tui/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	req := cfg.Report.Request()
//
// Reload on edit:
//
//	config.Watch(ctx, path, func(cfg *config.Config, err error) { ... })
package config
