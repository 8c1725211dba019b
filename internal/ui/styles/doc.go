// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the mle-tui interface.

All colors use Lip Gloss AdaptiveColor so one palette serves light and dark
terminals. The Theme type bundles the styles for the header, chat messages,
input bar, report pane and report form.

# Color System (colors.go)

  - Purple - agent messages, active tab
  - Cyan - brand color, prompts, focused form fields
  - Emerald - success, code messages
  - Amber - warnings, system messages, requirement messages
  - Rose - errors

MsgTypeColor maps an agent message type to its badge color.

# Theme (theme.go)

	theme := styles.NewTheme(cfg.UI.Theme)
	label := theme.RoleLabel(msg.Role)
	body := theme.Bubble(msg.Role).Render(content)

# Spinners (spinner.go)

	s := spinner.New()
	s.Spinner = styles.BrailleSpinner.Bubble()
*/
package styles
