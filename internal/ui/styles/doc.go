// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the janus CLI.

This package defines the color palette and the lip gloss styles the chat
loop and list commands render with. All colors use Lip Gloss AdaptiveColor
for automatic light/dark terminal detection, and the configured theme mode
can force either background.

# Color System (colors.go)

Accent colors:

  - Purple - Primary accent for assistant replies
  - Cyan - Brand color for prompts and commands
  - Emerald - Success states
  - Amber - Warnings and unsaved-changes indicators
  - Rose - Errors

Transcript labels use dedicated tokens (UserLabelFg, AssistantLabelFg,
SystemLabelFg) so the two sides of a conversation stay visually distinct
on both light and dark terminals.

# Key Types

  - Theme - All styles used by the REPL, grouped by surface
  - SpinnerConfig - Frame set shown while a reply is generating
  - StatusIndicatorSet - ASCII shape indicators for colorblind users

# Usage

	theme := styles.NewThemeForMode(cfg.UI.Theme)
	fmt.Println(theme.UserLabel.Render("You:"))
	fmt.Println(styles.RenderError("generation failed"))

# Accessibility

Status messages always pair the color with an ASCII shape indicator
([OK], [X], [!], [i]) so state reads correctly without color, and the
high contrast pairs avoid red-green confusion.
*/
package styles
