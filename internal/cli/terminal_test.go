// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"
	"testing"
)

func TestGetTerminalWidthNeverBelowMinimum(t *testing.T) {
	// Without a TTY this falls back to the default, which must itself
	// satisfy the minimum used for wrapping.
	if w := GetTerminalWidth(); w < MinTerminalWidth {
		t.Errorf("GetTerminalWidth() = %d, want at least %d", w, MinTerminalWidth)
	}
	if DefaultTerminalWidth < MinTerminalWidth {
		t.Errorf("default width %d below minimum %d", DefaultTerminalWidth, MinTerminalWidth)
	}
}

func TestTTYRequiredErrorMessage(t *testing.T) {
	err := &TTYRequiredError{Operation: "start an interactive chat"}
	if !strings.Contains(err.Error(), "start an interactive chat") {
		t.Errorf("error %q should name the operation", err.Error())
	}

	bare := &TTYRequiredError{}
	if !strings.Contains(bare.Error(), "not a terminal") {
		t.Errorf("error %q should explain the TTY requirement", bare.Error())
	}
}
