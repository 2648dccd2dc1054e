// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "time"

// =============================================================================
// SPINNER ANIMATIONS
// =============================================================================

// SpinnerConfig holds the configuration for a spinner animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// Duration returns the duration for each frame.
func (s SpinnerConfig) Duration() time.Duration {
	return time.Second / time.Duration(s.FPS)
}

// FrameAt returns the frame to show after the given elapsed time.
func (s SpinnerConfig) FrameAt(elapsed time.Duration) string {
	if len(s.Frames) == 0 {
		return ""
	}
	idx := int(elapsed/s.Duration()) % len(s.Frames)
	return s.Frames[idx]
}

// LineSpinner - Simple line rotation, shown while a reply is generating
var LineSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    10,
}

// DotsSpinner - Classic three-dot animation
var DotsSpinner = SpinnerConfig{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    6,
}
