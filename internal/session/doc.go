// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the conversation session controller.
//
// The controller owns the active conversation (ordered turns plus
// title/id), the active model and its per-model sampling parameters, the
// cached catalogs of saved conversations and prompt templates, and the
// single generation-in-progress flag. It talks to the backend through two
// narrow interfaces (Inference, Persistence) so tests can substitute fakes.
//
// # Generation discipline
//
// At most one Generate/Regenerate/RegenerateFrom call is in flight at a
// time; a second call is rejected with ErrGenerationInFlight and leaves
// history untouched. The flag is cleared on every exit path. History is
// only mutated after a successful response: failures never leave partial
// appends behind.
//
// In-flight requests are tagged with the conversation revision current when
// the request was issued. If the active conversation is swapped (load,
// delete, clear) while a request is outstanding, the late response is
// discarded with ErrStaleGeneration instead of being appended to the wrong
// conversation.
package session
