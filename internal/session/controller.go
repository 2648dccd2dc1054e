// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the conversation session controller.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/januscore/janus-cli/internal/api"
	"github.com/januscore/janus-cli/internal/model"
	"github.com/januscore/janus-cli/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrGenerationInFlight indicates a generation request is already
	// outstanding; the new request was rejected without touching history.
	ErrGenerationInFlight = errors.New("a generation is already in progress")

	// ErrEmptyConversation indicates the operation needs at least one turn.
	ErrEmptyConversation = errors.New("conversation is empty")

	// ErrNoUserTurn indicates regeneration found no user turn to resend.
	ErrNoUserTurn = errors.New("no user turn to regenerate from")

	// ErrNoAssistantReply indicates regenerate was called while the final
	// turn is a user turn. Regenerating would overwrite that user turn, so
	// the call is rejected; use RegenerateFrom on the user turn instead.
	ErrNoAssistantReply = errors.New("last turn is not an assistant reply")

	// ErrTurnNotFound indicates the referenced turn is not in the history.
	ErrTurnNotFound = errors.New("turn not found")

	// ErrNotFound indicates no saved conversation with the given id exists
	// in the cached catalog.
	ErrNotFound = errors.New("conversation not found")

	// ErrStaleGeneration indicates the response arrived after the active
	// conversation was swapped; the response was discarded.
	ErrStaleGeneration = errors.New("generation finished after conversation switch; response discarded")

	// ErrEmptyPromptName indicates a prompt template save without a name.
	ErrEmptyPromptName = errors.New("prompt name must not be empty")

	// ErrNotSaved indicates the operation requires a persisted conversation.
	ErrNotSaved = errors.New("conversation has not been saved")
)

// =============================================================================
// BACKEND INTERFACES
// =============================================================================

// Inference is the generate endpoint the controller depends on.
type Inference interface {
	Generate(ctx context.Context, req api.GenerateRequest) (string, error)
}

// Persistence is the prompt/conversation store the controller depends on.
type Persistence interface {
	ListPrompts(ctx context.Context) ([]model.PromptTemplate, error)
	CreatePrompt(ctx context.Context, name, systemPrompt, userPrompt string) error
	DeletePrompt(ctx context.Context, id int64) error

	ListConversations(ctx context.Context) ([]api.WireConversation, error)
	CreateConversation(ctx context.Context, turns []*model.Turn, title *string) (int64, string, error)
	ForkConversation(ctx context.Context, id int64, forkIndex int) (int64, string, error)
	DeleteConversation(ctx context.Context, id int64) error
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller is the conversation session controller. All methods are safe
// for concurrent use; network calls happen outside the lock.
type Controller struct {
	mu sync.Mutex

	// Active conversation state
	conv         *model.Conversation
	modelID      string
	systemPrompt string
	pendingInput string
	settings     model.ModelSettings

	// Catalog caches (independent snapshots of the backend store)
	saved   []*model.Conversation
	prompts []model.PromptTemplate

	// Generation gate
	generating bool

	// revision increments whenever the active conversation is swapped
	// wholesale (load, delete-active, clear). In-flight generations carry
	// the revision at issue time and are discarded on mismatch.
	revision uint64

	// Collaborators
	inference   Inference
	persistence Persistence
}

// NewController creates a controller with an empty unsaved conversation.
func NewController(inference Inference, persistence Persistence) *Controller {
	return &Controller{
		conv:        model.NewConversation(),
		modelID:     model.DefaultModel,
		settings:    make(model.ModelSettings),
		inference:   inference,
		persistence: persistence,
	}
}

// =============================================================================
// ACTIVE STATE ACCESSORS
// =============================================================================

// Model returns the active model identifier.
func (c *Controller) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modelID
}

// SetModel switches the active model, default-constructing its sampling
// parameters on first selection.
func (c *Controller) SetModel(modelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modelID = modelID
	c.settings.For(modelID)
}

// SystemPrompt returns the active system prompt.
func (c *Controller) SystemPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.systemPrompt
}

// SetSystemPrompt replaces the active system prompt.
func (c *Controller) SetSystemPrompt(p string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.systemPrompt = p
}

// PendingInput returns the draft user prompt.
func (c *Controller) PendingInput() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingInput
}

// SetPendingInput replaces the draft user prompt.
func (c *Controller) SetPendingInput(p string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingInput = p
}

// Params returns the sampling parameters for the active model,
// default-constructing them on first access.
func (c *Controller) Params() model.SamplingParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings.For(c.modelID)
}

// SetParams replaces the sampling parameters for the active model.
func (c *Controller) SetParams(p model.SamplingParams) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Set(c.modelID, p)
}

// Conversation returns a deep copy of the active conversation. Callers can
// render it without racing generation commits.
func (c *Controller) Conversation() *model.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.Clone()
}

// Title returns the active conversation title.
func (c *Controller) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.Title
}

// SetTitle sets the active conversation title (local only; persisted on save).
func (c *Controller) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conv.Title = util.NormalizeTitle(title)
}

// ActiveID returns the backend id of the active conversation, or
// model.UnsavedID if it has not been saved.
func (c *Controller) ActiveID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.ID
}

// IsGenerating reports whether a generation request is outstanding.
func (c *Controller) IsGenerating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generating
}

// Clear resets the active conversation to an empty unsaved one. Any
// in-flight generation response will be discarded as stale.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conv = model.NewConversation()
	c.revision++
}

// =============================================================================
// GENERATION
// =============================================================================

// beginGeneration acquires the generation gate and snapshots the state an
// inference call needs. Returns ErrGenerationInFlight if another request
// holds the gate.
func (c *Controller) beginGeneration() (rev uint64, modelID, systemPrompt string, params model.SamplingParams, history []*model.Turn, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generating {
		err = ErrGenerationInFlight
		return
	}
	c.generating = true

	rev = c.revision
	modelID = c.modelID
	systemPrompt = c.systemPrompt
	params = c.settings.For(c.modelID)
	history = c.conv.Clone().Turns
	return
}

// endGeneration releases the generation gate. Called on every exit path.
func (c *Controller) endGeneration() {
	c.mu.Lock()
	c.generating = false
	c.mu.Unlock()
}

// Generate sends the user text to the inference backend with the current
// history as context. On success it appends exactly two turns (user, then
// assistant) and clears the pending input; on failure history and pending
// input are left unmodified.
func (c *Controller) Generate(ctx context.Context, userText string) (*model.Turn, error) {
	rev, modelID, systemPrompt, params, history, err := c.beginGeneration()
	if err != nil {
		return nil, err
	}
	defer c.endGeneration()

	req := api.NewGenerateRequest(modelID, systemPrompt, userText, history, params)
	response, err := c.inference.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.revision != rev {
		return nil, ErrStaleGeneration
	}

	c.conv.Append(model.NewUserTurn(userText))
	assistant := model.NewAssistantTurn(response, modelID)
	c.conv.Append(assistant)
	c.pendingInput = ""
	return assistant, nil
}

// Regenerate replaces the trailing assistant reply with a fresh one. The
// most recent user turn (found by scanning from the end) is resent with the
// history truncated to drop the stale trailing reply; on success the final
// element is replaced in place, so history length never changes.
//
// If the final turn is a user turn there is no reply to replace and the
// call is rejected with ErrNoAssistantReply.
func (c *Controller) Regenerate(ctx context.Context) (*model.Turn, error) {
	rev, modelID, systemPrompt, params, history, err := c.beginGeneration()
	if err != nil {
		return nil, err
	}
	defer c.endGeneration()

	if len(history) == 0 {
		return nil, ErrEmptyConversation
	}
	if history[len(history)-1].Role != model.RoleAssistant {
		return nil, ErrNoAssistantReply
	}

	snap := &model.Conversation{Turns: history}
	lastUser := snap.LastUserTurn()
	if lastUser == nil {
		return nil, ErrNoUserTurn
	}

	req := api.NewGenerateRequest(modelID, systemPrompt, lastUser.Content, history[:len(history)-1], params)
	response, err := c.inference.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.revision != rev {
		return nil, ErrStaleGeneration
	}
	if c.conv.IsEmpty() {
		return nil, ErrEmptyConversation
	}

	// Targeted replace of the trailing slot, not an append.
	assistant := model.NewAssistantTurn(response, modelID)
	c.conv.Turns[len(c.conv.Turns)-1] = assistant
	return assistant, nil
}

// RegenerateFrom regenerates from a historical turn identified by ID:
// everything after that turn is discarded, its content is resent as the
// user prompt with the truncated history as context, and one new assistant
// turn is appended to the truncated history. On failure the conversation is
// left exactly as it was, truncation included.
func (c *Controller) RegenerateFrom(ctx context.Context, turnID string) (*model.Turn, error) {
	rev, modelID, systemPrompt, params, history, err := c.beginGeneration()
	if err != nil {
		return nil, err
	}
	defer c.endGeneration()

	snap := &model.Conversation{Turns: history}
	index := snap.IndexOf(turnID)
	if index == -1 {
		return nil, ErrTurnNotFound
	}
	target := history[index]

	snap.TruncateAfter(index)
	truncated := snap.Turns
	req := api.NewGenerateRequest(modelID, systemPrompt, target.Content, truncated, params)
	response, err := c.inference.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.revision != rev {
		return nil, ErrStaleGeneration
	}

	c.conv.Turns = c.conv.Turns[:0]
	c.conv.Turns = append(c.conv.Turns, truncated...)
	assistant := model.NewAssistantTurn(response, modelID)
	c.conv.Append(assistant)
	return assistant, nil
}

// =============================================================================
// LOCAL HISTORY MUTATION
// =============================================================================

// EditTurn replaces the content of the turn with the given ID. Pure local
// mutation; the role is unchanged and no network call is made.
func (c *Controller) EditTurn(turnID, newContent string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.conv.TurnByID(turnID)
	if t == nil {
		return ErrTurnNotFound
	}
	t.Content = newContent
	return nil
}

// DeleteTurn removes exactly the turn at the given index.
func (c *Controller) DeleteTurn(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.conv.RemoveAt(index) {
		return ErrTurnNotFound
	}
	return nil
}

// =============================================================================
// PERSISTENCE: CONVERSATIONS
// =============================================================================

// Save persists the active conversation. An empty title asks the backend to
// generate one. On success the backend-assigned id and title become the
// active persisted identity and a snapshot is appended to the saved list.
func (c *Controller) Save(ctx context.Context, title string) (int64, string, error) {
	c.mu.Lock()
	if c.conv.IsEmpty() {
		c.mu.Unlock()
		return 0, "", ErrEmptyConversation
	}
	turns := c.conv.Clone().Turns
	c.mu.Unlock()

	var titlePtr *string
	if t := util.NormalizeTitle(title); t != "" {
		titlePtr = &t
	}

	id, assignedTitle, err := c.persistence.CreateConversation(ctx, turns, titlePtr)
	if err != nil {
		return 0, "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.conv.ID = id
	c.conv.Title = assignedTitle
	c.saved = append(c.saved, c.conv.Clone())
	return id, assignedTitle, nil
}

// Fork creates a persisted copy of the active conversation up to its last
// turn and makes the copy the active persisted identity. If the
// conversation has never been saved, Save is awaited first and the fork is
// issued against the fresh id in the same operation.
func (c *Controller) Fork(ctx context.Context) (int64, string, error) {
	c.mu.Lock()
	if c.conv.IsEmpty() {
		c.mu.Unlock()
		return 0, "", ErrEmptyConversation
	}
	id := c.conv.ID
	forkIndex := c.conv.TurnCount() - 1
	c.mu.Unlock()

	if id == model.UnsavedID {
		var err error
		id, _, err = c.Save(ctx, "")
		if err != nil {
			return 0, "", err
		}
	}

	forkID, forkTitle, err := c.persistence.ForkConversation(ctx, id, forkIndex)
	if err != nil {
		return 0, "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.conv.ID = forkID
	c.conv.Title = forkTitle
	c.saved = append(c.saved, c.conv.Clone())
	return forkID, forkTitle, nil
}

// RefreshConversations replaces the saved-conversation cache from the
// backend and returns a snapshot of it.
func (c *Controller) RefreshConversations(ctx context.Context) ([]*model.Conversation, error) {
	wire, err := c.persistence.ListConversations(ctx)
	if err != nil {
		return nil, err
	}

	saved := make([]*model.Conversation, 0, len(wire))
	for _, w := range wire {
		saved = append(saved, api.WireToConversation(w))
	}

	c.mu.Lock()
	c.saved = saved
	c.mu.Unlock()
	return cloneAll(saved), nil
}

// PrimeConversations seeds the saved-conversation cache without a backend
// call. Used when the backend is unreachable and listings come from the
// offline cache instead.
func (c *Controller) PrimeConversations(convs []*model.Conversation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved = cloneAll(convs)
}

// SavedConversations returns a snapshot of the cached saved-conversation
// list. Entries are independent of the active conversation.
func (c *Controller) SavedConversations() []*model.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneAll(c.saved)
}

// Load replaces the active conversation wholesale from the saved-list entry
// with the given id. Returns ErrNotFound (and changes nothing) if the id is
// not in the cache. Any in-flight generation becomes stale.
func (c *Controller) Load(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.saved {
		if s.ID == id {
			c.conv = s.Clone()
			c.revision++
			return nil
		}
	}
	return ErrNotFound
}

// Delete removes a saved conversation from the backend and the cache. If it
// was the active conversation, active state resets to an empty unsaved
// conversation.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	if err := c.persistence.DeleteConversation(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.saved[:0]
	for _, s := range c.saved {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	c.saved = kept

	if c.conv.ID == id {
		c.conv = model.NewConversation()
		c.revision++
	}
	return nil
}

// =============================================================================
// PERSISTENCE: PROMPT TEMPLATES
// =============================================================================

// SavePrompt persists the current system prompt and pending input under the
// given name. The name must be non-empty; validation happens before any
// network call.
func (c *Controller) SavePrompt(ctx context.Context, name string) error {
	name = util.NormalizeTitle(name)
	if name == "" {
		return ErrEmptyPromptName
	}

	c.mu.Lock()
	systemPrompt := c.systemPrompt
	userPrompt := c.pendingInput
	c.mu.Unlock()

	return c.persistence.CreatePrompt(ctx, name, systemPrompt, userPrompt)
}

// RefreshPrompts replaces the prompt-template cache from the backend and
// returns a snapshot of it.
func (c *Controller) RefreshPrompts(ctx context.Context) ([]model.PromptTemplate, error) {
	prompts, err := c.persistence.ListPrompts(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.prompts = prompts
	c.mu.Unlock()

	out := make([]model.PromptTemplate, len(prompts))
	copy(out, prompts)
	return out, nil
}

// PrimePrompts seeds the prompt-template cache without a backend call.
func (c *Controller) PrimePrompts(prompts []model.PromptTemplate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.PromptTemplate, len(prompts))
	copy(out, prompts)
	c.prompts = out
}

// Prompts returns a snapshot of the cached prompt-template list.
func (c *Controller) Prompts() []model.PromptTemplate {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.PromptTemplate, len(c.prompts))
	copy(out, c.prompts)
	return out
}

// LoadPrompt copies a cached template's prompts into the active system
// prompt and pending input. No conversation interaction.
func (c *Controller) LoadPrompt(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.prompts {
		if p.ID == id {
			c.systemPrompt = p.SystemPrompt
			c.pendingInput = p.UserPrompt
			return nil
		}
	}
	return ErrNotFound
}

// DeletePrompt removes a prompt template from the backend and the cache.
func (c *Controller) DeletePrompt(ctx context.Context, id int64) error {
	if err := c.persistence.DeletePrompt(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.prompts[:0]
	for _, p := range c.prompts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	c.prompts = kept
	return nil
}

// =============================================================================
// STATUS
// =============================================================================

// Status is a point-in-time snapshot of the session state.
type Status struct {
	Model        string
	Title        string
	ActiveID     int64
	TurnCount    int
	IsGenerating bool
	SavedCount   int
	PromptCount  int
}

// GetStatus returns the current session status.
func (c *Controller) GetStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Model:        c.modelID,
		Title:        c.conv.GetTitle(),
		ActiveID:     c.conv.ID,
		TurnCount:    c.conv.TurnCount(),
		IsGenerating: c.generating,
		SavedCount:   len(c.saved),
		PromptCount:  len(c.prompts),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cloneAll deep-copies a conversation slice.
func cloneAll(convs []*model.Conversation) []*model.Conversation {
	out := make([]*model.Conversation, len(convs))
	for i, c := range convs {
		out[i] = c.Clone()
	}
	return out
}
