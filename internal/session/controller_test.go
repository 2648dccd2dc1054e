// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/januscore/janus-cli/internal/api"
	"github.com/januscore/janus-cli/internal/model"
)

// =============================================================================
// FAKES
// =============================================================================

// fakeInference records requests and returns canned responses. When block is
// non-nil, Generate parks on it until the channel is closed, which lets
// tests hold a generation in flight.
type fakeInference struct {
	mu        sync.Mutex
	requests  []api.GenerateRequest
	responses []string
	err       error
	block     chan struct{}
	started   chan struct{}
}

func (f *fakeInference) Generate(ctx context.Context, req api.GenerateRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	n := len(f.requests)
	started := f.started
	block := f.block
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) > 0 {
		return f.responses[(n-1)%len(f.responses)], nil
	}
	return fmt.Sprintf("reply %d", n), nil
}

func (f *fakeInference) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeInference) lastRequest() api.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

// fakePersistence is an in-memory backend store.
type fakePersistence struct {
	mu            sync.Mutex
	nextID        int64
	conversations map[int64]api.WireConversation
	prompts       []model.PromptTemplate
	createCalls   int
	forkCalls     int
	err           error
}

func newFakePersistence() *fakePersistence {
	return &fakePersistence{nextID: 1, conversations: make(map[int64]api.WireConversation)}
}

func (f *fakePersistence) ListPrompts(ctx context.Context) ([]model.PromptTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.PromptTemplate, len(f.prompts))
	copy(out, f.prompts)
	return out, nil
}

func (f *fakePersistence) CreatePrompt(ctx context.Context, name, systemPrompt, userPrompt string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.prompts = append(f.prompts, model.PromptTemplate{
		ID:           f.nextID,
		Name:         name,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	})
	f.nextID++
	return nil
}

func (f *fakePersistence) DeletePrompt(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	kept := f.prompts[:0]
	for _, p := range f.prompts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.prompts = kept
	return nil
}

func (f *fakePersistence) ListConversations(ctx context.Context) ([]api.WireConversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]api.WireConversation, 0, len(f.conversations))
	for _, c := range f.conversations {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakePersistence) CreateConversation(ctx context.Context, turns []*model.Turn, title *string) (int64, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, "", f.err
	}
	f.createCalls++
	id := f.nextID
	f.nextID++
	t := fmt.Sprintf("Conversation %d", id)
	if title != nil {
		t = *title
	}
	f.conversations[id] = api.WireConversation{ID: id, Title: t, Messages: api.TurnsToWire(turns)}
	return id, t, nil
}

func (f *fakePersistence) ForkConversation(ctx context.Context, id int64, forkIndex int) (int64, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, "", f.err
	}
	src, ok := f.conversations[id]
	if !ok {
		return 0, "", api.ErrNotFound
	}
	f.forkCalls++
	forkID := f.nextID
	f.nextID++
	title := "Fork of: " + src.Title
	msgs := src.Messages
	if forkIndex+1 < len(msgs) {
		msgs = msgs[:forkIndex+1]
	}
	f.conversations[forkID] = api.WireConversation{ID: forkID, Title: title, Messages: msgs}
	return forkID, title, nil
}

func (f *fakePersistence) DeleteConversation(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.conversations[id]; !ok {
		return api.ErrNotFound
	}
	delete(f.conversations, id)
	return nil
}

func newTestController() (*Controller, *fakeInference, *fakePersistence) {
	inf := &fakeInference{}
	store := newFakePersistence()
	return NewController(inf, store), inf, store
}

// =============================================================================
// GENERATION TESTS
// =============================================================================

func TestGenerateAppendsUserAndAssistant(t *testing.T) {
	c, inf, _ := newTestController()
	inf.responses = []string{"Hello there."}

	turn, err := c.Generate(context.Background(), "Hi")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if turn.Content != "Hello there." {
		t.Errorf("assistant content = %q, want %q", turn.Content, "Hello there.")
	}

	conv := c.Conversation()
	if conv.TurnCount() != 2 {
		t.Fatalf("turn count = %d, want 2", conv.TurnCount())
	}
	if conv.Turns[0].Role != model.RoleUser || conv.Turns[0].Content != "Hi" {
		t.Errorf("first turn = %s %q, want user %q", conv.Turns[0].Role, conv.Turns[0].Content, "Hi")
	}
	if conv.Turns[1].Role != model.RoleAssistant {
		t.Errorf("second turn role = %s, want assistant", conv.Turns[1].Role)
	}
	if conv.Turns[1].Model != model.DefaultModel {
		t.Errorf("assistant model tag = %q, want %q", conv.Turns[1].Model, model.DefaultModel)
	}
}

func TestGenerateClearsPendingInput(t *testing.T) {
	c, _, _ := newTestController()
	c.SetPendingInput("Hi")

	if _, err := c.Generate(context.Background(), "Hi"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := c.PendingInput(); got != "" {
		t.Errorf("pending input = %q, want empty after success", got)
	}
}

func TestGenerateFailureLeavesHistoryUntouched(t *testing.T) {
	c, inf, _ := newTestController()
	inf.err = errors.New("backend exploded")
	c.SetPendingInput("Hi")

	if _, err := c.Generate(context.Background(), "Hi"); err == nil {
		t.Fatal("Generate should fail when the backend fails")
	}
	if n := c.Conversation().TurnCount(); n != 0 {
		t.Errorf("turn count = %d, want 0 after failure", n)
	}
	if got := c.PendingInput(); got != "Hi" {
		t.Errorf("pending input = %q, want preserved after failure", got)
	}
	if c.IsGenerating() {
		t.Error("generating flag must be cleared after failure")
	}
}

func TestGenerateRejectsSecondWhileInFlight(t *testing.T) {
	c, inf, _ := newTestController()
	inf.block = make(chan struct{})
	inf.started = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := c.Generate(context.Background(), "first")
		done <- err
	}()
	<-inf.started

	if _, err := c.Generate(context.Background(), "second"); !errors.Is(err, ErrGenerationInFlight) {
		t.Fatalf("second Generate error = %v, want ErrGenerationInFlight", err)
	}

	close(inf.block)
	if err := <-done; err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	if n := c.Conversation().TurnCount(); n != 2 {
		t.Errorf("turn count = %d, want 2 (rejected request adds nothing)", n)
	}
	if got := inf.requestCount(); got != 1 {
		t.Errorf("inference calls = %d, want 1", got)
	}
}

func TestGenerateDiscardsStaleResponse(t *testing.T) {
	c, inf, _ := newTestController()
	inf.block = make(chan struct{})
	inf.started = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := c.Generate(context.Background(), "Hi")
		done <- err
	}()
	<-inf.started

	// Swapping the active conversation mid-flight invalidates the response.
	c.Clear()
	close(inf.block)

	if err := <-done; !errors.Is(err, ErrStaleGeneration) {
		t.Fatalf("Generate error = %v, want ErrStaleGeneration", err)
	}
	if n := c.Conversation().TurnCount(); n != 0 {
		t.Errorf("turn count = %d, want 0 (stale response discarded)", n)
	}
	if c.IsGenerating() {
		t.Error("generating flag must be cleared after a stale discard")
	}
}

func TestGenerateSendsSamplingParams(t *testing.T) {
	c, inf, _ := newTestController()
	p := c.Params()
	p.Temperature = 0.2
	p.MaxTokens = 512
	c.SetParams(p)

	if _, err := c.Generate(context.Background(), "Hi"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	req := inf.lastRequest()
	if req.Temperature != 0.2 || req.MaxTokens != 512 {
		t.Errorf("request params = (%v, %d), want (0.2, 512)", req.Temperature, req.MaxTokens)
	}
	if req.Model != model.DefaultModel {
		t.Errorf("request model = %q, want %q", req.Model, model.DefaultModel)
	}
}

// =============================================================================
// REGENERATION TESTS
// =============================================================================

// seed runs n Generate round-trips and returns the resulting turn count.
func seed(t *testing.T, c *Controller, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := c.Generate(context.Background(), fmt.Sprintf("question %d", i)); err != nil {
			t.Fatalf("seed Generate %d: %v", i, err)
		}
	}
}

func TestRegenerateReplacesTailWithoutChangingLength(t *testing.T) {
	c, inf, _ := newTestController()
	seed(t, c, 2)
	before := c.Conversation()

	inf.responses = []string{"a better answer"}
	turn, err := c.Regenerate(context.Background())
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if turn.Content != "a better answer" {
		t.Errorf("regenerated content = %q", turn.Content)
	}

	after := c.Conversation()
	if after.TurnCount() != before.TurnCount() {
		t.Fatalf("turn count changed: %d -> %d", before.TurnCount(), after.TurnCount())
	}
	for i := 0; i < after.TurnCount()-1; i++ {
		if after.Turns[i].ID != before.Turns[i].ID {
			t.Errorf("turn %d identity changed during regenerate", i)
		}
	}
	if after.LastTurn().ID == before.LastTurn().ID {
		t.Error("trailing assistant turn should be a new turn")
	}

	// The stale reply must not be in the resent context.
	req := inf.lastRequest()
	if len(req.Conversation) != before.TurnCount()-1 {
		t.Errorf("context length = %d, want %d", len(req.Conversation), before.TurnCount()-1)
	}
	if req.UserPrompt != "question 1" {
		t.Errorf("resent prompt = %q, want %q", req.UserPrompt, "question 1")
	}
}

func TestRegenerateRejectsWhenLastTurnIsUser(t *testing.T) {
	c, _, _ := newTestController()
	seed(t, c, 1)
	conv := c.Conversation()
	if err := c.DeleteTurn(conv.TurnCount() - 1); err != nil {
		t.Fatalf("DeleteTurn: %v", err)
	}

	if _, err := c.Regenerate(context.Background()); !errors.Is(err, ErrNoAssistantReply) {
		t.Fatalf("Regenerate error = %v, want ErrNoAssistantReply", err)
	}
	if n := c.Conversation().TurnCount(); n != 1 {
		t.Errorf("turn count = %d, want 1 (rejection mutates nothing)", n)
	}
}

func TestRegenerateRejectsEmptyConversation(t *testing.T) {
	c, _, _ := newTestController()
	if _, err := c.Regenerate(context.Background()); !errors.Is(err, ErrEmptyConversation) {
		t.Fatalf("Regenerate error = %v, want ErrEmptyConversation", err)
	}
}

func TestRegenerateFailureLeavesHistoryUntouched(t *testing.T) {
	c, inf, _ := newTestController()
	seed(t, c, 2)
	before := c.Conversation()

	inf.err = errors.New("backend exploded")
	if _, err := c.Regenerate(context.Background()); err == nil {
		t.Fatal("Regenerate should fail when the backend fails")
	}

	after := c.Conversation()
	if after.TurnCount() != before.TurnCount() {
		t.Fatalf("turn count changed on failure: %d -> %d", before.TurnCount(), after.TurnCount())
	}
	if after.LastTurn().ID != before.LastTurn().ID {
		t.Error("trailing turn changed on failure")
	}
}

func TestRegenerateFromTruncatesAndAppends(t *testing.T) {
	c, inf, _ := newTestController()
	seed(t, c, 3) // 6 turns
	conv := c.Conversation()
	target := conv.Turns[2] // user turn "question 1"

	inf.responses = []string{"fresh take"}
	turn, err := c.RegenerateFrom(context.Background(), target.ID)
	if err != nil {
		t.Fatalf("RegenerateFrom: %v", err)
	}
	if turn.Content != "fresh take" {
		t.Errorf("content = %q", turn.Content)
	}

	after := c.Conversation()
	if after.TurnCount() != 4 {
		t.Fatalf("turn count = %d, want 4 (turns 0..2 plus one new assistant)", after.TurnCount())
	}
	for i := 0; i <= 2; i++ {
		if after.Turns[i].ID != conv.Turns[i].ID {
			t.Errorf("turn %d identity changed", i)
		}
	}
	if after.Turns[3].Role != model.RoleAssistant || after.Turns[3].Content != "fresh take" {
		t.Errorf("final turn = %s %q", after.Turns[3].Role, after.Turns[3].Content)
	}

	req := inf.lastRequest()
	if req.UserPrompt != "question 1" {
		t.Errorf("resent prompt = %q, want %q", req.UserPrompt, "question 1")
	}
	if len(req.Conversation) != 3 {
		t.Errorf("context length = %d, want 3", len(req.Conversation))
	}
}

func TestRegenerateFromFailurePreservesFullHistory(t *testing.T) {
	c, inf, _ := newTestController()
	seed(t, c, 3)
	before := c.Conversation()
	target := before.Turns[0]

	inf.err = errors.New("backend exploded")
	if _, err := c.RegenerateFrom(context.Background(), target.ID); err == nil {
		t.Fatal("RegenerateFrom should fail when the backend fails")
	}
	if n := c.Conversation().TurnCount(); n != before.TurnCount() {
		t.Errorf("turn count = %d, want %d (no truncation on failure)", n, before.TurnCount())
	}
}

func TestRegenerateFromUnknownTurn(t *testing.T) {
	c, _, _ := newTestController()
	seed(t, c, 1)
	if _, err := c.RegenerateFrom(context.Background(), "turn_missing"); !errors.Is(err, ErrTurnNotFound) {
		t.Fatalf("error = %v, want ErrTurnNotFound", err)
	}
}

// =============================================================================
// LOCAL MUTATION TESTS
// =============================================================================

func TestEditTurnPreservesLengthAndRole(t *testing.T) {
	c, _, _ := newTestController()
	seed(t, c, 1)
	conv := c.Conversation()
	target := conv.Turns[1]

	if err := c.EditTurn(target.ID, "amended"); err != nil {
		t.Fatalf("EditTurn: %v", err)
	}

	after := c.Conversation()
	if after.TurnCount() != conv.TurnCount() {
		t.Fatalf("turn count changed: %d -> %d", conv.TurnCount(), after.TurnCount())
	}
	edited := after.TurnByID(target.ID)
	if edited == nil {
		t.Fatal("edited turn lost its identity")
	}
	if edited.Content != "amended" {
		t.Errorf("content = %q, want %q", edited.Content, "amended")
	}
	if edited.Role != model.RoleAssistant {
		t.Errorf("role = %s, want assistant (edit never changes role)", edited.Role)
	}
}

func TestEditTurnUnknownID(t *testing.T) {
	c, _, _ := newTestController()
	if err := c.EditTurn("turn_missing", "x"); !errors.Is(err, ErrTurnNotFound) {
		t.Fatalf("error = %v, want ErrTurnNotFound", err)
	}
}

func TestDeleteTurnRemovesExactlyOne(t *testing.T) {
	c, _, _ := newTestController()
	seed(t, c, 2) // 4 turns
	before := c.Conversation()

	if err := c.DeleteTurn(1); err != nil {
		t.Fatalf("DeleteTurn: %v", err)
	}

	after := c.Conversation()
	if after.TurnCount() != 3 {
		t.Fatalf("turn count = %d, want 3", after.TurnCount())
	}
	if after.TurnByID(before.Turns[1].ID) != nil {
		t.Error("deleted turn still present")
	}
	for _, i := range []int{0, 2, 3} {
		if after.TurnByID(before.Turns[i].ID) == nil {
			t.Errorf("turn %d was removed but should survive", i)
		}
	}
}

func TestDeleteTurnOutOfRange(t *testing.T) {
	c, _, _ := newTestController()
	seed(t, c, 1)
	if err := c.DeleteTurn(5); !errors.Is(err, ErrTurnNotFound) {
		t.Fatalf("error = %v, want ErrTurnNotFound", err)
	}
}

// =============================================================================
// PERSISTENCE TESTS
// =============================================================================

func TestSaveAssignsIdentity(t *testing.T) {
	c, _, store := newTestController()
	seed(t, c, 1)

	id, title, err := c.Save(context.Background(), "My chat")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id == model.UnsavedID {
		t.Error("save must assign a real id")
	}
	if title != "My chat" {
		t.Errorf("title = %q, want %q", title, "My chat")
	}
	if c.ActiveID() != id {
		t.Errorf("active id = %d, want %d", c.ActiveID(), id)
	}
	if store.createCalls != 1 {
		t.Errorf("create calls = %d, want 1", store.createCalls)
	}
	if len(c.SavedConversations()) != 1 {
		t.Errorf("saved list length = %d, want 1", len(c.SavedConversations()))
	}
}

func TestSaveEmptyTitleUsesServerTitle(t *testing.T) {
	c, _, _ := newTestController()
	seed(t, c, 1)

	_, title, err := c.Save(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if title == "" {
		t.Error("server should assign a title when none is given")
	}
}

func TestSaveRejectsEmptyConversation(t *testing.T) {
	c, _, store := newTestController()
	if _, _, err := c.Save(context.Background(), "x"); !errors.Is(err, ErrEmptyConversation) {
		t.Fatalf("error = %v, want ErrEmptyConversation", err)
	}
	if store.createCalls != 0 {
		t.Error("validation failures must not reach the backend")
	}
}

func TestForkSavedConversation(t *testing.T) {
	c, _, store := newTestController()
	seed(t, c, 2)
	origID, origTitle, err := c.Save(context.Background(), "Original")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	forkID, forkTitle, err := c.Fork(context.Background())
	if err != nil {
		t.Fatalf("Fork: %v", err)
	}
	if forkID == origID {
		t.Error("fork must get a new id")
	}
	if forkTitle != "Fork of: "+origTitle {
		t.Errorf("fork title = %q", forkTitle)
	}
	if c.ActiveID() != forkID {
		t.Errorf("active id = %d, want fork id %d", c.ActiveID(), forkID)
	}
	if store.forkCalls != 1 {
		t.Errorf("fork calls = %d, want 1", store.forkCalls)
	}
}

func TestForkUnsavedSavesFirst(t *testing.T) {
	c, _, store := newTestController()
	seed(t, c, 1)

	forkID, _, err := c.Fork(context.Background())
	if err != nil {
		t.Fatalf("Fork: %v", err)
	}
	if store.createCalls != 1 {
		t.Errorf("create calls = %d, want 1 (implicit save)", store.createCalls)
	}
	if store.forkCalls != 1 {
		t.Errorf("fork calls = %d, want 1", store.forkCalls)
	}
	if c.ActiveID() != forkID {
		t.Errorf("active id = %d, want fork id %d", c.ActiveID(), forkID)
	}
}

func TestForkRejectsEmptyConversation(t *testing.T) {
	c, _, _ := newTestController()
	if _, _, err := c.Fork(context.Background()); !errors.Is(err, ErrEmptyConversation) {
		t.Fatalf("error = %v, want ErrEmptyConversation", err)
	}
}

func TestLoadReplacesActiveConversation(t *testing.T) {
	c, _, _ := newTestController()
	seed(t, c, 1)
	id, _, err := c.Save(context.Background(), "first")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	c.Clear()
	seed(t, c, 2)

	if err := c.Load(id); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ActiveID() != id {
		t.Errorf("active id = %d, want %d", c.ActiveID(), id)
	}
	if n := c.Conversation().TurnCount(); n != 2 {
		t.Errorf("turn count = %d, want 2 (loaded snapshot)", n)
	}
}

func TestLoadUnknownID(t *testing.T) {
	c, _, _ := newTestController()
	if err := c.Load(42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestLoadedConversationIsIndependent(t *testing.T) {
	c, _, _ := newTestController()
	seed(t, c, 1)
	id, _, err := c.Save(context.Background(), "saved")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := c.Load(id); err != nil {
		t.Fatalf("Load: %v", err)
	}
	conv := c.Conversation()
	if err := c.EditTurn(conv.Turns[0].ID, "mutated"); err != nil {
		t.Fatalf("EditTurn: %v", err)
	}

	// Reload: the cached entry must not carry the edit.
	if err := c.Load(id); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := c.Conversation().Turns[0].Content; got == "mutated" {
		t.Error("editing the active conversation leaked into the saved cache")
	}
}

func TestDeleteActiveConversationResetsState(t *testing.T) {
	c, _, store := newTestController()
	seed(t, c, 1)
	id, _, err := c.Save(context.Background(), "doomed")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := c.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if c.ActiveID() != model.UnsavedID {
		t.Errorf("active id = %d, want unsaved sentinel", c.ActiveID())
	}
	if n := c.Conversation().TurnCount(); n != 0 {
		t.Errorf("turn count = %d, want 0 after deleting active", n)
	}
	if len(c.SavedConversations()) != 0 {
		t.Error("deleted conversation still in the cache")
	}
	if _, ok := store.conversations[id]; ok {
		t.Error("conversation still on the backend")
	}
}

func TestDeleteOtherConversationKeepsActive(t *testing.T) {
	c, _, _ := newTestController()
	seed(t, c, 1)
	firstID, _, err := c.Save(context.Background(), "first")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	c.Clear()
	seed(t, c, 1)
	secondID, _, err := c.Save(context.Background(), "second")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := c.Delete(context.Background(), firstID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if c.ActiveID() != secondID {
		t.Errorf("active id = %d, want %d (deleting another chat leaves active alone)", c.ActiveID(), secondID)
	}
	if n := c.Conversation().TurnCount(); n != 2 {
		t.Errorf("turn count = %d, want 2", n)
	}
}

func TestRefreshConversations(t *testing.T) {
	c, _, store := newTestController()
	title := "seeded"
	if _, _, err := store.CreateConversation(context.Background(), []*model.Turn{model.NewUserTurn("hi")}, &title); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	list, err := c.RefreshConversations(context.Background())
	if err != nil {
		t.Fatalf("RefreshConversations: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list length = %d, want 1", len(list))
	}
	if list[0].Title != "seeded" {
		t.Errorf("title = %q", list[0].Title)
	}
	if len(c.SavedConversations()) != 1 {
		t.Error("refresh did not populate the cache")
	}
}

// =============================================================================
// PROMPT TEMPLATE TESTS
// =============================================================================

func TestSavePromptCapturesCurrentPrompts(t *testing.T) {
	c, _, store := newTestController()
	c.SetSystemPrompt("You are terse.")
	c.SetPendingInput("Summarize X")

	if err := c.SavePrompt(context.Background(), "terse-summary"); err != nil {
		t.Fatalf("SavePrompt: %v", err)
	}
	if len(store.prompts) != 1 {
		t.Fatalf("stored prompts = %d, want 1", len(store.prompts))
	}
	p := store.prompts[0]
	if p.Name != "terse-summary" || p.SystemPrompt != "You are terse." || p.UserPrompt != "Summarize X" {
		t.Errorf("stored prompt = %+v", p)
	}
}

func TestSavePromptRejectsEmptyName(t *testing.T) {
	c, _, store := newTestController()
	if err := c.SavePrompt(context.Background(), "  "); !errors.Is(err, ErrEmptyPromptName) {
		t.Fatalf("error = %v, want ErrEmptyPromptName", err)
	}
	if len(store.prompts) != 0 {
		t.Error("validation failures must not reach the backend")
	}
}

func TestLoadPromptAppliesTemplate(t *testing.T) {
	c, _, store := newTestController()
	if err := store.CreatePrompt(context.Background(), "t", "sys", "user"); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	prompts, err := c.RefreshPrompts(context.Background())
	if err != nil {
		t.Fatalf("RefreshPrompts: %v", err)
	}

	if err := c.LoadPrompt(prompts[0].ID); err != nil {
		t.Fatalf("LoadPrompt: %v", err)
	}
	if c.SystemPrompt() != "sys" {
		t.Errorf("system prompt = %q", c.SystemPrompt())
	}
	if c.PendingInput() != "user" {
		t.Errorf("pending input = %q", c.PendingInput())
	}
}

func TestDeletePromptRemovesFromCache(t *testing.T) {
	c, _, store := newTestController()
	if err := store.CreatePrompt(context.Background(), "t", "", ""); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	prompts, err := c.RefreshPrompts(context.Background())
	if err != nil {
		t.Fatalf("RefreshPrompts: %v", err)
	}

	if err := c.DeletePrompt(context.Background(), prompts[0].ID); err != nil {
		t.Fatalf("DeletePrompt: %v", err)
	}
	if len(c.Prompts()) != 0 {
		t.Error("deleted prompt still cached")
	}
	if len(store.prompts) != 0 {
		t.Error("deleted prompt still on the backend")
	}
}

// =============================================================================
// STATUS TESTS
// =============================================================================

func TestGetStatus(t *testing.T) {
	c, _, _ := newTestController()
	seed(t, c, 1)
	c.SetModel("claude-3.5-sonnet")

	s := c.GetStatus()
	if s.Model != "claude-3.5-sonnet" {
		t.Errorf("model = %q", s.Model)
	}
	if s.TurnCount != 2 {
		t.Errorf("turn count = %d, want 2", s.TurnCount)
	}
	if s.ActiveID != model.UnsavedID {
		t.Errorf("active id = %d, want unsaved", s.ActiveID)
	}
	if s.IsGenerating {
		t.Error("no generation should be in flight")
	}
}

func TestSetModelDefaultsParams(t *testing.T) {
	c, _, _ := newTestController()
	c.SetModel("claude-3-opus-20240229")

	p := c.Params()
	want := model.DefaultSamplingParams("claude-3-opus-20240229")
	if p != want {
		t.Errorf("params = %+v, want defaults %+v", p, want)
	}
}
