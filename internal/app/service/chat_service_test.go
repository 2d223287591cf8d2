package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"
	"codeclash/internal/platform/openrouter"
)

type fakeChatRepo struct {
	chats map[string]*model.Chat
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: map[string]*model.Chat{}}
}

func (f *fakeChatRepo) Create(_ context.Context, chat *model.Chat) error {
	stored := *chat
	f.chats[chat.ID] = &stored
	return nil
}

func (f *fakeChatRepo) FindByIDAndOwner(_ context.Context, id, userEmail string) (*model.Chat, error) {
	chat, ok := f.chats[id]
	if !ok || chat.UserEmail != userEmail {
		return nil, common.ErrNotFound
	}
	return chat, nil
}

func (f *fakeChatRepo) AppendMessages(_ context.Context, id, userEmail string, messages []model.ChatMessage, cap int) error {
	chat, ok := f.chats[id]
	if !ok || chat.UserEmail != userEmail {
		return common.ErrNotFound
	}
	if chat.MessageCount >= cap {
		return fmt.Errorf("chat message limit reached: %w", common.ErrLimitReached)
	}
	chat.Messages = append(chat.Messages, messages...)
	chat.MessageCount += len(messages)
	return nil
}

func (f *fakeChatRepo) ListSummaries(_ context.Context, userEmail string, limit int) ([]model.ChatSummary, error) {
	summaries := []model.ChatSummary{}
	for _, c := range f.chats {
		if c.UserEmail != userEmail {
			continue
		}
		summaries = append(summaries, model.ChatSummary{ID: c.ID, Name: c.Name, MessageCount: c.MessageCount})
		if len(summaries) == limit {
			break
		}
	}
	return summaries, nil
}

func (f *fakeChatRepo) Rename(_ context.Context, id, userEmail, name string) error {
	chat, ok := f.chats[id]
	if !ok || chat.UserEmail != userEmail {
		return common.ErrNotFound
	}
	chat.Name = name
	return nil
}

func (f *fakeChatRepo) Delete(_ context.Context, id, userEmail string) error {
	chat, ok := f.chats[id]
	if !ok || chat.UserEmail != userEmail {
		return common.ErrNotFound
	}
	delete(f.chats, id)
	return nil
}

type fakeCompletion struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompletion) Complete(_ context.Context, _ []openrouter.Message) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestAskCreatesChatWithDerivedName(t *testing.T) {
	repo := newFakeChatRepo()
	completion := &fakeCompletion{reply: "try two pointers"}
	svc := NewChatService(repo, completion, 50)

	query := strings.Repeat("x", 40)
	resp, err := svc.Ask(context.Background(), "a@x.com", AskRequest{Query: query})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !resp.IsNewChat {
		t.Error("first ask should report a new chat")
	}
	if resp.Answer != "try two pointers" {
		t.Errorf("answer = %q", resp.Answer)
	}
	wantName := strings.Repeat("x", model.ChatNameMaxLen) + "..."
	if resp.Name != wantName {
		t.Errorf("name = %q, want %q", resp.Name, wantName)
	}

	chat := repo.chats[resp.ChatID]
	if chat == nil {
		t.Fatal("chat was not persisted")
	}
	if chat.MessageCount != 2 {
		t.Errorf("message count = %d, want 2 (user/assistant pair)", chat.MessageCount)
	}
	if chat.Messages[0].Sender != model.ChatSenderUser || chat.Messages[1].Sender != model.ChatSenderAI {
		t.Errorf("message pair senders = %q, %q", chat.Messages[0].Sender, chat.Messages[1].Sender)
	}
}

func TestAskAppendsToExistingChat(t *testing.T) {
	repo := newFakeChatRepo()
	completion := &fakeCompletion{reply: "ok"}
	svc := NewChatService(repo, completion, 50)

	first, err := svc.Ask(context.Background(), "a@x.com", AskRequest{Query: "hello"})
	if err != nil {
		t.Fatalf("first Ask: %v", err)
	}
	second, err := svc.Ask(context.Background(), "a@x.com", AskRequest{ChatID: first.ChatID, Query: "more"})
	if err != nil {
		t.Fatalf("second Ask: %v", err)
	}
	if second.IsNewChat {
		t.Error("follow-up should not report a new chat")
	}
	if repo.chats[first.ChatID].MessageCount != 4 {
		t.Errorf("message count = %d, want 4", repo.chats[first.ChatID].MessageCount)
	}
}

func TestAskAtCapRejectsBeforeUpstreamCall(t *testing.T) {
	repo := newFakeChatRepo()
	repo.chats["full"] = &model.Chat{ID: "full", UserEmail: "a@x.com", MessageCount: 50}
	completion := &fakeCompletion{reply: "ok"}
	svc := NewChatService(repo, completion, 50)

	_, err := svc.Ask(context.Background(), "a@x.com", AskRequest{ChatID: "full", Query: "one more"})
	if !errors.Is(err, common.ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	if completion.calls != 0 {
		t.Errorf("completion API was called %d times for a capped chat", completion.calls)
	}
}

func TestAskOtherOwnersChatIsNotFound(t *testing.T) {
	repo := newFakeChatRepo()
	repo.chats["c1"] = &model.Chat{ID: "c1", UserEmail: "owner@x.com", MessageCount: 2}
	svc := NewChatService(repo, &fakeCompletion{reply: "ok"}, 50)

	_, err := svc.Ask(context.Background(), "intruder@x.com", AskRequest{ChatID: "c1", Query: "hi"})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAskPropagatesUpstreamFailureWithoutPersisting(t *testing.T) {
	repo := newFakeChatRepo()
	completion := &fakeCompletion{err: fmt.Errorf("model slow: %w", common.ErrRequestTimeout)}
	svc := NewChatService(repo, completion, 50)

	_, err := svc.Ask(context.Background(), "a@x.com", AskRequest{Query: "hi"})
	if !errors.Is(err, common.ErrRequestTimeout) {
		t.Fatalf("expected ErrRequestTimeout, got %v", err)
	}
	if len(repo.chats) != 0 {
		t.Error("no chat should be created when the upstream call fails")
	}
}
