package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codeclash/internal/api/middleware"
	"codeclash/internal/app/service"
	"codeclash/internal/common"
	"codeclash/internal/domain/model"
	"codeclash/internal/platform/openrouter"

	"github.com/go-chi/chi/v5"
)

type memChatRepo struct {
	chats map[string]*model.Chat
}

func (m *memChatRepo) Create(_ context.Context, chat *model.Chat) error {
	stored := *chat
	m.chats[chat.ID] = &stored
	return nil
}

func (m *memChatRepo) FindByIDAndOwner(_ context.Context, id, userEmail string) (*model.Chat, error) {
	chat, ok := m.chats[id]
	if !ok || chat.UserEmail != userEmail {
		return nil, common.ErrNotFound
	}
	return chat, nil
}

func (m *memChatRepo) AppendMessages(_ context.Context, id, userEmail string, messages []model.ChatMessage, cap int) error {
	chat, ok := m.chats[id]
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

func (m *memChatRepo) ListSummaries(_ context.Context, userEmail string, limit int) ([]model.ChatSummary, error) {
	return []model.ChatSummary{}, nil
}

func (m *memChatRepo) Rename(_ context.Context, id, userEmail, name string) error {
	return nil
}

func (m *memChatRepo) Delete(_ context.Context, id, userEmail string) error {
	return nil
}

type cannedCompletion struct{ reply string }

func (c *cannedCompletion) Complete(_ context.Context, _ []openrouter.Message) (string, error) {
	return c.reply, nil
}

func newChatTestRouter(repo *memChatRepo) chi.Router {
	svc := service.NewChatService(repo, &cannedCompletion{reply: "use a heap"}, 50)
	r := chi.NewRouter()
	NewChatHandler(svc).RegisterRoutes(r)
	return r
}

func withEmail(r *http.Request, email string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserEmailCtxKey, email)
	return r.WithContext(ctx)
}

// The wire shape for a follow-up question carries the conversation id as
// "chatId"; the decoded request must bind it so the exchange lands in the
// existing chat instead of a fresh one.
func TestAskBodyChatIDBindsExistingChat(t *testing.T) {
	repo := &memChatRepo{chats: map[string]*model.Chat{
		"c1": {ID: "c1", UserEmail: "a@x.com", Name: "dp hints", MessageCount: 2},
	}}
	router := newChatTestRouter(repo)

	body := `{"query": "what about memoization?", "chatId": "c1"}`
	req := withEmail(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), "a@x.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp service.AskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.IsNewChat {
		t.Error("follow-up with chatId reported a new chat")
	}
	if resp.ChatID != "c1" {
		t.Errorf("chatId = %q, want c1", resp.ChatID)
	}
	if got := repo.chats["c1"].MessageCount; got != 4 {
		t.Errorf("message count = %d, want 4", got)
	}
	if len(repo.chats) != 1 {
		t.Errorf("chat count = %d, a second chat was created", len(repo.chats))
	}
}

func TestAskWithoutChatIDCreatesChat(t *testing.T) {
	repo := &memChatRepo{chats: map[string]*model.Chat{}}
	router := newChatTestRouter(repo)

	req := withEmail(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"query": "hello"}`)), "a@x.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp service.AskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.IsNewChat {
		t.Error("first ask should report a new chat")
	}
	if repo.chats[resp.ChatID] == nil {
		t.Fatal("chat was not persisted under the returned id")
	}
}
