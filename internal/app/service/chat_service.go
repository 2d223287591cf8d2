package service

import (
	"context"
	"fmt"
	"time"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"
	"codeclash/internal/domain/repository"
	"codeclash/internal/platform/openrouter"

	"github.com/google/uuid"
)

const chatHistoryPageSize = 20

const assistantSystemPrompt = "You are a helpful competitive programming assistant. " +
	"Help users understand algorithms, data structures and problem-solving " +
	"techniques. Explain concepts clearly and give hints rather than full " +
	"solutions unless explicitly asked."

// CompletionClient is the surface of the completion API the chat service
// needs.
type CompletionClient interface {
	Complete(ctx context.Context, messages []openrouter.Message) (string, error)
}

type ChatService struct {
	chatRepo   repository.ChatRepository
	completion CompletionClient
	messageCap int
}

func NewChatService(chatRepo repository.ChatRepository, completion CompletionClient, messageCap int) *ChatService {
	return &ChatService{chatRepo: chatRepo, completion: completion, messageCap: messageCap}
}

type AskRequest struct {
	ChatID string `json:"chatId"`
	Query  string `json:"query" validate:"required,max=8000"`
}

type AskResponse struct {
	Answer    string `json:"answer"`
	ChatID    string `json:"chatId"`
	Name      string `json:"name"`
	IsNewChat bool   `json:"isNewChat"`
}

// Ask forwards the query to the completion API and persists the
// user/assistant pair, creating a new chat when no id is given. A chat at
// the message cap is rejected before any upstream call is spent.
func (s *ChatService) Ask(ctx context.Context, userEmail string, req AskRequest) (*AskResponse, error) {
	if err := common.ValidateInput(req); err != nil {
		return nil, err
	}

	var chat *model.Chat
	if req.ChatID != "" {
		existing, err := s.chatRepo.FindByIDAndOwner(ctx, req.ChatID, userEmail)
		if err != nil {
			return nil, err
		}
		if existing.MessageCount >= s.messageCap {
			return nil, fmt.Errorf("chat message limit reached, please start a new chat: %w", common.ErrLimitReached)
		}
		chat = existing
	}

	prompt := []openrouter.Message{{Role: "system", Content: assistantSystemPrompt}}
	if chat != nil {
		for _, m := range chat.Messages {
			role := "user"
			if m.Sender == model.ChatSenderAI {
				role = "assistant"
			}
			prompt = append(prompt, openrouter.Message{Role: role, Content: m.Text})
		}
	}
	prompt = append(prompt, openrouter.Message{Role: "user", Content: req.Query})

	reply, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	pair := []model.ChatMessage{
		{Sender: model.ChatSenderUser, Text: req.Query, Timestamp: now},
		{Sender: model.ChatSenderAI, Text: reply, Timestamp: now},
	}

	isNew := chat == nil
	if isNew {
		chat = &model.Chat{
			ID:           uuid.NewString(),
			UserEmail:    userEmail,
			Name:         model.DeriveChatName(req.Query),
			Messages:     pair,
			MessageCount: len(pair),
		}
		if err := s.chatRepo.Create(ctx, chat); err != nil {
			return nil, err
		}
	} else if err := s.chatRepo.AppendMessages(ctx, chat.ID, userEmail, pair, s.messageCap); err != nil {
		return nil, err
	}

	return &AskResponse{Answer: reply, ChatID: chat.ID, Name: chat.Name, IsNewChat: isNew}, nil
}

// History lists the caller's most recently active chats, metadata only.
func (s *ChatService) History(ctx context.Context, userEmail string) ([]model.ChatSummary, error) {
	return s.chatRepo.ListSummaries(ctx, userEmail, chatHistoryPageSize)
}

func (s *ChatService) GetChat(ctx context.Context, id, userEmail string) (*model.Chat, error) {
	return s.chatRepo.FindByIDAndOwner(ctx, id, userEmail)
}

type RenameChatRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

func (s *ChatService) RenameChat(ctx context.Context, id, userEmail string, req RenameChatRequest) error {
	if err := common.ValidateInput(req); err != nil {
		return err
	}
	return s.chatRepo.Rename(ctx, id, userEmail, req.Name)
}

func (s *ChatService) DeleteChat(ctx context.Context, id, userEmail string) error {
	return s.chatRepo.Delete(ctx, id, userEmail)
}
