package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *model.Chat) error
	FindByIDAndOwner(ctx context.Context, id, userEmail string) (*model.Chat, error)
	// AppendMessages atomically appends the message pair while the chat is
	// below the message cap. Returns ErrLimitReached when the cap is hit.
	AppendMessages(ctx context.Context, id, userEmail string, messages []model.ChatMessage, cap int) error
	ListSummaries(ctx context.Context, userEmail string, limit int) ([]model.ChatSummary, error)
	Rename(ctx context.Context, id, userEmail, name string) error
	Delete(ctx context.Context, id, userEmail string) error
}

type pgChatRepository struct {
	db *sql.DB
}

func NewPgChatRepository(db *sql.DB) ChatRepository {
	return &pgChatRepository{db: db}
}

func (r *pgChatRepository) Create(ctx context.Context, chat *model.Chat) error {
	messages, err := json.Marshal(chat.Messages)
	if err != nil {
		return fmt.Errorf("pgChatRepository.Create marshal messages: %w", err)
	}
	query := `INSERT INTO ai_chats (id, user_email, name, messages, message_count)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err = r.db.ExecContext(ctx, query,
		chat.ID, chat.UserEmail, chat.Name, messages, chat.MessageCount)
	if err != nil {
		return fmt.Errorf("pgChatRepository.Create: %w", err)
	}
	return nil
}

func (r *pgChatRepository) FindByIDAndOwner(ctx context.Context, id, userEmail string) (*model.Chat, error) {
	query := `SELECT id, user_email, name, messages, message_count, created_at, updated_at
	          FROM ai_chats WHERE id = $1 AND user_email = $2`
	chat := &model.Chat{}
	var messages []byte
	err := r.db.QueryRowContext(ctx, query, id, userEmail).Scan(
		&chat.ID, &chat.UserEmail, &chat.Name, &messages,
		&chat.MessageCount, &chat.CreatedAt, &chat.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgChatRepository.FindByIDAndOwner: %w", err)
	}
	if err := json.Unmarshal(messages, &chat.Messages); err != nil {
		return nil, fmt.Errorf("pgChatRepository.FindByIDAndOwner unmarshal: %w", err)
	}
	return chat, nil
}

func (r *pgChatRepository) AppendMessages(ctx context.Context, id, userEmail string, messages []model.ChatMessage, cap int) error {
	appended, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("pgChatRepository.AppendMessages marshal: %w", err)
	}
	// The message_count guard is part of the statement, so two concurrent
	// appends cannot both slip past the cap.
	query := `UPDATE ai_chats
	          SET messages = messages || $3::jsonb,
	              message_count = message_count + $4,
	              updated_at = CURRENT_TIMESTAMP
	          WHERE id = $1 AND user_email = $2 AND message_count < $5`
	res, err := r.db.ExecContext(ctx, query, id, userEmail, appended, len(messages), cap)
	if err != nil {
		return fmt.Errorf("pgChatRepository.AppendMessages: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgChatRepository.AppendMessages rows affected: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing chat from one at the cap.
		if _, err := r.FindByIDAndOwner(ctx, id, userEmail); err != nil {
			return err
		}
		return fmt.Errorf("chat message limit reached, please start a new chat: %w", common.ErrLimitReached)
	}
	return nil
}

func (r *pgChatRepository) ListSummaries(ctx context.Context, userEmail string, limit int) ([]model.ChatSummary, error) {
	query := `SELECT id, name, message_count, created_at, updated_at
	          FROM ai_chats WHERE user_email = $1
	          ORDER BY updated_at DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userEmail, limit)
	if err != nil {
		return nil, fmt.Errorf("pgChatRepository.ListSummaries query: %w", err)
	}
	defer rows.Close()

	summaries := []model.ChatSummary{}
	for rows.Next() {
		var s model.ChatSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.MessageCount, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgChatRepository.ListSummaries scan: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgChatRepository.ListSummaries rows.Err: %w", err)
	}
	return summaries, nil
}

func (r *pgChatRepository) Rename(ctx context.Context, id, userEmail, name string) error {
	query := `UPDATE ai_chats SET name = $1, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $2 AND user_email = $3`
	res, err := r.db.ExecContext(ctx, query, name, id, userEmail)
	if err != nil {
		return fmt.Errorf("pgChatRepository.Rename: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgChatRepository.Rename rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgChatRepository) Delete(ctx context.Context, id, userEmail string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ai_chats WHERE id = $1 AND user_email = $2`, id, userEmail)
	if err != nil {
		return fmt.Errorf("pgChatRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgChatRepository.Delete rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
