package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	conversationx "github.com/tanpawarit/Chative-Commerce-Governance/engine/conversation"
)

const previewLimit = 120

// ConversationStore persists conversations and their transcripts.
type ConversationStore struct {
	db *bun.DB
}

var _ conversationx.Store = (*ConversationStore)(nil)

func NewConversationStore(db *bun.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

func (s *ConversationStore) Get(ctx context.Context, conversationID string) (*conversationx.Conversation, error) {
	row := new(dbConversation)
	err := s.db.NewSelect().
		Model(row).
		Where("id = ?", conversationID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, conversationx.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return row.toDomain(), nil
}

func (s *ConversationStore) RecentMessages(ctx context.Context, conversationID string, limit int) ([]conversationx.Message, error) {
	var rows []dbMessage
	err := s.db.NewSelect().
		Model(&rows).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load recent messages: %w", err)
	}

	// Rows arrive newest-first; callers expect chronological order.
	msgs := make([]conversationx.Message, len(rows))
	for i, row := range rows {
		msgs[len(rows)-1-i] = row.toDomain()
	}
	return msgs, nil
}

func (s *ConversationStore) AppendOutbound(ctx context.Context, conversationID, text string, at time.Time) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		msg := &dbMessage{
			ID:             uuid.NewString(),
			ConversationID: conversationID,
			Sender:         string(conversationx.SenderAI),
			Content:        text,
			CreatedAt:      at.UTC(),
		}
		if _, err := tx.NewInsert().Model(msg).Exec(ctx); err != nil {
			return fmt.Errorf("insert outbound message: %w", err)
		}

		preview := text
		if len([]rune(preview)) > previewLimit {
			preview = string([]rune(preview)[:previewLimit])
		}
		res, err := tx.NewUpdate().
			Model((*dbConversation)(nil)).
			Set("last_message_preview = ?", preview).
			Set("last_message_at = ?", at.UTC()).
			Set("last_agent_reply_at = ?", at.UTC()).
			Where("id = ?", conversationID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update conversation preview: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return conversationx.ErrNotFound
		}
		return nil
	})
}
