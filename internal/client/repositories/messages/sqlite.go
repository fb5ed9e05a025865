package messages

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/pairchat/internal/client/models"
	"github.com/dmitrijs2005/pairchat/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, msgs ...*models.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, m := range msgs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO messages (id, sender_id, receiver_id, text, image, created_at)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO NOTHING
			`, m.ID, m.SenderID, m.ReceiverID, m.Text, m.Image, m.CreatedAt.UTC())
			if err != nil {
				return fmt.Errorf("failed to cache message %s: %w", m.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) Conversation(ctx context.Context, a, b string) ([]*models.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, text, image, created_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at, id
	`, a, b, b, a)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached messages: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Message, 0)
	for rows.Next() {
		m := &models.Message{}
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Image, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cached message: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cached messages: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("failed to clear cached messages: %w", err)
	}
	return nil
}
