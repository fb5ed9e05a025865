package messages

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pairchat/internal/common"
	"github.com/dmitrijs2005/pairchat/internal/dbx"
	"github.com/dmitrijs2005/pairchat/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, msg *models.Message) (*models.Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO messages (id, sender_id, receiver_id, text, attachment_ref)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		msg.ID, msg.SenderID, msg.ReceiverID, msg.Text, msg.AttachmentRef).Scan(&msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}

	return msg, nil
}

func (r *PostgresRepository) QueryConversation(ctx context.Context, a, b string) ([]*models.Message, error) {
	query :=
		`SELECT id, sender_id, receiver_id, text, attachment_ref, created_at
		 FROM messages
		 WHERE (sender_id = $1 AND receiver_id = $2)
		    OR (sender_id = $2 AND receiver_id = $1)
		 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, a, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	defer rows.Close()

	result := make([]*models.Message, 0)
	for rows.Next() {
		m := &models.Message{}
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.AttachmentRef, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrPersistence, err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}

	return result, nil
}
