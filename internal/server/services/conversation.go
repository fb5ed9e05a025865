package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/pairchat/internal/common"
	"github.com/dmitrijs2005/pairchat/internal/server/models"
	"github.com/dmitrijs2005/pairchat/internal/server/repositories/repomanager"
)

// ConversationService serves the read side of chat: who can be talked to
// and what has been said.
type ConversationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewConversationService(db *sql.DB, m repomanager.RepositoryManager) *ConversationService {
	return &ConversationService{db: db, repomanager: m}
}

// Partners lists every user except userID.
func (s *ConversationService) Partners(ctx context.Context, userID string) ([]*models.User, error) {
	list, err := s.repomanager.Users(s.db).ListExcept(ctx, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return list, nil
}

// Peer resolves a conversation partner, returning common.ErrorNotFound for
// unknown identities.
func (s *ConversationService) Peer(ctx context.Context, peerID string) (*models.User, error) {
	if err := validate.Var(peerID, "required,uuid"); err != nil {
		return nil, common.ErrorNotFound
	}
	u, err := s.repomanager.Users(s.db).GetByID(ctx, peerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return u, nil
}

// History returns the conversation between userID and peerID, oldest first.
func (s *ConversationService) History(ctx context.Context, userID, peerID string) ([]*models.Message, error) {
	if _, err := s.Peer(ctx, peerID); err != nil {
		return nil, err
	}
	return s.repomanager.Messages(s.db).QueryConversation(ctx, userID, peerID)
}
