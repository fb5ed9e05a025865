// Package delivery runs the send path of a chat message: validate, store
// the attachment, persist, then push to the receiver if online.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pairchat/internal/common"
	"github.com/dmitrijs2005/pairchat/internal/logging"
	"github.com/dmitrijs2005/pairchat/internal/server/models"
	"github.com/dmitrijs2005/pairchat/internal/server/presence"
	"github.com/dmitrijs2005/pairchat/internal/server/repositories/messages"
	"github.com/go-playground/validator/v10"
)

// AttachmentStore turns an inbound image payload into a durable reference.
type AttachmentStore interface {
	Store(ctx context.Context, ownerID string, payload string) (string, error)
}

// Directory resolves an identity to its live connection.
type Directory interface {
	Lookup(identity string) (presence.Handle, bool)
}

// Draft is an unsent message as submitted by the sender.
// Image is a data URI or base64 payload.
type Draft struct {
	SenderID   string `validate:"required"`
	ReceiverID string `validate:"required"`
	Text       string
	Image      string
}

type Coordinator struct {
	store       messages.Repository
	attachments AttachmentStore
	directory   Directory
	validate    *validator.Validate
	logger      logging.Logger
}

func NewCoordinator(store messages.Repository, attachments AttachmentStore, directory Directory, logger logging.Logger) *Coordinator {
	return &Coordinator{
		store:       store,
		attachments: attachments,
		directory:   directory,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger.With("module", "delivery"),
	}
}

// Send persists the draft and pushes it to the receiver when online.
// The returned error is about persistence only: a failed push is logged
// and the message stays retrievable through the conversation history.
func (c *Coordinator) Send(ctx context.Context, d Draft) (*models.Message, error) {
	d.Image = strings.TrimSpace(d.Image)
	if err := c.check(d.SenderID, d.ReceiverID, d.Text, d.Image); err != nil {
		return nil, err
	}

	var ref string
	if d.Image != "" {
		var err error
		ref, err = c.attachments.Store(ctx, d.SenderID, d.Image)
		if err != nil {
			c.logger.Warn(ctx, "attachment rejected", "sender_id", d.SenderID, "error", err)
			return nil, err
		}
	}

	return c.deliver(ctx, &models.Message{
		SenderID:      d.SenderID,
		ReceiverID:    d.ReceiverID,
		Text:          d.Text,
		AttachmentRef: ref,
	})
}

// SendMessage is Send for callers that already hold an attachment reference.
func (c *Coordinator) SendMessage(ctx context.Context, senderID, receiverID, text, attachmentRef string) (*models.Message, error) {
	attachmentRef = strings.TrimSpace(attachmentRef)
	if err := c.check(senderID, receiverID, text, attachmentRef); err != nil {
		return nil, err
	}

	return c.deliver(ctx, &models.Message{
		SenderID:      senderID,
		ReceiverID:    receiverID,
		Text:          text,
		AttachmentRef: attachmentRef,
	})
}

func (c *Coordinator) check(senderID, receiverID, text, attachment string) error {
	if err := c.validate.Struct(Draft{SenderID: senderID, ReceiverID: receiverID}); err != nil {
		return fmt.Errorf("%w: sender and receiver are required", common.ErrValidation)
	}
	// whitespace-only text is empty; stored text keeps its spacing
	if strings.TrimSpace(text) == "" && attachment == "" {
		return common.ErrEmptyMessage
	}
	return nil
}

func (c *Coordinator) deliver(ctx context.Context, msg *models.Message) (*models.Message, error) {
	saved, err := c.store.Append(ctx, msg)
	if err != nil {
		c.logger.Error(ctx, "message not persisted", "sender_id", msg.SenderID, "receiver_id", msg.ReceiverID, "error", err)
		if !errors.Is(err, common.ErrPersistence) {
			err = fmt.Errorf("%w: %w", common.ErrPersistence, err)
		}
		return nil, err
	}

	h, online := c.directory.Lookup(saved.ReceiverID)
	if !online {
		c.logger.Debug(ctx, "receiver offline, message stored", "message_id", saved.ID, "receiver_id", saved.ReceiverID)
		return saved, nil
	}

	if err := h.Push(ctx, presence.MessageReceived(saved)); err != nil {
		c.logger.Warn(ctx, "live push failed", "message_id", saved.ID, "receiver_id", saved.ReceiverID, "conn_id", h.ID(), "error", err)
		return saved, nil
	}

	c.logger.Debug(ctx, "message pushed", "message_id", saved.ID, "receiver_id", saved.ReceiverID, "conn_id", h.ID())
	return saved, nil
}
