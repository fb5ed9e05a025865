package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/pairchat/internal/client/client"
	"github.com/dmitrijs2005/pairchat/internal/client/models"
	"github.com/dmitrijs2005/pairchat/internal/client/repositories/messages"
	"github.com/dmitrijs2005/pairchat/internal/filex"
	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"
)

var (
	ErrUnknownPeer = errors.New("unknown conversation partner")
	ErrNotAnImage  = errors.New("file is not an image")
)

// ChatService defines the conversation operations of the CLI.
//
//   - Partners: everyone the user can talk to.
//   - ResolvePeer: turn an ID, e-mail or name typed by the user into a partner.
//   - History: the conversation with a peer; served from the local cache
//     (offline=true) when the server cannot be reached.
//   - Send: post a text and/or an image file.
//   - SaveImage: download an image attachment into a local directory.
//   - Listen: stream server events, caching received messages.
type ChatService interface {
	Partners(ctx context.Context) ([]*models.User, error)
	ResolvePeer(ctx context.Context, ref string) (*models.User, error)
	History(ctx context.Context, selfID, peerID string) (msgs []*models.Message, offline bool, err error)
	Send(ctx context.Context, peerID, text, imagePath string) (*models.Message, error)
	SaveImage(ctx context.Context, ref, dir string) (string, error)
	Listen(ctx context.Context, handle func(models.Event)) error
}

type chatService struct {
	client client.Client
	cache  messages.Repository
	// partners is the last list fetched, used to resolve short references.
	partners []*models.User
}

func NewChatService(c client.Client, cache messages.Repository) ChatService {
	return &chatService{client: c, cache: cache}
}

func (s *chatService) Partners(ctx context.Context) ([]*models.User, error) {
	users, err := s.client.Partners(ctx)
	if err != nil {
		return nil, err
	}
	s.partners = users
	return users, nil
}

func (s *chatService) ResolvePeer(ctx context.Context, ref string) (*models.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrUnknownPeer
	}

	match := func(u *models.User) bool {
		return u.ID == ref || strings.EqualFold(u.Email, ref) || strings.EqualFold(u.FullName, ref)
	}

	if u, ok := lo.Find(s.partners, match); ok {
		return u, nil
	}
	if _, err := s.Partners(ctx); err != nil {
		return nil, err
	}
	if u, ok := lo.Find(s.partners, match); ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPeer, ref)
}

func (s *chatService) History(ctx context.Context, selfID, peerID string) ([]*models.Message, bool, error) {
	msgs, err := s.client.History(ctx, peerID)
	if err == nil {
		if err := s.cache.Upsert(ctx, msgs...); err != nil {
			return nil, false, err
		}
		return msgs, false, nil
	}
	if !errors.Is(err, client.ErrUnavailable) {
		return nil, false, err
	}

	cached, cerr := s.cache.Conversation(ctx, selfID, peerID)
	if cerr != nil {
		return nil, false, cerr
	}
	return cached, true, nil
}

func (s *chatService) Send(ctx context.Context, peerID, text, imagePath string) (*models.Message, error) {
	var image string
	if imagePath != "" {
		var err error
		if image, err = encodeImage(imagePath); err != nil {
			return nil, err
		}
	}

	m, err := s.client.Send(ctx, peerID, text, image)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Upsert(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *chatService) Listen(ctx context.Context, handle func(models.Event)) error {
	return s.client.Listen(ctx, func(ev models.Event) {
		if ev.Type == models.EventMessageReceived {
			if m, err := ev.Message(); err == nil {
				if err := s.cache.Upsert(ctx, m); err != nil {
					log.Printf("error caching message %s: %v", m.ID, err)
				}
			}
		}
		handle(ev)
	})
}

// SaveImage downloads the attachment at ref into dir and returns the path
// written. Existing files are never overwritten.
func (s *chatService) SaveImage(ctx context.Context, ref, dir string) (string, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(abs, ".download-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	_, err = s.client.Download(ctx, ref, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", err
	}

	mime, err := mimetype.DetectFile(tmp.Name())
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", fmt.Errorf("%w: %s is %s", ErrNotAnImage, ref, mime.String())
	}

	dst := filex.FreeName(abs, attachmentName(ref, mime.Extension()))
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}
	return dst, nil
}

func attachmentName(ref, ext string) string {
	name := "image"
	if u, err := url.Parse(ref); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" {
			name = base
		}
	}
	if filepath.Ext(name) == "" {
		name += ext
	}
	return name
}

// encodeImage reads an image file into a data URI.
func encodeImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", fmt.Errorf("%w: %s is %s", ErrNotAnImage, path, mime.String())
	}
	return "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
