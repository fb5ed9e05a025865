package cli

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/dmitrijs2005/pairchat/internal/client/models"
	"github.com/samber/lo"
)

var errUsage = errors.New("usage")

func (a *App) rememberNames(users []*models.User) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	if a.names == nil {
		a.names = make(map[string]string, len(users))
	}
	for _, u := range users {
		a.names[u.ID] = u.FullName
	}
}

func (a *App) nameOf(id string) string {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	if a.user != nil && a.user.ID == id {
		return "me"
	}
	if name, ok := a.names[id]; ok {
		return name
	}
	return id
}

// Partners lists everyone the user can talk to.
func (a *App) Partners(ctx context.Context) error {
	users, err := a.chatService.Partners(ctx)
	if err != nil {
		reportError("Partners", err)
		return err
	}
	a.rememberNames(users)

	if len(users) == 0 {
		a.printf("Nobody else has signed up yet\n")
		return nil
	}
	for _, u := range users {
		a.printf("%s  %s <%s>\n", u.ID, u.FullName, u.Email)
	}
	return nil
}

// History prints the conversation with the peer named in args.
func (a *App) History(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printf("usage: history <peer>\n")
		return errUsage
	}
	peer, err := a.chatService.ResolvePeer(ctx, strings.Join(args, " "))
	if err != nil {
		reportError("History", err)
		return err
	}
	a.rememberNames([]*models.User{peer})

	msgs, offline, err := a.chatService.History(ctx, a.currentUser().ID, peer.ID)
	if err != nil {
		reportError("History", err)
		return err
	}
	if offline {
		a.printf("(server unavailable, showing cached messages)\n")
	}
	if len(msgs) == 0 {
		a.printf("No messages with %s yet\n", peer.FullName)
	}
	for _, m := range msgs {
		a.printMessage(m)
	}
	return nil
}

// Send posts a text message: send <peer> <text...>.
func (a *App) Send(ctx context.Context, args []string) error {
	if len(args) < 2 {
		a.printf("usage: send <peer> <text>\n")
		return errUsage
	}
	return a.send(ctx, args[0], strings.Join(args[1:], " "), "")
}

// SendImage posts an image with an optional caption:
// sendimg <peer> <path> [caption...].
func (a *App) SendImage(ctx context.Context, args []string) error {
	if len(args) < 2 {
		a.printf("usage: sendimg <peer> <path> [caption]\n")
		return errUsage
	}
	return a.send(ctx, args[0], strings.Join(args[2:], " "), args[1])
}

func (a *App) send(ctx context.Context, ref, text, imagePath string) error {
	peer, err := a.chatService.ResolvePeer(ctx, ref)
	if err != nil {
		reportError("Send", err)
		return err
	}
	m, err := a.chatService.Send(ctx, peer.ID, text, imagePath)
	if err != nil {
		reportError("Send", err)
		return err
	}
	a.printMessage(m)
	return nil
}

// downloadsDir is where save puts images, relative to the working directory.
const downloadsDir = "downloads"

// Save downloads an image attachment: save <image-url>.
func (a *App) Save(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.printf("usage: save <image-url>\n")
		return errUsage
	}
	p, err := a.chatService.SaveImage(ctx, args[0], downloadsDir)
	if err != nil {
		reportError("Save", err)
		return err
	}
	a.printf("Saved %s\n", p)
	return nil
}

// Listen toggles the background stream of presence and message events.
func (a *App) Listen(ctx context.Context) error {
	if a.stopListening() {
		a.printf("Stopped listening\n")
		return nil
	}

	lctx, cancel := context.WithCancel(ctx)
	a.stateMu.Lock()
	a.listenerGen++
	gen := a.listenerGen
	a.stopListener = cancel
	a.stateMu.Unlock()

	go func() {
		err := a.chatService.Listen(lctx, a.printEvent)
		if err != nil && lctx.Err() == nil {
			reportError("Listener stopped", err)
		}
		// a stopped listener may exit after its successor has started
		a.stateMu.Lock()
		if a.listenerGen == gen {
			a.stopListener = nil
		}
		a.stateMu.Unlock()
		cancel()
	}()

	a.printf("Listening for events (type 'listen' again to stop)\n")
	return nil
}

// stopListening cancels a running listener and reports whether there was one.
func (a *App) stopListening() bool {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	if a.stopListener == nil {
		return false
	}
	a.stopListener()
	a.stopListener = nil
	return true
}

func (a *App) printEvent(ev models.Event) {
	switch ev.Type {
	case models.EventPresenceChanged:
		ids, err := ev.Online()
		if err != nil {
			log.Printf("bad presence event: %v", err)
			return
		}
		a.printf("* online: %s\n", strings.Join(lo.Map(ids, func(id string, _ int) string { return a.nameOf(id) }), ", "))
	case models.EventMessageReceived:
		m, err := ev.Message()
		if err != nil {
			log.Printf("bad message event: %v", err)
			return
		}
		a.printMessage(m)
	}
}

func (a *App) printMessage(m *models.Message) {
	line := m.Text
	if m.Image != "" {
		line = strings.TrimSpace(line + " [image] " + m.Image)
	}
	a.printf("[%s] %s: %s\n", m.CreatedAt.Local().Format("2006-01-02 15:04"), a.nameOf(m.SenderID), line)
}
