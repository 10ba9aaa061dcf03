package app

import (
	"context"
	"errors"

	"github.com/satriacloudx/BotDracinV2/internal/domain"
)

// fakeChat enregistre les envois/éditions/suppressions pour les tests du
// routeur et de la livraison.
type fakeChat struct {
	nextID int

	sent    []fakeMessage
	edits   []fakeMessage
	deleted []int

	failEdit  bool
	failSend  bool
	failVideo bool
}

type fakeMessage struct {
	ChatID    int64
	MessageID int
	View      domain.View
	VideoRef  string
	Caption   string
	Protected bool
}

func newFakeChat() *fakeChat {
	return &fakeChat{nextID: 100}
}

func (c *fakeChat) SendView(ctx context.Context, chatID int64, v domain.View) (int, error) {
	if c.failSend {
		return 0, errors.New("send failed")
	}
	c.nextID++
	c.sent = append(c.sent, fakeMessage{ChatID: chatID, MessageID: c.nextID, View: v})
	return c.nextID, nil
}

func (c *fakeChat) EditView(ctx context.Context, chatID int64, messageID int, v domain.View) error {
	if c.failEdit {
		return errors.New("edit failed")
	}
	c.edits = append(c.edits, fakeMessage{ChatID: chatID, MessageID: messageID, View: v})
	return nil
}

func (c *fakeChat) Delete(ctx context.Context, chatID int64, messageID int) error {
	c.deleted = append(c.deleted, messageID)
	return nil
}

func (c *fakeChat) SendProtectedVideo(ctx context.Context, chatID int64, videoRef, caption string) (int, error) {
	if c.failVideo {
		return 0, errors.New("video send failed")
	}
	c.nextID++
	c.sent = append(c.sent, fakeMessage{ChatID: chatID, MessageID: c.nextID, VideoRef: videoRef, Caption: caption, Protected: true})
	return c.nextID, nil
}

func (c *fakeChat) lastSent() fakeMessage {
	return c.sent[len(c.sent)-1]
}

// buttonActions aplati toutes les actions d'une vue, pour les assertions.
func buttonActions(v domain.View) []string {
	var out []string
	for _, row := range v.Rows {
		for _, b := range row {
			out = append(out, b.Action)
		}
	}
	return out
}

func hasAction(v domain.View, action string) bool {
	for _, a := range buttonActions(v) {
		if a == action {
			return true
		}
	}
	return false
}
