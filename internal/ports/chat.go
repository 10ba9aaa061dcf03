package ports

import (
	"context"

	"github.com/satriacloudx/BotDracinV2/internal/domain"
)

// Chat est la capacité présentateur consommée par le routeur:
// present(content) / retract(previousHandle) + édition in-place.
// Une surface qui ne sait pas supprimer peut implémenter Delete comme un
// remplacement d'élément affiché.
type Chat interface {
	SendView(ctx context.Context, chatID int64, v domain.View) (messageID int, err error)
	EditView(ctx context.Context, chatID int64, messageID int, v domain.View) error
	Delete(ctx context.Context, chatID int64, messageID int) error

	// SendProtectedVideo envoie le contenu avec le flag non-exportable du
	// transport. La navigation part dans un message séparé via SendView.
	SendProtectedVideo(ctx context.Context, chatID int64, videoRef, caption string) (messageID int, err error)
}
