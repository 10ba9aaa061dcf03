package ports

import (
	"context"

	"github.com/satriacloudx/BotDracinV2/internal/domain"
)

// SessionRepository regroupe l'état par user: dernière paire livrée,
// liaison d'ingestion admin, intent texte libre, handle du dernier menu.
type SessionRepository interface {
	DeliveryFor(ctx context.Context, userID int64) (domain.DeliverySession, error)
	// PutDelivery remplace la paire en bloc (last-write-wins).
	PutDelivery(ctx context.Context, s domain.DeliverySession) error

	IngestFor(ctx context.Context, adminID int64) (domain.IngestSession, error)
	PutIngest(ctx context.Context, s domain.IngestSession) error
	ClearIngest(ctx context.Context, adminID int64) error

	// TakeIntent lit puis remet IntentIdle en une opération.
	TakeIntent(ctx context.Context, userID int64) (domain.Intent, error)
	SetIntent(ctx context.Context, userID int64, it domain.Intent) error

	MenuFor(ctx context.Context, userID int64) (int, error)
	SetMenu(ctx context.Context, userID int64, messageID int) error
}
