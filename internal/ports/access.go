package ports

import (
	"context"
	"time"

	"github.com/satriacloudx/BotDracinV2/internal/domain"
)

type SubscriptionRepository interface {
	Get(ctx context.Context, userID int64) (domain.Subscription, error)
	// Put écrase l'enregistrement du user (un seul par user, jamais plusieurs).
	Put(ctx context.Context, sub domain.Subscription) error
	List(ctx context.Context) ([]domain.Subscription, error)
	// CountActive: abonnements avec expiresAt > now. L'expiration est passive,
	// détectée par comparaison au temps courant (pas de sweep).
	CountActive(ctx context.Context, now time.Time) (int, error)
}

type TokenRepository interface {
	// Create renvoie ErrConflict si le code existe déjà.
	Create(ctx context.Context, tok domain.Token) error
	GetByCode(ctx context.Context, code string) (domain.Token, error)
	// MarkUsed écrit used/usedBy/usedAt exactement une fois.
	// Renvoie ErrTokenUsed si déjà consommé, ErrNotFound si le code est absent.
	MarkUsed(ctx context.Context, code string, userID int64, at time.Time) (domain.Token, error)
	List(ctx context.Context) ([]domain.Token, error)
}
