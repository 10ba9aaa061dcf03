package app

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/satriacloudx/BotDracinV2/internal/domain"
	"github.com/satriacloudx/BotDracinV2/internal/ports"
)

const (
	// TokenPrefix + suffixe aléatoire de TokenSuffixLen caractères.
	TokenPrefix    = "DRACIN-"
	TokenSuffixLen = 8

	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type AccessOptions struct {
	// LockThreshold: premier épisode verrouillé (défaut 5).
	LockThreshold domain.EpisodeNumber
	// WarnWindow: fenêtre "expire bientôt" (défaut 72h).
	WarnWindow time.Duration
}

func DefaultAccessOptions() AccessOptions {
	return AccessOptions{LockThreshold: 5, WarnWindow: 72 * time.Hour}
}

// AccessService: ledger abonnements + tokens à usage unique.
type AccessService struct {
	subs   ports.SubscriptionRepository
	tokens ports.TokenRepository
	bus    ports.EventBus
	opts   AccessOptions

	// now est injectable pour les tests d'expiration.
	now func() time.Time
}

func NewAccessService(subs ports.SubscriptionRepository, tokens ports.TokenRepository, bus ports.EventBus, opts AccessOptions) *AccessService {
	if opts.LockThreshold <= 0 {
		opts.LockThreshold = DefaultAccessOptions().LockThreshold
	}
	if opts.WarnWindow <= 0 {
		opts.WarnWindow = DefaultAccessOptions().WarnWindow
	}
	return &AccessService{subs: subs, tokens: tokens, bus: bus, opts: opts, now: time.Now}
}

func (s *AccessService) IsEntitled(ctx context.Context, userID int64) bool {
	sub, err := s.subs.Get(ctx, userID)
	if err != nil {
		return false
	}
	return sub.ActiveAt(s.now().UTC())
}

func (s *AccessService) IsLocked(ep domain.EpisodeNumber) bool {
	return ep >= s.opts.LockThreshold
}

// GrantOrExtend: newExpiry = max(expiration courante si active, now) + durée
// du plan. L'expiration ne recule jamais. Remet à zéro le flag de dismissal.
func (s *AccessService) GrantOrExtend(ctx context.Context, userID int64, plan domain.Plan) (time.Time, error) {
	if !plan.Valid() {
		return time.Time{}, fmt.Errorf("unknown plan %q", plan)
	}

	now := s.now().UTC()
	base := now
	if existing, err := s.subs.Get(ctx, userID); err == nil && existing.ExpiresAt.After(base) {
		base = existing.ExpiresAt
	}

	sub := domain.Subscription{
		UserID:      userID,
		Plan:        plan,
		ActivatedAt: now,
		ExpiresAt:   base.Add(plan.Duration()),
	}
	if err := s.subs.Put(ctx, sub); err != nil {
		return time.Time{}, err
	}
	s.publish("subscription.extended", map[string]any{
		"userId":    userID,
		"plan":      plan,
		"expiresAt": sub.ExpiresAt,
	})
	return sub.ExpiresAt, nil
}

// RedeemToken consomme le token puis étend l'abonnement. Sous le worker
// unique, la mutation token + abonnement est atomique vue de l'appelant.
func (s *AccessService) RedeemToken(ctx context.Context, code string, userID int64) (domain.Plan, error) {
	tok, err := s.tokens.MarkUsed(ctx, code, userID, s.now().UTC())
	if err != nil {
		return "", err
	}
	if _, err := s.GrantOrExtend(ctx, userID, tok.Plan); err != nil {
		return "", err
	}
	s.publish("token.redeemed", map[string]any{"code": tok.Code, "userId": userID})
	return tok.Plan, nil
}

// GenerateToken tire un suffixe aléatoire et re-tire en cas de collision
// (probabilité quasi nulle sur 36^8).
func (s *AccessService) GenerateToken(ctx context.Context, plan domain.Plan, adminID int64) (string, error) {
	if !plan.Valid() {
		return "", fmt.Errorf("unknown plan %q", plan)
	}

	for {
		code, err := drawTokenCode()
		if err != nil {
			return "", err
		}
		tok := domain.Token{
			ID:        xid.New().String(),
			Code:      code,
			Plan:      plan,
			CreatedBy: adminID,
			CreatedAt: s.now().UTC(),
		}
		err = s.tokens.Create(ctx, tok)
		if err == nil {
			s.publish("token.created", map[string]any{"code": code, "plan": plan})
			return code, nil
		}
		if err != ports.ErrConflict {
			return "", err
		}
	}
}

func drawTokenCode() (string, error) {
	buf := make([]byte, TokenSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("draw token suffix: %w", err)
	}
	for i, b := range buf {
		buf[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return TokenPrefix + string(buf), nil
}

type ExpiryWarning struct {
	ExpiringSoon bool
	DaysLeft     int
	HoursLeft    int
}

// ExpiryWarning: abonnement actif et temps restant <= fenêtre, sauf si le
// user a masqué l'avertissement (one-shot, réarmé au renouvellement).
func (s *AccessService) ExpiryWarning(ctx context.Context, userID int64) ExpiryWarning {
	sub, err := s.subs.Get(ctx, userID)
	if err != nil {
		return ExpiryWarning{}
	}
	now := s.now().UTC()
	if !sub.ActiveAt(now) || sub.WarnDismissed {
		return ExpiryWarning{}
	}
	left := sub.ExpiresAt.Sub(now)
	if left > s.opts.WarnWindow {
		return ExpiryWarning{}
	}
	return ExpiryWarning{
		ExpiringSoon: true,
		DaysLeft:     int(left / (24 * time.Hour)),
		HoursLeft:    int(left/time.Hour) % 24,
	}
}

func (s *AccessService) DismissExpiryWarning(ctx context.Context, userID int64) error {
	sub, err := s.subs.Get(ctx, userID)
	if err != nil {
		return err
	}
	sub.WarnDismissed = true
	return s.subs.Put(ctx, sub)
}

func (s *AccessService) Subscription(ctx context.Context, userID int64) (domain.Subscription, error) {
	return s.subs.Get(ctx, userID)
}

func (s *AccessService) ListSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	return s.subs.List(ctx)
}

func (s *AccessService) ListTokens(ctx context.Context) ([]domain.Token, error) {
	return s.tokens.List(ctx)
}

func (s *AccessService) ActiveSubscriberCount(ctx context.Context) (int, error) {
	return s.subs.CountActive(ctx, s.now().UTC())
}

func (s *AccessService) publish(topic string, v any) {
	if s.bus == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.bus.Publish(topic, b)
}
