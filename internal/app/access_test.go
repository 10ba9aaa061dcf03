package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/satriacloudx/BotDracinV2/internal/adapters/memstore"
	"github.com/satriacloudx/BotDracinV2/internal/domain"
	"github.com/satriacloudx/BotDracinV2/internal/ports"
)

func newAccessForTest(t *testing.T, at time.Time) *AccessService {
	t.Helper()
	svc := NewAccessService(memstore.NewSubscriptionStore(), memstore.NewTokenStore(), nil, DefaultAccessOptions())
	svc.now = func() time.Time { return at }
	return svc
}

func TestGrantOrExtend_BeforeExpiry(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newAccessForTest(t, start)

	first, err := svc.GrantOrExtend(ctx, 42, domain.PlanWeekly)
	if err != nil {
		t.Fatalf("GrantOrExtend: %v", err)
	}
	if want := start.Add(7 * 24 * time.Hour); !first.Equal(want) {
		t.Fatalf("first expiry: want %v, got %v", want, first)
	}

	// Renouvellement avant expiration: E + D, jamais now + D.
	svc.now = func() time.Time { return start.Add(2 * 24 * time.Hour) }
	second, err := svc.GrantOrExtend(ctx, 42, domain.PlanWeekly)
	if err != nil {
		t.Fatalf("GrantOrExtend(renew): %v", err)
	}
	if want := first.Add(7 * 24 * time.Hour); !second.Equal(want) {
		t.Fatalf("renewed expiry: want %v, got %v", want, second)
	}
}

func TestGrantOrExtend_AfterExpiry(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newAccessForTest(t, start)

	if _, err := svc.GrantOrExtend(ctx, 42, domain.PlanDaily); err != nil {
		t.Fatalf("GrantOrExtend: %v", err)
	}

	// Renouvellement après expiration: base = now.
	later := start.Add(10 * 24 * time.Hour)
	svc.now = func() time.Time { return later }
	got, err := svc.GrantOrExtend(ctx, 42, domain.PlanDaily)
	if err != nil {
		t.Fatalf("GrantOrExtend(late renew): %v", err)
	}
	if want := later.Add(24 * time.Hour); !got.Equal(want) {
		t.Fatalf("late renewal expiry: want %v, got %v", want, got)
	}
}

func TestRedeemToken_Twice(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newAccessForTest(t, now)

	code, err := svc.GenerateToken(ctx, domain.PlanMonthly, 1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	plan, err := svc.RedeemToken(ctx, code, 42)
	if err != nil {
		t.Fatalf("RedeemToken: %v", err)
	}
	if plan != domain.PlanMonthly {
		t.Fatalf("plan: want %q, got %q", domain.PlanMonthly, plan)
	}
	subAfterFirst, err := svc.Subscription(ctx, 42)
	if err != nil {
		t.Fatalf("Subscription: %v", err)
	}

	_, err = svc.RedeemToken(ctx, code, 42)
	if !errors.Is(err, ports.ErrTokenUsed) {
		t.Fatalf("second redeem: want ErrTokenUsed, got %v", err)
	}

	// L'état d'abonnement après le second essai == état après le premier.
	subAfterSecond, err := svc.Subscription(ctx, 42)
	if err != nil {
		t.Fatalf("Subscription(after second): %v", err)
	}
	if !subAfterSecond.ExpiresAt.Equal(subAfterFirst.ExpiresAt) {
		t.Fatalf("expiry changed by failed redeem: %v -> %v", subAfterFirst.ExpiresAt, subAfterSecond.ExpiresAt)
	}
}

func TestRedeemToken_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := newAccessForTest(t, time.Now().UTC())

	if _, err := svc.RedeemToken(ctx, "DRACIN-NOPE1234", 42); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestGenerateToken_Format(t *testing.T) {
	ctx := context.Background()
	svc := newAccessForTest(t, time.Now().UTC())

	code, err := svc.GenerateToken(ctx, domain.PlanDaily, 1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if !strings.HasPrefix(code, TokenPrefix) {
		t.Fatalf("code %q missing prefix %q", code, TokenPrefix)
	}
	suffix := strings.TrimPrefix(code, TokenPrefix)
	if len(suffix) != TokenSuffixLen {
		t.Fatalf("suffix length: want %d, got %d (%q)", TokenSuffixLen, len(suffix), code)
	}
	for _, r := range suffix {
		if !strings.ContainsRune(tokenAlphabet, r) {
			t.Fatalf("suffix %q contains %q outside alphabet", suffix, r)
		}
	}
}

func TestIsLocked_Threshold(t *testing.T) {
	svc := newAccessForTest(t, time.Now().UTC())

	for ep := domain.EpisodeNumber(1); ep <= 4; ep++ {
		if svc.IsLocked(ep) {
			t.Fatalf("episode %d should be free", ep)
		}
	}
	if !svc.IsLocked(5) {
		t.Fatalf("episode 5 should be locked")
	}
	if !svc.IsLocked(17) {
		t.Fatalf("episode 17 should be locked")
	}
}

func TestIsEntitled_ExpiresPassively(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newAccessForTest(t, start)

	if _, err := svc.GrantOrExtend(ctx, 42, domain.PlanDaily); err != nil {
		t.Fatalf("GrantOrExtend: %v", err)
	}
	if !svc.IsEntitled(ctx, 42) {
		t.Fatalf("should be entitled right after grant")
	}

	svc.now = func() time.Time { return start.Add(25 * time.Hour) }
	if svc.IsEntitled(ctx, 42) {
		t.Fatalf("should not be entitled after expiry")
	}
}

func TestExpiryWarning_DismissAndRearm(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newAccessForTest(t, start)

	if _, err := svc.GrantOrExtend(ctx, 42, domain.PlanWeekly); err != nil {
		t.Fatalf("GrantOrExtend: %v", err)
	}

	// Loin de l'expiration: pas d'avertissement.
	if w := svc.ExpiryWarning(ctx, 42); w.ExpiringSoon {
		t.Fatalf("warning too early: %+v", w)
	}

	// À 2 jours de l'expiration: avertissement dans la fenêtre de 3 jours.
	svc.now = func() time.Time { return start.Add(5 * 24 * time.Hour) }
	w := svc.ExpiryWarning(ctx, 42)
	if !w.ExpiringSoon {
		t.Fatalf("expected warning at 2 days left")
	}
	if w.DaysLeft != 2 || w.HoursLeft != 0 {
		t.Fatalf("time left: want 2d 0h, got %dd %dh", w.DaysLeft, w.HoursLeft)
	}

	// Dismissal one-shot.
	if err := svc.DismissExpiryWarning(ctx, 42); err != nil {
		t.Fatalf("DismissExpiryWarning: %v", err)
	}
	if w := svc.ExpiryWarning(ctx, 42); w.ExpiringSoon {
		t.Fatalf("warning should be suppressed after dismissal")
	}

	// Le renouvellement réarme le flag.
	if _, err := svc.GrantOrExtend(ctx, 42, domain.PlanDaily); err != nil {
		t.Fatalf("GrantOrExtend(renew): %v", err)
	}
	svc.now = func() time.Time { return start.Add(7*24*time.Hour + 12*time.Hour) }
	if w := svc.ExpiryWarning(ctx, 42); !w.ExpiringSoon {
		t.Fatalf("warning should re-arm after renewal")
	}
}

func TestActiveSubscriberCount(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newAccessForTest(t, start)

	if _, err := svc.GrantOrExtend(ctx, 1, domain.PlanDaily); err != nil {
		t.Fatalf("GrantOrExtend: %v", err)
	}
	if _, err := svc.GrantOrExtend(ctx, 2, domain.PlanMonthly); err != nil {
		t.Fatalf("GrantOrExtend: %v", err)
	}

	svc.now = func() time.Time { return start.Add(48 * time.Hour) }
	n, err := svc.ActiveSubscriberCount(ctx)
	if err != nil {
		t.Fatalf("ActiveSubscriberCount: %v", err)
	}
	if n != 1 {
		t.Fatalf("active count: want 1, got %d", n)
	}
}
