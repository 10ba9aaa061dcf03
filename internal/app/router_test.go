package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/satriacloudx/BotDracinV2/internal/adapters/memstore"
	"github.com/satriacloudx/BotDracinV2/internal/domain"
	"github.com/satriacloudx/BotDracinV2/internal/ports"
)

type routerFixture struct {
	chat     *fakeChat
	access   *AccessService
	catalog  *CatalogService
	ingest   *IngestService
	sessions *memstore.SessionStore
	router   *Router
}

func newRouterFixture(t *testing.T, admins map[int64]bool) *routerFixture {
	t.Helper()

	chat := newFakeChat()
	catalog := NewCatalogService(memstore.NewCatalogStore(), nil)
	access := NewAccessService(memstore.NewSubscriptionStore(), memstore.NewTokenStore(), nil, DefaultAccessOptions())
	sessions := memstore.NewSessionStore()
	ingest := NewIngestService(zerolog.Nop(), catalog, sessions)
	delivery := NewDeliveryService(zerolog.Nop(), catalog, access, sessions, chat)
	router := NewRouter(zerolog.Nop(), access, catalog, ingest, delivery, sessions, chat, admins)

	return &routerFixture{chat: chat, access: access, catalog: catalog, ingest: ingest, sessions: sessions, router: router}
}

func (f *routerFixture) seedDramas(t *testing.T, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("dr%02d", i)
		if _, err := f.catalog.UpsertDramaMeta(ctx, id, fmt.Sprintf("Drama %02d", i), "thumb"); err != nil {
			t.Fatalf("UpsertDramaMeta(%s): %v", id, err)
		}
		if _, err := f.catalog.AppendEpisode(ctx, id, "vid"); err != nil {
			t.Fatalf("AppendEpisode(%s): %v", id, err)
		}
	}
}

// dramaButtons compte les boutons de sélection de drama dans une vue.
func dramaButtons(v domain.View) int {
	n := 0
	for _, a := range buttonActions(v) {
		if strings.HasPrefix(a, "d_") {
			n++
		}
	}
	return n
}

func TestDramaList_Pagination(t *testing.T) {
	ctx := context.Background()
	f := newRouterFixture(t, nil)
	f.seedDramas(t, 17)

	f.router.HandleStart(ctx, 42)
	menuID := f.chat.lastSent().MessageID

	// 17 dramas sur des pages de 8: [8, 8, 1].
	f.router.HandleAction(ctx, 42, menuID, ActionList(0))
	page0 := f.chat.edits[len(f.chat.edits)-1].View
	if got := dramaButtons(page0); got != 8 {
		t.Fatalf("page 0: want 8 dramas, got %d", got)
	}
	if hasAction(page0, ActionList(-1)) {
		t.Fatalf("page 0 must not offer prev")
	}
	if !hasAction(page0, ActionList(1)) {
		t.Fatalf("page 0 must offer next")
	}

	f.router.HandleAction(ctx, 42, menuID, ActionList(2))
	page2 := f.chat.edits[len(f.chat.edits)-1].View
	if got := dramaButtons(page2); got != 1 {
		t.Fatalf("page 2: want 1 drama, got %d", got)
	}
	if hasAction(page2, ActionList(3)) {
		t.Fatalf("page 2 must not offer next")
	}

	// Page hors limite: vide, prev actif, next absent.
	f.router.HandleAction(ctx, 42, menuID, ActionList(3))
	page3 := f.chat.edits[len(f.chat.edits)-1].View
	if got := dramaButtons(page3); got != 0 {
		t.Fatalf("page 3: want empty, got %d dramas", got)
	}
	if !hasAction(page3, ActionList(2)) {
		t.Fatalf("page 3 must offer prev")
	}
	if hasAction(page3, ActionList(4)) {
		t.Fatalf("page 3 must not offer next")
	}
}

func TestEpisodeGrid_LockMarkersAndRows(t *testing.T) {
	ctx := context.Background()
	f := newRouterFixture(t, nil)

	if _, err := f.catalog.UpsertDramaMeta(ctx, "dr1", "T", "thumb"); err != nil {
		t.Fatalf("UpsertDramaMeta: %v", err)
	}
	for i := 0; i < 7; i++ {
		if _, err := f.catalog.AppendEpisode(ctx, "dr1", "vid"); err != nil {
			t.Fatalf("AppendEpisode: %v", err)
		}
	}

	f.router.HandleStart(ctx, 42)
	menuID := f.chat.lastSent().MessageID
	f.router.HandleAction(ctx, 42, menuID, ActionDrama("dr1"))
	grid := f.chat.edits[len(f.chat.edits)-1].View

	locked := 0
	for _, row := range grid.Rows {
		for _, b := range row {
			if strings.HasPrefix(b.Label, "🔒") {
				locked++
			}
		}
	}
	// Épisodes 5, 6, 7 verrouillés pour un non-abonné.
	if locked != 3 {
		t.Fatalf("locked markers: want 3, got %d", locked)
	}
	// 7 épisodes sur des rangées de 5: [5, 2].
	if len(grid.Rows[0]) != 5 || len(grid.Rows[1]) != 2 {
		t.Fatalf("grid rows: want [5 2], got [%d %d]", len(grid.Rows[0]), len(grid.Rows[1]))
	}
}

func TestLockedEpisode_RendersUpsell(t *testing.T) {
	ctx := context.Background()
	f := newRouterFixture(t, nil)

	if _, err := f.catalog.UpsertDramaMeta(ctx, "dr1", "T", "thumb"); err != nil {
		t.Fatalf("UpsertDramaMeta: %v", err)
	}
	for i := 0; i < 6; i++ {
		if _, err := f.catalog.AppendEpisode(ctx, "dr1", "vid"); err != nil {
			t.Fatalf("AppendEpisode: %v", err)
		}
	}

	f.router.HandleStart(ctx, 42)
	menuID := f.chat.lastSent().MessageID
	sentBefore := len(f.chat.sent)

	f.router.HandleAction(ctx, 42, menuID, ActionEpisode("dr1", 6))
	if len(f.chat.sent) != sentBefore {
		t.Fatalf("locked episode must not send content")
	}
	upsell := f.chat.edits[len(f.chat.edits)-1].View
	if !hasAction(upsell, VerbSubscribe) || !hasAction(upsell, VerbRedeem) {
		t.Fatalf("upsell actions: %v", buttonActions(upsell))
	}
}

func TestAdminVerbs_FailClosed(t *testing.T) {
	ctx := context.Background()
	// Allow-list vide: aucun verbe admin ne passe, pour personne.
	f := newRouterFixture(t, nil)

	f.router.HandleStart(ctx, 42)
	menu := f.chat.lastSent()
	if hasAction(menu.View, VerbAdminPanel) {
		t.Fatalf("main menu must not expose the admin entry")
	}

	f.router.HandleAction(ctx, 42, menu.MessageID, VerbAdminPanel)
	denied := f.chat.edits[len(f.chat.edits)-1].View
	if !strings.Contains(denied.Text, "Access denied") {
		t.Fatalf("want denial, got %q", denied.Text)
	}

	// Même refus pour la génération directe de token.
	f.router.HandleAction(ctx, 42, menu.MessageID, ActionCreateToken(domain.PlanDaily))
	if toks, err := f.access.ListTokens(ctx); err != nil || len(toks) != 0 {
		t.Fatalf("no token must be minted: %v, %d", err, len(toks))
	}
}

func TestAdminVerbs_AllowListed(t *testing.T) {
	ctx := context.Background()
	f := newRouterFixture(t, map[int64]bool{7: true})

	f.router.HandleStart(ctx, 7)
	menu := f.chat.lastSent()
	if !hasAction(menu.View, VerbAdminPanel) {
		t.Fatalf("admin menu entry missing for allow-listed user")
	}

	f.router.HandleAction(ctx, 7, menu.MessageID, ActionCreateToken(domain.PlanWeekly))
	created := f.chat.edits[len(f.chat.edits)-1].View
	if !strings.Contains(created.Text, TokenPrefix) {
		t.Fatalf("token code missing from view: %q", created.Text)
	}
	toks, err := f.access.ListTokens(ctx)
	if err != nil || len(toks) != 1 {
		t.Fatalf("want 1 token, got %d (%v)", len(toks), err)
	}
	if toks[0].CreatedBy != 7 {
		t.Fatalf("token creator: want 7, got %d", toks[0].CreatedBy)
	}
}

func TestUnknownAction_NoOp(t *testing.T) {
	ctx := context.Background()
	f := newRouterFixture(t, nil)

	f.router.HandleStart(ctx, 42)
	sent, edits, deleted := len(f.chat.sent), len(f.chat.edits), len(f.chat.deleted)

	for _, data := range []string{"bogus", "ep_x", "list_x", ""} {
		f.router.HandleAction(ctx, 42, f.chat.lastSent().MessageID, data)
	}
	if len(f.chat.sent) != sent || len(f.chat.edits) != edits || len(f.chat.deleted) != deleted {
		t.Fatalf("unknown tokens must be acknowledged without any render")
	}
}

func TestIntent_ConsumedOnce(t *testing.T) {
	ctx := context.Background()
	f := newRouterFixture(t, nil)
	f.seedDramas(t, 2)

	f.router.HandleStart(ctx, 42)
	menuID := f.chat.lastSent().MessageID

	f.router.HandleAction(ctx, 42, menuID, VerbSearch)
	f.router.HandleText(ctx, 42, "Drama 01")
	results := f.chat.lastSent().View
	if !strings.Contains(results.Text, "Results") {
		t.Fatalf("want search results, got %q", results.Text)
	}

	// L'intent est consommé: le texte suivant retombe sur le menu.
	f.router.HandleText(ctx, 42, "Drama 00")
	fallback := f.chat.lastSent().View
	if !strings.Contains(fallback.Text, "Welcome") {
		t.Fatalf("want main menu after consumed intent, got %q", fallback.Text)
	}
}

func TestRedeemFlow_ThroughRouter(t *testing.T) {
	ctx := context.Background()
	f := newRouterFixture(t, map[int64]bool{7: true})

	code, err := f.access.GenerateToken(ctx, domain.PlanDaily, 7)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	f.router.HandleStart(ctx, 42)
	menuID := f.chat.lastSent().MessageID
	f.router.HandleAction(ctx, 42, menuID, VerbRedeem)

	// Le code est normalisé (casse, espaces) avant validation.
	f.router.HandleText(ctx, 42, "  "+strings.ToLower(code)+"  ")
	redeemed := f.chat.lastSent().View
	if !strings.Contains(redeemed.Text, "redeemed") {
		t.Fatalf("want redeemed confirmation, got %q", redeemed.Text)
	}
	if !f.access.IsEntitled(ctx, 42) {
		t.Fatalf("user must be entitled after redeem")
	}

	// Second essai du même code: intent re-posé via Redeem, échec explicite.
	f.router.HandleAction(ctx, 42, menuID, VerbRedeem)
	f.router.HandleText(ctx, 42, code)
	failed := f.chat.lastSent().View
	if !strings.Contains(failed.Text, "already been used") {
		t.Fatalf("want already-used message, got %q", failed.Text)
	}
}

func TestIngestFlow_ThroughRouter(t *testing.T) {
	ctx := context.Background()
	f := newRouterFixture(t, map[int64]bool{7: true})

	f.router.HandleMedia(ctx, MediaEvent{UserID: 7, Kind: MediaPhoto, Caption: "#drakor1 My Drama", MediaRef: "thumb"})
	bound := f.chat.lastSent().View
	if !strings.Contains(bound.Text, "drakor1") {
		t.Fatalf("want binding confirmation, got %q", bound.Text)
	}

	f.router.HandleMedia(ctx, MediaEvent{UserID: 7, Kind: MediaVideo, MediaRef: "vid-1"})
	added := f.chat.lastSent().View
	if !strings.Contains(added.Text, "Episode 1") {
		t.Fatalf("want episode confirmation, got %q", added.Text)
	}

	// Non-admin: l'upload est refusé sans toucher au catalogue.
	f.router.HandleMedia(ctx, MediaEvent{UserID: 42, Kind: MediaVideo, MediaRef: "vid-x"})
	dramas, episodes, err := f.catalog.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if dramas != 1 || episodes != 1 {
		t.Fatalf("catalog mutated by non-admin: %d dramas, %d episodes", dramas, episodes)
	}
}

func TestDeliver_ContentSendFailureSurfaced(t *testing.T) {
	ctx := context.Background()
	f := newRouterFixture(t, nil)
	f.seedDramas(t, 1)

	f.router.HandleStart(ctx, 42)
	menuID := f.chat.lastSent().MessageID

	// Échec transport sur l'envoi du contenu lui-même: échec explicite rendu
	// au requester, session de livraison intacte.
	f.chat.failVideo = true
	f.router.HandleAction(ctx, 42, menuID, ActionEpisode("dr00", 1))

	failure := f.chat.edits[len(f.chat.edits)-1].View
	if !strings.Contains(failure.Text, "Delivery failed") {
		t.Fatalf("want explicit delivery failure, got %q", failure.Text)
	}
	if _, err := f.sessions.DeliveryFor(ctx, 42); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("delivery session must stay untouched, got %v", err)
	}
}

func TestRender_SendFailureKeepsMenuHandle(t *testing.T) {
	ctx := context.Background()
	f := newRouterFixture(t, nil)

	f.router.HandleStart(ctx, 42)
	menuID := f.chat.lastSent().MessageID

	// Édition ET envoi frais en échec: on abandonne sans supprimer le message
	// porteur ni déplacer le handle de menu.
	f.chat.failEdit = true
	f.chat.failSend = true
	f.router.HandleAction(ctx, 42, menuID, VerbSubscribe)

	if len(f.chat.deleted) != 0 {
		t.Fatalf("stale menu must not be deleted when no replacement exists: %v", f.chat.deleted)
	}
	got, err := f.sessions.MenuFor(ctx, 42)
	if err != nil {
		t.Fatalf("MenuFor: %v", err)
	}
	if got != menuID {
		t.Fatalf("menu handle: want %d, got %d", menuID, got)
	}
}

func TestRender_EditFallback(t *testing.T) {
	ctx := context.Background()
	f := newRouterFixture(t, nil)

	f.router.HandleStart(ctx, 42)
	staleID := f.chat.lastSent().MessageID

	// L'édition échoue (message trop vieux, supprimé…): fallback en envoi
	// frais + suppression du périmé.
	f.chat.failEdit = true
	f.router.HandleAction(ctx, 42, staleID, VerbSubscribe)

	fresh := f.chat.lastSent()
	if fresh.MessageID == staleID {
		t.Fatalf("expected a fresh message")
	}
	found := false
	for _, id := range f.chat.deleted {
		if id == staleID {
			found = true
		}
	}
	if !found {
		t.Fatalf("stale menu %d not deleted (deleted: %v)", staleID, f.chat.deleted)
	}

	// Le handle suivi pointe sur le frais.
	menuID, err := f.sessions.MenuFor(ctx, 42)
	if err != nil {
		t.Fatalf("MenuFor: %v", err)
	}
	if menuID != fresh.MessageID {
		t.Fatalf("menu handle: want %d, got %d", fresh.MessageID, menuID)
	}
}

func TestMainMenu_ExpiryWarningLine(t *testing.T) {
	ctx := context.Background()
	f := newRouterFixture(t, nil)

	if _, err := f.access.GrantOrExtend(ctx, 42, domain.PlanDaily); err != nil {
		t.Fatalf("GrantOrExtend: %v", err)
	}

	// Un plan journalier expire dans la fenêtre d'avertissement dès l'octroi.
	f.router.HandleStart(ctx, 42)
	menu := f.chat.lastSent().View
	if !strings.Contains(menu.Text, "expires in") {
		t.Fatalf("want expiry warning line, got %q", menu.Text)
	}

	// Dismissal via l'écran d'abonnement.
	f.router.HandleAction(ctx, 42, f.chat.lastSent().MessageID, VerbDismissWarn)
	f.router.HandleStart(ctx, 42)
	menu = f.chat.lastSent().View
	if strings.Contains(menu.Text, "expires in") {
		t.Fatalf("warning should be suppressed after dismissal")
	}
}
