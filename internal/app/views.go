package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/satriacloudx/BotDracinV2/internal/domain"
)

// paginate découpe items en pages 0-indexées. Une page hors limite dégrade en
// page vide, avec "previous" actif et "next" inactif.
func paginate[T any](items []T, page, size int) (pageItems []T, hasPrev, hasNext bool) {
	if page < 0 {
		page = 0
	}
	start := page * size
	if start >= len(items) {
		return nil, page > 0, false
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], page > 0, end < len(items)
}

func backButton() domain.Button {
	return domain.Button{Label: "🏠 Menu", Action: VerbBack}
}

func adminBackButton() domain.Button {
	return domain.Button{Label: "🛠 Admin", Action: VerbAdminPanel}
}

func guidanceView(text string, buttons ...domain.Button) domain.View {
	return domain.View{Text: text, Rows: [][]domain.Button{buttons}}
}

func promptView(text string) domain.View {
	return guidanceView(text, backButton())
}

func trimToken(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *Router) mainMenuView(ctx context.Context, userID int64) domain.View {
	var b strings.Builder
	b.WriteString("🎭 Welcome to Dracin!\n\nBrowse the catalog, search a title, or manage your subscription.")

	if warn := r.access.ExpiryWarning(ctx, userID); warn.ExpiringSoon {
		fmt.Fprintf(&b, "\n\n⏳ Your subscription expires in %dd %dh.", warn.DaysLeft, warn.HoursLeft)
	}

	rows := [][]domain.Button{
		domain.Row(
			domain.Button{Label: "📜 Drama List", Action: ActionList(0)},
			domain.Button{Label: "🔍 Search", Action: VerbSearch},
		),
		domain.Row(
			domain.Button{Label: "💳 Subscribe", Action: VerbSubscribe},
			domain.Button{Label: "🎟 Redeem Token", Action: VerbRedeem},
		),
		domain.Row(
			domain.Button{Label: "📅 My Subscription", Action: VerbCheckSub},
		),
	}
	if r.isAdmin(userID) {
		rows = append(rows, domain.Row(domain.Button{Label: "🛠 Admin Panel", Action: VerbAdminPanel}))
	}
	return domain.View{Text: b.String(), Rows: rows}
}

func subscribeView() domain.View {
	var b strings.Builder
	b.WriteString("💳 Subscription plans:\n\n")
	for _, p := range domain.Plans() {
		fmt.Fprintf(&b, "• %s\n", p.Label())
	}
	b.WriteString("\nGet a token from an admin, then redeem it here.")
	return domain.View{
		Text: b.String(),
		Rows: [][]domain.Button{
			domain.Row(domain.Button{Label: "🎟 Redeem Token", Action: VerbRedeem}),
			domain.Row(backButton()),
		},
	}
}

func (r *Router) subscriptionView(ctx context.Context, userID int64) domain.View {
	sub, err := r.access.Subscription(ctx, userID)
	if err != nil || !r.access.IsEntitled(ctx, userID) {
		return domain.View{
			Text: "📅 No active subscription.\n\nEpisodes 1–4 of every drama are free; subscribe to unlock the rest.",
			Rows: [][]domain.Button{
				domain.Row(domain.Button{Label: "💳 Subscribe", Action: VerbSubscribe}),
				domain.Row(backButton()),
			},
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 Subscription: %s\nExpires: %s", sub.Plan.Label(), sub.ExpiresAt.Format("2006-01-02 15:04 MST"))

	rows := [][]domain.Button{}
	if warn := r.access.ExpiryWarning(ctx, userID); warn.ExpiringSoon {
		fmt.Fprintf(&b, "\n\n⏳ Expiring soon: %dd %dh left.", warn.DaysLeft, warn.HoursLeft)
		rows = append(rows, domain.Row(domain.Button{Label: "🔕 Dismiss warning", Action: VerbDismissWarn}))
	}
	rows = append(rows, domain.Row(backButton()))
	return domain.View{Text: b.String(), Rows: rows}
}

func (r *Router) redeemedView(ctx context.Context, userID int64, plan domain.Plan) domain.View {
	text := fmt.Sprintf("✅ Token redeemed! %s activated.", plan.Label())
	if sub, err := r.access.Subscription(ctx, userID); err == nil {
		text += fmt.Sprintf("\nYour access now runs until %s.", sub.ExpiresAt.Format("2006-01-02 15:04 MST"))
	}
	return guidanceView(text, backButton())
}

func (r *Router) dramaListView(ctx context.Context, page int) domain.View {
	dramas, err := r.catalog.ListDramas(ctx, true)
	if err != nil {
		r.logger.Error().Err(err).Msg("list dramas failed")
		return guidanceView("⚠️ Could not load the catalog.", backButton())
	}
	if len(dramas) == 0 {
		return guidanceView("📭 The catalog is empty for now.", backButton())
	}

	pageItems, hasPrev, hasNext := paginate(dramas, page, dramaPageSize)

	text := fmt.Sprintf("📜 Drama list (page %d)", page+1)
	if len(pageItems) == 0 {
		text = "📭 Nothing on this page."
	}

	rows := make([][]domain.Button, 0, len(pageItems)+2)
	for _, d := range pageItems {
		label := fmt.Sprintf("%s (%d ep)", d.Title, len(d.Episodes))
		rows = append(rows, domain.Row(domain.Button{Label: label, Action: ActionDrama(d.ID)}))
	}

	var nav []domain.Button
	if hasPrev {
		nav = append(nav, domain.Button{Label: "⬅️ Prev", Action: ActionList(page - 1)})
	}
	if hasNext {
		nav = append(nav, domain.Button{Label: "Next ➡️", Action: ActionList(page + 1)})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, domain.Row(backButton()))
	return domain.View{Text: text, Rows: rows}
}

func searchResultsView(query string, results []domain.Drama) domain.View {
	if len(results) == 0 {
		return guidanceView(fmt.Sprintf("🔍 No drama matching %q.", query), backButton())
	}
	rows := make([][]domain.Button, 0, len(results)+1)
	for _, d := range results {
		label := fmt.Sprintf("%s (%d ep)", d.Title, len(d.Episodes))
		rows = append(rows, domain.Row(domain.Button{Label: label, Action: ActionDrama(d.ID)}))
	}
	rows = append(rows, domain.Row(backButton()))
	return domain.View{Text: fmt.Sprintf("🔍 Results for %q:", query), Rows: rows}
}

func (r *Router) episodeGridView(ctx context.Context, userID int64, dramaID string, page int) domain.View {
	drama, err := r.catalog.Get(ctx, dramaID)
	if err != nil {
		return guidanceView("😕 That drama isn't available.", backButton())
	}
	eps, err := r.catalog.Episodes(ctx, dramaID)
	if err != nil || len(eps) == 0 {
		return guidanceView(fmt.Sprintf("📭 %s has no episodes yet.", drama.Title), backButton())
	}

	entitled := r.access.IsEntitled(ctx, userID)
	pageEps, hasPrev, hasNext := paginate(eps, page, episodePageSize)

	text := fmt.Sprintf("🎬 %s — %d episodes", drama.Title, len(eps))
	if len(pageEps) == 0 {
		text = fmt.Sprintf("📭 %s — nothing on this page.", drama.Title)
	}

	rows := make([][]domain.Button, 0)
	var row []domain.Button
	for _, n := range pageEps {
		label := fmt.Sprintf("%d", n)
		if r.access.IsLocked(n) && !entitled {
			label = fmt.Sprintf("🔒%d", n)
		}
		row = append(row, domain.Button{Label: label, Action: ActionEpisode(dramaID, n)})
		if len(row) == episodeGridColumns {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	var nav []domain.Button
	if hasPrev {
		nav = append(nav, domain.Button{Label: "⬅️ Prev", Action: ActionEpisodePage(dramaID, page-1)})
	}
	if hasNext {
		nav = append(nav, domain.Button{Label: "Next ➡️", Action: ActionEpisodePage(dramaID, page+1)})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, domain.Row(
		domain.Button{Label: "📜 Drama List", Action: ActionList(0)},
		backButton(),
	))
	return domain.View{Text: text, Rows: rows}
}

// lockedContentView: upsell rendu à la place du contenu quand l'épisode est
// gaté et le requester non abonné. Rien n'est envoyé, la session est intacte.
func (r *Router) lockedContentView(dramaID string, ep domain.EpisodeNumber) domain.View {
	return domain.View{
		Text: fmt.Sprintf("🔒 Episode %d is for subscribers.\n\nEpisodes 1–4 are free; subscribe or redeem a token to unlock the rest.", ep),
		Rows: [][]domain.Button{
			domain.Row(
				domain.Button{Label: "💳 Subscribe", Action: VerbSubscribe},
				domain.Button{Label: "🎟 Redeem Token", Action: VerbRedeem},
			),
			domain.Row(
				domain.Button{Label: "📂 Episodes", Action: ActionEpisodePage(dramaID, int(ep-1)/episodePageSize)},
				backButton(),
			),
		},
	}
}

func adminPanelView() domain.View {
	return domain.View{
		Text: "🛠 Admin panel",
		Rows: [][]domain.Button{
			domain.Row(
				domain.Button{Label: "🎟 Generate Token", Action: VerbGenToken},
				domain.Button{Label: "🗒 Tokens", Action: VerbListTokens},
			),
			domain.Row(
				domain.Button{Label: "👥 Subscribers", Action: VerbListSubs},
				domain.Button{Label: "📊 Stats", Action: VerbStats},
			),
			domain.Row(
				domain.Button{Label: "⬆️ Upload Guide", Action: VerbUpload},
				domain.Button{Label: "♻️ Reset Upload", Action: VerbResetDrama},
			),
			domain.Row(backButton()),
		},
	}
}

func genTokenView() domain.View {
	rows := make([][]domain.Button, 0, len(domain.Plans())+1)
	for _, p := range domain.Plans() {
		rows = append(rows, domain.Row(domain.Button{Label: p.Label(), Action: ActionCreateToken(p)}))
	}
	rows = append(rows, domain.Row(adminBackButton()))
	return domain.View{Text: "🎟 Pick a plan for the new token:", Rows: rows}
}

func tokenCreatedView(code string, plan domain.Plan) domain.View {
	return guidanceView(
		fmt.Sprintf("✅ Token created (%s):\n\n%s\n\nSend it to the subscriber; it can be redeemed once.", plan.Label(), code),
		domain.Button{Label: "🎟 Another", Action: VerbGenToken},
		adminBackButton(),
	)
}

func tokenListView(toks []domain.Token) domain.View {
	if len(toks) == 0 {
		return guidanceView("🗒 No tokens yet.", adminBackButton())
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🗒 Tokens (%d total, newest first):\n\n", len(toks))
	for i, t := range toks {
		if i >= maxTokensListed {
			fmt.Fprintf(&b, "… and %d more\n", len(toks)-maxTokensListed)
			break
		}
		status := "🕗 unused"
		if t.Used {
			status = fmt.Sprintf("✅ used by %d", t.UsedBy)
		}
		fmt.Fprintf(&b, "%s — %s — %s\n", t.Code, t.Plan, status)
	}
	return guidanceView(b.String(), adminBackButton())
}

func (r *Router) subscriberListView(subs []domain.Subscription) domain.View {
	if len(subs) == 0 {
		return guidanceView("👥 No subscribers yet.", adminBackButton())
	}
	var b strings.Builder
	fmt.Fprintf(&b, "👥 Subscriptions (%d):\n\n", len(subs))
	for _, s := range subs {
		fmt.Fprintf(&b, "%d — %s — until %s\n", s.UserID, s.Plan, s.ExpiresAt.Format("2006-01-02"))
	}
	return guidanceView(b.String(), adminBackButton())
}

func (r *Router) statsView(ctx context.Context) domain.View {
	dramas, episodes, err := r.catalog.Stats(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("catalog stats failed")
	}
	active, err := r.access.ActiveSubscriberCount(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("subscriber count failed")
	}
	used, total := 0, 0
	if toks, err := r.access.ListTokens(ctx); err == nil {
		total = len(toks)
		for _, t := range toks {
			if t.Used {
				used++
			}
		}
	}
	text := fmt.Sprintf("📊 Stats\n\nDramas: %d\nEpisodes: %d\nActive subscriptions: %d\nTokens: %d used / %d total",
		dramas, episodes, active, used, total)
	return guidanceView(text, adminBackButton())
}

func (r *Router) uploadHelpView(ctx context.Context, adminID int64) domain.View {
	var b strings.Builder
	b.WriteString("⬆️ Upload guide\n\n1. Send the drama thumbnail (photo) with caption: #<drama_id> <title>\n2. Send episode videos; each one is appended in order.\n3. Re-send a thumbnail to switch dramas, or reset the binding.")
	if sess, err := r.ingest.Active(ctx, adminID); err == nil {
		fmt.Fprintf(&b, "\n\n📌 Active drama: %s — %s", sess.DramaID, sess.Title)
	} else {
		b.WriteString("\n\n📌 No active drama.")
	}
	return guidanceView(b.String(),
		domain.Button{Label: "♻️ Reset Upload", Action: VerbResetDrama},
		adminBackButton(),
	)
}

func ingestBoundView(sess domain.IngestSession) domain.View {
	return guidanceView(
		fmt.Sprintf("📌 Active drama: %s — %s\n\nSend videos now; each one becomes the next episode.", sess.DramaID, sess.Title),
		adminBackButton(),
	)
}

func episodeAddedView(sess domain.IngestSession, n domain.EpisodeNumber) domain.View {
	return guidanceView(
		fmt.Sprintf("✅ Episode %d added to %s.", n, sess.Title),
		adminBackButton(),
	)
}
