package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/satriacloudx/BotDracinV2/internal/domain"
)

// Action tokens: verbe + arguments joints par "_", ASCII, courts (limite
// callback-data du transport). Les identifiants embarqués restent des
// chaînes opaques courtes, jamais du texte libre.
const (
	VerbBack        = "back"
	VerbSearch      = "search"
	VerbRedeem      = "redeem"
	VerbSubscribe   = "subscribe"
	VerbCheckSub    = "check_sub"
	VerbList        = "list"
	VerbDrama       = "drama"
	VerbEpisode     = "episode"
	VerbEpisodePage = "episode_page"
	VerbNoop        = "noop"
	VerbDismissWarn = "dismiss_warn"

	VerbAdminPanel  = "admin_panel"
	VerbGenToken    = "gen_token"
	VerbCreateToken = "create_token"
	VerbListTokens  = "list_tokens"
	VerbListSubs    = "list_subs"
	VerbStats       = "stats"
	VerbUpload      = "upload"
	VerbResetDrama  = "reset_active_drama"
)

type Action struct {
	Verb    string
	DramaID string
	Episode domain.EpisodeNumber
	Page    int
	Plan    domain.Plan
}

func ActionList(page int) string {
	return fmt.Sprintf("list_%d", page)
}

func ActionDrama(dramaID string) string {
	return "d_" + dramaID
}

func ActionEpisode(dramaID string, ep domain.EpisodeNumber) string {
	return fmt.Sprintf("ep_%s_%d", dramaID, ep)
}

func ActionEpisodePage(dramaID string, page int) string {
	return fmt.Sprintf("ep_page_%s_%d", dramaID, page)
}

func ActionCreateToken(plan domain.Plan) string {
	return "create_token_" + string(plan)
}

// ParseAction décode un action token. ok=false pour tout token inconnu ou
// malformé: l'appelant acquitte sans muter ni re-rendre.
func ParseAction(data string) (Action, bool) {
	switch data {
	case VerbBack, VerbSearch, VerbRedeem, VerbSubscribe, VerbCheckSub,
		VerbNoop, VerbDismissWarn, VerbAdminPanel, VerbGenToken,
		VerbListTokens, VerbListSubs, VerbStats, VerbUpload, VerbResetDrama:
		return Action{Verb: data}, true
	case VerbList:
		return Action{Verb: VerbList}, true
	}

	if rest, ok := strings.CutPrefix(data, "create_token_"); ok {
		plan := domain.Plan(rest)
		if !plan.Valid() {
			return Action{}, false
		}
		return Action{Verb: VerbCreateToken, Plan: plan}, true
	}

	if rest, ok := strings.CutPrefix(data, "ep_page_"); ok {
		id, page, ok := cutTrailingInt(rest)
		if !ok || id == "" || page < 0 {
			return Action{}, false
		}
		return Action{Verb: VerbEpisodePage, DramaID: id, Page: page}, true
	}

	if rest, ok := strings.CutPrefix(data, "ep_"); ok {
		id, ep, ok := cutTrailingInt(rest)
		if !ok || id == "" || ep < 1 {
			return Action{}, false
		}
		return Action{Verb: VerbEpisode, DramaID: id, Episode: domain.EpisodeNumber(ep)}, true
	}

	if rest, ok := strings.CutPrefix(data, "d_"); ok {
		if rest == "" {
			return Action{}, false
		}
		return Action{Verb: VerbDrama, DramaID: rest}, true
	}

	if rest, ok := strings.CutPrefix(data, "list_"); ok {
		page, err := strconv.Atoi(rest)
		if err != nil || page < 0 {
			return Action{}, false
		}
		return Action{Verb: VerbList, Page: page}, true
	}

	return Action{}, false
}

// cutTrailingInt coupe "<id>_<n>" sur le dernier "_", ce qui tolère un id
// contenant lui-même des underscores.
func cutTrailingInt(s string) (head string, n int, ok bool) {
	i := strings.LastIndex(s, "_")
	if i < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return "", 0, false
	}
	return s[:i], n, true
}
