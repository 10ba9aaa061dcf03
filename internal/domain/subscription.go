package domain

import "time"

type Plan string

const (
	PlanDaily   Plan = "daily"
	PlanWeekly  Plan = "weekly"
	PlanMonthly Plan = "monthly"
)

func Plans() []Plan {
	return []Plan{PlanDaily, PlanWeekly, PlanMonthly}
}

func (p Plan) Valid() bool {
	switch p {
	case PlanDaily, PlanWeekly, PlanMonthly:
		return true
	}
	return false
}

func (p Plan) Duration() time.Duration {
	switch p {
	case PlanDaily:
		return 24 * time.Hour
	case PlanWeekly:
		return 7 * 24 * time.Hour
	case PlanMonthly:
		return 30 * 24 * time.Hour
	}
	return 0
}

func (p Plan) Label() string {
	switch p {
	case PlanDaily:
		return "Daily (1 day)"
	case PlanWeekly:
		return "Weekly (7 days)"
	case PlanMonthly:
		return "Monthly (30 days)"
	}
	return string(p)
}

// Subscription: un seul enregistrement par user, écrasé au renouvellement.
type Subscription struct {
	UserID      int64
	Plan        Plan
	ActivatedAt time.Time
	ExpiresAt   time.Time

	// WarnDismissed: flag one-shot "avertissement d'expiration masqué".
	// Remis à zéro au renouvellement.
	WarnDismissed bool
}

func (s Subscription) ActiveAt(now time.Time) bool {
	return s.ExpiresAt.After(now)
}
