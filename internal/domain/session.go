package domain

// Intent: attente de texte libre, consommée par le tout prochain message
// texte quel que soit le résultat, puis remise à IntentIdle.
type Intent string

const (
	IntentIdle        Intent = "idle"
	IntentAwaitSearch Intent = "await_search"
	IntentAwaitToken  Intent = "await_token"
)

// DeliverySession: au plus une paire "live" par user. Remplacée en bloc à
// chaque nouvelle livraison; l'ancienne paire est rétractée best-effort.
type DeliverySession struct {
	UserID  int64
	DramaID string
	Episode EpisodeNumber

	// Handles transport des deux messages livrés: le contenu protégé et la
	// navigation, envoyés séparément pour rester éditables indépendamment.
	VideoMsgID int
	NavMsgID   int
}

// IngestSession: liaison "drama actif" d'un admin pour les uploads suivants.
type IngestSession struct {
	AdminID int64
	DramaID string
	Title   string
}
