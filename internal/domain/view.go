package domain

// View est le rendu neutre d'un écran: texte + grille d'actions.
// L'adapter transport la traduit (Telegram: inline keyboard).
type View struct {
	Text string
	Rows [][]Button
}

type Button struct {
	Label string
	// Action est un action token opaque (verbe + arguments délimités par "_"),
	// ASCII, assez court pour la limite callback-data du transport.
	Action string
}

func Row(buttons ...Button) []Button {
	return buttons
}
