package domain

import "time"

// EpisodeNumber est un entier distinct pour éviter de mélanger
// numéros d'épisodes et indices de pages dans les signatures.
type EpisodeNumber int

type EpisodeRecord struct {
	// VideoRef est l'identifiant du média côté transport (file_id Telegram).
	VideoRef string

	AddedAt time.Time
}

type Drama struct {
	// ID est un identifiant court, opaque, choisi par l'admin dans la légende
	// de la vignette (ex: "#drakor1 Love Between Fairy and Devil").
	ID string

	Title        string
	ThumbnailRef string

	// Episodes: numéros contigus à partir de 1, jamais réutilisés.
	Episodes map[EpisodeNumber]EpisodeRecord

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MaxEpisode renvoie le plus grand numéro d'épisode (0 si aucun).
func (d Drama) MaxEpisode() EpisodeNumber {
	var max EpisodeNumber
	for n := range d.Episodes {
		if n > max {
			max = n
		}
	}
	return max
}
