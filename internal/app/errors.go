package app

import "github.com/satriacloudx/BotDracinV2/internal/ports"

// Réexport des sentinelles pour les appelants qui ne dépendent que de app.
var (
	ErrNotFound       = ports.ErrNotFound
	ErrConflict       = ports.ErrConflict
	ErrTokenUsed      = ports.ErrTokenUsed
	ErrNoActiveDrama  = ports.ErrNoActiveDrama
	ErrUnauthorized   = ports.ErrUnauthorized
	ErrLocked         = ports.ErrLocked
	ErrInvalidCaption = ports.ErrInvalidCaption
)
