package ports

import "errors"

var ErrNotFound = errors.New("not found")

var ErrConflict = errors.New("conflict")

// ErrTokenUsed: token déjà consommé (usage unique).
var ErrTokenUsed = errors.New("token already used")

// ErrNoActiveDrama: upload vidéo sans vignette préalable pour cet admin.
var ErrNoActiveDrama = errors.New("no active drama")

// ErrUnauthorized: verbe admin invoqué par un non-admin, ou épisode
// verrouillé sans abonnement.
var ErrUnauthorized = errors.New("unauthorized")

// ErrLocked: épisode au-delà du seuil, requester non abonné.
var ErrLocked = errors.New("episode locked")

// ErrInvalidCaption: légende de vignette qui ne suit pas "#<id> <titre>".
var ErrInvalidCaption = errors.New("invalid caption")
