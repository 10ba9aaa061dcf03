// Package memstore fournit les repositories en mémoire du bot.
//
// Contrainte dure: un seul worker logique mute ces stores (la boucle
// d'updates). Les RWMutex ne servent qu'à protéger les lectures concurrentes
// du listener liveness qui partage la mémoire du process. Un déploiement
// multi-worker ou multi-process exige de remplacer ce package par un store
// transactionnel derrière les mêmes ports.
package memstore
