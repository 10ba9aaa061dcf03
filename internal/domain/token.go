package domain

import "time"

// Token: crédential à usage unique, échangeable contre un plan fixe.
// Immuable après usage, sauf les métadonnées used* écrites exactement une fois.
type Token struct {
	ID   string
	Code string
	Plan Plan

	Used      bool
	CreatedBy int64
	CreatedAt time.Time
	UsedBy    int64
	UsedAt    time.Time
}
