package http

import (
	"time"

	"github.com/nhattran/cardfolio/internal/domain/card"
)

// Card DTOs

type CardProjectionDTO struct {
	ID        string            `json:"id"`
	IsPrimary bool              `json:"is_primary"`
	AvatarURL *string           `json:"avatar_url"`
	Fields    map[string]string `json:"fields"`
	IsOwner   bool              `json:"is_owner"`
}

func ToCardProjectionDTO(p card.Projection) CardProjectionDTO {
	return CardProjectionDTO{
		ID:        p.ID.String(),
		IsPrimary: p.IsPrimary,
		AvatarURL: p.AvatarURL,
		Fields:    p.Fields,
		IsOwner:   p.IsOwner,
	}
}

type CardDTO struct {
	ID              string            `json:"id"`
	OwnerID         string            `json:"owner_id"`
	IsPrimary       bool              `json:"is_primary"`
	AvatarURL       *string           `json:"avatar_url"`
	Fields          map[string]string `json:"fields"`
	FieldVisibility map[string]bool   `json:"field_visibility"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func ToCardDTO(c *card.Card) CardDTO {
	return CardDTO{
		ID:              c.ID.String(),
		OwnerID:         c.OwnerID.String(),
		IsPrimary:       c.IsPrimary,
		AvatarURL:       c.AvatarURL,
		Fields:          c.Fields,
		FieldVisibility: c.FieldVisibility,
		UpdatedAt:       c.UpdatedAt,
	}
}

type UpdateCardRequest struct {
	Updates map[string]string `json:"updates" binding:"required"`
}
