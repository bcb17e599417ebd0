package event

import "github.com/google/uuid"

type CardEventType string

const (
	CardEventTypeUpdated        CardEventType = "card.updated"
	CardEventTypeAvatarUploaded CardEventType = "card.avatar_uploaded"
	CardEventTypeViewed         CardEventType = "card.viewed"
)

type CardEventPayload struct {
	EventType     CardEventType `json:"event_type"`
	CardID        uuid.UUID     `json:"card_id"`
	OwnerID       uuid.UUID     `json:"owner_id"`
	UpdatedFields []string      `json:"updated_fields,omitempty"`
	AvatarURL     string        `json:"avatar_url,omitempty"`
}
