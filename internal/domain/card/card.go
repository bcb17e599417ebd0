package card

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Field names a card carries. Values are optional strings; empty means unset.
const (
	FieldName      = "name"
	FieldTitle     = "title"
	FieldCompany   = "company"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldWebsite   = "website"
	FieldBio       = "bio"
	FieldTwitter   = "twitter"
	FieldInstagram = "instagram"
	FieldLinkedin  = "linkedin"
	FieldTiktok    = "tiktok"
	FieldYoutube   = "youtube"
)

var FieldNames = []string{
	FieldName, FieldTitle, FieldCompany, FieldEmail, FieldPhone,
	FieldWebsite, FieldBio, FieldTwitter, FieldInstagram, FieldLinkedin,
	FieldTiktok, FieldYoutube,
}

var fieldNameSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(FieldNames))
	for _, n := range FieldNames {
		s[n] = struct{}{}
	}
	return s
}()

func IsKnownField(name string) bool {
	_, ok := fieldNameSet[name]
	return ok
}

type Card struct {
	ID              uuid.UUID         `json:"id"`
	OwnerID         uuid.UUID         `json:"owner_id"`
	IsPrimary       bool              `json:"is_primary"`
	AvatarURL       *string           `json:"avatar_url"`
	Fields          map[string]string `json:"fields"`
	FieldVisibility map[string]bool   `json:"field_visibility"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Field returns the value of a named field, empty if unset.
func (c *Card) Field(name string) string {
	if c.Fields == nil {
		return ""
	}
	return c.Fields[name]
}

// ApplyFieldUpdates merges updates into a copy of the card. Fields absent from
// updates keep their prior values; identity and avatar are untouched.
// Applying the same updates twice yields the same card.
func (c *Card) ApplyFieldUpdates(updates map[string]string) *Card {
	merged := *c
	merged.Fields = make(map[string]string, len(c.Fields)+len(updates))
	for k, v := range c.Fields {
		merged.Fields[k] = v
	}
	for k, v := range updates {
		merged.Fields[k] = v
	}
	return &merged
}

type Repository interface {
	// FindByID looks up a single card by record id.
	FindByID(ctx context.Context, id uuid.UUID) (*Card, error)
	// FindPrimaryByOwner looks up the single card marked primary for an
	// owner. More than one matching row is a consistency fault and is
	// reported as not found, never as an arbitrary pick.
	FindPrimaryByOwner(ctx context.Context, ownerID uuid.UUID) (*Card, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Card, error)
	// UpdateFields applies a partial merge of the named fields in one write.
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]string) error
	// SetAvatarURL points the card at a newly stored avatar blob.
	SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error
}
