package card

import "github.com/google/uuid"

// Policy decides which card fields a viewer may see. One Policy value is
// built from config at process start and shared by every read path, so the
// visibility default cannot drift between views.
type Policy struct {
	// LegacyVisibility controls fields with no explicit visibility entry:
	// true shows any non-empty field to non-owners, false hides it. An
	// explicit entry always wins over this default.
	LegacyVisibility bool
}

// Projection is the per-viewer view of a card.
type Projection struct {
	ID        uuid.UUID         `json:"id"`
	IsPrimary bool              `json:"is_primary"`
	AvatarURL *string           `json:"avatar_url"`
	Fields    map[string]string `json:"fields"`
	IsOwner   bool              `json:"is_owner"`
}

// AnonymousViewer marks a request with no authenticated principal.
var AnonymousViewer = uuid.Nil

// Project returns the fields of c visible to viewerID. The owner sees every
// non-empty field regardless of visibility flags; anyone else sees a field
// only if it is non-empty and allowed by FieldVisible. Pure function.
func (p Policy) Project(c *Card, viewerID uuid.UUID) Projection {
	isOwner := viewerID != AnonymousViewer && viewerID == c.OwnerID

	visible := make(map[string]string)
	for _, name := range FieldNames {
		value := c.Field(name)
		if value == "" {
			continue
		}
		if isOwner || p.FieldVisible(c, name) {
			visible[name] = value
		}
	}

	return Projection{
		ID:        c.ID,
		IsPrimary: c.IsPrimary,
		AvatarURL: c.AvatarURL,
		Fields:    visible,
		IsOwner:   isOwner,
	}
}

// FieldVisible reports whether a non-owner may see the named field. An
// explicit visibility entry wins; absent entries fall back to the single
// deployment-wide legacy default.
func (p Policy) FieldVisible(c *Card, name string) bool {
	if c.FieldVisibility != nil {
		if flag, ok := c.FieldVisibility[name]; ok {
			return flag
		}
	}
	return p.LegacyVisibility
}
