package card

import (
	"context"

	"github.com/google/uuid"
)

// Cache is a read-through cache for card records. Get returns (nil, nil) on
// a miss; a failing cache must never fail the read path.
type Cache interface {
	Get(ctx context.Context, id uuid.UUID) (*Card, error)
	Set(ctx context.Context, c *Card) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}
