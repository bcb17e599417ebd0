package card

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nhattran/cardfolio/adapters/event"
	"github.com/nhattran/cardfolio/internal/domain/card"
	"github.com/nhattran/cardfolio/pkg/apperror"
	"github.com/nhattran/cardfolio/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type UpdateCardUseCase struct {
	cardRepo    card.Repository
	cardCache   card.Cache
	kafkaClient *event.KafkaProducerClient
	logger      logger.Logger
}

func NewUpdateCardUseCase(
	repo card.Repository,
	cache card.Cache,
	k *event.KafkaProducerClient,
	log logger.Logger,
) *UpdateCardUseCase {
	return &UpdateCardUseCase{
		cardRepo:    repo,
		cardCache:   cache,
		kafkaClient: k,
		logger:      log,
	}
}

type UpdateCardInput struct {
	CallerID uuid.UUID
	CardID   uuid.UUID
	Updates  map[string]string
}

type UpdateCardOutput struct {
	Card *card.Card
}

// Execute applies a partial field update to a card the caller owns.
// Check order is fixed: credential, input shape, record existence, then
// ownership. A missing record is reported as not found and a foreign record
// as permission denied; the two are never conflated.
func (uc *UpdateCardUseCase) Execute(ctx context.Context, input UpdateCardInput) (*UpdateCardOutput, error) {
	ctx, span := tracer.Start(ctx, "UpdateCard")
	defer span.End()

	if input.CallerID == uuid.Nil {
		return nil, apperror.NewUnauthorized("no caller identity", nil)
	}
	if len(input.Updates) == 0 {
		return nil, apperror.NewInvalidInput("no field updates provided", nil)
	}
	for name := range input.Updates {
		if !card.IsKnownField(name) {
			return nil, apperror.NewInvalidInput(fmt.Sprintf("unknown field '%s'", name), nil)
		}
	}

	c, err := uc.cardRepo.FindByID(ctx, input.CardID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if c.OwnerID != input.CallerID {
		return nil, apperror.NewPermissionDenied("you can only update your own card")
	}

	// One store write; the merged record is derived locally so a failed
	// write leaves nothing half-applied.
	if err := uc.cardRepo.UpdateFields(ctx, c.ID, input.Updates); err != nil {
		span.RecordError(err)
		return nil, err
	}
	merged := c.ApplyFieldUpdates(input.Updates)

	if uc.cardCache != nil {
		if err := uc.cardCache.Invalidate(ctx, c.ID); err != nil {
			uc.logger.Warn("card cache invalidation failed", zap.String("card_id", c.ID.String()), zap.Error(err))
		}
	}

	if uc.kafkaClient != nil {
		go func() {
			payload := event.CardEventPayload{
				EventType:     event.CardEventTypeUpdated,
				CardID:        merged.ID,
				OwnerID:       merged.OwnerID,
				UpdatedFields: fieldNames(input.Updates),
			}
			if err := uc.kafkaClient.PublishCardEvent(context.Background(), payload); err != nil {
				uc.logger.Error("Failed to publish 'card.updated' event", err, zap.String("card_id", merged.ID.String()))
			}
		}()
	}

	span.SetAttributes(attribute.String("card_id", merged.ID.String()))
	return &UpdateCardOutput{Card: merged}, nil
}

func fieldNames(updates map[string]string) []string {
	names := make([]string, 0, len(updates))
	for name := range updates {
		names = append(names, name)
	}
	return names
}
