package card

import (
	"context"

	"github.com/google/uuid"
	"github.com/nhattran/cardfolio/adapters/event"
	"github.com/nhattran/cardfolio/internal/domain/card"
	"github.com/nhattran/cardfolio/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// LookupMode selects how an identifier resolves to a card record.
type LookupMode int

const (
	// ByRecordID treats the identifier as a card id.
	ByRecordID LookupMode = iota
	// ByOwnerPrimary treats the identifier as an owner id and resolves the
	// owner's primary card.
	ByOwnerPrimary
)

type GetCardUseCase struct {
	cardRepo    card.Repository
	cardCache   card.Cache
	policy      card.Policy
	kafkaClient *event.KafkaProducerClient
	logger      logger.Logger
}

func NewGetCardUseCase(
	repo card.Repository,
	cache card.Cache,
	policy card.Policy,
	k *event.KafkaProducerClient,
	log logger.Logger,
) *GetCardUseCase {
	return &GetCardUseCase{
		cardRepo:    repo,
		cardCache:   cache,
		policy:      policy,
		kafkaClient: k,
		logger:      log,
	}
}

type GetCardInput struct {
	Identifier uuid.UUID
	Mode       LookupMode
	// ViewerID is card.AnonymousViewer when no credential was presented.
	ViewerID uuid.UUID
}

type GetCardOutput struct {
	Projection card.Projection
}

var tracer = otel.Tracer("card_usecase")

func (uc *GetCardUseCase) Execute(ctx context.Context, input GetCardInput) (*GetCardOutput, error) {
	ctx, span := tracer.Start(ctx, "GetCard")
	defer span.End()

	c, err := uc.resolve(ctx, input.Identifier, input.Mode)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	projection := uc.policy.Project(c, input.ViewerID)

	if !projection.IsOwner && uc.kafkaClient != nil {
		go func() {
			payload := event.CardEventPayload{
				EventType: event.CardEventTypeViewed,
				CardID:    c.ID,
				OwnerID:   c.OwnerID,
			}
			if err := uc.kafkaClient.PublishCardEvent(context.Background(), payload); err != nil {
				uc.logger.Warn("Failed to publish 'card.viewed' event", zap.String("card_id", c.ID.String()), zap.Error(err))
			}
		}()
	}

	return &GetCardOutput{Projection: projection}, nil
}

// resolve performs the single-record lookup for the requested mode. Primary
// lookups go straight to the store so duplicate-primary faults are never
// masked by a cached row.
func (uc *GetCardUseCase) resolve(ctx context.Context, identifier uuid.UUID, mode LookupMode) (*card.Card, error) {
	if mode == ByOwnerPrimary {
		return uc.cardRepo.FindPrimaryByOwner(ctx, identifier)
	}

	if uc.cardCache != nil {
		cached, err := uc.cardCache.Get(ctx, identifier)
		if err != nil {
			uc.logger.Warn("card cache read failed", zap.String("card_id", identifier.String()), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	c, err := uc.cardRepo.FindByID(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if uc.cardCache != nil {
		if err := uc.cardCache.Set(ctx, c); err != nil {
			uc.logger.Warn("card cache write failed", zap.String("card_id", c.ID.String()), zap.Error(err))
		}
	}
	return c, nil
}
