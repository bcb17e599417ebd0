package avatar

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nhattran/cardfolio/adapters/event"
	"github.com/nhattran/cardfolio/internal/application/service"
	"github.com/nhattran/cardfolio/internal/domain/card"
	"github.com/nhattran/cardfolio/pkg/apperror"
	"github.com/nhattran/cardfolio/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

type UploadAvatarUseCase struct {
	cardRepo    card.Repository
	cardCache   card.Cache
	uploader    service.Uploader
	kafkaClient *event.KafkaProducerClient
	maxBytes    int64
	logger      logger.Logger
}

func NewUploadAvatarUseCase(
	repo card.Repository,
	cache card.Cache,
	u service.Uploader,
	k *event.KafkaProducerClient,
	maxBytes int64,
	log logger.Logger,
) *UploadAvatarUseCase {
	return &UploadAvatarUseCase{
		cardRepo:    repo,
		cardCache:   cache,
		uploader:    u,
		kafkaClient: k,
		maxBytes:    maxBytes,
		logger:      log,
	}
}

type UploadAvatarInput struct {
	// CallerID is uuid.Nil when no credential was presented.
	CallerID      uuid.UUID
	TargetOwnerID uuid.UUID
	File          io.Reader
	ContentType   string
	SizeBytes     int64
}

type UploadAvatarOutput struct {
	AvatarURL string
}

var tracer = otel.Tracer("avatar_usecase")

// Execute validates and stores a new avatar for the target owner's primary
// card. Checks run in a fixed fail-fast order: input shape, content type,
// size, credential, ownership, primary-card existence. Nothing touches the
// blob store or the card record until every check has passed, and the record
// is only updated after the blob is safely stored.
func (uc *UploadAvatarUseCase) Execute(ctx context.Context, input UploadAvatarInput) (*UploadAvatarOutput, error) {
	ctx, span := tracer.Start(ctx, "UploadAvatar")
	defer span.End()

	if input.File == nil || input.TargetOwnerID == uuid.Nil {
		return nil, apperror.NewInvalidInput("file and target owner id are required", nil)
	}
	if !strings.HasPrefix(input.ContentType, "image/") {
		return nil, apperror.NewUnsupportedMedia(fmt.Sprintf("content type '%s' is not an image", input.ContentType))
	}
	if input.SizeBytes > uc.maxBytes {
		return nil, apperror.NewTooLarge(fmt.Sprintf("file is %d bytes, limit is %d", input.SizeBytes, uc.maxBytes))
	}
	if input.CallerID == uuid.Nil {
		return nil, apperror.NewUnauthorized("no caller identity", nil)
	}
	if input.CallerID != input.TargetOwnerID {
		return nil, apperror.NewPermissionDenied("you can only upload an avatar for your own card")
	}

	primary, err := uc.cardRepo.FindPrimaryByOwner(ctx, input.TargetOwnerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// Unique per upload so repeated uploads never overwrite a prior blob.
	folder := fmt.Sprintf("users/%s/avatars", input.TargetOwnerID.String())
	publicID := fmt.Sprintf("%s-%d", input.TargetOwnerID.String(), time.Now().UnixMilli())

	avatarURL, err := uc.uploader.Upload(ctx, input.File, folder, publicID)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.NewInternal("failed to upload avatar file", err)
	}

	if err := uc.cardRepo.SetAvatarURL(ctx, primary.ID, avatarURL); err != nil {
		go uc.uploader.Delete(context.Background(), publicID)
		span.RecordError(err)
		return nil, err
	}

	if uc.cardCache != nil {
		if err := uc.cardCache.Invalidate(ctx, primary.ID); err != nil {
			uc.logger.Warn("card cache invalidation failed", zap.String("card_id", primary.ID.String()), zap.Error(err))
		}
	}

	if uc.kafkaClient != nil {
		go func() {
			payload := event.CardEventPayload{
				EventType: event.CardEventTypeAvatarUploaded,
				CardID:    primary.ID,
				OwnerID:   primary.OwnerID,
				AvatarURL: avatarURL,
			}
			if err := uc.kafkaClient.PublishCardEvent(context.Background(), payload); err != nil {
				uc.logger.Error("Failed to publish 'card.avatar_uploaded' event", err, zap.String("card_id", primary.ID.String()))
			}
		}()
	}

	return &UploadAvatarOutput{AvatarURL: avatarURL}, nil
}
